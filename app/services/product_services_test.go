package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/app/repositories"
	"github.com/shashiranjanraj/vendordesk/app/services"
	"github.com/shashiranjanraj/vendordesk/pkg/http"
	"github.com/shashiranjanraj/vendordesk/pkg/storage"
)

type fakeProducts struct {
	listCalls int
	created   []http.File
	input     models.ProductInput
	deleted   []models.ID
}

func (f *fakeProducts) List(context.Context, repositories.ProductQuery) (*models.ProductPage, error) {
	f.listCalls++
	return &models.ProductPage{Products: []models.Product{{ID: "p1", Name: "Injera"}}}, nil
}

func (f *fakeProducts) ByID(_ context.Context, id models.ID) (*models.Product, error) {
	return &models.Product{ID: id}, nil
}

func (f *fakeProducts) Create(_ context.Context, in models.ProductInput, media []http.File) (*models.Product, error) {
	f.input, f.created = in, media
	return &models.Product{ID: "p2", Name: in.Name}, nil
}

func (f *fakeProducts) Update(_ context.Context, id models.ID, in models.ProductInput) (*models.Product, error) {
	f.input = in
	return &models.Product{ID: id, Name: in.Name}, nil
}

func (f *fakeProducts) Delete(_ context.Context, id models.ID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func localDisk(t *testing.T) storage.Disk {
	t.Helper()
	d, err := storage.NewLocal(t.TempDir(), "")
	require.NoError(t, err)
	return d
}

func validProduct() models.ProductInput {
	return models.ProductInput{Name: "Injera", Price: 2.5, Stock: 10, CategoryID: "c1"}
}

func TestCreateUploadsMediaFromDisk(t *testing.T) {
	disk := localDisk(t)
	require.NoError(t, disk.Put(ctx, "media/front.png", []byte("png-bytes")))
	require.NoError(t, disk.Put(ctx, "media/clip.mp4", []byte("mp4-bytes")))

	api := &fakeProducts{}
	svc := services.NewProductService(api, disk, newCache())

	in := validProduct()
	in.Images = []string{"media/front.png"}
	in.Video = "media/clip.mp4"
	p, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, models.ID("p2"), p.ID)

	require.Len(t, api.created, 2)
	assert.Equal(t, http.File{Field: "images", Name: "front.png", Data: []byte("png-bytes"), MimeType: "image/png"}, api.created[0])
	assert.Equal(t, "video", api.created[1].Field)
	assert.Equal(t, "video/mp4", api.created[1].MimeType)
}

func TestCreateRejectsWrongMediaType(t *testing.T) {
	disk := localDisk(t)
	svc := services.NewProductService(&fakeProducts{}, disk, newCache())

	in := validProduct()
	in.Images = []string{"notes.txt"}
	_, err := svc.Create(ctx, in)
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestCreateMissingFile(t *testing.T) {
	svc := services.NewProductService(&fakeProducts{}, localDisk(t), newCache())
	in := validProduct()
	in.Images = []string{"gone.jpg"}
	_, err := svc.Create(ctx, in)
	assert.ErrorIs(t, err, storage.ErrNotExist)
}

func TestCreateValidates(t *testing.T) {
	api := &fakeProducts{}
	svc := services.NewProductService(api, nil, newCache())
	_, err := svc.Create(ctx, models.ProductInput{Name: " ", Price: 0})

	var fe *services.FormError
	require.ErrorAs(t, err, &fe)
	assert.NotEmpty(t, fe.Field("name"))
	assert.NotEmpty(t, fe.Field("price"))
	assert.NotEmpty(t, fe.Field("category_id"))
	assert.Empty(t, api.input.Name)
}

func TestMutationsInvalidateProductLists(t *testing.T) {
	api := &fakeProducts{}
	svc := services.NewProductService(api, nil, newCache())

	q := repositories.ProductQuery{VendorID: "3"}
	_, err := svc.List(ctx, q)
	require.NoError(t, err)
	_, err = svc.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, api.listCalls)

	_, err = svc.Update(ctx, "p1", validProduct())
	require.NoError(t, err)
	_, err = svc.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, api.listCalls)

	require.NoError(t, svc.Delete(ctx, "p1"))
	_, err = svc.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 3, api.listCalls)
	assert.Equal(t, []models.ID{"p1"}, api.deleted)
}
