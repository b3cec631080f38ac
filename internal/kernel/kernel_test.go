package kernel_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/app/services"
	"github.com/shashiranjanraj/vendordesk/internal/kernel"
	"github.com/shashiranjanraj/vendordesk/internal/mockapi"
	"github.com/shashiranjanraj/vendordesk/pkg/kvstore"
	"github.com/shashiranjanraj/vendordesk/pkg/storage"
)

var ctx = context.Background()

func startAPI(t *testing.T) *httptest.Server {
	t.Helper()
	api, err := mockapi.New(mockapi.Options{Secret: "test-secret", Seed: true})
	require.NoError(t, err)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func boot(t *testing.T, srv *httptest.Server, kv kvstore.Store) *kernel.Kernel {
	t.Helper()
	local, err := storage.NewLocal(t.TempDir(), "")
	require.NoError(t, err)

	k, err := kernel.New(ctx, kernel.Options{
		BaseURL:    srv.URL + "/api",
		KV:         kv,
		Disks:      storage.NewManagerWith("local", map[string]storage.Disk{"local": local}),
		CacheTTL:   time.Minute,
		PageLimit:  10,
		SkipLogger: true,
	})
	require.NoError(t, err)
	t.Cleanup(k.Close)
	return k
}

func login(t *testing.T, k *kernel.Kernel, phone string) {
	t.Helper()
	_, err := k.Auth.Login(ctx, services.LoginInput{Phone: phone, Password: mockapi.DemoPassword})
	require.NoError(t, err)
}

func TestOrderWorkflowEndToEnd(t *testing.T) {
	k := boot(t, startAPI(t), kvstore.NewMemory())
	login(t, k, mockapi.DemoPhone)

	wf, vendor, err := k.VendorOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, mockapi.DemoVendorID, vendor.ID)

	page, err := wf.FetchOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, page.Orders, 10)
	assert.Equal(t, 25, page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)

	wf.SetStatusFilter(models.FilterBy(models.OrderStatusNew))
	page, err = wf.FetchOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, page.Pagination.Total)
	for _, o := range page.Orders {
		assert.Equal(t, models.OrderStatusNew, o.Status)
	}

	next, err := wf.Advance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, next)

	// The refetched "new" page no longer contains order 1.
	page = wf.CurrentPage()
	assert.Equal(t, 6, page.Pagination.Total)

	err = wf.UpdateStatus(ctx, 1, models.OrderStatusCompleted)
	assert.ErrorIs(t, err, services.ErrIllegalTransition)

	o, err := wf.Order(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, o.Status)

	st, err := wf.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, st.TotalOrders)
	assert.Equal(t, 6, st.ByStatus[models.OrderStatusNew])
}

func TestSearchResetsToFirstPage(t *testing.T) {
	k := boot(t, startAPI(t), kvstore.NewMemory())
	login(t, k, mockapi.DemoPhone)

	wf, _, err := k.VendorOrders(ctx)
	require.NoError(t, err)
	_, err = wf.FetchOrders(ctx)
	require.NoError(t, err)
	wf.SetPage(3)

	wf.SetSearch(" Berbere ")
	assert.Equal(t, 1, wf.Page())
	page, err := wf.FetchOrders(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, page.Orders)
	for _, o := range page.Orders {
		assert.Equal(t, "Berbere 1kg", o.Product.Name)
	}
}

func TestSessionSurvivesRestartAndLogoutClears(t *testing.T) {
	srv := startAPI(t)
	kv := kvstore.NewMemory()

	k := boot(t, srv, kv)
	login(t, k, mockapi.DemoPhone)
	_, err := k.Vendors.Resolve(ctx)
	require.NoError(t, err)
	assert.NotZero(t, k.Cache.Len())

	k2 := boot(t, srv, kv)
	assert.True(t, k2.Session.IsAuthenticated())
	u, err := k2.Auth.RefreshProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, mockapi.DemoPhone, u.PhoneNumber)

	require.NoError(t, k.Auth.Logout(ctx))
	assert.Zero(t, k.Cache.Len())
	_, err = k.Vendors.Resolve(ctx)
	assert.ErrorIs(t, err, services.ErrNotAuthenticated)

	k3 := boot(t, srv, kv)
	assert.False(t, k3.Session.IsAuthenticated())
}

func TestGateSendsEachOwnerToTheirSurface(t *testing.T) {
	srv := startAPI(t)
	for phone, want := range map[string]services.Gate{
		mockapi.DemoPhone:        services.GateDashboard,
		mockapi.DemoPendingPhone: services.GatePendingApproval,
		mockapi.DemoNewPhone:     services.GateApply,
	} {
		k := boot(t, srv, kvstore.NewMemory())
		login(t, k, phone)
		res, err := k.Vendors.Gate(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, res.Gate, phone)
	}
}

func TestVendorNotFoundBlocksOrders(t *testing.T) {
	k := boot(t, startAPI(t), kvstore.NewMemory())
	login(t, k, mockapi.DemoNewPhone)

	_, _, err := k.VendorOrders(ctx)
	assert.ErrorIs(t, err, services.ErrVendorNotFound)
}

func TestDashboard(t *testing.T) {
	k := boot(t, startAPI(t), kvstore.NewMemory())
	login(t, k, mockapi.DemoPhone)

	d, err := k.Dashboard.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Abebe Fresh Market", d.Vendor.BusinessName)
	assert.Equal(t, 2, d.Unread)
	assert.Equal(t, 25, d.Stats.TotalOrders)
	assert.Equal(t, 10, d.PageSummary.Counts.All)
}

func TestRegistrationFlow(t *testing.T) {
	k := boot(t, startAPI(t), kvstore.NewMemory())

	_, err := k.Auth.Register(ctx, services.RegisterInput{
		Name: "Liya", Phone: mockapi.DemoPhone, Password: "secret1", Confirm: "secret1",
	})
	var fe *services.FormError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Phone number already registered", fe.Field("phone_number"))

	_, err = k.Auth.Register(ctx, services.RegisterInput{
		Name: "Liya", Phone: "+251911555666", Password: "secret1", Confirm: "secret1",
	})
	require.NoError(t, err)

	_, err = k.Auth.Login(ctx, services.LoginInput{Phone: "+251911555666", Password: "secret1"})
	require.Error(t, err)
	assert.False(t, k.Session.IsAuthenticated())

	_, err = k.Auth.VerifyOTP(ctx, services.OTPInput{Phone: "+251911555666", OTP: "000000"})
	require.ErrorAs(t, err, &fe)
	assert.NotEmpty(t, fe.Field("otp"))

	u, err := k.Auth.VerifyOTP(ctx, services.OTPInput{Phone: "+251911555666", OTP: "123456"})
	require.NoError(t, err)
	assert.True(t, u.IsPhoneVerified)
	assert.True(t, k.Session.IsAuthenticated())
}

func TestProductsAndCatalog(t *testing.T) {
	k := boot(t, startAPI(t), kvstore.NewMemory())
	login(t, k, mockapi.DemoPhone)

	cats, err := k.Catalog.Categories(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, cats)
	subs, err := k.Catalog.Subcategories(ctx, cats[0].ID)
	require.NoError(t, err)
	assert.NotEmpty(t, subs)
	plans, err := k.Catalog.Subscriptions(ctx)
	require.NoError(t, err)
	assert.Len(t, plans, 2)

	disk := k.Disks.Default()
	require.NoError(t, disk.Put(ctx, "shots/front.jpg", []byte("jpeg")))

	p, err := k.Products.Create(ctx, models.ProductInput{
		Name: "Shiro 1kg", Price: 210, Stock: 12, CategoryID: string(cats[0].ID),
		Images: []string{"shots/front.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/front.jpg"}, p.Images)

	updated, err := k.Products.Update(ctx, p.ID, models.ProductInput{
		Name: "Shiro 2kg", Price: 400, Stock: 5, CategoryID: string(cats[0].ID),
	})
	require.NoError(t, err)
	assert.Equal(t, "Shiro 2kg", updated.Name)

	require.NoError(t, k.Products.Delete(ctx, p.ID))
	_, err = k.Products.Get(ctx, p.ID)
	assert.Error(t, err)
}
