package services

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/app/repositories"
	"github.com/shashiranjanraj/vendordesk/pkg/cache"
	"github.com/shashiranjanraj/vendordesk/pkg/http"
	"github.com/shashiranjanraj/vendordesk/pkg/storage"
	"github.com/shashiranjanraj/vendordesk/pkg/validate"
)

const maxImages = 5

// ProductService manages the vendor's catalogue. Media named in a
// ProductInput are paths on disk and are read from it at upload time.
type ProductService struct {
	api   ProductAPI
	disk  storage.Disk
	cache *cache.Cache
}

// NewProductService wires the service. disk may be nil when no uploads are
// made.
func NewProductService(api ProductAPI, disk storage.Disk, c *cache.Cache) *ProductService {
	return &ProductService{api: api, disk: disk, cache: c}
}

func (s *ProductService) List(ctx context.Context, q repositories.ProductQuery) (*models.ProductPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	q.Search = strings.TrimSpace(q.Search)
	key := cache.Key("products", q.VendorID, q.CategoryID, q.Search, q.Page, q.Limit)

	page, err := cache.Remember(ctx, s.cache, key, func(ctx context.Context) (*models.ProductPage, error) {
		return s.api.List(ctx, q)
	})
	if err != nil {
		return nil, fmt.Errorf("products: list: %w", err)
	}
	return page, nil
}

func (s *ProductService) Get(ctx context.Context, id models.ID) (*models.Product, error) {
	p, err := cache.Remember(ctx, s.cache, cache.Key("products", "id", id), func(ctx context.Context) (*models.Product, error) {
		return s.api.ByID(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("products: get %s: %w", id, err)
	}
	return p, nil
}

// Create uploads the product together with its images and video.
func (s *ProductService) Create(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return nil, err
	}

	media, err := s.media(ctx, in)
	if err != nil {
		return nil, err
	}

	p, err := s.api.Create(ctx, in, media)
	if err != nil {
		return nil, fmt.Errorf("products: create: %w", formError(err))
	}
	s.cache.Invalidate(cache.Prefix("products"))
	return p, nil
}

// Update replaces the editable fields. Media are not re-uploaded.
func (s *ProductService) Update(ctx context.Context, id models.ID, in models.ProductInput) (*models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := inputError(validate.Struct(in)); err != nil {
		return nil, err
	}

	p, err := s.api.Update(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("products: update %s: %w", id, formError(err))
	}
	s.cache.Invalidate(cache.Prefix("products"))
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id models.ID) error {
	if err := s.api.Delete(ctx, id); err != nil {
		return fmt.Errorf("products: delete %s: %w", id, err)
	}
	s.cache.Invalidate(cache.Prefix("products"))
	return nil
}

func (s *ProductService) check(in models.ProductInput) error {
	errs := validate.Struct(in)
	if len(in.Images) > maxImages {
		if errs == nil {
			errs = validate.Errors{}
		}
		errs["images"] = fmt.Sprintf("At most %d images can be uploaded.", maxImages)
	}
	return inputError(errs)
}

// media reads every image and the optional video from the disk.
func (s *ProductService) media(ctx context.Context, in models.ProductInput) ([]http.File, error) {
	if len(in.Images) == 0 && in.Video == "" {
		return nil, nil
	}
	if s.disk == nil {
		return nil, fmt.Errorf("products: media given but no storage disk is configured")
	}

	var files []http.File
	for _, p := range in.Images {
		f, err := s.read(ctx, "images", p, "image/")
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	if in.Video != "" {
		f, err := s.read(ctx, "video", in.Video, "video/")
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func (s *ProductService) read(ctx context.Context, field, p, kind string) (http.File, error) {
	mimeType := mimeOf(p)
	if !strings.HasPrefix(mimeType, kind) {
		return http.File{}, inputError(validate.Errors{field: fmt.Sprintf("%s is not a %s file.", p, strings.TrimSuffix(kind, "/"))})
	}
	data, err := s.disk.Get(ctx, p)
	if err != nil {
		return http.File{}, fmt.Errorf("products: read %s: %w", p, err)
	}
	return http.File{Field: field, Name: path.Base(p), Data: data, MimeType: mimeType}, nil
}

// Video types are not in Go's builtin table and system mime files vary.
var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
}

func mimeOf(p string) string {
	ext := strings.ToLower(path.Ext(p))
	if t, ok := videoTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		t, _, _ = strings.Cut(t, ";")
		return t
	}
	return ""
}
