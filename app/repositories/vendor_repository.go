package repositories

import (
	"context"
	"net/url"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/pkg/http"
)

// VendorRepository covers /vendors/*.
type VendorRepository struct {
	api *http.Client
}

func NewVendorRepository(api *http.Client) *VendorRepository {
	return &VendorRepository{api: api}
}

// ByPhone finds the vendor registered under a phone number.
func (r *VendorRepository) ByPhone(ctx context.Context, phone string) (*models.Vendor, error) {
	var v models.Vendor
	if err := decode(ctx, r.api.Get("/vendors/by-phone/%s", url.PathEscape(phone)), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VendorRepository) ByID(ctx context.Context, id models.ID) (*models.Vendor, error) {
	var v models.Vendor
	if err := decode(ctx, r.api.Get("/vendors/%s", url.PathEscape(id.String())), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// MyStatus reports the application state of the session user's vendor.
func (r *VendorRepository) MyStatus(ctx context.Context) (*models.VendorApplicationStatus, error) {
	var s models.VendorApplicationStatus
	if err := decode(ctx, r.api.Get("/vendors/my-status"), &s); err != nil {
		return nil, err
	}
	return &s, nil
}
