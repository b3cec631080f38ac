package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/pkg/cache"
	"github.com/shashiranjanraj/vendordesk/pkg/http"
)

// Gate is the surface an authenticated vendor owner is sent to.
type Gate string

const (
	GateDashboard       Gate = "dashboard"
	GatePendingApproval Gate = "pending_approval"
	GateRejected        Gate = "rejected"
	GateApply           Gate = "apply"
)

type GateResult struct {
	Gate   Gate
	Vendor *models.Vendor
	Reason string
}

// VendorService finds the vendor behind the signed-in user.
type VendorService struct {
	api     VendorAPI
	session Session
	cache   *cache.Cache
}

func NewVendorService(api VendorAPI, s Session, c *cache.Cache) *VendorService {
	return &VendorService{api: api, session: s, cache: c}
}

// Resolve looks the vendor up by the session user's phone number. A user
// with no vendor gets ErrVendorNotFound.
func (s *VendorService) Resolve(ctx context.Context) (*models.Vendor, error) {
	user := s.session.User()
	if user == nil || !s.session.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	v, err := cache.Remember(ctx, s.cache, cache.Key("vendor", "phone", user.PhoneNumber), func(ctx context.Context) (*models.Vendor, error) {
		return s.api.ByPhone(ctx, user.PhoneNumber)
	})
	if err != nil {
		if http.IsNotFound(err) {
			return nil, fmt.Errorf("vendor: resolve %s: %w", user.PhoneNumber, ErrVendorNotFound)
		}
		return nil, fmt.Errorf("vendor: resolve %s: %w", user.PhoneNumber, err)
	}
	return v, nil
}

// ResolveID is Resolve reduced to the id the order workflow is built from.
func (s *VendorService) ResolveID(ctx context.Context) (models.ID, error) {
	v, err := s.Resolve(ctx)
	if err != nil {
		return "", err
	}
	return v.ID, nil
}

func (s *VendorService) ByID(ctx context.Context, id models.ID) (*models.Vendor, error) {
	v, err := cache.Remember(ctx, s.cache, cache.Key("vendor", id), func(ctx context.Context) (*models.Vendor, error) {
		return s.api.ByID(ctx, id)
	})
	if err != nil {
		if http.IsNotFound(err) {
			return nil, fmt.Errorf("vendor: get %s: %w", id, ErrVendorNotFound)
		}
		return nil, fmt.Errorf("vendor: get %s: %w", id, err)
	}
	return v, nil
}

// MyStatus is never cached; it is what changes while an application is
// reviewed.
func (s *VendorService) MyStatus(ctx context.Context) (*models.VendorApplicationStatus, error) {
	st, err := s.api.MyStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("vendor: my status: %w", err)
	}
	return st, nil
}

// Gate decides where the signed-in user lands. Suspended vendors are
// treated like rejected ones.
func (s *VendorService) Gate(ctx context.Context) (GateResult, error) {
	if !s.session.IsAuthenticated() {
		return GateResult{}, ErrNotAuthenticated
	}

	st, err := s.MyStatus(ctx)
	if err != nil {
		return GateResult{}, err
	}
	res := GateResult{Reason: st.Reason}
	if !st.HasVendor {
		res.Gate = GateApply
		return res, nil
	}

	if st.VendorID != nil {
		if v, err := s.ByID(ctx, *st.VendorID); err == nil {
			res.Vendor = v
		}
	}
	res.Gate = gateFor(st.Status)
	return res, nil
}

func gateFor(status models.VendorStatus) Gate {
	switch status {
	case models.VendorApproved:
		return GateDashboard
	case models.VendorPending:
		return GatePendingApproval
	case models.VendorRejected, models.VendorSuspended:
		return GateRejected
	}
	return GateApply
}
