// Package services holds the client-side workflows the CLI (or any
// embedding application) drives: sign-in, vendor gating, the order
// workflow, products, catalog, notifications and the dashboard.
package services

import (
	"context"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/app/repositories"
	"github.com/shashiranjanraj/vendordesk/pkg/http"
)

// The interfaces below are satisfied by the app/repositories types; tests
// substitute fakes.

type AuthAPI interface {
	Login(ctx context.Context, phone, password string) (*repositories.AuthResult, error)
	RegisterVendorOwner(ctx context.Context, in repositories.Registration) (repositories.Message, error)
	VerifyOTP(ctx context.Context, phone, otp string) (*repositories.AuthResult, error)
	ResendOTP(ctx context.Context, phone string) (repositories.Message, error)
	ForgotPassword(ctx context.Context, phone string) (repositories.Message, error)
	VerifyResetOTP(ctx context.Context, phone, otp string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) (repositories.Message, error)
	Profile(ctx context.Context) (*models.User, error)
}

type VendorAPI interface {
	ByPhone(ctx context.Context, phone string) (*models.Vendor, error)
	ByID(ctx context.Context, id models.ID) (*models.Vendor, error)
	MyStatus(ctx context.Context) (*models.VendorApplicationStatus, error)
}

type OrderAPI interface {
	ListByVendor(ctx context.Context, vendorID models.ID, q repositories.OrderQuery) (*models.OrderPage, error)
	ByID(ctx context.Context, id int64) (*models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error)
	Stats(ctx context.Context, vendorID models.ID) (*models.VendorStats, error)
}

type ProductAPI interface {
	List(ctx context.Context, q repositories.ProductQuery) (*models.ProductPage, error)
	ByID(ctx context.Context, id models.ID) (*models.Product, error)
	Create(ctx context.Context, in models.ProductInput, media []http.File) (*models.Product, error)
	Update(ctx context.Context, id models.ID, in models.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id models.ID) error
}

type CatalogAPI interface {
	Categories(ctx context.Context) ([]models.Category, error)
	Subcategories(ctx context.Context, categoryID models.ID) ([]models.Subcategory, error)
	Subscriptions(ctx context.Context) ([]models.Subscription, error)
}

type NotificationAPI interface {
	ByUser(ctx context.Context, userID models.ID) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID models.ID) (int, error)
	MarkRead(ctx context.Context, id models.ID) error
}

// Session is the part of session.Store the services read and write.
type Session interface {
	SetAndPersist(ctx context.Context, user *models.User, token string) error
	ClearAndPersist(ctx context.Context) error
	User() *models.User
	Token() string
	IsAuthenticated() bool
}
