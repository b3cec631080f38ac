package mockapi

import (
	"fmt"
	"time"

	"github.com/shashiranjanraj/vendordesk/app/models"
)

// Demo accounts created by Seed.
const (
	DemoPhone        = "+251911223344" // approved vendor with orders
	DemoPendingPhone = "+251911000002" // vendor awaiting approval
	DemoNewPhone     = "+251911000003" // vendor owner without a vendor
	DemoPassword     = "secret1"
	DemoVendorID     = models.ID("1")
)

// Seed fills the store with a small storefront: three vendor owners, a
// catalog, products, 25 orders across every status and a few
// notifications.
func Seed(s *Store) error {
	owner, err := s.AddUser(models.User{
		ID: "7", Name: "Abebe Kebede", PhoneNumber: DemoPhone,
		Type: models.RoleVendorOwner, IsVerified: true, IsPhoneVerified: true,
	}, DemoPassword)
	if err != nil {
		return err
	}
	pending, err := s.AddUser(models.User{
		ID: "8", Name: "Sara Tesfaye", PhoneNumber: DemoPendingPhone,
		Type: models.RoleVendorOwner, IsVerified: true, IsPhoneVerified: true,
	}, DemoPassword)
	if err != nil {
		return err
	}
	if _, err := s.AddUser(models.User{
		ID: "9", Name: "Dawit Haile", PhoneNumber: DemoNewPhone,
		Type: models.RoleVendorOwner, IsVerified: true, IsPhoneVerified: true,
	}, DemoPassword); err != nil {
		return err
	}

	vendor := s.AddVendor(models.Vendor{
		ID: DemoVendorID, UserID: owner.ID, BusinessName: "Abebe Fresh Market",
		Type: models.VendorBusiness, Status: models.VendorApproved,
		PhoneNumber: DemoPhone, Address: "Bole, Addis Ababa",
	})
	s.AddVendor(models.Vendor{
		ID: "2", UserID: pending.ID, BusinessName: "Sara Crafts",
		Type: models.VendorIndividual, Status: models.VendorPending,
		PhoneNumber: DemoPendingPhone,
	})

	s.mu.Lock()
	s.categories = []models.Category{
		{ID: "c1", Name: "Groceries"},
		{ID: "c2", Name: "Crafts"},
	}
	s.subcategories = []models.Subcategory{
		{ID: "s1", CategoryID: "c1", Name: "Grains"},
		{ID: "s2", CategoryID: "c1", Name: "Spices"},
		{ID: "s3", CategoryID: "c2", Name: "Baskets"},
	}
	s.subscriptions = []models.Subscription{
		{ID: "basic", Name: "Basic", Price: 0, DurationDays: 30, Features: []string{"10 products"}},
		{ID: "pro", Name: "Pro", Price: 499, DurationDays: 30, Features: []string{"Unlimited products", "Priority support"}},
	}
	s.mu.Unlock()

	products := []models.Product{
		s.AddProduct(models.Product{ID: "p1", VendorID: vendor.ID, Name: "Teff Flour 5kg", Price: 850, Stock: 40, CategoryID: "c1", IsActive: true}),
		s.AddProduct(models.Product{ID: "p2", VendorID: vendor.ID, Name: "Berbere 1kg", Price: 320, Stock: 25, CategoryID: "c1", IsActive: true}),
		s.AddProduct(models.Product{ID: "p3", VendorID: vendor.ID, Name: "Mitmita 250g", Price: 150, Stock: 60, CategoryID: "c1", IsActive: true}),
	}
	clients := []string{"Hana", "Yonas", "Meron", "Kebede", "Lily"}

	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		p := products[i%len(products)]
		qty := 1 + i%3
		s.AddOrder(models.Order{
			ID:     int64(i + 1),
			Status: models.OrderStatuses[i%len(models.OrderStatuses)],
			Client: models.OrderParty{
				ID:   models.ID(fmt.Sprintf("u%d", 100+i%len(clients))),
				Name: clients[i%len(clients)],
			},
			Vendor:        models.OrderParty{ID: vendor.ID, Name: vendor.BusinessName, PhoneNumber: vendor.PhoneNumber},
			Product:       models.OrderProduct{ID: p.ID, Name: p.Name, Price: p.Price},
			Quantity:      qty,
			UnitPrice:     p.Price,
			TotalAmount:   p.Price * float64(qty),
			PaymentMethod: "cash_on_delivery",
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		})
	}

	for i, title := range []string{"New order received", "Payout processed", "Subscription renews soon"} {
		s.Notify(models.Notification{
			ID: models.ID(fmt.Sprintf("n%d", i+1)), UserID: owner.ID, Title: title,
			Body: title + ".", Type: "info", IsRead: i == 1,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return nil
}
