package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/app/repositories"
	"github.com/shashiranjanraj/vendordesk/pkg/cache"
	"github.com/shashiranjanraj/vendordesk/pkg/kvstore"
	"github.com/shashiranjanraj/vendordesk/pkg/session"
)

var ctx = context.Background()

func newCache() *cache.Cache { return cache.New(time.Minute, cache.WithName("test")) }

func vendorOwner() *models.User {
	return &models.User{ID: "7", Name: "Abebe", PhoneNumber: "+251911223344", Type: models.RoleVendorOwner}
}

func signedIn() *session.Store {
	s := session.NewStore(kvstore.NewMemory())
	if err := s.SetAndPersist(ctx, vendorOwner(), "tok-1"); err != nil {
		panic(err)
	}
	return s
}

// fakeOrders is an in-memory OrderAPI counting calls per operation.
type fakeOrders struct {
	mu        sync.Mutex
	orders    map[int64]*models.Order
	listCalls int
	getCalls  int
	updates   []models.OrderStatus
	lastQuery repositories.OrderQuery
	failWith  error
}

func newFakeOrders(os ...models.Order) *fakeOrders {
	f := &fakeOrders{orders: map[int64]*models.Order{}}
	for i := range os {
		o := os[i]
		f.orders[o.ID] = &o
	}
	return f
}

func (f *fakeOrders) ListByVendor(_ context.Context, _ models.ID, q repositories.OrderQuery) (*models.OrderPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.lastQuery = q

	var out []models.Order
	for id := int64(1); id <= 100; id++ {
		o, ok := f.orders[id]
		if !ok {
			continue
		}
		if st, ok := q.Status.Status(); ok && o.Status != st {
			continue
		}
		out = append(out, *o)
	}
	total := len(out)
	pages := (total + q.Limit - 1) / q.Limit
	start := (q.Page - 1) * q.Limit
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return &models.OrderPage{
		Orders:     out[start:end],
		Pagination: models.Pagination{Page: q.Page, Limit: q.Limit, Total: total, TotalPages: pages},
	}, nil
}

func (f *fakeOrders) ByID(_ context.Context, id int64) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	o, ok := f.orders[id]
	if !ok {
		return nil, &notFound{}
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id int64, st models.OrderStatus) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, st)
	if f.failWith != nil {
		return nil, f.failWith
	}
	o := f.orders[id]
	o.Status = st
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) Stats(_ context.Context, _ models.ID) (*models.VendorStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := &models.VendorStats{ByStatus: map[models.OrderStatus]int{}}
	for _, o := range f.orders {
		st.TotalOrders++
		st.TotalRevenue += o.TotalAmount
		st.ByStatus[o.Status]++
	}
	return st, nil
}

type notFound struct{}

func (*notFound) Error() string { return "not found" }

// mockAuth is a testify mock of AuthAPI.
type mockAuth struct{ mock.Mock }

func (m *mockAuth) Login(ctx context.Context, phone, password string) (*repositories.AuthResult, error) {
	args := m.Called(ctx, phone, password)
	res, _ := args.Get(0).(*repositories.AuthResult)
	return res, args.Error(1)
}

func (m *mockAuth) RegisterVendorOwner(ctx context.Context, in repositories.Registration) (repositories.Message, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(repositories.Message), args.Error(1)
}

func (m *mockAuth) VerifyOTP(ctx context.Context, phone, otp string) (*repositories.AuthResult, error) {
	args := m.Called(ctx, phone, otp)
	res, _ := args.Get(0).(*repositories.AuthResult)
	return res, args.Error(1)
}

func (m *mockAuth) ResendOTP(ctx context.Context, phone string) (repositories.Message, error) {
	args := m.Called(ctx, phone)
	return args.Get(0).(repositories.Message), args.Error(1)
}

func (m *mockAuth) ForgotPassword(ctx context.Context, phone string) (repositories.Message, error) {
	args := m.Called(ctx, phone)
	return args.Get(0).(repositories.Message), args.Error(1)
}

func (m *mockAuth) VerifyResetOTP(ctx context.Context, phone, otp string) (string, error) {
	args := m.Called(ctx, phone, otp)
	return args.String(0), args.Error(1)
}

func (m *mockAuth) ResetPassword(ctx context.Context, token, newPassword string) (repositories.Message, error) {
	args := m.Called(ctx, token, newPassword)
	return args.Get(0).(repositories.Message), args.Error(1)
}

func (m *mockAuth) Profile(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

// mockVendors is a testify mock of VendorAPI.
type mockVendors struct{ mock.Mock }

func (m *mockVendors) ByPhone(ctx context.Context, phone string) (*models.Vendor, error) {
	args := m.Called(ctx, phone)
	v, _ := args.Get(0).(*models.Vendor)
	return v, args.Error(1)
}

func (m *mockVendors) ByID(ctx context.Context, id models.ID) (*models.Vendor, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*models.Vendor)
	return v, args.Error(1)
}

func (m *mockVendors) MyStatus(ctx context.Context) (*models.VendorApplicationStatus, error) {
	args := m.Called(ctx)
	st, _ := args.Get(0).(*models.VendorApplicationStatus)
	return st, args.Error(1)
}

// fakeNotifications counts calls and serves a fixed unread count.
type fakeNotifications struct {
	mu     sync.Mutex
	unread int
	calls  int
	marked []models.ID
}

func (f *fakeNotifications) ByUser(context.Context, models.ID) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return []models.Notification{{ID: "n1", Title: "New order"}}, nil
}

func (f *fakeNotifications) UnreadCount(context.Context, models.ID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.unread, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id models.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, id)
	if f.unread > 0 {
		f.unread--
	}
	return nil
}
