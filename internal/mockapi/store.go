package mockapi

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/pkg/auth"
)

var (
	errNotFound       = errors.New("not found")
	errDuplicatePhone = errors.New("Phone number already registered")
	errBadCredentials = errors.New("Invalid phone number or password")
	errUnverified     = errors.New("Please verify your phone number before logging in")
	errInvalidOTP     = errors.New("Invalid or expired OTP")
	errInvalidReset   = errors.New("Invalid or expired reset token")
)

type account struct {
	user models.User
	hash string
}

// Store is the in-memory state behind the mock API.
type Store struct {
	mu  sync.Mutex
	now func() time.Time
	otp string

	accounts      map[models.ID]*account
	byPhone       map[string]models.ID
	vendors       map[models.ID]*models.Vendor
	orders        map[int64]*models.Order
	products      map[models.ID]*models.Product
	categories    []models.Category
	subcategories []models.Subcategory
	subscriptions []models.Subscription
	notifications map[models.ID]*models.Notification

	pendingOTP  map[string]string // phone → registration OTP
	resetOTP    map[string]string // phone → reset OTP
	resetTokens map[string]string // reset token → phone

	seq int64
}

// NewStore returns an empty store. Every OTP it hands out is otp.
func NewStore(otp string) *Store {
	return &Store{
		now:           time.Now,
		otp:           otp,
		accounts:      map[models.ID]*account{},
		byPhone:       map[string]models.ID{},
		vendors:       map[models.ID]*models.Vendor{},
		orders:        map[int64]*models.Order{},
		products:      map[models.ID]*models.Product{},
		notifications: map[models.ID]*models.Notification{},
		pendingOTP:    map[string]string{},
		resetOTP:      map[string]string{},
		resetTokens:   map[string]string{},
		seq:           1000,
	}
}

func (s *Store) nextID() models.ID {
	s.seq++
	return models.ID(strconv.FormatInt(s.seq, 10))
}

// ─── Accounts ────────────────────────────────────────────────────────────────

// AddUser registers a verified account directly.
func (s *Store) AddUser(u models.User, password string) (models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byPhone[u.PhoneNumber]; dup {
		return models.User{}, errDuplicatePhone
	}
	if u.ID == "" {
		u.ID = s.nextID()
	}
	now := s.now()
	u.CreatedAt = &now
	s.accounts[u.ID] = &account{user: u, hash: hash}
	s.byPhone[u.PhoneNumber] = u.ID
	return u, nil
}

func (s *Store) Login(phone, password string) (models.User, error) {
	s.mu.Lock()
	acc, ok := s.accounts[s.byPhone[phone]]
	s.mu.Unlock()
	if !ok || !auth.CheckPassword(acc.hash, password) {
		return models.User{}, errBadCredentials
	}
	if !acc.user.IsPhoneVerified {
		return models.User{}, errUnverified
	}
	return acc.user, nil
}

func (s *Store) User(id models.ID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return models.User{}, errNotFound
	}
	return acc.user, nil
}

// Register creates an unverified vendor owner and issues an OTP.
func (s *Store) Register(name, phone, email, password string) error {
	u := models.User{Name: name, PhoneNumber: phone, Type: models.RoleVendorOwner}
	if email != "" {
		u.Email = &email
	}
	if _, err := s.AddUser(u, password); err != nil {
		return err
	}
	s.mu.Lock()
	s.pendingOTP[phone] = s.otp
	s.mu.Unlock()
	return nil
}

// VerifyOTP marks the phone verified.
func (s *Store) VerifyOTP(phone, otp string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want, ok := s.pendingOTP[phone]
	if !ok || want != otp {
		return models.User{}, errInvalidOTP
	}
	delete(s.pendingOTP, phone)
	acc := s.accounts[s.byPhone[phone]]
	acc.user.IsPhoneVerified = true
	acc.user.IsVerified = true
	return acc.user, nil
}

func (s *Store) ResendOTP(phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pendingOTP[phone]; !ok {
		return errNotFound
	}
	s.pendingOTP[phone] = s.otp
	return nil
}

func (s *Store) ForgotPassword(phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byPhone[phone]; !ok {
		return errNotFound
	}
	s.resetOTP[phone] = s.otp
	return nil
}

func (s *Store) VerifyResetOTP(phone, otp string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if want, ok := s.resetOTP[phone]; !ok || want != otp {
		return "", errInvalidOTP
	}
	delete(s.resetOTP, phone)
	token := "reset-" + string(s.nextID())
	s.resetTokens[token] = phone
	return token, nil
}

func (s *Store) ResetPassword(token, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	phone, ok := s.resetTokens[token]
	if !ok {
		return errInvalidReset
	}
	delete(s.resetTokens, token)
	s.accounts[s.byPhone[phone]].hash = hash
	return nil
}

// ─── Vendors ─────────────────────────────────────────────────────────────────

func (s *Store) AddVendor(v models.Vendor) models.Vendor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == "" {
		v.ID = s.nextID()
	}
	now := s.now()
	v.CreatedAt = &now
	s.vendors[v.ID] = &v
	return v
}

func (s *Store) Vendor(id models.ID) (models.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vendors[id]
	if !ok {
		return models.Vendor{}, errNotFound
	}
	return *v, nil
}

func (s *Store) VendorByPhone(phone string) (models.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.vendors {
		if v.PhoneNumber == phone {
			return *v, nil
		}
	}
	return models.Vendor{}, errNotFound
}

func (s *Store) VendorOf(userID models.ID) (models.Vendor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.vendors {
		if v.UserID == userID {
			return *v, true
		}
	}
	return models.Vendor{}, false
}

// ─── Orders ──────────────────────────────────────────────────────────────────

func (s *Store) AddOrder(o models.Order) models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == 0 {
		s.seq++
		o.ID = s.seq
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	o.UpdatedAt = o.CreatedAt
	s.orders[o.ID] = &o
	return o
}

func (s *Store) Order(id int64) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, errNotFound
	}
	return *o, nil
}

// OrderFilter selects a vendor's orders.
type OrderFilter struct {
	VendorID models.ID
	Status   models.OrderStatus
	Search   string
	Page     int
	Limit    int
}

// Orders returns one page of the vendor's orders, newest first.
func (s *Store) Orders(f OrderFilter) models.OrderPage {
	s.mu.Lock()
	var matched []models.Order
	search := strings.ToLower(f.Search)
	for _, o := range s.orders {
		if o.Vendor.ID != f.VendorID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if search != "" && !matchesOrder(o, search) {
			continue
		}
		matched = append(matched, *o)
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	items, p := paginate(matched, f.Page, f.Limit)
	if items == nil {
		items = []models.Order{}
	}
	return models.OrderPage{Orders: items, Pagination: p}
}

func matchesOrder(o *models.Order, term string) bool {
	return strings.Contains(strings.ToLower(o.Client.Name), term) ||
		strings.Contains(strings.ToLower(o.Product.Name), term) ||
		strconv.FormatInt(o.ID, 10) == term
}

// transitionError is a refused status change.
type transitionError struct {
	from, to models.OrderStatus
}

func (e *transitionError) Error() string {
	return fmt.Sprintf("Cannot change order status from %s to %s", e.from, e.to)
}

// SetOrderStatus applies the forward-only status rule.
func (s *Store) SetOrderStatus(id int64, to models.OrderStatus) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return models.Order{}, errNotFound
	}
	if !models.CanTransition(o.Status, to) {
		return models.Order{}, &transitionError{from: o.Status, to: to}
	}
	o.Status = to
	o.UpdatedAt = s.now()
	if to == models.OrderStatusReadyToDelivery && o.Delivery == nil {
		o.Delivery = &models.Delivery{ID: models.ID("d-" + strconv.FormatInt(o.ID, 10)), Status: models.DeliveryNotAssigned}
	}
	if to == models.OrderStatusCompleted && o.Delivery != nil {
		o.Delivery.Status = models.DeliveryDelivered
	}
	return *o, nil
}

// Stats aggregates every order of the vendor.
func (s *Store) Stats(vendorID models.ID) models.VendorStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := models.VendorStats{ByStatus: map[models.OrderStatus]int{}}
	for _, status := range models.OrderStatuses {
		st.ByStatus[status] = 0
	}
	for _, o := range s.orders {
		if o.Vendor.ID != vendorID {
			continue
		}
		st.TotalOrders++
		st.TotalRevenue += o.TotalAmount
		st.ByStatus[o.Status]++
	}
	if st.TotalOrders > 0 {
		st.AverageOrderValue = st.TotalRevenue / float64(st.TotalOrders)
	}
	return st
}

// ─── Products ────────────────────────────────────────────────────────────────

func (s *Store) AddProduct(p models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = s.nextID()
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	now := s.now()
	p.CreatedAt = &now
	s.products[p.ID] = &p
	return p
}

func (s *Store) Product(id models.ID) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, errNotFound
	}
	return *p, nil
}

type ProductFilter struct {
	VendorID   models.ID
	CategoryID models.ID
	Search     string
	Page       int
	Limit      int
}

func (s *Store) Products(f ProductFilter) models.ProductPage {
	s.mu.Lock()
	var matched []models.Product
	search := strings.ToLower(f.Search)
	for _, p := range s.products {
		if f.VendorID != "" && p.VendorID != f.VendorID {
			continue
		}
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		matched = append(matched, *p)
	}
	s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	items, pg := paginate(matched, f.Page, f.Limit)
	if items == nil {
		items = []models.Product{}
	}
	return models.ProductPage{Products: items, Pagination: pg}
}

// UpdateProduct replaces the editable fields of a product.
func (s *Store) UpdateProduct(id models.ID, in models.ProductInput) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, errNotFound
	}
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Stock = in.Stock
	p.CategoryID = models.ID(in.CategoryID)
	if in.SubcategoryID != "" {
		sub := models.ID(in.SubcategoryID)
		p.SubcategoryID = &sub
	} else {
		p.SubcategoryID = nil
	}
	return *p, nil
}

func (s *Store) DeleteProduct(id models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return errNotFound
	}
	delete(s.products, id)
	return nil
}

// ─── Catalog ─────────────────────────────────────────────────────────────────

func (s *Store) Categories() []models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Category{}, s.categories...)
}

func (s *Store) Subcategories(categoryID models.ID) []models.Subcategory {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Subcategory{}
	for _, sc := range s.subcategories {
		if sc.CategoryID == categoryID {
			out = append(out, sc)
		}
	}
	return out
}

func (s *Store) Subscriptions() []models.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Subscription{}, s.subscriptions...)
}

// ─── Notifications ───────────────────────────────────────────────────────────

func (s *Store) Notify(n models.Notification) models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = s.nextID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	s.notifications[n.ID] = &n
	return n
}

func (s *Store) Notifications(userID models.ID) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Notification{}
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Store) UnreadCount(userID models.ID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, x := range s.notifications {
		if x.UserID == userID && !x.IsRead {
			n++
		}
	}
	return n
}

// MarkRead marks a notification of userID read.
func (s *Store) MarkRead(userID, id models.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return errNotFound
	}
	n.IsRead = true
	return nil
}

// ─── Paging ──────────────────────────────────────────────────────────────────

func paginate[T any](items []T, page, limit int) ([]T, models.Pagination) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	total := len(items)
	p := models.Pagination{Page: page, Limit: limit, Total: total, TotalPages: (total + limit - 1) / limit}

	start := (page - 1) * limit
	if start >= total {
		return nil, p
	}
	end := start + limit
	if end > total {
		end = total
	}
	return items[start:end], p
}
