// Package mockapi is an in-memory stand-in for the vendor REST API, used
// for local development (cmd/mockapi) and as the backend of integration
// tests.
package mockapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/pkg/auth"
	"github.com/shashiranjanraj/vendordesk/pkg/ctx"
	"github.com/shashiranjanraj/vendordesk/pkg/metrics"
	"github.com/shashiranjanraj/vendordesk/pkg/middleware"
	"github.com/shashiranjanraj/vendordesk/pkg/reqid"
	"github.com/shashiranjanraj/vendordesk/pkg/response"
	"github.com/shashiranjanraj/vendordesk/pkg/router"
)

type Options struct {
	Secret   string        // JWT signing key
	OTP      string        // code every OTP flow accepts, "123456" by default
	TokenTTL time.Duration // 24h by default
	Seed     bool          // fill the store with demo data
	// OTPLimit caps OTP sends per client per minute; 0 means 5.
	OTPLimit int
}

type Server struct {
	opts   Options
	store  *Store
	router *router.Router
}

func New(opts Options) (*Server, error) {
	if opts.Secret == "" {
		return nil, errors.New("mockapi: a signing secret is required")
	}
	if opts.OTP == "" {
		opts.OTP = "123456"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.OTPLimit <= 0 {
		opts.OTPLimit = 5
	}

	s := &Server{opts: opts, store: NewStore(opts.OTP), router: router.New()}
	if opts.Seed {
		if err := Seed(s.store); err != nil {
			return nil, err
		}
	}
	s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.router.Handler() }

// Store exposes the state so tests and cmd/mockapi can add fixtures.
func (s *Server) Store() *Store { return s.store }

func (s *Server) Routes() []router.RouteInfo { return s.router.Routes() }

func (s *Server) routes() {
	r := s.router
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS("*"))
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w, "Route not found") })
	r.Handle("/metrics", metrics.Handler())

	otpLimit := middleware.NewLimiter(s.opts.OTPLimit, time.Minute)

	api := r.Group("/api")
	a := api.Group("/auth")
	a.Post("/login", "auth.login", ctx.Wrap(s.login))
	a.Post("/register-vendor-owner", "auth.register", ctx.Wrap(s.register), otpLimit.Middleware)
	a.Post("/verify-otp", "auth.verify-otp", ctx.Wrap(s.verifyOTP))
	a.Post("/resend-otp", "auth.resend-otp", ctx.Wrap(s.resendOTP), otpLimit.Middleware)
	a.Post("/forgot-password", "auth.forgot-password", ctx.Wrap(s.forgotPassword), otpLimit.Middleware)
	a.Post("/verify-reset-otp", "auth.verify-reset-otp", ctx.Wrap(s.verifyResetOTP))
	a.Post("/reset-password", "auth.reset-password", ctx.Wrap(s.resetPassword))

	protected := api.Group("", middleware.Auth(s.opts.Secret))
	protected.Get("/auth/profile", "auth.profile", ctx.Wrap(s.profile))

	v := protected.Group("/vendors")
	v.Get("/my-status", "vendors.my-status", ctx.Wrap(s.myStatus))
	v.Get("/by-phone/{phone}", "vendors.by-phone", ctx.Wrap(s.vendorByPhone))
	v.Get("/{id}", "vendors.show", ctx.Wrap(s.vendor))

	owner := protected.Group("", middleware.RequireRole(string(models.RoleVendorOwner)))
	o := owner.Group("/orders")
	o.Get("/vendor/{id}", "orders.by-vendor", ctx.Wrap(s.vendorOrders))
	o.Get("/vendor/{id}/stats", "orders.stats", ctx.Wrap(s.vendorStats))
	o.Get("/{id}", "orders.show", ctx.Wrap(s.order))
	o.Patch("/{id}/status", "orders.status", ctx.Wrap(s.orderStatus))

	p := protected.Group("/products")
	p.Get("", "products.index", ctx.Wrap(s.products))
	p.Get("/{id}", "products.show", ctx.Wrap(s.product))
	p.Post("", "products.store", ctx.Wrap(s.createProduct), middleware.RequireRole(string(models.RoleVendorOwner)))
	p.Put("/{id}", "products.update", ctx.Wrap(s.updateProduct), middleware.RequireRole(string(models.RoleVendorOwner)))
	p.Delete("/{id}", "products.destroy", ctx.Wrap(s.deleteProduct), middleware.RequireRole(string(models.RoleVendorOwner)))

	protected.Get("/category", "catalog.categories", ctx.Wrap(s.categories))
	protected.Get("/category/{id}/subcategories", "catalog.subcategories", ctx.Wrap(s.subcategories))
	protected.Get("/subscription/", "catalog.subscriptions", ctx.Wrap(s.subscriptions))

	n := protected.Group("/notifications")
	n.Get("/user/{id}", "notifications.index", ctx.Wrap(s.notifications))
	n.Get("/user/{id}/unread-count", "notifications.unread", ctx.Wrap(s.unreadCount))
	n.Patch("/{id}/read", "notifications.read", ctx.Wrap(s.markRead))
}

// ─── Auth ────────────────────────────────────────────────────────────────────

type loginBody struct {
	Phone    string `json:"phone_number" validate:"required"`
	Password string `json:"password"     validate:"required"`
}

type authBody struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (s *Server) issue(c *ctx.Context, u models.User) {
	token, err := auth.Issue(s.opts.Secret, u.ID.String(), string(u.Type), u.PhoneNumber, s.opts.TokenTTL)
	if err != nil {
		c.Error(http.StatusInternalServerError, "Could not issue token")
		return
	}
	c.OK(authBody{Token: token, User: u})
}

func (s *Server) login(c *ctx.Context) {
	var in loginBody
	if !c.Bind(&in) {
		return
	}
	u, err := s.store.Login(in.Phone, in.Password)
	switch {
	case errors.Is(err, errUnverified):
		c.Error(http.StatusForbidden, err.Error())
	case err != nil:
		c.Error(http.StatusUnauthorized, err.Error())
	default:
		s.issue(c, u)
	}
}

type registerBody struct {
	Name     string `json:"name"         validate:"required,min=2"`
	Phone    string `json:"phone_number" validate:"required,phone"`
	Email    string `json:"email"        validate:"nullable,email"`
	Password string `json:"password"     validate:"required,min=6"`
}

func (s *Server) register(c *ctx.Context) {
	var in registerBody
	if !c.Bind(&in) {
		return
	}
	if err := s.store.Register(in.Name, in.Phone, in.Email, in.Password); err != nil {
		if errors.Is(err, errDuplicatePhone) {
			c.FieldError(http.StatusConflict, "phone_number", err.Error())
			return
		}
		c.Error(http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusCreated, map[string]string{"message": "Registration successful. An OTP was sent to your phone."})
}

type otpBody struct {
	Phone string `json:"phone_number" validate:"required"`
	OTP   string `json:"otp"          validate:"required"`
}

func (s *Server) verifyOTP(c *ctx.Context) {
	var in otpBody
	if !c.Bind(&in) {
		return
	}
	u, err := s.store.VerifyOTP(in.Phone, in.OTP)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}
	s.issue(c, u)
}

type phoneBody struct {
	Phone string `json:"phone_number" validate:"required"`
}

func (s *Server) resendOTP(c *ctx.Context) {
	var in phoneBody
	if !c.Bind(&in) {
		return
	}
	if err := s.store.ResendOTP(in.Phone); err != nil {
		c.NotFound("No pending verification for this phone number")
		return
	}
	c.Message("OTP sent")
}

func (s *Server) forgotPassword(c *ctx.Context) {
	var in phoneBody
	if !c.Bind(&in) {
		return
	}
	if err := s.store.ForgotPassword(in.Phone); err != nil {
		c.NotFound("No account with this phone number")
		return
	}
	c.Message("Password reset OTP sent")
}

func (s *Server) verifyResetOTP(c *ctx.Context) {
	var in otpBody
	if !c.Bind(&in) {
		return
	}
	token, err := s.store.VerifyResetOTP(in.Phone, in.OTP)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}
	c.OK(map[string]string{"resetToken": token})
}

type resetBody struct {
	ResetToken  string `json:"resetToken"  validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

func (s *Server) resetPassword(c *ctx.Context) {
	var in resetBody
	if !c.Bind(&in) {
		return
	}
	if err := s.store.ResetPassword(in.ResetToken, in.NewPassword); err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}
	c.Message("Password has been reset")
}

func (s *Server) profile(c *ctx.Context) {
	u, err := s.store.User(models.ID(c.Claims().UserID))
	if err != nil {
		c.NotFound("User not found")
		return
	}
	c.OK(u)
}

// ─── Vendors ─────────────────────────────────────────────────────────────────

func (s *Server) myStatus(c *ctx.Context) {
	v, ok := s.store.VendorOf(models.ID(c.Claims().UserID))
	if !ok {
		c.OK(models.VendorApplicationStatus{HasVendor: false})
		return
	}
	id := v.ID
	c.OK(models.VendorApplicationStatus{HasVendor: true, Status: v.Status, VendorID: &id, Reason: v.RejectionReason})
}

func (s *Server) vendorByPhone(c *ctx.Context) {
	v, err := s.store.VendorByPhone(c.Param("phone"))
	if err != nil {
		c.NotFound("Vendor not found")
		return
	}
	c.OK(v)
}

func (s *Server) vendor(c *ctx.Context) {
	v, err := s.store.Vendor(models.ID(c.Param("id")))
	if err != nil {
		c.NotFound("Vendor not found")
		return
	}
	c.OK(v)
}

// ─── Orders ──────────────────────────────────────────────────────────────────

// ownsVendor answers 403 unless the caller owns vendor id.
func (s *Server) ownsVendor(c *ctx.Context, id models.ID) bool {
	v, ok := s.store.VendorOf(models.ID(c.Claims().UserID))
	if !ok || v.ID != id {
		c.Forbidden()
		return false
	}
	return true
}

func (s *Server) vendorOrders(c *ctx.Context) {
	vid := models.ID(c.Param("id"))
	if !s.ownsVendor(c, vid) {
		return
	}
	f := OrderFilter{
		VendorID: vid,
		Search:   c.Query("search"),
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 10),
	}
	if raw := c.Query("status"); raw != "" {
		st, err := models.ParseOrderStatus(raw)
		if err != nil {
			c.FieldError(http.StatusBadRequest, "status", err.Error())
			return
		}
		f.Status = st
	}
	c.OK(s.store.Orders(f))
}

func (s *Server) vendorStats(c *ctx.Context) {
	vid := models.ID(c.Param("id"))
	if !s.ownsVendor(c, vid) {
		return
	}
	c.OK(s.store.Stats(vid))
}

func (s *Server) order(c *ctx.Context) {
	id, ok := c.ParamInt("id")
	if !ok {
		return
	}
	o, err := s.store.Order(id)
	if err != nil {
		c.NotFound("Order not found")
		return
	}
	if !s.ownsVendor(c, o.Vendor.ID) {
		return
	}
	c.OK(o)
}

type statusBody struct {
	Status string `json:"status" validate:"required"`
}

func (s *Server) orderStatus(c *ctx.Context) {
	id, ok := c.ParamInt("id")
	if !ok {
		return
	}
	var in statusBody
	if !c.Bind(&in) {
		return
	}
	to, err := models.ParseOrderStatus(in.Status)
	if err != nil {
		c.FieldError(http.StatusBadRequest, "status", err.Error())
		return
	}

	current, err := s.store.Order(id)
	if err != nil {
		c.NotFound("Order not found")
		return
	}
	if !s.ownsVendor(c, current.Vendor.ID) {
		return
	}

	o, err := s.store.SetOrderStatus(id, to)
	var te *transitionError
	switch {
	case errors.As(err, &te):
		c.FieldError(http.StatusConflict, "status", te.Error())
	case err != nil:
		c.NotFound("Order not found")
	default:
		s.store.Notify(models.Notification{
			UserID: models.ID(c.Claims().UserID),
			Title:  "Order " + strconv.FormatInt(id, 10) + " is " + to.Label(),
			Type:   "order",
		})
		c.OK(o)
	}
}

// ─── Products ────────────────────────────────────────────────────────────────

func (s *Server) products(c *ctx.Context) {
	c.OK(s.store.Products(ProductFilter{
		VendorID:   models.ID(c.Query("vendor_id")),
		CategoryID: models.ID(c.Query("category_id")),
		Search:     c.Query("search"),
		Page:       c.QueryInt("page", 1),
		Limit:      c.QueryInt("limit", 10),
	}))
}

func (s *Server) product(c *ctx.Context) {
	p, err := s.store.Product(models.ID(c.Param("id")))
	if err != nil {
		c.NotFound("Product not found")
		return
	}
	c.OK(p)
}

func (s *Server) callerVendor(c *ctx.Context) (models.Vendor, bool) {
	v, ok := s.store.VendorOf(models.ID(c.Claims().UserID))
	if !ok {
		c.Forbidden()
	}
	return v, ok
}

func (s *Server) createProduct(c *ctx.Context) {
	v, ok := s.callerVendor(c)
	if !ok || !c.BindMultipart() {
		return
	}
	price, perr := strconv.ParseFloat(c.FormValue("price"), 64)
	stock, serr := strconv.Atoi(c.FormValue("stock"))
	switch {
	case c.FormValue("name") == "":
		c.FieldError(http.StatusBadRequest, "name", "The name field is required.")
		return
	case perr != nil || price <= 0:
		c.FieldError(http.StatusBadRequest, "price", "The price must be greater than 0.")
		return
	case serr != nil || stock < 0:
		c.FieldError(http.StatusBadRequest, "stock", "The stock must be a whole number.")
		return
	}

	p := models.Product{
		VendorID:    v.ID,
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Price:       price,
		Stock:       stock,
		CategoryID:  models.ID(c.FormValue("category_id")),
		IsActive:    true,
	}
	if sub := c.FormValue("subcategory_id"); sub != "" {
		id := models.ID(sub)
		p.SubcategoryID = &id
	}
	for _, name := range c.FileNames("images") {
		p.Images = append(p.Images, "/uploads/"+name)
	}
	if vids := c.FileNames("video"); len(vids) > 0 {
		u := "/uploads/" + vids[0]
		p.Video = &u
	}
	c.Created(s.store.AddProduct(p))
}

type productBody struct {
	Name          string  `json:"name"           validate:"required"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"          validate:"required,gt=0"`
	Stock         int     `json:"stock"          validate:"gte=0"`
	CategoryID    string  `json:"category_id"    validate:"required"`
	SubcategoryID string  `json:"subcategory_id"`
}

// ownsProduct answers 404 or 403 unless the caller's vendor owns id.
func (s *Server) ownsProduct(c *ctx.Context, id models.ID) bool {
	p, err := s.store.Product(id)
	if err != nil {
		c.NotFound("Product not found")
		return false
	}
	v, ok := s.callerVendor(c)
	if !ok {
		return false
	}
	if p.VendorID != v.ID {
		c.Forbidden()
		return false
	}
	return true
}

func (s *Server) updateProduct(c *ctx.Context) {
	id := models.ID(c.Param("id"))
	if !s.ownsProduct(c, id) {
		return
	}
	var in productBody
	if !c.Bind(&in) {
		return
	}
	p, err := s.store.UpdateProduct(id, models.ProductInput{
		Name: in.Name, Description: in.Description, Price: in.Price, Stock: in.Stock,
		CategoryID: in.CategoryID, SubcategoryID: in.SubcategoryID,
	})
	if err != nil {
		c.NotFound("Product not found")
		return
	}
	c.OK(p)
}

func (s *Server) deleteProduct(c *ctx.Context) {
	id := models.ID(c.Param("id"))
	if !s.ownsProduct(c, id) {
		return
	}
	if err := s.store.DeleteProduct(id); err != nil {
		c.NotFound("Product not found")
		return
	}
	c.Message("Product deleted")
}

// ─── Catalog ─────────────────────────────────────────────────────────────────

func (s *Server) categories(c *ctx.Context) { c.OK(s.store.Categories()) }

func (s *Server) subcategories(c *ctx.Context) {
	c.OK(s.store.Subcategories(models.ID(c.Param("id"))))
}

func (s *Server) subscriptions(c *ctx.Context) { c.OK(s.store.Subscriptions()) }

// ─── Notifications ───────────────────────────────────────────────────────────

// self answers 403 unless the path user is the caller.
func (s *Server) self(c *ctx.Context) (models.ID, bool) {
	uid := models.ID(c.Param("id"))
	if uid.String() != c.Claims().UserID {
		c.Forbidden()
		return "", false
	}
	return uid, true
}

func (s *Server) notifications(c *ctx.Context) {
	if uid, ok := s.self(c); ok {
		c.OK(s.store.Notifications(uid))
	}
}

func (s *Server) unreadCount(c *ctx.Context) {
	if uid, ok := s.self(c); ok {
		c.OK(map[string]int{"count": s.store.UnreadCount(uid)})
	}
}

func (s *Server) markRead(c *ctx.Context) {
	uid := models.ID(c.Claims().UserID)
	if err := s.store.MarkRead(uid, models.ID(c.Param("id"))); err != nil {
		c.NotFound("Notification not found")
		return
	}
	c.Message("Notification marked as read")
}
