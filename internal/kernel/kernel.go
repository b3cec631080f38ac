// Package kernel assembles the vendor client from configuration: the
// persisted session, the API client, the query cache, repositories and the
// services the CLI drives.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/shashiranjanraj/vendordesk/app/models"
	"github.com/shashiranjanraj/vendordesk/app/repositories"
	"github.com/shashiranjanraj/vendordesk/app/services"
	"github.com/shashiranjanraj/vendordesk/config"
	"github.com/shashiranjanraj/vendordesk/pkg/cache"
	"github.com/shashiranjanraj/vendordesk/pkg/event"
	"github.com/shashiranjanraj/vendordesk/pkg/http"
	"github.com/shashiranjanraj/vendordesk/pkg/kvstore"
	"github.com/shashiranjanraj/vendordesk/pkg/logger"
	"github.com/shashiranjanraj/vendordesk/pkg/session"
	"github.com/shashiranjanraj/vendordesk/pkg/storage"
)

// Options overrides what Boot would read from configuration. Zero fields
// fall back to config.
type Options struct {
	BaseURL    string
	KV         kvstore.Store
	HTTPOpts   []http.Option
	Disks      *storage.Manager
	CacheTTL   time.Duration
	PageLimit  int
	SkipLogger bool
}

// Kernel is the booted client.
type Kernel struct {
	Bus     *event.Bus
	Session *session.Store
	API     *http.Client
	Cache   *cache.Cache
	Disks   *storage.Manager

	Auth          *services.AuthService
	Vendors       *services.VendorService
	Products      *services.ProductService
	Catalog       *services.CatalogService
	Notifications *services.NotificationService
	Dashboard     *services.DashboardService

	orders    *repositories.OrderRepository
	pageLimit int
	closers   []func()
}

// Boot builds a kernel from configuration alone.
func Boot(ctx context.Context) (*Kernel, error) { return New(ctx, Options{}) }

// New builds a kernel and restores the persisted session.
func New(ctx context.Context, opts Options) (*Kernel, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("kernel: config: %w", err)
	}
	k := &Kernel{Bus: event.New()}

	if !opts.SkipLogger {
		k.bootLogger(ctx)
	}

	kv := opts.KV
	if kv == nil {
		var err error
		if kv, err = kvstore.Open(ctx); err != nil {
			k.Close()
			return nil, fmt.Errorf("kernel: session storage: %w", err)
		}
	}
	if c, ok := kv.(io.Closer); ok {
		k.closers = append(k.closers, func() { _ = c.Close() })
	}
	k.Session = session.NewStore(kv, session.WithBus(k.Bus))

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = config.APIBaseURL()
	}
	httpOpts := append([]http.Option{
		http.WithTokenSource(k.Session),
		http.WithTimeout(config.HTTPTimeout()),
		http.WithRetry(config.HTTPRetries(), 200*time.Millisecond),
	}, opts.HTTPOpts...)
	k.API = http.NewClient(baseURL, httpOpts...)

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = config.CacheTTL()
	}
	k.Cache = cache.New(ttl, cache.WithName("queries"))
	// Whatever ends the session, no previous vendor's data survives it.
	k.Session.OnCleared(k.Cache.Flush)

	k.Disks = opts.Disks
	if k.Disks == nil {
		var err error
		if k.Disks, err = storage.NewManager(ctx); err != nil {
			k.Close()
			return nil, fmt.Errorf("kernel: storage: %w", err)
		}
	}

	k.pageLimit = opts.PageLimit
	if k.pageLimit <= 0 {
		k.pageLimit = config.OrdersPageLimit()
	}
	k.wire()
	k.Session.Restore(ctx)
	return k, nil
}

func (k *Kernel) wire() {
	k.orders = repositories.NewOrderRepository(k.API)

	k.Auth = services.NewAuthService(repositories.NewAuthRepository(k.API), k.Session, k.Cache)
	k.Vendors = services.NewVendorService(repositories.NewVendorRepository(k.API), k.Session, k.Cache)
	k.Products = services.NewProductService(repositories.NewProductRepository(k.API), k.Disks.Default(), k.Cache)
	k.Catalog = services.NewCatalogService(repositories.NewCatalogRepository(k.API), k.Cache)
	k.Notifications = services.NewNotificationService(repositories.NewNotificationRepository(k.API), k.Session, k.Cache)
	k.Dashboard = services.NewDashboardService(k.Vendors, k.Notifications, k.Orders)
}

// bootLogger fans logs out to MongoDB when LOG_MONGO_URI is set. A sink
// that cannot connect is reported and skipped.
func (k *Kernel) bootLogger(ctx context.Context) {
	uri := config.LogMongoURI()
	if uri == "" {
		return
	}
	base := logger.New(os.Stderr, config.AppEnv(), config.LogLevel())
	sink, err := logger.DialMongoSink(ctx, uri, config.LogMongoDB(), "activity", slog.LevelInfo)
	if err != nil {
		base.Warn("kernel: mongo log sink disabled", "error", err)
		return
	}
	logger.Replace(slog.New(logger.NewMultiHandler(base.Handler(), sink)))
	k.closers = append(k.closers, sink.Close)
}

// Orders returns the order workflow for vendorID.
func (k *Kernel) Orders(vendorID models.ID) *services.OrderWorkflow {
	return services.NewOrderWorkflow(k.orders, k.Cache, vendorID, k.pageLimit)
}

// VendorOrders resolves the session user's vendor and returns its order
// workflow. Without a resolved vendor no order query is possible.
func (k *Kernel) VendorOrders(ctx context.Context) (*services.OrderWorkflow, *models.Vendor, error) {
	v, err := k.Vendors.Resolve(ctx)
	if err != nil {
		return nil, nil, err
	}
	return k.Orders(v.ID), v, nil
}

// Close releases storage connections and flushes log sinks, in reverse
// order of creation.
func (k *Kernel) Close() {
	k.Bus.Flush()
	for i := len(k.closers) - 1; i >= 0; i-- {
		k.closers[i]()
	}
	k.closers = nil
}

// IsSessionExpired reports whether err means the server no longer accepts
// the stored token.
func IsSessionExpired(err error) bool {
	var apiErr *http.APIError
	return errors.As(err, &apiErr) && apiErr.Kind == http.KindAuth && apiErr.StatusCode == 401
}
