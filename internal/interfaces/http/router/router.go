// Package router assembles the gin engine: middleware chain and routes.
package router

import (
	"github.com/dms/backend/internal/infrastructure/auth"
	"github.com/dms/backend/internal/infrastructure/config"
	"github.com/dms/backend/internal/infrastructure/logger"
	"github.com/dms/backend/internal/interfaces/http/handler"
	"github.com/dms/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const defaultMaxBodyBytes = 1 << 20

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts registrars under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithGroupMiddleware adds middleware applied to the versioned API group only
func WithGroupMiddleware(mw ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.middleware = append(r.middleware, mw...)
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered by Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	if len(r.middleware) > 0 {
		api.Use(r.middleware...)
	}
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup collects the routes of one resource under a prefix
type DomainGroup struct {
	name   string
	prefix string
	routes []route
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Handle registers handlers for method and path relative to the prefix
func (dg *DomainGroup) Handle(method, path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, route{method: method, path: path, handlers: handlers})
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle("GET", path, handlers...)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle("POST", path, handlers...)
}

// PUT registers a PUT route
func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle("PUT", path, handlers...)
}

// DELETE registers a DELETE route
func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle("DELETE", path, handlers...)
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	for _, r := range dg.routes {
		group.Handle(r.method, r.path, r.handlers...)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Handlers bundles every API handler the engine serves
type Handlers struct {
	Health     *handler.HealthHandler
	Customer   *handler.CustomerHandler
	Salesman   *handler.SalesmanHandler
	Catalog    *handler.CatalogHandler
	Ledger     *handler.LedgerHandler
	Collection *handler.CollectionHandler
	Order      *handler.OrderHandler
}

// Options configures the engine built by New
type Options struct {
	ServiceName    string
	Logger         *zap.Logger
	JWT            *auth.JWTService
	Meter          metric.Meter
	TracingEnabled bool
	HTTP           config.HTTPConfig
	MaxBodyBytes   int64
}

// New builds the gin engine with the full middleware chain and every route.
// Health checks sit outside /api and need no token.
func New(opts Options, h Handlers) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
		log.Warn("invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}
	engine.Use(
		middleware.Tracing(opts.ServiceName, opts.TracingEnabled),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.SpanEnricher(),
		middleware.HTTPMetrics(opts.Meter, log),
		middleware.CORS(opts.HTTP.CORSAllowOrigins),
		middleware.Secure(),
		middleware.BodyLimit(maxBody),
	)

	engine.GET("/health", h.Health.Health)
	engine.GET("/ready", h.Health.Ready)

	r := NewRouter(engine, WithGroupMiddleware(middleware.JWTAuthMiddleware(opts.JWT, log)))

	r.Register(NewDomainGroup("customers", "/customers").
		POST("", h.Customer.Create).
		GET("", h.Customer.List).
		GET("/:id", h.Customer.GetByID).
		PUT("/:id", h.Customer.Update).
		PUT("/:id/salesman", h.Customer.AssignSalesman).
		GET("/:id/statement", h.Ledger.Statement).
		GET("/:id/balance", h.Ledger.Balance))

	r.Register(NewDomainGroup("salesmen", "/salesmen").
		POST("", h.Salesman.Create).
		GET("", h.Salesman.List).
		GET("/:id", h.Salesman.GetByID))

	r.Register(NewDomainGroup("companies", "/companies").
		POST("", h.Catalog.CreateCompany).
		GET("", h.Catalog.ListCompanies))

	r.Register(NewDomainGroup("products", "/products").
		POST("", h.Catalog.CreateProduct).
		GET("", h.Catalog.ListProducts).
		GET("/:id", h.Catalog.GetProduct))

	r.Register(NewDomainGroup("ledger", "/ledger").
		POST("/entries", h.Ledger.CreateEntry).
		GET("/entries", h.Ledger.ListEntries).
		GET("/entries/:id", h.Ledger.GetEntry).
		PUT("/entries/:id", h.Ledger.UpdateEntry).
		DELETE("/entries/:id", h.Ledger.DeleteEntry).
		POST("/reconcile", h.Ledger.Reconcile).
		POST("/opening-balances/import", h.Ledger.ImportOpeningBalances))

	r.Register(NewDomainGroup("collections", "/collections").
		POST("", h.Collection.Create).
		GET("", h.Collection.List).
		GET("/:id", h.Collection.GetByID).
		PUT("/:id/status", h.Collection.UpdateStatus).
		DELETE("/:id", h.Collection.Cancel))

	r.Register(NewDomainGroup("orders", "/orders").
		POST("", h.Order.Create).
		GET("", h.Order.List).
		GET("/:id", h.Order.GetByID).
		PUT("/:id/items", h.Order.UpdateItems).
		PUT("/:id/status", h.Order.UpdateStatus))

	r.Setup()
	return engine
}
