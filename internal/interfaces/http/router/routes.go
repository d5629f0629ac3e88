package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/salon-crm/backend/internal/domain/platform"
	"github.com/salon-crm/backend/internal/infrastructure/config"
	"github.com/salon-crm/backend/internal/infrastructure/logger"
	"github.com/salon-crm/backend/internal/interfaces/http/dto"
	"github.com/salon-crm/backend/internal/interfaces/http/handler"
	"github.com/salon-crm/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by New.
type Handlers struct {
	System       *handler.SystemHandler
	Auth         *handler.AuthHandler
	Businesses   *handler.BusinessHandler
	Clients      *handler.ClientHandler
	Services     *handler.ServiceHandler
	Products     *handler.ProductHandler
	Staff        *handler.StaffHandler
	Appointments *handler.AppointmentHandler
	Expenses     *handler.ExpenseHandler
	Sales        *handler.SaleHandler
	Inventory    *handler.InventoryHandler
	Settings     *handler.SettingsHandler
	CashRegistry *handler.CashRegistryHandler
}

// NewHandlers builds the tenant handlers around base. Auth, Businesses and
// System depend on services and are set by the caller.
func NewHandlers(base handler.BaseHandler) Handlers {
	return Handlers{
		Clients:      handler.NewClientHandler(base),
		Services:     handler.NewServiceHandler(base),
		Products:     handler.NewProductHandler(base),
		Staff:        handler.NewStaffHandler(base),
		Appointments: handler.NewAppointmentHandler(base),
		Expenses:     handler.NewExpenseHandler(base),
		Sales:        handler.NewSaleHandler(base),
		Inventory:    handler.NewInventoryHandler(base),
		Settings:     handler.NewSettingsHandler(base),
		CashRegistry: handler.NewCashRegistryHandler(base),
	}
}

// Config wires the middleware of the engine.
type Config struct {
	Production bool
	HTTP       config.HTTPConfig
	Tracing    middleware.TracingConfig
	// Meter records request metrics when set.
	Meter  metric.Meter
	Auth   middleware.JWTMiddlewareConfig
	Tenant middleware.TenantMiddlewareConfig
	// LoginLimiter throttles the login and password reset endpoints per
	// client IP when set.
	LoginLimiter *middleware.RateLimiter
	Logger       *zap.Logger
}

// New builds the engine serving the whole API.
func New(cfg Config, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.TracingWithConfig(cfg.Tracing),
		logger.GinMiddleware(log),
		middleware.SpanErrorMarker(),
	)
	if cfg.Meter != nil {
		metrics, err := middleware.HTTPMetrics(cfg.Meter)
		if err != nil {
			return nil, err
		}
		engine.Use(metrics)
	}
	engine.Use(
		middleware.CORSWithConfig(corsConfig(cfg.HTTP)),
		middleware.Secure(cfg.Production),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeRouteNotFound, "Route not found"))
	})
	engine.GET("/health", h.System.Health)

	NewRouter(engine).Register(
		systemRoutes(h),
		authRoutes(cfg, h),
		adminRoutes(cfg, h),
		tenantRoutes(cfg, h),
	).Setup()
	return engine, nil
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORSAllowOrigins
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	return cors
}

// throttled prepends the login limiter when one is configured.
func throttled(cfg Config, h gin.HandlerFunc) []gin.HandlerFunc {
	if cfg.LoginLimiter == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{middleware.RateLimit(cfg.LoginLimiter), h}
}

func systemRoutes(h Handlers) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/ping", h.System.Ping)
}

func authRoutes(cfg Config, h Handlers) *DomainGroup {
	auth := NewDomainGroup("auth", "/auth").
		POST("/login", throttled(cfg, h.Auth.Login)...).
		POST("/forgot-password", throttled(cfg, h.Auth.ForgotPassword)...).
		POST("/reset-password", throttled(cfg, h.Auth.ResetPassword)...)

	auth.Group("session", "").
		Use(middleware.JWTAuthMiddlewareWithConfig(cfg.Auth)).
		GET("/me", h.Auth.Me).
		POST("/logout", h.Auth.Logout)
	return auth
}

func adminRoutes(cfg Config, h Handlers) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin")
	admin.Group("admin-auth", "/auth").
		POST("/login", throttled(cfg, h.Auth.AdminLogin)...)

	admin.Group("businesses", "/businesses").
		Use(
			middleware.JWTAuthMiddlewareWithConfig(cfg.Auth),
			middleware.RequireRoles(platform.RoleAdmin, platform.RoleSuperAdmin),
			middleware.SetupMainDatabase(cfg.Tenant),
			middleware.SpanAttributes(),
		).
		GET("", h.Businesses.List).
		POST("", h.Businesses.Create).
		GET("/:id", h.Businesses.Get).
		PUT("/:id/status", h.Businesses.UpdateStatus).
		PUT("/:id/plan", h.Businesses.UpdatePlan)
	return admin
}

func tenantRoutes(cfg Config, h Handlers) *DomainGroup {
	managers := middleware.RequireRoles(platform.RoleOwner, platform.RoleManager)

	tenant := NewDomainGroup("tenant", "").
		Use(
			middleware.JWTAuthMiddlewareWithConfig(cfg.Auth),
			middleware.TenantContextMiddleware(cfg.Tenant),
			middleware.SpanAttributes(),
		).
		Resource("/clients", h.Clients).
		Resource("/services", h.Services).
		Resource("/products", h.Products).
		Resource("/staff", h.Staff).
		Resource("/appointments", h.Appointments).
		Resource("/expenses", h.Expenses)

	tenant.
		POST("/products/:id/stock", h.Inventory.AdjustStock).
		GET("/inventory-transactions", h.Inventory.ListTransactions)

	tenant.
		GET("/sales", h.Sales.List).
		POST("/sales", h.Sales.Create).
		GET("/sales/:id", h.Sales.Get).
		PUT("/sales/:id", h.Sales.Update).
		DELETE("/sales/:id", h.Sales.Delete).
		GET("/receipts", h.Sales.ListReceipts).
		GET("/receipts/:id", h.Sales.GetReceipt)

	tenant.
		GET("/settings", h.Settings.Get).
		PUT("/settings", managers, h.Settings.Update)

	tenant.Group("cash-registry", "/cash-registry").
		GET("", h.CashRegistry.List).
		POST("", h.CashRegistry.Submit).
		GET("/summary", h.CashRegistry.Summary).
		GET("/:id", h.CashRegistry.Get).
		PUT("/:id", h.CashRegistry.Resubmit).
		DELETE("/:id", managers, h.CashRegistry.Delete).
		POST("/:id/verify", managers, h.CashRegistry.Verify)
	return tenant
}
