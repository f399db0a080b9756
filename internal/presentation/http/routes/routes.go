package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sangkips/gstpos-api/internal/config"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/gstpos-api/internal/domain/repository"
	"github.com/sangkips/gstpos-api/internal/presentation/http/handler"
	"github.com/sangkips/gstpos-api/internal/presentation/http/middleware"
	"github.com/sangkips/gstpos-api/pkg/utils"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	Product   *handler.ProductHandler
	Customer  *handler.CustomerHandler
	Checkout  *handler.CheckoutHandler
	Invoice   *handler.InvoiceHandler
	Dashboard *handler.DashboardHandler
	Audit     *handler.AuditHandler
	User      *handler.UserHandler
	Export    *handler.ExportHandler
	Printer   *handler.PrinterHandler
	Health    *handler.HealthHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Approvals       middleware.ApprovalChecker
	RateLimiter     *middleware.RateLimiter
	Logger          *zap.Logger
}

// NewRateLimiter builds the limiter from RATE_LIMIT_REQUESTS per RATE_LIMIT_DURATION seconds.
func NewRateLimiter(cfg config.RateLimitConfig) *middleware.RateLimiter {
	return middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Requests:        cfg.Requests,
		Window:          time.Duration(cfg.Duration) * time.Second,
		CleanupInterval: 5 * time.Minute,
		EntryTTL:        10 * time.Minute,
	})
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))
	if deps.Cfg.Observability.MetricsEnabled {
		router.Use(middleware.MetricsMiddleware())
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	router.GET("/health", h.Health.Health)
	router.GET("/ping", h.Health.Ping)

	v1 := router.Group("/api/v1")
	{
		rateLimiter := deps.RateLimiter
		if rateLimiter == nil {
			rateLimiter = NewRateLimiter(deps.Cfg.RateLimit)
		}

		// Public routes, limited per client IP
		public := v1.Group("")
		public.Use(rateLimiter.Middleware())
		registerAuthRoutes(public, h)

		// Valid token, approval not yet checked
		authenticated := v1.Group("")
		authenticated.Use(middleware.AuthMiddleware(deps.JWTManager))
		authenticated.Use(rateLimiter.Middleware())
		authenticated.GET("/users/check/:id", h.User.Check)

		protected := authenticated.Group("")
		protected.Use(middleware.RequireApproved(deps.Approvals))
		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
		auth.GET("/google", h.Auth.GoogleAuth)
		auth.GET("/google/callback", h.Auth.GoogleCallback)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	protected.GET("/auth/me", h.Auth.GetProfile)

	protected.GET("/stats", middleware.RequirePermission(entity.PermViewDashboard), h.Dashboard.GetStats)

	registerProductRoutes(protected, h)
	registerCustomerRoutes(protected, h)

	// Checkout
	protected.POST("/checkout",
		middleware.RequirePermission(entity.PermCheckout),
		middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo, Logger: deps.Logger}),
		h.Checkout.Checkout,
	)

	registerInvoiceRoutes(protected, h)
	registerAnalyticsRoutes(protected, h)
	registerAdminRoutes(protected, h)

	// Printer
	printer := protected.Group("/printer")
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/test", middleware.RequirePermission(entity.PermManageData), h.Printer.TestPrint)
	}
}

func registerProductRoutes(rg *gin.RouterGroup, h *Handlers) {
	products := rg.Group("/products")
	products.Use(middleware.RequirePermission(entity.PermViewProducts))
	{
		products.GET("", h.Product.List)
		products.GET("/barcode/:barcode", h.Product.GetByBarcode)
		products.GET("/:id", h.Product.Get)

		manage := middleware.RequirePermission(entity.PermManageProducts)
		products.POST("", manage, h.Product.Create)
		products.PATCH("/:id", manage, h.Product.UpdateStock)
		products.DELETE("/:id", manage, h.Product.Delete)
	}
}

func registerCustomerRoutes(rg *gin.RouterGroup, h *Handlers) {
	customers := rg.Group("/customers")
	customers.Use(middleware.RequirePermission(entity.PermManageCustomers))
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
	}
}

func registerInvoiceRoutes(rg *gin.RouterGroup, h *Handlers) {
	invoices := rg.Group("/invoices")
	invoices.Use(middleware.RequirePermission(entity.PermViewInvoices))
	{
		invoices.GET("", h.Invoice.List)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.POST("/:id/print", h.Invoice.Print)
	}
}

func registerAnalyticsRoutes(rg *gin.RouterGroup, h *Handlers) {
	analytics := rg.Group("/analytics")
	analytics.Use(middleware.RequirePermission(entity.PermViewReports))
	{
		analytics.GET("/sales-trend", h.Dashboard.SalesTrend)
		analytics.GET("/top-products", h.Dashboard.TopProducts)
		analytics.GET("/low-stock", h.Dashboard.LowStock)
		analytics.GET("/revenue-profit", h.Dashboard.RevenueProfit)
	}
}

func registerAdminRoutes(rg *gin.RouterGroup, h *Handlers) {
	admin := rg.Group("")
	admin.Use(middleware.RequireRole(entity.RoleAdmin))

	audit := admin.Group("/audit-logs")
	audit.Use(middleware.RequirePermission(entity.PermViewAuditLogs))
	{
		audit.GET("", h.Audit.List)
		audit.GET("/user/:userId", h.Audit.UserActivity)
	}

	users := admin.Group("/users")
	users.Use(middleware.RequirePermission(entity.PermManageUsers))
	{
		users.GET("", h.User.List)
		users.GET("/roles", h.User.ListRoles)
		users.PATCH("/:id/approve", h.User.Approve)
		users.PATCH("/:id/unapprove", h.User.Unapprove)
		users.PATCH("/:id/role", h.User.ChangeRole)
		users.DELETE("/:id", h.User.Delete)
	}

	data := admin.Group("")
	data.Use(middleware.RequirePermission(entity.PermManageData))
	{
		data.GET("/export/products", h.Export.Products)
		data.GET("/export/invoices", h.Export.Invoices)
		data.GET("/backup/json", h.Export.Backup)
		data.DELETE("/admin/clear-all-data", h.Export.ClearAll)
	}
}
