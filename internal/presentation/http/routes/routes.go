package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/mahavirtraders/flowtrack/internal/config"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	domainRepo "github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/internal/presentation/http/handler"
	"github.com/mahavirtraders/flowtrack/internal/presentation/http/middleware"
	"github.com/mahavirtraders/flowtrack/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Product  *handler.ProductHandler
	Cart     *handler.CartHandler
	Sale     *handler.SaleHandler
	Purchase *handler.PurchaseHandler
	Report   *handler.ReportHandler
	Ledger   *handler.LedgerHandler
	Printer  *handler.PrinterHandler
	Stream   *handler.StreamHandler
	Health   *handler.HealthHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Revocations     middleware.RevocationChecker
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	// Ctx bounds background goroutines started by middleware
	Ctx context.Context
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", h.Health.Health)

	ctx := deps.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager, deps.Revocations))

		rateLimiter := middleware.NewRateLimiter(ctx, middleware.RateLimiterConfigFrom(
			deps.Cfg.RateLimit.Requests,
			deps.Cfg.RateLimit.Duration,
		))
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(rg *gin.RouterGroup, h *Handlers) {
	auth := rg.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

func registerProtectedRoutes(rg *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{Repo: deps.IdempotencyRepo})
	perm := middleware.RequirePermission

	// Auth (signed in)
	auth := rg.Group("/auth")
	{
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/me", h.Auth.GetProfile)
		auth.POST("/change-password", h.Auth.ChangePassword)
	}

	// Users
	users := rg.Group("/users", perm(entity.PermManageUsers))
	{
		users.GET("", h.User.List)
		users.POST("", h.User.Create)
		users.GET("/:id", h.User.Get)
		users.GET("/:id/roles", h.User.Roles)
		users.PATCH("/:id/active", h.User.SetActive)
	}
	rg.GET("/roles", perm(entity.PermManageUsers), h.User.ListRoles)

	// Products: every signed-in user can browse the catalog to sell from it
	products := rg.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/low-stock", h.Product.GetLowStock)
		products.GET("/:id", h.Product.Get)
		products.POST("", perm(entity.PermManageProducts), h.Product.Create)
		products.POST("/import", perm(entity.PermManageProducts), h.Product.Import)
		products.PUT("/:id", perm(entity.PermManageProducts), h.Product.Update)
		products.DELETE("/:id", perm(entity.PermManageProducts), h.Product.Delete)
		products.POST("/:id/adjust", perm(entity.PermManageStock), h.Product.Adjust)
		products.GET("/:id/adjustments", perm(entity.PermManageStock), h.Product.Adjustments)
	}

	// Cart
	cart := rg.Group("/cart", perm(entity.PermManageSales))
	{
		cart.GET("", h.Cart.Get)
		cart.DELETE("", h.Cart.Clear)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:productId", h.Cart.SetQuantity)
		cart.PATCH("/items/:productId", h.Cart.AdjustQuantity)
		cart.DELETE("/items/:productId", h.Cart.RemoveItem)
		cart.PUT("/charges", h.Cart.SetCharges)
	}

	// Sales
	sales := rg.Group("/sales", perm(entity.PermManageSales))
	{
		sales.POST("/checkout", idempotent, h.Sale.Checkout)
		sales.GET("", h.Sale.List)
		sales.GET("/invoice/:invoiceNo", h.Sale.GetByInvoice)
		sales.GET("/:id", h.Sale.Get)
		sales.POST("/:id/reprint", h.Sale.Reprint)
		sales.GET("/:id/export", h.Sale.Export)
		sales.GET("/:id/receipt", h.Printer.Receipt)
	}

	// Purchases
	purchases := rg.Group("/purchases", perm(entity.PermManagePurchases))
	{
		purchases.GET("", h.Purchase.List)
		purchases.POST("", idempotent, h.Purchase.Create)
		purchases.GET("/:id", h.Purchase.Get)
	}

	// Reports
	reports := rg.Group("/reports", perm(entity.PermViewReports))
	{
		reports.GET("/summary", h.Report.Summary)
		reports.GET("/range", h.Report.Range)
		reports.GET("/export", h.Report.Export)
	}

	// Attendance
	attendance := rg.Group("/attendance", perm(entity.PermManageAttendance))
	{
		attendance.GET("", h.Ledger.ListAttendance)
		attendance.POST("", h.Ledger.MarkAttendance)
		attendance.POST("/:id/check-out", h.Ledger.CheckOut)
	}

	// Expenses
	expenses := rg.Group("/expenses", perm(entity.PermManageExpenses))
	{
		expenses.GET("", h.Ledger.ListExpenses)
		expenses.POST("", idempotent, h.Ledger.RecordExpense)
	}

	// Day closing
	closings := rg.Group("/day-closings", perm(entity.PermCloseDay))
	{
		closings.GET("", h.Ledger.ListClosings)
		closings.POST("", h.Ledger.CloseDay)
		closings.POST("/preview", h.Ledger.PreviewClosing)
		closings.GET("/:date", h.Ledger.GetClosing)
	}

	// Printer
	printer := rg.Group("/printer")
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/test", perm(entity.PermManageSales), h.Printer.TestPrint)
	}

	// Live changes
	rg.GET("/stream", h.Stream.Stream)
}
