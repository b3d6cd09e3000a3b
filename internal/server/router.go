// Package server assembles the gin engine: ambient middleware, the /api
// surface with its role gates, and the optional SPA bundle.
package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"roti-erp/internal/ai"
	"roti-erp/internal/auth"
	"roti-erp/internal/config"
	"roti-erp/internal/handlers"
	"roti-erp/internal/logger"
	"roti-erp/internal/metrics"
	"roti-erp/internal/middleware"
	"roti-erp/internal/models"
	"roti-erp/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps is everything the router needs from main.
type Deps struct {
	Config        *config.Config
	DB            *gorm.DB
	Log           *zap.Logger
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
	Authenticator auth.Authenticator
	Tokens        *auth.TokenManager
	Clock         func() time.Time
	WebDir        string
}

// NewRouter wires services and handlers onto a fresh engine.
func NewRouter(d Deps) *gin.Engine {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	cfg := d.Config
	handlers.RegisterValidation()

	// --- Services ---
	orders := services.NewOrderService(d.DB, cfg.TaxRate, d.Metrics)
	pos := services.NewPOSService(d.DB, cfg.TaxRate, d.Metrics)
	inventory := services.NewInventoryService(d.DB, cfg.Location, d.Clock, d.Metrics)
	reports := services.NewReportService(d.DB, cfg.Location, d.Clock)
	agent := ai.NewAgent(cfg.GeminiAPIKey, cfg.GeminiModel, reports, inventory)

	// --- Handlers ---
	authH := handlers.NewAuthHandler(d.DB, d.Authenticator, d.Tokens, d.Metrics, cfg.AllowRegistration)
	userH := handlers.NewUserHandler(d.DB)
	productH := handlers.NewProductHandler(d.DB)
	orderH := handlers.NewOrderHandler(orders, pos, reports)
	counterH := handlers.NewCounterHandler(d.DB, inventory)
	financeH := handlers.NewFinanceHandler(d.DB, reports, d.Clock)
	reportH := handlers.NewReportHandler(reports)
	assistantH := handlers.NewAssistantHandler(agent)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		logger.Middleware(d.Log),
		d.Metrics.Middleware(),
		middleware.Recovery(d.Log),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "online"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")

	// --- PUBLIC ROUTES ---
	api.POST("/auth/login", authH.Login)
	api.POST("/auth/refresh", authH.Refresh)
	// Only opens if we explicitly allow it in config
	if cfg.AllowRegistration {
		api.POST("/auth/register", authH.Register)
		d.Log.Warn("Registration route is OPEN")
	}

	// --- PROTECTED ROUTES ---
	p := api.Group("")
	p.Use(middleware.AuthMiddleware(d.Tokens, d.Authenticator))

	staff := middleware.RequireRole(auth.RoleStaff)
	supervisor := middleware.RequireRole(auth.RoleSupervisor)
	manager := middleware.RequireRole(auth.RoleManager)
	admin := middleware.RequireRole(auth.RoleAdmin)

	p.GET("/auth/me", authH.Me)
	p.PUT("/auth/password", authH.ChangePassword)

	p.GET("/users", admin, userH.List)
	p.GET("/users/:id", admin, userH.Get)
	p.POST("/users", admin, userH.Create)
	p.PUT("/users/:id", admin, userH.Update)
	p.DELETE("/users/:id", admin, userH.Deactivate)

	p.GET("/products", staff, productH.List)
	p.GET("/products/:id", staff, productH.Get)
	p.POST("/products", manager, productH.Create)
	p.PUT("/products/:id", manager, productH.Update)
	p.DELETE("/products/:id", manager, productH.Delete)

	p.POST("/orders", staff, orderH.Create)
	p.GET("/orders", staff, orderH.List)
	p.GET("/orders/:id", staff, orderH.Get)
	p.PUT("/orders/:id", staff, orderH.Update)
	p.DELETE("/orders/:id", admin, orderH.Delete)

	p.POST("/pos/transactions", staff, orderH.CreatePOS)
	p.GET("/pos/transactions", staff, orderH.ListPOS)
	p.GET("/pos/transactions/:id", staff, orderH.GetPOS)

	counterH.Register(p, "/counters", staff, manager)
	p.GET("/counters/:counterId/inventory", staff, counterH.Inventory)
	p.POST("/counters/:counterId/orders", supervisor, counterH.Deliver)
	p.GET("/counters/:counterId/orders", staff, counterH.Deliveries)
	p.POST("/counters/:counterId/sales", staff, counterH.Sell)

	customers := handlers.NewResource[models.Customer](d.DB, "customer")
	customers.Filters = map[string]string{"type": "type", "isActive": "is_active"}
	customers.Register(p, "/customers", staff, staff)

	// Manufacturing
	handlers.NewResource[models.RawMaterial](d.DB, "raw material").Register(p, "/raw-materials", staff, supervisor)
	batches := handlers.NewResource[models.ProductionBatch](d.DB, "production batch")
	batches.Preload = []string{"Product"}
	batches.Filters = map[string]string{"productId": "product_id", "status": "status", "producedOn": "produced_on"}
	batches.Register(p, "/production-batches", staff, supervisor)

	// Finance
	handlers.NewResource[models.Account](d.DB, "account").Register(p, "/finance/accounts", manager, manager)
	financeH.Expenses.Register(p, "/finance/expenses", manager, manager)
	p.PUT("/finance/expenses/:id/approve", admin, financeH.Approve)
	taxes := handlers.NewResource[models.TaxRecord](d.DB, "tax record")
	taxes.Filters = map[string]string{"period": "period", "status": "status"}
	taxes.Register(p, "/finance/tax-records", manager, manager)
	p.GET("/finance/profit-loss", manager, financeH.ProfitLoss)

	// HR
	employees := handlers.NewResource[models.Employee](d.DB, "employee")
	employees.Filters = map[string]string{"department": "department", "counterId": "counter_id", "isActive": "is_active"}
	employees.Register(p, "/hr/employees", manager, manager)
	attendance := handlers.NewResource[models.Attendance](d.DB, "attendance")
	attendance.Filters = map[string]string{"employeeId": "employee_id", "date": "date"}
	attendance.Register(p, "/hr/attendance", supervisor, supervisor)
	payroll := handlers.NewResource[models.Payroll](d.DB, "payroll")
	payroll.Filters = map[string]string{"employeeId": "employee_id", "month": "month"}
	payroll.Register(p, "/hr/payroll", manager, manager)

	// Franchises
	franchises := handlers.NewResource[models.Franchise](d.DB, "franchise")
	franchises.Preload = []string{"Counters"}
	franchises.Register(p, "/franchises", manager, admin)
	p.GET("/franchises/:id/summary", manager, reportH.FranchiseSummary)
	royalties := handlers.NewResource[models.RoyaltyPayment](d.DB, "royalty payment")
	royalties.Filters = map[string]string{"franchiseId": "franchise_id"}
	royalties.Register(p, "/royalty-payments", manager, admin)

	// Hotels and hostels
	handlers.NewResource[models.Hotel](d.DB, "hotel").Register(p, "/hotels", staff, supervisor)
	handlers.NewResource[models.Hostel](d.DB, "hostel").Register(p, "/hostels", staff, supervisor)
	supply := handlers.NewResource[models.SupplyOrder](d.DB, "supply order")
	supply.Filters = map[string]string{"clientType": "client_type", "clientId": "client_id", "status": "status", "deliveryDate": "delivery_date"}
	supply.Register(p, "/supply-orders", staff, supervisor)

	handlers.NewResource[models.Setting](d.DB, "setting").Register(p, "/settings", admin, admin)

	// Reports
	p.GET("/reports/dashboard", supervisor, reportH.Dashboard)
	p.GET("/reports/sales", manager, reportH.Sales)
	p.GET("/reports/sales/export", manager, reportH.ExportSales)
	p.GET("/reports/inventory", manager, reportH.Inventory)
	p.GET("/reports/valuation", manager, reportH.Valuation)

	p.POST("/assistant/ask", admin, assistantH.Ask)

	mountSPA(r, d.WebDir)
	return r
}

// mountSPA serves the built frontend when present; unknown /api paths still
// get a JSON 404.
func mountSPA(r *gin.Engine, dir string) {
	index := filepath.Join(dir, "index.html")
	_, err := os.Stat(index)
	hasSPA := dir != "" && err == nil
	if hasSPA {
		r.Static("/assets", filepath.Join(dir, "assets"))
	}

	r.NoRoute(func(c *gin.Context) {
		if hasSPA && c.Request.Method == http.MethodGet && !isAPIPath(c.Request.URL.Path) {
			c.File(index)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "Route not found"})
	})
}

func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/")
}
