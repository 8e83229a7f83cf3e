package http

import (
	"net/http"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appanalytics "github.com/jhoicas/telar-erp/internal/application/analytics"
	"github.com/jhoicas/telar-erp/internal/application/auth"
	"github.com/jhoicas/telar-erp/internal/application/finance"
	"github.com/jhoicas/telar-erp/internal/application/inventory"
	"github.com/jhoicas/telar-erp/internal/application/maintenance"
	"github.com/jhoicas/telar-erp/internal/application/orders"
	"github.com/jhoicas/telar-erp/internal/application/quality"
	"github.com/jhoicas/telar-erp/internal/application/usecase"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName   string
	JWTSecret string
	Log       *logger.Logger

	AuthUC        *auth.AuthUseCase
	CompanyUC     *usecase.CompanyUseCase
	ModuleService *usecase.ModuleService
	UserUC        *usecase.UserUseCase
	ProductUC     *usecase.ProductUseCase
	LocationUC    *usecase.LocationUseCase
	CustomerUC    *usecase.CustomerUseCase

	RegisterMovement *inventory.RegisterMovementUseCase
	InventoryQuery   *inventory.QueryUseCase
	Replenishment    *inventory.ReplenishmentUseCase

	Orders *orders.UseCase

	Machines   *maintenance.MachineUseCase
	Schedules  *maintenance.ScheduleUseCase
	Breakdowns *maintenance.BreakdownUseCase

	Inspections *quality.InspectionUseCase
	Compliance  *quality.ComplianceUseCase

	Invoices *finance.InvoiceUseCase
	Bills    *finance.BillUseCase

	Dashboard *appanalytics.DashboardUseCase
	Reports   *appanalytics.ReportsUseCase

	// Opcionales
	ReadTimeout    time.Duration   // 0 = 10s
	WriteTimeout   time.Duration   // 0 = 30s
	BodyLimit      int             // bytes; 0 = 10 MB
	Requests       RequestRecorder // nil = sin métricas por petición
	MetricsHandler http.Handler    // nil = sin /metrics
	MetricsPath    string
	SwaggerFile    string // vacío = sin /docs
	SwaggerPath    string
}

// Grupos de roles autorizados por tipo de operación.
var (
	rolesAdmin   = []string{entity.RoleAdmin}
	rolesManage  = []string{entity.RoleAdmin, entity.RoleManager}
	rolesFloor   = []string{entity.RoleAdmin, entity.RoleManager, entity.RoleOperator}
	rolesQuality = []string{entity.RoleAdmin, entity.RoleManager, entity.RoleInspector}
	rolesFinance = []string{entity.RoleAdmin, entity.RoleManager, entity.RoleAccountant}
)

// NewApp construye la aplicación Fiber con middlewares globales, health, métricas, docs y la API.
func NewApp(deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      deps.AppName,
		ReadTimeout:  orDefault(deps.ReadTimeout, 10*time.Second),
		WriteTimeout: orDefault(deps.WriteTimeout, 30*time.Second),
		IdleTimeout:  60 * time.Second,
		BodyLimit:    orDefault(deps.BodyLimit, 10*1024*1024),
		ErrorHandler: ErrorHandler(deps.Log),
	})
	app.Use(recover.New())
	app.Use(AccessLog(deps.Log.Component("http"), deps.Requests))

	app.Get("/health", func(c *fiber.Ctx) error {
		return ok(c, fiber.Map{"status": "ok", "service": deps.AppName})
	})
	if deps.MetricsHandler != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(deps.MetricsHandler))
	}
	if deps.SwaggerFile != "" {
		// Swagger UI en local: http://localhost:<port>/docs
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: deps.SwaggerFile,
			Path:     deps.SwaggerPath,
			Title:    deps.AppName + " API",
		}))
	}

	Router(app, deps)
	return app
}

func orDefault[T time.Duration | int](v, def T) T {
	if v <= 0 {
		return def
	}
	return v
}

// Router registra las rutas de la API bajo /api/v1.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api/v1")
	log := deps.Log.Component("modules")
	module := func(name string) fiber.Handler { return RequireModule(name, deps.ModuleService, log) }

	// Auth y alta de empresa (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)
	companyHandler := NewCompanyHandler(deps.CompanyUC, deps.ModuleService)
	api.Post("/companies", companyHandler.Onboard)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)

	company := protected.Group("/companies/me")
	company.Get("/", companyHandler.GetOwn)
	company.Put("/", RequireRole(rolesAdmin...), companyHandler.UpdateOwn)
	company.Get("/modules", companyHandler.ListModules)
	company.Put("/modules/:module", RequireRole(rolesAdmin...), companyHandler.ToggleModule)

	users := protected.Group("/users", RequireRole(rolesAdmin...))
	userHandler := NewUserHandler(deps.UserUC)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Deactivate)

	// Inventario
	products := protected.Group("/products", module(entity.ModuleInventory))
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", RequireRole(rolesManage...), productHandler.Create)
	products.Post("/import", RequireRole(rolesManage...), productHandler.Import)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", RequireRole(rolesManage...), productHandler.Update)
	products.Delete("/:id", RequireRole(rolesManage...), productHandler.Delete)

	locations := protected.Group("/locations", module(entity.ModuleInventory))
	locationHandler := NewLocationHandler(deps.LocationUC)
	locations.Post("/", RequireRole(rolesManage...), locationHandler.Create)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Put("/:id", RequireRole(rolesManage...), locationHandler.Update)
	locations.Delete("/:id", RequireRole(rolesManage...), locationHandler.Delete)

	inv := protected.Group("/inventory", module(entity.ModuleInventory))
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.InventoryQuery, deps.Replenishment)
	inv.Post("/movements", RequireRole(rolesFloor...), inventoryHandler.RegisterMovement)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Get("/stock", inventoryHandler.Stock)
	inv.Get("/replenishment-list", inventoryHandler.GetReplenishmentList)

	// Clientes (compartidos por pedidos y facturación)
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customerWrite := RequireRole(entity.RoleAdmin, entity.RoleManager, entity.RoleAccountant)
	customers.Post("/", customerWrite, customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerWrite, customerHandler.Update)

	// Pedidos
	ords := protected.Group("/orders", module(entity.ModuleOrders))
	orderHandler := NewOrderHandler(deps.Orders)
	ords.Post("/", RequireRole(rolesFloor...), orderHandler.Create)
	ords.Get("/", orderHandler.List)
	ords.Get("/:id", orderHandler.GetByID)
	ords.Put("/:id", RequireRole(rolesFloor...), orderHandler.Update)
	ords.Delete("/:id", RequireRole(rolesFloor...), orderHandler.Delete)
	ords.Patch("/:id/status", RequireRole(rolesFloor...), orderHandler.Transition)
	ords.Get("/:id/history", orderHandler.History)
	ords.Get("/:id/next-statuses", orderHandler.NextStatuses)

	// Producción: máquinas y mantenimiento
	maint := NewMaintenanceHandler(deps.Machines, deps.Schedules, deps.Breakdowns)
	machines := protected.Group("/machines", module(entity.ModuleProduction))
	machines.Post("/", RequireRole(rolesManage...), maint.CreateMachine)
	machines.Get("/", maint.ListMachines)
	machines.Get("/:id", maint.GetMachine)
	machines.Put("/:id", RequireRole(rolesManage...), maint.UpdateMachine)
	machines.Patch("/:id/status", RequireRole(rolesFloor...), maint.TransitionMachine)

	mt := protected.Group("/maintenance", module(entity.ModuleProduction))
	mt.Post("/schedules", RequireRole(rolesManage...), maint.CreateSchedule)
	mt.Get("/schedules", maint.ListSchedules)
	mt.Get("/schedules/:id", maint.GetSchedule)
	mt.Patch("/schedules/:id/status", RequireRole(rolesFloor...), maint.TransitionSchedule)
	mt.Post("/breakdowns", maint.CreateBreakdown)
	mt.Get("/breakdowns", maint.ListBreakdowns)
	mt.Get("/breakdowns/:id", maint.GetBreakdown)
	mt.Patch("/breakdowns/:id/status", RequireRole(rolesFloor...), maint.TransitionBreakdown)

	// Calidad
	qh := NewQualityHandler(deps.Inspections, deps.Compliance)
	q := protected.Group("/quality", module(entity.ModuleQuality))
	q.Post("/inspections", RequireRole(rolesQuality...), qh.CreateInspection)
	q.Get("/inspections", qh.ListInspections)
	q.Get("/inspections/:id", qh.GetInspection)
	q.Patch("/inspections/:id/status", RequireRole(rolesQuality...), qh.TransitionInspection)
	q.Post("/inspections/:id/defects", RequireRole(rolesQuality...), qh.AddDefect)
	q.Get("/inspections/:id/defects", qh.ListDefects)
	q.Delete("/inspections/:id/defects/:defectId", RequireRole(rolesQuality...), qh.DeleteDefect)
	q.Post("/compliance-reports", RequireRole(rolesQuality...), qh.GenerateCompliance)
	q.Get("/compliance-reports", qh.ListCompliance)
	q.Get("/compliance-reports/:id", qh.GetCompliance)
	q.Post("/compliance-reports/:id/publish", RequireRole(rolesManage...), qh.PublishCompliance)
	q.Get("/compliance-reports/:id/pdf", qh.CompliancePDF)

	// Finanzas
	fh := NewFinanceHandler(deps.Invoices, deps.Bills)
	invoices := protected.Group("/invoices", module(entity.ModuleFinance), RequireRole(rolesFinance...))
	invoices.Post("/", fh.CreateInvoice)
	invoices.Get("/", fh.ListInvoices)
	invoices.Get("/:id", fh.GetInvoice)
	invoices.Patch("/:id/status", fh.TransitionInvoice)
	invoices.Get("/:id/pdf", fh.InvoicePDF)

	bills := protected.Group("/bills", module(entity.ModuleFinance), RequireRole(rolesFinance...))
	bills.Post("/", fh.CreateBill)
	bills.Get("/", fh.ListBills)
	bills.Get("/:id", fh.GetBill)
	bills.Put("/:id", fh.UpdateBill)
	bills.Patch("/:id/status", fh.TransitionBill)

	// Dashboard y reportes
	dh := NewDashboardHandler(deps.Dashboard, deps.Reports)
	protected.Get("/dashboard/summary", dh.GetSummary)
	protected.Get("/reports/profit-and-loss", module(entity.ModuleFinance), RequireRole(rolesFinance...), dh.ProfitAndLoss)
	protected.Get("/reports/inventory-valuation", module(entity.ModuleInventory), RequireRole(rolesFinance...), dh.InventoryValuation)
}
