// Package bootstrap arma el grafo de casos de uso sobre un Store (postgres o memoria)
// y lo expone al router HTTP y a los comandos de la CLI.
package bootstrap

import (
	"net/http"
	"time"

	appanalytics "github.com/jhoicas/telar-erp/internal/application/analytics"
	"github.com/jhoicas/telar-erp/internal/application/auth"
	"github.com/jhoicas/telar-erp/internal/application/finance"
	"github.com/jhoicas/telar-erp/internal/application/inventory"
	"github.com/jhoicas/telar-erp/internal/application/maintenance"
	"github.com/jhoicas/telar-erp/internal/application/orders"
	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/application/quality"
	"github.com/jhoicas/telar-erp/internal/application/usecase"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	apphttp "github.com/jhoicas/telar-erp/internal/interfaces/http"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

// Infra adaptadores de infraestructura ya construidos.
type Infra struct {
	Store    repository.Store
	TxRunner ports.TxRunner
	Cache    ports.Cache
	Events   ports.EventPublisher
	PDF      ports.PDFRenderer
	Sheets   ports.SpreadsheetWriter
	JWT      auth.JWTConfig
	Log      *logger.Logger
}

// Services todos los casos de uso de la aplicación.
type Services struct {
	Auth     *auth.AuthUseCase
	Company  *usecase.CompanyUseCase
	Modules  *usecase.ModuleService
	Users    *usecase.UserUseCase
	Products *usecase.ProductUseCase
	Location *usecase.LocationUseCase
	Customer *usecase.CustomerUseCase

	Movements     *inventory.RegisterMovementUseCase
	Inventory     *inventory.QueryUseCase
	Replenishment *inventory.ReplenishmentUseCase

	Orders *orders.UseCase

	Machines   *maintenance.MachineUseCase
	Schedules  *maintenance.ScheduleUseCase
	Breakdowns *maintenance.BreakdownUseCase
	Sweeper    *maintenance.DueSweeper

	Inspections *quality.InspectionUseCase
	Compliance  *quality.ComplianceUseCase

	Invoices *finance.InvoiceUseCase
	Bills    *finance.BillUseCase

	Dashboard *appanalytics.DashboardUseCase
	Reports   *appanalytics.ReportsUseCase
}

// NewServices construye los casos de uso. Los repositorios de Store se usan fuera de
// transacción; las escrituras de varios pasos abren la suya con TxRunner.
func NewServices(in Infra) *Services {
	s := in.Store
	authUC := auth.NewAuthUseCase(s.Users, s.Companies, in.JWT)

	maint := maintenance.Deps{Store: s, TxRunner: in.TxRunner, Events: in.Events, Cache: in.Cache, Log: in.Log.Component("maintenance")}
	qual := quality.Deps{Store: s, TxRunner: in.TxRunner, Events: in.Events, PDF: in.PDF, Log: in.Log.Component("quality")}
	fin := finance.Deps{Store: s, TxRunner: in.TxRunner, Events: in.Events, Cache: in.Cache, PDF: in.PDF, Log: in.Log.Component("finance")}
	rep := appanalytics.Deps{Store: s, Cache: in.Cache, Sheets: in.Sheets, Log: in.Log.Component("reports")}

	return &Services{
		Auth:     authUC,
		Company:  usecase.NewCompanyUseCase(s.Companies, s.Users, in.TxRunner, authUC),
		Modules:  usecase.NewModuleService(s.Companies),
		Users:    usecase.NewUserUseCase(s.Users),
		Products: usecase.NewProductUseCase(s.Products),
		Location: usecase.NewLocationUseCase(s.Locations, s.Stock),
		Customer: usecase.NewCustomerUseCase(s.Customers),

		Movements:     inventory.NewRegisterMovementUseCase(in.TxRunner, in.Cache, in.Log.Component("inventory")),
		Inventory:     inventory.NewQueryUseCase(s.Stock, s.Movements, s.Locations, s.Products),
		Replenishment: inventory.NewReplenishmentUseCase(s.Stock),

		Orders: orders.NewUseCase(orders.Deps{Store: s, TxRunner: in.TxRunner, Events: in.Events, Cache: in.Cache, Log: in.Log.Component("orders")}),

		Machines:   maintenance.NewMachineUseCase(maint),
		Schedules:  maintenance.NewScheduleUseCase(maint),
		Breakdowns: maintenance.NewBreakdownUseCase(maint),
		Sweeper:    maintenance.NewDueSweeper(s.Schedules, in.Events, in.Log.Component("maintenance")),

		Inspections: quality.NewInspectionUseCase(qual),
		Compliance:  quality.NewComplianceUseCase(qual),

		Invoices: finance.NewInvoiceUseCase(fin),
		Bills:    finance.NewBillUseCase(fin),

		Dashboard: appanalytics.NewDashboardUseCase(rep),
		Reports:   appanalytics.NewReportsUseCase(rep),
	}
}

// HTTPOptions parámetros del servidor que no dependen de los casos de uso.
type HTTPOptions struct {
	AppName        string
	JWTSecret      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	BodyLimit      int
	Requests       apphttp.RequestRecorder
	MetricsHandler http.Handler
	MetricsPath    string
	SwaggerFile    string
	SwaggerPath    string
}

// RouterDeps conecta los casos de uso con el router HTTP.
func (s *Services) RouterDeps(opts HTTPOptions, log *logger.Logger) apphttp.RouterDeps {
	return apphttp.RouterDeps{
		AppName:   opts.AppName,
		JWTSecret: opts.JWTSecret,
		Log:       log,

		AuthUC:        s.Auth,
		CompanyUC:     s.Company,
		ModuleService: s.Modules,
		UserUC:        s.Users,
		ProductUC:     s.Products,
		LocationUC:    s.Location,
		CustomerUC:    s.Customer,

		RegisterMovement: s.Movements,
		InventoryQuery:   s.Inventory,
		Replenishment:    s.Replenishment,

		Orders: s.Orders,

		Machines:   s.Machines,
		Schedules:  s.Schedules,
		Breakdowns: s.Breakdowns,

		Inspections: s.Inspections,
		Compliance:  s.Compliance,

		Invoices: s.Invoices,
		Bills:    s.Bills,

		Dashboard: s.Dashboard,
		Reports:   s.Reports,

		ReadTimeout:    opts.ReadTimeout,
		WriteTimeout:   opts.WriteTimeout,
		BodyLimit:      opts.BodyLimit,
		Requests:       opts.Requests,
		MetricsHandler: opts.MetricsHandler,
		MetricsPath:    opts.MetricsPath,
		SwaggerFile:    opts.SwaggerFile,
		SwaggerPath:    opts.SwaggerPath,
	}
}
