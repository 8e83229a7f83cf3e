// Package seed carga una empresa de demostración para entornos locales.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/bootstrap"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

// Demo datos de acceso de la empresa sembrada.
const (
	DemoTaxID    = "900000001-1"
	DemoEmail    = "admin@telar.local"
	DemoPassword = "telar-demo-123"
)

// ErrAlreadySeeded la empresa demo ya existe.
var ErrAlreadySeeded = errors.New("seed: la empresa demo ya existe")

// Result identificadores creados, útiles para pruebas manuales.
type Result struct {
	CompanyID  string
	Token      string
	Warehouse  string
	Floor      string
	Products   []string
	CustomerID string
	MachineID  string
}

// Seeder crea los datos a través de los casos de uso, así pasan por las mismas reglas que la API.
type Seeder struct {
	svc *bootstrap.Services
	log *logger.Logger
}

// New construye el seeder.
func New(svc *bootstrap.Services, log *logger.Logger) *Seeder {
	return &Seeder{svc: svc, log: log}
}

type productSeed struct {
	sku, name, category, unit string
	price, cost, reorder, qty int64
}

var demoProducts = []productSeed{
	{"DEN-12OZ", "Denim índigo 12oz", entity.CategoryFabric, entity.UnitMeter, 28000, 17500, 200, 850},
	{"ALG-30-1", "Hilo algodón 30/1", entity.CategoryYarn, entity.UnitKg, 21000, 14000, 100, 420},
	{"CAM-BAS-M", "Camiseta básica talla M", entity.CategoryGarment, entity.UnitPiece, 32000, 15000, 50, 60},
	{"BOT-MET-14", "Botón metálico 14mm", entity.CategoryAccessory, entity.UnitPiece, 350, 120, 2000, 1500},
	{"TIN-REAC-AZ", "Tinte reactivo azul", entity.CategoryChemical, entity.UnitKg, 64000, 41000, 20, 35},
}

// Demo crea la empresa demo con ubicaciones, productos con stock inicial, un cliente,
// una máquina y su mantenimiento preventivo.
func (s *Seeder) Demo(ctx context.Context) (*Result, error) {
	onb, err := s.svc.Company.Onboard(ctx, dto.CreateCompanyRequest{
		Name:          "Textiles Demo S.A.S.",
		TaxID:         DemoTaxID,
		Address:       "Cra 50 # 10-20, Medellín",
		Email:         "contacto@telar.local",
		AdminName:     "Administrador Demo",
		AdminEmail:    DemoEmail,
		AdminPassword: DemoPassword,
	})
	if errors.Is(err, domain.ErrDuplicate) || errors.Is(err, domain.ErrEmailAlreadyExists) {
		return nil, ErrAlreadySeeded
	}
	if err != nil {
		return nil, fmt.Errorf("onboard: %w", err)
	}
	ctx = tenant.New(ctx, onb.Company.ID, onb.Admin.ID, entity.RoleAdmin)
	res := &Result{CompanyID: onb.Company.ID, Token: onb.Token}

	wh, err := s.svc.Location.Create(ctx, dto.CreateLocationRequest{Name: "Bodega principal", Type: entity.LocationWarehouse})
	if err != nil {
		return nil, fmt.Errorf("bodega: %w", err)
	}
	floor, err := s.svc.Location.Create(ctx, dto.CreateLocationRequest{Name: "Planta de tejeduría", Type: entity.LocationProductionFloor})
	if err != nil {
		return nil, fmt.Errorf("planta: %w", err)
	}
	res.Warehouse, res.Floor = wh.ID, floor.ID

	for _, p := range demoProducts {
		prod, err := s.svc.Products.Create(ctx, dto.CreateProductRequest{
			SKU: p.sku, Name: p.name, Category: p.category, Unit: p.unit,
			Price: decimal.NewFromInt(p.price), ReorderPoint: decimal.NewFromInt(p.reorder),
		})
		if err != nil {
			return nil, fmt.Errorf("producto %s: %w", p.sku, err)
		}
		cost := decimal.NewFromInt(p.cost)
		if _, err := s.svc.Movements.RegisterMovementFromRequest(ctx, dto.RegisterMovementRequest{
			ProductID: prod.ID, LocationID: wh.ID, Type: string(entity.MovementIN),
			Quantity: decimal.NewFromInt(p.qty), UnitCost: &cost, Reference: "SEED",
		}); err != nil {
			return nil, fmt.Errorf("stock inicial %s: %w", p.sku, err)
		}
		res.Products = append(res.Products, prod.ID)
	}

	cust, err := s.svc.Customer.Create(ctx, dto.CreateCustomerRequest{
		Name: "Confecciones del Valle", TaxID: "800123456-7", Email: "compras@valle.local",
	})
	if err != nil {
		return nil, fmt.Errorf("cliente: %w", err)
	}
	res.CustomerID = cust.ID

	mach, err := s.svc.Machines.Create(ctx, dto.CreateMachineRequest{
		Code: "TEL-01", Name: "Telar de pinzas 1", Type: entity.MachineLoom, LocationID: floor.ID, Manufacturer: "Picanol",
	})
	if err != nil {
		return nil, fmt.Errorf("máquina: %w", err)
	}
	res.MachineID = mach.ID
	if _, err := s.svc.Schedules.Create(ctx, dto.CreateScheduleRequest{
		MachineID: mach.ID, Title: "Lubricación general", IntervalDays: 30,
		DueDate: time.Now().AddDate(0, 0, 7),
	}); err != nil {
		return nil, fmt.Errorf("mantenimiento: %w", err)
	}

	s.log.Info().Str("company_id", res.CompanyID).Int("products", len(res.Products)).Msg("datos demo cargados")
	return res, nil
}
