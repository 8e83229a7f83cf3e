package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/application/inventory"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
	"github.com/jhoicas/telar-erp/internal/infrastructure/memory"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	ctx   context.Context
	db    *memory.DB
	store repository.Store
	uc    *inventory.RegisterMovementUseCase
	prod  *entity.Product
	locA  *entity.Location
	locB  *entity.Location
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.New()
	f := &fixture{
		ctx:   tenant.New(context.Background(), uuid.NewString(), uuid.NewString(), entity.RoleManager),
		db:    db,
		store: db.Store(),
		uc:    inventory.NewRegisterMovementUseCase(db, nil, logger.Nop()),
	}
	f.prod = &entity.Product{
		ID: uuid.NewString(), SKU: "TELA-001", Name: "Denim 12oz", Category: entity.CategoryFabric,
		Unit: entity.UnitMeter, Price: decimal.NewFromInt(20), ReorderPoint: decimal.NewFromInt(100),
	}
	require.NoError(t, f.store.Products.Create(f.ctx, f.prod))
	f.locA = &entity.Location{ID: uuid.NewString(), Name: "Bodega central", Type: entity.LocationWarehouse}
	f.locB = &entity.Location{ID: uuid.NewString(), Name: "Planta", Type: entity.LocationProductionFloor}
	require.NoError(t, f.store.Locations.Create(f.ctx, f.locA))
	require.NoError(t, f.store.Locations.Create(f.ctx, f.locB))
	return f
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func (f *fixture) in(t *testing.T, loc string, qty, cost string) {
	t.Helper()
	_, err := f.uc.RegisterMovement(f.ctx, inventory.Movement{
		ProductID: f.prod.ID, LocationID: loc, Type: entity.MovementIN, Quantity: dec(qty), UnitCost: ptr(dec(cost)),
	})
	require.NoError(t, err)
}

func (f *fixture) qty(t *testing.T, loc string) decimal.Decimal {
	t.Helper()
	s, err := f.store.Stock.Get(f.ctx, f.prod.ID, loc)
	require.NoError(t, err)
	return s.Quantity
}

func (f *fixture) cost(t *testing.T) decimal.Decimal {
	t.Helper()
	p, err := f.store.Products.GetByID(f.ctx, f.prod.ID)
	require.NoError(t, err)
	return p.Cost
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// Dos entradas recalculan el costo promedio ponderado: (10·5 + 30·9) / 40 = 8.
func TestRegisterMovement_INPromedioPonderado(t *testing.T) {
	f := newFixture(t)
	f.in(t, f.locA.ID, "10", "5")
	assert.True(t, f.cost(t).Equal(dec("5")))

	f.in(t, f.locA.ID, "30", "9")
	assert.True(t, f.qty(t, f.locA.ID).Equal(dec("40")))
	assert.True(t, f.cost(t).Equal(dec("8")), "costo: %s", f.cost(t))
}

// El promedio considera el stock de todas las ubicaciones.
func TestRegisterMovement_INConsideraStockGlobal(t *testing.T) {
	f := newFixture(t)
	f.in(t, f.locA.ID, "10", "10")
	f.in(t, f.locB.ID, "10", "20")
	assert.True(t, f.cost(t).Equal(dec("15")), "costo: %s", f.cost(t))
}

func TestRegisterMovement_OUTSinStock(t *testing.T) {
	f := newFixture(t)
	f.in(t, f.locA.ID, "5", "2")

	_, err := f.uc.RegisterMovement(f.ctx, inventory.Movement{
		ProductID: f.prod.ID, LocationID: f.locA.ID, Type: entity.MovementOUT, Quantity: dec("6"),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.qty(t, f.locA.ID).Equal(dec("5")), "el stock no debe cambiar")
}

func TestRegisterMovement_OUTUsaCostoPromedio(t *testing.T) {
	f := newFixture(t)
	f.in(t, f.locA.ID, "10", "4")

	movs, err := f.uc.RegisterMovement(f.ctx, inventory.Movement{
		ProductID: f.prod.ID, LocationID: f.locA.ID, Type: entity.MovementOUT, Quantity: dec("3"), Reference: "ORD-1",
	})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.True(t, movs[0].Quantity.Equal(dec("-3")))
	assert.True(t, movs[0].TotalCost.Equal(dec("-12")))
	assert.True(t, f.qty(t, f.locA.ID).Equal(dec("7")))
}

func TestRegisterMovement_AjusteConSigno(t *testing.T) {
	f := newFixture(t)
	f.in(t, f.locA.ID, "10", "4")

	_, err := f.uc.RegisterMovement(f.ctx, inventory.Movement{
		ProductID: f.prod.ID, LocationID: f.locA.ID, Type: entity.MovementAdjustment, Quantity: dec("-2"),
	})
	require.NoError(t, err)
	assert.True(t, f.qty(t, f.locA.ID).Equal(dec("8")))

	_, err = f.uc.RegisterMovement(f.ctx, inventory.Movement{
		ProductID: f.prod.ID, LocationID: f.locA.ID, Type: entity.MovementAdjustment, Quantity: dec("-9"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestRegisterMovement_Transferencia(t *testing.T) {
	f := newFixture(t)
	f.in(t, f.locA.ID, "10", "4")

	movs, err := f.uc.RegisterMovement(f.ctx, inventory.Movement{
		ProductID: f.prod.ID, FromLocationID: f.locA.ID, ToLocationID: f.locB.ID,
		Type: entity.MovementTransfer, Quantity: dec("4"),
	})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, movs[0].TransactionID, movs[1].TransactionID)
	assert.True(t, f.qty(t, f.locA.ID).Equal(dec("6")))
	assert.True(t, f.qty(t, f.locB.ID).Equal(dec("4")))
	assert.True(t, f.cost(t).Equal(dec("4")), "la transferencia no cambia el costo")
}

// lockingProducts registra qué productos se leyeron con bloqueo y cuáles sin él.
type lockingProducts struct {
	repository.ProductRepository
	locked, plain []string
}

func (r *lockingProducts) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	r.locked = append(r.locked, id)
	return r.ProductRepository.GetForUpdate(ctx, id)
}

func (r *lockingProducts) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	r.plain = append(r.plain, id)
	return r.ProductRepository.GetByID(ctx, id)
}

func TestApply_BloqueaElProductoAntesDeCalcularCosto(t *testing.T) {
	f := newFixture(t)
	f.in(t, f.locA.ID, "10", "100")

	spy := &lockingProducts{}
	err := f.db.Run(f.ctx, func(s repository.Store) error {
		spy.ProductRepository = s.Products
		s.Products = spy
		_, err := inventory.Apply(f.ctx, s, inventory.Movement{
			ProductID: f.prod.ID, LocationID: f.locB.ID, Type: entity.MovementIN,
			Quantity: dec("10"), UnitCost: ptr(dec("200")),
		}, time.Now())
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, []string{f.prod.ID}, spy.locked)
	assert.Empty(t, spy.plain)
	assert.True(t, f.cost(t).Equal(dec("150")), f.cost(t).String())
	assert.True(t, f.qty(t, f.locB.ID).Equal(dec("10")))
}

func TestRegisterMovement_Validaciones(t *testing.T) {
	f := newFixture(t)
	cases := map[string]inventory.Movement{
		"IN sin costo":          {ProductID: f.prod.ID, LocationID: f.locA.ID, Type: entity.MovementIN, Quantity: dec("1")},
		"OUT cantidad negativa": {ProductID: f.prod.ID, LocationID: f.locA.ID, Type: entity.MovementOUT, Quantity: dec("-1")},
		"ajuste cero":           {ProductID: f.prod.ID, LocationID: f.locA.ID, Type: entity.MovementAdjustment, Quantity: decimal.Zero},
		"transfer misma ubic.":  {ProductID: f.prod.ID, FromLocationID: f.locA.ID, ToLocationID: f.locA.ID, Type: entity.MovementTransfer, Quantity: dec("1")},
		"tipo desconocido":      {ProductID: f.prod.ID, LocationID: f.locA.ID, Type: "SCRAP", Quantity: dec("1")},
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.uc.RegisterMovement(f.ctx, m)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// Una ubicación de otra empresa no existe para este tenant.
func TestRegisterMovement_UbicacionDeOtroTenant(t *testing.T) {
	f := newFixture(t)
	other := tenant.WithCompany(context.Background(), uuid.NewString())
	foreign := &entity.Location{ID: uuid.NewString(), Name: "Ajena", Type: entity.LocationStore}
	require.NoError(t, f.store.Locations.Create(other, foreign))

	_, err := f.uc.RegisterMovement(f.ctx, inventory.Movement{
		ProductID: f.prod.ID, LocationID: foreign.ID, Type: entity.MovementIN, Quantity: dec("1"), UnitCost: ptr(dec("1")),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQuery_MovementsYStock(t *testing.T) {
	f := newFixture(t)
	f.in(t, f.locA.ID, "10", "4")
	f.in(t, f.locB.ID, "2", "4")
	q := inventory.NewQueryUseCase(f.store.Stock, f.store.Movements, f.store.Locations, f.store.Products)

	byProduct, err := q.StockByProduct(f.ctx, f.prod.ID)
	require.NoError(t, err)
	assert.Len(t, byProduct, 2)

	list, err := q.Movements(f.ctx, dto.MovementFilterRequest{
		LocationID:    f.locA.ID,
		PeriodRequest: dto.PeriodRequest{From: time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Total)

	_, err = q.StockByLocation(f.ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReplenishment_SugerenciaYPrioridad(t *testing.T) {
	f := newFixture(t)
	f.in(t, f.locA.ID, "40", "10")
	second := &entity.Product{
		ID: uuid.NewString(), SKU: "HILO-001", Name: "Hilo algodón", Category: entity.CategoryYarn,
		Unit: entity.UnitKg, Price: decimal.NewFromInt(8), ReorderPoint: decimal.NewFromInt(10),
	}
	require.NoError(t, f.store.Products.Create(f.ctx, second))

	list, err := inventory.NewReplenishmentUseCase(f.store.Stock).GenerateReplenishmentList(f.ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Sin stock alguno va primero.
	assert.Equal(t, "HILO-001", list[0].SKU)
	assert.True(t, list[0].SuggestedOrderQty.Equal(dec("15")))
	assert.Equal(t, 1, list[0].Priority)

	// 1.5 x 100 - 40 = 110
	assert.Equal(t, "TELA-001", list[1].SKU)
	assert.True(t, list[1].SuggestedOrderQty.Equal(dec("110")))
	assert.True(t, list[1].EstimatedOrderCost.Equal(dec("1100")))
	assert.True(t, list[1].GrossMarginPct.Equal(dec("50")))
}
