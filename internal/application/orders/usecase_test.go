package orders_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/application/orders"
	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
	"github.com/jhoicas/telar-erp/internal/infrastructure/memory"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

// recorder guarda los eventos publicados.
type recorder struct {
	mu     sync.Mutex
	events []ports.Event
}

func (r *recorder) Publish(_ context.Context, events ...ports.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *recorder) Close() error { return nil }

type fixture struct {
	ctx      context.Context
	db       *memory.DB
	store    repository.Store
	uc       *orders.UseCase
	events   *recorder
	customer *entity.Customer
	product  *entity.Product
	location *entity.Location
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.New()
	f := &fixture{
		ctx:    tenant.New(context.Background(), uuid.NewString(), uuid.NewString(), entity.RoleManager),
		db:     db,
		store:  db.Store(),
		events: &recorder{},
	}
	f.uc = orders.NewUseCase(orders.Deps{Store: f.store, TxRunner: db, Events: f.events, Log: logger.Nop()})
	f.customer = &entity.Customer{ID: uuid.NewString(), Name: "Confecciones Andina"}
	require.NoError(t, f.store.Customers.Create(f.ctx, f.customer))
	f.product = &entity.Product{
		ID: uuid.NewString(), SKU: "POP-150", Name: "Popelina 150cm", Category: entity.CategoryFabric,
		Unit: entity.UnitMeter, Price: decimal.NewFromInt(12),
	}
	require.NoError(t, f.store.Products.Create(f.ctx, f.product))
	f.location = &entity.Location{ID: uuid.NewString(), Name: "Bodega", Type: entity.LocationWarehouse}
	require.NoError(t, f.store.Locations.Create(f.ctx, f.location))
	return f
}

func (f *fixture) create(t *testing.T, qty int64, locationID string) *dto.OrderResponse {
	t.Helper()
	out, err := f.uc.Create(f.ctx, dto.CreateOrderRequest{
		CustomerID: f.customer.ID,
		LocationID: locationID,
		Items:      []dto.OrderItemRequest{{ProductID: f.product.ID, Quantity: decimal.NewFromInt(qty)}},
	})
	require.NoError(t, err)
	return out
}

func (f *fixture) move(t *testing.T, id string, statuses ...entity.OrderStatus) {
	t.Helper()
	for _, s := range statuses {
		_, err := f.uc.Transition(f.ctx, id, dto.TransitionRequest{Status: string(s)})
		require.NoError(t, err, "transición a %s", s)
	}
}

func (f *fixture) stock(t *testing.T) decimal.Decimal {
	t.Helper()
	s, err := f.store.Stock.Get(f.ctx, f.product.ID, f.location.ID)
	require.NoError(t, err)
	return s.Quantity
}

// ──────────────────────────────────────────────────────────────────────────────
// Alta y edición
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_PrecioDelProductoYTotal(t *testing.T) {
	f := newFixture(t)
	custom := decimal.NewFromInt(10)
	out, err := f.uc.Create(f.ctx, dto.CreateOrderRequest{
		CustomerID: f.customer.ID,
		Items: []dto.OrderItemRequest{
			{ProductID: f.product.ID, Quantity: decimal.NewFromInt(3)},
			{ProductID: f.product.ID, Quantity: decimal.NewFromInt(2), UnitPrice: &custom},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderStatusDraft), out.Status)
	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{6}$`, out.OrderNumber)
	assert.True(t, out.Items[0].UnitPrice.Equal(decimal.NewFromInt(12)))
	assert.True(t, out.TotalAmount.Equal(decimal.NewFromInt(56)))
	assert.ElementsMatch(t, []string{"CONFIRMED", "CANCELLED"}, out.NextStatus)
}

func TestCreate_ClienteDeOtroTenant(t *testing.T) {
	f := newFixture(t)
	other := tenant.WithCompany(context.Background(), uuid.NewString())
	foreign := &entity.Customer{ID: uuid.NewString(), Name: "Ajeno"}
	require.NoError(t, f.store.Customers.Create(other, foreign))

	_, err := f.uc.Create(f.ctx, dto.CreateOrderRequest{
		CustomerID: foreign.ID,
		Items:      []dto.OrderItemRequest{{ProductID: f.product.ID, Quantity: decimal.NewFromInt(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateYDelete_SoloEnDraft(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, 1, "")
	note := "urgente"
	updated, err := f.uc.Update(f.ctx, o.ID, dto.UpdateOrderRequest{
		Notes: &note,
		Items: []dto.OrderItemRequest{{ProductID: f.product.ID, Quantity: decimal.NewFromInt(5)}},
	})
	require.NoError(t, err)
	assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(60)))

	f.move(t, o.ID, entity.OrderStatusConfirmed)
	_, err = f.uc.Update(f.ctx, o.ID, dto.UpdateOrderRequest{Notes: &note})
	assert.ErrorIs(t, err, domain.ErrNotEditable)
	assert.ErrorIs(t, f.uc.Delete(f.ctx, o.ID), domain.ErrNotEditable)

	draft := f.create(t, 1, "")
	require.NoError(t, f.uc.Delete(f.ctx, draft.ID))
	_, err = f.uc.GetByID(f.ctx, draft.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// interleavedOrders ejecuta afterGet una sola vez, justo después de la primera lectura sin bloqueo.
type interleavedOrders struct {
	repository.OrderRepository
	once     sync.Once
	afterGet func()
}

func (r *interleavedOrders) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	o, err := r.OrderRepository.GetByID(ctx, id)
	r.once.Do(r.afterGet)
	return o, err
}

func TestUpdate_ConfirmadoEntreLecturaYEscrituraNoVuelveADraft(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, 1, "")

	store := f.store
	store.Orders = &interleavedOrders{
		OrderRepository: f.store.Orders,
		afterGet:        func() { f.move(t, o.ID, entity.OrderStatusConfirmed) },
	}
	uc := orders.NewUseCase(orders.Deps{Store: store, TxRunner: f.db, Events: f.events, Log: logger.Nop()})

	_, err := uc.Update(f.ctx, o.ID, dto.UpdateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: f.product.ID, Quantity: decimal.NewFromInt(500)}},
	})
	assert.ErrorIs(t, err, domain.ErrNotEditable)

	got, err := f.uc.GetByID(f.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.OrderStatusConfirmed), got.Status)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(12)))
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].Quantity.Equal(decimal.NewFromInt(1)))
}

func TestOrderRepo_UpdateNoTocaElEstado(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, 1, "")

	stale, err := f.store.Orders.GetByID(f.ctx, o.ID)
	require.NoError(t, err)
	f.move(t, o.ID, entity.OrderStatusConfirmed)

	stale.Notes = "escritura tardía"
	assert.ErrorIs(t, f.store.Orders.Update(f.ctx, stale), domain.ErrNotEditable)

	got, err := f.store.Orders.GetByID(f.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusConfirmed, got.Status)
	assert.Empty(t, got.Notes)
}

// ──────────────────────────────────────────────────────────────────────────────
// Flujo de estados
// ──────────────────────────────────────────────────────────────────────────────

func TestTransition_FlujoCompletoEHistorial(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, 1, "")
	f.move(t, o.ID,
		entity.OrderStatusConfirmed, entity.OrderStatusInProduction, entity.OrderStatusReadyToShip,
		entity.OrderStatusShipped, entity.OrderStatusDelivered)

	got, err := f.uc.GetByID(f.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "DELIVERED", got.Status)
	assert.Empty(t, got.NextStatus)

	hist, err := f.uc.History(f.ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, hist, 5)
	assert.Equal(t, "DRAFT", hist[0].FromStatus)
	assert.Equal(t, "DELIVERED", hist[4].ToStatus)
	assert.Len(t, f.events.events, 5)
	assert.Equal(t, ports.EventOrderStatusChanged, f.events.events[0].Type)
}

func TestTransition_NoDeclaradaRechazada(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, 1, "")

	_, err := f.uc.Transition(f.ctx, o.ID, dto.TransitionRequest{Status: "SHIPPED"})
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	f.move(t, o.ID, entity.OrderStatusCancelled)
	_, err = f.uc.Transition(f.ctx, o.ID, dto.TransitionRequest{Status: "CONFIRMED"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "CANCELLED es terminal")

	_, err = f.uc.Transition(f.ctx, o.ID, dto.TransitionRequest{Status: "LOST"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Repetir el estado actual es un no-op: sin historial ni eventos nuevos.
func TestTransition_MismoEstadoIdempotente(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, 1, "")
	f.move(t, o.ID, entity.OrderStatusConfirmed, entity.OrderStatusConfirmed)

	hist, err := f.uc.History(f.ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
	assert.Len(t, f.events.events, 1)
}

func TestTransition_PedidoDeOtroTenant(t *testing.T) {
	f := newFixture(t)
	o := f.create(t, 1, "")
	other := tenant.New(context.Background(), uuid.NewString(), uuid.NewString(), entity.RoleAdmin)

	_, err := f.uc.Transition(other, o.ID, dto.TransitionRequest{Status: "CONFIRMED"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.uc.GetByID(other, o.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransition_DespachoDescuentaStock(t *testing.T) {
	f := newFixture(t)
	cost := decimal.NewFromInt(7)
	require.NoError(t, f.store.Stock.Upsert(f.ctx, &entity.LocationInventory{
		ProductID: f.product.ID, LocationID: f.location.ID, Quantity: decimal.NewFromInt(10),
	}))
	require.NoError(t, f.store.Products.UpdateCost(f.ctx, f.product.ID, cost))

	o := f.create(t, 4, f.location.ID)
	f.move(t, o.ID, entity.OrderStatusConfirmed, entity.OrderStatusInProduction,
		entity.OrderStatusReadyToShip, entity.OrderStatusShipped)

	assert.True(t, f.stock(t).Equal(decimal.NewFromInt(6)))
	movs, total, err := f.store.Movements.List(f.ctx, repository.MovementFilter{ProductID: f.product.ID})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, o.OrderNumber, movs[0].Reference)
	assert.True(t, movs[0].TotalCost.Equal(decimal.NewFromInt(-28)))
}

// Sin stock suficiente el pedido sigue en READY_TO_SHIP y el stock no cambia.
func TestTransition_DespachoSinStockNoCambiaNada(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Stock.Upsert(f.ctx, &entity.LocationInventory{
		ProductID: f.product.ID, LocationID: f.location.ID, Quantity: decimal.NewFromInt(2),
	}))
	o := f.create(t, 4, f.location.ID)
	f.move(t, o.ID, entity.OrderStatusConfirmed, entity.OrderStatusInProduction, entity.OrderStatusReadyToShip)

	_, err := f.uc.Transition(f.ctx, o.ID, dto.TransitionRequest{Status: "SHIPPED"})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := f.uc.GetByID(f.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "READY_TO_SHIP", got.Status)
	assert.True(t, f.stock(t).Equal(decimal.NewFromInt(2)))
	hist, err := f.uc.History(f.ctx, o.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 3)
}

func TestList_FiltraPorEstado(t *testing.T) {
	f := newFixture(t)
	a := f.create(t, 1, "")
	f.create(t, 1, "")
	f.move(t, a.ID, entity.OrderStatusConfirmed)

	list, err := f.uc.List(f.ctx, dto.OrderFilterRequest{Status: "CONFIRMED"})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Total)
	assert.Equal(t, a.ID, list.Items[0].ID)

	_, err = f.uc.List(f.ctx, dto.OrderFilterRequest{Status: "BOGUS"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
