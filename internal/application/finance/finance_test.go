package finance_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/application/finance"
	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
	"github.com/jhoicas/telar-erp/internal/infrastructure/memory"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

type recorder struct{ events []ports.Event }

func (r *recorder) Publish(_ context.Context, events ...ports.Event) error {
	r.events = append(r.events, events...)
	return nil
}

func (r *recorder) Close() error { return nil }

// spyCache registra los prefijos invalidados.
type spyCache struct{ deleted []string }

func (c *spyCache) Get(context.Context, string, any) error { return ports.ErrCacheMiss }

func (c *spyCache) Set(context.Context, string, any, time.Duration) error { return nil }

func (c *spyCache) DeletePrefix(_ context.Context, prefix string) error {
	c.deleted = append(c.deleted, prefix)
	return nil
}

type fakePDF struct{ got ports.InvoiceDocument }

func (f *fakePDF) InvoicePDF(_ context.Context, doc ports.InvoiceDocument) ([]byte, error) {
	f.got = doc
	return []byte("%PDF-invoice"), nil
}

func (f *fakePDF) CompliancePDF(context.Context, ports.ComplianceDocument) ([]byte, error) {
	return nil, nil
}

type fixture struct {
	ctx       context.Context
	companyID string
	store     repository.Store
	events    *recorder
	cache     *spyCache
	pdf       *fakePDF
	invoices  *finance.InvoiceUseCase
	bills     *finance.BillUseCase
	customer  *entity.Customer
	product   *entity.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.New()
	f := &fixture{
		companyID: uuid.NewString(),
		store:     db.Store(),
		events:    &recorder{},
		cache:     &spyCache{},
		pdf:       &fakePDF{},
	}
	f.ctx = tenant.New(context.Background(), f.companyID, uuid.NewString(), entity.RoleAccountant)
	require.NoError(t, f.store.Companies.Create(f.ctx, &entity.Company{ID: f.companyID, Name: "Tejidos Boyacá", TaxID: "800200300", Status: entity.CompanyStatusActive}))
	f.customer = &entity.Customer{ID: uuid.NewString(), Name: "Confecciones Andina"}
	require.NoError(t, f.store.Customers.Create(f.ctx, f.customer))
	f.product = &entity.Product{
		ID: uuid.NewString(), SKU: "DRL-01", Name: "Dril 160cm", Category: entity.CategoryFabric,
		Unit: entity.UnitMeter, Price: decimal.NewFromInt(12),
	}
	require.NoError(t, f.store.Products.Create(f.ctx, f.product))

	deps := finance.Deps{Store: f.store, TxRunner: db, Events: f.events, Cache: f.cache, PDF: f.pdf, Log: logger.Nop()}
	f.invoices = finance.NewInvoiceUseCase(deps)
	f.bills = finance.NewBillUseCase(deps)
	return f
}

func (f *fixture) manualInvoice(t *testing.T) *dto.InvoiceResponse {
	t.Helper()
	freight := decimal.NewFromInt(30)
	out, err := f.invoices.Create(f.ctx, dto.CreateInvoiceRequest{
		CustomerID: f.customer.ID,
		Items: []dto.InvoiceItemRequest{
			{ProductID: f.product.ID, Quantity: decimal.NewFromInt(10), TaxRate: decimal.NewFromInt(19)},
			{Description: "Flete", Quantity: decimal.NewFromInt(1), UnitPrice: &freight},
		},
	})
	require.NoError(t, err)
	return out
}

func (f *fixture) order(t *testing.T, status entity.OrderStatus) *entity.Order {
	t.Helper()
	now := time.Now()
	o := &entity.Order{
		ID: uuid.NewString(), OrderNumber: entity.NewDocumentNumber(entity.PrefixOrder, now),
		CustomerID: f.customer.ID, Status: status, OrderDate: now, CreatedAt: now, UpdatedAt: now,
		Items: []entity.OrderItem{{ID: uuid.NewString(), ProductID: f.product.ID, Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(15)}},
	}
	o.Recalculate()
	require.NoError(t, f.store.Orders.Create(f.ctx, o))
	return o
}

// ─────────────────────────────────────────────────────────────────────────────
// Facturas
// ─────────────────────────────────────────────────────────────────────────────

func TestInvoice_CreateManualCalculaTotales(t *testing.T) {
	f := newFixture(t)
	inv := f.manualInvoice(t)

	assert.Equal(t, "DRAFT", inv.Status)
	assert.Regexp(t, `^INV-\d{8}-`, inv.InvoiceNumber)
	require.Len(t, inv.Items, 2)
	assert.Equal(t, "Dril 160cm", inv.Items[0].Description)
	assert.True(t, inv.Items[0].UnitPrice.Equal(decimal.NewFromInt(12)), "precio desde el producto")
	assert.True(t, inv.Items[0].TaxRate.Equal(decimal.RequireFromString("0.19")), "19 se normaliza a 0.19")
	assert.True(t, inv.Subtotal.Equal(decimal.NewFromInt(150)), inv.Subtotal.String())
	assert.True(t, inv.TaxTotal.Equal(decimal.RequireFromString("22.8")), inv.TaxTotal.String())
	assert.True(t, inv.Total.Equal(decimal.RequireFromString("172.8")), inv.Total.String())
	assert.ElementsMatch(t, []string{"ISSUED", "CANCELLED"}, inv.NextStatus)
}

func TestInvoice_CreateValidaciones(t *testing.T) {
	f := newFixture(t)
	cases := map[string]dto.CreateInvoiceRequest{
		"sin items ni pedido": {CustomerID: f.customer.ID},
		"cantidad cero":       {CustomerID: f.customer.ID, Items: []dto.InvoiceItemRequest{{ProductID: f.product.ID}}},
		"línea libre sin precio": {CustomerID: f.customer.ID, Items: []dto.InvoiceItemRequest{
			{Description: "Servicio", Quantity: decimal.NewFromInt(1)},
		}},
		"cliente inexistente": {CustomerID: uuid.NewString(), Items: []dto.InvoiceItemRequest{
			{ProductID: f.product.ID, Quantity: decimal.NewFromInt(1)},
		}},
		"tasa negativa": {CustomerID: f.customer.ID, Items: []dto.InvoiceItemRequest{
			{ProductID: f.product.ID, Quantity: decimal.NewFromInt(1), TaxRate: decimal.NewFromInt(-1)},
		}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.invoices.Create(f.ctx, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestInvoice_CreateDesdePedido(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, entity.OrderStatusShipped)

	inv, err := f.invoices.Create(f.ctx, dto.CreateInvoiceRequest{OrderID: o.ID, TaxRate: decimal.RequireFromString("0.05")})
	require.NoError(t, err)
	assert.Equal(t, o.ID, inv.OrderID)
	assert.Equal(t, f.customer.ID, inv.CustomerID)
	require.Len(t, inv.Items, 1)
	assert.True(t, inv.Subtotal.Equal(decimal.NewFromInt(60)))
	assert.True(t, inv.TaxTotal.Equal(decimal.NewFromInt(3)))

	draft := f.order(t, entity.OrderStatusDraft)
	_, err = f.invoices.Create(f.ctx, dto.CreateInvoiceRequest{OrderID: draft.ID})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestInvoice_PedidoSeFacturaUnaSolaVez(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, entity.OrderStatusConfirmed)

	first, err := f.invoices.Create(f.ctx, dto.CreateInvoiceRequest{OrderID: o.ID})
	require.NoError(t, err)
	_, err = f.invoices.Transition(f.ctx, first.ID, dto.TransitionRequest{Status: "ISSUED"})
	require.NoError(t, err)

	_, err = f.invoices.Create(f.ctx, dto.CreateInvoiceRequest{OrderID: o.ID})
	assert.ErrorIs(t, err, domain.ErrConflict)

	revenue, err := f.store.Invoices.Revenue(f.ctx, repository.Period{
		From: time.Now().Add(-time.Hour), To: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.True(t, revenue.Equal(o.TotalAmount), revenue.String())

	// anulada la primera, el pedido se puede volver a facturar
	_, err = f.invoices.Transition(f.ctx, first.ID, dto.TransitionRequest{Status: "CANCELLED"})
	require.NoError(t, err)
	again, err := f.invoices.Create(f.ctx, dto.CreateInvoiceRequest{OrderID: o.ID})
	require.NoError(t, err)
	assert.Equal(t, o.ID, again.OrderID)
}

func TestInvoice_TasaDesdeUnoEsPorcentaje(t *testing.T) {
	f := newFixture(t)
	price := decimal.NewFromInt(100)
	cases := map[string]struct{ in, want string }{
		"fracción":      {"0.19", "0.19"},
		"uno es 1 %":    {"1", "0.01"},
		"porcentaje":    {"19", "0.19"},
		"cien es 100 %": {"100", "1"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			inv, err := f.invoices.Create(f.ctx, dto.CreateInvoiceRequest{
				CustomerID: f.customer.ID,
				Items: []dto.InvoiceItemRequest{{
					Description: "Servicio", Quantity: decimal.NewFromInt(1), UnitPrice: &price,
					TaxRate: decimal.RequireFromString(c.in),
				}},
			})
			require.NoError(t, err)
			assert.True(t, inv.Items[0].TaxRate.Equal(decimal.RequireFromString(c.want)), inv.Items[0].TaxRate.String())
		})
	}

	_, err := f.invoices.Create(f.ctx, dto.CreateInvoiceRequest{
		CustomerID: f.customer.ID,
		Items: []dto.InvoiceItemRequest{{
			Description: "Servicio", Quantity: decimal.NewFromInt(1), UnitPrice: &price, TaxRate: decimal.NewFromInt(101),
		}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInvoice_TransicionPagadaEventoYCache(t *testing.T) {
	f := newFixture(t)
	inv := f.manualInvoice(t)

	_, err := f.invoices.Transition(f.ctx, inv.ID, dto.TransitionRequest{Status: "ISSUED"})
	require.NoError(t, err)
	paid, err := f.invoices.Transition(f.ctx, inv.ID, dto.TransitionRequest{Status: "PAID"})
	require.NoError(t, err)
	assert.Equal(t, "PAID", paid.Status)
	assert.NotNil(t, paid.PaidAt)
	assert.Empty(t, paid.NextStatus)

	require.Len(t, f.events.events, 2)
	assert.Equal(t, ports.EventInvoiceStatusChanged, f.events.events[1].Type)
	assert.Equal(t, "ISSUED", f.events.events[1].From)
	assert.Equal(t, f.companyID, f.events.events[1].CompanyID)
	assert.Equal(t, []string{ports.TenantCachePrefix(f.companyID), ports.TenantCachePrefix(f.companyID)}, f.cache.deleted)

	// mismo estado: sin evento ni invalidación
	_, err = f.invoices.Transition(f.ctx, inv.ID, dto.TransitionRequest{Status: "PAID"})
	require.NoError(t, err)
	assert.Len(t, f.events.events, 2)
	assert.Len(t, f.cache.deleted, 2)

	_, err = f.invoices.Transition(f.ctx, inv.ID, dto.TransitionRequest{Status: "CANCELLED"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestInvoice_DeOtroTenant(t *testing.T) {
	f := newFixture(t)
	inv := f.manualInvoice(t)
	other := tenant.New(context.Background(), uuid.NewString(), uuid.NewString(), entity.RoleAdmin)

	_, err := f.invoices.GetByID(other, inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.invoices.Transition(other, inv.ID, dto.TransitionRequest{Status: "ISSUED"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvoice_PDFResuelveNombres(t *testing.T) {
	f := newFixture(t)
	inv := f.manualInvoice(t)

	pdf, name, err := f.invoices.PDF(f.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-invoice"), pdf)
	assert.Equal(t, inv.InvoiceNumber+".pdf", name)
	require.Len(t, f.pdf.got.Lines, 2)
	assert.Equal(t, "Dril 160cm", f.pdf.got.Lines[0].ProductName)
	assert.Equal(t, "Flete", f.pdf.got.Lines[1].ProductName)
	assert.Equal(t, "Confecciones Andina", f.pdf.got.Customer.Name)
	assert.Equal(t, "Tejidos Boyacá", f.pdf.got.Company.Name)
}

func TestInvoice_ListFiltraPorEstado(t *testing.T) {
	f := newFixture(t)
	a := f.manualInvoice(t)
	f.manualInvoice(t)
	_, err := f.invoices.Transition(f.ctx, a.ID, dto.TransitionRequest{Status: "ISSUED"})
	require.NoError(t, err)

	out, err := f.invoices.List(f.ctx, dto.InvoiceFilterRequest{Status: "ISSUED"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, a.ID, out.Items[0].ID)
	assert.Equal(t, 1, out.Page.Total)
	assert.Equal(t, 20, out.Page.Limit)

	_, err = f.invoices.List(f.ctx, dto.InvoiceFilterRequest{Status: "SENT"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─────────────────────────────────────────────────────────────────────────────
// Cuentas por pagar
// ─────────────────────────────────────────────────────────────────────────────

func (f *fixture) bill(t *testing.T, number string) *dto.BillResponse {
	t.Helper()
	out, err := f.bills.Create(f.ctx, dto.CreateBillRequest{
		BillNumber: number, VendorName: "Hilos SAS", Category: entity.BillRawMaterial,
		IssueDate: time.Now(), Subtotal: decimal.NewFromInt(1000), TaxTotal: decimal.NewFromInt(190),
	})
	require.NoError(t, err)
	return out
}

func TestBill_CreateYDuplicado(t *testing.T) {
	f := newFixture(t)
	b := f.bill(t, "FP-100")
	assert.Equal(t, "DRAFT", b.Status)
	assert.True(t, b.Total.Equal(decimal.NewFromInt(1190)))

	_, err := f.bills.Create(f.ctx, dto.CreateBillRequest{
		BillNumber: "FP-100", VendorName: "Otro", Category: entity.BillOther, IssueDate: time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.bills.Create(f.ctx, dto.CreateBillRequest{
		BillNumber: "FP-101", VendorName: "Otro", Category: "viajes", IssueDate: time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBill_UpdateSoloEnDraft(t *testing.T) {
	f := newFixture(t)
	b := f.bill(t, "FP-200")

	sub := decimal.NewFromInt(500)
	cat := entity.BillUtilities
	up, err := f.bills.Update(f.ctx, b.ID, dto.UpdateBillRequest{Subtotal: &sub, Category: &cat})
	require.NoError(t, err)
	assert.True(t, up.Total.Equal(decimal.NewFromInt(690)))
	assert.Equal(t, entity.BillUtilities, up.Category)
	assert.Equal(t, "FP-200", up.BillNumber)

	_, err = f.bills.Transition(f.ctx, b.ID, dto.TransitionRequest{Status: "APPROVED"})
	require.NoError(t, err)
	_, err = f.bills.Update(f.ctx, b.ID, dto.UpdateBillRequest{Subtotal: &sub})
	assert.ErrorIs(t, err, domain.ErrNotEditable)
}

func TestBill_FlujoYGastosPorCategoria(t *testing.T) {
	f := newFixture(t)
	a := f.bill(t, "FP-300")
	f.bill(t, "FP-301")

	for _, s := range []string{"APPROVED", "PAID"} {
		_, err := f.bills.Transition(f.ctx, a.ID, dto.TransitionRequest{Status: s})
		require.NoError(t, err)
	}
	got, err := f.bills.GetByID(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "PAID", got.Status)
	assert.NotNil(t, got.PaidAt)
	assert.Len(t, f.cache.deleted, 2)

	lines, err := f.store.Bills.ExpensesByCategory(f.ctx, repository.Period{})
	require.NoError(t, err)
	require.Len(t, lines, 1, "solo la cuenta pagada cuenta como gasto")
	assert.True(t, lines[0].Amount.Equal(decimal.NewFromInt(1000)))

	_, err = f.bills.Transition(f.ctx, a.ID, dto.TransitionRequest{Status: "DRAFT"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	list, err := f.bills.List(f.ctx, dto.BillFilterRequest{Category: entity.BillRawMaterial})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Page.Total)
}
