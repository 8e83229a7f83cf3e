package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/domain/entity"
)

// InvoiceFilter filtros de facturas (el periodo aplica sobre issue_date).
type InvoiceFilter struct {
	Page
	Period
	Status     entity.InvoiceStatus
	CustomerID string
}

// InvoiceRepository define el puerto de persistencia para Invoice e InvoiceItem.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error)
	UpdateStatus(ctx context.Context, inv *entity.Invoice) error
	// HasActiveForOrder indica si el pedido ya tiene una factura no anulada.
	HasActiveForOrder(ctx context.Context, orderID string) (bool, error)
	List(ctx context.Context, f InvoiceFilter) ([]*entity.Invoice, int, error)
	// Revenue suma subtotales de facturas ISSUED o PAID emitidas en el periodo.
	Revenue(ctx context.Context, p Period) (decimal.Decimal, error)
}

// BillFilter filtros de cuentas por pagar (el periodo aplica sobre issue_date).
type BillFilter struct {
	Page
	Period
	Status   entity.BillStatus
	Category string
}

// BillRepository define el puerto de persistencia para Bill.
type BillRepository interface {
	Create(ctx context.Context, b *entity.Bill) error
	GetByID(ctx context.Context, id string) (*entity.Bill, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Bill, error)
	Update(ctx context.Context, b *entity.Bill) error
	List(ctx context.Context, f BillFilter) ([]*entity.Bill, int, error)
	// ExpensesByCategory suma subtotales de cuentas APPROVED o PAID por categoría.
	ExpensesByCategory(ctx context.Context, p Period) ([]*entity.ExpenseLine, error)
}
