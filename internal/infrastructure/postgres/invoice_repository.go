package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, company_id, invoice_number, customer_id, order_id, issue_date, due_date, subtotal, tax_total, total, status, paid_at, created_at, updated_at`

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var orderID *string
	err := row.Scan(&inv.ID, &inv.CompanyID, &inv.InvoiceNumber, &inv.CustomerID, &orderID, &inv.IssueDate, &inv.DueDate,
		&inv.Subtotal, &inv.TaxTotal, &inv.Total, &inv.Status, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt)
	inv.OrderID = derefStr(orderID)
	return &inv, err
}

// Create persiste cabecera e ítems. Un cliente fuera del tenant devuelve ErrNotFound.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	inv.CompanyID = companyID
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		WHERE EXISTS (SELECT 1 FROM customers WHERE company_id = $2 AND id = $4)`
	tag, err := r.q.Exec(ctx, query,
		inv.ID, inv.CompanyID, inv.InvoiceNumber, inv.CustomerID, nullIfEmpty(inv.OrderID), inv.IssueDate, inv.DueDate,
		inv.Subtotal, inv.TaxTotal, inv.Total, inv.Status, inv.PaidAt, inv.CreatedAt, inv.UpdatedAt,
	)
	if violatedConstraint(err) == "uq_invoices_active_order" {
		return fmt.Errorf("%w: el pedido ya tiene una factura activa", domain.ErrConflict)
	}
	if err := affected("insert invoice", tag, err); err != nil {
		return err
	}
	for i := range inv.Items {
		it := &inv.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.CompanyID, it.InvoiceID = inv.CompanyID, inv.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO invoice_items (id, company_id, invoice_id, product_id, description, quantity, unit_price, tax_rate, subtotal, tax_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			it.ID, it.CompanyID, it.InvoiceID, nullIfEmpty(it.ProductID), it.Description,
			it.Quantity, it.UnitPrice, it.TaxRate, it.Subtotal, it.TaxAmount)
		if err != nil {
			return mapErr("insert invoice item", err)
		}
	}
	return nil
}

// GetByID devuelve la factura con sus ítems.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate bloquea la cabecera hasta el fin de la transacción.
func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *InvoiceRepo) get(ctx context.Context, id, lock string) (*entity.Invoice, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, err
	}
	w.add("id = ?", id)
	inv, err := scanInvoice(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE `+w.sql()+lock, w.args...))
	if inv, err = notFound("get invoice", inv, err); err != nil || inv == nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, invoice_id, product_id, description, quantity, unit_price, tax_rate, subtotal, tax_amount
		FROM invoice_items WHERE company_id = $1 AND invoice_id = $2 ORDER BY id`, inv.CompanyID, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("get invoice items: %w", err)
	}
	items, err := collect("get invoice items", rows, func(row pgx.Row) (*entity.InvoiceItem, error) {
		var it entity.InvoiceItem
		var productID *string
		err := row.Scan(&it.ID, &it.CompanyID, &it.InvoiceID, &productID, &it.Description,
			&it.Quantity, &it.UnitPrice, &it.TaxRate, &it.Subtotal, &it.TaxAmount)
		it.ProductID = derefStr(productID)
		return &it, err
	})
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		inv.Items = append(inv.Items, *it)
	}
	return inv, nil
}

// UpdateStatus cambia estado y fecha de pago.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, inv *entity.Invoice) error {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return err
	}
	w.add("id = ?", inv.ID)
	query := `UPDATE invoices SET status = ` + w.arg(inv.Status) + `, paid_at = ` + w.arg(inv.PaidAt) +
		`, updated_at = ` + w.arg(inv.UpdatedAt) + ` WHERE ` + w.sql()
	tag, err := r.q.Exec(ctx, query, w.args...)
	return affected("update invoice status", tag, err)
}

// List devuelve cabeceras sin ítems, más recientes primero.
func (r *InvoiceRepo) HasActiveForOrder(ctx context.Context, orderID string) (bool, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	err = r.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM invoices WHERE company_id = $1 AND order_id = $2 AND status <> $3)`,
		companyID, orderID, entity.InvoiceCancelled).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("active invoice for order: %w", err)
	}
	return exists, nil
}

func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, 0, err
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.CustomerID != "" {
		w.add("customer_id = ?", f.CustomerID)
	}
	w.period("issue_date", f.Period)
	total, err := w.count(ctx, r.q, "invoices")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Page)
	rows, err := r.q.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE `+w.sql()+` ORDER BY created_at DESC, id`+suffix, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	out, err := collect("list invoices", rows, scanInvoice)
	return out, total, err
}

// Revenue suma subtotales de facturas ISSUED o PAID emitidas en el periodo.
func (r *InvoiceRepo) Revenue(ctx context.Context, p repository.Period) (decimal.Decimal, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return decimal.Zero, err
	}
	w.add("status = ANY(?)", []string{string(entity.InvoiceIssued), string(entity.InvoicePaid)})
	w.period("issue_date", p)
	total := decimal.Zero
	if err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(subtotal), 0) FROM invoices WHERE `+w.sql(), w.args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("revenue: %w", err)
	}
	return total, nil
}
