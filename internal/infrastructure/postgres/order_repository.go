package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo pedidos con ítems e historial (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, company_id, order_number, customer_id, location_id, status, order_date, due_date, notes, total_amount, created_by, created_at, updated_at`

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	var locationID, createdBy *string
	err := row.Scan(&o.ID, &o.CompanyID, &o.OrderNumber, &o.CustomerID, &locationID, &o.Status, &o.OrderDate,
		&o.DueDate, &o.Notes, &o.TotalAmount, &createdBy, &o.CreatedAt, &o.UpdatedAt)
	o.LocationID, o.CreatedBy = derefStr(locationID), derefStr(createdBy)
	return &o, err
}

// Create inserta cabecera e ítems.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	o.CompanyID = companyID
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.q.Exec(ctx, query,
		o.ID, o.CompanyID, o.OrderNumber, o.CustomerID, nullIfEmpty(o.LocationID), o.Status, o.OrderDate,
		o.DueDate, o.Notes, o.TotalAmount, nullIfEmpty(o.CreatedBy), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return mapErr("insert order", err)
	}
	return r.insertItems(ctx, o)
}

func (r *OrderRepo) insertItems(ctx context.Context, o *entity.Order) error {
	for i := range o.Items {
		it := &o.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.CompanyID, it.OrderID = o.CompanyID, o.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO order_items (id, company_id, order_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, it.CompanyID, it.OrderID, it.ProductID, it.Quantity, it.UnitPrice, it.Subtotal)
		if err != nil {
			return mapErr("insert order item", err)
		}
	}
	return nil
}

// GetByID devuelve el pedido con sus ítems.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate bloquea la cabecera hasta el fin de la transacción.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *OrderRepo) get(ctx context.Context, id, lock string) (*entity.Order, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, err
	}
	w.add("id = ?", id)
	o, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+w.sql()+lock, w.args...))
	if o, err = notFound("get order", o, err); err != nil || o == nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, order_id, product_id, quantity, unit_price, subtotal
		FROM order_items WHERE company_id = $1 AND order_id = $2 ORDER BY id`, o.CompanyID, o.ID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	items, err := collect("get order items", rows, func(row pgx.Row) (*entity.OrderItem, error) {
		var it entity.OrderItem
		err := row.Scan(&it.ID, &it.CompanyID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal)
		return &it, err
	})
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		o.Items = append(o.Items, *it)
	}
	return o, nil
}

// Update actualiza la cabecera y reemplaza los ítems de un pedido en DRAFT; con otro estado devuelve ErrNotEditable.
func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return err
	}
	o.CompanyID = w.args[0].(string)
	w.add("id = ?", o.ID)
	w.add("status = ?", entity.OrderStatusDraft)
	query := `UPDATE orders SET customer_id = ` + w.arg(o.CustomerID) +
		`, location_id = ` + w.arg(nullIfEmpty(o.LocationID)) +
		`, order_date = ` + w.arg(o.OrderDate) +
		`, due_date = ` + w.arg(o.DueDate) +
		`, notes = ` + w.arg(o.Notes) +
		`, total_amount = ` + w.arg(o.TotalAmount) +
		`, updated_at = ` + w.arg(o.UpdatedAt) +
		` WHERE ` + w.sql()
	tag, err := r.q.Exec(ctx, query, w.args...)
	if err := affected("update order", tag, err); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotEditable
		}
		return err
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE company_id = $1 AND order_id = $2`, o.CompanyID, o.ID); err != nil {
		return mapErr("replace order items", err)
	}
	return r.insertItems(ctx, o)
}

// UpdateStatus cambia solo el estado.
func (r *OrderRepo) UpdateStatus(ctx context.Context, o *entity.Order) error {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return err
	}
	w.add("id = ?", o.ID)
	query := `UPDATE orders SET status = ` + w.arg(o.Status) + `, updated_at = ` + w.arg(o.UpdatedAt) + ` WHERE ` + w.sql()
	tag, err := r.q.Exec(ctx, query, w.args...)
	return affected("update order status", tag, err)
}

// Delete elimina el pedido (ítems e historial en cascada); facturado devuelve ErrConflict.
func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return err
	}
	w.add("id = ?", id)
	var invoiced bool
	err = r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE company_id = $1 AND order_id = $2)`, w.args...).Scan(&invoiced)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if invoiced {
		return domain.ErrConflict
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM orders WHERE `+w.sql(), w.args...)
	return affected("delete order", tag, err)
}

// List devuelve cabeceras sin ítems, más recientes primero.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
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
	total, err := w.count(ctx, r.q, "orders")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Page)
	rows, err := r.q.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+w.sql()+` ORDER BY created_at DESC, id`+suffix, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	out, err := collect("list orders", rows, scanOrder)
	return out, total, err
}

// CountByStatus cantidad de pedidos por estado.
func (r *OrderRepo) CountByStatus(ctx context.Context) (map[entity.OrderStatus]int, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return countByStatus[entity.OrderStatus](ctx, r.q, "orders", companyID)
}

// AddStatusChange registra una fila de historial.
func (r *OrderRepo) AddStatusChange(ctx context.Context, h *entity.OrderStatusChange) error {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	h.CompanyID = companyID
	tag, err := r.q.Exec(ctx, `
		INSERT INTO order_status_history (id, company_id, order_id, from_status, to_status, changed_by, note, changed_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE EXISTS (SELECT 1 FROM orders WHERE company_id = $2 AND id = $3)`,
		h.ID, h.CompanyID, h.OrderID, h.FromStatus, h.ToStatus, nullIfEmpty(h.ChangedBy), h.Note, h.ChangedAt)
	return affected("insert order status change", tag, err)
}

// ListStatusChanges historial en orden cronológico.
func (r *OrderRepo) ListStatusChanges(ctx context.Context, orderID string) ([]*entity.OrderStatusChange, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, order_id, from_status, to_status, changed_by, note, changed_at
		FROM order_status_history WHERE company_id = $1 AND order_id = $2
		ORDER BY changed_at, id`, companyID, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order status changes: %w", err)
	}
	return collect("list order status changes", rows, func(row pgx.Row) (*entity.OrderStatusChange, error) {
		var h entity.OrderStatusChange
		var changedBy *string
		err := row.Scan(&h.ID, &h.CompanyID, &h.OrderID, &h.FromStatus, &h.ToStatus, &changedBy, &h.Note, &h.ChangedAt)
		h.ChangedBy = derefStr(changedBy)
		return &h, err
	})
}
