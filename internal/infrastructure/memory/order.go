package memory

import (
	"context"
	"slices"

	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo pedidos con ítems e historial; order_number único por empresa.
type OrderRepo struct{ db *DB }

func stampItems(o *entity.Order, companyID string) {
	for i := range o.Items {
		o.Items[i].CompanyID = companyID
		o.Items[i].OrderID = o.ID
	}
}

func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		if st.orders.exists(companyID, func(x *entity.Order) bool { return x.OrderNumber == o.OrderNumber }) {
			return domain.ErrDuplicate
		}
		o.CompanyID = companyID
		stampItems(o, companyID)
		st.orders.put(o.ID, cloneOrder(o))
		return nil
	})
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (out *entity.Order, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		if o, ok := st.orders.get(companyID, id); ok {
			c := cloneOrder(o)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *OrderRepo) Update(ctx context.Context, o *entity.Order) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		prev, ok := st.orders.get(companyID, o.ID)
		if !ok {
			return domain.ErrNotFound
		}
		if !prev.Status.Editable() {
			return domain.ErrNotEditable
		}
		o.CompanyID, o.OrderNumber, o.CreatedAt, o.CreatedBy = companyID, prev.OrderNumber, prev.CreatedAt, prev.CreatedBy
		o.Status = prev.Status
		stampItems(o, companyID)
		st.orders.put(o.ID, cloneOrder(o))
		return nil
	})
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, o *entity.Order) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		prev, ok := st.orders.get(companyID, o.ID)
		if !ok {
			return domain.ErrNotFound
		}
		prev.Status = o.Status
		prev.UpdatedAt = o.UpdatedAt
		st.orders.put(prev.ID, *prev)
		return nil
	})
}

func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		if _, ok := st.orders.get(companyID, id); !ok {
			return domain.ErrNotFound
		}
		if st.invoices.exists(companyID, func(inv *entity.Invoice) bool { return inv.OrderID == id }) {
			return domain.ErrConflict
		}
		for _, h := range st.orderHistory.find(companyID, func(h *entity.OrderStatusChange) bool { return h.OrderID == id }) {
			st.orderHistory.delete(h.ID)
		}
		st.orders.delete(id)
		return nil
	})
}

// List devuelve cabeceras sin ítems.
func (r *OrderRepo) List(ctx context.Context, f repository.OrderFilter) (out []*entity.Order, total int, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		all := st.orders.find(companyID, func(o *entity.Order) bool {
			return (f.Status == "" || o.Status == f.Status) && (f.CustomerID == "" || o.CustomerID == f.CustomerID)
		})
		for _, o := range all {
			o.Items = nil
		}
		out, total = paginate(all, f.Page)
		return nil
	})
	return out, total, err
}

func (r *OrderRepo) CountByStatus(ctx context.Context) (out map[entity.OrderStatus]int, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		out = make(map[entity.OrderStatus]int)
		for _, o := range st.orders.find(companyID, nil) {
			out[o.Status]++
		}
		return nil
	})
	return out, err
}

func (r *OrderRepo) AddStatusChange(ctx context.Context, h *entity.OrderStatusChange) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		if _, ok := st.orders.get(companyID, h.OrderID); !ok {
			return domain.ErrNotFound
		}
		h.CompanyID = companyID
		st.orderHistory.put(h.ID, *h)
		return nil
	})
}

// ListStatusChanges en orden cronológico.
func (r *OrderRepo) ListStatusChanges(ctx context.Context, orderID string) (out []*entity.OrderStatusChange, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		out = st.orderHistory.find(companyID, func(h *entity.OrderStatusChange) bool { return h.OrderID == orderID })
		slices.Reverse(out)
		return nil
	})
	return out, err
}
