package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
)

var (
	_ repository.InvoiceRepository = (*InvoiceRepo)(nil)
	_ repository.BillRepository    = (*BillRepo)(nil)
)

// InvoiceRepo facturas con ítems; invoice_number único por empresa.
type InvoiceRepo struct{ db *DB }

func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		if st.invoices.exists(companyID, func(x *entity.Invoice) bool { return x.InvoiceNumber == inv.InvoiceNumber }) {
			return domain.ErrDuplicate
		}
		if _, ok := st.customers.get(companyID, inv.CustomerID); !ok {
			return domain.ErrNotFound
		}
		if inv.OrderID != "" && st.invoices.exists(companyID, func(x *entity.Invoice) bool {
			return x.OrderID == inv.OrderID && x.Status != entity.InvoiceCancelled
		}) {
			return domain.ErrConflict
		}
		inv.CompanyID = companyID
		for i := range inv.Items {
			inv.Items[i].CompanyID = companyID
			inv.Items[i].InvoiceID = inv.ID
		}
		st.invoices.put(inv.ID, cloneInvoice(inv))
		return nil
	})
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (out *entity.Invoice, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		if inv, ok := st.invoices.get(companyID, id); ok {
			c := cloneInvoice(inv)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *InvoiceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r *InvoiceRepo) UpdateStatus(ctx context.Context, inv *entity.Invoice) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		prev, ok := st.invoices.get(companyID, inv.ID)
		if !ok {
			return domain.ErrNotFound
		}
		prev.Status, prev.PaidAt, prev.UpdatedAt = inv.Status, inv.PaidAt, inv.UpdatedAt
		st.invoices.put(prev.ID, *prev)
		return nil
	})
}

func (r *InvoiceRepo) HasActiveForOrder(ctx context.Context, orderID string) (found bool, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		found = st.invoices.exists(companyID, func(x *entity.Invoice) bool {
			return x.OrderID == orderID && x.Status != entity.InvoiceCancelled
		})
		return nil
	})
	return found, err
}

func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) (out []*entity.Invoice, total int, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		all := st.invoices.find(companyID, func(inv *entity.Invoice) bool {
			return (f.Status == "" || inv.Status == f.Status) &&
				(f.CustomerID == "" || inv.CustomerID == f.CustomerID) &&
				f.Period.Contains(inv.IssueDate)
		})
		for _, inv := range all {
			inv.Items = nil
		}
		out, total = paginate(all, f.Page)
		return nil
	})
	return out, total, err
}

func (r *InvoiceRepo) Revenue(ctx context.Context, p repository.Period) (total decimal.Decimal, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		total = decimal.Zero
		for _, inv := range st.invoices.find(companyID, func(inv *entity.Invoice) bool {
			return (inv.Status == entity.InvoiceIssued || inv.Status == entity.InvoicePaid) && p.Contains(inv.IssueDate)
		}) {
			total = total.Add(inv.Subtotal)
		}
		return nil
	})
	return total, err
}

// BillRepo cuentas por pagar; bill_number único por empresa.
type BillRepo struct{ db *DB }

func (r *BillRepo) Create(ctx context.Context, b *entity.Bill) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		if st.bills.exists(companyID, func(x *entity.Bill) bool { return x.BillNumber == b.BillNumber }) {
			return domain.ErrDuplicate
		}
		b.CompanyID = companyID
		st.bills.put(b.ID, *b)
		return nil
	})
}

func (r *BillRepo) GetByID(ctx context.Context, id string) (out *entity.Bill, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		out, _ = st.bills.get(companyID, id)
		return nil
	})
	return out, err
}

func (r *BillRepo) GetForUpdate(ctx context.Context, id string) (*entity.Bill, error) {
	return r.GetByID(ctx, id)
}

func (r *BillRepo) Update(ctx context.Context, b *entity.Bill) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		prev, ok := st.bills.get(companyID, b.ID)
		if !ok {
			return domain.ErrNotFound
		}
		b.CompanyID, b.BillNumber, b.CreatedAt = companyID, prev.BillNumber, prev.CreatedAt
		st.bills.put(b.ID, *b)
		return nil
	})
}

func (r *BillRepo) List(ctx context.Context, f repository.BillFilter) (out []*entity.Bill, total int, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		all := st.bills.find(companyID, func(b *entity.Bill) bool {
			return (f.Status == "" || b.Status == f.Status) &&
				(f.Category == "" || b.Category == f.Category) &&
				f.Period.Contains(b.IssueDate)
		})
		out, total = paginate(all, f.Page)
		return nil
	})
	return out, total, err
}

func (r *BillRepo) ExpensesByCategory(ctx context.Context, p repository.Period) (out []*entity.ExpenseLine, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		sums := map[string]decimal.Decimal{}
		for _, b := range st.bills.find(companyID, func(b *entity.Bill) bool {
			return (b.Status == entity.BillApproved || b.Status == entity.BillPaid) && p.Contains(b.IssueDate)
		}) {
			sums[b.Category] = sums[b.Category].Add(b.Subtotal)
		}
		for cat, amt := range sums {
			out = append(out, &entity.ExpenseLine{Category: cat, Amount: amt})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
		return nil
	})
	return out, err
}
