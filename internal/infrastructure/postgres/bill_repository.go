package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

var _ repository.BillRepository = (*BillRepo)(nil)

// BillRepo cuentas por pagar; bill_number único por empresa.
type BillRepo struct {
	q Querier
}

// NewBillRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBillRepository(q Querier) *BillRepo {
	return &BillRepo{q: q}
}

const billColumns = `id, company_id, bill_number, vendor_name, category, issue_date, due_date, subtotal, tax_total, total, status, paid_at, notes, created_at, updated_at`

func scanBill(row pgx.Row) (*entity.Bill, error) {
	var b entity.Bill
	err := row.Scan(&b.ID, &b.CompanyID, &b.BillNumber, &b.VendorName, &b.Category, &b.IssueDate, &b.DueDate,
		&b.Subtotal, &b.TaxTotal, &b.Total, &b.Status, &b.PaidAt, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *BillRepo) Create(ctx context.Context, b *entity.Bill) error {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	b.CompanyID = companyID
	query := `
		INSERT INTO bills (` + billColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err = r.q.Exec(ctx, query,
		b.ID, b.CompanyID, b.BillNumber, b.VendorName, b.Category, b.IssueDate, b.DueDate,
		b.Subtotal, b.TaxTotal, b.Total, b.Status, b.PaidAt, b.Notes, b.CreatedAt, b.UpdatedAt,
	)
	return mapErr("insert bill", err)
}

func (r *BillRepo) GetByID(ctx context.Context, id string) (*entity.Bill, error) {
	return r.get(ctx, id, "")
}

func (r *BillRepo) GetForUpdate(ctx context.Context, id string) (*entity.Bill, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *BillRepo) get(ctx context.Context, id, lock string) (*entity.Bill, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, err
	}
	w.add("id = ?", id)
	b, err := scanBill(r.q.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE `+w.sql()+lock, w.args...))
	return notFound("get bill", b, err)
}

// Update no modifica bill_number.
func (r *BillRepo) Update(ctx context.Context, b *entity.Bill) error {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return err
	}
	w.add("id = ?", b.ID)
	query := `UPDATE bills SET vendor_name = ` + w.arg(b.VendorName) +
		`, category = ` + w.arg(b.Category) +
		`, issue_date = ` + w.arg(b.IssueDate) +
		`, due_date = ` + w.arg(b.DueDate) +
		`, subtotal = ` + w.arg(b.Subtotal) +
		`, tax_total = ` + w.arg(b.TaxTotal) +
		`, total = ` + w.arg(b.Total) +
		`, status = ` + w.arg(b.Status) +
		`, paid_at = ` + w.arg(b.PaidAt) +
		`, notes = ` + w.arg(b.Notes) +
		`, updated_at = ` + w.arg(b.UpdatedAt) +
		` WHERE ` + w.sql()
	tag, err := r.q.Exec(ctx, query, w.args...)
	return affected("update bill", tag, err)
}

func (r *BillRepo) List(ctx context.Context, f repository.BillFilter) ([]*entity.Bill, int, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, 0, err
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Category != "" {
		w.add("category = ?", f.Category)
	}
	w.period("issue_date", f.Period)
	total, err := w.count(ctx, r.q, "bills")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Page)
	rows, err := r.q.Query(ctx, `SELECT `+billColumns+` FROM bills WHERE `+w.sql()+` ORDER BY created_at DESC, id`+suffix, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bills: %w", err)
	}
	out, err := collect("list bills", rows, scanBill)
	return out, total, err
}

// ExpensesByCategory suma subtotales de cuentas APPROVED o PAID emitidas en el periodo.
func (r *BillRepo) ExpensesByCategory(ctx context.Context, p repository.Period) ([]*entity.ExpenseLine, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, err
	}
	w.add("status = ANY(?)", []string{string(entity.BillApproved), string(entity.BillPaid)})
	w.period("issue_date", p)
	rows, err := r.q.Query(ctx, `
		SELECT category, SUM(subtotal) FROM bills WHERE `+w.sql()+`
		GROUP BY category ORDER BY category`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("expenses by category: %w", err)
	}
	return collect("expenses by category", rows, func(row pgx.Row) (*entity.ExpenseLine, error) {
		var e entity.ExpenseLine
		err := row.Scan(&e.Category, &e.Amount)
		return &e, err
	})
}
