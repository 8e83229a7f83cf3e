package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo kardex sobre PostgreSQL (usable con pool o tx). Solo inserción.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, company_id, transaction_id, product_id, location_id, type, quantity, unit_cost, total_cost, reference, notes, created_by, created_at`

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var txID, createdBy *string
	err := row.Scan(&m.ID, &m.CompanyID, &txID, &m.ProductID, &m.LocationID, &m.Type, &m.Quantity,
		&m.UnitCost, &m.TotalCost, &m.Reference, &m.Notes, &createdBy, &m.CreatedAt)
	m.TransactionID, m.CreatedBy = derefStr(txID), derefStr(createdBy)
	return &m, err
}

// Create persiste un movimiento de inventario.
func (r *MovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CompanyID = companyID
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.q.Exec(ctx, query,
		m.ID, m.CompanyID, nullIfEmpty(m.TransactionID), m.ProductID, m.LocationID, m.Type,
		m.Quantity, m.UnitCost, m.TotalCost, m.Reference, m.Notes, nullIfEmpty(m.CreatedBy), m.CreatedAt,
	)
	return mapErr("create stock movement", err)
}

// List kardex filtrado por producto, ubicación, tipo y periodo; más recientes primero.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, 0, err
	}
	if f.ProductID != "" {
		w.add("product_id = ?", f.ProductID)
	}
	if f.LocationID != "" {
		w.add("location_id = ?", f.LocationID)
	}
	if f.Type != "" {
		w.add("type = ?", f.Type)
	}
	w.period("created_at", f.Period)
	total, err := w.count(ctx, r.q, "stock_movements")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Page)
	rows, err := r.q.Query(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE `+w.sql()+` ORDER BY created_at DESC, id`+suffix, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock movements: %w", err)
	}
	out, err := collect("list stock movements", rows, scanMovement)
	return out, total, err
}

// OutboundCost suma el costo absoluto de las salidas OUT del periodo.
func (r *MovementRepo) OutboundCost(ctx context.Context, p repository.Period) (decimal.Decimal, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return decimal.Zero, err
	}
	w.add("type = ?", entity.MovementOUT)
	w.period("created_at", p)
	total := decimal.Zero
	if err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(ABS(total_cost)), 0) FROM stock_movements WHERE `+w.sql(), w.args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("outbound cost: %w", err)
	}
	return total, nil
}
