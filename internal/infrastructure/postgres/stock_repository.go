package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/inventory"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `company_id, product_id, location_id, quantity, updated_at`

func scanStock(row pgx.Row) (*entity.LocationInventory, error) {
	var s entity.LocationInventory
	err := row.Scan(&s.CompanyID, &s.ProductID, &s.LocationID, &s.Quantity, &s.UpdatedAt)
	return &s, err
}

// Get obtiene el stock actual de un producto en una ubicación (cero si no hay fila).
func (r *StockRepo) Get(ctx context.Context, productID, locationID string) (*entity.LocationInventory, error) {
	return r.get(ctx, productID, locationID, "")
}

// GetForUpdate obtiene el stock y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, locationID string) (*entity.LocationInventory, error) {
	return r.get(ctx, productID, locationID, " FOR UPDATE")
}

func (r *StockRepo) get(ctx context.Context, productID, locationID, lock string) (*entity.LocationInventory, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, err
	}
	w.add("product_id = ?", productID)
	w.add("location_id = ?", locationID)
	s, err := scanStock(r.q.QueryRow(ctx, `SELECT `+stockColumns+` FROM location_inventory WHERE `+w.sql()+lock, w.args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.LocationInventory{CompanyID: w.args[0].(string), ProductID: productID, LocationID: locationID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// Upsert inserta o actualiza la cantidad (por producto y ubicación).
func (r *StockRepo) Upsert(ctx context.Context, stock *entity.LocationInventory) error {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	stock.CompanyID = companyID
	query := `
		INSERT INTO location_inventory (company_id, product_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()
		WHERE location_inventory.company_id = EXCLUDED.company_id`
	_, err = r.q.Exec(ctx, query, stock.CompanyID, stock.ProductID, stock.LocationID, stock.Quantity)
	return mapErr("upsert stock", err)
}

// ListByLocation existencias de una ubicación.
func (r *StockRepo) ListByLocation(ctx context.Context, locationID string) ([]*entity.LocationInventory, error) {
	return r.listBy(ctx, "location_id", locationID)
}

// ListByProduct existencias de un producto en todas sus ubicaciones.
func (r *StockRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.LocationInventory, error) {
	return r.listBy(ctx, "product_id", productID)
}

func (r *StockRepo) listBy(ctx context.Context, column, value string) ([]*entity.LocationInventory, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, err
	}
	w.add(column+" = ?", value)
	rows, err := r.q.Query(ctx, `SELECT `+stockColumns+` FROM location_inventory WHERE `+w.sql()+` ORDER BY product_id, location_id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	return collect("list stock", rows, scanStock)
}

// TotalByProduct suma el stock del producto en todas las ubicaciones del tenant.
func (r *StockRepo) TotalByProduct(ctx context.Context, productID string) (*entity.LocationInventory, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, err
	}
	w.add("product_id = ?", productID)
	out := &entity.LocationInventory{CompanyID: w.args[0].(string), ProductID: productID}
	var updated *time.Time
	err = r.q.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0), MAX(updated_at) FROM location_inventory WHERE `+w.sql(), w.args...).
		Scan(&out.Quantity, &updated)
	if err != nil {
		return nil, fmt.Errorf("total stock: %w", err)
	}
	if updated != nil {
		out.UpdatedAt = *updated
	}
	return out, nil
}

// HasStock indica si la ubicación tiene alguna existencia distinta de cero.
func (r *StockRepo) HasStock(ctx context.Context, locationID string) (bool, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return false, err
	}
	w.add("location_id = ?", locationID)
	var has bool
	err = r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM location_inventory WHERE `+w.sql()+` AND quantity <> 0)`, w.args...).Scan(&has)
	if err != nil {
		return false, fmt.Errorf("has stock: %w", err)
	}
	return has, nil
}

// ListBelowReorderPoint productos con punto de reorden cuyo stock (de la ubicación o total) está por debajo.
func (r *StockRepo) ListBelowReorderPoint(ctx context.Context, locationID string) ([]*entity.ReplenishmentItem, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT p.id, p.sku, p.name, COALESCE(SUM(li.quantity), 0) AS qty, p.reorder_point, p.cost, p.price
		FROM products p
		LEFT JOIN location_inventory li
		  ON li.product_id = p.id AND li.company_id = p.company_id
		 AND ($2 = '' OR li.location_id::text = $2)
		WHERE p.company_id = $1 AND p.reorder_point > 0
		GROUP BY p.id, p.sku, p.name, p.reorder_point, p.cost, p.price
		HAVING COALESCE(SUM(li.quantity), 0) < p.reorder_point
		ORDER BY p.sku`
	rows, err := r.q.Query(ctx, query, companyID, locationID)
	if err != nil {
		return nil, fmt.Errorf("list below reorder point: %w", err)
	}
	return collect("list below reorder point", rows, func(row pgx.Row) (*entity.ReplenishmentItem, error) {
		it := entity.ReplenishmentItem{LocationID: locationID}
		err := row.Scan(&it.ProductID, &it.SKU, &it.Name, &it.CurrentStock, &it.ReorderPoint, &it.UnitCost, &it.Price)
		return &it, err
	})
}

// Valuation stock distinto de cero valorizado al costo promedio vigente.
func (r *StockRepo) Valuation(ctx context.Context) ([]*entity.ValuationRow, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT p.id, p.sku, p.name, li.location_id, l.name, li.quantity, p.cost
		FROM location_inventory li
		JOIN products p ON p.id = li.product_id
		JOIN locations l ON l.id = li.location_id
		WHERE li.company_id = $1 AND li.quantity <> 0
		ORDER BY p.sku, l.name`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("valuation: %w", err)
	}
	return collect("valuation", rows, func(row pgx.Row) (*entity.ValuationRow, error) {
		var v entity.ValuationRow
		if err := row.Scan(&v.ProductID, &v.SKU, &v.Name, &v.LocationID, &v.LocationName, &v.Quantity, &v.UnitCost); err != nil {
			return nil, err
		}
		v.TotalValue = inventory.Value(v.Quantity, v.UnitCost)
		return &v, nil
	})
}
