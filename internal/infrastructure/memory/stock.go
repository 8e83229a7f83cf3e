package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/inventory"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
)

var (
	_ repository.StockRepository         = (*StockRepo)(nil)
	_ repository.StockMovementRepository = (*MovementRepo)(nil)
)

func stockKey(productID, locationID string) string { return productID + "|" + locationID }

// StockRepo existencias por producto y ubicación.
type StockRepo struct{ db *DB }

func (r *StockRepo) Get(ctx context.Context, productID, locationID string) (out *entity.LocationInventory, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		var ok bool
		if out, ok = st.stock.get(companyID, stockKey(productID, locationID)); !ok {
			out = &entity.LocationInventory{CompanyID: companyID, ProductID: productID, LocationID: locationID, Quantity: decimal.Zero}
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a Get: las transacciones en memoria ya están serializadas.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, locationID string) (*entity.LocationInventory, error) {
	return r.Get(ctx, productID, locationID)
}

func (r *StockRepo) Upsert(ctx context.Context, s *entity.LocationInventory) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		s.CompanyID = companyID
		st.stock.put(stockKey(s.ProductID, s.LocationID), *s)
		return nil
	})
}

func (r *StockRepo) ListByLocation(ctx context.Context, locationID string) (out []*entity.LocationInventory, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		out = st.stock.find(companyID, func(s *entity.LocationInventory) bool { return s.LocationID == locationID })
		return nil
	})
	return out, err
}

func (r *StockRepo) ListByProduct(ctx context.Context, productID string) (out []*entity.LocationInventory, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		out = st.stock.find(companyID, func(s *entity.LocationInventory) bool { return s.ProductID == productID })
		return nil
	})
	return out, err
}

func (r *StockRepo) TotalByProduct(ctx context.Context, productID string) (out *entity.LocationInventory, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		out = &entity.LocationInventory{CompanyID: companyID, ProductID: productID, Quantity: decimal.Zero}
		for _, s := range st.stock.find(companyID, func(s *entity.LocationInventory) bool { return s.ProductID == productID }) {
			out.Quantity = out.Quantity.Add(s.Quantity)
			if s.UpdatedAt.After(out.UpdatedAt) {
				out.UpdatedAt = s.UpdatedAt
			}
		}
		return nil
	})
	return out, err
}

func (r *StockRepo) HasStock(ctx context.Context, locationID string) (has bool, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		has = st.stock.exists(companyID, func(s *entity.LocationInventory) bool {
			return s.LocationID == locationID && !s.Quantity.IsZero()
		})
		return nil
	})
	return has, err
}

// ListBelowReorderPoint con locationID vacío compara el stock total del producto.
func (r *StockRepo) ListBelowReorderPoint(ctx context.Context, locationID string) (out []*entity.ReplenishmentItem, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		for _, p := range st.products.find(companyID, func(p *entity.Product) bool { return p.ReorderPoint.IsPositive() }) {
			qty := decimal.Zero
			for _, s := range st.stock.find(companyID, func(s *entity.LocationInventory) bool {
				return s.ProductID == p.ID && (locationID == "" || s.LocationID == locationID)
			}) {
				qty = qty.Add(s.Quantity)
			}
			if qty.LessThan(p.ReorderPoint) {
				out = append(out, &entity.ReplenishmentItem{
					ProductID: p.ID, SKU: p.SKU, Name: p.Name, LocationID: locationID,
					CurrentStock: qty, ReorderPoint: p.ReorderPoint, UnitCost: p.Cost, Price: p.Price,
				})
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
		return nil
	})
	return out, err
}

func (r *StockRepo) Valuation(ctx context.Context) (out []*entity.ValuationRow, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		for _, s := range st.stock.find(companyID, func(s *entity.LocationInventory) bool { return !s.Quantity.IsZero() }) {
			p, ok := st.products.get(companyID, s.ProductID)
			if !ok {
				continue
			}
			loc, _ := st.locations.get(companyID, s.LocationID)
			row := &entity.ValuationRow{
				ProductID: p.ID, SKU: p.SKU, Name: p.Name, LocationID: s.LocationID,
				Quantity: s.Quantity, UnitCost: p.Cost, TotalValue: inventory.Value(s.Quantity, p.Cost),
			}
			if loc != nil {
				row.LocationName = loc.Name
			}
			out = append(out, row)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].SKU != out[j].SKU {
				return out[i].SKU < out[j].SKU
			}
			return out[i].LocationName < out[j].LocationName
		})
		return nil
	})
	return out, err
}

// MovementRepo kardex (solo inserción).
type MovementRepo struct{ db *DB }

func (r *MovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		m.CompanyID = companyID
		st.movements.put(m.ID, *m)
		return nil
	})
}

func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) (out []*entity.StockMovement, total int, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		all := st.movements.find(companyID, func(m *entity.StockMovement) bool {
			return (f.ProductID == "" || m.ProductID == f.ProductID) &&
				(f.LocationID == "" || m.LocationID == f.LocationID) &&
				(f.Type == "" || m.Type == f.Type) &&
				f.Period.Contains(m.CreatedAt)
		})
		out, total = paginate(all, f.Page)
		return nil
	})
	return out, total, err
}

func (r *MovementRepo) OutboundCost(ctx context.Context, p repository.Period) (total decimal.Decimal, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		total = decimal.Zero
		for _, m := range st.movements.find(companyID, func(m *entity.StockMovement) bool {
			return m.Type == entity.MovementOUT && p.Contains(m.CreatedAt)
		}) {
			total = total.Add(m.TotalCost.Abs())
		}
		return nil
	})
	return total, err
}
