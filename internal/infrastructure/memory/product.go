package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
)

var (
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.LocationRepository = (*LocationRepo)(nil)
	_ repository.CustomerRepository = (*CustomerRepo)(nil)
)

// ProductRepo productos; SKU único por empresa.
type ProductRepo struct{ db *DB }

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		if st.products.exists(companyID, func(o *entity.Product) bool { return o.SKU == p.SKU }) {
			return domain.ErrDuplicate
		}
		p.CompanyID = companyID
		st.products.put(p.ID, *p)
		return nil
	})
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (out *entity.Product, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		out, _ = st.products.get(companyID, id)
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (out *entity.Product, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		if found := st.products.find(companyID, func(p *entity.Product) bool { return p.SKU == sku }); len(found) > 0 {
			out = found[0]
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		prev, ok := st.products.get(companyID, p.ID)
		if !ok {
			return domain.ErrNotFound
		}
		// SKU y costo no cambian por Update
		p.CompanyID, p.SKU, p.Cost, p.CreatedAt = companyID, prev.SKU, prev.Cost, prev.CreatedAt
		st.products.put(p.ID, *p)
		return nil
	})
}

func (r *ProductRepo) UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		p, ok := st.products.get(companyID, productID)
		if !ok {
			return domain.ErrNotFound
		}
		p.Cost = cost
		p.UpdatedAt = time.Now()
		st.products.put(p.ID, *p)
		return nil
	})
}

func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) (out []*entity.Product, total int, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		all := st.products.find(companyID, func(p *entity.Product) bool {
			if f.Category != "" && p.Category != f.Category {
				return false
			}
			return f.Search == "" || containsFold(p.Name, f.Search) || containsFold(p.SKU, f.Search)
		})
		out, total = paginate(all, f.Page)
		return nil
	})
	return out, total, err
}

// Delete rechaza con ErrConflict productos con stock, movimientos o pedidos (equivalente a la FK).
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		if _, ok := st.products.get(companyID, id); !ok {
			return domain.ErrNotFound
		}
		if st.movements.exists(companyID, func(m *entity.StockMovement) bool { return m.ProductID == id }) ||
			st.orders.exists(companyID, func(o *entity.Order) bool {
				for _, it := range o.Items {
					if it.ProductID == id {
						return true
					}
				}
				return false
			}) {
			return domain.ErrConflict
		}
		st.products.delete(id)
		return nil
	})
}

// LocationRepo ubicaciones.
type LocationRepo struct{ db *DB }

func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		l.CompanyID = companyID
		st.locations.put(l.ID, *l)
		return nil
	})
}

func (r *LocationRepo) GetByID(ctx context.Context, id string) (out *entity.Location, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		out, _ = st.locations.get(companyID, id)
		return nil
	})
	return out, err
}

func (r *LocationRepo) Update(ctx context.Context, l *entity.Location) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		prev, ok := st.locations.get(companyID, l.ID)
		if !ok {
			return domain.ErrNotFound
		}
		l.CompanyID, l.CreatedAt = companyID, prev.CreatedAt
		st.locations.put(l.ID, *l)
		return nil
	})
}

func (r *LocationRepo) List(ctx context.Context, p repository.Page) (out []*entity.Location, total int, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		out, total = paginate(st.locations.find(companyID, nil), p)
		return nil
	})
	return out, total, err
}

func (r *LocationRepo) Delete(ctx context.Context, id string) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		if _, ok := st.locations.get(companyID, id); !ok {
			return domain.ErrNotFound
		}
		if st.movements.exists(companyID, func(m *entity.StockMovement) bool { return m.LocationID == id }) {
			return domain.ErrConflict
		}
		for _, s := range st.stock.find(companyID, func(s *entity.LocationInventory) bool { return s.LocationID == id }) {
			st.stock.delete(stockKey(s.ProductID, s.LocationID))
		}
		st.locations.delete(id)
		return nil
	})
}

// CustomerRepo clientes; tax_id único por empresa cuando se informa.
type CustomerRepo struct{ db *DB }

func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		if c.TaxID != "" && st.customers.exists(companyID, func(o *entity.Customer) bool { return o.TaxID == c.TaxID }) {
			return domain.ErrDuplicate
		}
		c.CompanyID = companyID
		st.customers.put(c.ID, *c)
		return nil
	})
}

func (r *CustomerRepo) GetByID(ctx context.Context, id string) (out *entity.Customer, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		out, _ = st.customers.get(companyID, id)
		return nil
	})
	return out, err
}

func (r *CustomerRepo) GetByTaxID(ctx context.Context, taxID string) (out *entity.Customer, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		if found := st.customers.find(companyID, func(c *entity.Customer) bool { return c.TaxID == taxID }); len(found) > 0 {
			out = found[0]
		}
		return nil
	})
	return out, err
}

func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		prev, ok := st.customers.get(companyID, c.ID)
		if !ok {
			return domain.ErrNotFound
		}
		c.CompanyID, c.TaxID, c.CreatedAt = companyID, prev.TaxID, prev.CreatedAt
		st.customers.put(c.ID, *c)
		return nil
	})
}

func (r *CustomerRepo) List(ctx context.Context, f repository.CustomerFilter) (out []*entity.Customer, total int, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		all := st.customers.find(companyID, func(c *entity.Customer) bool {
			return f.Search == "" || containsFold(c.Name, f.Search) || containsFold(c.TaxID, f.Search)
		})
		out, total = paginate(all, f.Page)
		return nil
	})
	return out, total, err
}
