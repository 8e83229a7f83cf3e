package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, company_id, sku, name, description, category, unit, price, cost, reorder_point, attributes, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var attrs []byte
	err := row.Scan(&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Description, &p.Category, &p.Unit,
		&p.Price, &p.Cost, &p.ReorderPoint, &attrs, &p.CreatedAt, &p.UpdatedAt)
	if len(attrs) > 0 {
		p.Attributes = attrs
	}
	return &p, err
}

// Create persiste un nuevo producto. Cost inicia en 0.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	product.CompanyID = companyID
	var attrs []byte
	if len(product.Attributes) > 0 {
		attrs = product.Attributes
	}
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err = r.q.Exec(ctx, query,
		product.ID, product.CompanyID, product.SKU, product.Name, product.Description, product.Category,
		product.Unit, product.Price, product.Cost, product.ReorderPoint, attrs, product.CreatedAt, product.UpdatedAt,
	)
	return mapErr("insert product", err)
}

// GetByID obtiene un producto del tenant por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getBy(ctx, "id", id, "")
}

// GetForUpdate igual que GetByID con SELECT FOR UPDATE.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getBy(ctx, "id", id, " FOR UPDATE")
}

// GetBySKU obtiene un producto del tenant por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getBy(ctx, "sku", sku, "")
}

func (r *ProductRepo) getBy(ctx context.Context, column, value, lock string) (*entity.Product, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, err
	}
	w.add(column+" = ?", value)
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE `+w.sql()+lock, w.args...))
	return notFound("get product", p, err)
}

// Update actualiza un producto existente. No modifica Cost (se maneja vía movimientos).
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return err
	}
	w.add("id = ?", product.ID)
	var attrs []byte
	if len(product.Attributes) > 0 {
		attrs = product.Attributes
	}
	query := `UPDATE products SET name = ` + w.arg(product.Name) +
		`, description = ` + w.arg(product.Description) +
		`, category = ` + w.arg(product.Category) +
		`, unit = ` + w.arg(product.Unit) +
		`, price = ` + w.arg(product.Price) +
		`, reorder_point = ` + w.arg(product.ReorderPoint) +
		`, attributes = ` + w.arg(attrs) +
		`, updated_at = ` + w.arg(product.UpdatedAt) +
		` WHERE ` + w.sql()
	tag, err := r.q.Exec(ctx, query, w.args...)
	return affected("update product", tag, err)
}

// UpdateCost actualiza solo el costo del producto (usado por el motor de inventario).
func (r *ProductRepo) UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return err
	}
	w.add("id = ?", productID)
	query := `UPDATE products SET cost = ` + w.arg(cost) + `, updated_at = now() WHERE ` + w.sql()
	tag, err := r.q.Exec(ctx, query, w.args...)
	return affected("update product cost", tag, err)
}

// List filtra por texto (nombre o SKU) y categoría.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, 0, err
	}
	if f.Search != "" {
		w.add("(name ILIKE ? OR sku ILIKE $"+fmt.Sprint(len(w.args)+1)+")", "%"+f.Search+"%")
	}
	if f.Category != "" {
		w.add("category = ?", f.Category)
	}
	total, err := w.count(ctx, r.q, "products")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Page)
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE `+w.sql()+` ORDER BY created_at DESC, id`+suffix, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	out, err := collect("list products", rows, scanProduct)
	return out, total, err
}

// Delete borra el producto; si tiene movimientos, pedidos o facturas la FK lo impide (ErrConflict).
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return err
	}
	w.add("id = ?", id)
	// filas de stock en cero no cuentan como uso del producto
	if _, err := r.q.Exec(ctx, `DELETE FROM location_inventory WHERE company_id = $1 AND product_id = $2 AND quantity = 0`, w.args...); err != nil {
		return mapErr("delete product stock", err)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE `+w.sql(), w.args...)
	return affected("delete product", tag, err)
}
