package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/domain/entity"
)

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	Page
	Search   string // nombre o SKU, sin distinguir mayúsculas
	Category string
}

// ProductRepository define el puerto de persistencia para Product.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea el producto hasta el fin de la transacción; serializa los movimientos del producto.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateCost(ctx context.Context, productID string, cost decimal.Decimal) error
	List(ctx context.Context, f ProductFilter) ([]*entity.Product, int, error)
	Delete(ctx context.Context, id string) error
}
