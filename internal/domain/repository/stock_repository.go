package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/domain/entity"
)

// StockRepository consulta/actualiza LocationInventory. Get y GetForUpdate devuelven cantidad
// cero cuando no hay fila. Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	Get(ctx context.Context, productID, locationID string) (*entity.LocationInventory, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, productID, locationID string) (*entity.LocationInventory, error)
	Upsert(ctx context.Context, stock *entity.LocationInventory) error
	ListByLocation(ctx context.Context, locationID string) ([]*entity.LocationInventory, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.LocationInventory, error)
	// TotalByProduct suma el stock del producto en todas las ubicaciones del tenant.
	TotalByProduct(ctx context.Context, productID string) (*entity.LocationInventory, error)
	HasStock(ctx context.Context, locationID string) (bool, error)
	// ListBelowReorderPoint; locationID vacío = todas las ubicaciones.
	ListBelowReorderPoint(ctx context.Context, locationID string) ([]*entity.ReplenishmentItem, error)
	Valuation(ctx context.Context) ([]*entity.ValuationRow, error)
}

// MovementFilter filtros del kardex.
type MovementFilter struct {
	Page
	Period
	ProductID  string
	LocationID string
	Type       entity.MovementType
}

// StockMovementRepository persiste movimientos (solo inserción).
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	List(ctx context.Context, f MovementFilter) ([]*entity.StockMovement, int, error)
	// OutboundCost suma el costo (positivo) de las salidas OUT del periodo: costo de ventas.
	OutboundCost(ctx context.Context, p Period) (decimal.Decimal, error)
}
