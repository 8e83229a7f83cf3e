package repository

import (
	"context"

	"github.com/jhoicas/telar-erp/internal/domain/entity"
)

// OrderFilter filtros del listado de pedidos.
type OrderFilter struct {
	Page
	Status     entity.OrderStatus
	CustomerID string
}

// OrderRepository define el puerto de persistencia para Order, sus ítems e historial.
type OrderRepository interface {
	// Create inserta cabecera e ítems.
	Create(ctx context.Context, order *entity.Order) error
	// GetByID devuelve el pedido con sus ítems.
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	// GetForUpdate igual que GetByID pero bloquea la cabecera (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	// Update actualiza cabecera e ítems de un pedido en DRAFT sin tocar el estado; en otro estado ErrNotEditable.
	Update(ctx context.Context, order *entity.Order) error
	UpdateStatus(ctx context.Context, order *entity.Order) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f OrderFilter) ([]*entity.Order, int, error)
	CountByStatus(ctx context.Context) (map[entity.OrderStatus]int, error)

	AddStatusChange(ctx context.Context, change *entity.OrderStatusChange) error
	ListStatusChanges(ctx context.Context, orderID string) ([]*entity.OrderStatusChange, error)
}
