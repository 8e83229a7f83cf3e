package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest línea de pedido; sin unit_price se toma el precio del producto.
type OrderItemRequest struct {
	ProductID string           `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// CreateOrderRequest entrada para crear un pedido (queda en DRAFT).
type CreateOrderRequest struct {
	CustomerID string             `json:"customer_id" validate:"required,uuid"`
	LocationID string             `json:"location_id" validate:"omitempty,uuid"`
	OrderDate  *time.Time         `json:"order_date"`
	DueDate    *time.Time         `json:"due_date"`
	Notes      string             `json:"notes" validate:"omitempty,max=2000"`
	Items      []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateOrderRequest cambios permitidos solo en DRAFT. Items no nulo reemplaza todas las líneas.
type UpdateOrderRequest struct {
	LocationID *string            `json:"location_id" validate:"omitempty,uuid"`
	DueDate    *time.Time         `json:"due_date"`
	Notes      *string            `json:"notes" validate:"omitempty,max=2000"`
	Items      []OrderItemRequest `json:"items" validate:"omitempty,min=1,dive"`
}

// OrderFilterRequest query del listado.
type OrderFilterRequest struct {
	PageRequest
	Status     string `query:"status"`
	CustomerID string `query:"customer_id" validate:"omitempty,uuid"`
}

// OrderItemResponse línea del pedido.
type OrderItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse salida de un pedido.
type OrderResponse struct {
	ID          string              `json:"id"`
	OrderNumber string              `json:"order_number"`
	CustomerID  string              `json:"customer_id"`
	LocationID  string              `json:"location_id,omitempty"`
	Status      string              `json:"status"`
	OrderDate   time.Time           `json:"order_date"`
	DueDate     *time.Time          `json:"due_date,omitempty"`
	Notes       string              `json:"notes"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	CreatedBy   string              `json:"created_by"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Items       []OrderItemResponse `json:"items,omitempty"`
	NextStatus  []string            `json:"next_status"`
}

// OrderStatusChangeResponse fila del historial.
type OrderStatusChangeResponse struct {
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ChangedBy  string    `json:"changed_by"`
	Note       string    `json:"note,omitempty"`
	ChangedAt  time.Time `json:"changed_at"`
}
