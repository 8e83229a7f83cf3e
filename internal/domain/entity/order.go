package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/domain/workflow"
)

// OrderStatus estado del pedido de cliente.
type OrderStatus string

const (
	OrderStatusDraft        OrderStatus = "DRAFT"
	OrderStatusConfirmed    OrderStatus = "CONFIRMED"
	OrderStatusInProduction OrderStatus = "IN_PRODUCTION"
	OrderStatusReadyToShip  OrderStatus = "READY_TO_SHIP"
	OrderStatusShipped      OrderStatus = "SHIPPED"
	OrderStatusDelivered    OrderStatus = "DELIVERED"
	OrderStatusCancelled    OrderStatus = "CANCELLED"
)

// OrderTransitions es la tabla de adyacencia del pedido. No hay transiciones automáticas.
var OrderTransitions = workflow.Transitions[OrderStatus]{
	OrderStatusDraft:        {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:    {OrderStatusInProduction, OrderStatusCancelled},
	OrderStatusInProduction: {OrderStatusReadyToShip, OrderStatusCancelled},
	OrderStatusReadyToShip:  {OrderStatusShipped},
	OrderStatusShipped:      {OrderStatusDelivered},
	OrderStatusDelivered:    {},
	OrderStatusCancelled:    {},
}

// Editable indica si el pedido admite cambios de ítems o eliminación.
func (s OrderStatus) Editable() bool { return s == OrderStatusDraft }

// Order es un pedido de cliente.
type Order struct {
	ID          string
	CompanyID   string
	OrderNumber string
	CustomerID  string
	LocationID  string // ubicación de despacho, opcional
	Status      OrderStatus
	OrderDate   time.Time
	DueDate     *time.Time
	Notes       string
	TotalAmount decimal.Decimal
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Items       []OrderItem
}

// OrderItem es una línea del pedido.
type OrderItem struct {
	ID        string
	CompanyID string
	OrderID   string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Recalculate actualiza subtotales y total a partir de los ítems.
func (o *Order) Recalculate() {
	total := decimal.Zero
	for i := range o.Items {
		o.Items[i].Subtotal = o.Items[i].Quantity.Mul(o.Items[i].UnitPrice)
		total = total.Add(o.Items[i].Subtotal)
	}
	o.TotalAmount = total
}

// OrderStatusChange es una fila del historial de estados.
type OrderStatusChange struct {
	ID         string
	CompanyID  string
	OrderID    string
	FromStatus OrderStatus
	ToStatus   OrderStatus
	ChangedBy  string
	Note       string
	ChangedAt  time.Time
}
