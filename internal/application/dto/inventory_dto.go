package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/v1/inventory/movements.
// IN/OUT/ADJUSTMENT usan location_id; TRANSFER usa from_location_id y to_location_id.
type RegisterMovementRequest struct {
	ProductID      string           `json:"product_id" validate:"required,uuid"`
	LocationID     string           `json:"location_id,omitempty" validate:"omitempty,uuid"`
	FromLocationID string           `json:"from_location_id,omitempty" validate:"omitempty,uuid"`
	ToLocationID   string           `json:"to_location_id,omitempty" validate:"omitempty,uuid"`
	Type           string           `json:"type" validate:"required,oneof=IN OUT ADJUSTMENT TRANSFER"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	Reference      string           `json:"reference,omitempty" validate:"omitempty,max=100"`
	Notes          string           `json:"notes,omitempty"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	ProductID     string          `json:"product_id"`
	LocationID    string          `json:"location_id"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	Reference     string          `json:"reference,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MovementFilterRequest query del kardex.
type MovementFilterRequest struct {
	PageRequest
	PeriodRequest
	ProductID  string `query:"product_id" validate:"omitempty,uuid"`
	LocationID string `query:"location_id" validate:"omitempty,uuid"`
	Type       string `query:"type" validate:"omitempty,oneof=IN OUT ADJUSTMENT TRANSFER"`
}

// StockResponse stock de un producto en una ubicación.
type StockResponse struct {
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un SKU bajo su punto de reorden.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	LocationID         string          `json:"location_id,omitempty"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	ReorderPoint       decimal.Decimal `json:"reorder_point"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`          // ReorderPoint * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	GrossMarginPct     decimal.Decimal `json:"gross_margin_pct"`
	Priority           int             `json:"priority"` // 1 = más urgente
}
