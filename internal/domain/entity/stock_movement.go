package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento de inventario.
type MovementType string

const (
	MovementIN         MovementType = "IN"
	MovementOUT        MovementType = "OUT"
	MovementAdjustment MovementType = "ADJUSTMENT"
	MovementTransfer   MovementType = "TRANSFER"
)

// Valid indica si el tipo es conocido.
func (t MovementType) Valid() bool {
	switch t {
	case MovementIN, MovementOUT, MovementAdjustment, MovementTransfer:
		return true
	}
	return false
}

// StockMovement es un movimiento inmutable de inventario (kardex).
// Quantity es con signo: positivo entra a la ubicación, negativo sale.
// Una transferencia genera dos filas con el mismo TransactionID.
type StockMovement struct {
	ID            string
	CompanyID     string
	TransactionID string
	ProductID     string
	LocationID    string
	Type          MovementType
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	Reference     string // p. ej. número de pedido
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
}
