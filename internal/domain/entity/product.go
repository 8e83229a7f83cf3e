package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de producto textil.
const (
	CategoryFabric    = "fabric"
	CategoryYarn      = "yarn"
	CategoryGarment   = "garment"
	CategoryAccessory = "accessory"
	CategoryChemical  = "chemical"
)

// Unidades de medida.
const (
	UnitMeter = "m"
	UnitKg    = "kg"
	UnitPiece = "pcs"
	UnitRoll  = "roll"
)

// Product representa un SKU (tela, hilo, prenda, insumo).
// Cost es promedio ponderado calculado desde movimientos; el stock vive por ubicación en LocationInventory.
type Product struct {
	ID           string
	CompanyID    string
	SKU          string // único por empresa
	Name         string
	Description  string
	Category     string
	Unit         string
	Price        decimal.Decimal // precio de venta
	Cost         decimal.Decimal // costo promedio ponderado (inicia en 0)
	ReorderPoint decimal.Decimal
	Attributes   json.RawMessage // composición, gramaje, color, ancho
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
