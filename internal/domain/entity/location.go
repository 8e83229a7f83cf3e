package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de ubicación.
const (
	LocationWarehouse       = "warehouse"
	LocationProductionFloor = "production_floor"
	LocationStore           = "store"
)

// Location es un lugar físico donde se guarda stock (bodega, planta, tienda).
type Location struct {
	ID        string
	CompanyID string
	Name      string
	Type      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LocationInventory es la cantidad disponible de un producto en una ubicación.
type LocationInventory struct {
	CompanyID  string
	ProductID  string
	LocationID string
	Quantity   decimal.Decimal
	UpdatedAt  time.Time
}

// ReplenishmentItem es una fila de la lista de reabastecimiento.
type ReplenishmentItem struct {
	ProductID    string
	SKU          string
	Name         string
	LocationID   string
	CurrentStock decimal.Decimal
	ReorderPoint decimal.Decimal
	UnitCost     decimal.Decimal
	Price        decimal.Decimal
}

// ValuationRow valoriza el stock de un producto en una ubicación (cantidad x costo).
type ValuationRow struct {
	ProductID    string
	SKU          string
	Name         string
	LocationID   string
	LocationName string
	Quantity     decimal.Decimal
	UnitCost     decimal.Decimal
	TotalValue   decimal.Decimal
}
