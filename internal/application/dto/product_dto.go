package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU          string          `json:"sku" validate:"required,min=1,max=100"`
	Name         string          `json:"name" validate:"required,min=1,max=200"`
	Description  string          `json:"description"`
	Category     string          `json:"category" validate:"required,oneof=fabric yarn garment accessory chemical"`
	Unit         string          `json:"unit" validate:"required,oneof=m kg pcs roll"`
	Price        decimal.Decimal `json:"price"`
	ReorderPoint decimal.Decimal `json:"reorder_point"`
	Attributes   json.RawMessage `json:"attributes" swaggertype:"object"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Cost ni stock: se manejan vía movimientos).
type UpdateProductRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description  *string          `json:"description"`
	Category     *string          `json:"category" validate:"omitempty,oneof=fabric yarn garment accessory chemical"`
	Unit         *string          `json:"unit" validate:"omitempty,oneof=m kg pcs roll"`
	Price        *decimal.Decimal `json:"price"`
	ReorderPoint *decimal.Decimal `json:"reorder_point"`
	Attributes   json.RawMessage  `json:"attributes" swaggertype:"object"`
}

// ProductFilterRequest query del listado.
type ProductFilterRequest struct {
	PageRequest
	Search   string `query:"search"`
	Category string `query:"category"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	Cost         decimal.Decimal `json:"cost"`
	ReorderPoint decimal.Decimal `json:"reorder_point"`
	Attributes   json.RawMessage `json:"attributes,omitempty" swaggertype:"object"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ImportProductsResponse resultado de la importación CSV.
type ImportProductsResponse struct {
	Created int           `json:"created"`
	Updated int           `json:"updated"`
	Errors  []ImportError `json:"errors"`
}

// ImportError fila rechazada del CSV (Line es 1-based, incluye cabecera).
type ImportError struct {
	Line    int    `json:"line"`
	SKU     string `json:"sku,omitempty"`
	Message string `json:"message"`
}
