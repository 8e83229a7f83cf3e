package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceItemRequest línea manual de factura.
// TaxRate menor que 1 es fracción (0.19); desde 1 es porcentaje (19 = 19 %, 1 = 1 %, 100 = 100 %).
type InvoiceItemRequest struct {
	ProductID   string           `json:"product_id" validate:"omitempty,uuid"`
	Description string           `json:"description" validate:"omitempty,max=500"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	TaxRate     decimal.Decimal  `json:"tax_rate"`
}

// CreateInvoiceRequest factura manual (items) o desde un pedido (order_id). Queda en DRAFT.
// TaxRate sigue la misma regla que en InvoiceItemRequest.
type CreateInvoiceRequest struct {
	CustomerID string               `json:"customer_id" validate:"required_without=OrderID,omitempty,uuid"`
	OrderID    string               `json:"order_id" validate:"omitempty,uuid"`
	IssueDate  *time.Time           `json:"issue_date"`
	DueDate    *time.Time           `json:"due_date"`
	TaxRate    decimal.Decimal      `json:"tax_rate"` // aplicado a las líneas generadas desde un pedido
	Items      []InvoiceItemRequest `json:"items" validate:"omitempty,dive"`
}

// InvoiceFilterRequest query del listado.
type InvoiceFilterRequest struct {
	PageRequest
	PeriodRequest
	Status     string `query:"status"`
	CustomerID string `query:"customer_id" validate:"omitempty,uuid"`
}

// InvoiceItemResponse línea de factura.
type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
}

// InvoiceResponse salida de una factura.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	CustomerID    string                `json:"customer_id"`
	OrderID       string                `json:"order_id,omitempty"`
	IssueDate     time.Time             `json:"issue_date"`
	DueDate       *time.Time            `json:"due_date,omitempty"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	TaxTotal      decimal.Decimal       `json:"tax_total"`
	Total         decimal.Decimal       `json:"total"`
	Status        string                `json:"status"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	Items         []InvoiceItemResponse `json:"items,omitempty"`
	NextStatus    []string              `json:"next_status"`
}

// CreateBillRequest cuenta por pagar (queda en DRAFT).
type CreateBillRequest struct {
	BillNumber string          `json:"bill_number" validate:"required,min=1,max=50"`
	VendorName string          `json:"vendor_name" validate:"required,min=1,max=200"`
	Category   string          `json:"category" validate:"required,oneof=raw_material utilities payroll maintenance logistics other"`
	IssueDate  time.Time       `json:"issue_date" validate:"required"`
	DueDate    *time.Time      `json:"due_date"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxTotal   decimal.Decimal `json:"tax_total"`
	Notes      string          `json:"notes"`
}

// UpdateBillRequest cambios permitidos solo en DRAFT.
type UpdateBillRequest struct {
	VendorName *string          `json:"vendor_name" validate:"omitempty,min=1,max=200"`
	Category   *string          `json:"category" validate:"omitempty,oneof=raw_material utilities payroll maintenance logistics other"`
	DueDate    *time.Time       `json:"due_date"`
	Subtotal   *decimal.Decimal `json:"subtotal"`
	TaxTotal   *decimal.Decimal `json:"tax_total"`
	Notes      *string          `json:"notes"`
}

// BillFilterRequest query del listado.
type BillFilterRequest struct {
	PageRequest
	PeriodRequest
	Status   string `query:"status"`
	Category string `query:"category"`
}

// BillResponse salida de una cuenta por pagar.
type BillResponse struct {
	ID         string          `json:"id"`
	BillNumber string          `json:"bill_number"`
	VendorName string          `json:"vendor_name"`
	Category   string          `json:"category"`
	IssueDate  time.Time       `json:"issue_date"`
	DueDate    *time.Time      `json:"due_date,omitempty"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxTotal   decimal.Decimal `json:"tax_total"`
	Total      decimal.Decimal `json:"total"`
	Status     string          `json:"status"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	NextStatus []string        `json:"next_status"`
}
