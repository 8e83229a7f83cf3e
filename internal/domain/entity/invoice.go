package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/domain/workflow"
)

// InvoiceStatus estado de una factura de venta (cuenta por cobrar).
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "DRAFT"
	InvoiceIssued    InvoiceStatus = "ISSUED"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

var InvoiceTransitions = workflow.Transitions[InvoiceStatus]{
	InvoiceDraft:     {InvoiceIssued, InvoiceCancelled},
	InvoiceIssued:    {InvoicePaid, InvoiceCancelled},
	InvoicePaid:      {},
	InvoiceCancelled: {},
}

// Invoice es la factura de venta.
type Invoice struct {
	ID            string
	CompanyID     string
	InvoiceNumber string
	CustomerID    string
	OrderID       string // opcional
	IssueDate     time.Time
	DueDate       *time.Time
	Subtotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	Total         decimal.Decimal
	Status        InvoiceStatus
	PaidAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Items         []InvoiceItem
}

// InvoiceItem línea de factura.
type InvoiceItem struct {
	ID          string
	CompanyID   string
	InvoiceID   string
	ProductID   string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal // 0.19 = 19 %
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
}

// Recalculate recalcula líneas y totales.
func (inv *Invoice) Recalculate() {
	sub, tax := decimal.Zero, decimal.Zero
	for i := range inv.Items {
		it := &inv.Items[i]
		it.Subtotal = it.Quantity.Mul(it.UnitPrice).Round(2)
		it.TaxAmount = it.Subtotal.Mul(it.TaxRate).Round(2)
		sub = sub.Add(it.Subtotal)
		tax = tax.Add(it.TaxAmount)
	}
	inv.Subtotal = sub
	inv.TaxTotal = tax
	inv.Total = sub.Add(tax)
}

// Categorías de gasto.
const (
	BillRawMaterial = "raw_material"
	BillUtilities   = "utilities"
	BillPayroll     = "payroll"
	BillMaintenance = "maintenance"
	BillLogistics   = "logistics"
	BillOther       = "other"
)

// BillStatus estado de una cuenta por pagar.
type BillStatus string

const (
	BillDraft     BillStatus = "DRAFT"
	BillApproved  BillStatus = "APPROVED"
	BillPaid      BillStatus = "PAID"
	BillCancelled BillStatus = "CANCELLED"
)

var BillTransitions = workflow.Transitions[BillStatus]{
	BillDraft:     {BillApproved, BillCancelled},
	BillApproved:  {BillPaid, BillCancelled},
	BillPaid:      {},
	BillCancelled: {},
}

// Bill es una cuenta por pagar a proveedor.
type Bill struct {
	ID         string
	CompanyID  string
	BillNumber string
	VendorName string
	Category   string
	IssueDate  time.Time
	DueDate    *time.Time
	Subtotal   decimal.Decimal
	TaxTotal   decimal.Decimal
	Total      decimal.Decimal
	Status     BillStatus
	PaidAt     *time.Time
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ExpenseLine total de gastos de una categoría.
type ExpenseLine struct {
	Category string
	Amount   decimal.Decimal
}
