package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/domain/entity"
)

// InvoiceLine línea de factura con el nombre del producto resuelto.
type InvoiceLine struct {
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
	Subtotal    decimal.Decimal
}

// InvoiceDocument datos necesarios para la representación gráfica de una factura.
type InvoiceDocument struct {
	Invoice  *entity.Invoice
	Company  *entity.Company
	Customer *entity.Customer
	Lines    []InvoiceLine
}

// ComplianceDocument datos del informe de cumplimiento de calidad.
type ComplianceDocument struct {
	Report        *entity.ComplianceReport
	Company       *entity.Company
	DefectsByType map[string]int
}

// PDFRenderer genera documentos PDF.
type PDFRenderer interface {
	InvoicePDF(ctx context.Context, doc InvoiceDocument) ([]byte, error)
	CompliancePDF(ctx context.Context, doc ComplianceDocument) ([]byte, error)
}

// SpreadsheetSection bloque de filas de una hoja de cálculo.
type SpreadsheetSection struct {
	Title   string
	Headers []string
	Rows    [][]any
}

// Spreadsheet libro con una hoja por sección nombrada.
type Spreadsheet struct {
	Sheets map[string][]SpreadsheetSection
	Order  []string // orden de las hojas
}

// SpreadsheetWriter serializa un libro a XLSX.
type SpreadsheetWriter interface {
	Write(ctx context.Context, book Spreadsheet) ([]byte, error)
}
