package pdf_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/infrastructure/pdf"
)

func company() *entity.Company {
	return &entity.Company{ID: "c-1", Name: "Tejidos Boyacá", TaxID: "900123456-7", Address: "Cra 1 # 2-3"}
}

func TestInvoicePDF_GeneraDocumento(t *testing.T) {
	due := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)
	inv := &entity.Invoice{
		InvoiceNumber: "INV-000001", IssueDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), DueDate: &due,
		Subtotal: decimal.NewFromInt(150), TaxTotal: decimal.RequireFromString("22.8"), Total: decimal.RequireFromString("172.8"),
		Status: entity.InvoiceIssued,
	}
	out, err := pdf.NewMarotoRenderer().InvoicePDF(context.Background(), ports.InvoiceDocument{
		Invoice:  inv,
		Company:  company(),
		Customer: &entity.Customer{Name: "Confecciones Andinas", TaxID: "800111222"},
		Lines: []ports.InvoiceLine{{
			ProductName: "Denim 12oz", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(15),
			TaxRate: decimal.RequireFromString("0.19"), Subtotal: decimal.NewFromInt(150),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestInvoicePDF_Incompleta(t *testing.T) {
	_, err := pdf.NewMarotoRenderer().InvoicePDF(context.Background(), ports.InvoiceDocument{Company: company()})
	assert.Error(t, err)
}

func TestCompliancePDF_GeneraDocumento(t *testing.T) {
	rep := &entity.ComplianceReport{
		Title: "Calidad marzo", Standard: "ISO 9001",
		PeriodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), PeriodEnd: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		TotalInspections: 4, Passed: 3, Failed: 1, PassRate: decimal.RequireFromString("0.75"),
		TotalDefects: 5, CriticalDefects: 1, Status: entity.ComplianceDraft,
	}
	out, err := pdf.NewMarotoRenderer().CompliancePDF(context.Background(), ports.ComplianceDocument{
		Report: rep, Company: company(), DefectsByType: map[string]int{"barré": 3, "mancha": 2},
	})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}
