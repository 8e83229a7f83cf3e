package quality_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/application/quality"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
	"github.com/jhoicas/telar-erp/internal/infrastructure/memory"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

// fakePDF captura el documento recibido.
type fakePDF struct {
	got ports.ComplianceDocument
}

func (f *fakePDF) InvoicePDF(context.Context, ports.InvoiceDocument) ([]byte, error) {
	return []byte("%PDF-invoice"), nil
}

func (f *fakePDF) CompliancePDF(_ context.Context, doc ports.ComplianceDocument) ([]byte, error) {
	f.got = doc
	return []byte("%PDF-compliance"), nil
}

type fixture struct {
	ctx         context.Context
	pdf         *fakePDF
	inspections *quality.InspectionUseCase
	compliance  *quality.ComplianceUseCase
	productID   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.New()
	store := db.Store()
	companyID := uuid.NewString()
	ctx := tenant.New(context.Background(), companyID, uuid.NewString(), entity.RoleInspector)
	require.NoError(t, store.Companies.Create(ctx, &entity.Company{ID: companyID, Name: "Hilados del Sur", TaxID: "900111222", Status: entity.CompanyStatusActive}))
	p := &entity.Product{ID: uuid.NewString(), SKU: "JER-01", Name: "Jersey", Category: entity.CategoryFabric, Unit: entity.UnitKg, Price: decimal.NewFromInt(5)}
	require.NoError(t, store.Products.Create(ctx, p))

	pdf := &fakePDF{}
	deps := quality.Deps{Store: store, TxRunner: db, PDF: pdf, Log: logger.Nop()}
	return &fixture{
		ctx:         ctx,
		pdf:         pdf,
		inspections: quality.NewInspectionUseCase(deps),
		compliance:  quality.NewComplianceUseCase(deps),
		productID:   p.ID,
	}
}

func (f *fixture) inspection(t *testing.T) *dto.InspectionResponse {
	t.Helper()
	in, err := f.inspections.Create(f.ctx, dto.CreateInspectionRequest{ProductID: f.productID, LotNumber: "L-1", SampleSize: 50})
	require.NoError(t, err)
	return in
}

func (f *fixture) finish(t *testing.T, id, status string) {
	t.Helper()
	for _, s := range []string{"IN_PROGRESS", status} {
		_, err := f.inspections.Transition(f.ctx, id, dto.TransitionRequest{Status: s})
		require.NoError(t, err)
	}
}

func TestInspection_DefectosSoloAbierta(t *testing.T) {
	f := newFixture(t)
	in := f.inspection(t)
	assert.Equal(t, "PENDING", in.Status)
	assert.Regexp(t, `^QC-\d{8}-`, in.InspectionNumber)

	d, err := f.inspections.AddDefect(f.ctx, in.ID, dto.AddDefectRequest{DefectType: "barré", Severity: entity.DefectMajor, Quantity: 2})
	require.NoError(t, err)
	extra, err := f.inspections.AddDefect(f.ctx, in.ID, dto.AddDefectRequest{DefectType: "mancha", Severity: entity.DefectMinor, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, f.inspections.DeleteDefect(f.ctx, in.ID, extra.ID))

	f.finish(t, in.ID, "FAILED")
	got, err := f.inspections.GetByID(f.ctx, in.ID)
	require.NoError(t, err)
	require.Len(t, got.Defects, 1)
	assert.Equal(t, d.ID, got.Defects[0].ID)
	assert.NotNil(t, got.InspectedAt)

	_, err = f.inspections.AddDefect(f.ctx, in.ID, dto.AddDefectRequest{DefectType: "x", Severity: entity.DefectMinor, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotEditable)
	assert.ErrorIs(t, f.inspections.DeleteDefect(f.ctx, in.ID, d.ID), domain.ErrNotEditable)
}

func TestInspection_TransicionNoDeclarada(t *testing.T) {
	f := newFixture(t)
	in := f.inspection(t)
	_, err := f.inspections.Transition(f.ctx, in.ID, dto.TransitionRequest{Status: "PASSED"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestInspection_AislamientoTenant(t *testing.T) {
	f := newFixture(t)
	in := f.inspection(t)
	other := tenant.New(context.Background(), uuid.NewString(), uuid.NewString(), entity.RoleAdmin)

	_, err := f.inspections.GetByID(other, in.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.inspections.AddDefect(other, in.ID, dto.AddDefectRequest{DefectType: "x", Severity: entity.DefectMinor, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Informes de cumplimiento
// ──────────────────────────────────────────────────────────────────────────────

func TestCompliance_GenerarPublicarYPDF(t *testing.T) {
	f := newFixture(t)
	for _, status := range []string{"PASSED", "PASSED", "PASSED", "FAILED"} {
		in := f.inspection(t)
		if status == "FAILED" {
			_, err := f.inspections.AddDefect(f.ctx, in.ID, dto.AddDefectRequest{DefectType: "hilo roto", Severity: entity.DefectCritical, Quantity: 3})
			require.NoError(t, err)
		}
		f.finish(t, in.ID, status)
	}
	f.inspection(t) // pendiente: cuenta en el total pero no en la tasa

	now := time.Now()
	rep, err := f.compliance.Generate(f.ctx, dto.GenerateComplianceRequest{
		Title: "Trimestre", Standard: "ISO 9001",
		PeriodStart: now.Add(-time.Hour), PeriodEnd: now.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, rep.TotalInspections)
	assert.Equal(t, 3, rep.Passed)
	assert.Equal(t, 1, rep.Failed)
	assert.True(t, rep.PassRate.Equal(decimal.RequireFromString("0.75")), "pass rate %s", rep.PassRate)
	assert.Equal(t, 3, rep.CriticalDefects)
	assert.Equal(t, "DRAFT", rep.Status)

	pub, err := f.compliance.Publish(f.ctx, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, "PUBLISHED", pub.Status)
	_, err = f.compliance.Publish(f.ctx, rep.ID)
	assert.NoError(t, err, "publicar dos veces es idempotente")

	pdf, name, err := f.compliance.PDF(f.ctx, rep.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Contains(t, name, "compliance-")
	assert.Equal(t, 3, f.pdf.got.DefectsByType["hilo roto"])
	assert.Equal(t, "Hilados del Sur", f.pdf.got.Company.Name)
}

func TestCompliance_PeriodoSinInspecciones(t *testing.T) {
	f := newFixture(t)
	rep, err := f.compliance.Generate(f.ctx, dto.GenerateComplianceRequest{
		Title: "Vacío", Standard: "OEKO-TEX",
		PeriodStart: time.Now().AddDate(-1, 0, 0), PeriodEnd: time.Now().AddDate(-1, 1, 0),
	})
	require.NoError(t, err)
	assert.True(t, rep.PassRate.IsZero())

	_, err = f.compliance.Generate(f.ctx, dto.GenerateComplianceRequest{
		Title: "Invertido", Standard: "x", PeriodStart: time.Now(), PeriodEnd: time.Now().Add(-time.Hour),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
