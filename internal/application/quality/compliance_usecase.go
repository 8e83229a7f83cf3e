package quality

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

// ComplianceUseCase informes de cumplimiento de calidad.
type ComplianceUseCase struct {
	d Deps
}

// NewComplianceUseCase construye el caso de uso.
func NewComplianceUseCase(d Deps) *ComplianceUseCase {
	return &ComplianceUseCase{d: d}
}

// Generate agrega las inspecciones creadas en [period_start, period_end) y sus defectos
// en un informe DRAFT.
func (uc *ComplianceUseCase) Generate(ctx context.Context, in dto.GenerateComplianceRequest) (*dto.ComplianceReportResponse, error) {
	if !in.PeriodStart.Before(in.PeriodEnd) {
		return nil, fmt.Errorf("%w: period_start debe ser anterior a period_end", domain.ErrInvalidInput)
	}
	var rep *entity.ComplianceReport
	err := uc.d.TxRunner.Run(ctx, func(s repository.Store) error {
		stats, err := s.Inspections.Stats(ctx, repository.Period{From: in.PeriodStart, To: in.PeriodEnd})
		if err != nil {
			return err
		}
		now := time.Now()
		rep = &entity.ComplianceReport{
			ID:               uuid.New().String(),
			Title:            in.Title,
			Standard:         in.Standard,
			PeriodStart:      in.PeriodStart,
			PeriodEnd:        in.PeriodEnd,
			TotalInspections: stats.TotalInspections,
			Passed:           stats.Passed,
			Failed:           stats.Failed,
			PassRate:         stats.PassRate(),
			TotalDefects:     stats.TotalDefects,
			CriticalDefects:  stats.CriticalDefects,
			Status:           entity.ComplianceDraft,
			GeneratedBy:      tenant.ActorFrom(ctx).UserID,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		return s.ComplianceReports.Create(ctx, rep)
	})
	if err != nil {
		return nil, err
	}
	return toComplianceResponse(rep), nil
}

// GetByID obtiene un informe.
func (uc *ComplianceUseCase) GetByID(ctx context.Context, id string) (*dto.ComplianceReportResponse, error) {
	rep, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toComplianceResponse(rep), nil
}

// List lista informes, más recientes primero.
func (uc *ComplianceUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ListResponse[dto.ComplianceReportResponse], error) {
	page.DefaultPage()
	list, total, err := uc.d.Store.ComplianceReports.List(ctx, repository.Page{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ComplianceReportResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *toComplianceResponse(r))
	}
	out := dto.NewList(items, page.Limit, page.Offset, total)
	return &out, nil
}

// Publish pasa el informe a PUBLISHED; publicar uno ya publicado es un no-op.
func (uc *ComplianceUseCase) Publish(ctx context.Context, id string) (*dto.ComplianceReportResponse, error) {
	rep, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep.Status == entity.CompliancePublished {
		return toComplianceResponse(rep), nil
	}
	if err := entity.ComplianceTransitions.Validate(rep.Status, entity.CompliancePublished); err != nil {
		return nil, err
	}
	rep.Status = entity.CompliancePublished
	rep.UpdatedAt = time.Now()
	if err := uc.d.Store.ComplianceReports.Update(ctx, rep); err != nil {
		return nil, err
	}
	return toComplianceResponse(rep), nil
}

// PDF genera el documento del informe con el detalle de defectos por tipo del periodo.
func (uc *ComplianceUseCase) PDF(ctx context.Context, id string) ([]byte, string, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, "", err
	}
	rep, err := uc.get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	company, err := uc.d.Store.Companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, "", err
	}
	if company == nil {
		return nil, "", domain.ErrNotFound
	}
	stats, err := uc.d.Store.Inspections.Stats(ctx, repository.Period{From: rep.PeriodStart, To: rep.PeriodEnd})
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.d.PDF.CompliancePDF(ctx, ports.ComplianceDocument{
		Report:        rep,
		Company:       company,
		DefectsByType: stats.DefectsByType,
	})
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("compliance-%s.pdf", rep.PeriodStart.Format("20060102"))
	return pdf, filename, nil
}

func (uc *ComplianceUseCase) get(ctx context.Context, id string) (*entity.ComplianceReport, error) {
	rep, err := uc.d.Store.ComplianceReports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, domain.ErrNotFound
	}
	return rep, nil
}

func toComplianceResponse(r *entity.ComplianceReport) *dto.ComplianceReportResponse {
	return &dto.ComplianceReportResponse{
		ID:               r.ID,
		Title:            r.Title,
		Standard:         r.Standard,
		PeriodStart:      r.PeriodStart,
		PeriodEnd:        r.PeriodEnd,
		TotalInspections: r.TotalInspections,
		Passed:           r.Passed,
		Failed:           r.Failed,
		PassRate:         r.PassRate,
		TotalDefects:     r.TotalDefects,
		CriticalDefects:  r.CriticalDefects,
		Status:           string(r.Status),
		GeneratedBy:      r.GeneratedBy,
		CreatedAt:        r.CreatedAt,
	}
}
