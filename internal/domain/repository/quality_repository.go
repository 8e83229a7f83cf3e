package repository

import (
	"context"

	"github.com/jhoicas/telar-erp/internal/domain/entity"
)

// InspectionFilter filtros de inspecciones (el periodo aplica sobre created_at).
type InspectionFilter struct {
	Page
	Period
	Status    entity.InspectionStatus
	ProductID string
}

// InspectionRepository define el puerto de persistencia para Inspection y QualityDefect.
type InspectionRepository interface {
	Create(ctx context.Context, in *entity.Inspection) error
	GetByID(ctx context.Context, id string) (*entity.Inspection, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Inspection, error)
	Update(ctx context.Context, in *entity.Inspection) error
	List(ctx context.Context, f InspectionFilter) ([]*entity.Inspection, int, error)

	AddDefect(ctx context.Context, d *entity.QualityDefect) error
	ListDefects(ctx context.Context, inspectionID string) ([]*entity.QualityDefect, error)
	DeleteDefect(ctx context.Context, inspectionID, defectID string) error

	// Stats agrega inspecciones y defectos creados en el periodo.
	Stats(ctx context.Context, p Period) (*entity.QualityStats, error)
}

// ComplianceReportRepository define el puerto de persistencia para ComplianceReport.
type ComplianceReportRepository interface {
	Create(ctx context.Context, r *entity.ComplianceReport) error
	GetByID(ctx context.Context, id string) (*entity.ComplianceReport, error)
	Update(ctx context.Context, r *entity.ComplianceReport) error
	List(ctx context.Context, page Page) ([]*entity.ComplianceReport, int, error)
}
