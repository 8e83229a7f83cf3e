// Package quality implementa inspecciones de calidad por lote, registro de defectos e
// informes de cumplimiento por periodo.
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
	"github.com/jhoicas/telar-erp/pkg/logger"
)

// Deps dependencias de los casos de uso de calidad.
type Deps struct {
	Store    repository.Store
	TxRunner ports.TxRunner
	Events   ports.EventPublisher
	PDF      ports.PDFRenderer
	Log      *logger.Logger
}

// InspectionUseCase inspecciones y defectos.
type InspectionUseCase struct {
	d Deps
}

// NewInspectionUseCase construye el caso de uso.
func NewInspectionUseCase(d Deps) *InspectionUseCase {
	return &InspectionUseCase{d: d}
}

// Create abre una inspección PENDING; el inspector es el usuario actuante.
func (uc *InspectionUseCase) Create(ctx context.Context, in dto.CreateInspectionRequest) (*dto.InspectionResponse, error) {
	p, err := uc.d.Store.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto inexistente", domain.ErrInvalidInput)
	}
	if in.OrderID != "" {
		o, err := uc.d.Store.Orders.GetByID(ctx, in.OrderID)
		if err != nil {
			return nil, err
		}
		if o == nil {
			return nil, fmt.Errorf("%w: pedido inexistente", domain.ErrInvalidInput)
		}
	}
	if in.SampleSize <= 0 {
		return nil, fmt.Errorf("%w: sample_size debe ser > 0", domain.ErrInvalidInput)
	}
	now := time.Now()
	insp := &entity.Inspection{
		ID:               uuid.New().String(),
		InspectionNumber: entity.NewDocumentNumber(entity.PrefixInspection, now),
		ProductID:        in.ProductID,
		OrderID:          in.OrderID,
		LotNumber:        in.LotNumber,
		InspectorID:      tenant.ActorFrom(ctx).UserID,
		Status:           entity.InspectionPending,
		SampleSize:       in.SampleSize,
		Notes:            in.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.d.Store.Inspections.Create(ctx, insp); err != nil {
		return nil, err
	}
	return toInspectionResponse(insp, nil), nil
}

// GetByID devuelve la inspección con sus defectos.
func (uc *InspectionUseCase) GetByID(ctx context.Context, id string) (*dto.InspectionResponse, error) {
	insp, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	defects, err := uc.d.Store.Inspections.ListDefects(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInspectionResponse(insp, defects), nil
}

// List filtra por estado, producto y fecha de creación.
func (uc *InspectionUseCase) List(ctx context.Context, in dto.InspectionFilterRequest) (*dto.ListResponse[dto.InspectionResponse], error) {
	in.DefaultPage()
	from, to, err := in.Bounds()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	status := entity.InspectionStatus(in.Status)
	if status != "" && !entity.InspectionTransitions.Known(status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	list, total, err := uc.d.Store.Inspections.List(ctx, repository.InspectionFilter{
		Page:      repository.Page{Limit: in.Limit, Offset: in.Offset},
		Period:    repository.Period{From: from, To: to},
		Status:    status,
		ProductID: in.ProductID,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.InspectionResponse, 0, len(list))
	for _, i := range list {
		items = append(items, *toInspectionResponse(i, nil))
	}
	out := dto.NewList(items, in.Limit, in.Offset, total)
	return &out, nil
}

// Transition avanza la inspección. PASSED y FAILED registran inspected_at.
func (uc *InspectionUseCase) Transition(ctx context.Context, id string, in dto.TransitionRequest) (*dto.InspectionResponse, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	to := entity.InspectionStatus(in.Status)
	var (
		insp *entity.Inspection
		from entity.InspectionStatus
	)
	err = uc.d.TxRunner.Run(ctx, func(s repository.Store) error {
		cur, err := s.Inspections.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return domain.ErrNotFound
		}
		insp, from = cur, cur.Status
		if cur.Status == to {
			return nil
		}
		if err := entity.InspectionTransitions.Validate(cur.Status, to); err != nil {
			return err
		}
		now := time.Now()
		cur.Status = to
		cur.UpdatedAt = now
		if in.Note != "" {
			cur.Notes = in.Note
		}
		if to == entity.InspectionPassed || to == entity.InspectionFailed {
			cur.InspectedAt = &now
		}
		return s.Inspections.Update(ctx, cur)
	})
	if err != nil {
		return nil, err
	}
	if from != to {
		ports.Notify(ctx, uc.d.Events, uc.d.Log, ports.Event{
			Type: ports.EventInspectionStatusChanged, CompanyID: companyID, EntityID: insp.ID,
			From: string(from), To: string(to), Actor: tenant.ActorFrom(ctx).UserID, At: insp.UpdatedAt,
		})
	}
	return uc.GetByID(ctx, insp.ID)
}

// AddDefect registra un defecto; solo mientras la inspección está PENDING o IN_PROGRESS.
func (uc *InspectionUseCase) AddDefect(ctx context.Context, inspectionID string, in dto.AddDefectRequest) (*dto.DefectResponse, error) {
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity debe ser > 0", domain.ErrInvalidInput)
	}
	var d *entity.QualityDefect
	err := uc.d.TxRunner.Run(ctx, func(s repository.Store) error {
		insp, err := s.Inspections.GetForUpdate(ctx, inspectionID)
		if err != nil {
			return err
		}
		if insp == nil {
			return domain.ErrNotFound
		}
		if !insp.Status.AcceptsDefects() {
			return domain.ErrNotEditable
		}
		d = &entity.QualityDefect{
			ID:           uuid.New().String(),
			InspectionID: inspectionID,
			DefectType:   in.DefectType,
			Severity:     in.Severity,
			Quantity:     in.Quantity,
			Description:  in.Description,
			CreatedAt:    time.Now(),
		}
		return s.Inspections.AddDefect(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	out := toDefectResponse(d)
	return &out, nil
}

// ListDefects defectos de la inspección en orden de registro.
func (uc *InspectionUseCase) ListDefects(ctx context.Context, inspectionID string) ([]dto.DefectResponse, error) {
	if _, err := uc.get(ctx, inspectionID); err != nil {
		return nil, err
	}
	defects, err := uc.d.Store.Inspections.ListDefects(ctx, inspectionID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DefectResponse, 0, len(defects))
	for _, d := range defects {
		out = append(out, toDefectResponse(d))
	}
	return out, nil
}

// DeleteDefect borra un defecto; mismas reglas de estado que AddDefect.
func (uc *InspectionUseCase) DeleteDefect(ctx context.Context, inspectionID, defectID string) error {
	return uc.d.TxRunner.Run(ctx, func(s repository.Store) error {
		insp, err := s.Inspections.GetForUpdate(ctx, inspectionID)
		if err != nil {
			return err
		}
		if insp == nil {
			return domain.ErrNotFound
		}
		if !insp.Status.AcceptsDefects() {
			return domain.ErrNotEditable
		}
		return s.Inspections.DeleteDefect(ctx, inspectionID, defectID)
	})
}

func (uc *InspectionUseCase) get(ctx context.Context, id string) (*entity.Inspection, error) {
	insp, err := uc.d.Store.Inspections.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if insp == nil {
		return nil, domain.ErrNotFound
	}
	return insp, nil
}

func toDefectResponse(d *entity.QualityDefect) dto.DefectResponse {
	return dto.DefectResponse{
		ID:          d.ID,
		DefectType:  d.DefectType,
		Severity:    d.Severity,
		Quantity:    d.Quantity,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}
}

func toInspectionResponse(i *entity.Inspection, defects []*entity.QualityDefect) *dto.InspectionResponse {
	next := entity.InspectionTransitions.Next(i.Status)
	ns := make([]string, 0, len(next))
	for _, n := range next {
		ns = append(ns, string(n))
	}
	out := &dto.InspectionResponse{
		ID:               i.ID,
		InspectionNumber: i.InspectionNumber,
		ProductID:        i.ProductID,
		OrderID:          i.OrderID,
		LotNumber:        i.LotNumber,
		InspectorID:      i.InspectorID,
		Status:           string(i.Status),
		SampleSize:       i.SampleSize,
		Notes:            i.Notes,
		InspectedAt:      i.InspectedAt,
		CreatedAt:        i.CreatedAt,
		UpdatedAt:        i.UpdatedAt,
		NextStatus:       ns,
	}
	for _, d := range defects {
		out.Defects = append(out.Defects, toDefectResponse(d))
	}
	return out
}
