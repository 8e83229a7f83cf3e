package maintenance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

// BreakdownUseCase reportes de falla. Reportar una falla no cambia el estado de la máquina:
// eso es una transición explícita de la máquina.
type BreakdownUseCase struct {
	d Deps
}

// NewBreakdownUseCase construye el caso de uso.
func NewBreakdownUseCase(d Deps) *BreakdownUseCase {
	return &BreakdownUseCase{d: d}
}

// Create registra una falla OPEN.
func (uc *BreakdownUseCase) Create(ctx context.Context, in dto.CreateBreakdownRequest) (*dto.BreakdownResponse, error) {
	m, err := uc.d.Store.Machines.GetByID(ctx, in.MachineID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: máquina inexistente", domain.ErrInvalidInput)
	}
	now := time.Now()
	b := &entity.BreakdownReport{
		ID:          uuid.New().String(),
		MachineID:   in.MachineID,
		ReportedBy:  tenant.ActorFrom(ctx).UserID,
		Description: in.Description,
		Severity:    in.Severity,
		Status:      entity.BreakdownOpen,
		ReportedAt:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.d.Store.Breakdowns.Create(ctx, b); err != nil {
		return nil, err
	}
	if b.Severity == entity.SeverityCritical {
		uc.d.Log.Warn().Str("machine", m.Code).Str("breakdown", b.ID).Msg("falla crítica reportada")
	}
	return toBreakdownResponse(b), nil
}

// GetByID obtiene un reporte.
func (uc *BreakdownUseCase) GetByID(ctx context.Context, id string) (*dto.BreakdownResponse, error) {
	b, err := uc.d.Store.Breakdowns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	return toBreakdownResponse(b), nil
}

// List filtra por máquina y estado.
func (uc *BreakdownUseCase) List(ctx context.Context, in dto.BreakdownFilterRequest) (*dto.ListResponse[dto.BreakdownResponse], error) {
	in.DefaultPage()
	status := entity.BreakdownStatus(in.Status)
	if status != "" && !entity.BreakdownTransitions.Known(status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	list, total, err := uc.d.Store.Breakdowns.List(ctx, repository.BreakdownFilter{
		Page:      repository.Page{Limit: in.Limit, Offset: in.Offset},
		MachineID: in.MachineID,
		Status:    status,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.BreakdownResponse, 0, len(list))
	for _, b := range list {
		items = append(items, *toBreakdownResponse(b))
	}
	out := dto.NewList(items, in.Limit, in.Offset, total)
	return &out, nil
}

// Transition inicia o resuelve la falla. Resolver exige resolution y registra resolved_at
// y el tiempo de parada en minutos desde el reporte.
func (uc *BreakdownUseCase) Transition(ctx context.Context, id string, in dto.BreakdownTransitionRequest) (*dto.BreakdownResponse, error) {
	to := entity.BreakdownStatus(in.Status)
	if to == entity.BreakdownResolved && strings.TrimSpace(in.Resolution) == "" {
		return nil, fmt.Errorf("%w: resolution es obligatorio al resolver", domain.ErrInvalidInput)
	}
	var b *entity.BreakdownReport
	err := uc.d.TxRunner.Run(ctx, func(s repository.Store) error {
		cur, err := s.Breakdowns.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return domain.ErrNotFound
		}
		b = cur
		if cur.Status == to {
			return nil
		}
		if err := entity.BreakdownTransitions.Validate(cur.Status, to); err != nil {
			return err
		}
		now := time.Now()
		cur.Status = to
		cur.UpdatedAt = now
		if to == entity.BreakdownResolved {
			cur.ResolvedAt = &now
			cur.Resolution = in.Resolution
			cur.DowntimeMinutes = int(now.Sub(cur.ReportedAt).Minutes())
		}
		return s.Breakdowns.Update(ctx, cur)
	})
	if err != nil {
		return nil, err
	}
	return toBreakdownResponse(b), nil
}

func toBreakdownResponse(b *entity.BreakdownReport) *dto.BreakdownResponse {
	return &dto.BreakdownResponse{
		ID:              b.ID,
		MachineID:       b.MachineID,
		ReportedBy:      b.ReportedBy,
		Description:     b.Description,
		Severity:        b.Severity,
		Status:          string(b.Status),
		ReportedAt:      b.ReportedAt,
		ResolvedAt:      b.ResolvedAt,
		Resolution:      b.Resolution,
		DowntimeMinutes: b.DowntimeMinutes,
	}
}
