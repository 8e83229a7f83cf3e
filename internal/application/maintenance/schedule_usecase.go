package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
)

// ScheduleUseCase mantenimiento preventivo programado.
type ScheduleUseCase struct {
	d Deps
}

// NewScheduleUseCase construye el caso de uso.
func NewScheduleUseCase(d Deps) *ScheduleUseCase {
	return &ScheduleUseCase{d: d}
}

// Create programa un mantenimiento. No se programa sobre máquinas dadas de baja.
func (uc *ScheduleUseCase) Create(ctx context.Context, in dto.CreateScheduleRequest) (*dto.ScheduleResponse, error) {
	m, err := uc.d.Store.Machines.GetByID(ctx, in.MachineID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: máquina inexistente", domain.ErrInvalidInput)
	}
	if m.Status == entity.MachineDecommissioned {
		return nil, domain.ErrConflict
	}
	if in.IntervalDays < 0 {
		return nil, fmt.Errorf("%w: interval_days negativo", domain.ErrInvalidInput)
	}
	now := time.Now()
	s := &entity.MaintenanceSchedule{
		ID:           uuid.New().String(),
		MachineID:    in.MachineID,
		Title:        in.Title,
		Description:  in.Description,
		IntervalDays: in.IntervalDays,
		DueDate:      in.DueDate,
		Status:       entity.MaintenanceScheduled,
		AssignedTo:   in.AssignedTo,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.d.Store.Schedules.Create(ctx, s); err != nil {
		return nil, err
	}
	return toScheduleResponse(s), nil
}

// GetByID obtiene un mantenimiento programado.
func (uc *ScheduleUseCase) GetByID(ctx context.Context, id string) (*dto.ScheduleResponse, error) {
	s, err := uc.d.Store.Schedules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return toScheduleResponse(s), nil
}

// List filtra por máquina, estado y vencimiento (due_before inclusivo si es una fecha).
func (uc *ScheduleUseCase) List(ctx context.Context, in dto.ScheduleFilterRequest) (*dto.ListResponse[dto.ScheduleResponse], error) {
	in.DefaultPage()
	f := repository.ScheduleFilter{
		Page:      repository.Page{Limit: in.Limit, Offset: in.Offset},
		MachineID: in.MachineID,
		Status:    entity.MaintenanceStatus(in.Status),
	}
	if f.Status != "" && !entity.MaintenanceTransitions.Known(f.Status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	if in.DueBefore != "" {
		_, before, err := dto.PeriodRequest{To: in.DueBefore}.Bounds()
		if err != nil {
			return nil, fmt.Errorf("%w: due_before: %v", domain.ErrInvalidInput, err)
		}
		f.DueBefore = &before
	}
	list, total, err := uc.d.Store.Schedules.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ScheduleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toScheduleResponse(s))
	}
	out := dto.NewList(items, in.Limit, in.Offset, total)
	return &out, nil
}

// Transition inicia, completa o cancela el mantenimiento. Completar uno recurrente crea en la
// misma transacción la siguiente ocurrencia, con vencimiento interval_days después de completarse.
func (uc *ScheduleUseCase) Transition(ctx context.Context, id string, in dto.TransitionRequest) (*dto.ScheduleTransitionResponse, error) {
	to := entity.MaintenanceStatus(in.Status)
	var cur, next *entity.MaintenanceSchedule
	err := uc.d.TxRunner.Run(ctx, func(s repository.Store) error {
		sch, err := s.Schedules.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sch == nil {
			return domain.ErrNotFound
		}
		cur = sch
		if sch.Status == to {
			return nil
		}
		if err := entity.MaintenanceTransitions.Validate(sch.Status, to); err != nil {
			return err
		}
		now := time.Now()
		sch.Status = to
		sch.UpdatedAt = now
		if in.Note != "" {
			sch.Notes = in.Note
		}
		if to == entity.MaintenanceCompleted {
			sch.CompletedAt = &now
		}
		if err := s.Schedules.Update(ctx, sch); err != nil {
			return err
		}
		if to != entity.MaintenanceCompleted {
			return nil
		}
		if next = sch.NextOccurrence(now); next == nil {
			return nil
		}
		next.ID = uuid.New().String()
		next.CreatedAt, next.UpdatedAt = now, now
		return s.Schedules.Create(ctx, next)
	})
	if err != nil {
		return nil, err
	}
	out := &dto.ScheduleTransitionResponse{Schedule: *toScheduleResponse(cur)}
	if next != nil {
		out.Next = toScheduleResponse(next)
		uc.d.Log.Debug().Str("schedule", cur.ID).Time("next_due", next.DueDate).Msg("siguiente mantenimiento programado")
	}
	return out, nil
}

func toScheduleResponse(s *entity.MaintenanceSchedule) *dto.ScheduleResponse {
	next := entity.MaintenanceTransitions.Next(s.Status)
	ns := make([]string, 0, len(next))
	for _, n := range next {
		ns = append(ns, string(n))
	}
	return &dto.ScheduleResponse{
		ID:           s.ID,
		MachineID:    s.MachineID,
		Title:        s.Title,
		Description:  s.Description,
		IntervalDays: s.IntervalDays,
		DueDate:      s.DueDate,
		Status:       string(s.Status),
		AssignedTo:   s.AssignedTo,
		CompletedAt:  s.CompletedAt,
		Notes:        s.Notes,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		NextStatus:   ns,
	}
}
