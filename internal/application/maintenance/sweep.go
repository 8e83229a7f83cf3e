package maintenance

import (
	"context"
	"time"

	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

// DueSweeper recorre los mantenimientos por vencer de todas las empresas y publica maintenance.due.
// Solo notifica: nunca cambia estados.
type DueSweeper struct {
	schedules repository.MaintenanceScheduleRepository
	events    ports.EventPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewDueSweeper construye el barrido usado por el scheduler.
func NewDueSweeper(schedules repository.MaintenanceScheduleRepository, events ports.EventPublisher, log *logger.Logger) *DueSweeper {
	return &DueSweeper{schedules: schedules, events: events, log: log, now: time.Now}
}

// Sweep publica un evento por cada mantenimiento SCHEDULED que vence antes de now+ahead.
// Devuelve la cantidad encontrada.
func (s *DueSweeper) Sweep(ctx context.Context, ahead time.Duration) (int, error) {
	now := s.now()
	due, err := s.schedules.ListDueAcrossTenants(ctx, now.Add(ahead))
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}
	events := make([]ports.Event, 0, len(due))
	for _, sch := range due {
		events = append(events, ports.Event{
			Type:      ports.EventMaintenanceDue,
			CompanyID: sch.CompanyID,
			EntityID:  sch.ID,
			To:        sch.DueDate.UTC().Format(time.RFC3339),
			At:        now,
		})
	}
	ports.Notify(ctx, s.events, s.log, events...)
	s.log.Info().Int("due", len(due)).Dur("ahead", ahead).Msg("barrido de mantenimientos vencidos")
	return len(due), nil
}
