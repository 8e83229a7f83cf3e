package repository

import (
	"context"
	"time"

	"github.com/jhoicas/telar-erp/internal/domain/entity"
)

// MachineFilter filtros del listado de máquinas.
type MachineFilter struct {
	Page
	Status entity.MachineStatus
	Type   string
}

// MachineRepository define el puerto de persistencia para Machine.
type MachineRepository interface {
	Create(ctx context.Context, m *entity.Machine) error
	GetByID(ctx context.Context, id string) (*entity.Machine, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Machine, error)
	GetByCode(ctx context.Context, code string) (*entity.Machine, error)
	// Update modifica los datos descriptivos; nunca el estado.
	Update(ctx context.Context, m *entity.Machine) error
	UpdateStatus(ctx context.Context, m *entity.Machine) error
	List(ctx context.Context, f MachineFilter) ([]*entity.Machine, int, error)
	CountByStatus(ctx context.Context) (map[entity.MachineStatus]int, error)
}

// ScheduleFilter filtros de mantenimientos programados.
type ScheduleFilter struct {
	Page
	MachineID string
	Status    entity.MaintenanceStatus
	DueBefore *time.Time
}

// MaintenanceScheduleRepository define el puerto de persistencia para MaintenanceSchedule.
type MaintenanceScheduleRepository interface {
	Create(ctx context.Context, s *entity.MaintenanceSchedule) error
	GetByID(ctx context.Context, id string) (*entity.MaintenanceSchedule, error)
	GetForUpdate(ctx context.Context, id string) (*entity.MaintenanceSchedule, error)
	Update(ctx context.Context, s *entity.MaintenanceSchedule) error
	List(ctx context.Context, f ScheduleFilter) ([]*entity.MaintenanceSchedule, int, error)
	// ListDueAcrossTenants es un método de sistema (scheduler): devuelve los SCHEDULED con
	// vencimiento anterior a before de todas las empresas.
	ListDueAcrossTenants(ctx context.Context, before time.Time) ([]*entity.MaintenanceSchedule, error)
}

// BreakdownFilter filtros de reportes de falla.
type BreakdownFilter struct {
	Page
	MachineID string
	Status    entity.BreakdownStatus
}

// BreakdownRepository define el puerto de persistencia para BreakdownReport.
type BreakdownRepository interface {
	Create(ctx context.Context, b *entity.BreakdownReport) error
	GetByID(ctx context.Context, id string) (*entity.BreakdownReport, error)
	GetForUpdate(ctx context.Context, id string) (*entity.BreakdownReport, error)
	Update(ctx context.Context, b *entity.BreakdownReport) error
	List(ctx context.Context, f BreakdownFilter) ([]*entity.BreakdownReport, int, error)
	CountOpen(ctx context.Context) (int, error)
}
