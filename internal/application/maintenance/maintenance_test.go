package maintenance_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/application/maintenance"
	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
	"github.com/jhoicas/telar-erp/internal/infrastructure/memory"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

type recorder struct {
	mu     sync.Mutex
	events []ports.Event
}

func (r *recorder) Publish(_ context.Context, events ...ports.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *recorder) Close() error { return nil }

type fixture struct {
	ctx        context.Context
	store      repository.Store
	deps       maintenance.Deps
	events     *recorder
	machines   *maintenance.MachineUseCase
	schedules  *maintenance.ScheduleUseCase
	breakdowns *maintenance.BreakdownUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.New()
	rec := &recorder{}
	deps := maintenance.Deps{Store: db.Store(), TxRunner: db, Events: rec, Log: logger.Nop()}
	return &fixture{
		ctx:        tenant.New(context.Background(), uuid.NewString(), uuid.NewString(), entity.RoleManager),
		store:      deps.Store,
		deps:       deps,
		events:     rec,
		machines:   maintenance.NewMachineUseCase(deps),
		schedules:  maintenance.NewScheduleUseCase(deps),
		breakdowns: maintenance.NewBreakdownUseCase(deps),
	}
}

func (f *fixture) machine(t *testing.T, code string) *dto.MachineResponse {
	t.Helper()
	m, err := f.machines.Create(f.ctx, dto.CreateMachineRequest{Code: code, Name: "Telar " + code, Type: entity.MachineLoom})
	require.NoError(t, err)
	return m
}

// ──────────────────────────────────────────────────────────────────────────────
// Máquinas
// ──────────────────────────────────────────────────────────────────────────────

func TestMachine_CodigoUnicoPorEmpresa(t *testing.T) {
	f := newFixture(t)
	f.machine(t, "TL-01")
	_, err := f.machines.Create(f.ctx, dto.CreateMachineRequest{Code: "TL-01", Name: "Otro", Type: entity.MachineLoom})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	other := tenant.New(context.Background(), uuid.NewString(), uuid.NewString(), entity.RoleAdmin)
	_, err = f.machines.Create(other, dto.CreateMachineRequest{Code: "TL-01", Name: "Ajeno", Type: entity.MachineLoom})
	assert.NoError(t, err, "otra empresa puede usar el mismo código")
}

func TestMachine_Transiciones(t *testing.T) {
	f := newFixture(t)
	m := f.machine(t, "TL-02")
	assert.Equal(t, "OPERATIONAL", m.Status)

	got, err := f.machines.Transition(f.ctx, m.ID, dto.TransitionRequest{Status: "BREAKDOWN"})
	require.NoError(t, err)
	assert.Equal(t, "BREAKDOWN", got.Status)

	got, err = f.machines.Transition(f.ctx, m.ID, dto.TransitionRequest{Status: "DECOMMISSIONED"})
	require.NoError(t, err)
	assert.Empty(t, got.NextStatus)

	_, err = f.machines.Transition(f.ctx, m.ID, dto.TransitionRequest{Status: "OPERATIONAL"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.Len(t, f.events.events, 2)
	assert.Equal(t, ports.EventMachineStatusChanged, f.events.events[1].Type)
	assert.Equal(t, "DECOMMISSIONED", f.events.events[1].To)
}

func TestMachine_UpdateConLecturaViejaNoRevierteElEstado(t *testing.T) {
	f := newFixture(t)
	m := f.machine(t, "TL-09")

	stale, err := f.store.Machines.GetByID(f.ctx, m.ID)
	require.NoError(t, err)
	_, err = f.machines.Transition(f.ctx, m.ID, dto.TransitionRequest{Status: string(entity.MachineDecommissioned)})
	require.NoError(t, err)

	stale.Name = "Telar renombrado"
	require.NoError(t, f.store.Machines.Update(f.ctx, stale))

	got, err := f.store.Machines.GetByID(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MachineDecommissioned, got.Status)
	assert.Equal(t, "Telar renombrado", got.Name)

	name := "Telar 9 (baja)"
	out, err := f.machines.Update(f.ctx, m.ID, dto.UpdateMachineRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, string(entity.MachineDecommissioned), out.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Mantenimiento programado
// ──────────────────────────────────────────────────────────────────────────────

func TestSchedule_CompletarRecurrenteCreaUnaOcurrencia(t *testing.T) {
	f := newFixture(t)
	m := f.machine(t, "TL-03")
	sch, err := f.schedules.Create(f.ctx, dto.CreateScheduleRequest{
		MachineID: m.ID, Title: "Lubricación", IntervalDays: 30, DueDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	_, err = f.schedules.Transition(f.ctx, sch.ID, dto.TransitionRequest{Status: "IN_PROGRESS"})
	require.NoError(t, err)
	res, err := f.schedules.Transition(f.ctx, sch.ID, dto.TransitionRequest{Status: "COMPLETED", Note: "ok"})
	require.NoError(t, err)

	assert.Equal(t, "COMPLETED", res.Schedule.Status)
	require.NotNil(t, res.Schedule.CompletedAt)
	require.NotNil(t, res.Next)
	assert.Equal(t, "SCHEDULED", res.Next.Status)
	assert.WithinDuration(t, res.Schedule.CompletedAt.AddDate(0, 0, 30), res.Next.DueDate, time.Second)

	// Repetir COMPLETED es un no-op y no duplica la ocurrencia.
	again, err := f.schedules.Transition(f.ctx, sch.ID, dto.TransitionRequest{Status: "COMPLETED"})
	require.NoError(t, err)
	assert.Nil(t, again.Next)

	list, err := f.schedules.List(f.ctx, dto.ScheduleFilterRequest{MachineID: m.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Page.Total)
}

func TestSchedule_UnicaVezNoSeRepite(t *testing.T) {
	f := newFixture(t)
	m := f.machine(t, "TL-04")
	sch, err := f.schedules.Create(f.ctx, dto.CreateScheduleRequest{MachineID: m.ID, Title: "Calibración", DueDate: time.Now()})
	require.NoError(t, err)
	_, err = f.schedules.Transition(f.ctx, sch.ID, dto.TransitionRequest{Status: "IN_PROGRESS"})
	require.NoError(t, err)
	res, err := f.schedules.Transition(f.ctx, sch.ID, dto.TransitionRequest{Status: "COMPLETED"})
	require.NoError(t, err)
	assert.Nil(t, res.Next)

	_, err = f.schedules.Transition(f.ctx, sch.ID, dto.TransitionRequest{Status: "CANCELLED"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestSchedule_FiltroDueBefore(t *testing.T) {
	f := newFixture(t)
	m := f.machine(t, "TL-05")
	now := time.Now().UTC()
	for _, days := range []int{1, 10} {
		_, err := f.schedules.Create(f.ctx, dto.CreateScheduleRequest{
			MachineID: m.ID, Title: "Revisión", DueDate: now.AddDate(0, 0, days),
		})
		require.NoError(t, err)
	}
	list, err := f.schedules.List(f.ctx, dto.ScheduleFilterRequest{DueBefore: now.AddDate(0, 0, 5).Format("2006-01-02")})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Total)

	_, err = f.schedules.List(f.ctx, dto.ScheduleFilterRequest{DueBefore: "mañana"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSchedule_MaquinaDadaDeBaja(t *testing.T) {
	f := newFixture(t)
	m := f.machine(t, "TL-06")
	_, err := f.machines.Transition(f.ctx, m.ID, dto.TransitionRequest{Status: "DECOMMISSIONED"})
	require.NoError(t, err)
	_, err = f.schedules.Create(f.ctx, dto.CreateScheduleRequest{MachineID: m.ID, Title: "x", DueDate: time.Now()})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fallas
// ──────────────────────────────────────────────────────────────────────────────

func TestBreakdown_ResolverRegistraParada(t *testing.T) {
	f := newFixture(t)
	m := f.machine(t, "TL-07")
	b, err := f.breakdowns.Create(f.ctx, dto.CreateBreakdownRequest{MachineID: m.ID, Description: "Rotura de lizos", Severity: entity.SeverityHigh})
	require.NoError(t, err)
	assert.Equal(t, "OPEN", b.Status)
	assert.Equal(t, tenant.ActorFrom(f.ctx).UserID, b.ReportedBy)

	// Reportar la falla no cambia el estado de la máquina.
	got, err := f.machines.GetByID(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "OPERATIONAL", got.Status)

	_, err = f.breakdowns.Transition(f.ctx, b.ID, dto.BreakdownTransitionRequest{Status: "RESOLVED"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "resolution obligatorio")

	res, err := f.breakdowns.Transition(f.ctx, b.ID, dto.BreakdownTransitionRequest{Status: "RESOLVED", Resolution: "Cambio de lizos"})
	require.NoError(t, err)
	assert.Equal(t, "RESOLVED", res.Status)
	require.NotNil(t, res.ResolvedAt)
	assert.GreaterOrEqual(t, res.DowntimeMinutes, 0)

	_, err = f.breakdowns.Transition(f.ctx, b.ID, dto.BreakdownTransitionRequest{Status: "IN_PROGRESS"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// ──────────────────────────────────────────────────────────────────────────────
// Barrido de vencimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestDueSweeper_PublicaPorTodasLasEmpresas(t *testing.T) {
	f := newFixture(t)
	m := f.machine(t, "TL-08")
	_, err := f.schedules.Create(f.ctx, dto.CreateScheduleRequest{MachineID: m.ID, Title: "A", DueDate: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	_, err = f.schedules.Create(f.ctx, dto.CreateScheduleRequest{MachineID: m.ID, Title: "B", DueDate: time.Now().AddDate(0, 1, 0)})
	require.NoError(t, err)

	other := tenant.New(context.Background(), uuid.NewString(), uuid.NewString(), entity.RoleAdmin)
	m2, err := f.machines.Create(other, dto.CreateMachineRequest{Code: "X-1", Name: "Tejedora", Type: entity.MachineKnitting})
	require.NoError(t, err)
	_, err = f.schedules.Create(other, dto.CreateScheduleRequest{MachineID: m2.ID, Title: "C", DueDate: time.Now().Add(-time.Hour)})
	require.NoError(t, err)

	sweeper := maintenance.NewDueSweeper(f.store.Schedules, f.events, logger.Nop())
	n, err := sweeper.Sweep(context.Background(), 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	companies := map[string]bool{}
	for _, e := range f.events.events {
		assert.Equal(t, ports.EventMaintenanceDue, e.Type)
		companies[e.CompanyID] = true
	}
	assert.Len(t, companies, 2)
}
