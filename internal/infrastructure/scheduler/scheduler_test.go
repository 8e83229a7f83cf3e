package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/telar-erp/internal/infrastructure/scheduler"
	"github.com/jhoicas/telar-erp/pkg/config"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

type fakeSweeper struct {
	calls int
	ahead time.Duration
	err   error
}

func (f *fakeSweeper) Sweep(_ context.Context, ahead time.Duration) (int, error) {
	f.calls++
	f.ahead = ahead
	return 2, f.err
}

type busyLocker struct{}

func (busyLocker) Obtain(context.Context, string, time.Duration) (func(context.Context) error, error) {
	return nil, scheduler.ErrLocked
}

type recorder map[string]int

func (r recorder) JobRun(job, result string) { r[job+"/"+result]++ }

func cfg() config.SchedulerConfig {
	return config.SchedulerConfig{Enabled: true, MaintenanceSpec: "@every 1h", MaintenanceAhead: 48 * time.Hour, LockTTL: time.Minute}
}

func TestRunMaintenance_EjecutaBarrido(t *testing.T) {
	sw := &fakeSweeper{}
	rec := recorder{}
	s := scheduler.New(cfg(), sw, nil, rec, logger.Nop())

	require.NoError(t, s.RunMaintenance(context.Background()))
	assert.Equal(t, 1, sw.calls)
	assert.Equal(t, 48*time.Hour, sw.ahead)
	assert.Equal(t, 1, rec[scheduler.JobMaintenanceDue+"/"+scheduler.ResultOK])
}

func TestRunMaintenance_LockOcupadoOmite(t *testing.T) {
	sw := &fakeSweeper{}
	rec := recorder{}
	s := scheduler.New(cfg(), sw, busyLocker{}, rec, logger.Nop())

	require.NoError(t, s.RunMaintenance(context.Background()))
	assert.Zero(t, sw.calls)
	assert.Equal(t, 1, rec[scheduler.JobMaintenanceDue+"/"+scheduler.ResultSkipped])
}

func TestRunMaintenance_ErrorDelBarrido(t *testing.T) {
	sw := &fakeSweeper{err: errors.New("db caída")}
	rec := recorder{}
	s := scheduler.New(cfg(), sw, nil, rec, logger.Nop())

	assert.Error(t, s.RunMaintenance(context.Background()))
	assert.Equal(t, 1, rec[scheduler.JobMaintenanceDue+"/"+scheduler.ResultError])
}

func TestStart_ExpresionInvalida(t *testing.T) {
	c := cfg()
	c.MaintenanceSpec = "no es cron"
	s := scheduler.New(c, &fakeSweeper{}, nil, nil, logger.Nop())
	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s := scheduler.New(cfg(), &fakeSweeper{}, nil, nil, logger.Nop())
	require.NoError(t, s.Start())
	s.Stop()
}
