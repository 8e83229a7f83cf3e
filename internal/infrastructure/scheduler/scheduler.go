// Package scheduler ejecuta los trabajos periódicos (cron) con un lock distribuido,
// de modo que con varias réplicas cada disparo corre en una sola.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jhoicas/telar-erp/pkg/config"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

const (
	JobMaintenanceDue = "maintenance_due"

	ResultOK      = "ok"
	ResultError   = "error"
	ResultSkipped = "skipped"

	jobTimeout = 2 * time.Minute
)

// Sweeper barrido de mantenimientos por vencer.
type Sweeper interface {
	Sweep(ctx context.Context, ahead time.Duration) (int, error)
}

// Recorder registra el resultado de cada ejecución (métricas).
type Recorder interface {
	JobRun(job, result string)
}

// Scheduler administra los trabajos programados.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.SchedulerConfig
	sweeper  Sweeper
	locker   Locker
	recorder Recorder
	log      *logger.Logger
}

// New crea el scheduler. recorder puede ser nil.
func New(cfg config.SchedulerConfig, sweeper Sweeper, locker Locker, recorder Recorder, log *logger.Logger) *Scheduler {
	if locker == nil {
		locker = LocalLocker{}
	}
	return &Scheduler{
		cron:     cron.New(),
		cfg:      cfg,
		sweeper:  sweeper,
		locker:   locker,
		recorder: recorder,
		log:      log.Component("scheduler"),
	}
}

// Start registra los trabajos y arranca el cron. Falla si la expresión no es válida.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.MaintenanceSpec, s.runMaintenance); err != nil {
		return err
	}
	s.log.Info().Str("spec", s.cfg.MaintenanceSpec).Msg("iniciando scheduler")
	s.cron.Start()
	return nil
}

// Stop detiene el cron y espera a que terminen las ejecuciones en curso.
func (s *Scheduler) Stop() {
	s.log.Info().Msg("deteniendo scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runMaintenance() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	_ = s.RunMaintenance(ctx)
}

// RunMaintenance ejecuta el barrido una vez bajo el lock. Si otra réplica lo tiene, no hace nada.
func (s *Scheduler) RunMaintenance(ctx context.Context) error {
	release, err := s.locker.Obtain(ctx, "lock:job:"+JobMaintenanceDue, s.cfg.LockTTL)
	if errors.Is(err, ErrLocked) {
		s.log.Debug().Str("job", JobMaintenanceDue).Msg("lock tomado por otra instancia; se omite")
		s.record(JobMaintenanceDue, ResultSkipped)
		return nil
	}
	if err != nil {
		s.log.Error().Err(err).Str("job", JobMaintenanceDue).Msg("no se pudo obtener el lock")
		s.record(JobMaintenanceDue, ResultError)
		return err
	}
	defer func() {
		if err := release(context.Background()); err != nil {
			s.log.Warn().Err(err).Str("job", JobMaintenanceDue).Msg("error liberando lock")
		}
	}()

	n, err := s.sweeper.Sweep(ctx, s.cfg.MaintenanceAhead)
	if err != nil {
		s.log.Error().Err(err).Str("job", JobMaintenanceDue).Msg("falló el barrido de mantenimientos")
		s.record(JobMaintenanceDue, ResultError)
		return err
	}
	s.log.Info().Str("job", JobMaintenanceDue).Int("due", n).Msg("barrido completado")
	s.record(JobMaintenanceDue, ResultOK)
	return nil
}

func (s *Scheduler) record(job, result string) {
	if s.recorder != nil {
		s.recorder.JobRun(job, result)
	}
}
