package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/telar-erp/internal/application/auth"
	"github.com/jhoicas/telar-erp/internal/bootstrap"
	"github.com/jhoicas/telar-erp/internal/infrastructure/cache"
	"github.com/jhoicas/telar-erp/internal/infrastructure/events"
	"github.com/jhoicas/telar-erp/internal/infrastructure/excel"
	"github.com/jhoicas/telar-erp/internal/infrastructure/memory"
	"github.com/jhoicas/telar-erp/internal/infrastructure/metrics"
	"github.com/jhoicas/telar-erp/internal/infrastructure/pdf"
	"github.com/jhoicas/telar-erp/internal/infrastructure/postgres"
	"github.com/jhoicas/telar-erp/pkg/config"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

// runtime dependencias abiertas por un comando; close las libera en orden inverso.
type runtime struct {
	cfg     *config.Config
	log     *logger.Logger
	pool    *pgxpool.Pool // nil con STORAGE_DRIVER=memory
	metrics *metrics.Metrics
	svc     *bootstrap.Services
	closers []func() error
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	return cfg, log, nil
}

// openRuntime conecta almacenamiento, caché y eventos y arma los casos de uso.
func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, log: log}
	if cfg.Metrics.Enabled {
		rt.metrics = metrics.New("telar")
	}

	infra := bootstrap.Infra{
		PDF:    pdf.NewMarotoRenderer(),
		Sheets: excel.NewWriter(),
		JWT: auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		},
		Log: log,
	}

	switch cfg.Storage.Driver {
	case "memory":
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		db := memory.New()
		infra.Store, infra.TxRunner = db.Store(), db
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
		if err != nil {
			return nil, err
		}
		rt.pool = pool
		rt.closers = append(rt.closers, func() error { pool.Close(); return nil })
		infra.Store, infra.TxRunner = postgres.NewStore(pool), postgres.NewTxRunner(pool)
	}

	c, closeCache, err := cache.New(ctx, cfg.Cache, log.Component("cache"))
	if err != nil {
		_ = rt.close()
		return nil, err
	}
	rt.closers = append(rt.closers, closeCache)
	infra.Cache = c

	pub, err := events.New(cfg.Events, log.Component("events"))
	if err != nil {
		_ = rt.close()
		return nil, err
	}
	rt.closers = append(rt.closers, pub.Close)
	var counter events.Counter
	if rt.metrics != nil {
		counter = rt.metrics
	}
	infra.Events = events.WithCounter(pub, counter)

	rt.svc = bootstrap.NewServices(infra)
	return rt, nil
}

func (rt *runtime) close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i]())
	}
	rt.closers = nil
	return errors.Join(errs...)
}
