package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/swaggo/swag"

	_ "github.com/jhoicas/telar-erp/docs"
	"github.com/jhoicas/telar-erp/internal/bootstrap"
	"github.com/jhoicas/telar-erp/internal/infrastructure/cache"
	"github.com/jhoicas/telar-erp/internal/infrastructure/postgres"
	"github.com/jhoicas/telar-erp/internal/infrastructure/scheduler"
	apphttp "github.com/jhoicas/telar-erp/internal/interfaces/http"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func newServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Levanta la API HTTP y los trabajos programados",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "aplicar migraciones pendientes antes de arrancar")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.close(); err != nil {
			rt.log.Warn().Err(err).Msg("cerrando dependencias")
		}
	}()
	cfg, log := rt.cfg, rt.log
	log.Info().Str("env", cfg.App.Env).Str("app", cfg.App.Name).Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	if migrate && rt.pool != nil {
		m, err := postgres.NewMigrator(rt.pool, log.Component("migrate"))
		if err != nil {
			return err
		}
		err = m.Up(ctx)
		_ = m.Close()
		if err != nil {
			return err
		}
	}

	if cfg.Scheduler.Enabled {
		var locker scheduler.Locker = scheduler.LocalLocker{}
		if cfg.Cache.Driver == "redis" {
			rdb := cache.NewClient(cfg.Cache)
			rt.closers = append(rt.closers, rdb.Close)
			locker = scheduler.NewRedisLocker(rdb)
		}
		var recorder scheduler.Recorder
		if rt.metrics != nil {
			recorder = rt.metrics
		}
		sched := scheduler.New(cfg.Scheduler, rt.svc.Sweeper, locker, recorder, log)
		if err := sched.Start(); err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
		defer sched.Stop()
	}

	opts := bootstrap.HTTPOptions{
		AppName:      cfg.App.Name,
		JWTSecret:    cfg.JWT.Secret,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		BodyLimit:    cfg.HTTP.BodyLimitMB * 1024 * 1024,
	}
	if rt.metrics != nil {
		opts.Requests = rt.metrics
		opts.MetricsHandler = rt.metrics.Handler()
		opts.MetricsPath = cfg.Metrics.Path
	}
	if cfg.Swagger.Enabled {
		path, err := swaggerDoc(log)
		if err != nil {
			log.Warn().Err(err).Msg("swagger deshabilitado")
		} else {
			opts.SwaggerFile, opts.SwaggerPath = path, cfg.Swagger.Path
		}
	}
	app := apphttp.NewApp(rt.svc.RouterDeps(opts, log))

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr()).Msg("servidor HTTP escuchando")
		errCh <- app.Listen(cfg.HTTP.Addr())
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("servidor HTTP: %w", err)
	case <-ctx.Done():
	}
	log.Info().Msg("apagando servidor")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// swaggerDoc usa docs/swagger.json si existe; si no, escribe el documento registrado por swag.
func swaggerDoc(log *logger.Logger) (string, error) {
	if _, err := os.Stat(swaggerFile); err == nil {
		return swaggerFile, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	doc, err := swag.ReadDoc()
	if err != nil {
		return "", err
	}
	path := filepath.Join(os.TempDir(), "telar-swagger.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return "", err
	}
	log.Debug().Str("path", path).Msg("swagger generado desde docs embebidos")
	return path, nil
}
