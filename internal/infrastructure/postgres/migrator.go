package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/jhoicas/telar-erp/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// Migrator aplica las migraciones embebidas con goose.
type Migrator struct {
	db  *sql.DB
	log *logger.Logger
}

// NewMigrator abre un *sql.DB sobre el pool (goose trabaja con database/sql).
func NewMigrator(pool *pgxpool.Pool, log *logger.Logger) (*Migrator, error) {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, err
	}
	goose.SetLogger(goose.NopLogger())
	return &Migrator{db: stdlib.OpenDBFromPool(pool), log: log}, nil
}

// Up aplica las migraciones pendientes.
func (m *Migrator) Up(ctx context.Context) error {
	if err := goose.UpContext(ctx, m.db, migrationsDir); err != nil {
		if isNoMigrationErr(err) {
			m.log.Info().Msg("sin migraciones pendientes")
			return nil
		}
		return fmt.Errorf("migrate up: %w", err)
	}
	m.log.Info().Msg("migraciones aplicadas")
	return nil
}

// Down revierte steps migraciones (mínimo 1); all=true revierte todas.
func (m *Migrator) Down(ctx context.Context, steps int, all bool) error {
	if all {
		if err := goose.DownToContext(ctx, m.db, migrationsDir, 0); err != nil && !isNoMigrationErr(err) {
			return fmt.Errorf("migrate down: %w", err)
		}
		m.log.Info().Str("mode", "all").Msg("migraciones revertidas")
		return nil
	}
	if steps <= 0 {
		steps = 1
	}
	for i := 0; i < steps; i++ {
		if err := goose.DownContext(ctx, m.db, migrationsDir); err != nil {
			if isNoMigrationErr(err) {
				break
			}
			return fmt.Errorf("migrate down: %w", err)
		}
	}
	m.log.Info().Int("steps", steps).Msg("migraciones revertidas")
	return nil
}

// Status devuelve la versión actual del esquema.
func (m *Migrator) Status(ctx context.Context) (int64, error) {
	v, err := goose.GetDBVersionContext(ctx, m.db)
	if err != nil {
		return 0, fmt.Errorf("migrate status: %w", err)
	}
	return v, nil
}

// Close libera el *sql.DB.
func (m *Migrator) Close() error {
	return m.db.Close()
}

func isNoMigrationErr(err error) bool {
	return errors.Is(err, goose.ErrNoNextVersion) || errors.Is(err, goose.ErrNoMigrationFiles) ||
		errors.Is(err, goose.ErrNoCurrentVersion)
}
