package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// NewStore construye todos los repositorios sobre q (pool o tx).
func NewStore(q Querier) repository.Store {
	return repository.Store{
		Companies:         NewCompanyRepository(q),
		Users:             NewUserRepository(q),
		Products:          NewProductRepository(q),
		Locations:         NewLocationRepository(q),
		Stock:             NewStockRepository(q),
		Movements:         NewMovementRepository(q),
		Customers:         NewCustomerRepository(q),
		Orders:            NewOrderRepository(q),
		Machines:          NewMachineRepository(q),
		Schedules:         NewScheduleRepository(q),
		Breakdowns:        NewBreakdownRepository(q),
		Inspections:       NewInspectionRepository(q),
		ComplianceReports: NewComplianceRepository(q),
		Invoices:          NewInvoiceRepository(q),
		Bills:             NewBillRepository(q),
	}
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con un Store atado a la tx y hace Commit o Rollback.
// El error de fn se devuelve sin envolver para que los errores de dominio lleguen intactos.
func (r *TxRunner) Run(ctx context.Context, fn func(s repository.Store) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewStore(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
