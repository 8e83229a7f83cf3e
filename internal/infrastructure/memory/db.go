// Package memory implementa los puertos de repositorio en memoria. Se usa en tests y con
// STORAGE_DRIVER=memory; aplica las mismas reglas de tenant y unicidad que PostgreSQL.
package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

var _ ports.TxRunner = (*DB)(nil)

// table guarda filas por id manteniendo el orden de inserción (listados más recientes primero).
type table[T any] struct {
	rows    map[string]T
	order   []string
	company func(*T) string
}

func newTable[T any](company func(*T) string) *table[T] {
	return &table[T]{rows: make(map[string]T), company: company}
}

func (t *table[T]) clone() *table[T] {
	return &table[T]{rows: maps.Clone(t.rows), order: slices.Clone(t.order), company: t.company}
}

// get devuelve una copia si la fila existe y pertenece al tenant.
func (t *table[T]) get(companyID, id string) (*T, bool) {
	v, ok := t.rows[id]
	if !ok || (t.company != nil && t.company(&v) != companyID) {
		return nil, false
	}
	return &v, true
}

func (t *table[T]) put(id string, v T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = v
}

func (t *table[T]) delete(id string) {
	delete(t.rows, id)
	t.order = slices.DeleteFunc(t.order, func(s string) bool { return s == id })
}

// find recorre las filas del tenant, de la más reciente a la más antigua.
func (t *table[T]) find(companyID string, match func(*T) bool) []*T {
	var out []*T
	for i := len(t.order) - 1; i >= 0; i-- {
		v := t.rows[t.order[i]]
		if t.company != nil && t.company(&v) != companyID {
			continue
		}
		if match == nil || match(&v) {
			out = append(out, &v)
		}
	}
	return out
}

func (t *table[T]) exists(companyID string, match func(*T) bool) bool {
	for _, v := range t.rows {
		if t.company != nil && t.company(&v) != companyID {
			continue
		}
		if match(&v) {
			return true
		}
	}
	return false
}

func paginate[T any](items []*T, p repository.Page) ([]*T, int) {
	p = p.Normalize()
	total := len(items)
	if p.Offset >= total {
		return []*T{}, total
	}
	end := min(p.Offset+p.Limit, total)
	return items[p.Offset:end], total
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// DB es la base en memoria. Las transacciones se serializan con txMu y se revierten
// restaurando una copia del estado; escrituras concurrentes fuera de transacción durante
// un rollback se pierden (aceptable para tests y demos).
type DB struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	st   *state
}

// New crea una base vacía.
func New() *DB {
	return &DB{st: newState()}
}

// Store devuelve los repositorios sobre esta base.
func (db *DB) Store() repository.Store {
	return repository.Store{
		Companies:         &CompanyRepo{db: db},
		Users:             &UserRepo{db: db},
		Products:          &ProductRepo{db: db},
		Locations:         &LocationRepo{db: db},
		Stock:             &StockRepo{db: db},
		Movements:         &MovementRepo{db: db},
		Customers:         &CustomerRepo{db: db},
		Orders:            &OrderRepo{db: db},
		Machines:          &MachineRepo{db: db},
		Schedules:         &ScheduleRepo{db: db},
		Breakdowns:        &BreakdownRepo{db: db},
		Inspections:       &InspectionRepo{db: db},
		ComplianceReports: &ComplianceRepo{db: db},
		Invoices:          &InvoiceRepo{db: db},
		Bills:             &BillRepo{db: db},
	}
}

// Run ejecuta fn de forma serializada; si fn falla se restaura el estado previo.
func (db *DB) Run(ctx context.Context, fn func(s repository.Store) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.RLock()
	snapshot := db.st.clone()
	db.mu.RUnlock()

	if err := fn(db.Store()); err != nil {
		db.mu.Lock()
		db.st = snapshot
		db.mu.Unlock()
		return err
	}
	return nil
}

// read ejecuta fn con bloqueo de lectura después de resolver el tenant.
func (db *DB) read(ctx context.Context, fn func(st *state, companyID string) error) error {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(db.st, companyID)
}

// write ejecuta fn con bloqueo exclusivo después de resolver el tenant.
func (db *DB) write(ctx context.Context, fn func(st *state, companyID string) error) error {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return fn(db.st, companyID)
}
