package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

// Querier es lo común entre *pgxpool.Pool y pgx.Tx: los repositorios funcionan con ambos.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// violatedConstraint nombre de la restricción que rechazó la sentencia, o "".
func violatedConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// isForeignKeyViolation 23503: fila referenciada por otra (borrado) o referencia inexistente.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

// mapErr traduce errores de PostgreSQL a errores de dominio.
func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %s", domain.ErrConflict, op)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// notFound devuelve (nil, nil) para pgx.ErrNoRows; cualquier otro error se envuelve.
func notFound[T any](op string, v *T, err error) (*T, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

// affected devuelve ErrNotFound si la sentencia no tocó filas.
func affected(op string, tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// nullIfEmpty convierte "" en NULL para columnas uuid opcionales.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// where arma condiciones con placeholders numerados. La primera siempre es company_id.
type where struct {
	conds []string
	args  []any
}

func tenantWhere(ctx context.Context, column string) (*where, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	w := &where{}
	w.add(column+" = ?", companyID)
	return w, nil
}

// add agrega cond reemplazando ? por el siguiente placeholder.
func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(w.args)), 1))
}

// arg agrega un argumento sin condición (SET, VALUES) y devuelve su placeholder.
func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *where) period(column string, p repository.Period) {
	if !p.From.IsZero() {
		w.add(column+" >= ?", p.From)
	}
	if !p.To.IsZero() {
		w.add(column+" < ?", p.To)
	}
}

func (w *where) sql() string {
	return strings.Join(w.conds, " AND ")
}

// page agrega LIMIT/OFFSET normalizados y devuelve el sufijo y los argumentos completos.
func (w *where) page(p repository.Page) (string, []any) {
	p = p.Normalize()
	n := len(w.args)
	args := append(append([]any{}, w.args...), p.Limit, p.Offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2), args
}

// count ejecuta SELECT COUNT(*) sobre from con las condiciones acumuladas.
func (w *where) count(ctx context.Context, q Querier, from string) (int, error) {
	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM "+from+" WHERE "+w.sql(), w.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", from, err)
	}
	return total, nil
}

// collect recorre rows aplicando scan y cierra el cursor.
func collect[T any](op string, rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]*T, error) {
	defer rows.Close()
	var out []*T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// countByStatus agrupa las filas de la tabla del tenant por su columna status.
func countByStatus[S ~string](ctx context.Context, q Querier, table, companyID string) (map[S]int, error) {
	rows, err := q.Query(ctx, "SELECT status, COUNT(*) FROM "+table+" WHERE company_id = $1 GROUP BY status", companyID)
	if err != nil {
		return nil, fmt.Errorf("count %s by status: %w", table, err)
	}
	defer rows.Close()
	out := make(map[S]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("count %s by status: scan: %w", table, err)
		}
		out[S(status)] = n
	}
	return out, rows.Err()
}
