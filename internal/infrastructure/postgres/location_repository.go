package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación del puerto LocationRepository sobre PostgreSQL.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de persistencia para ubicaciones.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

const locationColumns = `id, company_id, name, type, address, created_at, updated_at`

func scanLocation(row pgx.Row) (*entity.Location, error) {
	var l entity.Location
	err := row.Scan(&l.ID, &l.CompanyID, &l.Name, &l.Type, &l.Address, &l.CreatedAt, &l.UpdatedAt)
	return &l, err
}

// Create persiste una nueva ubicación.
func (r *LocationRepo) Create(ctx context.Context, location *entity.Location) error {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	location.CompanyID = companyID
	query := `
		INSERT INTO locations (` + locationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.q.Exec(ctx, query,
		location.ID, location.CompanyID, location.Name, location.Type, location.Address,
		location.CreatedAt, location.UpdatedAt,
	)
	return mapErr("insert location", err)
}

// GetByID obtiene una ubicación del tenant.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, err
	}
	w.add("id = ?", id)
	l, err := scanLocation(r.q.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE `+w.sql(), w.args...))
	return notFound("get location", l, err)
}

// Update actualiza nombre, tipo y dirección.
func (r *LocationRepo) Update(ctx context.Context, location *entity.Location) error {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return err
	}
	w.add("id = ?", location.ID)
	query := `UPDATE locations SET name = ` + w.arg(location.Name) + `, type = ` + w.arg(location.Type) +
		`, address = ` + w.arg(location.Address) + `, updated_at = ` + w.arg(location.UpdatedAt) +
		` WHERE ` + w.sql()
	tag, err := r.q.Exec(ctx, query, w.args...)
	return affected("update location", tag, err)
}

// List ubicaciones del tenant, más recientes primero.
func (r *LocationRepo) List(ctx context.Context, page repository.Page) ([]*entity.Location, int, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, 0, err
	}
	total, err := w.count(ctx, r.q, "locations")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(page)
	rows, err := r.q.Query(ctx, `SELECT `+locationColumns+` FROM locations WHERE `+w.sql()+` ORDER BY created_at DESC, id`+suffix, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list locations: %w", err)
	}
	out, err := collect("list locations", rows, scanLocation)
	return out, total, err
}

// Delete borra la ubicación y su stock; con movimientos registrados devuelve ErrConflict.
func (r *LocationRepo) Delete(ctx context.Context, id string) error {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return err
	}
	w.add("id = ?", id)
	var used bool
	err = r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stock_movements WHERE company_id = $1 AND location_id = $2)`, w.args...).Scan(&used)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	if used {
		return domain.ErrConflict
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM location_inventory WHERE company_id = $1 AND location_id = $2`, w.args...); err != nil {
		return mapErr("delete location stock", err)
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM locations WHERE `+w.sql(), w.args...)
	return affected("delete location", tag, err)
}
