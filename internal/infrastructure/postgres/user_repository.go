package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios; el email es único en todo el sistema (sin distinguir mayúsculas).
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, company_id, email, password_hash, name, role, status, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.CompanyID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return &u, err
}

// Create persiste un usuario en la empresa del contexto.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	user.CompanyID = companyID
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.q.Exec(ctx, query,
		user.ID, user.CompanyID, user.Email, user.PasswordHash, user.Name,
		user.Role, user.Status, user.CreatedAt, user.UpdatedAt,
	)
	return mapErr("insert user", err)
}

// GetByID busca el usuario dentro del tenant.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, err
	}
	w.add("id = ?", id)
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+w.sql(), w.args...))
	return notFound("get user", u, err)
}

// Update cambia nombre, rol, estado y hash; el email no se modifica.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return err
	}
	w.add("id = ?", user.ID)
	query := `UPDATE users SET name = ` + w.arg(user.Name) + `, role = ` + w.arg(user.Role) +
		`, status = ` + w.arg(user.Status) + `, password_hash = ` + w.arg(user.PasswordHash) +
		`, updated_at = ` + w.arg(user.UpdatedAt) + ` WHERE ` + w.sql()
	tag, err := r.q.Exec(ctx, query, w.args...)
	return affected("update user", tag, err)
}

// List usuarios del tenant, más recientes primero.
func (r *UserRepo) List(ctx context.Context, page repository.Page) ([]*entity.User, int, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, 0, err
	}
	total, err := w.count(ctx, r.q, "users")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(page)
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users WHERE `+w.sql()+` ORDER BY created_at DESC, id`+suffix, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	out, err := collect("list users", rows, scanUser)
	return out, total, err
}

// FindByEmailForLogin busca en todas las empresas: el login aún no conoce el tenant.
func (r *UserRepo) FindByEmailForLogin(ctx context.Context, email string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	return notFound("find user by email", u, err)
}
