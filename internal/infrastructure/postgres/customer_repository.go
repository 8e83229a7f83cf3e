package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `id, company_id, name, tax_id, email, phone, address, created_at, updated_at`

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.TaxID, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

// Create persiste un nuevo cliente. El índice parcial sobre tax_id devuelve ErrDuplicate.
func (r *CustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	customer.CompanyID = companyID
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = r.q.Exec(ctx, query,
		customer.ID, customer.CompanyID, customer.Name, customer.TaxID, customer.Email, customer.Phone,
		customer.Address, customer.CreatedAt, customer.UpdatedAt,
	)
	return mapErr("insert customer", err)
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	return r.getBy(ctx, "id", id)
}

// GetByTaxID obtiene un cliente por NIT/cédula.
func (r *CustomerRepo) GetByTaxID(ctx context.Context, taxID string) (*entity.Customer, error) {
	return r.getBy(ctx, "tax_id", taxID)
}

func (r *CustomerRepo) getBy(ctx context.Context, column, value string) (*entity.Customer, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, err
	}
	w.add(column+" = ?", value)
	c, err := scanCustomer(r.q.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE `+w.sql()+` LIMIT 1`, w.args...))
	return notFound("get customer", c, err)
}

// Update actualiza datos de contacto; el tax_id no cambia.
func (r *CustomerRepo) Update(ctx context.Context, customer *entity.Customer) error {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return err
	}
	w.add("id = ?", customer.ID)
	query := `UPDATE customers SET name = ` + w.arg(customer.Name) + `, email = ` + w.arg(customer.Email) +
		`, phone = ` + w.arg(customer.Phone) + `, address = ` + w.arg(customer.Address) +
		`, updated_at = ` + w.arg(customer.UpdatedAt) + ` WHERE ` + w.sql()
	tag, err := r.q.Exec(ctx, query, w.args...)
	return affected("update customer", tag, err)
}

// List busca por nombre o NIT, más recientes primero.
func (r *CustomerRepo) List(ctx context.Context, f repository.CustomerFilter) ([]*entity.Customer, int, error) {
	w, err := tenantWhere(ctx, "company_id")
	if err != nil {
		return nil, 0, err
	}
	if f.Search != "" {
		w.add("(name ILIKE ? OR tax_id ILIKE $"+fmt.Sprint(len(w.args)+1)+")", "%"+f.Search+"%")
	}
	total, err := w.count(ctx, r.q, "customers")
	if err != nil {
		return nil, 0, err
	}
	suffix, args := w.page(f.Page)
	rows, err := r.q.Query(ctx, `SELECT `+customerColumns+` FROM customers WHERE `+w.sql()+` ORDER BY created_at DESC, id`+suffix, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	out, err := collect("list customers", rows, scanCustomer)
	return out, total, err
}
