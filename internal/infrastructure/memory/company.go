package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
)

var (
	_ repository.CompanyRepository = (*CompanyRepo)(nil)
	_ repository.UserRepository    = (*UserRepo)(nil)
)

// CompanyRepo empresas y módulos.
type CompanyRepo struct{ db *DB }

func (r *CompanyRepo) Create(_ context.Context, c *entity.Company) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	for _, other := range r.db.st.companies.rows {
		if other.TaxID == c.TaxID || other.ID == c.ID {
			return domain.ErrDuplicate
		}
	}
	r.db.st.companies.put(c.ID, *c)
	return nil
}

func (r *CompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	c, _ := r.db.st.companies.get("", id)
	return c, nil
}

func (r *CompanyRepo) GetByTaxID(_ context.Context, taxID string) (*entity.Company, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, c := range r.db.st.companies.rows {
		if c.TaxID == taxID {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *CompanyRepo) Update(_ context.Context, c *entity.Company) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.st.companies.get("", c.ID); !ok {
		return domain.ErrNotFound
	}
	r.db.st.companies.put(c.ID, *c)
	return nil
}

func (r *CompanyRepo) ListModules(_ context.Context, companyID string) ([]*entity.CompanyModule, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	mods := r.db.st.modules.find(companyID, nil)
	slices.SortFunc(mods, func(a, b *entity.CompanyModule) int { return strings.Compare(a.ModuleName, b.ModuleName) })
	return mods, nil
}

func (r *CompanyRepo) UpsertModule(_ context.Context, m *entity.CompanyModule) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	key := m.CompanyID + "|" + m.ModuleName
	if prev, ok := r.db.st.modules.get(m.CompanyID, key); ok {
		m.ID = prev.ID
		m.CreatedAt = prev.CreatedAt
	} else if m.ID == "" {
		m.ID = uuid.NewString()
	}
	r.db.st.modules.put(key, *m)
	return nil
}

func (r *CompanyRepo) HasActiveModule(_ context.Context, companyID, moduleName string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	m, ok := r.db.st.modules.get(companyID, companyID+"|"+moduleName)
	return ok && m.Enabled(time.Now()), nil
}

// UserRepo usuarios. El email es único en todo el sistema.
type UserRepo struct{ db *DB }

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		for _, other := range st.users.rows {
			if strings.EqualFold(other.Email, u.Email) {
				return domain.ErrDuplicate
			}
		}
		u.CompanyID = companyID
		st.users.put(u.ID, *u)
		return nil
	})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (out *entity.User, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		out, _ = st.users.get(companyID, id)
		return nil
	})
	return out, err
}

func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	return r.db.write(ctx, func(st *state, companyID string) error {
		prev, ok := st.users.get(companyID, u.ID)
		if !ok {
			return domain.ErrNotFound
		}
		u.CompanyID = companyID
		u.Email = prev.Email
		st.users.put(u.ID, *u)
		return nil
	})
}

func (r *UserRepo) List(ctx context.Context, p repository.Page) (out []*entity.User, total int, err error) {
	err = r.db.read(ctx, func(st *state, companyID string) error {
		out, total = paginate(st.users.find(companyID, nil), p)
		return nil
	})
	return out, total, err
}

func (r *UserRepo) FindByEmailForLogin(_ context.Context, email string) (*entity.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.st.users.rows {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

