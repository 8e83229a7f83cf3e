package repository

import (
	"context"

	"github.com/jhoicas/telar-erp/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	List(ctx context.Context, page Page) ([]*entity.User, int, error)
	// FindByEmailForLogin busca en todas las empresas: el login aún no conoce el tenant.
	FindByEmailForLogin(ctx context.Context, email string) (*entity.User, error)
}
