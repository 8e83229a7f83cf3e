package repository

import (
	"context"

	"github.com/jhoicas/telar-erp/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia para Location.
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	Update(ctx context.Context, location *entity.Location) error
	List(ctx context.Context, page Page) ([]*entity.Location, int, error)
	Delete(ctx context.Context, id string) error
}
