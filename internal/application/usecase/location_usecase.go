package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
)

// LocationUseCase casos de uso para ubicaciones (bodegas, planta, tiendas).
type LocationUseCase struct {
	repo  repository.LocationRepository
	stock repository.StockRepository
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository, stock repository.StockRepository) *LocationUseCase {
	return &LocationUseCase{repo: repo, stock: stock}
}

// Create crea una ubicación.
func (uc *LocationUseCase) Create(ctx context.Context, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	now := time.Now()
	loc := &entity.Location{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Type:      in.Type,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, loc); err != nil {
		return nil, err
	}
	return toLocationResponse(loc), nil
}

// GetByID obtiene una ubicación.
func (uc *LocationUseCase) GetByID(ctx context.Context, id string) (*dto.LocationResponse, error) {
	loc, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toLocationResponse(loc), nil
}

// List lista ubicaciones de la empresa.
func (uc *LocationUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ListResponse[dto.LocationResponse], error) {
	page.DefaultPage()
	list, total, err := uc.repo.List(ctx, repository.Page{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	out := dto.NewList(items, page.Limit, page.Offset, total)
	return &out, nil
}

// Update actualiza nombre, tipo o dirección.
func (uc *LocationUseCase) Update(ctx context.Context, id string, in dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	loc, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		loc.Name = *in.Name
	}
	if in.Type != nil {
		loc.Type = *in.Type
	}
	if in.Address != nil {
		loc.Address = *in.Address
	}
	loc.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, loc); err != nil {
		return nil, err
	}
	return toLocationResponse(loc), nil
}

// Delete elimina la ubicación solo si no tiene stock; en otro caso ErrConflict.
func (uc *LocationUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	has, err := uc.stock.HasStock(ctx, id)
	if err != nil {
		return err
	}
	if has {
		return domain.ErrConflict
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *LocationUseCase) get(ctx context.Context, id string) (*entity.Location, error) {
	loc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	return loc, nil
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:        l.ID,
		Name:      l.Name,
		Type:      l.Type,
		Address:   l.Address,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
