package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
)

// QueryUseCase consultas de stock y kardex.
type QueryUseCase struct {
	stock     repository.StockRepository
	movements repository.StockMovementRepository
	locations repository.LocationRepository
	products  repository.ProductRepository
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(
	stock repository.StockRepository,
	movements repository.StockMovementRepository,
	locations repository.LocationRepository,
	products repository.ProductRepository,
) *QueryUseCase {
	return &QueryUseCase{stock: stock, movements: movements, locations: locations, products: products}
}

// StockByLocation stock de todos los productos de una ubicación.
func (uc *QueryUseCase) StockByLocation(ctx context.Context, locationID string) ([]dto.StockResponse, error) {
	loc, err := uc.locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrNotFound
	}
	rows, err := uc.stock.ListByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return toStockResponses(rows), nil
}

// StockByProduct stock de un producto en cada ubicación.
func (uc *QueryUseCase) StockByProduct(ctx context.Context, productID string) ([]dto.StockResponse, error) {
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	rows, err := uc.stock.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toStockResponses(rows), nil
}

// Movements kardex filtrado por producto, ubicación, tipo y rango de fechas.
func (uc *QueryUseCase) Movements(ctx context.Context, in dto.MovementFilterRequest) (*dto.ListResponse[dto.MovementResponse], error) {
	in.DefaultPage()
	from, to, err := in.Bounds()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	list, total, err := uc.movements.List(ctx, repository.MovementFilter{
		Page:       repository.Page{Limit: in.Limit, Offset: in.Offset},
		Period:     repository.Period{From: from, To: to},
		ProductID:  in.ProductID,
		LocationID: in.LocationID,
		Type:       entity.MovementType(in.Type),
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, ToMovementResponse(m))
	}
	out := dto.NewList(items, in.Limit, in.Offset, total)
	return &out, nil
}

func toStockResponses(rows []*entity.LocationInventory) []dto.StockResponse {
	out := make([]dto.StockResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.StockResponse{
			ProductID:  r.ProductID,
			LocationID: r.LocationID,
			Quantity:   r.Quantity,
			UpdatedAt:  r.UpdatedAt,
		})
	}
	return out
}
