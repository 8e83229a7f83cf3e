package inventory

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/domain/inventory"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición de la empresa o de una ubicación.
type ReplenishmentUseCase struct {
	stock repository.StockRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(stock repository.StockRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{stock: stock}
}

// GenerateReplenishmentList devuelve los productos bajo punto de reorden con la cantidad
// sugerida (1.5 x punto de reorden - stock) y una prioridad: primero el mayor déficit relativo,
// luego el mayor margen bruto. locationID vacío considera el stock global de la empresa.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, locationID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	rawItems, err := uc.stock.ListBelowReorderPoint(ctx, locationID)
	if err != nil {
		return nil, err
	}
	hundred := decimal.NewFromInt(100)
	ratio := decimal.RequireFromString("1.5")

	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(rawItems))
	coverage := make(map[string]decimal.Decimal, len(rawItems))
	for _, item := range rawItems {
		qty := inventory.SuggestedReorder(item.CurrentStock, item.ReorderPoint)
		var margin decimal.Decimal
		if item.Price.IsPositive() {
			margin = item.Price.Sub(item.UnitCost).Div(item.Price).Mul(hundred).Round(2)
		}
		if item.ReorderPoint.IsPositive() {
			coverage[item.ProductID+item.LocationID] = item.CurrentStock.Div(item.ReorderPoint)
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:          item.ProductID,
			SKU:                item.SKU,
			ProductName:        item.Name,
			LocationID:         item.LocationID,
			CurrentStock:       item.CurrentStock,
			ReorderPoint:       item.ReorderPoint,
			IdealStock:         item.ReorderPoint.Mul(ratio),
			SuggestedOrderQty:  qty,
			UnitCost:           item.UnitCost,
			EstimatedOrderCost: inventory.Value(qty, item.UnitCost),
			GrossMarginPct:     margin,
		})
	}

	slices.SortStableFunc(suggestions, func(a, b dto.ReplenishmentSuggestionDTO) int {
		if c := coverage[a.ProductID+a.LocationID].Cmp(coverage[b.ProductID+b.LocationID]); c != 0 {
			return c
		}
		return b.GrossMarginPct.Cmp(a.GrossMarginPct)
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
