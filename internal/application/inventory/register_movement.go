package inventory

import (
	"context"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP al motor de inventario.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, in dto.RegisterMovementRequest) ([]dto.MovementResponse, error) {
	movs, err := uc.RegisterMovement(ctx, Movement{
		ProductID:      in.ProductID,
		LocationID:     in.LocationID,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		Type:           entity.MovementType(in.Type),
		Quantity:       in.Quantity,
		UnitCost:       in.UnitCost,
		Reference:      in.Reference,
		Notes:          in.Notes,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, ToMovementResponse(m))
	}
	return out, nil
}

// ToMovementResponse mapea una fila del kardex a su DTO.
func ToMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		ProductID:     m.ProductID,
		LocationID:    m.LocationID,
		Type:          string(m.Type),
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		TotalCost:     m.TotalCost,
		Reference:     m.Reference,
		Notes:         m.Notes,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}
