package orders

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/application/inventory"
	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

// Transition avanza el pedido al estado pedido en una transacción con la cabecera bloqueada.
// Pedir el estado actual es un no-op exitoso (reintentos idempotentes). Al pasar a SHIPPED con
// ubicación de despacho se registran salidas OUT por cada línea; sin stock se aborta todo.
func (uc *UseCase) Transition(ctx context.Context, id string, in dto.TransitionRequest) (*dto.OrderResponse, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	to := entity.OrderStatus(in.Status)
	actor := tenant.ActorFrom(ctx).UserID

	var (
		order *entity.Order
		from  entity.OrderStatus
	)
	err = uc.txRunner.Run(ctx, func(s repository.Store) error {
		o, err := s.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		order, from = o, o.Status
		if o.Status == to {
			return nil
		}
		if err := entity.OrderTransitions.Validate(o.Status, to); err != nil {
			return err
		}
		now := time.Now()
		if to == entity.OrderStatusShipped && o.LocationID != "" {
			if err := ship(ctx, s, o, now); err != nil {
				return err
			}
		}
		o.Status = to
		o.UpdatedAt = now
		if err := s.Orders.UpdateStatus(ctx, o); err != nil {
			return err
		}
		return s.Orders.AddStatusChange(ctx, &entity.OrderStatusChange{
			ID:         uuid.New().String(),
			OrderID:    o.ID,
			FromStatus: from,
			ToStatus:   to,
			ChangedBy:  actor,
			Note:       in.Note,
			ChangedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}
	if from != to {
		ports.Notify(ctx, uc.events, uc.log, ports.Event{
			Type:      ports.EventOrderStatusChanged,
			CompanyID: companyID,
			EntityID:  order.ID,
			From:      string(from),
			To:        string(to),
			Actor:     actor,
			At:        order.UpdatedAt,
		})
		ports.Invalidate(ctx, uc.cache, uc.log, companyID)
		uc.log.Info().Str("company_id", companyID).Str("order", order.OrderNumber).
			Str("from", string(from)).Str("to", string(to)).Msg("pedido actualizado")
	}
	return toOrderResponse(order), nil
}

// ship descuenta el stock de cada línea desde la ubicación de despacho.
func ship(ctx context.Context, s repository.Store, o *entity.Order, now time.Time) error {
	// orden fijo de bloqueo por producto entre despachos concurrentes
	items := slices.Clone(o.Items)
	slices.SortFunc(items, func(a, b entity.OrderItem) int { return strings.Compare(a.ProductID, b.ProductID) })
	for _, it := range items {
		if _, err := inventory.Apply(ctx, s, inventory.Movement{
			ProductID:     it.ProductID,
			LocationID:    o.LocationID,
			Type:          entity.MovementOUT,
			Quantity:      it.Quantity,
			Reference:     o.OrderNumber,
			TransactionID: o.ID,
		}, now); err != nil {
			return err
		}
	}
	return nil
}
