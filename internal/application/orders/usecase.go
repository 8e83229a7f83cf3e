// Package orders implementa el ciclo de vida de los pedidos de cliente: alta en DRAFT,
// edición mientras sigan en DRAFT y avance de estado según entity.OrderTransitions.
package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

// UseCase casos de uso de pedidos.
type UseCase struct {
	repo      repository.OrderRepository
	customers repository.CustomerRepository
	products  repository.ProductRepository
	locations repository.LocationRepository
	txRunner  ports.TxRunner
	events    ports.EventPublisher
	cache     ports.Cache
	log       *logger.Logger
}

// Deps dependencias del caso de uso.
type Deps struct {
	Store    repository.Store
	TxRunner ports.TxRunner
	Events   ports.EventPublisher
	Cache    ports.Cache
	Log      *logger.Logger
}

// NewUseCase construye el caso de uso de pedidos.
func NewUseCase(d Deps) *UseCase {
	return &UseCase{
		repo:      d.Store.Orders,
		customers: d.Store.Customers,
		products:  d.Store.Products,
		locations: d.Store.Locations,
		txRunner:  d.TxRunner,
		events:    d.Events,
		cache:     d.Cache,
		log:       d.Log,
	}
}

// Create crea un pedido en DRAFT. Las líneas sin unit_price toman el precio del producto.
func (uc *UseCase) Create(ctx context.Context, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	customer, err := uc.customers.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: cliente inexistente", domain.ErrInvalidInput)
	}
	if err := uc.checkLocation(ctx, in.LocationID); err != nil {
		return nil, err
	}
	now := time.Now()
	order := &entity.Order{
		ID:          uuid.New().String(),
		OrderNumber: entity.NewDocumentNumber(entity.PrefixOrder, now),
		CustomerID:  in.CustomerID,
		LocationID:  in.LocationID,
		Status:      entity.OrderStatusDraft,
		OrderDate:   now,
		DueDate:     in.DueDate,
		Notes:       in.Notes,
		CreatedBy:   tenant.ActorFrom(ctx).UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.OrderDate != nil {
		order.OrderDate = *in.OrderDate
	}
	if order.DueDate != nil && order.DueDate.Before(order.OrderDate) {
		return nil, fmt.Errorf("%w: due_date anterior a order_date", domain.ErrInvalidInput)
	}
	if order.Items, err = uc.buildItems(ctx, order.ID, in.Items); err != nil {
		return nil, err
	}
	order.Recalculate()
	if err := uc.repo.Create(ctx, order); err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// GetByID devuelve el pedido con sus líneas y los estados a los que puede avanzar.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.OrderResponse, error) {
	order, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// List lista pedidos filtrando por estado y cliente.
func (uc *UseCase) List(ctx context.Context, in dto.OrderFilterRequest) (*dto.ListResponse[dto.OrderResponse], error) {
	in.DefaultPage()
	status := entity.OrderStatus(in.Status)
	if status != "" && !entity.OrderTransitions.Known(status) {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	list, total, err := uc.repo.List(ctx, repository.OrderFilter{
		Page:       repository.Page{Limit: in.Limit, Offset: in.Offset},
		Status:     status,
		CustomerID: in.CustomerID,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		r := toOrderResponse(o)
		r.Items = nil
		items = append(items, *r)
	}
	out := dto.NewList(items, in.Limit, in.Offset, total)
	return &out, nil
}

// Update edita un pedido en DRAFT; el estado se comprueba de nuevo con la cabecera bloqueada.
func (uc *UseCase) Update(ctx context.Context, id string, in dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	if _, err := uc.get(ctx, id); err != nil {
		return nil, err
	}
	if in.LocationID != nil {
		if err := uc.checkLocation(ctx, *in.LocationID); err != nil {
			return nil, err
		}
	}
	var items []entity.OrderItem
	if in.Items != nil {
		var err error
		if items, err = uc.buildItems(ctx, id, in.Items); err != nil {
			return nil, err
		}
	}

	var order *entity.Order
	err := uc.txRunner.Run(ctx, func(s repository.Store) error {
		o, err := s.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if !o.Status.Editable() {
			return domain.ErrNotEditable
		}
		if in.LocationID != nil {
			o.LocationID = *in.LocationID
		}
		if in.DueDate != nil {
			if in.DueDate.Before(o.OrderDate) {
				return fmt.Errorf("%w: due_date anterior a order_date", domain.ErrInvalidInput)
			}
			o.DueDate = in.DueDate
		}
		if in.Notes != nil {
			o.Notes = *in.Notes
		}
		if in.Items != nil {
			o.Items = items
		}
		o.Recalculate()
		o.UpdatedAt = time.Now()
		order = o
		return s.Orders.Update(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order), nil
}

// Delete elimina un pedido en DRAFT.
func (uc *UseCase) Delete(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(s repository.Store) error {
		o, err := s.Orders.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.ErrNotFound
		}
		if !o.Status.Editable() {
			return domain.ErrNotEditable
		}
		return s.Orders.Delete(ctx, id)
	})
}

// History devuelve el historial de cambios de estado, del más antiguo al más reciente.
func (uc *UseCase) History(ctx context.Context, id string) ([]dto.OrderStatusChangeResponse, error) {
	if _, err := uc.get(ctx, id); err != nil {
		return nil, err
	}
	changes, err := uc.repo.ListStatusChanges(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderStatusChangeResponse, 0, len(changes))
	for _, c := range changes {
		out = append(out, dto.OrderStatusChangeResponse{
			FromStatus: string(c.FromStatus),
			ToStatus:   string(c.ToStatus),
			ChangedBy:  c.ChangedBy,
			Note:       c.Note,
			ChangedAt:  c.ChangedAt,
		})
	}
	return out, nil
}

// NextStatuses estados a los que puede avanzar el pedido.
func (uc *UseCase) NextStatuses(ctx context.Context, id string) ([]string, error) {
	order, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return nextStatus(order.Status), nil
}

func (uc *UseCase) buildItems(ctx context.Context, orderID string, in []dto.OrderItemRequest) ([]entity.OrderItem, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: el pedido necesita al menos una línea", domain.ErrInvalidInput)
	}
	items := make([]entity.OrderItem, 0, len(in))
	for i, line := range in {
		if !line.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: línea %d: quantity debe ser > 0", domain.ErrInvalidInput, i+1)
		}
		product, err := uc.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%w: línea %d: producto inexistente", domain.ErrInvalidInput, i+1)
		}
		price := product.Price
		if line.UnitPrice != nil {
			if line.UnitPrice.IsNegative() {
				return nil, fmt.Errorf("%w: línea %d: unit_price negativo", domain.ErrInvalidInput, i+1)
			}
			price = *line.UnitPrice
		}
		items = append(items, entity.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: price,
			Subtotal:  decimal.Zero,
		})
	}
	return items, nil
}

func (uc *UseCase) checkLocation(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	loc, err := uc.locations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if loc == nil {
		return fmt.Errorf("%w: ubicación inexistente", domain.ErrInvalidInput)
	}
	return nil
}

func (uc *UseCase) get(ctx context.Context, id string) (*entity.Order, error) {
	order, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func nextStatus(s entity.OrderStatus) []string {
	next := entity.OrderTransitions.Next(s)
	out := make([]string, 0, len(next))
	for _, n := range next {
		out = append(out, string(n))
	}
	return out
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Subtotal:  it.Subtotal,
		})
	}
	return &dto.OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		CustomerID:  o.CustomerID,
		LocationID:  o.LocationID,
		Status:      string(o.Status),
		OrderDate:   o.OrderDate,
		DueDate:     o.DueDate,
		Notes:       o.Notes,
		TotalAmount: o.TotalAmount,
		CreatedBy:   o.CreatedBy,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		Items:       items,
		NextStatus:  nextStatus(o.Status),
	}
}

