package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/application/orders"
)

// OrderHandler pedidos de clientes y su flujo de estados.
type OrderHandler struct {
	uc *orders.UseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.UseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear pedido (DRAFT)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Cliente e items; sin unit_price se usa el precio del producto"
// @Success      201   {object}  dto.SuccessResponse{data=dto.OrderResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, out)
}

// GetByID godoc
// @Summary      Pedido con sus items
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.SuccessResponse{data=dto.OrderResponse}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, out)
}

// List GET /api/v1/orders?status=&customer_id=
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var in dto.OrderFilterRequest
	if err := bindQuery(c, &in); err != nil {
		return err
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}

// Update godoc
// @Summary      Editar pedido en DRAFT
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderRequest  true  "Notas, fechas o items"
// @Success      200   {object}  dto.SuccessResponse{data=dto.OrderResponse}
// @Failure      409   {object}  dto.ErrorResponse  "el pedido ya no está en DRAFT"
// @Router       /api/v1/orders/{id} [put]
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateOrderRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}

// Delete DELETE /api/v1/orders/:id (solo DRAFT)
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return message(c, "pedido eliminado")
}

// Transition godoc
// @Summary      Cambiar estado del pedido
// @Description  Solo transiciones declaradas. Repetir el estado actual no hace nada.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del pedido"
// @Param        body  body  dto.TransitionRequest  true  "status destino y nota opcional"
// @Success      200   {object}  dto.SuccessResponse{data=dto.OrderResponse}
// @Failure      409   {object}  dto.ErrorResponse  "INVALID_TRANSITION o INSUFFICIENT_STOCK"
// @Router       /api/v1/orders/{id}/status [patch]
func (h *OrderHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Transition(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}

// History GET /api/v1/orders/:id/history
func (h *OrderHandler) History(c *fiber.Ctx) error {
	out, err := h.uc.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, out)
}

// NextStatuses GET /api/v1/orders/:id/next-statuses
func (h *OrderHandler) NextStatuses(c *fiber.Ctx) error {
	out, err := h.uc.NextStatuses(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, out)
}
