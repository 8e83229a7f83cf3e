package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/application/inventory"
)

// InventoryHandler maneja las peticiones HTTP de movimientos e inventario (protegido).
type InventoryHandler struct {
	uc            *inventory.RegisterMovementUseCase
	query         *inventory.QueryUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.RegisterMovementUseCase, query *inventory.QueryUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc, query: query, replenishment: replenishment}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, location_id (o from/to para TRANSFER), type, quantity, unit_cost (entradas)"
// @Success      201   {object}  dto.SuccessResponse{data=[]dto.MovementResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.RegisterMovementFromRequest(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, out)
}

// ListMovements godoc
// @Summary      Kardex de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  false  "Producto"
// @Param        location_id  query  string  false  "Ubicación"
// @Param        type         query  string  false  "IN | OUT | ADJUSTMENT | TRANSFER"
// @Param        from         query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to           query  string  false  "Hasta inclusive (YYYY-MM-DD)"
// @Success      200  {object}  dto.SuccessResponse{data=dto.ListResponse[dto.MovementResponse]}
// @Router       /api/v1/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var in dto.MovementFilterRequest
	if err := bindQuery(c, &in); err != nil {
		return err
	}
	out, err := h.query.Movements(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}

// Stock existencias por ubicación (?location_id=) o por producto (?product_id=).
// GET /api/v1/inventory/stock
func (h *InventoryHandler) Stock(c *fiber.Ctx) error {
	locationID, productID := c.Query("location_id"), c.Query("product_id")
	var (
		out []dto.StockResponse
		err error
	)
	switch {
	case locationID != "" && productID == "":
		out, err = h.query.StockByLocation(c.UserContext(), locationID)
	case productID != "" && locationID == "":
		out, err = h.query.StockByProduct(c.UserContext(), productID)
	default:
		return &requestError{code: "INVALID_QUERY", message: "indique location_id o product_id"}
	}
	if err != nil {
		return err
	}
	return ok(c, out)
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  SKUs por debajo del punto de reorden con la cantidad sugerida (1.5 × punto de reorden − stock),
//
//	priorizados por cobertura y margen.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Filtrar por ubicación (UUID). Vacío = stock global."
// @Success      200  {object}  dto.SuccessResponse{data=[]dto.ReplenishmentSuggestionDTO}
// @Router       /api/v1/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), c.Query("location_id"))
	if err != nil {
		return err
	}
	return ok(c, list)
}
