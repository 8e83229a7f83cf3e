package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/application/finance"
)

// FinanceHandler facturas de venta (cuentas por cobrar) y cuentas por pagar.
type FinanceHandler struct {
	invoices *finance.InvoiceUseCase
	bills    *finance.BillUseCase
}

// NewFinanceHandler construye el handler.
func NewFinanceHandler(invoices *finance.InvoiceUseCase, bills *finance.BillUseCase) *FinanceHandler {
	return &FinanceHandler{invoices: invoices, bills: bills}
}

// CreateInvoice godoc
// @Summary      Crear factura (DRAFT)
// @Description  Con items manuales o desde un pedido (order_id). No mueve inventario.
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "items u order_id"
// @Success      201   {object}  dto.SuccessResponse{data=dto.InvoiceResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/invoices [post]
func (h *FinanceHandler) CreateInvoice(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.invoices.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, out)
}

// GetInvoice obtiene el detalle completo de una factura.
// GET /api/v1/invoices/:id
func (h *FinanceHandler) GetInvoice(c *fiber.Ctx) error {
	out, err := h.invoices.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, out)
}

// ListInvoices GET /api/v1/invoices?status=&customer_id=&from=&to=
func (h *FinanceHandler) ListInvoices(c *fiber.Ctx) error {
	var in dto.InvoiceFilterRequest
	if err := bindQuery(c, &in); err != nil {
		return err
	}
	out, err := h.invoices.List(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}

// TransitionInvoice PATCH /api/v1/invoices/:id/status
func (h *FinanceHandler) TransitionInvoice(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.invoices.Transition(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}

// InvoicePDF godoc
// @Summary      Descargar factura en PDF
// @Tags         invoices
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}  file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/invoices/{id}/pdf [get]
func (h *FinanceHandler) InvoicePDF(c *fiber.Ctx) error {
	data, filename, err := h.invoices.PDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return attachment(c, contentTypePDF, filename, data)
}

// CreateBill godoc
// @Summary      Registrar cuenta por pagar (DRAFT)
// @Tags         bills
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBillRequest  true  "Proveedor, categoría y valores"
// @Success      201   {object}  dto.SuccessResponse{data=dto.BillResponse}
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/bills [post]
func (h *FinanceHandler) CreateBill(c *fiber.Ctx) error {
	var in dto.CreateBillRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.bills.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, out)
}

// GetBill GET /api/v1/bills/:id
func (h *FinanceHandler) GetBill(c *fiber.Ctx) error {
	out, err := h.bills.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, out)
}

// ListBills GET /api/v1/bills?status=&category=&from=&to=
func (h *FinanceHandler) ListBills(c *fiber.Ctx) error {
	var in dto.BillFilterRequest
	if err := bindQuery(c, &in); err != nil {
		return err
	}
	out, err := h.bills.List(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}

// UpdateBill PUT /api/v1/bills/:id (solo DRAFT)
func (h *FinanceHandler) UpdateBill(c *fiber.Ctx) error {
	var in dto.UpdateBillRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.bills.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}

// TransitionBill PATCH /api/v1/bills/:id/status
func (h *FinanceHandler) TransitionBill(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.bills.Transition(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}
