package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/telar-erp/internal/application/analytics"
	"github.com/jhoicas/telar-erp/internal/application/dto"
)

// DashboardHandler maneja el resumen del dashboard y los reportes financieros.
type DashboardHandler struct {
	dashboard *appanalytics.DashboardUseCase
	reports   *appanalytics.ReportsUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(dashboard *appanalytics.DashboardUseCase, reports *appanalytics.ReportsUseCase) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, reports: reports}
}

// GetSummary godoc
// @Summary      Resumen del dashboard
// @Description  Pedidos y máquinas por estado, fallas abiertas, mantenimientos a 7 días,
//
//	productos bajo punto de reorden e ingresos del mes.
//
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SuccessResponse{data=dto.DashboardSummaryDTO}
// @Router       /api/v1/dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.dashboard.GetSummary(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, summary)
}

// ProfitAndLoss godoc
// @Summary      Estado de resultados
// @Description  Sin fechas usa el mes en curso. format=xlsx descarga la hoja de cálculo.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from    query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to      query  string  false  "Hasta inclusive (YYYY-MM-DD)"
// @Param        format  query  string  false  "json | xlsx"
// @Success      200  {object}  dto.SuccessResponse{data=dto.ProfitAndLossResponse}
// @Router       /api/v1/reports/profit-and-loss [get]
func (h *DashboardHandler) ProfitAndLoss(c *fiber.Ctx) error {
	var in dto.PeriodRequest
	if err := bindQuery(c, &in); err != nil {
		return err
	}
	if c.Query("format") == "xlsx" {
		data, filename, err := h.reports.ProfitAndLossXLSX(c.UserContext(), in)
		if err != nil {
			return err
		}
		return attachment(c, contentTypeXLSX, filename, data)
	}
	out, err := h.reports.ProfitAndLoss(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}

// InventoryValuation godoc
// @Summary      Valorización del inventario
// @Description  Cantidad × costo promedio por producto y ubicación. format=xlsx descarga la hoja de cálculo.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        format  query  string  false  "json | xlsx"
// @Success      200  {object}  dto.SuccessResponse{data=dto.InventoryValuationResponse}
// @Router       /api/v1/reports/inventory-valuation [get]
func (h *DashboardHandler) InventoryValuation(c *fiber.Ctx) error {
	if c.Query("format") == "xlsx" {
		data, filename, err := h.reports.InventoryValuationXLSX(c.UserContext())
		if err != nil {
			return err
		}
		return attachment(c, contentTypeXLSX, filename, data)
	}
	out, err := h.reports.InventoryValuation(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, out)
}
