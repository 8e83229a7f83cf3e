package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/application/quality"
)

// QualityHandler inspecciones, defectos e informes de cumplimiento.
type QualityHandler struct {
	inspections *quality.InspectionUseCase
	compliance  *quality.ComplianceUseCase
}

// NewQualityHandler construye el handler.
func NewQualityHandler(inspections *quality.InspectionUseCase, compliance *quality.ComplianceUseCase) *QualityHandler {
	return &QualityHandler{inspections: inspections, compliance: compliance}
}

// CreateInspection godoc
// @Summary      Crear inspección (PENDING)
// @Tags         quality
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInspectionRequest  true  "Producto, lote y muestra"
// @Success      201   {object}  dto.SuccessResponse{data=dto.InspectionResponse}
// @Router       /api/v1/quality/inspections [post]
func (h *QualityHandler) CreateInspection(c *fiber.Ctx) error {
	var in dto.CreateInspectionRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.inspections.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, out)
}

// GetInspection GET /api/v1/quality/inspections/:id (incluye defectos)
func (h *QualityHandler) GetInspection(c *fiber.Ctx) error {
	out, err := h.inspections.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, out)
}

// ListInspections GET /api/v1/quality/inspections?status=&product_id=&from=&to=
func (h *QualityHandler) ListInspections(c *fiber.Ctx) error {
	var in dto.InspectionFilterRequest
	if err := bindQuery(c, &in); err != nil {
		return err
	}
	out, err := h.inspections.List(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}

// TransitionInspection PATCH /api/v1/quality/inspections/:id/status
func (h *QualityHandler) TransitionInspection(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.inspections.Transition(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}

// AddDefect godoc
// @Summary      Registrar defecto
// @Description  Solo mientras la inspección está PENDING o IN_PROGRESS.
// @Tags         quality
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la inspección"
// @Param        body  body  dto.AddDefectRequest  true  "Tipo, severidad y cantidad"
// @Success      201   {object}  dto.SuccessResponse{data=dto.DefectResponse}
// @Failure      409   {object}  dto.ErrorResponse  "inspección cerrada"
// @Router       /api/v1/quality/inspections/{id}/defects [post]
func (h *QualityHandler) AddDefect(c *fiber.Ctx) error {
	var in dto.AddDefectRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.inspections.AddDefect(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return created(c, out)
}

// ListDefects GET /api/v1/quality/inspections/:id/defects
func (h *QualityHandler) ListDefects(c *fiber.Ctx) error {
	out, err := h.inspections.ListDefects(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, out)
}

// DeleteDefect DELETE /api/v1/quality/inspections/:id/defects/:defectId
func (h *QualityHandler) DeleteDefect(c *fiber.Ctx) error {
	if err := h.inspections.DeleteDefect(c.UserContext(), c.Params("id"), c.Params("defectId")); err != nil {
		return err
	}
	return message(c, "defecto eliminado")
}

// GenerateCompliance godoc
// @Summary      Generar informe de cumplimiento
// @Tags         quality
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GenerateComplianceRequest  true  "Título, estándar y periodo"
// @Success      201   {object}  dto.SuccessResponse{data=dto.ComplianceReportResponse}
// @Router       /api/v1/quality/compliance-reports [post]
func (h *QualityHandler) GenerateCompliance(c *fiber.Ctx) error {
	var in dto.GenerateComplianceRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.compliance.Generate(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, out)
}

// GetCompliance GET /api/v1/quality/compliance-reports/:id
func (h *QualityHandler) GetCompliance(c *fiber.Ctx) error {
	out, err := h.compliance.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, out)
}

// ListCompliance GET /api/v1/quality/compliance-reports
func (h *QualityHandler) ListCompliance(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return err
	}
	out, err := h.compliance.List(c.UserContext(), page)
	if err != nil {
		return err
	}
	return ok(c, out)
}

// PublishCompliance POST /api/v1/quality/compliance-reports/:id/publish
func (h *QualityHandler) PublishCompliance(c *fiber.Ctx) error {
	out, err := h.compliance.Publish(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, out)
}

// CompliancePDF godoc
// @Summary      Descargar informe de cumplimiento en PDF
// @Tags         quality
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del informe"
// @Success      200  {file}  file
// @Router       /api/v1/quality/compliance-reports/{id}/pdf [get]
func (h *QualityHandler) CompliancePDF(c *fiber.Ctx) error {
	data, filename, err := h.compliance.PDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return attachment(c, contentTypePDF, filename, data)
}
