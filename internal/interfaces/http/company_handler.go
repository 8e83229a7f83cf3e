package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/application/usecase"
)

// CompanyHandler alta de empresas, datos de la empresa propia y sus módulos.
type CompanyHandler struct {
	uc      *usecase.CompanyUseCase
	modules *usecase.ModuleService
}

// NewCompanyHandler construye el handler.
func NewCompanyHandler(uc *usecase.CompanyUseCase, modules *usecase.ModuleService) *CompanyHandler {
	return &CompanyHandler{uc: uc, modules: modules}
}

// Onboard godoc
// @Summary      Alta de empresa con su primer administrador
// @Tags         companies
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCompanyRequest  true  "Empresa y administrador"
// @Success      201   {object}  dto.SuccessResponse{data=dto.OnboardingResponse}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/companies [post]
func (h *CompanyHandler) Onboard(c *fiber.Ctx) error {
	var in dto.CreateCompanyRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Onboard(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, out)
}

// GetOwn godoc
// @Summary      Empresa del usuario autenticado
// @Tags         companies
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SuccessResponse{data=dto.CompanyResponse}
// @Router       /api/v1/companies/me [get]
func (h *CompanyHandler) GetOwn(c *fiber.Ctx) error {
	out, err := h.uc.GetOwn(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, out)
}

// UpdateOwn godoc
// @Summary      Actualizar la empresa propia (admin)
// @Tags         companies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.UpdateCompanyRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.SuccessResponse{data=dto.CompanyResponse}
// @Router       /api/v1/companies/me [put]
func (h *CompanyHandler) UpdateOwn(c *fiber.Ctx) error {
	var in dto.UpdateCompanyRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.UpdateOwn(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}

// ListModules módulos de la empresa con su estado.
// GET /api/v1/companies/me/modules
func (h *CompanyHandler) ListModules(c *fiber.Ctx) error {
	out, err := h.modules.List(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, out)
}

// ToggleModule activa o desactiva un módulo (admin).
// PUT /api/v1/companies/me/modules/:module
func (h *CompanyHandler) ToggleModule(c *fiber.Ctx) error {
	var in dto.ToggleModuleRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.modules.Toggle(c.UserContext(), c.Params("module"), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}
