package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/application/maintenance"
)

// MaintenanceHandler máquinas, mantenimientos programados y reportes de falla (módulo production).
type MaintenanceHandler struct {
	machines   *maintenance.MachineUseCase
	schedules  *maintenance.ScheduleUseCase
	breakdowns *maintenance.BreakdownUseCase
}

// NewMaintenanceHandler construye el handler.
func NewMaintenanceHandler(machines *maintenance.MachineUseCase, schedules *maintenance.ScheduleUseCase, breakdowns *maintenance.BreakdownUseCase) *MaintenanceHandler {
	return &MaintenanceHandler{machines: machines, schedules: schedules, breakdowns: breakdowns}
}

// ── Máquinas ──────────────────────────────────────────────────────────────────

// CreateMachine godoc
// @Summary      Alta de máquina
// @Tags         machines
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMachineRequest  true  "Datos de la máquina"
// @Success      201   {object}  dto.SuccessResponse{data=dto.MachineResponse}
// @Failure      409   {object}  dto.ErrorResponse  "código duplicado"
// @Router       /api/v1/machines [post]
func (h *MaintenanceHandler) CreateMachine(c *fiber.Ctx) error {
	var in dto.CreateMachineRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.machines.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, out)
}

// GetMachine GET /api/v1/machines/:id
func (h *MaintenanceHandler) GetMachine(c *fiber.Ctx) error {
	out, err := h.machines.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, out)
}

// ListMachines GET /api/v1/machines?status=&type=
func (h *MaintenanceHandler) ListMachines(c *fiber.Ctx) error {
	var in dto.MachineFilterRequest
	if err := bindQuery(c, &in); err != nil {
		return err
	}
	out, err := h.machines.List(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}

// UpdateMachine PUT /api/v1/machines/:id
func (h *MaintenanceHandler) UpdateMachine(c *fiber.Ctx) error {
	var in dto.UpdateMachineRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.machines.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}

// TransitionMachine godoc
// @Summary      Cambiar estado de la máquina
// @Tags         machines
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la máquina"
// @Param        body  body  dto.TransitionRequest  true  "OPERATIONAL | UNDER_MAINTENANCE | BREAKDOWN | DECOMMISSIONED"
// @Success      200   {object}  dto.SuccessResponse{data=dto.MachineResponse}
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/v1/machines/{id}/status [patch]
func (h *MaintenanceHandler) TransitionMachine(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.machines.Transition(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}

// ── Mantenimientos programados ────────────────────────────────────────────────

// CreateSchedule POST /api/v1/maintenance/schedules
func (h *MaintenanceHandler) CreateSchedule(c *fiber.Ctx) error {
	var in dto.CreateScheduleRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.schedules.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, out)
}

// GetSchedule GET /api/v1/maintenance/schedules/:id
func (h *MaintenanceHandler) GetSchedule(c *fiber.Ctx) error {
	out, err := h.schedules.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, out)
}

// ListSchedules GET /api/v1/maintenance/schedules?machine_id=&status=&due_before=
func (h *MaintenanceHandler) ListSchedules(c *fiber.Ctx) error {
	var in dto.ScheduleFilterRequest
	if err := bindQuery(c, &in); err != nil {
		return err
	}
	out, err := h.schedules.List(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}

// TransitionSchedule godoc
// @Summary      Iniciar, completar o cancelar un mantenimiento
// @Description  Completar uno recurrente crea la siguiente ocurrencia (campo next).
// @Tags         maintenance
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del mantenimiento"
// @Param        body  body  dto.TransitionRequest  true  "IN_PROGRESS | COMPLETED | CANCELLED"
// @Success      200   {object}  dto.SuccessResponse{data=dto.ScheduleTransitionResponse}
// @Router       /api/v1/maintenance/schedules/{id}/status [patch]
func (h *MaintenanceHandler) TransitionSchedule(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.schedules.Transition(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}

// ── Fallas ────────────────────────────────────────────────────────────────────

// CreateBreakdown POST /api/v1/maintenance/breakdowns
func (h *MaintenanceHandler) CreateBreakdown(c *fiber.Ctx) error {
	var in dto.CreateBreakdownRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.breakdowns.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return created(c, out)
}

// GetBreakdown GET /api/v1/maintenance/breakdowns/:id
func (h *MaintenanceHandler) GetBreakdown(c *fiber.Ctx) error {
	out, err := h.breakdowns.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, out)
}

// ListBreakdowns GET /api/v1/maintenance/breakdowns?machine_id=&status=
func (h *MaintenanceHandler) ListBreakdowns(c *fiber.Ctx) error {
	var in dto.BreakdownFilterRequest
	if err := bindQuery(c, &in); err != nil {
		return err
	}
	out, err := h.breakdowns.List(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}

// TransitionBreakdown PATCH /api/v1/maintenance/breakdowns/:id/status
func (h *MaintenanceHandler) TransitionBreakdown(c *fiber.Ctx) error {
	var in dto.BreakdownTransitionRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.breakdowns.Transition(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return ok(c, out)
}
