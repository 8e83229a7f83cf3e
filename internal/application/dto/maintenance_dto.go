package dto

import "time"

// CreateMachineRequest alta de una máquina.
type CreateMachineRequest struct {
	Code         string     `json:"code" validate:"required,min=1,max=50"`
	Name         string     `json:"name" validate:"required,min=1,max=200"`
	Type         string     `json:"type" validate:"required,oneof=loom knitting spinning dyeing sewing finishing other"`
	LocationID   string     `json:"location_id" validate:"omitempty,uuid"`
	Manufacturer string     `json:"manufacturer"`
	Model        string     `json:"model"`
	SerialNumber string     `json:"serial_number"`
	InstalledAt  *time.Time `json:"installed_at"`
}

// UpdateMachineRequest datos editables de una máquina (el estado cambia por transición).
type UpdateMachineRequest struct {
	Name         *string    `json:"name" validate:"omitempty,min=1,max=200"`
	LocationID   *string    `json:"location_id" validate:"omitempty,uuid"`
	Manufacturer *string    `json:"manufacturer"`
	Model        *string    `json:"model"`
	SerialNumber *string    `json:"serial_number"`
	InstalledAt  *time.Time `json:"installed_at"`
}

// MachineFilterRequest query del listado.
type MachineFilterRequest struct {
	PageRequest
	Status string `query:"status"`
	Type   string `query:"type"`
}

// MachineResponse salida de una máquina.
type MachineResponse struct {
	ID           string     `json:"id"`
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	LocationID   string     `json:"location_id,omitempty"`
	Manufacturer string     `json:"manufacturer"`
	Model        string     `json:"model"`
	SerialNumber string     `json:"serial_number"`
	Status       string     `json:"status"`
	InstalledAt  *time.Time `json:"installed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	NextStatus   []string   `json:"next_status"`
}

// CreateScheduleRequest programación de mantenimiento; interval_days 0 = única vez.
type CreateScheduleRequest struct {
	MachineID    string    `json:"machine_id" validate:"required,uuid"`
	Title        string    `json:"title" validate:"required,min=1,max=200"`
	Description  string    `json:"description"`
	IntervalDays int       `json:"interval_days" validate:"min=0,max=3650"`
	DueDate      time.Time `json:"due_date" validate:"required"`
	AssignedTo   string    `json:"assigned_to" validate:"omitempty,uuid"`
}

// ScheduleFilterRequest query del listado de mantenimientos.
type ScheduleFilterRequest struct {
	PageRequest
	MachineID string `query:"machine_id" validate:"omitempty,uuid"`
	Status    string `query:"status"`
	DueBefore string `query:"due_before"`
}

// ScheduleResponse salida de un mantenimiento programado.
type ScheduleResponse struct {
	ID           string     `json:"id"`
	MachineID    string     `json:"machine_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	IntervalDays int        `json:"interval_days"`
	DueDate      time.Time  `json:"due_date"`
	Status       string     `json:"status"`
	AssignedTo   string     `json:"assigned_to,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	NextStatus   []string   `json:"next_status"`
}

// ScheduleTransitionResponse resultado de una transición; Next es la ocurrencia creada al completar un recurrente.
type ScheduleTransitionResponse struct {
	Schedule ScheduleResponse  `json:"schedule"`
	Next     *ScheduleResponse `json:"next,omitempty"`
}

// CreateBreakdownRequest reporte de falla.
type CreateBreakdownRequest struct {
	MachineID   string `json:"machine_id" validate:"required,uuid"`
	Description string `json:"description" validate:"required,min=1,max=2000"`
	Severity    string `json:"severity" validate:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
}

// BreakdownTransitionRequest transición de una falla; resolution requerido al resolver.
type BreakdownTransitionRequest struct {
	Status     string `json:"status" validate:"required,oneof=IN_PROGRESS RESOLVED"`
	Resolution string `json:"resolution" validate:"omitempty,max=2000"`
}

// BreakdownFilterRequest query del listado de fallas.
type BreakdownFilterRequest struct {
	PageRequest
	MachineID string `query:"machine_id" validate:"omitempty,uuid"`
	Status    string `query:"status"`
}

// BreakdownResponse salida de un reporte de falla.
type BreakdownResponse struct {
	ID              string     `json:"id"`
	MachineID       string     `json:"machine_id"`
	ReportedBy      string     `json:"reported_by"`
	Description     string     `json:"description"`
	Severity        string     `json:"severity"`
	Status          string     `json:"status"`
	ReportedAt      time.Time  `json:"reported_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	Resolution      string     `json:"resolution,omitempty"`
	DowntimeMinutes int        `json:"downtime_minutes"`
}
