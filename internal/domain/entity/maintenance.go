package entity

import (
	"time"

	"github.com/jhoicas/telar-erp/internal/domain/workflow"
)

// MaintenanceStatus estado de una orden de mantenimiento programado.
type MaintenanceStatus string

const (
	MaintenanceScheduled  MaintenanceStatus = "SCHEDULED"
	MaintenanceInProgress MaintenanceStatus = "IN_PROGRESS"
	MaintenanceCompleted  MaintenanceStatus = "COMPLETED"
	MaintenanceCancelled  MaintenanceStatus = "CANCELLED"
)

var MaintenanceTransitions = workflow.Transitions[MaintenanceStatus]{
	MaintenanceScheduled:  {MaintenanceInProgress, MaintenanceCancelled},
	MaintenanceInProgress: {MaintenanceCompleted, MaintenanceCancelled},
	MaintenanceCompleted:  {},
	MaintenanceCancelled:  {},
}

// MaintenanceSchedule es un mantenimiento preventivo. IntervalDays > 0 lo hace recurrente:
// al completarse se crea la siguiente ocurrencia.
type MaintenanceSchedule struct {
	ID           string
	CompanyID    string
	MachineID    string
	Title        string
	Description  string
	IntervalDays int
	DueDate      time.Time
	Status       MaintenanceStatus
	AssignedTo   string
	CompletedAt  *time.Time
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NextOccurrence construye la siguiente ocurrencia de un mantenimiento recurrente.
func (m *MaintenanceSchedule) NextOccurrence(completedAt time.Time) *MaintenanceSchedule {
	if m.IntervalDays <= 0 {
		return nil
	}
	return &MaintenanceSchedule{
		CompanyID:    m.CompanyID,
		MachineID:    m.MachineID,
		Title:        m.Title,
		Description:  m.Description,
		IntervalDays: m.IntervalDays,
		DueDate:      completedAt.AddDate(0, 0, m.IntervalDays),
		Status:       MaintenanceScheduled,
		AssignedTo:   m.AssignedTo,
	}
}

// Severidad de una falla.
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// BreakdownStatus estado del reporte de falla.
type BreakdownStatus string

const (
	BreakdownOpen       BreakdownStatus = "OPEN"
	BreakdownInProgress BreakdownStatus = "IN_PROGRESS"
	BreakdownResolved   BreakdownStatus = "RESOLVED"
)

var BreakdownTransitions = workflow.Transitions[BreakdownStatus]{
	BreakdownOpen:       {BreakdownInProgress, BreakdownResolved},
	BreakdownInProgress: {BreakdownResolved},
	BreakdownResolved:   {},
}

// BreakdownReport registra una falla de máquina.
type BreakdownReport struct {
	ID              string
	CompanyID       string
	MachineID       string
	ReportedBy      string
	Description     string
	Severity        string
	Status          BreakdownStatus
	ReportedAt      time.Time
	ResolvedAt      *time.Time
	Resolution      string
	DowntimeMinutes int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
