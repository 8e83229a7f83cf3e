package entity

import (
	"time"

	"github.com/jhoicas/telar-erp/internal/domain/workflow"
)

// Tipos de máquina.
const (
	MachineLoom      = "loom"
	MachineKnitting  = "knitting"
	MachineSpinning  = "spinning"
	MachineDyeing    = "dyeing"
	MachineSewing    = "sewing"
	MachineFinishing = "finishing"
	MachineOther     = "other"
)

// MachineStatus estado operativo de una máquina.
type MachineStatus string

const (
	MachineOperational      MachineStatus = "OPERATIONAL"
	MachineUnderMaintenance MachineStatus = "UNDER_MAINTENANCE"
	MachineBreakdown        MachineStatus = "BREAKDOWN"
	MachineDecommissioned   MachineStatus = "DECOMMISSIONED"
)

var MachineTransitions = workflow.Transitions[MachineStatus]{
	MachineOperational:      {MachineUnderMaintenance, MachineBreakdown, MachineDecommissioned},
	MachineUnderMaintenance: {MachineOperational, MachineDecommissioned},
	MachineBreakdown:        {MachineUnderMaintenance, MachineOperational, MachineDecommissioned},
	MachineDecommissioned:   {},
}

// Machine es un equipo de planta (telar, tejedora, hiladora...).
type Machine struct {
	ID           string
	CompanyID    string
	Code         string // único por empresa
	Name         string
	Type         string
	LocationID   string
	Manufacturer string
	Model        string
	SerialNumber string
	Status       MachineStatus
	InstalledAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
