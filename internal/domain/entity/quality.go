package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/domain/workflow"
)

// InspectionStatus estado de una inspección de calidad.
type InspectionStatus string

const (
	InspectionPending    InspectionStatus = "PENDING"
	InspectionInProgress InspectionStatus = "IN_PROGRESS"
	InspectionPassed     InspectionStatus = "PASSED"
	InspectionFailed     InspectionStatus = "FAILED"
	InspectionCancelled  InspectionStatus = "CANCELLED"
)

var InspectionTransitions = workflow.Transitions[InspectionStatus]{
	InspectionPending:    {InspectionInProgress, InspectionCancelled},
	InspectionInProgress: {InspectionPassed, InspectionFailed, InspectionCancelled},
	InspectionPassed:     {},
	InspectionFailed:     {},
	InspectionCancelled:  {},
}

// AcceptsDefects indica si se pueden registrar o borrar defectos en este estado.
func (s InspectionStatus) AcceptsDefects() bool {
	return s == InspectionPending || s == InspectionInProgress
}

// Inspection es la revisión de un lote de producto.
type Inspection struct {
	ID               string
	CompanyID        string
	InspectionNumber string
	ProductID        string
	OrderID          string // opcional
	LotNumber        string
	InspectorID      string
	Status           InspectionStatus
	SampleSize       int
	Notes            string
	InspectedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Severidad de defectos (AQL).
const (
	DefectMinor    = "MINOR"
	DefectMajor    = "MAJOR"
	DefectCritical = "CRITICAL"
)

// QualityDefect es un defecto encontrado en una inspección.
type QualityDefect struct {
	ID           string
	CompanyID    string
	InspectionID string
	DefectType   string // p. ej. "barré", "mancha", "hilo roto"
	Severity     string
	Quantity     int
	Description  string
	CreatedAt    time.Time
}

// QualityStats agrega inspecciones y defectos en un periodo.
type QualityStats struct {
	TotalInspections int
	Passed           int
	Failed           int
	TotalDefects     int
	CriticalDefects  int
	DefectsByType    map[string]int
}

// PassRate = aprobadas / (aprobadas + rechazadas); 0 si no hay inspecciones terminadas.
func (s QualityStats) PassRate() decimal.Decimal {
	finished := s.Passed + s.Failed
	if finished == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(s.Passed)).
		Div(decimal.NewFromInt(int64(finished))).
		Round(4)
}

// ComplianceStatus estado de un informe de cumplimiento.
type ComplianceStatus string

const (
	ComplianceDraft     ComplianceStatus = "DRAFT"
	CompliancePublished ComplianceStatus = "PUBLISHED"
)

var ComplianceTransitions = workflow.Transitions[ComplianceStatus]{
	ComplianceDraft:     {CompliancePublished},
	CompliancePublished: {},
}

// ComplianceReport resume la calidad de un periodo frente a un estándar (p. ej. ISO 9001, OEKO-TEX).
type ComplianceReport struct {
	ID               string
	CompanyID        string
	Title            string
	Standard         string
	PeriodStart      time.Time
	PeriodEnd        time.Time
	TotalInspections int
	Passed           int
	Failed           int
	PassRate         decimal.Decimal
	TotalDefects     int
	CriticalDefects  int
	Status           ComplianceStatus
	GeneratedBy      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
