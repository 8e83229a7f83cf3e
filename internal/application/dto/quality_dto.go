package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateInspectionRequest alta de una inspección (queda PENDING).
type CreateInspectionRequest struct {
	ProductID  string `json:"product_id" validate:"required,uuid"`
	OrderID    string `json:"order_id" validate:"omitempty,uuid"`
	LotNumber  string `json:"lot_number" validate:"omitempty,max=100"`
	SampleSize int    `json:"sample_size" validate:"min=1,max=100000"`
	Notes      string `json:"notes"`
}

// InspectionFilterRequest query del listado.
type InspectionFilterRequest struct {
	PageRequest
	PeriodRequest
	Status    string `query:"status"`
	ProductID string `query:"product_id" validate:"omitempty,uuid"`
}

// InspectionResponse salida de una inspección.
type InspectionResponse struct {
	ID               string           `json:"id"`
	InspectionNumber string           `json:"inspection_number"`
	ProductID        string           `json:"product_id"`
	OrderID          string           `json:"order_id,omitempty"`
	LotNumber        string           `json:"lot_number"`
	InspectorID      string           `json:"inspector_id"`
	Status           string           `json:"status"`
	SampleSize       int              `json:"sample_size"`
	Notes            string           `json:"notes"`
	InspectedAt      *time.Time       `json:"inspected_at,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	Defects          []DefectResponse `json:"defects,omitempty"`
	NextStatus       []string         `json:"next_status"`
}

// AddDefectRequest registro de un defecto.
type AddDefectRequest struct {
	DefectType  string `json:"defect_type" validate:"required,min=1,max=100"`
	Severity    string `json:"severity" validate:"required,oneof=MINOR MAJOR CRITICAL"`
	Quantity    int    `json:"quantity" validate:"min=1"`
	Description string `json:"description"`
}

// DefectResponse salida de un defecto.
type DefectResponse struct {
	ID          string    `json:"id"`
	DefectType  string    `json:"defect_type"`
	Severity    string    `json:"severity"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// GenerateComplianceRequest genera un informe para el periodo [period_start, period_end].
type GenerateComplianceRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=200"`
	Standard    string    `json:"standard" validate:"required,min=1,max=100"`
	PeriodStart time.Time `json:"period_start" validate:"required"`
	PeriodEnd   time.Time `json:"period_end" validate:"required,gtfield=PeriodStart"`
}

// ComplianceReportResponse salida del informe.
type ComplianceReportResponse struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Standard         string          `json:"standard"`
	PeriodStart      time.Time       `json:"period_start"`
	PeriodEnd        time.Time       `json:"period_end"`
	TotalInspections int             `json:"total_inspections"`
	Passed           int             `json:"passed"`
	Failed           int             `json:"failed"`
	PassRate         decimal.Decimal `json:"pass_rate"`
	TotalDefects     int             `json:"total_defects"`
	CriticalDefects  int             `json:"critical_defects"`
	Status           string          `json:"status"`
	GeneratedBy      string          `json:"generated_by"`
	CreatedAt        time.Time       `json:"created_at"`
}
