package entity

import "time"

// Estados de Company.
const (
	CompanyStatusActive    = "active"
	CompanyStatusSuspended = "suspended"
	CompanyStatusInactive  = "inactive"
)

// Company representa una organización/tenant del sistema.
type Company struct {
	ID        string
	Name      string
	TaxID     string // identificación tributaria, única en el sistema
	Address   string
	Phone     string
	Email     string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Módulos disponibles (deben coincidir con el CHECK de la tabla company_modules).
const (
	ModuleInventory  = "inventory"
	ModuleOrders     = "orders"
	ModuleProduction = "production"
	ModuleQuality    = "quality"
	ModuleFinance    = "finance"
)

// AllModules lista los módulos que se activan al dar de alta una empresa.
var AllModules = []string{ModuleInventory, ModuleOrders, ModuleProduction, ModuleQuality, ModuleFinance}

// IsValidModule indica si name es un módulo conocido.
func IsValidModule(name string) bool {
	for _, m := range AllModules {
		if m == name {
			return true
		}
	}
	return false
}

// CompanyModule representa la activación de un módulo en una empresa.
type CompanyModule struct {
	ID          string
	CompanyID   string
	ModuleName  string
	IsActive    bool
	ActivatedAt time.Time
	ExpiresAt   *time.Time // nil = sin vencimiento
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Enabled indica si el módulo está activo y no vencido en el instante now.
func (m *CompanyModule) Enabled(now time.Time) bool {
	return m.IsActive && (m.ExpiresAt == nil || m.ExpiresAt.After(now))
}
