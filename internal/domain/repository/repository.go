// Package repository define los puertos de persistencia (DIP); las implementaciones viven en infrastructure.
//
// Salvo los métodos de sistema nombrados explícitamente (FindByEmailForLogin, ListDueAcrossTenants
// y los de CompanyRepository), todos los métodos obtienen la empresa del contexto con tenant.Require,
// filtran lecturas por ella y la fijan en las escrituras. Los Get devuelven (nil, nil) si no existe
// la fila en el tenant actual; Update/Delete devuelven domain.ErrNotFound si no afectan filas.
package repository

import "time"

// Page paginación por limit/offset.
type Page struct {
	Limit  int
	Offset int
}

// Normalize aplica límites por defecto (20) y máximo (200).
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 200 {
		p.Limit = 200
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Period rango de fechas [From, To). Cero = sin límite.
type Period struct {
	From time.Time
	To   time.Time
}

// Contains indica si t cae dentro del periodo.
func (p Period) Contains(t time.Time) bool {
	if !p.From.IsZero() && t.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && !t.Before(p.To) {
		return false
	}
	return true
}

// Store agrupa todos los repositorios atados a una misma conexión o transacción.
type Store struct {
	Companies         CompanyRepository
	Users             UserRepository
	Products          ProductRepository
	Locations         LocationRepository
	Stock             StockRepository
	Movements         StockMovementRepository
	Customers         CustomerRepository
	Orders            OrderRepository
	Machines          MachineRepository
	Schedules         MaintenanceScheduleRepository
	Breakdowns        BreakdownRepository
	Inspections       InspectionRepository
	ComplianceReports ComplianceReportRepository
	Invoices          InvoiceRepository
	Bills             BillRepository
}
