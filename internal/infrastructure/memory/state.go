package memory

import (
	"slices"

	"github.com/jhoicas/telar-erp/internal/domain/entity"
)

type state struct {
	companies    *table[entity.Company]
	modules      *table[entity.CompanyModule]
	users        *table[entity.User]
	products     *table[entity.Product]
	locations    *table[entity.Location]
	stock        *table[entity.LocationInventory]
	movements    *table[entity.StockMovement]
	customers    *table[entity.Customer]
	orders       *table[entity.Order]
	orderHistory *table[entity.OrderStatusChange]
	machines     *table[entity.Machine]
	schedules    *table[entity.MaintenanceSchedule]
	breakdowns   *table[entity.BreakdownReport]
	inspections  *table[entity.Inspection]
	defects      *table[entity.QualityDefect]
	compliance   *table[entity.ComplianceReport]
	invoices     *table[entity.Invoice]
	bills        *table[entity.Bill]
}

func newState() *state {
	return &state{
		companies:    newTable[entity.Company](nil),
		modules:      newTable(func(m *entity.CompanyModule) string { return m.CompanyID }),
		users:        newTable(func(u *entity.User) string { return u.CompanyID }),
		products:     newTable(func(p *entity.Product) string { return p.CompanyID }),
		locations:    newTable(func(l *entity.Location) string { return l.CompanyID }),
		stock:        newTable(func(s *entity.LocationInventory) string { return s.CompanyID }),
		movements:    newTable(func(m *entity.StockMovement) string { return m.CompanyID }),
		customers:    newTable(func(c *entity.Customer) string { return c.CompanyID }),
		orders:       newTable(func(o *entity.Order) string { return o.CompanyID }),
		orderHistory: newTable(func(h *entity.OrderStatusChange) string { return h.CompanyID }),
		machines:     newTable(func(m *entity.Machine) string { return m.CompanyID }),
		schedules:    newTable(func(s *entity.MaintenanceSchedule) string { return s.CompanyID }),
		breakdowns:   newTable(func(b *entity.BreakdownReport) string { return b.CompanyID }),
		inspections:  newTable(func(i *entity.Inspection) string { return i.CompanyID }),
		defects:      newTable(func(d *entity.QualityDefect) string { return d.CompanyID }),
		compliance:   newTable(func(r *entity.ComplianceReport) string { return r.CompanyID }),
		invoices:     newTable(func(i *entity.Invoice) string { return i.CompanyID }),
		bills:        newTable(func(b *entity.Bill) string { return b.CompanyID }),
	}
}

// clone copia superficialmente cada tabla. Los slices de ítems (pedidos, facturas) nunca se
// modifican en sitio: los repos guardan y devuelven copias.
func (s *state) clone() *state {
	return &state{
		companies:    s.companies.clone(),
		modules:      s.modules.clone(),
		users:        s.users.clone(),
		products:     s.products.clone(),
		locations:    s.locations.clone(),
		stock:        s.stock.clone(),
		movements:    s.movements.clone(),
		customers:    s.customers.clone(),
		orders:       s.orders.clone(),
		orderHistory: s.orderHistory.clone(),
		machines:     s.machines.clone(),
		schedules:    s.schedules.clone(),
		breakdowns:   s.breakdowns.clone(),
		inspections:  s.inspections.clone(),
		defects:      s.defects.clone(),
		compliance:   s.compliance.clone(),
		invoices:     s.invoices.clone(),
		bills:        s.bills.clone(),
	}
}

func cloneOrder(o *entity.Order) entity.Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	return c
}

func cloneInvoice(inv *entity.Invoice) entity.Invoice {
	c := *inv
	c.Items = slices.Clone(inv.Items)
	return c
}
