// Package analytics contiene los reportes de negocio: estado de resultados, valorización de
// inventario y el resumen del dashboard. Las lecturas costosas se cachean por tenant.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

const (
	dashboardTTL       = time.Minute
	reportTTL          = 5 * time.Minute
	maintenanceHorizon = 7 * 24 * time.Hour
)

// Deps dependencias de los reportes.
type Deps struct {
	Store  repository.Store
	Cache  ports.Cache // opcional
	Sheets ports.SpreadsheetWriter
	Log    *logger.Logger
}

// DashboardUseCase genera el resumen operativo de la empresa.
type DashboardUseCase struct {
	d   Deps
	now func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(d Deps) *DashboardUseCase {
	return &DashboardUseCase{d: d, now: time.Now}
}

// GetSummary lanza las seis lecturas en paralelo y arma el DashboardSummaryDTO.
// Si alguna falla se devuelve el primer error en orden de declaración.
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	key := ports.CacheKey(companyID, "dashboard", now.Format("2006-01-02"))
	var cached dto.DashboardSummaryDTO
	if cacheGet(ctx, uc.d, key, &cached) {
		return &cached, nil
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	dueBefore := now.Add(maintenanceHorizon)
	s := uc.d.Store

	type ordersResult struct {
		byStatus map[entity.OrderStatus]int
		err      error
	}
	type machinesResult struct {
		byStatus map[entity.MachineStatus]int
		err      error
	}
	type countResult struct {
		n   int
		err error
	}
	type revenueResult struct {
		amount decimal.Decimal
		err    error
	}

	ordersCh := make(chan ordersResult, 1)
	machinesCh := make(chan machinesResult, 1)
	breakdownsCh := make(chan countResult, 1)
	dueCh := make(chan countResult, 1)
	lowStockCh := make(chan countResult, 1)
	revenueCh := make(chan revenueResult, 1)

	go func() {
		m, err := s.Orders.CountByStatus(ctx)
		ordersCh <- ordersResult{m, err}
	}()
	go func() {
		m, err := s.Machines.CountByStatus(ctx)
		machinesCh <- machinesResult{m, err}
	}()
	go func() {
		n, err := s.Breakdowns.CountOpen(ctx)
		breakdownsCh <- countResult{n, err}
	}()
	go func() {
		_, total, err := s.Schedules.List(ctx, repository.ScheduleFilter{
			Page:      repository.Page{Limit: 1},
			Status:    entity.MaintenanceScheduled,
			DueBefore: &dueBefore,
		})
		dueCh <- countResult{total, err}
	}()
	go func() {
		items, err := s.Stock.ListBelowReorderPoint(ctx, "")
		lowStockCh <- countResult{len(items), err}
	}()
	go func() {
		amt, err := s.Invoices.Revenue(ctx, repository.Period{From: monthStart, To: now})
		revenueCh <- revenueResult{amt, err}
	}()

	orders := <-ordersCh
	machines := <-machinesCh
	breakdowns := <-breakdownsCh
	due := <-dueCh
	lowStock := <-lowStockCh
	revenue := <-revenueCh

	if orders.err != nil {
		return nil, fmt.Errorf("dashboard: pedidos por estado: %w", orders.err)
	}
	if machines.err != nil {
		return nil, fmt.Errorf("dashboard: máquinas por estado: %w", machines.err)
	}
	if breakdowns.err != nil {
		return nil, fmt.Errorf("dashboard: fallas abiertas: %w", breakdowns.err)
	}
	if due.err != nil {
		return nil, fmt.Errorf("dashboard: mantenimientos próximos: %w", due.err)
	}
	if lowStock.err != nil {
		return nil, fmt.Errorf("dashboard: stock bajo: %w", lowStock.err)
	}
	if revenue.err != nil {
		return nil, fmt.Errorf("dashboard: ingresos del mes: %w", revenue.err)
	}

	out := &dto.DashboardSummaryDTO{
		OrdersByStatus:   make(map[string]int, len(orders.byStatus)),
		MachinesByStatus: make(map[string]int, len(machines.byStatus)),
		OpenBreakdowns:   breakdowns.n,
		MaintenanceDue7d: due.n,
		LowStockCount:    lowStock.n,
		MonthRevenue:     revenue.amount.Round(2),
		DateLabel:        monthLabel(now),
		GeneratedAt:      now,
	}
	for st, n := range orders.byStatus {
		out.OrdersByStatus[string(st)] = n
	}
	for st, n := range machines.byStatus {
		out.MachinesByStatus[string(st)] = n
	}
	cacheSet(ctx, uc.d, key, out, dashboardTTL)
	return out, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}

func cacheGet(ctx context.Context, d Deps, key string, dest any) bool {
	if d.Cache == nil {
		return false
	}
	err := d.Cache.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, ports.ErrCacheMiss) {
		d.Log.Warn().Err(err).Str("key", key).Msg("lectura de caché fallida")
	}
	return false
}

func cacheSet(ctx context.Context, d Deps, key string, value any, ttl time.Duration) {
	if d.Cache == nil {
		return
	}
	if err := d.Cache.Set(ctx, key, value, ttl); err != nil {
		d.Log.Warn().Err(err).Str("key", key).Msg("escritura de caché fallida")
	}
}
