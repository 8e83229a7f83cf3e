package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/application/dto"
	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/domain"
	"github.com/jhoicas/telar-erp/internal/domain/repository"
	"github.com/jhoicas/telar-erp/internal/domain/tenant"
)

// ReportsUseCase estado de resultados y valorización de inventario.
type ReportsUseCase struct {
	d   Deps
	now func() time.Time
}

// NewReportsUseCase construye el caso de uso.
func NewReportsUseCase(d Deps) *ReportsUseCase {
	return &ReportsUseCase{d: d, now: time.Now}
}

// period resuelve el rango pedido; sin fechas se usa el mes en curso hasta el final de hoy,
// así la clave de caché es estable durante el día.
func (uc *ReportsUseCase) period(in dto.PeriodRequest) (repository.Period, error) {
	from, to, err := in.Bounds()
	if err != nil {
		return repository.Period{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	now := uc.now().UTC()
	if from.IsZero() {
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	if to.IsZero() {
		to = time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	}
	if !from.Before(to) {
		return repository.Period{}, fmt.Errorf("%w: from debe ser anterior a to", domain.ErrInvalidInput)
	}
	return repository.Period{From: from, To: to}, nil
}

// ProfitAndLoss calcula ingresos, costo de ventas, gastos y utilidades del periodo.
//
//	revenue   = subtotal de facturas ISSUED/PAID
//	cogs      = costo de las salidas OUT de inventario
//	expenses  = subtotal de cuentas APPROVED/PAID por categoría
func (uc *ReportsUseCase) ProfitAndLoss(ctx context.Context, in dto.PeriodRequest) (*dto.ProfitAndLossResponse, error) {
	companyID, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	p, err := uc.period(in)
	if err != nil {
		return nil, err
	}
	key := ports.CacheKey(companyID, "pnl", p.From.Format(time.RFC3339), p.To.Format(time.RFC3339))
	var cached dto.ProfitAndLossResponse
	if cacheGet(ctx, uc.d, key, &cached) {
		return &cached, nil
	}

	revenue, err := uc.d.Store.Invoices.Revenue(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("pnl: ingresos: %w", err)
	}
	cogs, err := uc.d.Store.Movements.OutboundCost(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("pnl: costo de ventas: %w", err)
	}
	lines, err := uc.d.Store.Bills.ExpensesByCategory(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("pnl: gastos: %w", err)
	}

	out := &dto.ProfitAndLossResponse{
		PeriodStart:   p.From,
		PeriodEnd:     p.To,
		Revenue:       revenue.Round(2),
		COGS:          cogs.Round(2),
		Expenses:      make([]dto.ExpenseLineDTO, 0, len(lines)),
		TotalExpenses: decimal.Zero,
		GrossMargin:   decimal.Zero,
		GeneratedAt:   uc.now(),
	}
	for _, l := range lines {
		out.Expenses = append(out.Expenses, dto.ExpenseLineDTO{Category: l.Category, Amount: l.Amount.Round(2)})
		out.TotalExpenses = out.TotalExpenses.Add(l.Amount)
	}
	out.TotalExpenses = out.TotalExpenses.Round(2)
	out.GrossProfit = out.Revenue.Sub(out.COGS)
	out.NetProfit = out.GrossProfit.Sub(out.TotalExpenses)
	if out.Revenue.IsPositive() {
		out.GrossMargin = out.GrossProfit.Div(out.Revenue).Mul(decimal.NewFromInt(100)).Round(2)
	}
	cacheSet(ctx, uc.d, key, out, reportTTL)
	return out, nil
}

// ProfitAndLossXLSX exporta el estado de resultados a una hoja de cálculo.
func (uc *ReportsUseCase) ProfitAndLossXLSX(ctx context.Context, in dto.PeriodRequest) ([]byte, string, error) {
	pnl, err := uc.ProfitAndLoss(ctx, in)
	if err != nil {
		return nil, "", err
	}
	summary := ports.SpreadsheetSection{
		Title:   fmt.Sprintf("Estado de resultados %s a %s", pnl.PeriodStart.Format("2006-01-02"), pnl.PeriodEnd.Format("2006-01-02")),
		Headers: []string{"Concepto", "Valor"},
		Rows: [][]any{
			{"Ingresos", pnl.Revenue.InexactFloat64()},
			{"Costo de ventas", pnl.COGS.InexactFloat64()},
			{"Utilidad bruta", pnl.GrossProfit.InexactFloat64()},
			{"Gastos", pnl.TotalExpenses.InexactFloat64()},
			{"Utilidad neta", pnl.NetProfit.InexactFloat64()},
			{"Margen bruto %", pnl.GrossMargin.InexactFloat64()},
		},
	}
	expenses := ports.SpreadsheetSection{
		Title:   "Gastos por categoría",
		Headers: []string{"Categoría", "Valor"},
	}
	for _, e := range pnl.Expenses {
		expenses.Rows = append(expenses.Rows, []any{e.Category, e.Amount.InexactFloat64()})
	}
	book := ports.Spreadsheet{
		Sheets: map[string][]ports.SpreadsheetSection{
			"Resultados": {summary},
			"Gastos":     {expenses},
		},
		Order: []string{"Resultados", "Gastos"},
	}
	data, err := uc.d.Sheets.Write(ctx, book)
	if err != nil {
		return nil, "", err
	}
	return data, fmt.Sprintf("pnl-%s-%s.xlsx", pnl.PeriodStart.Format("20060102"), pnl.PeriodEnd.Format("20060102")), nil
}

// InventoryValuation cantidad x costo por producto y ubicación.
func (uc *ReportsUseCase) InventoryValuation(ctx context.Context) (*dto.InventoryValuationResponse, error) {
	if _, err := tenant.Require(ctx); err != nil {
		return nil, err
	}
	rows, err := uc.d.Store.Stock.Valuation(ctx)
	if err != nil {
		return nil, fmt.Errorf("valorización: %w", err)
	}
	out := &dto.InventoryValuationResponse{
		Lines:      make([]dto.ValuationLineDTO, 0, len(rows)),
		TotalValue: decimal.Zero,
	}
	for _, r := range rows {
		out.Lines = append(out.Lines, dto.ValuationLineDTO{
			ProductID:    r.ProductID,
			SKU:          r.SKU,
			ProductName:  r.Name,
			LocationID:   r.LocationID,
			LocationName: r.LocationName,
			Quantity:     r.Quantity,
			UnitCost:     r.UnitCost,
			TotalValue:   r.TotalValue.Round(2),
		})
		out.TotalValue = out.TotalValue.Add(r.TotalValue)
	}
	out.TotalValue = out.TotalValue.Round(2)
	return out, nil
}

// InventoryValuationXLSX exporta la valorización.
func (uc *ReportsUseCase) InventoryValuationXLSX(ctx context.Context) ([]byte, string, error) {
	val, err := uc.InventoryValuation(ctx)
	if err != nil {
		return nil, "", err
	}
	sec := ports.SpreadsheetSection{
		Title:   "Valorización de inventario",
		Headers: []string{"SKU", "Producto", "Ubicación", "Cantidad", "Costo unitario", "Valor"},
	}
	for _, l := range val.Lines {
		sec.Rows = append(sec.Rows, []any{
			l.SKU, l.ProductName, l.LocationName,
			l.Quantity.InexactFloat64(), l.UnitCost.InexactFloat64(), l.TotalValue.InexactFloat64(),
		})
	}
	sec.Rows = append(sec.Rows, []any{"", "", "Total", "", "", val.TotalValue.InexactFloat64()})
	data, err := uc.d.Sheets.Write(ctx, ports.Spreadsheet{
		Sheets: map[string][]ports.SpreadsheetSection{"Valorización": {sec}},
		Order:  []string{"Valorización"},
	})
	if err != nil {
		return nil, "", err
	}
	return data, "inventory-valuation-" + uc.now().Format("20060102") + ".xlsx", nil
}
