package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProfitAndLossResponse estado de resultados de un periodo.
type ProfitAndLossResponse struct {
	PeriodStart   time.Time        `json:"period_start"`
	PeriodEnd     time.Time        `json:"period_end"`
	Revenue       decimal.Decimal  `json:"revenue"`
	COGS          decimal.Decimal  `json:"cogs"`
	GrossProfit   decimal.Decimal  `json:"gross_profit"`
	Expenses      []ExpenseLineDTO `json:"expenses"`
	TotalExpenses decimal.Decimal  `json:"total_expenses"`
	NetProfit     decimal.Decimal  `json:"net_profit"`
	GrossMargin   decimal.Decimal  `json:"gross_margin_pct"`
	GeneratedAt   time.Time        `json:"generated_at"`
}

// ExpenseLineDTO gasto por categoría.
type ExpenseLineDTO struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// ValuationLineDTO valor del stock de un producto en una ubicación.
type ValuationLineDTO struct {
	ProductID    string          `json:"product_id"`
	SKU          string          `json:"sku"`
	ProductName  string          `json:"product_name"`
	LocationID   string          `json:"location_id"`
	LocationName string          `json:"location_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalValue   decimal.Decimal `json:"total_value"`
}

// InventoryValuationResponse valorización total.
type InventoryValuationResponse struct {
	Lines      []ValuationLineDTO `json:"lines"`
	TotalValue decimal.Decimal    `json:"total_value"`
}

// DashboardSummaryDTO respuesta de GET /api/v1/dashboard/summary.
type DashboardSummaryDTO struct {
	OrdersByStatus   map[string]int  `json:"orders_by_status"`
	MachinesByStatus map[string]int  `json:"machines_by_status"`
	OpenBreakdowns   int             `json:"open_breakdowns"`
	MaintenanceDue7d int             `json:"maintenance_due_7d"`
	LowStockCount    int             `json:"low_stock_count"`
	MonthRevenue     decimal.Decimal `json:"month_revenue"`
	DateLabel        string          `json:"date_label"` // ej: "Octubre 2026"
	GeneratedAt      time.Time       `json:"generated_at"`
}
