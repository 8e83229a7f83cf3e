// Package inventory contiene los servicios de dominio de costeo de inventario.
package inventory

import "github.com/shopspring/decimal"

// CostCalculator implementa el costo promedio ponderado.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Con stock actual negativo o nulo el costo de la entrada reemplaza al anterior.
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	if stockActual.LessThanOrEqual(decimal.Zero) {
		return costoEntrada
	}
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum).Round(4)
}

// SuggestedReorder cantidad sugerida de compra: 1.5 x punto de reorden - stock, nunca negativa.
func SuggestedReorder(stock, reorderPoint decimal.Decimal) decimal.Decimal {
	s := reorderPoint.Mul(decimal.RequireFromString("1.5")).Sub(stock)
	if s.IsNegative() {
		return decimal.Zero
	}
	return s
}

// Value devuelve cantidad x costo unitario redondeado a centavos.
func Value(qty, unitCost decimal.Decimal) decimal.Decimal {
	return qty.Mul(unitCost).Round(2)
}
