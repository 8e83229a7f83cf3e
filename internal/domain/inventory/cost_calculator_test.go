package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCostCalculator(t *testing.T) {
	tests := []struct {
		name                       string
		stock, cost, inQty, inCost string
		want                       string
	}{
		{"primera entrada", "0", "0", "10", "5", "5"},
		{"promedio simple", "10", "5", "10", "7", "6"},
		{"ponderado", "100", "2", "50", "3.5", "2.5"},
		{"stock negativo toma costo de entrada", "-5", "4", "10", "6", "6"},
		{"redondeo a 4 decimales", "3", "1", "3", "2", "1.5"},
		{"tercios", "1", "1", "2", "2", "1.6667"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CostCalculator(d(tt.stock), d(tt.cost), d(tt.inQty), d(tt.inCost))
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestSuggestedReorder(t *testing.T) {
	assert.True(t, SuggestedReorder(d("4"), d("10")).Equal(d("11")))
	assert.True(t, SuggestedReorder(d("20"), d("10")).IsZero())
}

func TestValue(t *testing.T) {
	assert.True(t, Value(d("3"), d("2.3333")).Equal(d("7")))
}
