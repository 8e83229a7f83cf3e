package pdf

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":        "0,00",
		"999":      "999,00",
		"25000":    "25.000,00",
		"1000000":  "1.000.000,00",
		"-1234.5":  "-1.234,50",
		"172.8":    "172,80",
		"12.345":   "12,35",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}
