package excel_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/infrastructure/excel"
)

func TestWrite_HojasYSecciones(t *testing.T) {
	book := ports.Spreadsheet{
		Order: []string{"Resumen"},
		Sheets: map[string][]ports.SpreadsheetSection{
			"Detalle": {{Headers: []string{"SKU", "Cantidad"}, Rows: [][]any{{"DEN-12", 40}, {"DRL-160", 12}}}},
			"Resumen": {
				{Title: "Ingresos", Headers: []string{"Concepto", "Valor"}, Rows: [][]any{{"Ventas", "1500.00"}}},
				{Title: "Gastos", Rows: [][]any{{"Energía", "300.00"}}},
			},
		},
	}
	out, err := excel.NewWriter().Write(context.Background(), book)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Resumen", "Detalle"}, f.GetSheetList())

	v, _ := f.GetCellValue("Resumen", "A1")
	assert.Equal(t, "Ingresos", v)
	v, _ = f.GetCellValue("Resumen", "B3")
	assert.Equal(t, "1500.00", v)
	// fila 4 vacía, fila 5 título de la segunda sección
	v, _ = f.GetCellValue("Resumen", "A5")
	assert.Equal(t, "Gastos", v)
	v, _ = f.GetCellValue("Resumen", "A6")
	assert.Equal(t, "Energía", v)

	v, _ = f.GetCellValue("Detalle", "A1")
	assert.Equal(t, "SKU", v)
	v, _ = f.GetCellValue("Detalle", "B3")
	assert.Equal(t, "12", v)
}

func TestWrite_LibroVacio(t *testing.T) {
	out, err := excel.NewWriter().Write(context.Background(), ports.Spreadsheet{})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
