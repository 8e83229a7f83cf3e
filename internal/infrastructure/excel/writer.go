// Package excel exporta reportes a XLSX con excelize.
package excel

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/telar-erp/internal/application/ports"
)

var _ ports.SpreadsheetWriter = (*Writer)(nil)

// Writer implementa ports.SpreadsheetWriter.
type Writer struct{}

// NewWriter construye el exportador.
func NewWriter() *Writer { return &Writer{} }

// Write genera un libro con una hoja por entrada de book.Sheets. Cada sección ocupa un bloque:
// título en negrita, cabeceras y filas, separado del siguiente por una fila vacía.
func (w *Writer) Write(_ context.Context, book ports.Spreadsheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"00467F"}},
	})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo: %w", err)
	}

	names := sheetOrder(book)
	if len(names) == 0 {
		names = []string{"Sheet1"}
	}
	for i, name := range names {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("excel: hoja %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("excel: hoja %q: %w", name, err)
		}
		if err := writeSections(f, name, book.Sheets[name], bold, header); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("excel: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetOrder respeta book.Order y agrega al final, ordenadas, las hojas no listadas.
func sheetOrder(book ports.Spreadsheet) []string {
	seen := make(map[string]bool, len(book.Sheets))
	out := make([]string, 0, len(book.Sheets))
	for _, n := range book.Order {
		if _, ok := book.Sheets[n]; ok && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	var rest []string
	for n := range book.Sheets {
		if !seen[n] {
			rest = append(rest, n)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func writeSections(f *excelize.File, sheet string, sections []ports.SpreadsheetSection, bold, header int) error {
	rowNo := 1
	for _, s := range sections {
		if s.Title != "" {
			if err := setRow(f, sheet, rowNo, []any{s.Title}, bold); err != nil {
				return err
			}
			rowNo++
		}
		if len(s.Headers) > 0 {
			cells := make([]any, len(s.Headers))
			for i, h := range s.Headers {
				cells[i] = h
			}
			if err := setRow(f, sheet, rowNo, cells, header); err != nil {
				return err
			}
			rowNo++
		}
		for _, r := range s.Rows {
			if err := setRow(f, sheet, rowNo, r, 0); err != nil {
				return err
			}
			rowNo++
		}
		rowNo++
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNo int, values []any, style int) error {
	if len(values) == 0 {
		return nil
	}
	start, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return fmt.Errorf("excel: celda: %w", err)
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("excel: fila %d de %q: %w", rowNo, sheet, err)
	}
	if style == 0 {
		return nil
	}
	end, err := excelize.CoordinatesToCellName(len(values), rowNo)
	if err != nil {
		return fmt.Errorf("excel: celda: %w", err)
	}
	return f.SetCellStyle(sheet, start, end, style)
}
