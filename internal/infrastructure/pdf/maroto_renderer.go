// Package pdf genera las representaciones PDF de facturas e informes de cumplimiento con Maroto v2.
//
// Layout de la factura (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + NIT  │  N° Factura + Fechas         │
//	│  EMISOR: Dirección / Tel / Email                             │
//	│  CLIENTE: Nombre + NIT/CC + contacto                         │
//	│  TABLA: Cant | Descripción | P.Unit | IVA | Subtotal         │
//	│  TOTALES: Subtotal / Impuestos / TOTAL                       │
//	│  FOOTER: estado + QR de verificación                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"sort"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/domain/entity"
)

var _ ports.PDFRenderer = (*MarotoRenderer)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorDanger  = &props.Color{Red: 170, Green: 30, Blue: 30}
)

const dateLayout = "02/01/2006"

// MarotoRenderer implementa ports.PDFRenderer usando Maroto v2.
type MarotoRenderer struct{}

// NewMarotoRenderer construye el generador.
func NewMarotoRenderer() *MarotoRenderer { return &MarotoRenderer{} }

func newDocument(title, author string) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(author, true).
		Build()
	return maroto.New(cfg)
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// InvoicePDF genera la factura de venta y devuelve sus bytes.
func (g *MarotoRenderer) InvoicePDF(_ context.Context, doc ports.InvoiceDocument) ([]byte, error) {
	if doc.Invoice == nil || doc.Company == nil || doc.Customer == nil {
		return nil, fmt.Errorf("pdf: factura incompleta")
	}
	inv := doc.Invoice
	m := newDocument("Factura "+inv.InvoiceNumber, doc.Company.Name)

	m.AddRows(invoiceHeaderRow(inv, doc.Company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(issuerRow(doc.Company))
	m.AddRows(customerRow(doc.Customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow(
		headerCell{"Cant.", 1, align.Center},
		headerCell{"Descripción", 5, align.Left},
		headerCell{"Precio Unit.", 2, align.Right},
		headerCell{"IVA%", 1, align.Center},
		headerCell{"Subtotal", 3, align.Right},
	))
	m.AddRows(invoiceLineRows(doc.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(inv))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(invoiceFooterRow(inv, doc.Company))

	return generate(m)
}

// CompliancePDF genera el informe de cumplimiento de calidad.
func (g *MarotoRenderer) CompliancePDF(_ context.Context, doc ports.ComplianceDocument) ([]byte, error) {
	if doc.Report == nil || doc.Company == nil {
		return nil, fmt.Errorf("pdf: informe incompleto")
	}
	r := doc.Report
	m := newDocument(r.Title, doc.Company.Name)

	m.AddRows(row.New(20).Add(
		col.New(7).Add(
			text.New(doc.Company.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("NIT: "+doc.Company.TaxID, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("INFORME DE CUMPLIMIENTO", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(r.Title, props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7}),
			text.New(fmt.Sprintf("Periodo: %s – %s", r.PeriodStart.Format(dateLayout), r.PeriodEnd.Format(dateLayout)),
				props.Text{Size: 8, Align: align.Right, Top: 14, Color: colorGray}),
		),
	))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Estándar: %s   |   Estado: %s", nonEmpty(r.Standard, "-"), r.Status),
			props.Text{Size: 9, Top: 2}),
	)))

	// indicadores
	m.AddRows(tableHeaderRow(
		headerCell{"Inspecciones", 2, align.Center},
		headerCell{"Aprobadas", 2, align.Center},
		headerCell{"Rechazadas", 2, align.Center},
		headerCell{"Tasa aprob.", 2, align.Center},
		headerCell{"Defectos", 2, align.Center},
		headerCell{"Críticos", 2, align.Center},
	))
	cell := func(s string, c *props.Color) core.Col {
		return col.New(2).Add(text.New(s, props.Text{Size: 10, Align: align.Center, Top: 2, Color: c}))
	}
	var criticalColor *props.Color
	if r.CriticalDefects > 0 {
		criticalColor = colorDanger
	}
	m.AddRows(row.New(9).Add(
		cell(fmt.Sprint(r.TotalInspections), nil),
		cell(fmt.Sprint(r.Passed), nil),
		cell(fmt.Sprint(r.Failed), nil),
		cell(r.PassRate.Mul(decimal.NewFromInt(100)).StringFixed(2)+"%", nil),
		cell(fmt.Sprint(r.TotalDefects), nil),
		cell(fmt.Sprint(r.CriticalDefects), criticalColor),
	))

	m.AddRows(line.NewRow(4))
	m.AddRows(row.New(7).Add(col.New(12).Add(
		text.New("DEFECTOS POR TIPO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
	)))
	m.AddRows(defectRows(doc.DefectsByType)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Generado el %s", r.UpdatedAt.Format(dateLayout)),
			props.Text{Size: 7, Color: colorGray, Top: 2}),
	)))
	return generate(m)
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func invoiceHeaderRow(inv *entity.Invoice, company *entity.Company) core.Row {
	dates := "Emisión: " + inv.IssueDate.Format(dateLayout)
	if inv.DueDate != nil {
		dates += "   Vence: " + inv.DueDate.Format(dateLayout)
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("NIT: "+company.TaxID, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("FACTURA DE VENTA", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(inv.InvoiceNumber, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7}),
			text.New(dates, props.Text{Size: 8, Align: align.Right, Top: 14, Color: colorGray}),
		),
	)
}

func issuerRow(company *entity.Company) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL EMISOR", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("Dirección: %s   |   Tel: %s   |   Email: %s",
				nonEmpty(company.Address, "-"),
				nonEmpty(company.Phone, "-"),
				nonEmpty(company.Email, "-"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func customerRow(customer *entity.Customer) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(customer.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("NIT/CC: %s   |   Email: %s   |   Tel: %s",
				nonEmpty(customer.TaxID, "-"),
				nonEmpty(customer.Email, "-"),
				nonEmpty(customer.Phone, "-"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

type headerCell struct {
	label string
	size  int
	align align.Type
}

func tableHeaderRow(cells ...headerCell) core.Row {
	cols := make([]core.Col, 0, len(cells))
	for _, c := range cells {
		cols = append(cols, col.New(c.size).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: c.align, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(cols...)
}

func invoiceLineRows(lines []ports.InvoiceLine) []core.Row {
	out := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		out = append(out, row.New(7).Add(
			col.New(1).Add(text.New(l.Quantity.String(), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(l.ProductName, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New("$"+formatMoney(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(l.TaxRate.Mul(decimal.NewFromInt(100)).StringFixed(0)+"%", props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New("$"+formatMoney(l.Subtotal), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

func totalsRow(inv *entity.Invoice) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grand := func(s string, right float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: right, Top: 10})
	}
	return row.New(18).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:"),
			text.New("Impuestos:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 5}),
			grand("TOTAL:", 2),
		),
		col.New(3).Add(
			value("$"+formatMoney(inv.Subtotal)),
			text.New("$"+formatMoney(inv.TaxTotal), props.Text{Size: 9, Align: align.Right, Right: 1, Top: 5}),
			grand("$"+formatMoney(inv.Total), 1),
		),
	)
}

// invoiceFooterRow estado y QR con número, fecha y total para verificación manual.
func invoiceFooterRow(inv *entity.Invoice, company *entity.Company) core.Row {
	qr := strings.Join([]string{company.TaxID, inv.InvoiceNumber, inv.IssueDate.Format("2006-01-02"), inv.Total.StringFixed(2)}, "|")
	status := "Estado: " + string(inv.Status)
	if inv.PaidAt != nil {
		status += " (" + inv.PaidAt.Format(dateLayout) + ")"
	}
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(qr, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New(status, props.Text{Style: fontstyle.Bold, Size: 9, Top: 4, Left: 3, Color: colorPrimary}),
			text.New("Conserve este documento como soporte de la operación.", props.Text{
				Size: 7, Top: 12, Left: 3, Color: colorGray,
			}),
		),
	)
}

// defectRows una fila por tipo de defecto, de mayor a menor cantidad.
func defectRows(byType map[string]int) []core.Row {
	if len(byType) == 0 {
		return []core.Row{row.New(6).Add(col.New(12).Add(
			text.New("Sin defectos registrados en el periodo.", props.Text{Size: 8, Color: colorGray, Top: 1}),
		))}
	}
	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if byType[types[i]] != byType[types[j]] {
			return byType[types[i]] > byType[types[j]]
		}
		return types[i] < types[j]
	})
	out := make([]core.Row, 0, len(types))
	for _, t := range types {
		out = append(out, row.New(6).Add(
			col.New(8).Add(text.New(t, props.Text{Size: 8, Top: 1, Left: 2})),
			col.New(4).Add(text.New(fmt.Sprint(byType[t]), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 2})),
		))
	}
	return out
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatMoney redondea a 2 decimales con puntos de miles y coma decimal.
// Ej: 25000 → "25.000,00", -1234.5 → "-1.234,50"
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+4)
	if d.IsNegative() {
		buf = append(buf, '-')
	}
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	buf = append(buf, ',')
	return string(append(buf, frac...))
}
