// Package pdf implementa el reporte de valorización de inventario en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + fecha de corte                            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Ubicación | Ítems | Valor total                     │
//	│  TOTAL GENERAL                                              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ANEXO: SKUs en o bajo el mínimo                            │
//	│  ANEXO: registros con stock negativo                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
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

	"github.com/jhoicas/Comanda-api/internal/application/dto"
	"github.com/jhoicas/Comanda-api/internal/application/ports"
)

var _ ports.ValuationPDFGenerator = (*MarotoReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReportGenerator implementa ValuationPDFGenerator usando Maroto v2.
type MarotoReportGenerator struct{}

// NewMarotoReportGenerator construye el generador.
func NewMarotoReportGenerator() *MarotoReportGenerator { return &MarotoReportGenerator{} }

// GenerateValuationReport genera el PDF y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateValuationReport(
	_ context.Context,
	reportDate time.Time,
	locations []dto.LocationValuationDTO,
	lowStock []dto.LowStockDTO,
	negatives []dto.NegativeStockDTO,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Valorización de Inventario", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(reportDate))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	// Valorización por ubicación
	m.AddRows(valuationHeaderRow())
	total := decimal.Zero
	for _, loc := range locations {
		m.AddRows(valuationDetailRow(loc))
		total = total.Add(loc.TotalValue)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(grandTotalRow(total))

	// Anexo: stock bajo
	m.AddRows(line.NewRow(4))
	m.AddRows(sectionTitleRow(fmt.Sprintf("STOCK BAJO MÍNIMO (%d)", len(lowStock))))
	if len(lowStock) == 0 {
		m.AddRows(emptyNoteRow("Sin productos bajo el mínimo."))
	} else {
		m.AddRows(lowStockHeaderRow())
		for _, item := range lowStock {
			m.AddRows(lowStockDetailRow(item))
		}
	}

	// Anexo: stock negativo
	m.AddRows(line.NewRow(4))
	m.AddRows(sectionTitleRow(fmt.Sprintf("STOCK NEGATIVO (%d)", len(negatives))))
	if len(negatives) == 0 {
		m.AddRows(emptyNoteRow("Sin registros negativos."))
	} else {
		m.AddRows(negativeHeaderRow())
		for _, item := range negatives {
			m.AddRows(negativeDetailRow(item))
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(reportDate time.Time) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("VALORIZACIÓN DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Costo promedio ponderado por ubicación", props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Fecha de corte", props.Text{
				Size: 8, Align: align.Right, Top: 1, Color: colorGray,
			}),
			text.New(reportDate.Format("02/01/2006 15:04"), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 7,
			}),
		),
	)
}

func sectionTitleRow(title string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 2,
		}),
	))
}

func emptyNoteRow(note string) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(note, props.Text{Size: 8, Color: colorGray, Top: 1, Left: 2}),
	))
}

func valuationHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("Ubicación", 6, align.Left),
		h("Ítems", 2, align.Center),
		h("Valor total", 4, align.Right),
	)
}

func valuationDetailRow(loc dto.LocationValuationDTO) core.Row {
	return row.New(7).Add(
		col.New(6).Add(text.New(
			fmt.Sprintf("%s — %s", loc.LocationCode, loc.LocationName),
			props.Text{Size: 8, Align: align.Left, Top: 1},
		)),
		col.New(2).Add(text.New(
			fmt.Sprintf("%d", loc.ItemCount),
			props.Text{Size: 8, Align: align.Center, Top: 1},
		)),
		col.New(4).Add(text.New(
			"$"+formatMoney(loc.TotalValue.StringFixed(0)),
			props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
		)),
	)
}

func grandTotalRow(total decimal.Decimal) core.Row {
	return row.New(10).Add(
		col.New(8).Add(text.New("TOTAL INVENTARIO:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(4).Add(text.New("$"+formatMoney(total.StringFixed(0)), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}

func lowStockHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Producto", 5, align.Left),
		h("Ubicación", 2, align.Left),
		h("Cantidad", 2, align.Right),
		h("Mín.", 1, align.Right),
	)
}

func lowStockDetailRow(item dto.LowStockDTO) core.Row {
	return row.New(6).Add(
		col.New(2).Add(text.New(item.SKU, props.Text{Size: 8, Top: 1})),
		col.New(5).Add(text.New(item.ProductName, props.Text{Size: 8, Top: 1})),
		col.New(2).Add(text.New(item.LocationID, props.Text{Size: 8, Top: 1})),
		col.New(2).Add(text.New(item.Quantity.String(), props.Text{
			Size: 8, Align: align.Right, Top: 1, Right: 1,
		})),
		col.New(1).Add(text.New(item.MinQty.String(), props.Text{
			Size: 8, Align: align.Right, Top: 1, Right: 1,
		})),
	)
}

func negativeHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("SKU", 2, align.Left),
		h("Producto", 5, align.Left),
		h("Ubicación", 2, align.Left),
		h("Cantidad", 2, align.Right),
		h("Costo", 1, align.Right),
	)
}

func negativeDetailRow(item dto.NegativeStockDTO) core.Row {
	return row.New(6).Add(
		col.New(2).Add(text.New(item.SKU, props.Text{Size: 8, Top: 1})),
		col.New(5).Add(text.New(item.ProductName, props.Text{Size: 8, Top: 1})),
		col.New(2).Add(text.New(item.LocationID, props.Text{Size: 8, Top: 1})),
		col.New(2).Add(text.New(item.Quantity.String(), props.Text{
			Size: 8, Align: align.Right, Top: 1, Right: 1, Color: colorRed,
		})),
		col.New(1).Add(text.New(
			"$"+formatMoney(item.AvgCost.StringFixed(0)),
			props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
		)),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	n := len(s)
	if n <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	if neg {
		return "-" + string(buf)
	}
	return string(buf)
}
