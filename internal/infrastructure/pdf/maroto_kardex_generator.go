// Package pdf genera la tarjeta de stock (kardex) de un producto en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Producto + ID          │  Stock actual + Fecha     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Tipo | Razón | Referencia | Cant. | Saldo   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Entradas / Salidas / Saldo final                   │
//	│  FOOTER: QR con el ID del producto                          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

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

	appinventory "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorOut     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appinventory.KardexRenderer = (*MarotoKardexGenerator)(nil)

// MarotoKardexGenerator implementa inventory.KardexRenderer usando Maroto v2.
type MarotoKardexGenerator struct {
	author string
}

// NewMarotoKardexGenerator construye el generador. author aparece en los metadatos del PDF.
func NewMarotoKardexGenerator(author string) *MarotoKardexGenerator {
	return &MarotoKardexGenerator{author: author}
}

// RenderKardex genera el PDF y devuelve sus bytes.
func (g *MarotoKardexGenerator) RenderKardex(_ context.Context, k *appinventory.Kardex) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Kardex "+k.ProductName, true).
		WithAuthor(nonEmpty(g.author, "stock-ledger"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(k))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	if len(k.Lines) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin movimientos registrados", props.Text{
				Size: 8, Align: align.Center, Color: colorGray, Top: 2,
			}),
		)))
	}
	m.AddRows(tableDetailRows(k.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(k))

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(k))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar kardex: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: producto (izq) y stock actual + fecha de emisión (der).
func headerRow(k *appinventory.Kardex) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(k.ProductName, k.ProductID), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("ID: "+k.ProductID, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("TARJETA DE STOCK (KARDEX)", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Stock actual: "+formatThousands(k.CurrentStock), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Emitido: "+k.GeneratedAt.UTC().Format("02/01/2006 15:04")+" UTC", props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 3, align.Left),
		h("Tipo", 1, align.Center),
		h("Razón", 2, align.Left),
		h("Referencia", 2, align.Left),
		h("Cantidad", 2, align.Right),
		h("Saldo", 2, align.Right),
	)
}

// tableDetailRows: una fila por movimiento; las salidas en rojo.
func tableDetailRows(lines []appinventory.KardexLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		m := l.Movement
		qtyColor := colorPrimary
		if m.Kind == entity.MovementOut {
			qtyColor = colorOut
		}
		result = append(result, row.New(6).Add(
			col.New(3).Add(text.New(
				m.OccurredAt.UTC().Format("2006-01-02 15:04:05"),
				props.Text{Size: 8, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				string(m.Kind),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				string(m.Reason),
				props.Text{Size: 8, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				nonEmpty(m.Reference, "-"),
				props.Text{Size: 8, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				formatThousands(m.SignedQuantity()),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Color: qtyColor},
			)),
			col.New(2).Add(text.New(
				formatThousands(l.Balance),
				props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: entradas, salidas y saldo final alineados a la derecha.
func totalsRow(k *appinventory.Kardex) core.Row {
	var in, out int64
	for _, l := range k.Lines {
		if l.Movement.Kind == entity.MovementOut {
			out += l.Movement.Quantity
		} else {
			in += l.Movement.Quantity
		}
	}
	// top separa las tres líneas dentro de la misma columna.
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(
			label("Entradas:", 1),
			label("Salidas:", 7),
			label("SALDO FINAL:", 13),
		),
		col.New(3).Add(
			value(formatThousands(in), 1),
			value(formatThousands(out), 7),
			value(formatThousands(k.CurrentStock), 13),
		),
	)
}

// footerRow: QR con el ID del producto para escanear en bodega.
func footerRow(k *appinventory.Kardex) core.Row {
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(k.ProductID, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New(fmt.Sprintf("%d movimientos. El saldo de cada fila es la suma acumulada de entradas y salidas.", len(k.Lines)),
				props.Text{Size: 7, Top: 4, Left: 3, Color: colorGray}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatThousands inserta puntos de miles. Ej: 25000 → "25.000", -1200 → "-1.200".
func formatThousands(v int64) string {
	s := strconv.FormatInt(v, 10)
	sign := ""
	if v < 0 {
		sign, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return sign + s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + string(buf)
}
