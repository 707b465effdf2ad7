// Package pdf genera el reporte imprimible del libro de stock de equipos.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + fecha de generación                        │
//	│  TOTALES: Total flota | Disponible | Arrendado               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Equipo | Ubicación | Disp. | Arr. | Total | Mín | Estado │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

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

	appledger "github.com/jhoicas/equipment-ledger/internal/application/ledger"
	"github.com/jhoicas/equipment-ledger/internal/domain/entity"
)

var _ appledger.ReportGenerator = (*StockReportGenerator)(nil)

var (
	colorPrimary  = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray     = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorCritical = &props.Color{Red: 196, Green: 120, Blue: 0}
	colorDepleted = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// StockReportGenerator implementa ledger.ReportGenerator usando Maroto v2.
type StockReportGenerator struct {
	title string
}

// NewStockReportGenerator construye el generador; title va en el encabezado y en los metadatos.
func NewStockReportGenerator(title string) *StockReportGenerator {
	if title == "" {
		title = "Inventario de equipos"
	}
	return &StockReportGenerator{title: title}
}

// GenerateStockReport genera el PDF y devuelve sus bytes.
func (g *StockReportGenerator) GenerateStockReport(_ context.Context, report appledger.StockReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(g.title, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(g.headerRow(report))
	m.AddRows(totalsRow(report))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	if len(report.Records) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin registros de inventario", props.Text{Size: 9, Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}
	for _, rec := range report.Records {
		m.AddRows(recordRow(rec))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte de inventario: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *StockReportGenerator) headerRow(report appledger.StockReport) core.Row {
	return row.New(16).Add(
		col.New(8).Add(text.New(g.title, props.Text{
			Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 2,
		})),
		col.New(4).Add(text.New("Generado: "+report.GeneratedAt.Format("02/01/2006 15:04 MST"), props.Text{
			Size: 8, Align: align.Right, Top: 4, Color: colorGray,
		})),
	)
}

func totalsRow(report appledger.StockReport) core.Row {
	cell := func(label string, v int64) core.Col {
		return col.New(4).Add(
			text.New(label, props.Text{Size: 8, Color: colorGray, Align: align.Center}),
			text.New(strconv.FormatInt(v, 10), props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Center, Top: 4}),
		)
	}
	return row.New(14).Add(
		cell("Total flota", report.Total),
		cell("Disponible", report.Available),
		cell("Arrendado", report.Leased),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("Equipo", 3, align.Left),
		h("Ubicación", 3, align.Left),
		h("Disp.", 1, align.Right),
		h("Arr.", 1, align.Right),
		h("Total", 1, align.Right),
		h("Mín.", 1, align.Right),
		h("Estado", 2, align.Center),
	)
}

func recordRow(rec *entity.StockRecord) core.Row {
	num := func(n int) core.Col {
		return col.New(1).Add(text.New(strconv.Itoa(n), props.Text{Size: 8, Align: align.Right, Top: 1}))
	}
	return row.New(6).Add(
		col.New(3).Add(text.New(rec.EquipmentRef, props.Text{Size: 8, Top: 1})),
		col.New(3).Add(text.New(rec.Location, props.Text{Size: 8, Top: 1})),
		num(rec.Available),
		num(rec.Leased),
		num(rec.Total),
		num(rec.Minimum),
		col.New(2).Add(text.New(string(rec.Status), props.Text{
			Size: 8, Align: align.Center, Top: 1, Style: fontstyle.Bold, Color: statusColor(rec.Status),
		})),
	)
}

func statusColor(s entity.StockStatus) *props.Color {
	switch s {
	case entity.StatusCritical:
		return colorCritical
	case entity.StatusDepleted:
		return colorDepleted
	}
	return colorGray
}
