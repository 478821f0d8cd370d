package boq

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/Simplici0/shopcost/internal/format"
)

var (
	headerBg  = &props.Color{Red: 127, Green: 85, Blue: 57}
	summaryBg = &props.Color{Red: 245, Green: 240, Blue: 235}
	mutedText = &props.Color{Red: 110, Green: 110, Blue: 110}
)

// PDF renders the document as a printable A4 PDF. Amounts are printed
// without the currency symbol because the built-in fonts are Latin-1 only.
func PDF(d Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   mutedText,
		}).
		Build()

	m := maroto.New(cfg)

	addPDFHeader(m, d)
	addPDFTableHeader(m)
	for _, l := range d.Lines {
		addPDFLine(m, l)
	}
	addPDFSummary(m, d)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate boq pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func addPDFHeader(m core.Maroto, d Document) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(text.New("Bill of Quantities", props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center})),
		),
		row.New(8).Add(
			col.New(12).Add(text.New(d.Title, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Center})),
		),
	)

	meta := props.Text{Size: 9, Color: mutedText}
	metaRight := meta
	metaRight.Align = align.Right
	m.AddRows(
		row.New(6).Add(
			col.New(6).Add(text.New("Client: "+d.Client, meta)),
			col.New(6).Add(text.New("Date: "+d.GeneratedAt.Format("2006-01-02"), metaRight)),
		),
		row.New(6).Add(
			col.New(12).Add(text.New("Location: "+d.Location, meta)),
		),
		row.New(4),
	)
}

func addPDFTableHeader(m core.Maroto) {
	cell := &props.Cell{BackgroundColor: headerBg}
	h := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center, Color: &props.Color{Red: 255, Green: 255, Blue: 255}}
	hl := h
	hl.Align = align.Left

	m.AddRows(row.New(8).Add(
		col.New(1).Add(text.New("#", h)).WithStyle(cell),
		col.New(4).Add(text.New("Item", hl)).WithStyle(cell),
		col.New(1).Add(text.New("Unit", h)).WithStyle(cell),
		col.New(2).Add(text.New("Unit cost", h)).WithStyle(cell),
		col.New(1).Add(text.New("Qty", h)).WithStyle(cell),
		col.New(1).Add(text.New("Waste", h)).WithStyle(cell),
		col.New(2).Add(text.New("Subtotal", h)).WithStyle(cell),
	))
}

func addPDFLine(m core.Maroto, l Line) {
	base := props.Text{Size: 8, Align: align.Center}
	left := base
	left.Align = align.Left
	right := base
	right.Align = align.Right

	m.AddRows(row.New(7).Add(
		col.New(1).Add(text.New(fmt.Sprintf("%d", l.No), base)),
		col.New(4).Add(text.New(l.Item+" ("+string(l.Category)+")", left)),
		col.New(1).Add(text.New(l.Unit, base)),
		col.New(2).Add(text.New(format.Amount(l.UnitCost), right)),
		col.New(1).Add(text.New(format.Qty(l.Qty), right)),
		col.New(1).Add(text.New(format.Qty(l.WastePct)+"%", right)),
		col.New(2).Add(text.New(format.Amount(l.Subtotal), right)),
	))
}

func addPDFSummary(m core.Maroto, d Document) {
	m.AddRows(row.New(6))

	cell := &props.Cell{BackgroundColor: summaryBg}
	label := props.Text{Size: 9, Align: align.Right}
	value := props.Text{Size: 9, Align: align.Right}
	boldLabel := label
	boldLabel.Style = fontstyle.Bold
	boldValue := value
	boldValue.Style = fontstyle.Bold

	add := func(l string, v string, lt, vt props.Text) {
		m.AddRows(row.New(7).Add(
			col.New(8).Add(text.New(l, lt)).WithStyle(cell),
			col.New(4).Add(text.New(v, vt)).WithStyle(cell),
		))
	}

	for _, a := range d.Categories {
		add(a.Label, format.Amount(a.Value), label, value)
	}
	for _, a := range d.Layers {
		add(a.Label, format.Amount(a.Value), label, value)
	}
	add("Final price", format.Amount(d.Final), boldLabel, boldValue)
	add("Net margin", format.Percent(d.NetMargin), boldLabel, boldValue)
}
