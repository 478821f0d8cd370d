// Package boq assembles the printable bill of quantities for a project and
// exports it as plain text, XLSX or PDF.
package boq

import (
	"time"

	"github.com/Simplici0/shopcost/internal/format"
	"github.com/Simplici0/shopcost/internal/pricing"
)

// Line is one printed row of the BOQ.
type Line struct {
	No           int
	Category     pricing.Category
	Item         string
	Unit         string
	UnitCost     float64
	Qty          float64
	WastePct     float64
	EffectiveQty float64
	Subtotal     float64
}

// Amount is a labelled figure in the summary.
type Amount struct {
	Label string
	Value float64
}

// Document holds everything needed to render a BOQ.
type Document struct {
	ProjectID   string
	Title       string
	Client      string
	Location    string
	GeneratedAt time.Time
	Symbol      string

	Lines      []Line
	Categories []Amount
	Layers     []Amount

	Final     float64
	NetMargin float64
}

// Build lays out the BOQ for p. Only rows that count toward the totals are
// printed: active rows in a known category, and Labor rows only in unit mode.
func Build(p pricing.Project, generatedAt time.Time, symbol string) Document {
	t := pricing.ComputeTotals(p)
	labor := pricing.ComputeLabor(p)

	doc := Document{
		ProjectID:   p.ID,
		Title:       p.Name,
		Client:      p.Client,
		Location:    p.Location,
		GeneratedAt: generatedAt,
		Symbol:      symbol,
		Final:       t.Final,
		NetMargin:   t.NetMargin,
	}
	if doc.Title == "" {
		doc.Title = "Untitled"
	}
	if doc.Symbol == "" {
		doc.Symbol = format.DefaultSymbol
	}

	for _, r := range p.Rows {
		if !r.Use || !r.Category.Known() {
			continue
		}
		if r.Category == pricing.Labor && labor.Mode == pricing.LaborPercent {
			continue
		}
		waste := pricing.ClampPercent(float64(r.WastePct))
		doc.Lines = append(doc.Lines, Line{
			No:           len(doc.Lines) + 1,
			Category:     r.Category,
			Item:         r.Item,
			Unit:         r.Unit,
			UnitCost:     r.Cost.Float(),
			Qty:          r.Qty.Float(),
			WastePct:     waste,
			EffectiveQty: r.Qty.Float() * (1 + waste/100),
			Subtotal:     pricing.RowSubtotal(r),
		})
	}

	for _, c := range pricing.Categories {
		label := string(c)
		if c == pricing.Labor && labor.Mode == pricing.LaborPercent {
			label = "Labor (" + format.Qty(labor.LaborPercent) + "% of direct materials)"
		}
		doc.Categories = append(doc.Categories, Amount{label, t.Category(c)})
	}

	doc.Layers = []Amount{
		{"Direct cost", t.Direct},
		{"Logistics", t.Logistics},
		{"Overhead allocation", t.OverheadAlloc},
		{"Operational cost", t.Operational},
		{"Contractor share", t.ContractorShare},
		{"Contingency", t.Contingency},
		{"Base cost", t.Base},
		{"Markup", t.Markup},
	}

	return doc
}

// Filename returns a download name for the document with the given extension.
func (d Document) Filename(ext string) string {
	name := make([]rune, 0, len(d.Title))
	for _, r := range d.Title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			name = append(name, r)
		case r == ' ':
			name = append(name, '_')
		}
	}
	if len(name) == 0 {
		name = []rune("boq")
	}
	return string(name) + "-" + d.GeneratedAt.Format("20060102") + "." + ext
}
