package boq

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/Simplici0/shopcost/internal/format"
)

// Text renders the document as plain text.
func Text(d Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Bill of Quantities: %s\n", d.Title)
	if d.Client != "" {
		fmt.Fprintf(&b, "Client: %s\n", d.Client)
	}
	if d.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", d.Location)
	}
	fmt.Fprintf(&b, "Date: %s\n\n", d.GeneratedAt.Format("2006-01-02"))

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tCategory\tItem\tUnit\tUnit cost\tQty\tWaste\tSubtotal\t")
	for _, l := range d.Lines {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s%%\t%s\t\n",
			l.No, l.Category, l.Item, l.Unit,
			format.Amount(l.UnitCost), format.Qty(l.Qty), format.Qty(l.WastePct),
			format.Amount(l.Subtotal))
	}
	_ = tw.Flush()

	b.WriteString("\n")
	tw = tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, a := range d.Categories {
		fmt.Fprintf(tw, "%s\t%s\t\n", a.Label, format.Money(d.Symbol, a.Value))
	}
	fmt.Fprintln(tw, "\t\t")
	for _, a := range d.Layers {
		fmt.Fprintf(tw, "%s\t%s\t\n", a.Label, format.Money(d.Symbol, a.Value))
	}
	fmt.Fprintf(tw, "Final price\t%s\t\n", format.Money(d.Symbol, d.Final))
	fmt.Fprintf(tw, "Net margin\t%s\t\n", format.Percent(d.NetMargin))
	_ = tw.Flush()

	return b.String()
}
