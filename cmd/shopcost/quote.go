package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Simplici0/shopcost/internal/boq"
	"github.com/Simplici0/shopcost/internal/format"
	"github.com/Simplici0/shopcost/internal/pricing"
)

var (
	colorAccent = lipgloss.Color("#7F5539")
	colorMuted  = lipgloss.Color("#6B7280")
	colorBorder = lipgloss.Color("#4B5563")

	quoteTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	quoteMutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	quoteLabelStyle = lipgloss.NewStyle().
			Width(40)

	quoteValueStyle = lipgloss.NewStyle().
			Width(18).
			Align(lipgloss.Right)

	quoteBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)

func (a *app) quoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote [project.json]",
		Short: "Price a project snapshot read from a file or stdin",
		Long: "Reads a project in its JSON record layout and prints the cost breakdown.\n" +
			"Use \"-\" or omit the argument to read from stdin. No database is needed.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open project file: %w", err)
				}
				defer f.Close()
				in = f
			}

			p, err := readProject(in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderQuote(p, a.cfg.CurrencySymbol, time.Now()))
			return err
		},
	}
}

func readProject(r io.Reader) (pricing.Project, error) {
	var p pricing.Project
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return pricing.Project{}, fmt.Errorf("decode project: %w", err)
	}
	return p, nil
}

// renderQuote lays out the category subtotals, the cost layers and the
// final price in a bordered box.
func renderQuote(p pricing.Project, symbol string, now time.Time) string {
	doc := boq.Build(p, now, symbol)

	line := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top,
			quoteLabelStyle.Render(label),
			quoteValueStyle.Render(value),
		)
	}

	var body []string
	for _, c := range doc.Categories {
		body = append(body, line(c.Label, format.Money(doc.Symbol, c.Value)))
	}
	body = append(body, "")
	for _, l := range doc.Layers {
		body = append(body, line(l.Label, format.Money(doc.Symbol, l.Value)))
	}
	body = append(body, "",
		quoteTitleStyle.Render(line("Final price", format.Money(doc.Symbol, doc.Final))),
		line("Net margin", format.Percent(doc.NetMargin)),
	)

	header := quoteTitleStyle.Render(doc.Title)
	if p.Client != "" {
		header += "\n" + quoteMutedStyle.Render("Client: "+p.Client)
	}
	header += "\n" + quoteMutedStyle.Render(fmt.Sprintf("%d printed rows", len(doc.Lines)))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		quoteBoxStyle.Render(strings.Join(body, "\n")),
	)
}
