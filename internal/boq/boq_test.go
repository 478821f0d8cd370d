package boq

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/shopcost/internal/pricing"
)

var generatedAt = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func sampleProject() pricing.Project {
	return pricing.Project{
		ID:       "p1",
		Name:     "Kitchen Cabinets",
		Client:   "Dela Cruz",
		Location: "Quezon City",
		Rows: []pricing.Row{
			{ID: "a", Use: true, Category: pricing.Materials, Item: "18mm Laminated MDF", Unit: "sheet", Cost: 1000, Qty: 2, WastePct: 10},
			{ID: "b", Use: false, Category: pricing.Accessories, Item: "Hinge", Unit: "pcs", Cost: 120, Qty: 4},
			{ID: "c", Use: true, Category: "Hardware", Item: "Mystery", Cost: 999, Qty: 1},
			{ID: "d", Use: true, Category: pricing.Labor, Item: "Installation", Unit: "LM", Cost: 1200, Qty: 1},
		},
		LaborMode:      pricing.LaborPercent,
		LaborPercent:   10,
		Logistics:      pricing.Logistics{Deliveries: 1},
		Overhead:       pricing.Overhead{HoursMonth: 160},
		Contractor:     pricing.Contractor{Mode: pricing.ContractorPercent, Value: 5},
		ContingencyPct: 10,
		MarkupPct:      20,
	}
}

func TestBuild_PrintsOnlyCountedRows(t *testing.T) {
	doc := Build(sampleProject(), generatedAt, "")

	require.Len(t, doc.Lines, 1)
	assert.Equal(t, "18mm Laminated MDF", doc.Lines[0].Item)
	assert.InDelta(t, 2.2, doc.Lines[0].EffectiveQty, 1e-9)
	assert.InDelta(t, 2200, doc.Lines[0].Subtotal, 1e-9)
	assert.InDelta(t, 3354.12, doc.Final, 1e-6)
	assert.Equal(t, "₱", doc.Symbol)
	assert.Equal(t, "Labor (10% of direct materials)", doc.Categories[3].Label)

	p := sampleProject()
	p.LaborMode = pricing.LaborUnit
	doc = Build(p, generatedAt, "$")
	require.Len(t, doc.Lines, 2)
	assert.Equal(t, "Installation", doc.Lines[1].Item)
	assert.Equal(t, 2, doc.Lines[1].No)
	assert.Equal(t, "Labor", doc.Categories[3].Label)
}

func TestFilename(t *testing.T) {
	doc := Build(sampleProject(), generatedAt, "")
	assert.Equal(t, "Kitchen_Cabinets-20250301.pdf", doc.Filename("pdf"))

	doc.Title = "***"
	assert.Equal(t, "boq-20250301.xlsx", doc.Filename("xlsx"))
}

func TestText(t *testing.T) {
	out := Text(Build(sampleProject(), generatedAt, ""))

	for _, expected := range []string{
		"Bill of Quantities: Kitchen Cabinets",
		"Client: Dela Cruz",
		"18mm Laminated MDF",
		"2,200.00",
		"Final price",
		"₱ 3,354.12",
		"16.7%",
	} {
		if !strings.Contains(out, expected) {
			t.Fatalf("expected text to contain %q, got:\n%s", expected, out)
		}
	}
	assert.NotContains(t, out, "Mystery")
}

func TestExcel(t *testing.T) {
	b, err := Excel(Build(sampleProject(), generatedAt, ""))
	require.NoError(t, err)
	require.NotEmpty(t, b)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"BOQ"}, f.GetSheetList())

	title, err := f.GetCellValue("BOQ", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Kitchen Cabinets", title)

	item, err := f.GetCellValue("BOQ", "C7")
	require.NoError(t, err)
	assert.Equal(t, "18mm Laminated MDF", item)
}

func TestExcel_FormulaInjectionEscaped(t *testing.T) {
	p := sampleProject()
	p.Name = "=HYPERLINK(\"x\")"
	b, err := Excel(Build(p, generatedAt, ""))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("BOQ", "A1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(title, "'"))
}

func TestPDF(t *testing.T) {
	b, err := PDF(Build(sampleProject(), generatedAt, ""))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(b, []byte("%PDF")), "expected PDF header")
}

func TestPDF_EmptyProject(t *testing.T) {
	b, err := PDF(Build(pricing.Project{}, generatedAt, ""))
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}
