package boq

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const excelSheetName = "BOQ"

// Excel renders the document as an XLSX workbook. Amounts are written as
// numbers with a two-decimal format so the sheet stays computable.
func Excel(d Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), excelSheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	widths := []float64{6, 14, 40, 10, 14, 10, 10, 16}
	for i, col := range columns {
		if err := f.SetColWidth(excelSheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}
	lastCol := columns[len(columns)-1]

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#7F5539"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	moneyFmt := "#,##0.00"
	lineStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders()})
	if err != nil {
		return nil, fmt.Errorf("create line style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders(), CustomNumFmt: &moneyFmt})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}
	labelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create label style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}, CustomNumFmt: &moneyFmt})
	if err != nil {
		return nil, fmt.Errorf("create total style: %w", err)
	}
	percentStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}, NumFmt: 10})
	if err != nil {
		return nil, fmt.Errorf("create percent style: %w", err)
	}

	if err := f.MergeCell(excelSheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(excelSheetName, "A1", sanitizeExcelCell(d.Title))
	f.SetCellStyle(excelSheetName, "A1", lastCol+"1", titleStyle)
	f.SetCellValue(excelSheetName, "A2", "Client: "+d.Client)
	f.SetCellValue(excelSheetName, "A3", "Location: "+d.Location)
	f.SetCellValue(excelSheetName, "A4", "Date: "+d.GeneratedAt.Format("2006-01-02"))

	headers := []string{"#", "Category", "Item", "Unit", "Unit cost", "Qty", "Waste %", "Subtotal"}
	for i, h := range headers {
		f.SetCellValue(excelSheetName, columns[i]+"6", h)
	}
	f.SetCellStyle(excelSheetName, "A6", lastCol+"6", headerStyle)

	row := 7
	for _, l := range d.Lines {
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(excelSheetName, "A"+r, l.No)
		f.SetCellValue(excelSheetName, "B"+r, string(l.Category))
		f.SetCellValue(excelSheetName, "C"+r, sanitizeExcelCell(l.Item))
		f.SetCellValue(excelSheetName, "D"+r, sanitizeExcelCell(l.Unit))
		f.SetCellValue(excelSheetName, "E"+r, l.UnitCost)
		f.SetCellValue(excelSheetName, "F"+r, l.Qty)
		f.SetCellValue(excelSheetName, "G"+r, l.WastePct)
		f.SetCellValue(excelSheetName, "H"+r, l.Subtotal)
		f.SetCellStyle(excelSheetName, "A"+r, "D"+r, lineStyle)
		f.SetCellStyle(excelSheetName, "E"+r, "E"+r, moneyStyle)
		f.SetCellStyle(excelSheetName, "F"+r, "G"+r, lineStyle)
		f.SetCellStyle(excelSheetName, "H"+r, "H"+r, moneyStyle)
		row++
	}

	row++
	summary := append(append([]Amount{}, d.Categories...), d.Layers...)
	summary = append(summary, Amount{Label: "Final price", Value: d.Final})
	for _, a := range summary {
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(excelSheetName, "G"+r, a.Label)
		f.SetCellStyle(excelSheetName, "G"+r, "G"+r, labelStyle)
		f.SetCellValue(excelSheetName, "H"+r, a.Value)
		f.SetCellStyle(excelSheetName, "H"+r, "H"+r, totalStyle)
		row++
	}
	r := fmt.Sprintf("%d", row)
	f.SetCellValue(excelSheetName, "G"+r, "Net margin")
	f.SetCellStyle(excelSheetName, "G"+r, "G"+r, labelStyle)
	f.SetCellValue(excelSheetName, "H"+r, d.NetMargin)
	f.SetCellStyle(excelSheetName, "H"+r, "H"+r, percentStyle)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prefixes values that Excel would otherwise run as formulas.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
