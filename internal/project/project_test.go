package project

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/shopcost/internal/library"
	"github.com/Simplici0/shopcost/internal/pricing"
)

func sequentialIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestNew_Defaults(t *testing.T) {
	p := New(sequentialIDs())

	assert.Equal(t, "id-1", p.ID)
	assert.Equal(t, "New Project", p.Name)
	require.Len(t, p.Rows, 1)
	assert.Equal(t, "id-2", p.Rows[0].ID)
	assert.True(t, p.Rows[0].Use)
	assert.Equal(t, "sheet", p.Rows[0].Unit)
	assert.Equal(t, pricing.LaborPercent, p.LaborMode)
	assert.Equal(t, pricing.Number(1), p.Logistics.Deliveries)
	assert.Equal(t, pricing.Number(160), p.Overhead.HoursMonth)
	assert.Equal(t, pricing.ContractorNone, p.Contractor.Mode)

	assert.Zero(t, pricing.ComputeTotals(p).Final)
}

func TestNewID_Unique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}

func TestDuplicateRow_InsertsAfterSource(t *testing.T) {
	ids := sequentialIDs()
	p := pricing.Project{Rows: []pricing.Row{
		{ID: "a", Use: true, Category: pricing.Materials, Item: "MDF", Unit: "sheet", Cost: 1450, Qty: 2, WastePct: 10},
		{ID: "b", Use: false, Category: pricing.Labor, Item: "Install", Cost: 1200, Qty: 1},
	}}

	out, err := DuplicateRow(p, "a", ids)
	require.NoError(t, err)

	require.Len(t, out.Rows, 3)
	assert.Equal(t, []string{"a", "id-1", "b"}, rowIDs(out.Rows))

	dup := out.Rows[1]
	src := out.Rows[0]
	dup.ID = src.ID
	assert.Equal(t, src, dup)

	assert.Len(t, p.Rows, 2, "input must not change")
	assert.NoError(t, ValidateRowIDs(out))
}

func TestDuplicateRow_LastRow(t *testing.T) {
	p := pricing.Project{Rows: []pricing.Row{{ID: "a"}, {ID: "b"}}}

	out, err := DuplicateRow(p, "b", sequentialIDs())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "id-1"}, rowIDs(out.Rows))
}

func TestDeleteRow(t *testing.T) {
	p := pricing.Project{Rows: []pricing.Row{{ID: "a"}, {ID: "b"}, {ID: "c"}}}

	out, err := DeleteRow(p, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, rowIDs(out.Rows))
	assert.Equal(t, []string{"a", "b", "c"}, rowIDs(p.Rows))

	_, err = DeleteRow(p, "zzz")
	assert.ErrorIs(t, err, ErrRowNotFound)
}

func TestAddRowAndInsertPreset(t *testing.T) {
	ids := sequentialIDs()
	p := pricing.Project{Rows: []pricing.Row{{ID: "a"}}}

	p = AddRow(p, ids)
	p = InsertPreset(p, library.Defaults()[2], ids)

	require.Len(t, p.Rows, 3)
	assert.Equal(t, pricing.Materials, p.Rows[1].Category)
	assert.True(t, p.Rows[1].Use)
	assert.Equal(t, "Soft-close Hinge", p.Rows[2].Item)
	assert.Equal(t, "id-2", p.Rows[2].ID)
}

func TestUpdateRow(t *testing.T) {
	p := pricing.Project{Rows: []pricing.Row{{ID: "a", Use: true, Category: pricing.Materials}}}

	var err error
	p, err = UpdateRow(p, "a", FieldCost, "1450")
	require.NoError(t, err)
	p, err = UpdateRow(p, "a", FieldQty, 2.0)
	require.NoError(t, err)
	p, err = UpdateRow(p, "a", FieldWastePct, "oops")
	require.NoError(t, err)
	p, err = UpdateRow(p, "a", FieldItem, "18mm MDF")
	require.NoError(t, err)
	p, err = UpdateRow(p, "a", FieldCategory, "Hardware")
	require.NoError(t, err)

	row := p.Rows[0]
	assert.Equal(t, pricing.Number(1450), row.Cost)
	assert.Equal(t, pricing.Number(2), row.Qty)
	assert.Equal(t, pricing.Number(0), row.WastePct)
	assert.Equal(t, "18mm MDF", row.Item)
	assert.Equal(t, pricing.Category("Hardware"), row.Category)
	assert.False(t, row.Category.Known())

	assert.Zero(t, pricing.ComputeTotals(p).Direct, "unknown category must be cost-excluded")

	p, err = UpdateRow(p, "a", FieldUse, false)
	require.NoError(t, err)
	assert.False(t, p.Rows[0].Use)

	_, err = UpdateRow(p, "a", "color", "red")
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = UpdateRow(p, "missing", FieldCost, 1)
	assert.ErrorIs(t, err, ErrRowNotFound)
}

func TestFilterAndStats(t *testing.T) {
	rows := []pricing.Row{
		{ID: "a", Use: true, Category: pricing.Materials},
		{ID: "b", Use: false, Category: pricing.Labor},
		{ID: "c", Use: true, Category: "Misc"},
	}

	assert.Len(t, Filter(rows, FilterAll), 3)
	assert.Len(t, Filter(rows, ""), 3)
	assert.Equal(t, []string{"b"}, rowIDs(Filter(rows, "Labor")))

	s := RowStats(pricing.Project{Rows: rows})
	assert.Equal(t, Stats{Rows: 3, Active: 2}, s)
}

func TestValidateRowIDs(t *testing.T) {
	assert.NoError(t, ValidateRowIDs(pricing.Project{Rows: []pricing.Row{{ID: "a"}, {ID: "b"}}}))
	assert.Error(t, ValidateRowIDs(pricing.Project{Rows: []pricing.Row{{ID: "a"}, {ID: "a"}}}))
	assert.Error(t, ValidateRowIDs(pricing.Project{Rows: []pricing.Row{{ID: ""}}}))
}

func rowIDs(rows []pricing.Row) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids
}

func TestRowStats_CountsRowsWithoutUseFlag(t *testing.T) {
	var p pricing.Project
	require.NoError(t, json.Unmarshal([]byte(`{"rows": [
		{"id": "a", "category": "Materials", "cost": 100, "qty": 1},
		{"id": "b", "use": null, "category": "Materials", "cost": 100, "qty": 1},
		{"id": "c", "use": false, "category": "Materials", "cost": 100, "qty": 1},
		{"id": "d", "use": true, "category": "Materials", "cost": 100, "qty": 1}
	]}`), &p))

	assert.Equal(t, Stats{Rows: 4, Active: 3}, RowStats(p))
	assert.InDelta(t, 100, pricing.ComputeTotals(p).Materials, 1e-9, "only rows with use set are costed")

	p, err := UpdateRow(p, "a", FieldUse, "false")
	require.NoError(t, err)
	assert.Equal(t, Stats{Rows: 4, Active: 2}, RowStats(p))

	p, err = UpdateRow(p, "a", FieldUse, "true")
	require.NoError(t, err)
	assert.True(t, p.Rows[0].Use)
	assert.InDelta(t, 200, pricing.ComputeTotals(p).Materials, 1e-9)
}
