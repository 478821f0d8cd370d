// Package project implements the edit operations on a project snapshot.
// Every operation returns a new Project and leaves its input untouched.
package project

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Simplici0/shopcost/internal/library"
	"github.com/Simplici0/shopcost/internal/pricing"
)

const (
	defaultName       = "New Project"
	defaultHoursMonth = 160
	// FilterAll disables the category filter.
	FilterAll = "ALL"
)

// ErrRowNotFound is returned when a row id does not exist in the project.
var ErrRowNotFound = errors.New("row not found")

// ErrUnknownField is returned by UpdateRow for a field it does not edit.
var ErrUnknownField = errors.New("unknown row field")

// IDFunc generates opaque unique ids.
type IDFunc func() string

// NewID returns a random UUID string.
func NewID() string {
	return uuid.NewString()
}

// New returns a default project with a single empty Materials row.
func New(newID IDFunc) pricing.Project {
	return pricing.Project{
		ID:   newID(),
		Name: defaultName,
		Rows: []pricing.Row{
			{ID: newID(), Use: true, Category: pricing.Materials, Unit: "sheet"},
		},
		LaborMode: pricing.LaborPercent,
		Logistics: pricing.Logistics{Deliveries: 1},
		Overhead:  pricing.Overhead{HoursMonth: defaultHoursMonth},
		Contractor: pricing.Contractor{
			Mode: pricing.ContractorNone,
		},
	}
}

// AddRow appends a blank active Materials row.
func AddRow(p pricing.Project, newID IDFunc) pricing.Project {
	out := p.Clone()
	out.Rows = append(out.Rows, pricing.Row{ID: newID(), Use: true, Category: pricing.Materials})
	return out
}

// InsertPreset appends a row built from preset.
func InsertPreset(p pricing.Project, preset library.Preset, newID IDFunc) pricing.Project {
	out := p.Clone()
	out.Rows = append(out.Rows, preset.NewRow(newID()))
	return out
}

// DuplicateRow copies the row with a fresh id and inserts it right after the source.
func DuplicateRow(p pricing.Project, rowID string, newID IDFunc) (pricing.Project, error) {
	idx := indexOf(p.Rows, rowID)
	if idx < 0 {
		return p, fmt.Errorf("duplicate row %q: %w", rowID, ErrRowNotFound)
	}

	dup := p.Rows[idx]
	dup.ID = newID()

	out := p
	out.Rows = make([]pricing.Row, 0, len(p.Rows)+1)
	out.Rows = append(out.Rows, p.Rows[:idx+1]...)
	out.Rows = append(out.Rows, dup)
	out.Rows = append(out.Rows, p.Rows[idx+1:]...)
	return out, nil
}

// DeleteRow removes the row.
func DeleteRow(p pricing.Project, rowID string) (pricing.Project, error) {
	idx := indexOf(p.Rows, rowID)
	if idx < 0 {
		return p, fmt.Errorf("delete row %q: %w", rowID, ErrRowNotFound)
	}

	out := p
	out.Rows = make([]pricing.Row, 0, len(p.Rows)-1)
	out.Rows = append(out.Rows, p.Rows[:idx]...)
	out.Rows = append(out.Rows, p.Rows[idx+1:]...)
	return out, nil
}

// Field names accepted by UpdateRow.
const (
	FieldUse      = "use"
	FieldCategory = "category"
	FieldItem     = "item"
	FieldUnit     = "unit"
	FieldCost     = "cost"
	FieldQty      = "qty"
	FieldWastePct = "wastePct"
)

// UpdateRow sets a single field of a row from its raw input value.
// Numeric fields are coerced; unknown categories are stored as given.
func UpdateRow(p pricing.Project, rowID, field string, value any) (pricing.Project, error) {
	idx := indexOf(p.Rows, rowID)
	if idx < 0 {
		return p, fmt.Errorf("update row %q: %w", rowID, ErrRowNotFound)
	}

	out := p.Clone()
	row := &out.Rows[idx]

	switch field {
	case FieldUse:
		row.SetUse(pricing.Truthy(value))
	case FieldCategory:
		row.Category = pricing.Category(pricing.Text(value))
	case FieldItem:
		row.Item = pricing.Text(value)
	case FieldUnit:
		row.Unit = pricing.Text(value)
	case FieldCost:
		row.Cost = pricing.Number(pricing.Coerce(value))
	case FieldQty:
		row.Qty = pricing.Number(pricing.Coerce(value))
	case FieldWastePct:
		row.WastePct = pricing.Number(pricing.Coerce(value))
	default:
		return p, fmt.Errorf("update row %q field %q: %w", rowID, field, ErrUnknownField)
	}

	return out, nil
}

// Filter returns the rows shown for a category filter. FilterAll or an
// empty filter returns every row.
func Filter(rows []pricing.Row, category string) []pricing.Row {
	if category == "" || category == FilterAll {
		return rows
	}
	out := make([]pricing.Row, 0, len(rows))
	for _, r := range rows {
		if string(r.Category) == category {
			out = append(out, r)
		}
	}
	return out
}

// Stats counts stored rows and active rows.
type Stats struct {
	Rows   int `json:"rows"`
	Active int `json:"active"`
}

// RowStats returns the row counters for p. A row whose use flag was never
// set is counted as active even though it is not costed.
func RowStats(p pricing.Project) Stats {
	s := Stats{Rows: len(p.Rows)}
	for _, r := range p.Rows {
		if r.Listed() {
			s.Active++
		}
	}
	return s
}

// ValidateRowIDs reports the first duplicated or empty row id.
func ValidateRowIDs(p pricing.Project) error {
	seen := make(map[string]struct{}, len(p.Rows))
	for i, r := range p.Rows {
		if r.ID == "" {
			return fmt.Errorf("row %d has an empty id", i)
		}
		if _, ok := seen[r.ID]; ok {
			return fmt.Errorf("duplicate row id %q", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

func indexOf(rows []pricing.Row, id string) int {
	for i, r := range rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}
