// Package library holds the row presets offered for one-click insertion.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Simplici0/shopcost/internal/pricing"
)

// ErrEmpty is returned when an insertion is requested from an empty library.
var ErrEmpty = errors.New("preset library is empty")

// Preset is a row template.
type Preset struct {
	ID        int64            `json:"id,omitempty"`
	Category  pricing.Category `json:"category"`
	Item      string           `json:"item"`
	Unit      string           `json:"unit"`
	Cost      pricing.Number   `json:"cost"`
	Qty       pricing.Number   `json:"qty"`
	WastePct  pricing.Number   `json:"wastePct"`
	SortOrder int              `json:"sortOrder"`
}

// NewRow builds an active row from the preset.
func (p Preset) NewRow(id string) pricing.Row {
	return pricing.Row{
		ID:       id,
		Use:      true,
		Category: p.Category,
		Item:     p.Item,
		Unit:     p.Unit,
		Cost:     p.Cost,
		Qty:      p.Qty,
		WastePct: p.WastePct,
	}
}

// Defaults returns the starter presets.
func Defaults() []Preset {
	presets := []Preset{
		{Category: pricing.Materials, Item: "18mm Laminated MDF", Unit: "sheet", Cost: 1450, Qty: 1, WastePct: 10},
		{Category: pricing.Materials, Item: "Edge Band (PVC)", Unit: "roll", Cost: 180, Qty: 1, WastePct: 5},
		{Category: pricing.Accessories, Item: "Soft-close Hinge", Unit: "pcs", Cost: 120, Qty: 4},
		{Category: pricing.Accessories, Item: "Drawer Slide", Unit: "set", Cost: 450, Qty: 1},
		{Category: pricing.Utilities, Item: "Consumables (sandpaper/blades)", Unit: "lot", Cost: 500, Qty: 1},

		// Labor presets only count in unit labor mode.
		{Category: pricing.Labor, Item: "Cabinet Installation", Unit: "LM", Cost: 1200, Qty: 1},
		{Category: pricing.Labor, Item: "On-site Helper", Unit: "day", Cost: 900, Qty: 1},
	}
	for i := range presets {
		presets[i].SortOrder = i
	}
	return presets
}

// LoadFile reads presets from a JSON file shaped as {"rows": [...]}.
// An empty path returns Defaults.
func LoadFile(path string) ([]Preset, error) {
	if path == "" {
		return Defaults(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read library file: %w", err)
	}

	var doc struct {
		Rows []Preset `json:"rows"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode library file: %w", err)
	}
	for i := range doc.Rows {
		doc.Rows[i].SortOrder = i
	}
	return doc.Rows, nil
}

// At returns the preset at index, or ErrEmpty when there are none.
func At(presets []Preset, index int) (Preset, error) {
	if len(presets) == 0 {
		return Preset{}, ErrEmpty
	}
	if index < 0 || index >= len(presets) {
		return Preset{}, fmt.Errorf("preset index %d out of range [0,%d)", index, len(presets))
	}
	return presets[index], nil
}
