package pricing

import "encoding/json"

// Decoding a Project or Row never fails on a well-formed JSON document.
// Fields of the wrong type fall back to their zero value, the same way
// Number does for numeric fields.

type rowWire struct {
	ID       any    `json:"id"`
	Use      any    `json:"use"`
	Category any    `json:"category"`
	Item     any    `json:"item"`
	Unit     any    `json:"unit"`
	Cost     Number `json:"cost"`
	Qty      Number `json:"qty"`
	WastePct Number `json:"wastePct"`
}

// UnmarshalJSON decodes a row leniently. An absent or null use flag leaves
// the row uncosted but still listed.
func (r *Row) UnmarshalJSON(b []byte) error {
	var w rowWire
	if err := json.Unmarshal(b, &w); err != nil {
		*r = Row{useUnset: true}
		return nil
	}
	*r = Row{
		ID:       Text(w.ID),
		Use:      Truthy(w.Use),
		Category: Category(Text(w.Category)),
		Item:     Text(w.Item),
		Unit:     Text(w.Unit),
		Cost:     w.Cost,
		Qty:      w.Qty,
		WastePct: w.WastePct,
		useUnset: w.Use == nil,
	}
	return nil
}

// MarshalJSON omits use for rows whose flag was never set, so a stored row
// reads back the way it was written.
func (r Row) MarshalJSON() ([]byte, error) {
	var use *bool
	if r.Use || !r.useUnset {
		use = &r.Use
	}
	return json.Marshal(struct {
		ID       string   `json:"id"`
		Use      *bool    `json:"use,omitempty"`
		Category Category `json:"category"`
		Item     string   `json:"item"`
		Unit     string   `json:"unit"`
		Cost     Number   `json:"cost"`
		Qty      Number   `json:"qty"`
		WastePct Number   `json:"wastePct"`
	}{r.ID, use, r.Category, r.Item, r.Unit, r.Cost, r.Qty, r.WastePct})
}

type projectWire struct {
	ID       any `json:"id"`
	Name     any `json:"name"`
	Client   any `json:"client"`
	Location any `json:"location"`

	CreatedAt any `json:"createdAt"`
	UpdatedAt any `json:"updatedAt"`

	Rows json.RawMessage `json:"rows"`

	LaborMode    any    `json:"laborMode"`
	LaborPercent Number `json:"laborPercent"`

	Logistics  json.RawMessage `json:"logistics"`
	Overhead   json.RawMessage `json:"overhead"`
	Contractor json.RawMessage `json:"contractor"`

	ContingencyPct Number `json:"contingencyPct"`
	MarkupPct      Number `json:"markupPct"`
}

// UnmarshalJSON decodes a project leniently. Unparseable timestamps become
// the zero time and malformed sections decode as empty.
func (p *Project) UnmarshalJSON(b []byte) error {
	var w projectWire
	if err := json.Unmarshal(b, &w); err != nil {
		*p = Project{}
		return nil
	}

	out := Project{
		ID:             Text(w.ID),
		Name:           Text(w.Name),
		Client:         Text(w.Client),
		Location:       Text(w.Location),
		CreatedAt:      ParseTime(w.CreatedAt),
		UpdatedAt:      ParseTime(w.UpdatedAt),
		LaborMode:      LaborMode(Text(w.LaborMode)),
		LaborPercent:   w.LaborPercent,
		ContingencyPct: w.ContingencyPct,
		MarkupPct:      w.MarkupPct,
	}

	// Row and Number decoding never fail, so only a non-array errors here.
	if err := json.Unmarshal(w.Rows, &out.Rows); err != nil {
		out.Rows = nil
	}
	if err := json.Unmarshal(w.Logistics, &out.Logistics); err != nil {
		out.Logistics = Logistics{}
	}
	if err := json.Unmarshal(w.Overhead, &out.Overhead); err != nil {
		out.Overhead = Overhead{}
	}

	var c struct {
		Mode  any    `json:"mode"`
		Value Number `json:"value"`
	}
	if err := json.Unmarshal(w.Contractor, &c); err == nil {
		out.Contractor = Contractor{Mode: ContractorMode(Text(c.Mode)), Value: c.Value}
	}

	*p = out
	return nil
}
