package pricing

import (
	"slices"
	"time"
)

// Category groups rows into cost buckets.
type Category string

const (
	Materials   Category = "Materials"
	Accessories Category = "Accessories"
	Utilities   Category = "Utilities"
	Labor       Category = "Labor"
)

// Categories lists the recognised categories in display order.
var Categories = []Category{Materials, Accessories, Utilities, Labor}

// Known reports whether c is one of the four aggregated categories.
// Rows with any other category are stored but never costed.
func (c Category) Known() bool {
	return slices.Contains(Categories, c)
}

// LaborMode selects how labor cost is derived.
type LaborMode string

const (
	LaborPercent LaborMode = "percent"
	LaborUnit    LaborMode = "unit"
)

// ContractorMode selects how the contractor share is derived.
type ContractorMode string

const (
	ContractorNone    ContractorMode = "none"
	ContractorPercent ContractorMode = "percent"
	ContractorFixed   ContractorMode = "fixed"
)

// Row is one cost line item.
type Row struct {
	ID       string   `json:"id"`
	Use      bool     `json:"use"`
	Category Category `json:"category"`
	Item     string   `json:"item"`
	Unit     string   `json:"unit"`
	Cost     Number   `json:"cost"`
	Qty      Number   `json:"qty"`
	WastePct Number   `json:"wastePct"`

	// useUnset marks a decoded row whose use flag was absent or null.
	useUnset bool
}

// SetUse sets the inclusion flag explicitly.
func (r *Row) SetUse(use bool) {
	r.Use = use
	r.useUnset = false
}

// Listed reports whether the row counts as in use for row statistics: its
// flag is true or was never set. Only Use decides whether the row is costed.
func (r Row) Listed() bool {
	return r.Use || r.useUnset
}

// Logistics holds delivery-related inputs.
type Logistics struct {
	DistanceKm Number `json:"distanceKm"`
	CostPerKm  Number `json:"costPerKm"`
	Deliveries Number `json:"deliveries"`
	TollFees   Number `json:"tollFees"`
	HelperFee  Number `json:"helperFee"`
}

// Overhead holds monthly fixed costs and the project's share of shop hours.
type Overhead struct {
	Rent         Number `json:"rent"`
	Electric     Number `json:"electric"`
	Admin        Number `json:"admin"`
	Amort        Number `json:"amort"`
	Misc         Number `json:"misc"`
	HoursMonth   Number `json:"hoursMonth"`
	ProjectHours Number `json:"projectHours"`
}

// Contractor holds the contractor fee. Value is a percentage in percent
// mode and a plain amount in fixed mode.
type Contractor struct {
	Mode  ContractorMode `json:"mode"`
	Value Number         `json:"value"`
}

// Project is the unit of persistence and computation.
type Project struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Client   string `json:"client"`
	Location string `json:"location"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Rows []Row `json:"rows"`

	LaborMode    LaborMode `json:"laborMode"`
	LaborPercent Number    `json:"laborPercent"`

	Logistics  Logistics  `json:"logistics"`
	Overhead   Overhead   `json:"overhead"`
	Contractor Contractor `json:"contractor"`

	ContingencyPct Number `json:"contingencyPct"`
	MarkupPct      Number `json:"markupPct"`
}

// Clone returns a copy of p that shares no row storage with it.
func (p Project) Clone() Project {
	out := p
	if p.Rows != nil {
		out.Rows = make([]Row, len(p.Rows))
		copy(out.Rows, p.Rows)
	}
	return out
}
