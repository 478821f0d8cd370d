package pricing

import "math"

// OverheadResult is the monthly overhead pool, its hourly rate and the
// amount allocated to the project.
type OverheadResult struct {
	Monthly float64 `json:"monthly"`
	Rate    float64 `json:"rate"`
	Alloc   float64 `json:"alloc"`
}

// LaborResult describes the labor figure used in the totals.
type LaborResult struct {
	Mode         LaborMode `json:"mode"`
	LaborPercent float64   `json:"laborPercent"`
	LaborTotal   float64   `json:"laborTotal"`
}

// Totals contains every intermediate and final figure of the estimate.
type Totals struct {
	Materials   float64 `json:"materials"`
	Accessories float64 `json:"accessories"`
	Utilities   float64 `json:"utilities"`
	Labor       float64 `json:"labor"`
	Direct      float64 `json:"direct"`

	Logistics       float64 `json:"logistics"`
	OverheadMonthly float64 `json:"overheadMonthly"`
	OverheadRate    float64 `json:"overheadRate"`
	OverheadAlloc   float64 `json:"overheadAlloc"`
	Operational     float64 `json:"operational"`

	ContractorShare float64 `json:"contractorShare"`
	Contingency     float64 `json:"contingency"`
	Base            float64 `json:"base"`
	Markup          float64 `json:"markup"`
	Final           float64 `json:"final"`
	Profit          float64 `json:"profit"`
	NetMargin       float64 `json:"netMargin"`
}

// Category returns the bucket total for c, or 0 for an unknown category.
func (t Totals) Category(c Category) float64 {
	switch c {
	case Materials:
		return t.Materials
	case Accessories:
		return t.Accessories
	case Utilities:
		return t.Utilities
	case Labor:
		return t.Labor
	}
	return 0
}

// RowSubtotal returns cost * qty * (1 + waste%), or 0 for an unused row.
// Waste inflates the quantity before it is multiplied by the unit cost.
func RowSubtotal(row Row) float64 {
	if !row.Use {
		return 0
	}
	effectiveQty := row.Qty.Float() * (1 + ClampPercent(float64(row.WastePct))/100)
	return row.Cost.Float() * effectiveQty
}

// SumByCategory sums the subtotals of active rows in category.
func SumByCategory(rows []Row, category Category) float64 {
	var sum float64
	for _, r := range rows {
		if !r.Use || r.Category != category {
			continue
		}
		sum += RowSubtotal(r)
	}
	return sum
}

// deliveries is the whole number of deliveries; zero or invalid means one.
func (l Logistics) deliveries() float64 {
	d := l.Deliveries.Float()
	if d == 0 {
		d = 1
	}
	return math.Max(1, math.Floor(d))
}

// ComputeLogistics returns distance * rate * deliveries plus tolls and helper fee.
func ComputeLogistics(l Logistics) float64 {
	return l.DistanceKm.Float()*l.CostPerKm.Float()*l.deliveries() +
		l.TollFees.Float() + l.HelperFee.Float()
}

// ComputeOverhead derives the hourly overhead rate and the project's allocation.
// hoursMonth floors at 1 so the rate is always defined.
func ComputeOverhead(o Overhead) OverheadResult {
	monthly := o.Rent.Float() + o.Electric.Float() + o.Admin.Float() + o.Amort.Float() + o.Misc.Float()

	hoursMonth := o.HoursMonth.Float()
	if hoursMonth == 0 {
		hoursMonth = 1
	}
	hoursMonth = math.Max(1, hoursMonth)
	projectHours := math.Max(0, o.ProjectHours.Float())

	rate := monthly / hoursMonth
	return OverheadResult{
		Monthly: monthly,
		Rate:    rate,
		Alloc:   rate * projectHours,
	}
}

// ComputeLabor returns labor either as a percentage of the non-labor direct
// costs or as the sum of Labor rows. Only one source counts at a time.
func ComputeLabor(p Project) LaborResult {
	mode := p.LaborMode
	if mode == "" {
		mode = LaborPercent
	}
	laborPercent := ClampPercent(float64(p.LaborPercent))

	nonLabor := SumByCategory(p.Rows, Materials) +
		SumByCategory(p.Rows, Accessories) +
		SumByCategory(p.Rows, Utilities)
	percentLabor := nonLabor * laborPercent / 100
	unitLabor := SumByCategory(p.Rows, Labor)

	total := unitLabor
	if mode == LaborPercent {
		total = percentLabor
	}

	return LaborResult{
		Mode:         mode,
		LaborPercent: laborPercent,
		LaborTotal:   total,
	}
}

// ContractorShare returns the contractor fee on top of operational cost.
// Fixed amounts are not clamped and may be negative.
func ContractorShare(c Contractor, operational float64) float64 {
	switch c.Mode {
	case ContractorPercent:
		return operational * ClampPercent(float64(c.Value)) / 100
	case ContractorFixed:
		return c.Value.Float()
	default:
		return 0
	}
}

// ComputeTotals computes the full estimate for p.
//
// The layers are applied in a fixed order: contractor share on operational
// cost, contingency on operational plus contractor, then markup on the
// resulting base. Reordering them changes the final price.
func ComputeTotals(p Project) Totals {
	materials := SumByCategory(p.Rows, Materials)
	accessories := SumByCategory(p.Rows, Accessories)
	utilities := SumByCategory(p.Rows, Utilities)
	labor := ComputeLabor(p).LaborTotal

	direct := materials + accessories + utilities + labor

	logistics := ComputeLogistics(p.Logistics)
	oh := ComputeOverhead(p.Overhead)

	operational := direct + logistics + oh.Alloc

	contractorShare := ContractorShare(p.Contractor, operational)
	contingency := (operational + contractorShare) * ClampPercent(float64(p.ContingencyPct)) / 100
	base := operational + contractorShare + contingency

	final := base * (1 + ClampPercent(float64(p.MarkupPct))/100)
	markup := final - base

	netMargin := 0.0
	if final > 0 {
		netMargin = markup / final
	}

	return Totals{
		Materials:       materials,
		Accessories:     accessories,
		Utilities:       utilities,
		Labor:           labor,
		Direct:          direct,
		Logistics:       logistics,
		OverheadMonthly: oh.Monthly,
		OverheadRate:    oh.Rate,
		OverheadAlloc:   oh.Alloc,
		Operational:     operational,
		ContractorShare: contractorShare,
		Contingency:     contingency,
		Base:            base,
		Markup:          markup,
		Final:           final,
		Profit:          markup,
		NetMargin:       netMargin,
	}
}
