package pricing

import (
	"math"
	"testing"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestRowSubtotal_UnusedRowIsZero(t *testing.T) {
	row := Row{Use: false, Category: Materials, Cost: 1000, Qty: 5, WastePct: 50}
	nearlyEqual(t, "subtotal", RowSubtotal(row), 0)
}

func TestRowSubtotal_WasteInflatesQuantity(t *testing.T) {
	row := Row{Use: true, Category: Materials, Cost: 1000, Qty: 2, WastePct: 10}
	nearlyEqual(t, "subtotal", RowSubtotal(row), 2200)
}

func TestRowSubtotal_NegativeWasteClampedToZero(t *testing.T) {
	row := Row{Use: true, Cost: 100, Qty: 3, WastePct: -40}
	nearlyEqual(t, "subtotal", RowSubtotal(row), 300)
}

func TestRowSubtotal_NonFiniteInputsAreZero(t *testing.T) {
	row := Row{Use: true, Cost: Number(math.NaN()), Qty: 3, WastePct: Number(math.Inf(1))}
	nearlyEqual(t, "subtotal", RowSubtotal(row), 0)

	row = Row{Use: true, Cost: 10, Qty: 3, WastePct: Number(math.Inf(1))}
	nearlyEqual(t, "subtotal with infinite waste", RowSubtotal(row), 30)
}

func TestRowSubtotal_MonotonicInWaste(t *testing.T) {
	prev := -1.0
	for waste := 0.0; waste <= 200; waste += 12.5 {
		got := RowSubtotal(Row{Use: true, Cost: 45.5, Qty: 7, WastePct: Number(waste)})
		if got < prev {
			t.Fatalf("subtotal decreased at waste=%v: %v < %v", waste, got, prev)
		}
		prev = got
	}
}

func TestSumByCategory_ExcludesUnknownAndUnused(t *testing.T) {
	rows := []Row{
		{Use: true, Category: Materials, Cost: 100, Qty: 1},
		{Use: false, Category: Materials, Cost: 500, Qty: 1},
		{Use: true, Category: "Hardware", Cost: 900, Qty: 1},
		{Use: true, Category: Accessories, Cost: 20, Qty: 2},
	}

	nearlyEqual(t, "materials", SumByCategory(rows, Materials), 100)
	nearlyEqual(t, "accessories", SumByCategory(rows, Accessories), 40)
	nearlyEqual(t, "utilities", SumByCategory(rows, Utilities), 0)

	var all float64
	for _, c := range Categories {
		all += SumByCategory(rows, c)
	}
	nearlyEqual(t, "all known categories", all, 140)
}

func TestTotalsCategory(t *testing.T) {
	totals := Totals{Materials: 1, Accessories: 2, Utilities: 3, Labor: 4}
	for i, c := range Categories {
		nearlyEqual(t, string(c), totals.Category(c), float64(i+1))
	}
	nearlyEqual(t, "unknown", totals.Category("Hardware"), 0)
}

func TestComputeLogistics(t *testing.T) {
	tests := []struct {
		name string
		in   Logistics
		want float64
	}{
		{"zero distance", Logistics{DistanceKm: 0, CostPerKm: 25, Deliveries: 3, TollFees: 80, HelperFee: 500}, 580},
		{"deliveries default", Logistics{DistanceKm: 10, CostPerKm: 20}, 200},
		{"fractional deliveries truncated", Logistics{DistanceKm: 10, CostPerKm: 20, Deliveries: 2.9}, 400},
		{"sub-one deliveries floor", Logistics{DistanceKm: 10, CostPerKm: 20, Deliveries: 0.4}, 200},
		{"negative deliveries floor", Logistics{DistanceKm: 10, CostPerKm: 20, Deliveries: -3}, 200},
		{"full", Logistics{DistanceKm: 12, CostPerKm: 15, Deliveries: 2, TollFees: 60, HelperFee: 300}, 720},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nearlyEqual(t, "logistics", ComputeLogistics(tt.in), tt.want)
		})
	}
}

func TestComputeOverhead_ZeroHoursMonthUsesOne(t *testing.T) {
	got := ComputeOverhead(Overhead{Rent: 8000, Electric: 1500, Admin: 500, HoursMonth: 0, ProjectHours: 2})

	nearlyEqual(t, "monthly", got.Monthly, 10000)
	nearlyEqual(t, "rate", got.Rate, 10000)
	nearlyEqual(t, "alloc", got.Alloc, 20000)
}

func TestComputeOverhead_Allocation(t *testing.T) {
	got := ComputeOverhead(Overhead{Rent: 10000, Electric: 3000, Admin: 2000, Amort: 800, Misc: 200, HoursMonth: 160, ProjectHours: 24})

	nearlyEqual(t, "monthly", got.Monthly, 16000)
	nearlyEqual(t, "rate", got.Rate, 100)
	nearlyEqual(t, "alloc", got.Alloc, 2400)

	neg := ComputeOverhead(Overhead{Rent: 1600, HoursMonth: 160, ProjectHours: -5})
	nearlyEqual(t, "negative project hours alloc", neg.Alloc, 0)
}

func TestComputeLabor_ModeSwitch(t *testing.T) {
	p := Project{
		LaborMode:    LaborPercent,
		LaborPercent: 10,
		Rows: []Row{
			{Use: true, Category: Materials, Cost: 1000, Qty: 2},
			{Use: true, Category: Utilities, Cost: 500, Qty: 1},
			{Use: true, Category: Labor, Cost: 1200, Qty: 1},
			{Use: true, Category: Labor, Cost: 900, Qty: 2},
		},
	}

	percent := ComputeLabor(p)
	nearlyEqual(t, "percent labor", percent.LaborTotal, 250)
	if percent.Mode != LaborPercent {
		t.Fatalf("mode = %q, want %q", percent.Mode, LaborPercent)
	}

	p.LaborMode = LaborUnit
	unit := ComputeLabor(p)
	nearlyEqual(t, "unit labor", unit.LaborTotal, 3000)

	p.LaborPercent = 75
	nearlyEqual(t, "unit labor ignores percent", ComputeLabor(p).LaborTotal, 3000)
}

func TestComputeLabor_EmptyModeIsPercent(t *testing.T) {
	p := Project{
		LaborPercent: 50,
		Rows:         []Row{{Use: true, Category: Materials, Cost: 100, Qty: 1}},
	}
	got := ComputeLabor(p)
	if got.Mode != LaborPercent {
		t.Fatalf("mode = %q, want %q", got.Mode, LaborPercent)
	}
	nearlyEqual(t, "labor", got.LaborTotal, 50)
}

func TestComputeTotals_EndToEnd(t *testing.T) {
	p := Project{
		Rows: []Row{
			{ID: "r1", Use: true, Category: Materials, Cost: 1000, Qty: 2, WastePct: 10},
		},
		LaborMode:      LaborPercent,
		LaborPercent:   10,
		Logistics:      Logistics{Deliveries: 1},
		Overhead:       Overhead{HoursMonth: 160},
		Contractor:     Contractor{Mode: ContractorPercent, Value: 5},
		ContingencyPct: 10,
		MarkupPct:      20,
	}

	got := ComputeTotals(p)

	nearlyEqual(t, "materials", got.Materials, 2200)
	nearlyEqual(t, "labor", got.Labor, 220)
	nearlyEqual(t, "direct", got.Direct, 2420)
	nearlyEqual(t, "operational", got.Operational, 2420)
	nearlyEqual(t, "contractorShare", got.ContractorShare, 121)
	if math.Abs(got.Contingency-254.1) > 1e-6 {
		t.Fatalf("contingency = %v, want 254.1", got.Contingency)
	}
	if math.Abs(got.Base-2795.1) > 1e-6 {
		t.Fatalf("base = %v, want 2795.1", got.Base)
	}
	if math.Abs(got.Final-3354.12) > 1e-6 {
		t.Fatalf("final = %v, want 3354.12", got.Final)
	}
	if math.Abs(got.Markup-559.02) > 1e-6 {
		t.Fatalf("markup = %v, want 559.02", got.Markup)
	}
	nearlyEqual(t, "profit", got.Profit, got.Markup)
	if math.Abs(got.NetMargin-0.16667) > 1e-4 {
		t.Fatalf("netMargin = %v, want ~0.1667", got.NetMargin)
	}
}

func TestComputeTotals_OrderingLaw(t *testing.T) {
	p := Project{
		Rows: []Row{
			{Use: true, Category: Materials, Cost: 1450, Qty: 3, WastePct: 10},
			{Use: true, Category: Accessories, Cost: 120, Qty: 8},
		},
		LaborMode:      LaborPercent,
		LaborPercent:   25,
		Logistics:      Logistics{DistanceKm: 18, CostPerKm: 22, Deliveries: 2, TollFees: 150},
		Overhead:       Overhead{Rent: 12000, Electric: 2500, HoursMonth: 160, ProjectHours: 30},
		Contractor:     Contractor{Mode: ContractorPercent, Value: 12},
		ContingencyPct: 7,
		MarkupPct:      35,
	}

	got := ComputeTotals(p)
	want := got.Operational * 1.12 * 1.07 * 1.35
	if math.Abs(got.Final-want) > 1e-6 {
		t.Fatalf("final = %v, want %v", got.Final, want)
	}
}

func TestComputeTotals_FixedContractorMayBeNegative(t *testing.T) {
	p := Project{
		Rows:           []Row{{Use: true, Category: Materials, Cost: 1000, Qty: 1}},
		LaborMode:      LaborUnit,
		Contractor:     Contractor{Mode: ContractorFixed, Value: -200},
		ContingencyPct: 10,
	}

	got := ComputeTotals(p)
	nearlyEqual(t, "contractorShare", got.ContractorShare, -200)
	nearlyEqual(t, "contingency", got.Contingency, 80)
	nearlyEqual(t, "base", got.Base, 880)
}

func TestComputeTotals_PercentContractorClamped(t *testing.T) {
	p := Project{
		Rows:       []Row{{Use: true, Category: Materials, Cost: 1000, Qty: 1}},
		LaborMode:  LaborUnit,
		Contractor: Contractor{Mode: ContractorPercent, Value: -15},
	}
	nearlyEqual(t, "contractorShare", ComputeTotals(p).ContractorShare, 0)
}

func TestComputeTotals_UnknownContractorModeIsNone(t *testing.T) {
	p := Project{
		Rows:       []Row{{Use: true, Category: Materials, Cost: 1000, Qty: 1}},
		LaborMode:  LaborUnit,
		Contractor: Contractor{Mode: "retainer", Value: 400},
	}
	nearlyEqual(t, "contractorShare", ComputeTotals(p).ContractorShare, 0)
}

func TestComputeTotals_EmptyProject(t *testing.T) {
	got := ComputeTotals(Project{})

	nearlyEqual(t, "final", got.Final, 0)
	nearlyEqual(t, "netMargin", got.NetMargin, 0)
	nearlyEqual(t, "overheadRate", got.OverheadRate, 0)
}

func TestComputeTotals_NetMarginZeroWhenFinalNotPositive(t *testing.T) {
	p := Project{
		LaborMode:  LaborUnit,
		Contractor: Contractor{Mode: ContractorFixed, Value: -500},
		MarkupPct:  40,
	}

	got := ComputeTotals(p)
	if got.Final > 0 {
		t.Fatalf("final = %v, want <= 0", got.Final)
	}
	nearlyEqual(t, "netMargin", got.NetMargin, 0)
}

func TestComputeTotals_DoesNotMutateInput(t *testing.T) {
	p := Project{
		Rows:      []Row{{ID: "a", Use: true, Category: Materials, Cost: 10, Qty: 2, WastePct: -5}},
		Logistics: Logistics{Deliveries: 0},
		Overhead:  Overhead{HoursMonth: 0},
	}
	before := p.Clone()

	_ = ComputeTotals(p)

	if p.Rows[0] != before.Rows[0] || p.Logistics != before.Logistics || p.Overhead != before.Overhead {
		t.Fatalf("input was mutated: %+v", p)
	}
}
