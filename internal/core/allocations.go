package core

import (
	"math"

	"github.com/shopspring/decimal"
)

// NormalizeCategory returns c with exactly one allocation per month, ordered 1..12.
//
// When a month appears more than once the last entry wins. Missing months get a zero
// allocation, non-finite amounts become 0 and entries outside 1..12 are dropped.
// AnnualBudget is recomputed from the resulting amounts; an amount that would take it
// past the float64 range is stored as 0. The input is not modified.
func NormalizeCategory(c Category) Category {
	var byMonth [MonthsPerYear + 1]*MonthlyAllocation
	for i := range c.MonthlyAllocations {
		entry := &c.MonthlyAllocations[i]
		if ValidMonth(entry.Month) {
			byMonth[entry.Month] = entry
		}
	}

	merged := make([]MonthlyAllocation, 0, MonthsPerYear)
	for month := 1; month <= MonthsPerYear; month++ {
		entry := byMonth[month]
		if entry == nil {
			merged = append(merged, MonthlyAllocation{Month: month})
			continue
		}
		merged = append(merged, MonthlyAllocation{
			Month:  month,
			Amount: finiteOrZero(entry.Amount),
			Notes:  entry.Notes,
		})
	}

	c.MonthlyAllocations = merged
	c.AnnualBudget = boundAllocations(merged)
	return c
}

// NormalizePlan applies NormalizeCategory to every category of p.
// Plan metadata and export metadata pass through untouched.
func NormalizePlan(p PlanFile) PlanFile {
	categories := make([]Category, len(p.Categories))
	for i, c := range p.Categories {
		categories[i] = NormalizeCategory(c)
	}
	p.Categories = categories
	if p.Meta != nil {
		meta := *p.Meta
		p.Meta = &meta
	}
	return p
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func sumAllocations(entries []MonthlyAllocation) float64 {
	amounts := make([]float64, len(entries))
	for i, e := range entries {
		amounts[i] = e.Amount
	}
	return sum(amounts...)
}

// boundAllocations zeroes, in month order, every amount that would carry the running
// total past the float64 range, and returns the total.
func boundAllocations(entries []MonthlyAllocation) float64 {
	total := decimal.Zero
	for i := range entries {
		next := total.Add(decimal.NewFromFloat(finiteOrZero(entries[i].Amount)))
		if f, _ := next.Float64(); math.IsInf(f, 0) {
			entries[i].Amount = 0
			continue
		}
		total = next
	}
	f, _ := total.Float64()
	return f
}

// sum adds values exactly. A non-finite input, or a total beyond the float64 range,
// yields the non-finite result rather than being dropped.
func sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return floatSum(values)
		}
		total = total.Add(decimal.NewFromFloat(v))
	}
	f, _ := total.Float64()
	return f
}

func floatSum(values []float64) float64 {
	var f float64
	for _, v := range values {
		f += v
	}
	return f
}
