package core

import "github.com/shopspring/decimal"

// MonthAmount pairs a month number with an amount.
type MonthAmount struct {
	Month  int     `json:"month"`
	Amount float64 `json:"amount"`
}

// Summary holds the totals derived from a plan for display.
type Summary struct {
	Year           int                    `json:"year"`
	Currency       string                 `json:"currency"`
	CategoryCount  int                    `json:"categoryCount"`
	AnnualTotal    float64                `json:"annualTotal"`
	MonthlyAverage float64                `json:"monthlyAverage"`
	MonthlyTotals  [MonthsPerYear]float64 `json:"monthlyTotals"`
	Peak           MonthAmount            `json:"peakMonth"`
}

// AnnualTotal sums the annual budget of every category.
func AnnualTotal(p PlanFile) float64 {
	budgets := make([]float64, len(p.Categories))
	for i, c := range p.Categories {
		budgets[i] = c.AnnualBudget
	}
	return sum(budgets...)
}

// MonthlyTotals returns, for each month, the amount allocated across all categories.
// Index 0 is January. A category without an entry for a month contributes nothing.
func MonthlyTotals(p PlanFile) [MonthsPerYear]float64 {
	var totals [MonthsPerYear]float64
	for i := range totals {
		month := i + 1
		amounts := make([]float64, len(p.Categories))
		for j, c := range p.Categories {
			amounts[j] = c.Allocation(month)
		}
		totals[i] = sum(amounts...)
	}
	return totals
}

// MonthlyAverage is the annual total spread evenly over twelve months.
func MonthlyAverage(p PlanFile) float64 {
	avg, _ := decimal.NewFromFloat(AnnualTotal(p)).Div(decimal.NewFromInt(MonthsPerYear)).Float64()
	return avg
}

// PeakMonth returns the first month with the strictly greatest total.
// With no positive totals it reports month 1 and amount 0.
func PeakMonth(totals [MonthsPerYear]float64) MonthAmount {
	peak := MonthAmount{Month: 1}
	for i, amount := range totals {
		if amount > peak.Amount {
			peak = MonthAmount{Month: i + 1, Amount: amount}
		}
	}
	return peak
}

// Summarize computes every derived figure for p. Nothing is cached.
func Summarize(p PlanFile) Summary {
	totals := MonthlyTotals(p)
	return Summary{
		Year:           p.Plan.Year,
		Currency:       p.Plan.Currency,
		CategoryCount:  len(p.Categories),
		AnnualTotal:    AnnualTotal(p),
		MonthlyAverage: MonthlyAverage(p),
		MonthlyTotals:  totals,
		Peak:           PeakMonth(totals),
	}
}
