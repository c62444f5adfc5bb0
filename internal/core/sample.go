package core

import "time"

// SampleAppVersion is stamped into the built-in sample plan.
const SampleAppVersion = "v0"

// SamplePlan returns the seeded plan used when no other plan has been loaded.
func SamplePlan(at time.Time) PlanFile {
	ts := Timestamp(at)
	return NormalizePlan(PlanFile{
		Version: CurrentVersion,
		Plan: PlanMeta{
			ID:        "plan-2024",
			Year:      2024,
			Notes:     "Seeded sample plan",
			Currency:  "USD",
			CreatedAt: ts,
			UpdatedAt: ts,
		},
		Categories: []Category{
			flatCategory("cat-housing", "Housing", Needs, 2000),
			flatCategory("cat-groceries", "Groceries", Needs, 650),
			flatCategory("cat-transport", "Transportation", Needs, 400),
			flatCategory("cat-savings", "Savings", Savings, 500),
			flatCategory("cat-fun", "Fun & Leisure", Wants, 250),
		},
		Meta: &ExportMeta{ExportedAt: ts, AppVersion: SampleAppVersion},
	})
}

func flatCategory(id, name string, t CategoryType, monthly float64) Category {
	allocations := make([]MonthlyAllocation, MonthsPerYear)
	for i := range allocations {
		allocations[i] = MonthlyAllocation{Month: i + 1, Amount: monthly}
	}
	return Category{ID: id, Name: name, Type: t, MonthlyAllocations: allocations}
}
