package core

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultCategoryName is used when a new category is added with a blank name.
const DefaultCategoryName = "New Category"

// NewCategory is the input for AddCategory.
type NewCategory struct {
	Name       string
	Type       CategoryType
	BaseAmount float64
}

// Operation turns one canonical plan into the next.
type Operation func(PlanFile) PlanFile

// Apply runs op against p. It is the single seam through which plan state changes.
func Apply(p PlanFile, op Operation) PlanFile {
	if op == nil {
		return p
	}
	return op(p)
}

// UpdateMonthlyAmount sets one month of one category to amount and stamps the plan
// with at. An unknown categoryID leaves the plan untouched, including UpdatedAt.
// Non-finite amounts, and amounts that would push the category budget or the plan
// total past the float64 range, are stored as 0. p itself is never modified.
func UpdateMonthlyAmount(p PlanFile, categoryID string, month int, amount float64, at time.Time) PlanFile {
	idx := p.FindCategory(categoryID)
	if idx == -1 {
		return p
	}

	categories := make([]Category, len(p.Categories))
	copy(categories, p.Categories)
	p.Categories = categories

	category := setAmount(NormalizeCategory(categories[idx]), month, finiteOrZero(amount))
	categories[idx] = category
	if math.IsInf(category.AnnualBudget, 0) || math.IsInf(AnnualTotal(p), 0) {
		categories[idx] = setAmount(category, month, 0)
	}

	p.Plan.UpdatedAt = Timestamp(at)
	return p
}

// setAmount returns c with month set to amount and its budget recomputed.
func setAmount(c Category, month int, amount float64) Category {
	allocations := make([]MonthlyAllocation, len(c.MonthlyAllocations))
	copy(allocations, c.MonthlyAllocations)
	for i := range allocations {
		if allocations[i].Month == month {
			allocations[i].Amount = amount
		}
	}
	c.MonthlyAllocations = allocations
	c.AnnualBudget = sumAllocations(allocations)
	return c
}

// AddCategory appends a category with BaseAmount allocated to every month.
//
// The id is derived from the name and the creation time in milliseconds; if that id is
// already taken a numeric suffix is added. A BaseAmount that is not finite, or whose
// twelve months would push the budget or the plan total past the float64 range,
// is treated as 0.
func AddCategory(p PlanFile, in NewCategory, at time.Time) PlanFile {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = DefaultCategoryName
	}

	category := Category{
		ID:   uniqueID(p, CategoryID(in.Name, at)),
		Name: name,
		Type: in.Type,
	}
	category.MonthlyAllocations = flatAllocations(finiteOrZero(in.BaseAmount))
	category.AnnualBudget = sumAllocations(category.MonthlyAllocations)

	categories := make([]Category, len(p.Categories), len(p.Categories)+1)
	copy(categories, p.Categories)
	p.Categories = append(categories, category)

	if math.IsInf(category.AnnualBudget, 0) || math.IsInf(AnnualTotal(p), 0) {
		category.MonthlyAllocations = flatAllocations(0)
		category.AnnualBudget = 0
		p.Categories[len(p.Categories)-1] = category
	}

	p.Plan.UpdatedAt = Timestamp(at)
	return p
}

func flatAllocations(amount float64) []MonthlyAllocation {
	allocations := make([]MonthlyAllocation, MonthsPerYear)
	for i := range allocations {
		allocations[i] = MonthlyAllocation{Month: i + 1, Amount: amount}
	}
	return allocations
}

// UpdateAmountOp wraps UpdateMonthlyAmount as an Operation.
func UpdateAmountOp(categoryID string, month int, amount float64, at time.Time) Operation {
	return func(p PlanFile) PlanFile {
		return UpdateMonthlyAmount(p, categoryID, month, amount, at)
	}
}

// AddCategoryOp wraps AddCategory as an Operation.
func AddCategoryOp(in NewCategory, at time.Time) Operation {
	return func(p PlanFile) PlanFile {
		return AddCategory(p, in, at)
	}
}

// CategoryID builds "cat-<slug>-<unix millis>" for a category named name.
func CategoryID(name string, at time.Time) string {
	return "cat-" + Slug(name) + "-" + strconv.FormatInt(at.UnixMilli(), 10)
}

// Slug lower-cases s and replaces every run of characters outside [a-z0-9] with a
// single '-'. Separators at either end are kept, so " Rent " becomes "-rent-".
func Slug(s string) string {
	var b strings.Builder
	inSep := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			inSep = false
			b.WriteRune(r)
			continue
		}
		if !inSep {
			b.WriteByte('-')
			inSep = true
		}
	}
	return b.String()
}

func uniqueID(p PlanFile, id string) string {
	if p.FindCategory(id) == -1 {
		return id
	}
	for n := 2; ; n++ {
		candidate := id + "-" + strconv.Itoa(n)
		if p.FindCategory(candidate) == -1 {
			return candidate
		}
	}
}
