package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawAllocations(months ...float64) []any {
	out := make([]any, 0, len(months))
	for _, m := range months {
		out = append(out, map[string]any{"month": m, "amount": 10.0})
	}
	return out
}

func flatRawAllocations(amount float64) []any {
	out := make([]any, 0, MonthsPerYear)
	for m := 1; m <= MonthsPerYear; m++ {
		out = append(out, map[string]any{"month": float64(m), "amount": amount})
	}
	return out
}

func fullMonths() []float64 {
	return []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
}

func rawCategory(id, name string, allocations []any) map[string]any {
	return map[string]any{
		"id":                 id,
		"name":               name,
		"type":               "needs",
		"annualBudget":       0.0,
		"monthlyAllocations": allocations,
	}
}

func rawPlan(categories ...any) map[string]any {
	if categories == nil {
		categories = []any{}
	}
	return map[string]any{
		"version": 1.0,
		"plan": map[string]any{
			"id":        "plan-1",
			"year":      2025.0,
			"currency":  "EUR",
			"createdAt": "2025-01-01T00:00:00.000Z",
			"updatedAt": "2025-01-02T00:00:00.000Z",
		},
		"categories": categories,
	}
}

func with(doc map[string]any, mutate func(map[string]any)) map[string]any {
	mutate(doc)
	return doc
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		wantKind ValidationKind
		wantMsg  string
	}{
		{"nil", nil, KindMalformed, MsgNotJSONObject},
		{"array", []any{1.0}, KindMalformed, MsgNotJSONObject},
		{"string", "plan", KindMalformed, MsgNotJSONObject},
		{"typed nil map", map[string]any(nil), KindMalformed, MsgNotJSONObject},
		{
			"version 2",
			with(rawPlan(), func(d map[string]any) { d["version"] = 2.0 }),
			KindUnsupportedVersion, MsgUnsupportedVers,
		},
		{
			"version as string",
			with(rawPlan(), func(d map[string]any) { d["version"] = "1" }),
			KindUnsupportedVersion, MsgUnsupportedVers,
		},
		{
			"version missing",
			with(rawPlan(), func(d map[string]any) { delete(d, "version") }),
			KindUnsupportedVersion, MsgUnsupportedVers,
		},
		{
			"plan missing",
			with(rawPlan(), func(d map[string]any) { delete(d, "plan") }),
			KindMissingPlan, "Missing plan metadata",
		},
		{
			"plan not an object",
			with(rawPlan(), func(d map[string]any) { d["plan"] = "p" }),
			KindMissingPlan, "Missing plan metadata",
		},
		{
			"blank plan id",
			with(rawPlan(), func(d map[string]any) { d["plan"].(map[string]any)["id"] = "  " }),
			KindInvalidPlanMeta, "Plan must include id, year, and currency",
		},
		{
			"year as string",
			with(rawPlan(), func(d map[string]any) { d["plan"].(map[string]any)["year"] = "2025" }),
			KindInvalidPlanMeta, "Plan must include id, year, and currency",
		},
		{
			"currency missing",
			with(rawPlan(), func(d map[string]any) { delete(d["plan"].(map[string]any), "currency") }),
			KindInvalidPlanMeta, "Plan must include id, year, and currency",
		},
		{
			"categories missing",
			with(rawPlan(), func(d map[string]any) { delete(d, "categories") }),
			KindMissingCategories, "Missing categories array",
		},
		{
			"categories object",
			with(rawPlan(), func(d map[string]any) { d["categories"] = map[string]any{} }),
			KindMissingCategories, "Missing categories array",
		},
		{
			"category without type",
			rawPlan(with(rawCategory("a", "Rent", rawAllocations(fullMonths()...)), func(c map[string]any) { delete(c, "type") })),
			KindInvalidCategory, "Each category needs id, name, and type",
		},
		{
			"category is null",
			rawPlan(nil),
			KindInvalidCategory, "Each category needs id, name, and type",
		},
		{
			"empty allocations",
			rawPlan(rawCategory("a", "Rent", []any{})),
			KindMissingAllocations, "Category Rent is missing monthly allocations",
		},
		{
			"allocations not an array",
			rawPlan(with(rawCategory("a", "Rent", nil), func(c map[string]any) { c["monthlyAllocations"] = "x" })),
			KindMissingAllocations, "Category Rent is missing monthly allocations",
		},
		{
			"month 13",
			rawPlan(rawCategory("a", "Rent", rawAllocations(1, 13))),
			KindInvalidMonth, "Category Rent has invalid month value",
		},
		{
			"month 0",
			rawPlan(rawCategory("a", "Rent", rawAllocations(0))),
			KindInvalidMonth, "Category Rent has invalid month value",
		},
		{
			"month as string",
			rawPlan(rawCategory("a", "Rent", []any{map[string]any{"month": "1", "amount": 1.0}})),
			KindInvalidMonth, "Category Rent has invalid month value",
		},
		{
			"entry not an object",
			rawPlan(rawCategory("a", "Rent", []any{42.0})),
			KindInvalidMonth, "Category Rent has invalid month value",
		},
		{
			"amount as string",
			rawPlan(rawCategory("a", "Rent", []any{map[string]any{"month": 1.0, "amount": "50"}})),
			KindInvalidAmount, "Category Rent has non-numeric amount",
		},
		{
			"eleven months",
			rawPlan(rawCategory("a", "Rent", rawAllocations(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11))),
			KindIncompleteCoverage, "Category Rent must cover months 1-12",
		},
		{
			"twelve entries with a duplicate",
			rawPlan(rawCategory("a", "Rent", rawAllocations(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 11))),
			KindIncompleteCoverage, "Category Rent must cover months 1-12",
		},
		{
			"category amounts overflow",
			rawPlan(rawCategory("a", "Rent", append(
				[]any{map[string]any{"month": 1.0, "amount": 1e308}, map[string]any{"month": 2.0, "amount": 1e308}},
				rawAllocations(3, 4, 5, 6, 7, 8, 9, 10, 11, 12)...,
			))),
			KindInvalidAmount, "Category Rent amounts add up to more than can be stored",
		},
		{
			"plan total overflows",
			rawPlan(
				rawCategory("a", "Rent", flatRawAllocations(1e307)),
				rawCategory("b", "Food", flatRawAllocations(1e307)),
			),
			KindInvalidAmount, "Plan amounts add up to more than can be stored",
		},
		{
			"second category is the broken one",
			rawPlan(
				rawCategory("a", "Rent", rawAllocations(fullMonths()...)),
				rawCategory("b", "Food", rawAllocations(1)),
			),
			KindIncompleteCoverage, "Category Food must cover months 1-12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.input)
			require.False(t, res.OK())
			assert.Equal(t, tt.wantKind, res.Err.Kind)
			assert.Equal(t, tt.wantMsg, res.Err.Message)

			_, err := res.Unwrap()
			assert.ErrorIs(t, err, ErrInvalidPlan)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantKind, verr.Kind)
		})
	}
}

func TestValidateStopsAtFirstFailure(t *testing.T) {
	doc := rawPlan(rawCategory("a", "Rent", rawAllocations(1)))
	doc["plan"].(map[string]any)["currency"] = ""

	res := Validate(doc)
	require.False(t, res.OK())
	assert.Equal(t, KindInvalidPlanMeta, res.Err.Kind)
}

func TestValidateAcceptsAndNormalizes(t *testing.T) {
	allocations := rawAllocations(fullMonths()...)
	allocations = append(allocations, map[string]any{"month": 3.0, "amount": 25.5, "notes": "spring"})
	cat := rawCategory("a", "Rent", allocations)
	cat["type"] = "luxury"
	cat["annualBudget"] = 1.0

	doc := rawPlan(cat)
	doc["meta"] = map[string]any{"exportedAt": "2025-02-01T00:00:00.000Z", "appVersion": "v0"}
	doc["plan"].(map[string]any)["notes"] = "household"

	res := Validate(doc)
	require.True(t, res.OK(), "%v", res.Err)
	p, err := res.Unwrap()
	require.NoError(t, err)

	assert.Equal(t, CurrentVersion, p.Version)
	assert.Equal(t, PlanMeta{
		ID:        "plan-1",
		Year:      2025,
		Currency:  "EUR",
		Notes:     "household",
		CreatedAt: "2025-01-01T00:00:00.000Z",
		UpdatedAt: "2025-01-02T00:00:00.000Z",
	}, p.Plan)
	require.NotNil(t, p.Meta)
	assert.Equal(t, "v0", p.Meta.AppVersion)

	require.Len(t, p.Categories, 1)
	c := p.Categories[0]
	requireCanonical(t, c)
	assert.Equal(t, CategoryType("luxury"), c.Type, "type is not checked against the enum")
	assert.Equal(t, 25.5, c.Allocation(3))
	assert.Equal(t, "spring", c.MonthlyAllocations[2].Notes)
	assert.Equal(t, 11*10+25.5, c.AnnualBudget)
}

func TestValidateAcceptsEmptyCategories(t *testing.T) {
	res := Validate(rawPlan())
	require.True(t, res.OK())
	assert.NotNil(t, res.Plan.Categories)
	assert.Empty(t, res.Plan.Categories)
	assert.Nil(t, res.Plan.Meta)
}

func TestValidateJSON(t *testing.T) {
	res := ValidateJSON([]byte(`{"version": 1, "plan": `))
	require.False(t, res.OK())
	assert.Equal(t, KindMalformed, res.Err.Kind)
	assert.Equal(t, MsgUnreadableFile, res.Err.Message)

	res = ValidateJSON([]byte(`null`))
	require.False(t, res.OK())
	assert.Equal(t, MsgNotJSONObject, res.Err.Message)

	data, err := json.Marshal(SamplePlan(testNow))
	require.NoError(t, err)
	res = ValidateJSON(data)
	require.True(t, res.OK(), "%v", res.Err)
	assert.Equal(t, SamplePlan(testNow), res.Plan)
}

func TestAsNumber(t *testing.T) {
	for _, v := range []any{1.0, float32(2), 3, int64(4), json.Number("5.5")} {
		_, ok := asNumber(v)
		assert.True(t, ok, "%T", v)
	}
	for _, v := range []any{"1", nil, true, json.Number("x")} {
		_, ok := asNumber(v)
		assert.False(t, ok, "%v", v)
	}
}

func TestValidateOverflowingAmountsFromJSON(t *testing.T) {
	doc := `{"version":1,"plan":{"id":"p","year":2025,"currency":"EUR"},"categories":[
		{"id":"a","name":"Big","type":"needs","monthlyAllocations":[
			{"month":1,"amount":1e308},{"month":2,"amount":1e308},{"month":3,"amount":0},{"month":4,"amount":0},
			{"month":5,"amount":0},{"month":6,"amount":0},{"month":7,"amount":0},{"month":8,"amount":0},
			{"month":9,"amount":0},{"month":10,"amount":0},{"month":11,"amount":0},{"month":12,"amount":0}]}]}`

	res := ValidateJSON([]byte(doc))
	require.False(t, res.OK())
	assert.Equal(t, KindInvalidAmount, res.Err.Kind)

	// a later duplicate that brings the total back in range is accepted
	doc = strings.Replace(doc, `{"month":12,"amount":0}`, `{"month":12,"amount":0},{"month":2,"amount":5}`, 1)
	res = ValidateJSON([]byte(doc))
	require.True(t, res.OK(), "%v", res.Err)
	assert.Equal(t, 1e308, res.Plan.Categories[0].AnnualBudget)

	_, err := MarshalExport(res.Plan)
	require.NoError(t, err)
}

func TestValidateFractionalMonthIsNotAMonth(t *testing.T) {
	allocations := rawAllocations(1, 1.5, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11)
	allocations[1].(map[string]any)["amount"] = 99.0

	res := Validate(rawPlan(rawCategory("a", "Rent", allocations)))
	require.True(t, res.OK(), "%v", res.Err)

	c := res.Plan.Categories[0]
	requireCanonical(t, c)
	assert.Equal(t, 10.0, c.Allocation(1))
	assert.Equal(t, 0.0, c.Allocation(12))
	assert.Equal(t, 110.0, c.AnnualBudget)
}
