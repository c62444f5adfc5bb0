package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ValidationKind identifies which structural check rejected a plan document.
type ValidationKind string

const (
	KindMalformed          ValidationKind = "malformed"
	KindWrongExtension     ValidationKind = "wrong_extension"
	KindUnsupportedVersion ValidationKind = "unsupported_version"
	KindMissingPlan        ValidationKind = "missing_plan"
	KindInvalidPlanMeta    ValidationKind = "invalid_plan_meta"
	KindMissingCategories  ValidationKind = "missing_categories"
	KindInvalidCategory    ValidationKind = "invalid_category"
	KindMissingAllocations ValidationKind = "missing_allocations"
	KindInvalidMonth       ValidationKind = "invalid_month"
	KindInvalidAmount      ValidationKind = "invalid_amount"
	KindIncompleteCoverage ValidationKind = "incomplete_coverage"
)

// Messages shown to the user when a file cannot be read at all.
const (
	MsgNotJSONObject   = "File is not valid JSON object"
	MsgUnreadableFile  = "Unable to read file. Please check the JSON and try again."
	MsgWrongExtension  = "Please upload a .json file"
	MsgUnsupportedVers = "Unsupported version (expected 1)"
)

// ValidationError describes the first defect found in a plan document.
// Message is suitable for showing to the user verbatim.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes every ValidationError match ErrInvalidPlan.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidPlan
}

func reject(kind ValidationKind, format string, args ...any) Result {
	return Result{Err: &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}}
}

// Result is the outcome of validating an untrusted plan document: either a canonical
// Plan or a ValidationError, never both.
type Result struct {
	Plan PlanFile
	Err  *ValidationError
}

// OK reports whether validation succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Unwrap returns the plan or the validation failure as a plain error.
func (r Result) Unwrap() (PlanFile, error) {
	if r.Err != nil {
		return PlanFile{}, r.Err
	}
	return r.Plan, nil
}

// ValidateJSON parses data as JSON and validates the resulting value.
func ValidateJSON(data []byte) Result {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return reject(KindMalformed, MsgUnreadableFile)
	}
	return Validate(raw)
}

// Validate checks an arbitrary decoded JSON value against the plan document schema.
//
// Checks run in a fixed order and stop at the first failure. On success the document
// is decoded and normalized, so callers always receive a canonical plan.
func Validate(raw any) Result {
	doc, ok := raw.(map[string]any)
	if !ok || doc == nil {
		return reject(KindMalformed, MsgNotJSONObject)
	}

	if v, ok := asNumber(doc["version"]); !ok || v != CurrentVersion {
		return reject(KindUnsupportedVersion, MsgUnsupportedVers)
	}

	plan, ok := doc["plan"].(map[string]any)
	if !ok {
		return reject(KindMissingPlan, "Missing plan metadata")
	}
	if _, ok := asNumber(plan["year"]); !ok || !isText(plan["id"]) || !isText(plan["currency"]) {
		return reject(KindInvalidPlanMeta, "Plan must include id, year, and currency")
	}

	categories, ok := doc["categories"].([]any)
	if !ok {
		return reject(KindMissingCategories, "Missing categories array")
	}

	for _, item := range categories {
		if res := validateCategory(item); !res.OK() {
			return res
		}
	}

	p := NormalizePlan(decodePlan(doc, plan, categories))
	if math.IsInf(AnnualTotal(p), 0) {
		return reject(KindInvalidAmount, "Plan amounts add up to more than can be stored")
	}
	return Result{Plan: p}
}

func validateCategory(item any) Result {
	cat, _ := item.(map[string]any)
	if !isText(cat["id"]) || !isText(cat["name"]) || !isText(cat["type"]) {
		return reject(KindInvalidCategory, "Each category needs id, name, and type")
	}
	name := cat["name"].(string)

	entries, ok := cat["monthlyAllocations"].([]any)
	if !ok || len(entries) == 0 {
		return reject(KindMissingAllocations, "Category %s is missing monthly allocations", name)
	}

	seen := make(map[float64]struct{}, MonthsPerYear)
	var kept [MonthsPerYear + 1]float64
	for _, e := range entries {
		entry, _ := e.(map[string]any)
		month, ok := asNumber(entry["month"])
		if !ok || month < 1 || month > MonthsPerYear {
			return reject(KindInvalidMonth, "Category %s has invalid month value", name)
		}
		seen[month] = struct{}{}
		amount, ok := asNumber(entry["amount"])
		if !ok {
			return reject(KindInvalidAmount, "Category %s has non-numeric amount", name)
		}
		if wholeMonth(month) {
			kept[int(month)] = amount
		}
	}

	if len(seen) != MonthsPerYear {
		return reject(KindIncompleteCoverage, "Category %s must cover months 1-12", name)
	}
	if math.IsInf(sum(kept[1:]...), 0) {
		return reject(KindInvalidAmount, "Category %s amounts add up to more than can be stored", name)
	}
	return Result{}
}

// decodePlan builds a PlanFile from an already validated document.
func decodePlan(doc, plan map[string]any, categories []any) PlanFile {
	year, _ := asNumber(plan["year"])
	p := PlanFile{
		Version: CurrentVersion,
		Plan: PlanMeta{
			ID:        plan["id"].(string),
			Year:      int(year),
			Currency:  plan["currency"].(string),
			Notes:     optString(plan["notes"]),
			CreatedAt: optString(plan["createdAt"]),
			UpdatedAt: optString(plan["updatedAt"]),
		},
		Categories: make([]Category, 0, len(categories)),
	}

	for _, item := range categories {
		cat := item.(map[string]any)
		entries := cat["monthlyAllocations"].([]any)
		c := Category{
			ID:                 cat["id"].(string),
			Name:               cat["name"].(string),
			Type:               CategoryType(cat["type"].(string)),
			MonthlyAllocations: make([]MonthlyAllocation, 0, len(entries)),
		}
		for _, e := range entries {
			entry := e.(map[string]any)
			month, _ := asNumber(entry["month"])
			if !wholeMonth(month) {
				// counts toward coverage but never names a month
				continue
			}
			amount, _ := asNumber(entry["amount"])
			c.MonthlyAllocations = append(c.MonthlyAllocations, MonthlyAllocation{
				Month:  int(month),
				Amount: amount,
				Notes:  optString(entry["notes"]),
			})
		}
		p.Categories = append(p.Categories, c)
	}

	if meta, ok := doc["meta"].(map[string]any); ok {
		p.Meta = &ExportMeta{
			ExportedAt: optString(meta["exportedAt"]),
			AppVersion: optString(meta["appVersion"]),
		}
	}
	return p
}

// asNumber accepts the numeric shapes a decoded JSON value can take and rejects
// NaN and infinities.
func asNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func wholeMonth(m float64) bool {
	return m == math.Trunc(m)
}

func isText(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) != ""
}

func optString(v any) string {
	s, _ := v.(string)
	return s
}
