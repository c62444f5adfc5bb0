package http

import (
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendplan/internal/core"
)

// planView is what the page and the plan fragment render.
type planView struct {
	Plan    core.PlanFile
	Summary core.Summary
	Months  []string
	Types   []core.CategoryType
}

func newPlanView(p core.PlanFile) planView {
	months := make([]string, core.MonthsPerYear)
	for i := range months {
		months[i] = monthName(i + 1)
	}
	return planView{
		Plan:    p,
		Summary: core.Summarize(p),
		Months:  months,
		Types:   core.CategoryTypes(),
	}
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money":      formatMoney,
		"plain":      formatPlain,
		"monthName":  monthName,
		"pathEscape": url.PathEscape,
	}
}

// monthName returns the short English name of month (1-12).
func monthName(month int) string {
	if !core.ValidMonth(month) {
		return ""
	}
	return time.Month(month).String()[:3]
}

// formatMoney renders an amount with two decimals, thousands separators and the
// currency code, e.g. "USD 45,000.00".
func formatMoney(currency string, amount float64) string {
	s := formatPlain(amount)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	if currency == "" {
		return out
	}
	return currency + " " + out
}

// formatPlain renders an amount with exactly two decimals, for input fields.
func formatPlain(amount float64) string {
	return decimal.NewFromFloat(amount).StringFixed(2)
}
