package core

import (
	"errors"
	"time"
)

// CurrentVersion is the only plan document version this package reads or writes.
const CurrentVersion = 1

// MonthsPerYear is the number of allocation slots in a canonical category.
const MonthsPerYear = 12

const (
	Needs   CategoryType = "needs"
	Wants   CategoryType = "wants"
	Savings CategoryType = "savings"
)

type (
	CategoryType string

	MonthlyAllocation struct {
		Month  int     `json:"month"` // 1-12
		Amount float64 `json:"amount"`
		Notes  string  `json:"notes,omitempty"`
	}

	Category struct {
		ID                 string              `json:"id"`
		Name               string              `json:"name"`
		Type               CategoryType        `json:"type"`
		AnnualBudget       float64             `json:"annualBudget"` // derived from MonthlyAllocations
		MonthlyAllocations []MonthlyAllocation `json:"monthlyAllocations"`
	}

	PlanMeta struct {
		ID        string `json:"id"`
		Year      int    `json:"year"`
		Currency  string `json:"currency"`
		Notes     string `json:"notes,omitempty"`
		CreatedAt string `json:"createdAt"`
		UpdatedAt string `json:"updatedAt"`
	}

	ExportMeta struct {
		ExportedAt string `json:"exportedAt,omitempty"`
		AppVersion string `json:"appVersion,omitempty"`
	}

	// PlanFile is the whole plan document. Categories belong to exactly one PlanFile.
	PlanFile struct {
		Version    int         `json:"version"`
		Plan       PlanMeta    `json:"plan"`
		Categories []Category  `json:"categories"`
		Meta       *ExportMeta `json:"meta,omitempty"`
	}
)

var (
	ErrInvalidPlan         = errors.New("invalid plan file")
	ErrInvalidCategoryType = errors.New("invalid category type")
	ErrInvalidMonth        = errors.New("invalid month")
	ErrCategoryNotFound    = errors.New("category not found")
)

// CategoryTypes lists the accepted category types in display order.
func CategoryTypes() []CategoryType {
	return []CategoryType{Needs, Wants, Savings}
}

// IsValid reports whether t is one of needs, wants or savings.
func (t CategoryType) IsValid() bool {
	switch t {
	case Needs, Wants, Savings:
		return true
	default:
		return false
	}
}

// ParseCategoryType converts user input into a CategoryType.
func ParseCategoryType(s string) (CategoryType, error) {
	t := CategoryType(s)
	if !t.IsValid() {
		return "", ErrInvalidCategoryType
	}
	return t, nil
}

// ValidMonth reports whether m is a calendar month number.
func ValidMonth(m int) bool {
	return m >= 1 && m <= MonthsPerYear
}

// Timestamp formats t the way plan documents store times: UTC, millisecond precision.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// FindCategory returns the index of the category with the given id, or -1.
func (p PlanFile) FindCategory(id string) int {
	for i, c := range p.Categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Allocation returns the amount allocated to month, or 0 when there is no entry.
func (c Category) Allocation(month int) float64 {
	for _, a := range c.MonthlyAllocations {
		if a.Month == month {
			return a.Amount
		}
	}
	return 0
}
