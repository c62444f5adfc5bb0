package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"spendplan/internal/core"
	applog "spendplan/internal/log"
	"spendplan/internal/metrics"
)

// Notices shown to the user after export and import.
const (
	NoticeExported = "Plan exported as JSON"
	NoticeImported = "Plan imported successfully"
)

// PlanService owns the single in-memory plan and serializes every change to it.
// Readers always receive a value copy; nothing returned aliases the held state.
type PlanService struct {
	mu   sync.RWMutex
	plan core.PlanFile

	now        func() time.Time
	appVersion string
	logger     *applog.StructuredLogger
	metrics    *metrics.Metrics
}

// Option configures a PlanService.
type Option func(*PlanService)

// WithClock replaces time.Now as the source of timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *PlanService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithAppVersion sets the version stamped into exports that carry none.
func WithAppVersion(v string) Option {
	return func(s *PlanService) { s.appVersion = v }
}

// WithLogger sets the logger used for plan events.
func WithLogger(l *applog.Logger) Option {
	return func(s *PlanService) {
		if l != nil {
			s.logger = applog.NewStructuredLogger(l)
		}
	}
}

// WithMetrics sets the Prometheus collectors updated on every change.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *PlanService) { s.metrics = m }
}

// NewPlanService returns a service holding the normalized form of initial.
func NewPlanService(initial core.PlanFile, opts ...Option) *PlanService {
	s := &PlanService{
		now:        time.Now,
		appVersion: core.SampleAppVersion,
		logger:     applog.NewStructuredLogger(applog.Discard()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.plan = core.NormalizePlan(initial)
	s.observe()
	return s
}

// Current returns a snapshot of the plan.
func (s *PlanService) Current(ctx context.Context) core.PlanFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan
}

// Summary computes the derived totals of the current plan.
func (s *PlanService) Summary(ctx context.Context) core.Summary {
	return core.Summarize(s.Current(ctx))
}

// Apply runs op against the held plan and stores the result.
func (s *PlanService) Apply(ctx context.Context, op core.Operation) core.PlanFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = core.Apply(s.plan, op)
	s.observe()
	return s.plan
}

// UpdateMonthlyAmount sets one month of one category.
//
// A month outside 1-12 is rejected with core.ErrInvalidMonth. An unknown category
// leaves the plan untouched and reports core.ErrCategoryNotFound.
func (s *PlanService) UpdateMonthlyAmount(ctx context.Context, categoryID string, month int, amount float64) (core.PlanFile, error) {
	if !core.ValidMonth(month) {
		return s.Current(ctx), fmt.Errorf("month %d: %w", month, core.ErrInvalidMonth)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.plan.FindCategory(categoryID) == -1 {
		return s.plan, fmt.Errorf("category %q: %w", categoryID, core.ErrCategoryNotFound)
	}

	s.plan = core.Apply(s.plan, core.UpdateAmountOp(categoryID, month, amount, s.now()))
	s.observe()
	if s.metrics != nil {
		s.metrics.IncrementMutation(applog.OpUpdateAmount)
	}
	s.logger.LogAmountUpdated(ctx, s.plan, categoryID, month, amount)
	return s.plan, nil
}

// AddCategory appends a new category and returns the updated plan along with it.
func (s *PlanService) AddCategory(ctx context.Context, in core.NewCategory) (core.PlanFile, core.Category, error) {
	if !in.Type.IsValid() {
		return s.Current(ctx), core.Category{}, fmt.Errorf("category type %q: %w", in.Type, core.ErrInvalidCategoryType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.plan = core.Apply(s.plan, core.AddCategoryOp(in, s.now()))
	added := s.plan.Categories[len(s.plan.Categories)-1]
	s.observe()
	if s.metrics != nil {
		s.metrics.IncrementMutation(applog.OpAddCategory)
	}
	s.logger.LogCategoryAdded(ctx, s.plan, added)
	return s.plan, added, nil
}

// Replace swaps the held plan for the normalized form of p.
func (s *PlanService) Replace(ctx context.Context, p core.PlanFile) core.PlanFile {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plan = core.NormalizePlan(p)
	s.observe()
	if s.metrics != nil {
		s.metrics.IncrementMutation(applog.OpReplace)
	}
	s.logger.LogPlanReplaced(ctx, applog.OpReplace, s.plan)
	return s.plan
}

// Import validates an uploaded document and, when it is accepted, replaces the plan.
// On rejection the held plan is unchanged and the error is a *core.ValidationError.
func (s *PlanService) Import(ctx context.Context, fileName string, data []byte) (core.PlanFile, error) {
	res := core.Import(fileName, data)
	if !res.OK() {
		if s.metrics != nil {
			s.metrics.IncrementImport(string(res.Err.Kind))
		}
		s.logger.LogValidationFailed(ctx, fileName, res.Err)
		return s.Current(ctx), res.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.plan = res.Plan
	s.observe()
	if s.metrics != nil {
		s.metrics.IncrementImport("accepted")
	}
	s.logger.LogPlanReplaced(ctx, applog.OpImport, s.plan)
	return s.plan, nil
}

// Export encodes the current plan for download and returns it with its suggested file name.
// The held plan is not modified; only the exported copy carries the new exportedAt.
func (s *PlanService) Export(ctx context.Context) ([]byte, string, error) {
	p := s.Current(ctx)
	data, err := core.MarshalExport(core.Export(p, s.now(), s.appVersion))
	if err != nil {
		return nil, "", fmt.Errorf("export plan %s: %w", p.Plan.ID, err)
	}
	if s.metrics != nil {
		s.metrics.IncrementExport()
	}
	return data, core.FileName(p), nil
}

// observe refreshes the plan gauges. Callers hold the write lock.
func (s *PlanService) observe() {
	if s.metrics == nil {
		return
	}
	s.metrics.SetPlan(core.AnnualTotal(s.plan), len(s.plan.Categories))
}

// LoadSeed returns the plan the service should start with: the file at path when
// one is given, otherwise the built-in sample stamped with at.
func LoadSeed(path string, at time.Time) (core.PlanFile, error) {
	if path == "" {
		return core.SamplePlan(at), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return core.PlanFile{}, fmt.Errorf("read seed plan: %w", err)
	}
	p, err := core.Import(filepath.Base(path), data).Unwrap()
	if err != nil {
		return core.PlanFile{}, fmt.Errorf("load seed plan %s: %w", path, err)
	}
	return p, nil
}
