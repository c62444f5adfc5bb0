package log

import (
	"context"
	"log/slog"
	"net/http"

	"spendplan/internal/core"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// NewContext returns a copy of ctx carrying logger
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// Middleware creates HTTP middleware that adds a logger to the request context
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), logger)))
		})
	}
}

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	// Return default logger if not found
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogHTTPEnd logs the completion of an HTTP request
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP)

	sl.logger.WithComponent(ComponentHTTP).Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogAmountUpdated logs a single month edit
func (sl *StructuredLogger) LogAmountUpdated(ctx context.Context, p core.PlanFile, categoryID string, month int, amount float64) {
	fields := NewFields().
		WithPlan(p.Plan.ID, p.Plan.Year, len(p.Categories)).
		WithAllocation(categoryID, month, amount).
		WithOperation(OpUpdateAmount)

	sl.logger.WithComponent(ComponentPlan).InfoContext(ctx, "Monthly amount updated", fields.ToSlice()...)
}

// LogCategoryAdded logs a new category
func (sl *StructuredLogger) LogCategoryAdded(ctx context.Context, p core.PlanFile, c core.Category) {
	fields := NewFields().
		WithPlan(p.Plan.ID, p.Plan.Year, len(p.Categories)).
		WithOperation(OpAddCategory)
	fields[FieldCategoryID] = c.ID
	fields[FieldAmount] = c.AnnualBudget

	sl.logger.WithComponent(ComponentPlan).InfoContext(ctx, "Category added", fields.ToSlice()...)
}

// LogPlanReplaced logs a successful import or seed
func (sl *StructuredLogger) LogPlanReplaced(ctx context.Context, operation string, p core.PlanFile) {
	fields := NewFields().
		WithPlan(p.Plan.ID, p.Plan.Year, len(p.Categories)).
		WithOperation(operation)
	fields[FieldAnnualTotal] = core.AnnualTotal(p)

	sl.logger.WithComponent(ComponentPlan).InfoContext(ctx, "Plan replaced", fields.ToSlice()...)
}

// LogValidationFailed logs a rejected plan document
func (sl *StructuredLogger) LogValidationFailed(ctx context.Context, fileName string, verr *core.ValidationError) {
	fields := NewFields().WithOperation(OpImport)
	fields[FieldFileName] = fileName
	if verr != nil {
		fields.WithError(verr)
		fields[FieldValidationKind] = string(verr.Kind)
	}

	sl.logger.WithComponent(ComponentPlan).WarnContext(ctx, "Plan rejected", fields.ToSlice()...)
}
