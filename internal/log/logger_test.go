package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendplan/internal/core"
)

func newBufferLogger(level slog.Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{Level: level, Component: ComponentApp, Output: &buf}), &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{" warn ", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)

	logger.WithComponent(ComponentPlan).Info("hello", FieldPlanID, "plan-1")
	out := buf.String()
	assert.Contains(t, out, "component=plan")
	assert.Contains(t, out, "plan_id=plan-1")
	assert.Equal(t, 1, strings.Count(out, "component="))

	buf.Reset()
	logger.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestFromContext(t *testing.T) {
	logger, _ := newBufferLogger(slog.LevelInfo)
	ctx := NewContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))

	fallback := FromContext(context.Background())
	require.NotNil(t, fallback)
	assert.Equal(t, "unknown", fallback.Component())
}

func TestMiddlewareChain(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)

	h := Middleware(logger.With(FieldRequestID, "req-42"))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).WithComponent(ComponentHTTP).InfoContext(r.Context(), "inside")
		}),
	)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Contains(t, buf.String(), "request_id=req-42")
	assert.Contains(t, buf.String(), "component=http")
}

func TestStructuredLogger(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)
	sl := NewStructuredLogger(logger)
	ctx := context.Background()
	p := core.SamplePlan(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	sl.LogAmountUpdated(ctx, p, "cat-housing", 3, 2100)
	assert.Contains(t, buf.String(), "operation=update_amount")
	assert.Contains(t, buf.String(), "category_id=cat-housing")

	buf.Reset()
	sl.LogValidationFailed(ctx, "plan.txt", &core.ValidationError{Kind: core.KindWrongExtension, Message: core.MsgWrongExtension})
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "validation_kind=wrong_extension")

	buf.Reset()
	sl.LogValidationFailed(ctx, "plan.json", nil)
	assert.Contains(t, buf.String(), "file_name=plan.json")

	buf.Reset()
	r := httptest.NewRequest(http.MethodPut, "/api/plan", nil)
	sl.LogHTTPEnd(ctx, r, http.StatusInternalServerError, 12, "127.0.0.1")
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "status_code=500")
}
