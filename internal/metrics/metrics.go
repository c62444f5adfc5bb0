package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the plan service and its HTTP surface.
// Each instance owns its registry so several can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	PlanMutations   *prometheus.CounterVec
	PlanImports     *prometheus.CounterVec
	PlanExports     prometheus.Counter
	PlanAnnualTotal prometheus.Gauge
	PlanCategories  prometheus.Gauge
	RateLimited     prometheus.Counter
	RequestDuration *prometheus.HistogramVec
}

// New creates a new Metrics instance with all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		PlanMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "spendplan_plan_mutations_total",
			Help: "Plan mutations applied, by operation",
		}, []string{"operation"}),
		PlanImports: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "spendplan_plan_imports_total",
			Help: "Plan imports, by outcome (accepted or the validation kind)",
		}, []string{"result"}),
		PlanExports: factory.NewCounter(prometheus.CounterOpts{
			Name: "spendplan_plan_exports_total",
			Help: "Plan documents exported",
		}),
		PlanAnnualTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "spendplan_plan_annual_total",
			Help: "Annual total of the current plan",
		}),
		PlanCategories: factory.NewGauge(prometheus.GaugeOpts{
			Name: "spendplan_plan_categories",
			Help: "Number of categories in the current plan",
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "spendplan_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spendplan_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "status"}),
	}
}

// IncrementMutation records an applied plan operation.
func (m *Metrics) IncrementMutation(operation string) {
	m.PlanMutations.WithLabelValues(operation).Inc()
}

// IncrementImport records an import outcome.
func (m *Metrics) IncrementImport(result string) {
	m.PlanImports.WithLabelValues(result).Inc()
}

// IncrementExport records an export.
func (m *Metrics) IncrementExport() {
	m.PlanExports.Inc()
}

// IncrementRateLimited records a rejected request.
func (m *Metrics) IncrementRateLimited() {
	m.RateLimited.Inc()
}

// SetPlan refreshes the gauges describing the current plan.
func (m *Metrics) SetPlan(annualTotal float64, categories int) {
	m.PlanAnnualTotal.Set(annualTotal)
	m.PlanCategories.Set(float64(categories))
}

// ObserveRequest records the duration of an HTTP request.
// Call with time.Now() at the start of the request.
func (m *Metrics) ObserveRequest(method string, status int, start time.Time) {
	m.RequestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
