package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	applog "spendplan/internal/log"
	"spendplan/internal/metrics"
	"spendplan/internal/middleware/ratelimit"
	"spendplan/internal/middleware/security"
	"spendplan/internal/middleware/trace"
	"spendplan/internal/services"
	appweb "spendplan/web"
)

// Options carries the optional collaborators of a Server.
type Options struct {
	Logger             *applog.Logger
	Metrics            *metrics.Metrics
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	plans     *services.PlanService
	templates *template.Template
	logger    *applog.Logger
	metrics   *metrics.Metrics
	limiter   *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a ready-to-run server.
func NewServer(addr string, plans *services.PlanService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	s := &Server{
		plans:   plans,
		logger:  logger.WithComponent(applog.ComponentHTTP),
		metrics: m,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			MutatingOnly:      true,
		}),
	}

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.WithComponent(applog.ComponentTemplate).Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", m.Handler())

	api := func(h http.HandlerFunc) http.Handler { return security.NoStore(h) }
	mux.Handle("GET /api/plan", api(s.handleGetPlan))
	mux.Handle("GET /api/summary", api(s.handleGetSummary))
	mux.Handle("PUT /api/categories/{id}/months/{month}", api(s.handleUpdateAmount))
	mux.Handle("POST /api/categories", api(s.handleAddCategory))
	mux.Handle("GET /api/plan/export", api(s.handleExport))
	mux.Handle("POST /api/plan/import", api(s.handleImport))
	// UI partials
	mux.Handle("GET /ui/plan", api(s.handlePlanFragment))

	resolver := security.NewIPResolver()
	var handler http.Handler = mux
	handler = s.limiter.Middleware(resolver.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		m.IncrementRateLimited()
		s.logger.WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, resolver.ClientIP(r),
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	})(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = trace.NewMiddleware(resolver.ClientIP, logger, m).Middleware(handler)
	handler = applog.Middleware(logger)(handler)

	s.Addr = addr
	s.Handler = handler
	s.ReadTimeout = 10 * time.Second
	s.ReadHeaderTimeout = 5 * time.Second
	s.WriteTimeout = 10 * time.Second
	s.IdleTimeout = 60 * time.Second
	s.MaxHeaderBytes = 1 << 16 // 64KB
	return s
}

// Shutdown stops the rate limiter and gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil || s.plans == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
