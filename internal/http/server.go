package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"pfm/internal/auth"
	"pfm/internal/log"
	"pfm/internal/metrics"
	"pfm/internal/middleware/ratelimit"
	"pfm/internal/middleware/security"
	"pfm/internal/middleware/trace"
	"pfm/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the API is built from. Metrics and Logger may
// be nil.
type Deps struct {
	Users          *services.UserService
	Expenses       *services.ExpenseService
	Categories     *services.CategoryService
	Children       *services.ChildrenService
	Questionnaires *services.QuestionnaireService
	Milestones     *services.MilestoneService
	Tokens         *auth.Tokens
	Store          Pinger
	Metrics        *metrics.Metrics
	Logger         *log.Logger
}

// Options tune the server's ambient behaviour.
type Options struct {
	// RateLimitPerMinute is per client IP; zero disables limiting.
	RateLimitPerMinute int
	MetricsEnabled     bool
	Now                func() time.Time
}

type Server struct {
	http.Server
	deps     Deps
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	now      func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps, opts Options) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		deps:     deps,
		logger:   logger.WithComponent(log.ComponentHTTP),
		detector: security.NewDetector(),
		now:      now,
	}
	if opts.RateLimitPerMinute > 0 {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute})
	}
	s.Handler = s.routes(opts.MetricsEnabled)
	return s
}

func (s *Server) routes(metricsEnabled bool) http.Handler {
	r := chi.NewRouter()

	tracer := trace.NewMiddleware(s.logger, s.detector.ExtractClientIP, s.observe)
	r.Use(tracer.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.detector.Middleware)
	if s.limiter != nil {
		r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	if metricsEnabled && s.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/users/register", s.handleRegister)
		r.Post("/users/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.deps.Tokens))

			r.Get("/users/me", s.handleMe)
			r.Get("/users/dashboard", s.handleDashboard)
			r.Get("/users/{id}", s.handleGetUser)
			r.Patch("/users/{id}", s.handleUpdateUser)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", s.handleListCategories)
				r.Post("/", s.handleCreateCategory)
				r.Get("/{id}", s.handleGetCategory)
				r.Put("/{id}", s.handleUpdateCategory)
				r.Delete("/{id}", s.handleDeleteCategory)
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", s.handleListExpenses)
				r.Post("/", s.handleCreateExpense)
				r.Get("/export", s.handleExportExpenses)
				r.Get("/{id}", s.handleGetExpense)
				r.Put("/{id}", s.handleUpdateExpense)
				r.Delete("/{id}", s.handleDeleteExpense)
			})

			r.Route("/children-contributions", func(r chi.Router) {
				r.Get("/", s.handleListChildren)
				r.Post("/", s.handleCreateChild)
				r.Get("/{id}", s.handleGetChild)
				r.Put("/{id}", s.handleUpdateChild)
				r.Delete("/{id}", s.handleDeleteChild)
			})

			r.Get("/milestones", s.handleListMilestones)
			r.Get("/user-milestones", s.handleUserMilestones)

			r.Route("/user-responses", func(r chi.Router) {
				r.Get("/", s.handleListResponses)
				r.Post("/", s.handleCreateResponse)
				r.Get("/milestones-status", s.handleMilestonesStatus)
				r.Get("/{id}", s.handleGetResponse)
				r.Put("/{id}", s.handleUpdateResponse)
			})
		})
	})

	return r
}

// observe records request metrics under the matched route pattern so ids
// do not explode label cardinality.
func (s *Server) observe(r *http.Request, status int, elapsed time.Duration) {
	route := "unmatched"
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			route = p
		}
	}
	s.deps.Metrics.ObserveHTTP(r.Method, route, status, elapsed)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Store.Ping(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
