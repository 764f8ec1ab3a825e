package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/civicpulse/civic-server/internal/middleware"
)

// RouterConfig wires handlers and middleware into the HTTP surface.
type RouterConfig struct {
	Issues *IssueHandler
	Chat   *ChatHandler
	Health *HealthHandler

	JWTSecret      string
	AllowedOrigins []string
	// Limiter may be nil, which disables rate limiting.
	Limiter        *middleware.Limiter
	RequestTimeout time.Duration

	UploadDir       string
	UploadURLPrefix string

	Logger *zap.Logger
}

// NewRouter builds the chi router.
func NewRouter(c RouterConfig) http.Handler {
	sugar := c.Logger.Sugar()
	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(c.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(timeout))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   c.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", c.Health.Check)
	r.Get("/health/ready", c.Health.Ready)

	if c.UploadDir != "" {
		prefix := strings.TrimRight(c.UploadURLPrefix, "/")
		files := http.StripPrefix(prefix+"/", http.FileServer(http.Dir(c.UploadDir)))
		r.Handle(prefix+"/*", noDirListing(files))
	}

	limit := func(route string) func(http.Handler) http.Handler {
		return middleware.RateLimit(c.Limiter, route, sugar)
	}

	r.Route("/api", func(r chi.Router) {
		// Citizen-facing oracle routes: anonymous allowed, rate limited
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(c.JWTSecret))
			r.With(limit("analyze_image")).Post("/analyze_image", c.Issues.AnalyzeImage)
			r.With(limit("report_issue")).Post("/report_issue", c.Issues.ReportIssue)
			r.With(limit("resolve_issue")).Post("/resolve_issue", c.Issues.ResolveIssue)
			r.With(limit("chat")).Post("/chat", c.Chat.Chat)
		})

		// Dashboard routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(c.JWTSecret))
			r.Get("/issues", c.Issues.List)
			r.Post("/issues/assign", c.Issues.Assign)
			r.Get("/issues/{id}", c.Issues.Get)
			r.Get("/issues/{id}/activity", c.Issues.Activity)
			r.Patch("/issues/{id}/classification", c.Issues.Reclassify)
			r.Get("/workers", c.Issues.Workers)
			r.Get("/analytics/summary", c.Issues.Summary)
		})
	})

	return r
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
