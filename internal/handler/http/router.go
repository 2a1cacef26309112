package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/EVCatalog/internal/service"
	"github.com/utafrali/EVCatalog/internal/view"
	"github.com/utafrali/EVCatalog/pkg/health"
	"github.com/utafrali/EVCatalog/pkg/middleware"
)

const staticMaxAge = 3600

// RouterConfig holds everything the router mounts. Metrics, MetricsHandler
// and RateLimiter are optional.
type RouterConfig struct {
	ServiceName    string
	Catalog        *service.CatalogService
	Reviews        *service.ReviewService
	Session        *Session
	Views          view.Renderer
	Firebase       FirebaseWebConfig
	Health         *health.Handler
	Metrics        *middleware.HTTPMetrics
	MetricsHandler http.Handler
	RateLimiter    *middleware.RateLimiter
	StaticDir      string
	Logger         *slog.Logger
}

// NewRouter creates a chi router with every page, form and operational route.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	base := pages{views: cfg.Views, logger: logger}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger, base.Panic))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	// Operational endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.StaticDir != "" {
		static := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.With(middleware.CacheControl(staticMaxAge)).Handle("/static/*", static)
	}

	catalog := NewCatalogHandler(cfg.Catalog, cfg.Reviews, cfg.Views, logger)
	reviews := NewReviewHandler(cfg.Reviews, cfg.Views, logger)
	compare := NewCompareHandler(cfg.Catalog, cfg.Reviews, cfg.Views, logger)
	login := NewLoginHandler(cfg.Firebase, cfg.Views, logger)

	// Pages depend on the viewer, so nothing below is cacheable.
	r.Group(func(r chi.Router) {
		r.Use(middleware.CookieAuth(SessionCookie, cfg.Session.Resolve, logger))
		r.Use(middleware.RequestLogger(logger))
		r.Use(middleware.NoStore)

		r.Get("/", catalog.Home)
		r.Get("/query-result", catalog.Query)
		r.Get("/ev/{id}", catalog.ShowEV)
		r.Get("/login", login.Login)

		r.With(middleware.RedirectAnonymous("/", Authenticated)).Get("/add-ev", catalog.AddEVForm)
		r.With(middleware.RedirectAnonymous("/login", Authenticated)).Get("/edit-ev/{id}", catalog.EditEVForm)

		// Form posts
		r.Group(func(r chi.Router) {
			if cfg.RateLimiter != nil {
				r.Use(cfg.RateLimiter.Middleware)
			}

			r.Post("/compare-evs", compare.Compare)
			r.Post("/add-review/{id}", reviews.AddReview)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RedirectAnonymous("/login", Authenticated))

				r.Post("/add-ev", catalog.CreateEV)
				r.Post("/edit-ev/{id}", catalog.UpdateEV)
				r.Post("/delete-ev/{id}", catalog.DeleteEV)
			})
		})
	})

	r.NotFound(base.notFound)

	return r
}
