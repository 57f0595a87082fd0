package submanager

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	_ "github.com/sibintb/submanager/docs"
	"github.com/sibintb/submanager/internal/config"
	"github.com/sibintb/submanager/internal/http/handlers/auth/login"
	"github.com/sibintb/submanager/internal/http/handlers/health"
	"github.com/sibintb/submanager/internal/http/handlers/subscription/bulkdelete"
	"github.com/sibintb/submanager/internal/http/handlers/subscription/create"
	"github.com/sibintb/submanager/internal/http/handlers/subscription/dashboard"
	"github.com/sibintb/submanager/internal/http/handlers/subscription/export"
	"github.com/sibintb/submanager/internal/http/handlers/subscription/importcsv"
	"github.com/sibintb/submanager/internal/http/handlers/subscription/list"
	"github.com/sibintb/submanager/internal/http/handlers/subscription/notifications"
	"github.com/sibintb/submanager/internal/http/handlers/subscription/read"
	"github.com/sibintb/submanager/internal/http/handlers/subscription/remove"
	"github.com/sibintb/submanager/internal/http/handlers/subscription/sheets"
	"github.com/sibintb/submanager/internal/http/handlers/subscription/stream"
	"github.com/sibintb/submanager/internal/http/handlers/subscription/template"
	"github.com/sibintb/submanager/internal/http/handlers/subscription/update"
	usercreate "github.com/sibintb/submanager/internal/http/handlers/user/create"
	userlist "github.com/sibintb/submanager/internal/http/handlers/user/list"
	userremove "github.com/sibintb/submanager/internal/http/handlers/user/remove"
	"github.com/sibintb/submanager/internal/http/handlers/user/resetpassword"
	"github.com/sibintb/submanager/internal/http/middlewarectx"
	authservice "github.com/sibintb/submanager/internal/services/auth"
	subservice "github.com/sibintb/submanager/internal/services/subscription"
)

// Deps are the services and settings the router needs.
type Deps struct {
	Config        *config.Config
	Registry      *prometheus.Registry
	Subscriptions *subservice.SubscriptionService
	Auth          *authservice.AuthService
	Checks        map[string]health.Pinger
}

// RegisterRoutes mounts every endpoint of the API on r.
func RegisterRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	httpMetrics := middlewarectx.NewHTTPMetrics(d.Registry)
	limiters := middlewarectx.NewLimiters(rate.Limit(d.Config.RateLimit), d.Config.RateBurst)
	subs := d.Subscriptions

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httpMetrics.Middleware)

		r.Post("/login", login.New(logger, d.Auth).ServeHTTP)
		r.Get("/health", health.New(logger, d.Checks).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiters))

			r.Get("/dashboard", dashboard.New(logger, subs).ServeHTTP)
			r.Get("/notifications", notifications.New(logger, subs).ServeHTTP)

			r.Route("/subscriptions", func(r chi.Router) {
				r.Get("/", list.New(logger, subs).ServeHTTP)
				r.Post("/", create.New(logger, subs).ServeHTTP)
				r.Post("/bulk-delete", bulkdelete.New(logger, subs).ServeHTTP)
				r.Get("/export", export.New(logger, subs).ServeHTTP)
				r.Get("/template", template.New(logger, subs).ServeHTTP)
				r.Post("/import", importcsv.New(logger, subs, d.Config.ImportMaxSize).ServeHTTP)
				r.Post("/sheets", sheets.New(logger, subs).ServeHTTP)
				r.Get("/stream", stream.New(logger, subs).ServeHTTP)
				r.Get("/{id}", read.New(logger, subs).ServeHTTP)
				r.Put("/{id}", update.New(logger, subs).ServeHTTP)
				r.Delete("/{id}", remove.New(logger, subs).ServeHTTP)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(middlewarectx.AdminOnly(logger))
				r.Get("/", userlist.New(logger, d.Auth).ServeHTTP)
				r.Post("/", usercreate.New(logger, d.Auth).ServeHTTP)
				r.Delete("/{id}", userremove.New(logger, d.Auth).ServeHTTP)
				r.Put("/{id}/password", resetpassword.New(logger, d.Auth).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
