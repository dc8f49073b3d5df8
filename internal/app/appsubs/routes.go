package appsubs

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	_ "github.com/magabrotheeeer/app-subscriptions/docs"
	appcreate "github.com/magabrotheeeer/app-subscriptions/internal/http/handlers/app/create"
	applist "github.com/magabrotheeeer/app-subscriptions/internal/http/handlers/app/list"
	appread "github.com/magabrotheeeer/app-subscriptions/internal/http/handlers/app/read"
	appremove "github.com/magabrotheeeer/app-subscriptions/internal/http/handlers/app/remove"
	appupdate "github.com/magabrotheeeer/app-subscriptions/internal/http/handlers/app/update"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/handlers/auth/profile"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/handlers/health"
	planlist "github.com/magabrotheeeer/app-subscriptions/internal/http/handlers/plan/list"
	sublist "github.com/magabrotheeeer/app-subscriptions/internal/http/handlers/subscription/list"
	subread "github.com/magabrotheeeer/app-subscriptions/internal/http/handlers/subscription/read"
	subupdate "github.com/magabrotheeeer/app-subscriptions/internal/http/handlers/subscription/update"
	"github.com/magabrotheeeer/app-subscriptions/internal/http/middlewarectx"
)

// MetricsProvider отдает метрики и оборачивает обработчики сбором статистики.
type MetricsProvider interface {
	Handler() http.Handler
	Middleware(next http.Handler) http.Handler
}

// RouteDeps: зависимости маршрутов.
type RouteDeps struct {
	Services      Services
	Health        health.Pinger
	Metrics       MetricsProvider
	Limiter       *rate.Limiter
	EmptyNotFound bool
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps RouteDeps) {
	s := deps.Services

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		deps.Metrics.Middleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New(logger, deps.Health).ServeHTTP)
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, deps.Limiter))
			r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
			r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, deps.Limiter))

			logoutHandler := logout.New(logger, s.Auth)
			r.Post("/logout", logoutHandler.ServeHTTP)
			r.Get("/logout", logoutHandler.ServeHTTP)
			r.Get("/user", profile.New(logger, s.Auth).ServeHTTP)

			updateApp := appupdate.New(logger, s.Apps)
			r.Post("/apps", appcreate.New(logger, s.Apps).ServeHTTP)
			r.Get("/apps", applist.New(logger, s.Apps, deps.EmptyNotFound).ServeHTTP)
			r.Get("/apps/{id}", appread.New(logger, s.Apps).ServeHTTP)
			r.Put("/apps/{id}", updateApp.ServeHTTP)
			r.Patch("/apps/{id}", updateApp.ServeHTTP)
			r.Delete("/apps/{id}", appremove.New(logger, s.Apps).ServeHTTP)
			r.Get("/apps/{id}/subscription", subread.New(logger, s.Subscriptions).ServeHTTP)

			r.Get("/subscriptions", sublist.New(logger, s.Subscriptions, deps.EmptyNotFound).ServeHTTP)
			r.Patch("/subscriptions/{id}", subupdate.New(logger, s.Subscriptions).ServeHTTP)

			r.Get("/plans", planlist.New(logger, s.Catalog, deps.EmptyNotFound).ServeHTTP)
		})
	})

	r.Handle("/metrics", deps.Metrics.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
