package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-auth-service/internal/config"
	"go-auth-service/internal/handler"
	"go-auth-service/internal/middleware"
)

type Handlers struct {
	System *handler.SystemHandler
	Auth   *handler.AuthHandler
	User   *handler.UserHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, metrics *middleware.Metrics, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(metrics.Middleware)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)

	r.Get("/health", h.System.Health)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(limited chi.Router) {
		limited.Use(rateLimitMiddleware.Handler)

		limited.Get("/", h.System.Info)

		limited.Route("/api/v1", func(api chi.Router) {
			api.Use(middleware.Timeout(cfg.RequestTimeout))

			api.Route("/auth", func(auth chi.Router) {
				auth.Post("/signup", h.Auth.SignUp)
				auth.Post("/signin", h.Auth.SignIn)
				auth.Post("/refresh", h.Auth.Refresh)
				auth.With(authMiddleware.Authenticate).Get("/me", h.Auth.Me)
			})

			api.Route("/users", func(users chi.Router) {
				users.Use(authMiddleware.Authenticate, authMiddleware.RequireAdmin)

				users.Get("/", h.User.List)
				users.Get("/{id}", h.User.Get)
				users.Patch("/{id}", h.User.Update)
				users.Delete("/{id}", h.User.Delete)
			})
		})
	})

	return r
}
