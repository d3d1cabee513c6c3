package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pharmacy-auth-api/internal/config"
	"pharmacy-auth-api/internal/handler"
	"pharmacy-auth-api/internal/middleware"
	"pharmacy-auth-api/internal/model"
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", authHandler.Login)
			auth.Post("/register", authHandler.Register)
			auth.Post("/refresh", authHandler.Refresh)
			auth.Post("/forgot-password", authHandler.ForgotPassword)
			auth.Post("/reset-password", authHandler.ResetPassword)
			auth.Post("/verify-email", authHandler.VerifyEmail)
			auth.With(authMiddleware.RequireAuth).Get("/me", authHandler.Me)
		})

		api.Route("/users", func(users chi.Router) {
			users.Use(authMiddleware.RequireAuth)

			users.With(authMiddleware.RequireRoles(model.RoleAdmin)).Post("/", userHandler.Create)
			users.With(authMiddleware.RequireRoles(model.RoleAdmin)).Get("/", userHandler.List)
			users.With(authMiddleware.RequireRoles(model.RoleAdmin, model.RolePharmacist)).Get("/{id}", userHandler.Get)
			users.With(authMiddleware.RequireRoles(model.RoleAdmin)).Patch("/{id}", userHandler.Update)
			users.With(authMiddleware.RequireRoles(model.RoleAdmin)).Delete("/{id}", userHandler.Delete)
		})

		// Any authenticated caller may read the role enumeration.
		api.With(authMiddleware.RequireAuth).Get("/roles", userHandler.Roles)
	})

	return r
}
