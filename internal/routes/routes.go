package routes

import (
	"github.com/BradenHooton/tiktok-automation/internal/auth"
	"github.com/BradenHooton/tiktok-automation/internal/handlers"
	"github.com/BradenHooton/tiktok-automation/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups every HTTP handler the API exposes
type Handlers struct {
	Auth          *handlers.AuthHandler
	User          *handlers.UserHandler
	TikTokAccount *handlers.TikTokAccountHandler
	Schedule      *handlers.ScheduleHandler
	Proxy         *handlers.ProxyHandler
	Engagement    *handlers.EngagementHandler
	Health        *handlers.HealthHandler
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	resolver auth.TokenResolver,
	rateLimitConfig middleware.RateLimitConfig,
) {
	// /users/me and /users/me/ resolve to the same route
	router.Use(chimiddleware.StripSlashes)

	// Public routes - no authentication required
	router.Get("/health", h.Health.Health)
	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(rateLimitConfig))
		r.Post("/token", h.Auth.Token)
		r.Post("/users", h.Auth.Register)
	})

	// Protected routes - a valid bearer token is required
	router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(resolver))

		r.Get("/users/me", h.User.Me)
		r.Delete("/users/me", h.User.DeleteMe)

		h.TikTokAccount.RegisterRoutes(r)
		h.Schedule.RegisterRoutes(r)
		h.Proxy.RegisterRoutes(r)
		h.Engagement.RegisterRoutes(r)
	})
}
