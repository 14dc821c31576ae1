package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/saranshraj9101/events/internal/api/handlers"
	"github.com/saranshraj9101/events/internal/auth"
	"github.com/saranshraj9101/events/internal/httpmiddleware"
	"github.com/saranshraj9101/events/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	authService *auth.Service,
	userService services.UserServiceProvider,
	eventService services.EventServiceProvider,
	activityService services.ActivityServiceProvider,
	corsOrigin string,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.Metrics)

	// CORS configuration for the frontend
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{corsOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, authService)
	eventHandler := handlers.NewEventHandler(eventService, activityService)
	userHandler := handlers.NewUserHandler(userService, activityService)
	activityHandler := handlers.NewActivityHandler(activityService)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(authService.Authenticator)
				r.Get("/me", authHandler.GetMe)
				r.Put("/profile", authHandler.UpdateProfile)
				r.Post("/change-password", authHandler.ChangePassword)
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventHandler.List)
			r.With(authService.Authenticator, auth.RequireAdmin).Post("/", eventHandler.Create)
			r.With(authService.Authenticator, auth.RequireAdmin).Get("/admin/all", eventHandler.AdminList)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", eventHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(authService.Authenticator)
					r.Post("/register", eventHandler.Register)
					r.Post("/unregister", eventHandler.Unregister)

					r.Group(func(r chi.Router) {
						r.Use(auth.RequireAdmin)
						r.Put("/", eventHandler.Update)
						r.Delete("/", eventHandler.Delete)
						r.Post("/approve", eventHandler.Approve)
					})
				})
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authService.Authenticator)
			r.Use(auth.RequireAdmin)

			r.Get("/", userHandler.List)
			r.Get("/stats/overview", userHandler.Stats)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", userHandler.Get)
				r.Put("/", userHandler.Update)
				r.Delete("/", userHandler.Delete)
				r.Post("/toggle-status", userHandler.ToggleStatus)
			})
		})

		r.With(authService.Authenticator, auth.RequireAdmin).Get("/activity", activityHandler.Recent)
	})

	return r
}
