package router

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/baechuer/event-hub/internal/application/hub"
	"github.com/baechuer/event-hub/internal/config"
	"github.com/baechuer/event-hub/internal/infrastructure/security"
	"github.com/baechuer/event-hub/internal/metrics"
	"github.com/baechuer/event-hub/internal/transport/http/handlers"
	hubmw "github.com/baechuer/event-hub/internal/transport/http/middleware"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Events  *handlers.EventsHandler
	Nav     *handlers.NavHandler
	Session *handlers.SessionHandler
	Health  *handlers.HealthHandler
}

func New(h Handlers, hb *hub.Hub, signer *security.ContextSigner, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(hubmw.RequestID)
	r.Use(hubmw.SecurityHeaders)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(hubmw.AccessLog)
	r.Use(hubmw.Metrics)
	r.Use(cors.Handler(corsOptions(cfg.CORSAllowedOrigins)))

	if cfg.RLEnabled {
		r.Use(httprate.LimitByIP(cfg.RLLimit, cfg.RLWindow))
	}

	r.Get("/healthz", h.Health.Healthz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(hubmw.BrowserContext(signer, hubmw.ContextOptions{
			CookieName: cfg.ContextCookie,
			Secure:     cfg.AppEnv != "dev",
		}))
		r.Use(hubmw.Workspace(hb))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/register", h.Auth.Register)
			r.Post("/logout", h.Auth.Logout)
			r.Post("/refresh", h.Auth.Refresh)
			r.Get("/me", h.Auth.Me)
			r.Patch("/me", h.Auth.UpdateMe)
		})

		r.Get("/nav", h.Nav.Navigate)
		r.Get("/nav/", h.Nav.Navigate)
		r.Get("/nav/{route}", h.Nav.Navigate)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", h.Events.List)
			r.Post("/", h.Events.Create)
			r.Get("/{id}", h.Events.Get)
			r.Patch("/{id}", h.Events.Update)
			r.Delete("/{id}", h.Events.Delete)
			r.Get("/{id}/registrations", h.Events.Registrations)
			r.Post("/{id}/registrations", h.Events.Register)
			r.Delete("/{id}/registrations", h.Events.Unregister)
		})

		r.Get("/me/registrations", h.Events.MyRegistrations)
		r.Get("/me/events", h.Events.MyEvents)
		r.Get("/stats", h.Events.Stats)
		r.Get("/categories", h.Events.Categories)

		r.Get("/session/interactions", h.Session.Interactions)
		r.Post("/session/interactions", h.Session.Interact)
		r.Get("/session/navigation", h.Session.Navigation)
	})

	return r
}

func corsOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", hubmw.HeaderXRequestID},
		ExposedHeaders:   []string{hubmw.HeaderXRequestID, hubmw.HeaderContextToken},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	}
}
