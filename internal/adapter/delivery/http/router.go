// Package http provides the HTTP delivery layer for the smartlinks service.
// This package contains the HTTP handlers and related types used for processing
// incoming requests, validating input, and formatting responses.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vadimbarashkov/smartlinks/internal/auth"
	"github.com/vadimbarashkov/smartlinks/pkg/middleware/recoverer"
)

// Deps are the collaborators the router dispatches to.
type Deps struct {
	SmartLinks smartLinkUseCase
	Artists    artistUseCase
	Clicks     clickUseCase
	Tokens     tokenVerifier
	// HomeURL is where fan redirects land when a smartlink or platform cannot be resolved.
	HomeURL string
}

// NewRouter initializes and returns a new Chi router configured with middleware and routes for the smartlinks API.
func NewRouter(logger *httplog.Logger, deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.yml")
	})

	validate := newValidator()
	smartLinks := newSmartLinkHandler(deps.SmartLinks, deps.Clicks, validate, deps.HomeURL)
	artists := newArtistHandler(deps.Artists, validate)
	adminOnly := requireRole(deps.Tokens, auth.RoleAdmin)

	r.Get("/go/{artistSlug}/{trackSlug}/{platform}", smartLinks.redirectToPlatform)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", handlePing)

		r.Route("/smartlinks", func(r chi.Router) {
			r.Get("/public/{artistSlug}/{trackSlug}", smartLinks.resolvePublic)
			r.Get("/artist/{artistSlug}", smartLinks.listArtistSmartLinks)
			r.Post("/{id}/log-platform-click", smartLinks.logPlatformClick)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)

				r.Post("/", smartLinks.createSmartLink)
				r.Get("/", smartLinks.listSmartLinks)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", smartLinks.getSmartLink)
					r.Put("/", smartLinks.updateSmartLink)
					r.Delete("/", smartLinks.deleteSmartLink)
					r.Get("/analytics", smartLinks.getSmartLinkAnalytics)
				})
			})
		})

		r.Route("/artists", func(r chi.Router) {
			r.Get("/", artists.listArtists)
			r.Get("/{artistSlug}", artists.getArtist)

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)

				r.Post("/", artists.createArtist)
				r.Put("/{artistSlug}", artists.updateArtist)
				r.Delete("/{artistSlug}", artists.deleteArtist)
			})
		})
	})

	return r
}
