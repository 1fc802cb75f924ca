// Package server wires the HTTP handlers of the service into a chi router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/emarzona/shortlinks/internal/app/handler"
	"github.com/emarzona/shortlinks/internal/app/service"
	"github.com/emarzona/shortlinks/internal/middleware"
)

// Init builds the router. Stats are guarded by the trusted subnet when
// trustedSubnet is set and by operator tokens when auth is not nil.
func Init(svc service.LinkServiceIface, auth service.AuthIface, trustedSubnet string, logger *zap.Logger) *chi.Mux {
	redirect := handler.NewRedirect(svc, logger)
	api := handler.NewAPI(svc, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chimw.Recoverer)

	r.Get("/ping", api.Ping)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.WithGzipRequest)
		r.Use(middleware.WithGzipResponse)

		r.Get("/resolve/{code}", api.ResolveByPath)
		r.Post("/resolve", api.ResolveJSON)

		r.Group(func(r chi.Router) {
			if trustedSubnet != "" {
				r.Use(middleware.WithSubnet(trustedSubnet))
			}
			if auth != nil {
				r.Use(middleware.WithJWT(auth))
			}
			r.Get("/links/{code}/stats", api.Stats)
		})
	})

	r.Get("/{code}", redirect.ByCode)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Short code is required", http.StatusBadRequest)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Route not found", http.StatusNotFound)
	})

	return r
}
