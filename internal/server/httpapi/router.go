package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route. Routes other than /connect, /users,
// /status, /stats, /metrics and file content require a session.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.logger))
	r.Use(metricsMiddleware)

	r.Get("/status", h.getStatus)
	r.Get("/stats", h.getStats)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/connect", h.connect)
	r.Post("/users", h.createUser)

	r.With(h.optionalUser).Get("/files/{id}/data", h.getFileData)

	r.Group(func(r chi.Router) {
		r.Use(h.requireUser)

		r.Get("/disconnect", h.disconnect)
		r.Get("/users/me", h.getMe)

		r.Post("/files", h.createFile)
		r.Get("/files", h.listFiles)
		r.Get("/files/{id}", h.getFile)
		r.Put("/files/{id}/publish", h.publishFile)
		r.Put("/files/{id}/unpublish", h.unpublishFile)
	})

	return r
}
