package router

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/html5-auditor/internal/delivery/http/handler"
	"github.com/user/html5-auditor/internal/delivery/http/middleware"
)

func New(h *handler.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Post("/audit", h.HandleAudit)
		r.Get("/audit", h.HandleGetLatest)
		r.Get("/audit/report", h.HandleGetReport)
		r.Get("/audit/stream", h.HandleStream)
	})

	return r
}
