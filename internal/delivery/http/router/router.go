package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/price-tracker/internal/delivery/http/handler"
	"github.com/user/price-tracker/internal/delivery/http/middleware"
)

// New builds the API router. requestTimeout bounds every request and must
// cover a synchronous refresh pass.
func New(h *handler.Handler, logger *zap.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)

		r.Get("/products", h.HandleListProducts)
		r.Post("/products", h.HandleCreateProduct)
		r.Get("/products/{id}", h.HandleGetProduct)
		r.Delete("/products/{id}", h.HandleDeleteProduct)
		r.Post("/products/{id}/competitors", h.HandleCreateCompetitor)

		r.Get("/competitors/{id}", h.HandleGetCompetitor)
		r.Delete("/competitors/{id}", h.HandleDeleteCompetitor)

		r.Post("/refresh", h.HandleRefresh)
	})

	return r
}
