package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Shortlist/internal/hermes"
	"github.com/MikeSquared-Agency/Shortlist/internal/store"
	"github.com/MikeSquared-Agency/Shortlist/internal/valuation"
)

type Deps struct {
	Engine    Recommender
	Fuel      FuelPrices
	Store     store.Store
	Valuation *valuation.Calculator
	Hermes    hermes.Client
}

type Options struct {
	AdminToken         string
	RateLimitPerMinute int
}

func NewRouter(d Deps, opts Options, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestIDContext)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(opts.RateLimitPerMinute))

	recs := NewRecommendationsHandler(d.Engine, logger)
	fuelPrices := NewFuelHandler(d.Fuel, d.Engine, d.Hermes, logger)
	inventory := NewInventoryHandler(d.Store, d.Valuation)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/recommendations", recs.Recommend)
		r.Post("/financing/terms", recs.FinancingTerms)
		r.Get("/fuel-price", fuelPrices.Get)

		r.Get("/vehicles", inventory.ListVehicles)
		r.Get("/vehicles/{id}", inventory.GetVehicle)
		r.Get("/dealerships", inventory.ListDealerships)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(opts.AdminToken))
			r.Put("/fuel-price", fuelPrices.Update)
			r.Delete("/cache", recs.ClearCache)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
