package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/MikeSquared-Agency/Shortlist/internal/fuel"
	"github.com/MikeSquared-Agency/Shortlist/internal/hermes"
)

// FuelPrices is the fuel price service surface the HTTP layer needs.
type FuelPrices interface {
	GetPriceInfo(ctx context.Context) fuel.PriceInfo
	UpdateDefaultPrice(ctx context.Context, price float64) (fuel.PriceInfo, error)
}

// CacheClearer drops memoised scores.
type CacheClearer interface {
	ClearCache(ctx context.Context) error
}

type FuelHandler struct {
	fuel   FuelPrices
	cache  CacheClearer
	hermes hermes.Client
	logger *slog.Logger
}

// NewFuelHandler serves the fuel price endpoints. cache and h may be nil.
func NewFuelHandler(f FuelPrices, cache CacheClearer, h hermes.Client, logger *slog.Logger) *FuelHandler {
	return &FuelHandler{fuel: f, cache: cache, hermes: h, logger: logger}
}

func (h *FuelHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.fuel.GetPriceInfo(r.Context()))
}

type UpdateFuelPriceRequest struct {
	Price *float64 `json:"price"`
}

func (h *FuelHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateFuelPriceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Price == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price required"})
		return
	}

	info, err := h.fuel.UpdateDefaultPrice(r.Context(), *req.Price)
	if err != nil {
		writeError(w, err)
		return
	}
	FuelPriceChanged(r.Context(), h.cache, h.hermes, info, h.logger)
	writeJSON(w, http.StatusOK, info)
}

// FuelPriceChanged drops cached scores computed at the old price and
// announces the new one. Failures are logged only.
func FuelPriceChanged(ctx context.Context, c CacheClearer, h hermes.Client, info fuel.PriceInfo, logger *slog.Logger) {
	if c != nil {
		if err := c.ClearCache(ctx); err != nil {
			logger.Warn("failed to clear score cache after fuel price change", "error", err)
		}
	}
	if h == nil {
		return
	}
	evt := hermes.FuelPriceUpdatedEvent{Price: info.Price, Source: string(info.Source), UpdatedAt: info.LastUpdated}
	if err := h.Publish(hermes.SubjectFuelPriceUpdated, evt); err != nil {
		logger.Warn("failed to publish fuel price event", "error", err)
	}
}
