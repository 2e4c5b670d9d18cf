package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Shortlist/internal/store"
	"github.com/MikeSquared-Agency/Shortlist/internal/valuation"
)

type InventoryHandler struct {
	store     store.Store
	valuation *valuation.Calculator
}

func NewInventoryHandler(s store.Store, v *valuation.Calculator) *InventoryHandler {
	return &InventoryHandler{store: s, valuation: v}
}

func (h *InventoryHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.VehicleFilter{
		State:         q.Get("state"),
		City:          q.Get("city"),
		AvailableOnly: q.Get("available") == "true",
	}
	var err error
	if filter.MinPrice, err = floatParam(q.Get("min_price")); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid min_price"})
		return
	}
	if filter.MaxPrice, err = floatParam(q.Get("max_price")); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid max_price"})
		return
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		filter.Limit = n
	}

	vehicles, err := h.store.ListVehicles(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if vehicles == nil {
		vehicles = []*store.Vehicle{}
	}
	writeJSON(w, http.StatusOK, vehicles)
}

type VehicleDetail struct {
	Vehicle    *store.Vehicle       `json:"vehicle"`
	Metrics    valuation.Metrics    `json:"metrics"`
	Projection valuation.Projection `json:"five_year_projection"`
}

func (h *InventoryHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid vehicle id"})
		return
	}
	v, err := h.store.GetVehicle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if v == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "vehicle not found"})
		return
	}
	m := h.valuation.ForVehicle(v)
	writeJSON(w, http.StatusOK, VehicleDetail{
		Vehicle:    v,
		Metrics:    m,
		Projection: valuation.ProjectFiveYear(v.Price, m.DepreciationRate, m.MaintenanceCost),
	})
}

func (h *InventoryHandler) ListDealerships(w http.ResponseWriter, r *http.Request) {
	dealerships, err := h.store.ListDealerships(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if dealerships == nil {
		dealerships = []*store.Dealership{}
	}
	writeJSON(w, http.StatusOK, dealerships)
}

func floatParam(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
