package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/MikeSquared-Agency/Shortlist/internal/engine"
	"github.com/MikeSquared-Agency/Shortlist/internal/financing"
	"github.com/MikeSquared-Agency/Shortlist/internal/profile"
)

// Recommender is the engine surface the HTTP layer needs.
type Recommender interface {
	Recommend(ctx context.Context, p *profile.Profile, topN int) (*engine.Result, error)
	FinancingTerms(p *profile.Profile) (financing.Terms, float64, error)
	ClearCache(ctx context.Context) error
}

type RecommendationsHandler struct {
	engine Recommender
	logger *slog.Logger
}

func NewRecommendationsHandler(e Recommender, logger *slog.Logger) *RecommendationsHandler {
	return &RecommendationsHandler{engine: e, logger: logger}
}

// Recommend handles POST /recommendations?top_n=N with a profile body.
func (h *RecommendationsHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	topN := 0
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "top_n must be an integer"})
			return
		}
		topN = n
	}

	var p profile.Profile
	if !decodeJSON(w, r, &p) {
		return
	}

	res, err := h.engine.Recommend(r.Context(), &p, topN)
	if err != nil {
		if r.Context().Err() == nil {
			h.logger.Warn("recommendation failed", "error", err)
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type FinancingResponse struct {
	Terms       financing.Terms `json:"terms"`
	CreditScore float64         `json:"credit_score"`
}

// FinancingTerms handles POST /financing/terms with a profile body.
func (h *RecommendationsHandler) FinancingTerms(w http.ResponseWriter, r *http.Request) {
	var p profile.Profile
	if !decodeJSON(w, r, &p) {
		return
	}
	terms, score, err := h.engine.FinancingTerms(&p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FinancingResponse{Terms: terms, CreditScore: score})
}

// ClearCache handles DELETE /cache.
func (h *RecommendationsHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ClearCache(r.Context()); err != nil {
		h.logger.Error("cache clear failed", "error", err)
		writeError(w, err)
		return
	}
	h.logger.Info("score cache cleared")
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
