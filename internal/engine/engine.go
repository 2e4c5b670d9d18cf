// Package engine turns a buyer profile into a ranked shortlist of vehicles:
// filter the inventory, resolve weights once, score every candidate
// concurrently, then rank and package the winners.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/Shortlist/internal/cache"
	"github.com/MikeSquared-Agency/Shortlist/internal/financing"
	"github.com/MikeSquared-Agency/Shortlist/internal/hermes"
	"github.com/MikeSquared-Agency/Shortlist/internal/metrics"
	"github.com/MikeSquared-Agency/Shortlist/internal/profile"
	"github.com/MikeSquared-Agency/Shortlist/internal/scoring"
	"github.com/MikeSquared-Agency/Shortlist/internal/store"
	"github.com/MikeSquared-Agency/Shortlist/internal/tco"
	"github.com/MikeSquared-Agency/Shortlist/internal/valuation"
)

const (
	DefaultTopN    = 3
	DefaultMaxTopN = 20
	DefaultWorkers = 8

	EmptyMessage    = "No vehicles match your budget and filters."
	EmptySuggestion = "Try widening your budget by 10-20% or relaxing the region, brand or body-type filters."
)

type Recommendation struct {
	Rank            int                    `json:"rank"`
	Vehicle         *store.Vehicle         `json:"vehicle"`
	Dealership      *store.Dealership      `json:"dealership,omitempty"`
	MatchPercentage float64                `json:"match_percentage"`
	Justification   string                 `json:"justification"`
	Factors         []scoring.FactorResult `json:"factors"`
	TCO             tco.Breakdown          `json:"tco"`
	FitsBudget      *bool                  `json:"fits_budget,omitempty"`
	FinancialHealth tco.Health             `json:"financial_health"`
	Metrics         valuation.Metrics      `json:"metrics"`
	ParetoOptimal   bool                   `json:"pareto_optimal"`
}

type Result struct {
	Recommendations      []Recommendation  `json:"recommendations"`
	TotalRecommendations int               `json:"total_recommendations"`
	Message              string            `json:"message,omitempty"`
	Suggestion           string            `json:"suggestion,omitempty"`
	CandidatesScored     int               `json:"candidates_scored"`
	Fingerprint          string            `json:"profile_fingerprint,omitempty"`
	Weights              scoring.WeightSet `json:"weights,omitempty"`
	Financing            *financing.Terms  `json:"financing,omitempty"`
}

// EmptyResult is the well-formed answer when nothing survives filtering.
func EmptyResult() *Result {
	return &Result{
		Recommendations: []Recommendation{},
		Message:         EmptyMessage,
		Suggestion:      EmptySuggestion,
	}
}

type Options struct {
	Workers int
	// DefaultTopN applies when the caller asks for zero or fewer results.
	DefaultTopN int
	MaxTopN     int
}

// Deps are the collaborators an Engine is built from. Cache and Hermes are
// optional.
type Deps struct {
	Store     store.Store
	Optimizer *scoring.Optimizer
	Scorer    *scoring.Scorer
	Financing *financing.Agent
	TCO       *tco.Calculator
	Valuation *valuation.Calculator
	Cache     *cache.Manager
	Hermes    hermes.Client
}

type Engine struct {
	store     store.Store
	optimizer *scoring.Optimizer
	scorer    *scoring.Scorer
	financing *financing.Agent
	tco       *tco.Calculator
	valuation *valuation.Calculator
	cache     *cache.Manager
	hermes    hermes.Client
	opts      Options
	logger    *slog.Logger
}

func New(d Deps, opts Options, logger *slog.Logger) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.MaxTopN <= 0 {
		opts.MaxTopN = DefaultMaxTopN
	}
	if opts.DefaultTopN <= 0 {
		opts.DefaultTopN = DefaultTopN
	}
	if opts.DefaultTopN > opts.MaxTopN {
		opts.DefaultTopN = opts.MaxTopN
	}
	return &Engine{
		store:     d.Store,
		optimizer: d.Optimizer,
		scorer:    d.Scorer,
		financing: d.Financing,
		tco:       d.TCO,
		valuation: d.Valuation,
		cache:     d.Cache,
		hermes:    d.Hermes,
		opts:      opts,
		logger:    logger,
	}
}

// TopN resolves a requested result count against the configured default and
// ceiling.
func (e *Engine) TopN(requested int) int {
	if requested <= 0 {
		return e.opts.DefaultTopN
	}
	if requested > e.opts.MaxTopN {
		return e.opts.MaxTopN
	}
	return requested
}

type candidate struct {
	vehicle *store.Vehicle
	score   scoring.ScoringResult
	tco     tco.Breakdown
	metrics valuation.Metrics
	pareto  bool
}

// Recommend ranks the inventory for p and returns at most topN results. An
// invalid profile yields an error wrapping profile.ErrInvalidProfile; an
// empty pool is a normal result carrying a message and suggestion.
func (e *Engine) Recommend(ctx context.Context, p *profile.Profile, topN int) (*Result, error) {
	start := time.Now()
	defer func() { metrics.RecommendationDuration.Observe(time.Since(start).Seconds()) }()

	if err := p.Validate(); err != nil {
		metrics.RecommendationRequests.WithLabelValues("invalid").Inc()
		return nil, err
	}
	topN = e.TopN(topN)

	vehicles, err := e.store.ListVehicles(ctx, store.VehicleFilter{
		MinPrice:      p.BudgetMin,
		MaxPrice:      p.BudgetMax,
		AvailableOnly: true,
		State:         strings.TrimSpace(p.State),
		City:          strings.TrimSpace(p.City),
	})
	if err != nil {
		metrics.RecommendationRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load inventory: %w", err)
	}

	pool := ApplyHardFilters(FilterByBudget(vehicles, p), p)
	fingerprint := p.Fingerprint()
	if len(pool) == 0 {
		metrics.RecommendationRequests.WithLabelValues("empty").Inc()
		e.logger.Info("no candidates after filtering",
			"fingerprint", fingerprint, "inventory", len(vehicles),
			"budget_min", p.BudgetMin, "budget_max", p.BudgetMax)
		res := EmptyResult()
		res.Fingerprint = fingerprint
		return res, nil
	}

	weights := e.optimizer.Resolve(ctx, p)
	terms := e.financing.PredictTerms(p)

	scored, err := e.scoreAll(ctx, pool, p, fingerprint, weights, terms)
	if err != nil {
		metrics.RecommendationRequests.WithLabelValues("cancelled").Inc()
		return nil, err
	}

	markPareto(scored)
	sortCandidates(scored)
	if len(scored) > topN {
		scored = scored[:topN]
	}

	res := &Result{
		Recommendations:  make([]Recommendation, 0, len(scored)),
		CandidatesScored: len(pool),
		Fingerprint:      fingerprint,
		Weights:          weights,
		Financing:        &terms,
	}
	dealerships := make(map[string]*store.Dealership)
	for i, c := range scored {
		res.Recommendations = append(res.Recommendations, Recommendation{
			Rank:            i + 1,
			Vehicle:         c.vehicle,
			Dealership:      e.dealership(ctx, c.vehicle, dealerships),
			MatchPercentage: c.score.MatchPercentage,
			Justification:   c.score.Justification,
			Factors:         c.score.Factors,
			TCO:             c.tco,
			FitsBudget:      tco.FitsBudget(c.tco.TotalMonthly, p),
			FinancialHealth: tco.FinancialHealth(c.tco.TotalMonthly, p),
			Metrics:         c.metrics,
			ParetoOptimal:   c.pareto,
		})
	}
	res.TotalRecommendations = len(res.Recommendations)

	metrics.RecommendationRequests.WithLabelValues("ok").Inc()
	e.publishGenerated(ctx, res, topN)
	e.logger.Info("recommendations generated",
		"fingerprint", fingerprint,
		"candidates", len(pool),
		"returned", res.TotalRecommendations,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// scoreAll runs the orchestrator over every candidate with bounded
// concurrency. Cancellation abandons the remaining candidates.
func (e *Engine) scoreAll(ctx context.Context, pool []*store.Vehicle, p *profile.Profile, fingerprint string, weights scoring.WeightSet, terms financing.Terms) ([]*candidate, error) {
	out := make([]*candidate, len(pool))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, v := range pool {
		g.Go(func() error {
			r, err := e.scorer.ScoreCandidate(gctx, v, p, fingerprint, weights)
			if err != nil {
				return err
			}
			out[i] = &candidate{
				vehicle: v,
				score:   r,
				tco:     e.tco.Calculate(gctx, v, p, terms),
				metrics: e.valuation.ForVehicle(v),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// sortCandidates orders by match percentage descending, then price
// ascending, then vehicle ID so equal inputs always rank the same way.
func sortCandidates(cs []*candidate) {
	sort.Slice(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.score.MatchPercentage != b.score.MatchPercentage {
			return a.score.MatchPercentage > b.score.MatchPercentage
		}
		if a.vehicle.Price != b.vehicle.Price {
			return a.vehicle.Price < b.vehicle.Price
		}
		return a.vehicle.ID.String() < b.vehicle.ID.String()
	})
}

// markPareto flags candidates on the frontier of match, monthly cost and
// resale across the whole scored pool.
func markPareto(cs []*candidate) {
	points := make([]scoring.ParetoCandidate, len(cs))
	for i, c := range cs {
		points[i] = scoring.ParetoCandidate{
			VehicleID:    c.vehicle.ID.String(),
			Match:        c.score.MatchPercentage,
			TotalMonthly: c.tco.TotalMonthly,
			Resale:       c.metrics.Resale,
		}
	}
	onFrontier := make(map[string]bool)
	for _, f := range scoring.ComputeFrontier(points) {
		onFrontier[f.VehicleID] = true
	}
	for _, c := range cs {
		c.pareto = onFrontier[c.vehicle.ID.String()]
	}
}

func (e *Engine) dealership(ctx context.Context, v *store.Vehicle, seen map[string]*store.Dealership) *store.Dealership {
	key := v.DealershipID.String()
	if d, ok := seen[key]; ok {
		return d
	}
	d, err := e.store.GetDealership(ctx, v.DealershipID)
	if err != nil {
		e.logger.Warn("dealership lookup failed", "dealership_id", key, "error", err)
	}
	seen[key] = d
	return d
}

func (e *Engine) publishGenerated(ctx context.Context, res *Result, topN int) {
	if e.hermes == nil {
		return
	}
	ids := make([]string, len(res.Recommendations))
	for i, r := range res.Recommendations {
		ids[i] = r.Vehicle.ID.String()
	}
	evt := hermes.RecommendationGeneratedEvent{
		RequestID:            RequestIDFromContext(ctx),
		Fingerprint:          res.Fingerprint,
		TopN:                 topN,
		CandidatesScored:     res.CandidatesScored,
		TotalRecommendations: res.TotalRecommendations,
		VehicleIDs:           ids,
		Timestamp:            time.Now().UTC(),
	}
	if len(res.Recommendations) > 0 {
		evt.TopMatch = res.Recommendations[0].MatchPercentage
	}
	if err := e.hermes.Publish(hermes.SubjectRecommendationGenerated(res.Fingerprint), evt); err != nil {
		e.logger.Warn("failed to publish recommendation event", "error", err)
	}
}

// FinancingTerms predicts terms for a validated profile, with the credit
// health score alongside.
func (e *Engine) FinancingTerms(p *profile.Profile) (financing.Terms, float64, error) {
	if err := p.Validate(); err != nil {
		return financing.Terms{}, 0, err
	}
	return e.financing.PredictTerms(p), e.financing.CalculateScore(p), nil
}

// ClearCache drops every memoised agent score.
func (e *Engine) ClearCache(ctx context.Context) error {
	if e.cache == nil {
		return nil
	}
	return e.cache.Clear(ctx)
}
