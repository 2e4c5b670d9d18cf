// Package fuel resolves the current fuel price per liter through a fixed
// fallback chain: explicit override, fresh cached value, external feed, then
// a default constant.
package fuel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MikeSquared-Agency/Shortlist/internal/metrics"
	"github.com/MikeSquared-Agency/Shortlist/internal/pricefeed"
	"github.com/MikeSquared-Agency/Shortlist/internal/store"
)

var ErrInvalidPrice = errors.New("fuel price must be a positive finite number")

const (
	DefaultPrice     = 5.89
	DefaultFreshness = 7 * 24 * time.Hour

	defaultFetchTimeout = 3 * time.Second
)

// Source names where a resolved price came from.
type Source string

const (
	SourceOverride Source = "override"
	SourceCache    Source = "cache"
	SourceExternal Source = "external"
	SourceDefault  Source = "default"
)

// Price multipliers relative to the resolved gasoline price. Electric is an
// energy-equivalent figure so the per-liter formula still applies.
var buckets = map[store.FuelType]float64{
	store.FuelGasoline: 1.00,
	store.FuelEthanol:  0.70,
	store.FuelFlex:     0.85,
	store.FuelDiesel:   1.02,
	store.FuelHybrid:   1.00,
	store.FuelElectric: 0.25,
}

// BucketFactor returns the multiplier for a fuel type; unknown types price
// as gasoline.
func BucketFactor(f store.FuelType) float64 {
	if m, ok := buckets[store.NormalizeFuel(string(f))]; ok {
		return m
	}
	return 1.0
}

// PriceInfo is a resolved price with its provenance.
type PriceInfo struct {
	Price       float64    `json:"price"`
	Source      Source     `json:"source"`
	LastUpdated *time.Time `json:"last_updated"`
}

// Feed is the external price lookup. A nil Feed disables step three.
type Feed interface {
	CurrentPrice(ctx context.Context) (*pricefeed.Quote, error)
}

// Options tune the fallback chain; zero values take the package defaults.
type Options struct {
	// Override, when positive, always wins and is never cached.
	Override     float64
	DefaultPrice float64
	Freshness    time.Duration
	FetchTimeout time.Duration
}

// Service resolves the current fuel price and records manual updates.
type Service struct {
	store  PriceStore
	feed   Feed
	opts   Options
	now    func() time.Time
	group  singleflight.Group
	logger *slog.Logger
}

// NewService builds a Service. A nil priceStore keeps prices in memory; a
// nil feed skips the external lookup.
func NewService(opts Options, priceStore PriceStore, feed Feed, logger *slog.Logger) *Service {
	if opts.DefaultPrice <= 0 {
		opts.DefaultPrice = DefaultPrice
	}
	if opts.Freshness <= 0 {
		opts.Freshness = DefaultFreshness
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if priceStore == nil {
		priceStore = NewMemoryPriceStore()
	}
	return &Service{
		store:  priceStore,
		feed:   feed,
		opts:   opts,
		now:    time.Now,
		logger: logger,
	}
}

// GetCurrentPrice returns the resolved gasoline price per liter.
func (s *Service) GetCurrentPrice(ctx context.Context) float64 {
	return s.GetPriceInfo(ctx).Price
}

// PriceFor returns the price per liter for a fuel type.
func (s *Service) PriceFor(ctx context.Context, f store.FuelType) float64 {
	return s.GetCurrentPrice(ctx) * BucketFactor(f)
}

// GetPriceInfo resolves the price and reports which source produced it.
func (s *Service) GetPriceInfo(ctx context.Context) PriceInfo {
	info := s.resolve(ctx)
	metrics.FuelPriceResolutions.WithLabelValues(string(info.Source)).Inc()
	return info
}

func (s *Service) resolve(ctx context.Context) PriceInfo {
	if s.opts.Override > 0 {
		return PriceInfo{Price: s.opts.Override, Source: SourceOverride}
	}

	cached, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("fuel price cache unreadable, treating as absent", "error", err)
	}
	if cached != nil && cached.Price > 0 && s.now().Sub(cached.UpdatedAt) < s.opts.Freshness {
		updated := cached.UpdatedAt
		return PriceInfo{Price: cached.Price, Source: SourceCache, LastUpdated: &updated}
	}

	if s.feed != nil {
		info, err := s.fetch(ctx)
		if err == nil {
			return info
		}
		s.logger.Warn("fuel price feed failed, using default", "error", err)
	}

	return PriceInfo{Price: s.opts.DefaultPrice, Source: SourceDefault}
}

// fetch collapses concurrent feed lookups into one call and persists the
// result as the new cached price. The shared call is bounded by FetchTimeout
// only, so one caller's cancellation does not fail the others.
func (s *Service) fetch(ctx context.Context) (PriceInfo, error) {
	v, err, _ := s.group.Do("feed", func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.FetchTimeout)
		defer cancel()

		q, err := s.feed.CurrentPrice(fetchCtx)
		if err != nil {
			return nil, err
		}
		if !validPrice(q.Price) {
			return nil, fmt.Errorf("%w: feed returned %v", ErrInvalidPrice, q.Price)
		}
		now := s.now()
		if err := s.store.Save(fetchCtx, CachedPrice{Price: q.Price, UpdatedAt: now, Origin: string(SourceExternal)}); err != nil {
			s.logger.Warn("fuel price cache write failed", "error", err)
		}
		return PriceInfo{Price: q.Price, Source: SourceExternal, LastUpdated: &now}, nil
	})
	if err != nil {
		return PriceInfo{}, err
	}
	return v.(PriceInfo), nil
}

// UpdateDefaultPrice records a manual price. It is written to the cache, so
// it becomes the cached source until it ages out or an override is set.
func (s *Service) UpdateDefaultPrice(ctx context.Context, price float64) (PriceInfo, error) {
	if !validPrice(price) {
		return PriceInfo{}, fmt.Errorf("%w: got %v", ErrInvalidPrice, price)
	}
	now := s.now()
	if err := s.store.Save(ctx, CachedPrice{Price: price, UpdatedAt: now, Origin: "manual"}); err != nil {
		return PriceInfo{}, fmt.Errorf("update fuel price: %w", err)
	}
	s.logger.Info("fuel price updated", "price", price)
	return PriceInfo{Price: price, Source: SourceCache, LastUpdated: &now}, nil
}

func validPrice(p float64) bool {
	return p > 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
}
