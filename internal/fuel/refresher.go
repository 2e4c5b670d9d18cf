package fuel

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrNoFeed = errors.New("fuel price feed not configured")

// Refresh pulls the feed price into the cache regardless of freshness.
func (s *Service) Refresh(ctx context.Context) (PriceInfo, error) {
	if s.feed == nil {
		return PriceInfo{}, ErrNoFeed
	}
	return s.fetch(ctx)
}

// Refresher keeps the cached price warm by polling the feed on an interval.
type Refresher struct {
	svc      *Service
	interval time.Duration
	onUpdate func(PriceInfo)
	logger   *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewRefresher builds a refresher. onUpdate, if set, is called after every
// successful refresh.
func NewRefresher(svc *Service, interval time.Duration, onUpdate func(PriceInfo), logger *slog.Logger) *Refresher {
	return &Refresher{
		svc:      svc,
		interval: interval,
		onUpdate: onUpdate,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

func (r *Refresher) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.loop(ctx)
}

func (r *Refresher) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
}

func (r *Refresher) loop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refreshOnce(ctx)
		}
	}
}

func (r *Refresher) refreshOnce(ctx context.Context) {
	info, err := r.svc.Refresh(ctx)
	if err != nil {
		r.logger.Warn("fuel price refresh failed", "error", err)
		return
	}
	r.logger.Info("fuel price refreshed", "price", info.Price)
	if r.onUpdate != nil {
		r.onUpdate(info)
	}
}
