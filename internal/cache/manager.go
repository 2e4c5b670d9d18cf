// Package cache memoises per-(vehicle, profile, agent) scores. Entries are
// derived and idempotent, so every miss or layer failure is recovered by
// recomputing.
package cache

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/MikeSquared-Agency/Shortlist/internal/metrics"
)

var ErrCorruptEntry = errors.New("cache: corrupt entry")

// Key identifies one agent's score for one vehicle under one profile.
type Key struct {
	VehicleID   string
	Fingerprint string
	Agent       string
}

func (k Key) String() string {
	return k.VehicleID + ":" + k.Fingerprint + ":" + k.Agent
}

// Manager reads through its layers in order and computes on a full miss.
type Manager struct {
	layers []Layer
	group  singleflight.Group
	logger *slog.Logger
}

// NewManager builds a cache over layers, fastest first.
func NewManager(logger *slog.Logger, layers ...Layer) *Manager {
	return &Manager{layers: layers, logger: logger}
}

// GetOrCompute returns the cached score for key, or runs compute, stores the
// result in every layer and returns it. Concurrent misses on the same key
// share one compute call. Compute errors are returned and never cached.
func (m *Manager) GetOrCompute(ctx context.Context, key Key, compute func(ctx context.Context) (float64, error)) (float64, error) {
	k := key.String()

	for i, layer := range m.layers {
		v, ok, err := layer.Get(ctx, k)
		if err != nil {
			metrics.CacheLookups.WithLabelValues(layer.Name(), "error").Inc()
			m.logger.Warn("cache layer unreadable, treating as miss", "layer", layer.Name(), "key", k, "error", err)
			continue
		}
		if !ok {
			metrics.CacheLookups.WithLabelValues(layer.Name(), "miss").Inc()
			continue
		}
		metrics.CacheLookups.WithLabelValues(layer.Name(), "hit").Inc()
		m.backfill(ctx, m.layers[:i], k, v)
		return v, nil
	}

	res, err, _ := m.group.Do(k, func() (interface{}, error) {
		v, err := compute(ctx)
		if err != nil {
			return 0.0, err
		}
		m.backfill(ctx, m.layers, k, v)
		return v, nil
	})
	if err != nil {
		return 0, err
	}
	return res.(float64), nil
}

func (m *Manager) backfill(ctx context.Context, layers []Layer, key string, v float64) {
	for _, layer := range layers {
		if err := layer.Set(ctx, key, v); err != nil {
			m.logger.Warn("cache write failed", "layer", layer.Name(), "key", key, "error", err)
		}
	}
}

// Invalidate drops key from every layer.
func (m *Manager) Invalidate(ctx context.Context, key Key) error {
	var errs []error
	for _, layer := range m.layers {
		if err := layer.Delete(ctx, key.String()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Clear empties every layer.
func (m *Manager) Clear(ctx context.Context) error {
	var errs []error
	for _, layer := range m.layers {
		if err := layer.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	m.logger.Info("score cache cleared", "layers", len(m.layers))
	return nil
}
