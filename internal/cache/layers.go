package cache

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Layer is one tier of the score cache. Get reports a miss with ok=false;
// an error means the layer could not answer and is treated as a miss.
type Layer interface {
	Name() string
	Get(ctx context.Context, key string) (value float64, ok bool, err error)
	Set(ctx context.Context, key string, value float64) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// MemoryLayer is an unbounded per-process map.
type MemoryLayer struct {
	mu      sync.RWMutex
	entries map[string]float64
}

func NewMemoryLayer() *MemoryLayer {
	return &MemoryLayer{entries: make(map[string]float64)}
}

func (l *MemoryLayer) Name() string { return "memory" }

func (l *MemoryLayer) Get(_ context.Context, key string) (float64, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.entries[key]
	return v, ok, nil
}

func (l *MemoryLayer) Set(_ context.Context, key string, value float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[key] = value
	return nil
}

func (l *MemoryLayer) Delete(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
	return nil
}

func (l *MemoryLayer) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string]float64)
	return nil
}

// Len is the number of cached entries.
func (l *MemoryLayer) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// RedisLayer shares scores across replicas. Entries expire after ttl.
type RedisLayer struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLayer namespaces keys with prefix and expires them after ttl.
func NewRedisLayer(client *redis.Client, prefix string, ttl time.Duration) *RedisLayer {
	if prefix == "" {
		prefix = "shortlist:score:"
	}
	return &RedisLayer{client: client, prefix: prefix, ttl: ttl}
}

func (l *RedisLayer) Name() string { return "redis" }

func (l *RedisLayer) Get(ctx context.Context, key string) (float64, bool, error) {
	val, err := l.client.Get(ctx, l.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get: %w", err)
	}
	v, err := strconv.ParseFloat(val, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, fmt.Errorf("%w: %q", ErrCorruptEntry, val)
	}
	return v, true, nil
}

func (l *RedisLayer) Set(ctx context.Context, key string, value float64) error {
	return l.client.Set(ctx, l.prefix+key, strconv.FormatFloat(value, 'g', -1, 64), l.ttl).Err()
}

func (l *RedisLayer) Delete(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+key).Err()
}

// Clear removes every key under the layer's prefix.
func (l *RedisLayer) Clear(ctx context.Context) error {
	iter := l.client.Scan(ctx, 0, l.prefix+"*", 200).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 200 {
			if err := l.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis clear: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(batch) > 0 {
		if err := l.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis clear: %w", err)
		}
	}
	return nil
}
