package fuel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisKey = "shortlist:fuel:price"

// CachedPrice is the persisted priority-2 price. Origin records whether it
// came from the external feed or a manual update.
type CachedPrice struct {
	Price     float64   `json:"price"`
	UpdatedAt time.Time `json:"updated_at"`
	Origin    string    `json:"origin"`
}

// PriceStore persists the last known price. Load returns nil, nil when
// nothing is stored.
type PriceStore interface {
	Load(ctx context.Context) (*CachedPrice, error)
	Save(ctx context.Context, p CachedPrice) error
}

// MemoryPriceStore keeps the cached price in process.
type MemoryPriceStore struct {
	mu    sync.RWMutex
	price *CachedPrice
}

func NewMemoryPriceStore() *MemoryPriceStore {
	return &MemoryPriceStore{}
}

func (s *MemoryPriceStore) Load(_ context.Context) (*CachedPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.price == nil {
		return nil, nil
	}
	cp := *s.price
	return &cp, nil
}

func (s *MemoryPriceStore) Save(_ context.Context, p CachedPrice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.price = &p
	return nil
}

// RedisPriceStore keeps the price as a JSON value under a single key so every
// replica resolves the same cached price.
type RedisPriceStore struct {
	client *redis.Client
	key    string
}

// NewRedisPriceStore stores the price as JSON under key.
func NewRedisPriceStore(client *redis.Client, key string) *RedisPriceStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisPriceStore{client: client, key: key}
}

func (s *RedisPriceStore) Load(ctx context.Context) (*CachedPrice, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load fuel price: %w", err)
	}
	var p CachedPrice
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, fmt.Errorf("decode fuel price: %w", err)
	}
	return &p, nil
}

func (s *RedisPriceStore) Save(ctx context.Context, p CachedPrice) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save fuel price: %w", err)
	}
	return nil
}
