package store

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// MemoryStore serves inventory from memory. It backs local runs (seeded from
// a YAML file) and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	vehicles    []*Vehicle
	dealerships map[uuid.UUID]*Dealership
}

type inventoryFile struct {
	Dealerships []*Dealership `yaml:"dealerships"`
	Vehicles    []*Vehicle    `yaml:"vehicles"`
}

func NewMemoryStore(dealerships []*Dealership, vehicles []*Vehicle) *MemoryStore {
	s := &MemoryStore{dealerships: make(map[uuid.UUID]*Dealership)}
	for _, d := range dealerships {
		s.dealerships[d.ID] = d
	}
	for _, v := range vehicles {
		if d, ok := s.dealerships[v.DealershipID]; ok {
			if v.DealershipCity == "" {
				v.DealershipCity = d.City
			}
			if v.DealershipState == "" {
				v.DealershipState = d.State
			}
		}
		v.Category = NormalizeCategory(string(v.Category))
		v.Fuel = NormalizeFuel(string(v.Fuel))
		s.vehicles = append(s.vehicles, v)
	}
	return s
}

// LoadMemoryStore reads dealerships and vehicles from a YAML inventory file.
func LoadMemoryStore(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	var inv inventoryFile
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parse inventory: %w", err)
	}
	for _, v := range inv.Vehicles {
		if v.ID == uuid.Nil {
			v.ID = uuid.New()
		}
	}
	return NewMemoryStore(inv.Dealerships, inv.Vehicles), nil
}

func (s *MemoryStore) ListVehicles(_ context.Context, filter VehicleFilter) ([]*Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Vehicle
	for _, v := range s.vehicles {
		if filter.AvailableOnly && !v.Available {
			continue
		}
		if filter.MinPrice > 0 && v.Price < filter.MinPrice {
			continue
		}
		if filter.MaxPrice > 0 && v.Price > filter.MaxPrice {
			continue
		}
		if filter.State != "" && !strings.EqualFold(v.DealershipState, filter.State) {
			continue
		}
		if filter.City != "" && !strings.EqualFold(v.DealershipCity, filter.City) {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *MemoryStore) GetVehicle(_ context.Context, id uuid.UUID) (*Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.vehicles {
		if v.ID == id {
			cp := *v
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) ListDealerships(_ context.Context) ([]*Dealership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Dealership, 0, len(s.dealerships))
	for _, d := range s.dealerships {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) GetDealership(_ context.Context, id uuid.UUID) (*Dealership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dealerships[id], nil
}

func (s *MemoryStore) Close() error { return nil }
