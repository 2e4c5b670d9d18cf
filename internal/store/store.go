package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryHatch   Category = "hatch"
	CategorySedan   Category = "sedan"
	CategorySUV     Category = "suv"
	CategoryPickup  Category = "pickup"
	CategoryCompact Category = "compact"
	CategoryVan     Category = "van"
	CategoryMoto    Category = "moto"
)

// NormalizeCategory lower-cases and trims a raw category label.
func NormalizeCategory(s string) Category {
	return Category(strings.ToLower(strings.TrimSpace(s)))
}

type FuelType string

const (
	FuelGasoline FuelType = "gasoline"
	FuelEthanol  FuelType = "ethanol"
	FuelFlex     FuelType = "flex"
	FuelDiesel   FuelType = "diesel"
	FuelHybrid   FuelType = "hybrid"
	FuelElectric FuelType = "electric"
)

// NormalizeFuel lower-cases and trims a raw fuel label.
func NormalizeFuel(s string) FuelType {
	return FuelType(strings.ToLower(strings.TrimSpace(s)))
}

type Vehicle struct {
	ID              uuid.UUID `json:"id" yaml:"id"`
	DealershipID    uuid.UUID `json:"dealership_id" yaml:"dealership_id"`
	DealershipCity  string    `json:"dealership_city,omitempty" yaml:"dealership_city"`
	DealershipState string    `json:"dealership_state,omitempty" yaml:"dealership_state"`

	Brand        string   `json:"brand" yaml:"brand"`
	Model        string   `json:"model" yaml:"model"`
	Trim         string   `json:"trim,omitempty" yaml:"trim"`
	Year         int      `json:"year" yaml:"year"`
	Price        float64  `json:"price" yaml:"price"`
	Mileage      int      `json:"mileage" yaml:"mileage"`
	Fuel         FuelType `json:"fuel" yaml:"fuel"`
	Transmission string   `json:"transmission,omitempty" yaml:"transmission"`
	Category     Category `json:"category" yaml:"category"`
	Available    bool     `json:"available" yaml:"available"`

	// FuelEfficiency in km/l; zero means derive from the category table.
	FuelEfficiency float64 `json:"fuel_efficiency_km_l,omitempty" yaml:"fuel_efficiency_km_l"`

	// Baseline per-dimension scores in [0,1]
	ScoreFamily      float64 `json:"score_family" yaml:"score_family"`
	ScoreEconomy     float64 `json:"score_economy" yaml:"score_economy"`
	ScorePerformance float64 `json:"score_performance" yaml:"score_performance"`
	ScoreComfort     float64 `json:"score_comfort" yaml:"score_comfort"`
	ScoreSafety      float64 `json:"score_safety" yaml:"score_safety"`

	CreatedAt time.Time `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"-"`
}

// Eligible reports whether the record may enter the scoring pipeline.
func (v *Vehicle) Eligible() bool {
	return v != nil && v.Price > 0 && v.Available && NormalizeCategory(string(v.Category)) != CategoryMoto
}

// DisplayName is brand, model and trim joined for human-readable output.
func (v *Vehicle) DisplayName() string {
	parts := []string{v.Brand, v.Model}
	if v.Trim != "" {
		parts = append(parts, v.Trim)
	}
	return strings.Join(parts, " ")
}

type Dealership struct {
	ID       uuid.UUID `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	City     string    `json:"city" yaml:"city"`
	State    string    `json:"state" yaml:"state"`
	Phone    string    `json:"phone,omitempty" yaml:"phone"`
	WhatsApp string    `json:"whatsapp,omitempty" yaml:"whatsapp"`
	Active   bool      `json:"active" yaml:"active"`
}

// VehicleFilter narrows the raw candidate pool. Stores may apply it loosely;
// the engine re-checks every hard constraint.
type VehicleFilter struct {
	MinPrice      float64
	MaxPrice      float64
	AvailableOnly bool
	State         string
	City          string
	Limit         int
}

type Store interface {
	ListVehicles(ctx context.Context, filter VehicleFilter) ([]*Vehicle, error)
	GetVehicle(ctx context.Context, id uuid.UUID) (*Vehicle, error)

	ListDealerships(ctx context.Context) ([]*Dealership, error)
	GetDealership(ctx context.Context, id uuid.UUID) (*Dealership, error)

	Close() error
}
