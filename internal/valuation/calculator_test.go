package valuation

import (
	"math"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/Shortlist/internal/store"
)

const thisYear = 2026

func fixedCalculator() *Calculator {
	return NewCalculatorAt(func() time.Time {
		return time.Date(thisYear, time.June, 1, 12, 0, 0, 0, time.UTC)
	})
}

func TestReliability(t *testing.T) {
	c := fixedCalculator()
	tests := []struct {
		name    string
		brand   string
		year    int
		mileage int
		want    float64
	}{
		{"toyota new low mileage", "Toyota", thisYear, 10000, 0.95},
		{"fiat old high mileage", "Fiat", thisYear - 11, 150000, 0.27},
		{"unknown brand default", "Chery", thisYear - 2, 30000, 0.70},
		{"age only", "Honda", thisYear - 12, 50000, 0.73},
		{"mileage only", "Honda", thisYear - 5, 100001, 0.78},
		{"exactly ten years no penalty", "Toyota", thisYear - 10, 100000, 0.95},
		{"alias", "VW", thisYear, 0, 0.78},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Reliability(tt.brand, tt.year, tt.mileage)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("expected %.2f, got %f", tt.want, got)
			}
		})
	}
}

func TestIndicesStayInUnitRange(t *testing.T) {
	c := fixedCalculator()
	brands := []string{"Toyota", "Honda", "Fiat", "Citroen", "BMW", "unknown", ""}
	cats := []store.Category{store.CategorySUV, store.CategoryPickup, store.CategoryVan, store.CategorySedan, "weird"}
	for _, b := range brands {
		for _, cat := range cats {
			for age := 0; age <= 40; age += 3 {
				for _, km := range []int{0, 99999, 150001, 900000} {
					r := c.Reliability(b, thisYear-age, km)
					s := c.Resale(b, cat, thisYear-age)
					if r < 0 || r > 1 {
						t.Fatalf("reliability out of range for %s/%d/%d: %f", b, age, km, r)
					}
					if s < 0 || s > 1 {
						t.Fatalf("resale out of range for %s/%s/%d: %f", b, cat, age, s)
					}
				}
			}
		}
	}
}

func TestResale(t *testing.T) {
	c := fixedCalculator()

	t.Run("honda suv new saturates", func(t *testing.T) {
		got := c.Resale("Honda", store.CategorySUV, thisYear)
		if math.Abs(got-1.0) > 0.0001 {
			t.Errorf("expected 1.0, got %f", got)
		}
	})

	t.Run("linear age penalty", func(t *testing.T) {
		got := c.Resale("Toyota", store.CategorySedan, thisYear-4)
		if math.Abs(got-(0.92-0.12)) > 0.0001 {
			t.Errorf("expected 0.80, got %f", got)
		}
	})

	t.Run("age penalty capped", func(t *testing.T) {
		got := c.Resale("Toyota", store.CategorySedan, thisYear-30)
		if math.Abs(got-(0.92-0.45)) > 0.0001 {
			t.Errorf("expected 0.47, got %f", got)
		}
	})

	t.Run("future model year treated as new", func(t *testing.T) {
		got := c.Resale("Toyota", store.CategorySedan, thisYear+1)
		if math.Abs(got-0.92) > 0.0001 {
			t.Errorf("expected 0.92, got %f", got)
		}
	})
}

func TestDepreciationRate(t *testing.T) {
	c := fixedCalculator()
	tests := []struct {
		name     string
		brand    string
		category store.Category
		age      int
		want     float64
	}{
		{"bmw sedan two years", "BMW", store.CategorySedan, 2, 0.19},
		{"toyota sedan new", "Toyota", store.CategorySedan, 0, 0.18},
		{"toyota suv five years", "Toyota", store.CategorySUV, 5, 0.15},
		{"fiat hatch eight years", "Fiat", store.CategoryHatch, 8, 0.17},
		{"old pickup", "Ford", store.CategoryPickup, 15, 0.15},
		{"unknown category", "Ford", "", 3, 0.15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.DepreciationRate(tt.brand, tt.category, thisYear-tt.age)
			if math.Abs(got-tt.want) > 0.0001 {
				t.Errorf("expected %.2f, got %f", tt.want, got)
			}
		})
	}
}

func TestMaintenanceCost(t *testing.T) {
	c := fixedCalculator()
	tests := []struct {
		name    string
		brand   string
		age     int
		mileage int
		want    float64
	}{
		{"toyota new", "Toyota", 0, 10000, 2200},
		{"toyota eleven years", "Toyota", 11, 150000, 3300},
		{"unknown brand", "Chery", 1, 0, 3000},
		{"heavy mileage load", "Toyota", 5, 200000, 2420},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.MaintenanceCost(tt.brand, thisYear-tt.age, tt.mileage)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("expected %.2f, got %f", tt.want, got)
			}
		})
	}
}

func TestCalculateAll(t *testing.T) {
	c := fixedCalculator()
	m := c.CalculateAll("Toyota", store.CategorySedan, thisYear, 10000)
	if math.Abs(m.Reliability-0.95) > 0.001 {
		t.Errorf("reliability: expected 0.95, got %f", m.Reliability)
	}
	if math.Abs(m.Resale-0.92) > 0.001 {
		t.Errorf("resale: expected 0.92, got %f", m.Resale)
	}
	if math.Abs(m.DepreciationRate-0.18) > 0.001 {
		t.Errorf("depreciation: expected 0.18, got %f", m.DepreciationRate)
	}
	if m.MaintenanceCost != 2200 {
		t.Errorf("maintenance: expected 2200, got %f", m.MaintenanceCost)
	}

	v := &store.Vehicle{Brand: "Toyota", Category: store.CategorySedan, Year: thisYear, Mileage: 10000}
	if c.ForVehicle(v) != m {
		t.Error("ForVehicle should match CalculateAll")
	}
}

func TestProjectFiveYear(t *testing.T) {
	p := ProjectFiveYear(100000, 0.10, 2000)

	if p.CumulativeMaintenance != 10000 {
		t.Errorf("expected cumulative maintenance 10000, got %f", p.CumulativeMaintenance)
	}
	if p.FinalValue <= 59000 || p.FinalValue >= 59100 {
		t.Errorf("expected final value in (59000, 59100), got %f", p.FinalValue)
	}
	if len(p.Years) != 5 {
		t.Fatalf("expected 5 periods, got %d", len(p.Years))
	}
	if math.Abs(p.Years[0].EndValue-90000) > 0.001 {
		t.Errorf("expected first period to end at 90000, got %f", p.Years[0].EndValue)
	}
	for i := 1; i < len(p.Years); i++ {
		if p.Years[i].StartValue != p.Years[i-1].EndValue {
			t.Errorf("period %d does not continue from the previous one", i+1)
		}
		if p.Years[i].Depreciation >= p.Years[i-1].Depreciation {
			t.Errorf("expected compounding depreciation to shrink, period %d", i+1)
		}
	}
	if math.Abs(p.TotalDepreciation+p.FinalValue-100000) > 0.001 {
		t.Errorf("total depreciation inconsistent: %f", p.TotalDepreciation)
	}
}

func TestIsPremium(t *testing.T) {
	if !IsPremium("BMW") || !IsPremium("Mercedes") {
		t.Error("expected premium brands")
	}
	if IsPremium("Fiat") {
		t.Error("fiat is not premium")
	}
}
