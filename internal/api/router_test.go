package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Shortlist/internal/engine"
	"github.com/MikeSquared-Agency/Shortlist/internal/financing"
	"github.com/MikeSquared-Agency/Shortlist/internal/fuel"
	"github.com/MikeSquared-Agency/Shortlist/internal/hermes"
	"github.com/MikeSquared-Agency/Shortlist/internal/profile"
	"github.com/MikeSquared-Agency/Shortlist/internal/store"
	"github.com/MikeSquared-Agency/Shortlist/internal/valuation"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Mocks

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Recommend(ctx context.Context, p *profile.Profile, topN int) (*engine.Result, error) {
	args := m.Called(ctx, p, topN)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.Result), args.Error(1)
}

func (m *MockEngine) FinancingTerms(p *profile.Profile) (financing.Terms, float64, error) {
	args := m.Called(p)
	return args.Get(0).(financing.Terms), args.Get(1).(float64), args.Error(2)
}

func (m *MockEngine) ClearCache(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockFuel struct {
	mock.Mock
}

func (m *MockFuel) GetPriceInfo(ctx context.Context) fuel.PriceInfo {
	args := m.Called(ctx)
	return args.Get(0).(fuel.PriceInfo)
}

func (m *MockFuel) UpdateDefaultPrice(ctx context.Context, price float64) (fuel.PriceInfo, error) {
	args := m.Called(ctx, price)
	return args.Get(0).(fuel.PriceInfo), args.Error(1)
}

type MockHermes struct {
	mock.Mock
}

func (m *MockHermes) Publish(subject string, data interface{}) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *MockHermes) Subscribe(subject string, handler func(string, []byte)) error {
	args := m.Called(subject, handler)
	return args.Error(0)
}

func (m *MockHermes) Close() {}

type testServer struct {
	handler http.Handler
	engine  *MockEngine
	fuel    *MockFuel
	hermes  *MockHermes
	dealer  *store.Dealership
	vehicle *store.Vehicle
}

const adminToken = "admin-secret"

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dealer := &store.Dealership{ID: uuid.New(), Name: "Auto Centro", City: "Curitiba", State: "PR", Active: true}
	v := &store.Vehicle{
		ID: uuid.New(), DealershipID: dealer.ID, Brand: "Toyota", Model: "Yaris",
		Year: time.Now().Year() - 1, Price: 95000, Mileage: 12000,
		Category: store.CategoryHatch, Fuel: store.FuelFlex, Available: true,
	}
	ts := &testServer{
		engine:  &MockEngine{},
		fuel:    &MockFuel{},
		hermes:  &MockHermes{},
		dealer:  dealer,
		vehicle: v,
	}
	ts.handler = NewRouter(Deps{
		Engine:    ts.engine,
		Fuel:      ts.fuel,
		Store:     store.NewMemoryStore([]*store.Dealership{dealer}, []*store.Vehicle{v}),
		Valuation: valuation.NewCalculator(),
		Hermes:    ts.hermes,
	}, Options{AdminToken: adminToken}, discardLogger())
	return ts
}

func (ts *testServer) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

var admin = map[string]string{"Authorization": "Bearer " + adminToken}

func TestRecommendEndpoint(t *testing.T) {
	ts := newTestServer(t)
	result := &engine.Result{
		Recommendations:      []engine.Recommendation{{Rank: 1, Vehicle: ts.vehicle, MatchPercentage: 82.5}},
		TotalRecommendations: 1,
	}
	ts.engine.On("Recommend", mock.Anything, mock.MatchedBy(func(p *profile.Profile) bool {
		return p.BudgetMax == 100000 && p.UsageType == "city"
	}), 5).Return(result, nil)

	rr := ts.do("POST", "/api/v1/recommendations?top_n=5", map[string]interface{}{
		"budget_min": 50000, "budget_max": 100000, "usage_type": "city",
	}, nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	var got engine.Result
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 1, got.TotalRecommendations)
	assert.Equal(t, 82.5, got.Recommendations[0].MatchPercentage)
	ts.engine.AssertExpectations(t)
}

func TestRecommendEndpointDefaultsTopN(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.On("Recommend", mock.Anything, mock.Anything, 0).Return(engine.EmptyResult(), nil)

	rr := ts.do("POST", "/api/v1/recommendations", map[string]interface{}{"budget_max": 1000}, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"recommendations":[]`)
	assert.Contains(t, rr.Body.String(), engine.EmptyMessage)
	ts.engine.AssertExpectations(t)
}

func TestRecommendEndpointErrors(t *testing.T) {
	t.Run("invalid top_n", func(t *testing.T) {
		ts := newTestServer(t)
		rr := ts.do("POST", "/api/v1/recommendations?top_n=many", map[string]interface{}{}, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		ts.engine.AssertNotCalled(t, "Recommend", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed body", func(t *testing.T) {
		ts := newTestServer(t)
		rr := ts.do("POST", "/api/v1/recommendations", "{budget", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid profile", func(t *testing.T) {
		ts := newTestServer(t)
		ts.engine.On("Recommend", mock.Anything, mock.Anything, 0).
			Return(nil, fmt.Errorf("%w: budget_min exceeds budget_max", profile.ErrInvalidProfile))
		rr := ts.do("POST", "/api/v1/recommendations", map[string]interface{}{"budget_min": 10, "budget_max": 1}, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "budget_min exceeds budget_max")
	})

	t.Run("internal failure", func(t *testing.T) {
		ts := newTestServer(t)
		ts.engine.On("Recommend", mock.Anything, mock.Anything, 0).Return(nil, errors.New("load inventory: connection refused"))
		rr := ts.do("POST", "/api/v1/recommendations", map[string]interface{}{"budget_max": 1}, nil)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestRecommendEndpointCarriesRequestID(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.On("Recommend", mock.MatchedBy(func(ctx context.Context) bool {
		return engine.RequestIDFromContext(ctx) != ""
	}), mock.Anything, 0).Return(engine.EmptyResult(), nil)

	rr := ts.do("POST", "/api/v1/recommendations", map[string]interface{}{"budget_max": 1000}, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	ts.engine.AssertExpectations(t)
}

func TestFinancingTermsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	terms := financing.Terms{MonthlyRate: 0.0199, MaxTermMonths: 60, MinDownPayment: 0.2, RiskLevel: financing.RiskMedium}
	ts.engine.On("FinancingTerms", mock.Anything).Return(terms, 0.8, nil)

	rr := ts.do("POST", "/api/v1/financing/terms", map[string]interface{}{"budget_max": 80000}, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var got FinancingResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 60, got.Terms.MaxTermMonths)
	assert.Equal(t, 0.8, got.CreditScore)
}

func TestFinancingTermsInvalidProfile(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.On("FinancingTerms", mock.Anything).Return(financing.Terms{}, 0.0, profile.ErrInvalidProfile)
	rr := ts.do("POST", "/api/v1/financing/terms", map[string]interface{}{"budget_min": -5}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetFuelPrice(t *testing.T) {
	ts := newTestServer(t)
	updated := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	ts.fuel.On("GetPriceInfo", mock.Anything).Return(fuel.PriceInfo{Price: 6.19, Source: fuel.SourceCache, LastUpdated: &updated})

	rr := ts.do("GET", "/api/v1/fuel-price", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 6.19, got["price"])
	assert.Equal(t, "cache", got["source"])
	assert.NotNil(t, got["last_updated"])
}

func TestUpdateFuelPrice(t *testing.T) {
	ts := newTestServer(t)
	now := time.Now()
	ts.fuel.On("UpdateDefaultPrice", mock.Anything, 6.49).Return(fuel.PriceInfo{Price: 6.49, Source: fuel.SourceCache, LastUpdated: &now}, nil)
	ts.hermes.On("Publish", hermes.SubjectFuelPriceUpdated, mock.AnythingOfType("hermes.FuelPriceUpdatedEvent")).Return(nil)
	ts.engine.On("ClearCache", mock.Anything).Return(nil)

	rr := ts.do("PUT", "/api/v1/fuel-price", map[string]interface{}{"price": 6.49}, admin)
	assert.Equal(t, http.StatusOK, rr.Code)
	ts.fuel.AssertExpectations(t)
	ts.hermes.AssertExpectations(t)
	// Scores cached at the old price must not survive the change.
	ts.engine.AssertNumberOfCalls(t, "ClearCache", 1)
}

func TestUpdateFuelPriceErrors(t *testing.T) {
	t.Run("requires admin", func(t *testing.T) {
		ts := newTestServer(t)
		rr := ts.do("PUT", "/api/v1/fuel-price", map[string]interface{}{"price": 6.49}, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		ts.fuel.AssertNotCalled(t, "UpdateDefaultPrice", mock.Anything, mock.Anything)
	})

	t.Run("missing price", func(t *testing.T) {
		ts := newTestServer(t)
		rr := ts.do("PUT", "/api/v1/fuel-price", map[string]interface{}{}, admin)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("non-positive price", func(t *testing.T) {
		ts := newTestServer(t)
		ts.fuel.On("UpdateDefaultPrice", mock.Anything, -1.0).Return(fuel.PriceInfo{}, fmt.Errorf("%w: got -1", fuel.ErrInvalidPrice))
		rr := ts.do("PUT", "/api/v1/fuel-price", map[string]interface{}{"price": -1}, admin)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		ts.hermes.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
		ts.engine.AssertNotCalled(t, "ClearCache", mock.Anything)
	})

	t.Run("publish and cache failures are not fatal", func(t *testing.T) {
		ts := newTestServer(t)
		ts.fuel.On("UpdateDefaultPrice", mock.Anything, 5.5).Return(fuel.PriceInfo{Price: 5.5, Source: fuel.SourceCache}, nil)
		ts.hermes.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats down"))
		ts.engine.On("ClearCache", mock.Anything).Return(errors.New("redis down"))
		rr := ts.do("PUT", "/api/v1/fuel-price", map[string]interface{}{"price": 5.5}, admin)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestClearCacheEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.engine.On("ClearCache", mock.Anything).Return(nil)

	rr := ts.do("DELETE", "/api/v1/cache", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.do("DELETE", "/api/v1/cache", nil, admin)
	assert.Equal(t, http.StatusOK, rr.Code)
	ts.engine.AssertNumberOfCalls(t, "ClearCache", 1)
}

func TestInventoryEndpoints(t *testing.T) {
	ts := newTestServer(t)

	t.Run("list vehicles", func(t *testing.T) {
		rr := ts.do("GET", "/api/v1/vehicles?max_price=100000&state=pr", nil, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var got []store.Vehicle
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, ts.vehicle.ID, got[0].ID)
	})

	t.Run("list vehicles empty", func(t *testing.T) {
		rr := ts.do("GET", "/api/v1/vehicles?max_price=1000", nil, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "[]\n", rr.Body.String())
	})

	t.Run("bad price", func(t *testing.T) {
		rr := ts.do("GET", "/api/v1/vehicles?min_price=cheap", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("vehicle detail", func(t *testing.T) {
		rr := ts.do("GET", "/api/v1/vehicles/"+ts.vehicle.ID.String(), nil, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var got VehicleDetail
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Len(t, got.Projection.Years, 5)
		assert.Less(t, got.Projection.FinalValue, ts.vehicle.Price)
		assert.Greater(t, got.Metrics.Reliability, 0.0)
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		rr := ts.do("GET", "/api/v1/vehicles/"+uuid.NewString(), nil, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		rr := ts.do("GET", "/api/v1/vehicles/not-a-uuid", nil, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("dealerships", func(t *testing.T) {
		rr := ts.do("GET", "/api/v1/dealerships", nil, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Auto Centro")
	})
}

func TestMetricsRouter(t *testing.T) {
	r := NewMetricsRouter()

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
