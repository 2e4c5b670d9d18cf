// Package semantic infers implicit priority adjustments from a buyer profile
// with one inference call per profile. Every failure degrades to zero deltas.
package semantic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/Shortlist/internal/inference"
	"github.com/MikeSquared-Agency/Shortlist/internal/metrics"
	"github.com/MikeSquared-Agency/Shortlist/internal/profile"
)

var ErrMalformedResponse = errors.New("semantic: malformed inference response")

const (
	DefaultTimeout = 4 * time.Second

	// MaxDelta bounds every accepted adjustment.
	MaxDelta = 0.25
	// Any value beyond rejectAbove means the model ignored the contract, so
	// the whole response is discarded rather than clamped.
	rejectAbove = 0.5
)

// Deltas are additive adjustments keyed by priority dimension.
type Deltas map[string]float64

// ZeroDeltas returns an explicit no-adjustment set over the semantic
// dimensions.
func ZeroDeltas() Deltas {
	d := make(Deltas, len(profile.SemanticDimensions))
	for _, dim := range profile.SemanticDimensions {
		d[dim] = 0
	}
	return d
}

// IsZero reports whether no dimension is adjusted.
func (d Deltas) IsZero() bool {
	for _, v := range d {
		if v != 0 {
			return false
		}
	}
	return true
}

type Service struct {
	client  inference.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewService wraps an inference client. A nil client disables inference.
func NewService(client inference.Client, timeout time.Duration, logger *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{client: client, timeout: timeout, logger: logger}
}

// AnalyzeProfile returns the inferred deltas for p. It never fails and never
// outlives its timeout.
func (s *Service) AnalyzeProfile(ctx context.Context, p *profile.Profile) Deltas {
	if s.client == nil {
		metrics.InferenceCalls.WithLabelValues("disabled").Inc()
		return ZeroDeltas()
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.client.Complete(ctx, BuildPrompt(p))
	metrics.InferenceDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		outcome := "error"
		switch {
		case errors.Is(err, inference.ErrMissingCredentials):
			outcome = "missing_credentials"
		case errors.Is(err, inference.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
			outcome = "timeout"
		}
		metrics.InferenceCalls.WithLabelValues(outcome).Inc()
		s.logger.Warn("semantic inference failed, using zero deltas", "outcome", outcome, "error", err)
		return ZeroDeltas()
	}

	deltas, err := ParseDeltas(text)
	if err != nil {
		metrics.InferenceCalls.WithLabelValues("malformed").Inc()
		s.logger.Warn("semantic inference response discarded", "error", err, "response", truncate(text, 200))
		return ZeroDeltas()
	}

	metrics.InferenceCalls.WithLabelValues("ok").Inc()
	s.logger.Debug("semantic deltas inferred", "deltas", deltas)
	return deltas
}

// ParseDeltas extracts the first JSON object from text. Unknown keys are
// ignored, missing keys are zero, and accepted values are clamped to
// ±MaxDelta. A non-numeric or wildly out-of-range value rejects the whole
// response.
func ParseDeltas(text string) (Deltas, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, fmt.Errorf("%w: no JSON object", ErrMalformedResponse)
	}
	var raw map[string]interface{}
	dec := json.NewDecoder(strings.NewReader(text[start:]))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	out := ZeroDeltas()
	for _, dim := range profile.SemanticDimensions {
		v, ok := raw[dim]
		if !ok || v == nil {
			continue
		}
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("%w: %s is not a number", ErrMalformedResponse, dim)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > rejectAbove {
			return nil, fmt.Errorf("%w: %s=%v out of range", ErrMalformedResponse, dim, f)
		}
		out[dim] = math.Max(-MaxDelta, math.Min(MaxDelta, f))
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
