package semantic

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/Shortlist/internal/inference"
	"github.com/MikeSquared-Agency/Shortlist/internal/profile"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type slowClient struct{}

func (slowClient) Complete(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", inference.ErrTimeout
}

func TestParseDeltas(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    Deltas
		wantErr bool
	}{
		{
			name: "plain object",
			text: `{"safety":0.2,"space":0.1,"comfort":-0.05,"performance":0,"economy":0.15}`,
			want: Deltas{"safety": 0.2, "space": 0.1, "comfort": -0.05, "performance": 0, "economy": 0.15},
		},
		{
			name: "wrapped in prose with unknown keys",
			text: "Sure! Here you go:\n```json\n{\"safety\": 0.1, \"luxury\": 0.4}\n```",
			want: Deltas{"safety": 0.1, "space": 0, "comfort": 0, "performance": 0, "economy": 0},
		},
		{
			name: "clamped to max delta",
			text: `{"safety":0.4,"economy":-0.3}`,
			want: Deltas{"safety": 0.25, "space": 0, "comfort": 0, "performance": 0, "economy": -0.25},
		},
		{name: "far out of range rejects everything", text: `{"safety":0.2,"space":3}`, wantErr: true},
		{name: "string value", text: `{"safety":"high"}`, wantErr: true},
		{name: "no object", text: `I cannot help with that`, wantErr: true},
		{name: "truncated", text: `{"safety":0.2`, wantErr: true},
		{name: "empty", text: ``, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDeltas(tt.text)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedResponse) {
					t.Fatalf("expected ErrMalformedResponse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for k, v := range tt.want {
				if math.Abs(got[k]-v) > 1e-9 {
					t.Errorf("%s: expected %f, got %f", k, v, got[k])
				}
			}
			if _, ok := got["luxury"]; ok {
				t.Error("unknown key should be dropped")
			}
		})
	}
}

func TestAnalyzeProfileFallbacks(t *testing.T) {
	p := &profile.Profile{BudgetMax: 100000, FamilySize: 5, HasChildren: true}

	tests := []struct {
		name   string
		client inference.Client
	}{
		{"disabled", nil},
		{"missing credentials", &inference.FixedClient{Err: inference.ErrMissingCredentials}},
		{"provider error", &inference.FixedClient{Err: errors.New("503")}},
		{"malformed", &inference.FixedClient{Response: "not json"}},
		{"out of range", &inference.FixedClient{Response: `{"safety": 9}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewService(tt.client, time.Second, discardLogger())
			d := s.AnalyzeProfile(context.Background(), p)
			if !d.IsZero() {
				t.Errorf("expected zero deltas, got %v", d)
			}
			if len(d) != len(profile.SemanticDimensions) {
				t.Errorf("expected all semantic dimensions present, got %v", d)
			}
		})
	}
}

func TestAnalyzeProfileTimeoutIsBounded(t *testing.T) {
	s := NewService(slowClient{}, 30*time.Millisecond, discardLogger())
	start := time.Now()
	d := s.AnalyzeProfile(context.Background(), &profile.Profile{})
	if time.Since(start) > time.Second {
		t.Errorf("analysis exceeded its timeout: %v", time.Since(start))
	}
	if !d.IsZero() {
		t.Errorf("expected zero deltas on timeout, got %v", d)
	}
}

func TestAnalyzeProfileFixed(t *testing.T) {
	s := NewService(&inference.FixedClient{Response: `{"safety":0.2,"space":0.15}`}, 0, discardLogger())
	d := s.AnalyzeProfile(context.Background(), &profile.Profile{HasChildren: true})
	if math.Abs(d["safety"]-0.2) > 1e-9 || math.Abs(d["space"]-0.15) > 1e-9 {
		t.Errorf("unexpected deltas %v", d)
	}
}

func TestBuildPrompt(t *testing.T) {
	p := &profile.Profile{
		BudgetMin: 50000, BudgetMax: 90000, UsageType: "family", FamilySize: 4, HasChildren: true,
		Priorities:        map[string]int{"safety": 5, "economy": 3},
		FinancialCapacity: &profile.FinancialCapacity{Disclosed: true, MonthlyIncomeRange: profile.Income5kTo8k},
	}
	prompt := BuildPrompt(p)
	for _, want := range []string{"family size: 4", "has children: true", "5000-8000", "economy=3, safety=5", "safety, space, comfort, performance, economy"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
