// Package inference talks to the external text-completion provider used for
// semantic profile analysis.
package inference

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrMissingCredentials = errors.New("inference: missing credentials")
	ErrTimeout            = errors.New("inference: timeout")
	ErrFailed             = errors.New("inference: request failed")
)

// Client turns a prompt into completion text.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	ProviderHTTP     = "http"
	ProviderFixed    = "fixed"
	ProviderDisabled = "disabled"
)

type Options struct {
	Provider      string
	BaseURL       string
	APIKey        string
	Model         string
	MaxRetries    int
	FixedResponse string
}

// New builds the client for the configured provider. The disabled provider
// yields a nil Client, which callers treat as "no inference".
func New(opts Options) (Client, error) {
	switch opts.Provider {
	case ProviderHTTP:
		return NewHTTPClient(opts.BaseURL, opts.APIKey, opts.Model, opts.MaxRetries), nil
	case ProviderFixed:
		return &FixedClient{Response: opts.FixedResponse}, nil
	case ProviderDisabled, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown inference provider %q", opts.Provider)
	}
}

// FixedClient returns a canned response. It stands in for the provider in
// tests and offline deployments.
type FixedClient struct {
	Response string
	Err      error
}

func (c *FixedClient) Complete(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ErrTimeout
	}
	if c.Err != nil {
		return "", c.Err
	}
	return c.Response, nil
}
