package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultModel      = "gpt-4o-mini"
	systemInstruction = "You analyse car-buyer profiles. Reply with a single JSON object of numeric weight adjustments and nothing else."
)

// HTTPClient calls an OpenAI-compatible chat completions endpoint.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	model      string
	maxRetries int
	httpClient *http.Client
}

func NewHTTPClient(baseURL, apiKey, model string, maxRetries int) *HTTPClient {
	if model == "" {
		model = defaultModel
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		maxRetries: maxRetries,
		// The caller's context carries the real deadline.
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// errPermanent marks failures that retrying cannot fix.
var errPermanent = errors.New("permanent")

func (c *HTTPClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingCredentials
	}
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: prompt},
		},
		Temperature:    0,
		MaxTokens:      200,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailed, err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ErrTimeout
			}
		}

		text, err := c.do(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ErrTimeout
		}
		if errors.Is(err, errPermanent) {
			break
		}
	}
	return "", fmt.Errorf("%w: %w", ErrFailed, lastErr)
}

func (c *HTTPClient) do(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errPermanent, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: %w: status %d", errPermanent, ErrMissingCredentials, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", fmt.Errorf("status %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return "", fmt.Errorf("%w: status %d %s", errPermanent, resp.StatusCode, string(data))
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("%w: decode: %v", errPermanent, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: empty choices", errPermanent)
	}
	return out.Choices[0].Message.Content, nil
}
