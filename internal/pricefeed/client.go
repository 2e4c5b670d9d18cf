package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Quote is one price-per-liter observation from the feed.
type Quote struct {
	Fuel      string    `json:"fuel"`
	Price     float64   `json:"price"`
	Region    string    `json:"region,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Client interface {
	CurrentPrice(ctx context.Context) (*Quote, error)
}

type HTTPClient struct {
	baseURL    string
	token      string
	region     string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, token, region string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		token:      token,
		region:     region,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) doReq(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("pricefeed %s %s: %d %s", method, path, resp.StatusCode, string(body))
	}
	return body, nil
}

// CurrentPrice fetches the reference (gasoline) price per liter.
func (c *HTTPClient) CurrentPrice(ctx context.Context) (*Quote, error) {
	path := "/v1/prices/gasoline"
	if c.region != "" {
		path += "?region=" + url.QueryEscape(c.region)
	}
	data, err := c.doReq(ctx, "GET", path)
	if err != nil {
		return nil, err
	}
	var q Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("pricefeed: decode quote: %w", err)
	}
	if q.Price <= 0 {
		return nil, fmt.Errorf("pricefeed: non-positive price %v", q.Price)
	}
	return &q, nil
}
