// Package news provides the topic-prefill headline lookup. It is a pure
// read-through: no caching, no persistence.
package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HeadlineProvider returns a single current headline for topic prefill.
type HeadlineProvider interface {
	TopHeadline(ctx context.Context) (string, error)
}

// ErrNoHeadline is returned when the upstream has nothing to offer.
var ErrNoHeadline = errors.New("no headline available")

// HTTPProvider reads the top headline from a NewsAPI-compatible endpoint.
type HTTPProvider struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPProvider creates a provider for the given endpoint and key.
func NewHTTPProvider(endpoint, apiKey string) *HTTPProvider {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = "https://newsapi.org/v2/top-headlines"
	}
	return &HTTPProvider{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type headlinesResponse struct {
	Articles []struct {
		Title string `json:"title"`
	} `json:"articles"`
}

// TopHeadline fetches the current top headline title.
func (p *HTTPProvider) TopHeadline(ctx context.Context) (string, error) {
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid headlines endpoint: %v", err)
	}
	q := u.Query()
	q.Set("pageSize", "1")
	if q.Get("country") == "" {
		q.Set("country", "us")
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	if p.apiKey != "" {
		req.Header.Set("X-Api-Key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch headlines: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("headlines endpoint returned %d", resp.StatusCode)
	}

	var body headlinesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode headlines: %v", err)
	}
	if len(body.Articles) == 0 || strings.TrimSpace(body.Articles[0].Title) == "" {
		return "", ErrNoHeadline
	}
	return strings.TrimSpace(body.Articles[0].Title), nil
}
