package site

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"hwharvest/internal"
	"hwharvest/internal/config"
)

// Client fetches store pages and turns them into raw listings. Page
// requests are spaced to stay under the configured rate.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	minGap     time.Duration

	mu        sync.Mutex
	lastFetch time.Time
}

func NewClient(cfg config.Config) *Client {
	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutMs) * time.Millisecond},
		minGap:     time.Second / time.Duration(rps),
	}
}

// pace blocks until the minimum gap since the start of the previous
// request has passed.
func (c *Client) pace() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.lastFetch.IsZero() {
		if rest := c.minGap - time.Since(c.lastFetch); rest > 0 {
			time.Sleep(rest)
		}
	}
	c.lastFetch = time.Now()
}

// FetchListings downloads one store page and extracts its product cards.
// A failed page is reported as an error; there is no retry.
func (c *Client) FetchListings(ctx context.Context, pageURL string) ([]internal.RawListing, error) {
	c.pace()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("store page error: status=%d url=%s", resp.StatusCode, pageURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}
	return parseListings(c.cfg, doc, pageURL), nil
}
