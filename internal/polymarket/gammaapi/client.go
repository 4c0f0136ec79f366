package gammaapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/liamashdown/walletscan/internal/config"
	"github.com/liamashdown/walletscan/internal/metrics"
	"github.com/liamashdown/walletscan/internal/model"
	"github.com/liamashdown/walletscan/internal/ratelimit"
	"github.com/liamashdown/walletscan/internal/retry"
)

// Client handles communication with the Polymarket Gamma API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	retry      retry.Policy
	pageSize   int
}

// NewClient creates a new Gamma API client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:    cfg.GammaAPIBaseURL,
		httpClient: &http.Client{},
		limiter:    ratelimit.New(cfg.GammaAPIMarketsRPS),
		retry: retry.Policy{
			Attempts: cfg.RetryAttempts,
			Timeout:  cfg.RequestTimeout(),
			Op:       "gamma_markets",
		},
		pageSize: cfg.MarketPageSize,
	}
}

// ResolvedMarkets fetches one page of closed markets, most recently closed
// first. The page is Done when the upstream returned fewer than limit rows.
// Callers own retries for this call.
func (c *Client) ResolvedMarkets(ctx context.Context, offset, limit int) (model.MarketPage, error) {
	q := url.Values{}
	q.Set("closed", "true")
	q.Set("order", "closedTime")
	q.Set("ascending", "false")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	raw, err := c.GetMarkets(ctx, q)
	if err != nil {
		return model.MarketPage{}, err
	}

	page := model.MarketPage{
		Markets: make([]model.Market, 0, len(raw)),
		Done:    len(raw) < limit,
	}
	for _, m := range raw {
		if m.ConditionID == "" {
			continue
		}
		page.Markets = append(page.Markets, m.ToModel())
	}
	return page, nil
}

// ActiveMarkets pages through every open market. Each page is retried; a page
// that still fails ends the walk with an error.
func (c *Client) ActiveMarkets(ctx context.Context) ([]Market, error) {
	var all []Market
	offset := 0

	for {
		q := url.Values{}
		q.Set("active", "true")
		q.Set("closed", "false")
		q.Set("limit", strconv.Itoa(c.pageSize))
		q.Set("offset", strconv.Itoa(offset))

		var page []Market
		err := c.retry.Do(ctx, func(ctx context.Context) error {
			var err error
			page, err = c.GetMarkets(ctx, q)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("fetch active markets at offset %d: %w", offset, err)
		}

		all = append(all, page...)
		if len(page) < c.pageSize {
			return all, nil
		}
		offset += len(page)
	}
}

// GetMarkets fetches a single page from /markets with the given query
func (c *Client) GetMarkets(ctx context.Context, query url.Values) ([]Market, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u, err := url.Parse(c.baseURL + "/markets")
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}
	u.RawQuery = query.Encode()

	start := time.Now()
	markets, err := c.fetch(ctx, u.String())
	metrics.RecordAPIRequest("gamma", "/markets", time.Since(start), err)
	return markets, err
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]Market, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// Gamma API is public - no auth headers
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	var markets []Market
	if err := json.Unmarshal(body, &markets); err != nil {
		return nil, fmt.Errorf("%w: decode markets: %v", model.ErrMalformedResponse, err)
	}
	return markets, nil
}

// checkHTTPStatus maps non-2xx status codes to model errors
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	if len(bodyStr) > 256 {
		bodyStr = bodyStr[:256]
	}
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", model.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", model.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", model.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("unexpected status %d: %s", statusCode, bodyStr)
	}
}
