package dataapi

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

// Client handles communication with the Polymarket Data API
type Client struct {
	baseURL      string
	httpClient   *http.Client
	authMode     config.AuthMode
	bearerToken  string
	apiKey       string
	extraHeaders map[string]string
	limiter      *ratelimit.Limiter
	retry        retry.Policy
	pageSize     int
	walletCap    int
}

// NewClient creates a new Data API client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:      cfg.DataAPIBaseURL,
		httpClient:   &http.Client{},
		authMode:     cfg.DataAPIAuthMode,
		bearerToken:  cfg.DataAPIBearerToken,
		apiKey:       cfg.DataAPIAPIKey,
		extraHeaders: cfg.DataAPIExtraHeaders,
		limiter:      ratelimit.New(cfg.DataAPITradesRPS),
		retry: retry.Policy{
			Attempts: cfg.RetryAttempts,
			Timeout:  cfg.RequestTimeout(),
			Op:       "data_trades",
		},
		pageSize:  cfg.TradePageSize,
		walletCap: cfg.MaxTradesPerWallet,
	}
}

// RecentTrades returns up to limit taker trades across all wallets, newest
// first
func (c *Client) RecentTrades(ctx context.Context, limit int) ([]model.Trade, error) {
	return c.collect(ctx, TradeParams{TakerOnly: true}, limit)
}

// WalletTrades returns the trade history of one wallet, maker fills included,
// capped at the configured per-wallet maximum
func (c *Client) WalletTrades(ctx context.Context, address string) ([]model.Trade, error) {
	return c.collect(ctx, TradeParams{User: address}, c.walletCap)
}

// collect pages through /trades by offset until limit trades are gathered or
// the upstream returns a short page. A page that still fails after retries
// fails the whole call.
func (c *Client) collect(ctx context.Context, params TradeParams, limit int) ([]model.Trade, error) {
	var result []model.Trade
	offset := 0

	for len(result) < limit {
		pageLimit := c.pageSize
		if remaining := limit - len(result); remaining < pageLimit {
			pageLimit = remaining
		}

		var page []Trade
		err := c.retry.Do(ctx, func(ctx context.Context) error {
			var err error
			params.Limit, params.Offset = pageLimit, offset
			page, err = c.GetTrades(ctx, params)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("fetch trades page at offset %d: %w", offset, err)
		}

		for _, t := range page {
			if mt, ok := t.ToModel(); ok {
				result = append(result, mt)
			}
		}

		if len(page) < pageLimit {
			break
		}
		offset += len(page)
	}

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// GetTrades fetches a single page from /trades
func (c *Client) GetTrades(ctx context.Context, params TradeParams) ([]Trade, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u, err := url.Parse(c.baseURL + "/trades")
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}

	q := u.Query()
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		q.Set("offset", strconv.Itoa(params.Offset))
	}
	if params.User != "" {
		q.Set("user", params.User)
	}
	// the upstream defaults to taker fills only
	q.Set("takerOnly", strconv.FormatBool(params.TakerOnly))
	u.RawQuery = q.Encode()

	start := time.Now()
	trades, err := c.fetch(ctx, u.String())
	metrics.RecordAPIRequest("data", "/trades", time.Since(start), err)
	return trades, err
}

func (c *Client) fetch(ctx context.Context, rawURL string) ([]Trade, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setAuthHeaders(req)

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
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("auth_mode=%s: %w", c.authMode, err)
		}
		return nil, err
	}

	var trades []Trade
	if err := json.Unmarshal(body, &trades); err != nil {
		return nil, fmt.Errorf("%w: decode trades: %v", model.ErrMalformedResponse, err)
	}
	return trades, nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	switch c.authMode {
	case config.AuthModeBearer:
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	case config.AuthModeAPIKey:
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	for k, v := range c.extraHeaders {
		req.Header.Set(k, v)
	}
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
