// Package marketcache loads a bounded window of recently resolved markets
// once per session and serves lookups by condition ID.
package marketcache

import (
	"context"
	"fmt"
	"time"

	"github.com/liamashdown/walletscan/internal/config"
	"github.com/liamashdown/walletscan/internal/metrics"
	"github.com/liamashdown/walletscan/internal/model"
	"github.com/liamashdown/walletscan/internal/retry"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Source lists resolved markets, most recently closed first
type Source interface {
	ResolvedMarkets(ctx context.Context, offset, limit int) (model.MarketPage, error)
}

// Cache is an immutable index of resolved markets
type Cache struct {
	markets map[string]model.Market
}

// New builds a cache from markets, keeping the first occurrence of each ID
func New(markets []model.Market) *Cache {
	c := &Cache{markets: make(map[string]model.Market, len(markets))}
	for _, m := range markets {
		if _, dup := c.markets[m.ID]; !dup {
			c.markets[m.ID] = m
		}
	}
	return c
}

// Lookup returns the market with the given condition ID
func (c *Cache) Lookup(id string) (model.Market, bool) {
	m, ok := c.markets[id]
	return m, ok
}

// Len returns the number of cached markets
func (c *Cache) Len() int {
	return len(c.markets)
}

// Loader fetches market pages concurrently
type Loader struct {
	source      Source
	log         *logrus.Logger
	pageSize    int
	concurrency int
	retry       retry.Policy
}

// NewLoader creates a loader using the paging and retry settings from cfg
func NewLoader(source Source, cfg *config.Config, log *logrus.Logger) *Loader {
	return &Loader{
		source:      source,
		log:         log,
		pageSize:    cfg.MarketPageSize,
		concurrency: cfg.MaxConcurrency,
		retry: retry.Policy{
			Attempts: cfg.RetryAttempts,
			Timeout:  cfg.RequestTimeout(),
			Op:       "market_page",
		},
	}
}

type pageResult struct {
	offset int
	page   model.MarketPage
	err    error
}

// Load fetches up to maxMarkets resolved markets. Pages are requested in
// batches of the configured concurrency and assembled in offset order; the
// load ends at the first page the upstream marks done or once maxMarkets are
// collected. A page that fails every attempt is skipped.
func (l *Loader) Load(ctx context.Context, maxMarkets int) (*Cache, error) {
	start := time.Now()
	var (
		collected   []model.Market
		seen        = make(map[string]struct{})
		failedPages int
		done        bool
	)

	for offset := 0; !done && offset < maxMarkets && len(seen) < maxMarkets; {
		var offsets []int
		for i := 0; i < l.concurrency && offset < maxMarkets; i++ {
			offsets = append(offsets, offset)
			offset += l.pageSize
		}

		results := l.fetchBatch(ctx, offsets)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("load markets: %w", err)
		}

		for _, r := range results {
			if r.err != nil {
				failedPages++
				l.log.WithError(r.err).WithField("offset", r.offset).Warn("Skipping market page after retries")
				continue
			}
			for _, m := range r.page.Markets {
				if _, dup := seen[m.ID]; dup || len(seen) >= maxMarkets {
					continue
				}
				seen[m.ID] = struct{}{}
				collected = append(collected, m)
			}
			if r.page.Done {
				done = true
				break
			}
		}

		l.log.WithFields(logrus.Fields{
			"markets":      len(collected),
			"next_offset":  offset,
			"failed_pages": failedPages,
		}).Debug("Market batch loaded")
	}

	metrics.RecordMarketCache(len(collected), failedPages)

	if len(collected) == 0 {
		return nil, model.ErrNoMarkets
	}

	l.log.WithFields(logrus.Fields{
		"markets":      len(collected),
		"failed_pages": failedPages,
		"duration":     time.Since(start).String(),
	}).Info("Market cache loaded")

	return New(collected), nil
}

// fetchBatch requests every offset concurrently and returns results in
// offset order
func (l *Loader) fetchBatch(ctx context.Context, offsets []int) []pageResult {
	results := make([]pageResult, len(offsets))

	var g errgroup.Group
	g.SetLimit(l.concurrency)
	for i, offset := range offsets {
		g.Go(func() error {
			var page model.MarketPage
			err := l.retry.Do(ctx, func(ctx context.Context) error {
				var err error
				page, err = l.source.ResolvedMarkets(ctx, offset, l.pageSize)
				return err
			})
			results[i] = pageResult{offset: offset, page: page, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
