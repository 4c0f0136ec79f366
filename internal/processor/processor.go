package processor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/liamashdown/walletscan/internal/alerts"
	"github.com/liamashdown/walletscan/internal/analysis"
	"github.com/liamashdown/walletscan/internal/config"
	"github.com/liamashdown/walletscan/internal/marketcache"
	"github.com/liamashdown/walletscan/internal/metrics"
	"github.com/liamashdown/walletscan/internal/model"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// TradeSource lists trades from the Data API
type TradeSource interface {
	RecentTrades(ctx context.Context, limit int) ([]model.Trade, error)
	WalletTrades(ctx context.Context, address string) ([]model.Trade, error)
}

// MarketLoader builds the resolved market cache
type MarketLoader interface {
	Load(ctx context.Context, maxMarkets int) (*marketcache.Cache, error)
}

// Processor runs wallet analysis and the discovery loop
type Processor struct {
	cfg         *config.Config
	trades      TradeSource
	loader      MarketLoader
	alertSender alerts.Sender
	thresholds  analysis.Thresholds
	state       *ScanState
	log         *logrus.Logger

	cacheMu sync.Mutex
	cache   *marketcache.Cache
}

// New creates a new processor
func New(
	cfg *config.Config,
	trades TradeSource,
	loader MarketLoader,
	alertSender alerts.Sender,
	log *logrus.Logger,
) *Processor {
	return &Processor{
		cfg:         cfg,
		trades:      trades,
		loader:      loader,
		alertSender: alertSender,
		thresholds:  analysis.ThresholdsFromConfig(cfg),
		state:       NewScanState(),
		log:         log,
	}
}

// State exposes the live scan state
func (p *Processor) State() *ScanState {
	return p.state
}

// Markets returns the session's market cache, loading it on first use. A
// failed load is not remembered so a later call can try again.
func (p *Processor) Markets(ctx context.Context) (*marketcache.Cache, error) {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()

	if p.cache != nil {
		return p.cache, nil
	}

	cache, err := p.loader.Load(ctx, p.cfg.MaxMarkets)
	if err != nil {
		return nil, fmt.Errorf("load market cache: %w", err)
	}
	p.cache = cache
	return cache, nil
}

// AnalyzeWallet runs the full pipeline for one address. The report is
// returned alongside ErrInsufficientData when the wallet has no resolved
// positions.
func (p *Processor) AnalyzeWallet(ctx context.Context, address string) (analysis.Report, error) {
	wallet, err := normalizeWallet(address)
	if err != nil {
		return analysis.Report{}, err
	}

	cache, err := p.Markets(ctx)
	if err != nil {
		return analysis.Report{}, err
	}

	trades, err := p.trades.WalletTrades(ctx, wallet)
	if err != nil {
		return analysis.Report{}, fmt.Errorf("fetch wallet trades: %w", err)
	}

	report := analysis.Analyze(wallet, trades, cache)
	p.log.WithFields(logrus.Fields{
		"wallet":   wallet,
		"trades":   len(trades),
		"resolved": report.Performance.ResolvedPositions,
		"flags":    len(report.Flags),
	}).Info("Wallet analyzed")

	if report.Performance.ResolvedPositions == 0 {
		return report, fmt.Errorf("%w: %s has no resolved positions in the last %d markets",
			model.ErrInsufficientData, wallet, cache.Len())
	}
	return report, nil
}

// Accept applies the configured profitability gate
func (p *Processor) Accept(report analysis.Report) bool {
	return p.thresholds.Accept(report.Performance)
}

// DiscoverOptions controls one discovery run
type DiscoverOptions struct {
	SampleSize int
	MaxWallets int
	Continuous bool
}

// OptionsFromConfig returns discovery options from configuration
func OptionsFromConfig(cfg *config.Config) DiscoverOptions {
	return DiscoverOptions{
		SampleSize: cfg.SampleSize,
		MaxWallets: cfg.MaxWallets,
		Continuous: cfg.Continuous,
	}
}

// Discover samples active wallets and reports the profitable ones. In
// continuous mode it repeats until ctx is cancelled; cancellation is checked
// between iterations and the iteration in flight always runs to completion.
// Only a failed market cache load ends the run with an error.
func (p *Processor) Discover(ctx context.Context, opts DiscoverOptions) (Snapshot, error) {
	if opts.SampleSize <= 0 || opts.MaxWallets <= 0 {
		return Snapshot{}, fmt.Errorf("sample size and max wallets must be positive (got %d, %d)",
			opts.SampleSize, opts.MaxWallets)
	}

	cache, err := p.Markets(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	p.log.WithFields(logrus.Fields{
		"markets":     cache.Len(),
		"sample_size": opts.SampleSize,
		"max_wallets": opts.MaxWallets,
		"continuous":  opts.Continuous,
	}).Info("Starting wallet discovery")

	// work started before a stop signal is allowed to finish
	workCtx := context.WithoutCancel(ctx)

	for {
		if ctx.Err() != nil {
			p.log.Info("Stop requested, ending discovery")
			break
		}

		p.scanOnce(workCtx, cache, opts)

		if !opts.Continuous {
			break
		}
		if !p.pause(ctx) {
			p.log.Info("Stop requested, ending discovery")
			break
		}
	}

	snap := p.state.Snapshot()
	summary := &alerts.ScanSummary{
		ScansCompleted:  snap.ScansCompleted,
		WalletsAnalyzed: snap.WalletsAnalyzed,
		ProfitableFound: snap.ProfitableFound,
		Wallets:         snap.Wallets,
		Timestamp:       time.Now().UTC(),
		Environment:     p.cfg.Environment,
	}
	if err := p.alertSender.SendSummary(workCtx, summary); err != nil {
		p.log.WithError(err).Warn("Failed to send scan summary")
	}

	return snap, nil
}

// pause waits out the configured iteration delay. It returns false if ctx is
// done first.
func (p *Processor) pause(ctx context.Context) bool {
	delay := p.cfg.IterationDelay()
	if delay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// scanOnce runs one SAMPLING -> ANALYZING pass and merges its outcomes
func (p *Processor) scanOnce(ctx context.Context, cache *marketcache.Cache, opts DiscoverOptions) {
	start := time.Now()
	scanID := uuid.NewString()
	log := p.log.WithField("scan_id", scanID)

	var exclude map[string]struct{}
	if opts.Continuous {
		exclude = p.state.Analyzed()
	}

	var candidates []string
	sample, err := p.trades.RecentTrades(ctx, opts.SampleSize)
	if err != nil {
		log.WithError(err).Warn("Failed to sample recent trades, iteration yields no candidates")
	} else {
		candidates = selectCandidates(sample, exclude, opts.MaxWallets)
	}

	log.WithFields(logrus.Fields{
		"sampled_trades": len(sample),
		"candidates":     len(candidates),
		"excluded":       len(exclude),
	}).Info("Sampled candidate wallets")

	outcomes := p.analyzeAll(ctx, cache, candidates)
	accepted := p.state.Merge(scanID, outcomes)

	for _, report := range accepted {
		alert := alerts.NewWalletAlert(report, scanID, p.cfg.Environment)
		if err := p.alertSender.SendWallet(ctx, alert); err != nil {
			log.WithError(err).WithField("wallet", report.Performance.Wallet).Warn("Failed to send wallet alert")
		}
	}

	duration := time.Since(start)
	metrics.RecordScan(duration)

	snap := p.state.Counters()
	log.WithFields(logrus.Fields{
		"analyzed":         len(outcomes),
		"accepted":         len(accepted),
		"scans_completed":  snap.ScansCompleted,
		"wallets_analyzed": snap.WalletsAnalyzed,
		"profitable_found": snap.ProfitableFound,
		"duration":         duration.String(),
	}).Info("Scan iteration complete")
}

// analyzeAll analyzes candidates concurrently. Workers only send outcomes;
// the calling goroutine is the single collector.
func (p *Processor) analyzeAll(ctx context.Context, cache *marketcache.Cache, candidates []string) []walletOutcome {
	results := make(chan walletOutcome, len(candidates))

	var g errgroup.Group
	g.SetLimit(p.cfg.MaxConcurrency)
	go func() {
		for _, wallet := range candidates {
			g.Go(func() error {
				results <- p.analyzeCandidate(ctx, cache, wallet)
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	outcomes := make([]walletOutcome, 0, len(candidates))
	for o := range results {
		outcomes = append(outcomes, o)
	}
	return outcomes
}

func (p *Processor) analyzeCandidate(ctx context.Context, cache *marketcache.Cache, wallet string) walletOutcome {
	log := p.log.WithField("wallet", wallet)

	trades, err := p.trades.WalletTrades(ctx, wallet)
	if err != nil {
		log.WithError(err).Warn("Skipping wallet after failed trade fetch")
		metrics.RecordWallet("failed", nil)
		return walletOutcome{wallet: wallet, err: err}
	}

	report := analysis.Analyze(wallet, trades, cache)
	accepted := p.thresholds.Accept(report.Performance)

	if accepted {
		metrics.RecordWallet("accepted", analysis.Tags(report.Flags))
	} else {
		metrics.RecordWallet("rejected", nil)
	}

	log.WithFields(logrus.Fields{
		"trades":   len(trades),
		"resolved": report.Performance.ResolvedPositions,
		"win_rate": report.Performance.WinRate,
		"roi":      report.Performance.ROI,
		"accepted": accepted,
	}).Debug("Wallet verdict")

	return walletOutcome{wallet: wallet, report: report, accepted: accepted}
}

// normalizeWallet validates a hex address and returns its lowercase 0x form
func normalizeWallet(address string) (string, error) {
	trimmed := strings.TrimSpace(address)
	if !common.IsHexAddress(trimmed) {
		return "", fmt.Errorf("%w: %q", model.ErrInvalidAddress, address)
	}
	return strings.ToLower(common.HexToAddress(trimmed).Hex()), nil
}
