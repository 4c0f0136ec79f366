package analysis

import (
	"sort"

	"github.com/liamashdown/walletscan/internal/config"
	"github.com/liamashdown/walletscan/internal/model"
	"github.com/shopspring/decimal"
)

// Report is the full analysis of one wallet
type Report struct {
	Performance WalletPerformance `json:"performance"`
	Flags       []RedFlag         `json:"flags"`
}

// Analyze reconciles, summarizes and classifies one wallet's trades
func Analyze(wallet string, trades []model.Trade, markets MarketLookup) Report {
	positions := Reconcile(trades, markets)
	perf := Summarize(wallet, trades, positions)
	return Report{
		Performance: perf,
		Flags:       Classify(perf),
	}
}

// Thresholds is the profitability gate a wallet must pass to be reported
type Thresholds struct {
	MinResolvedPositions int
	MinROIPercent        float64
	MinNetProfit         decimal.Decimal
}

// ThresholdsFromConfig reads the acceptance gate from configuration
func ThresholdsFromConfig(cfg *config.Config) Thresholds {
	return Thresholds{
		MinResolvedPositions: cfg.MinResolvedPositions,
		MinROIPercent:        cfg.MinROIPercent,
		MinNetProfit:         decimal.NewFromFloat(cfg.MinNetProfitUSD),
	}
}

// Accept reports whether perf clears every threshold. Wallets with no
// capital invested are never accepted.
func (t Thresholds) Accept(perf WalletPerformance) bool {
	return perf.ResolvedPositions >= t.MinResolvedPositions &&
		perf.TotalInvested.IsPositive() &&
		perf.ROI > t.MinROIPercent &&
		perf.NetProfit.GreaterThan(t.MinNetProfit)
}

// SortByROI orders reports by ROI descending, breaking ties by wallet address
func SortByROI(reports []Report) {
	sort.SliceStable(reports, func(i, j int) bool {
		a, b := reports[i].Performance, reports[j].Performance
		if a.ROI != b.ROI {
			return a.ROI > b.ROI
		}
		return a.Wallet < b.Wallet
	})
}
