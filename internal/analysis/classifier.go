package analysis

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RedFlag is a named anomaly signal with a human-readable description
type RedFlag struct {
	Tag         string `json:"tag"`
	Description string `json:"description"`
}

const (
	TagWinRateExtreme   = "win_rate_extreme"
	TagWinRateHigh      = "win_rate_high"
	TagHighROICapital   = "high_roi_capital"
	TagConsistentWins   = "consistent_wins"
	TagAsymmetricPayoff = "asymmetric_payoff"
)

// MinPositionsForPatterns is the sample size below which win-rate patterns
// are not judged
const MinPositionsForPatterns = 10

var (
	capitalFloor = decimal.NewFromInt(1000)
	two          = decimal.NewFromInt(2)
)

// rule inspects a performance record and returns a flag when it fires
type rule func(perf WalletPerformance) (RedFlag, bool)

var rules = []rule{
	winRateRule,
	capitalRule,
	consistencyRule,
	asymmetryRule,
}

// Classify evaluates every rule in order and returns the flags that fired
func Classify(perf WalletPerformance) []RedFlag {
	var flags []RedFlag
	for _, r := range rules {
		if flag, ok := r(perf); ok {
			flags = append(flags, flag)
		}
	}
	return flags
}

// Tags returns the tags of flags in order
func Tags(flags []RedFlag) []string {
	tags := make([]string, len(flags))
	for i, f := range flags {
		tags[i] = f.Tag
	}
	return tags
}

func winRateRule(perf WalletPerformance) (RedFlag, bool) {
	if perf.ResolvedPositions < MinPositionsForPatterns {
		return RedFlag{}, false
	}
	switch {
	case perf.WinRate > 75:
		return RedFlag{
			Tag: TagWinRateExtreme,
			Description: fmt.Sprintf("Extremely high win rate: %.1f%% over %d resolved positions (normal is ~50-60%%)",
				perf.WinRate, perf.ResolvedPositions),
		}, true
	case perf.WinRate > 65:
		return RedFlag{
			Tag: TagWinRateHigh,
			Description: fmt.Sprintf("Suspicious win rate: %.1f%% over %d resolved positions (normal is ~50-60%%)",
				perf.WinRate, perf.ResolvedPositions),
		}, true
	}
	return RedFlag{}, false
}

func capitalRule(perf WalletPerformance) (RedFlag, bool) {
	if perf.ROI <= 50 || !perf.TotalInvested.GreaterThan(capitalFloor) {
		return RedFlag{}, false
	}
	return RedFlag{
		Tag: TagHighROICapital,
		Description: fmt.Sprintf("Very high ROI: %.1f%% with $%s invested",
			perf.ROI, perf.TotalInvested.StringFixed(2)),
	}, true
}

func consistencyRule(perf WalletPerformance) (RedFlag, bool) {
	if perf.WinRate <= 70 || perf.Wins < 15 {
		return RedFlag{}, false
	}
	return RedFlag{
		Tag: TagConsistentWins,
		Description: fmt.Sprintf("Consistent high performance: %d wins out of %d resolved positions",
			perf.Wins, perf.ResolvedPositions),
	}, true
}

func asymmetryRule(perf WalletPerformance) (RedFlag, bool) {
	if perf.AvgProfitPerWin.IsZero() || perf.AvgLossPerLoss.IsZero() {
		return RedFlag{}, false
	}
	if !perf.AvgProfitPerWin.GreaterThan(perf.AvgLossPerLoss.Abs().Mul(two)) {
		return RedFlag{}, false
	}
	return RedFlag{
		Tag: TagAsymmetricPayoff,
		Description: fmt.Sprintf("Asymmetric profit pattern: avg win $%s vs avg loss $%s",
			perf.AvgProfitPerWin.StringFixed(2), perf.AvgLossPerLoss.StringFixed(2)),
	}, true
}
