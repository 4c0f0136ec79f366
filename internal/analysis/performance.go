package analysis

import (
	"github.com/liamashdown/walletscan/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// WalletPerformance summarizes a wallet's resolved positions. WinRate and
// ROI are percentages.
type WalletPerformance struct {
	Wallet            string          `json:"wallet"`
	DisplayName       string          `json:"display_name,omitempty"`
	TotalTrades       int             `json:"total_trades"`
	UniqueMarkets     int             `json:"unique_markets"`
	ResolvedPositions int             `json:"resolved_positions"`
	Wins              int             `json:"wins"`
	Losses            int             `json:"losses"`
	WinRate           float64         `json:"win_rate"`
	TotalInvested     decimal.Decimal `json:"total_invested"`
	TotalProceeds     decimal.Decimal `json:"total_proceeds"`
	TotalPayout       decimal.Decimal `json:"total_payout"`
	NetProfit         decimal.Decimal `json:"net_profit"`
	ROI               float64         `json:"roi"`
	AvgProfitPerWin   decimal.Decimal `json:"avg_profit_per_win"`
	AvgLossPerLoss    decimal.Decimal `json:"avg_loss_per_loss"` // <= 0
}

// Summarize computes performance over the resolved positions. Trade and
// market counts cover the full history.
func Summarize(wallet string, trades []model.Trade, positions []Position) WalletPerformance {
	perf := WalletPerformance{
		Wallet:      wallet,
		TotalTrades: len(trades),
	}

	markets := make(map[string]struct{})
	for _, t := range trades {
		markets[t.MarketID] = struct{}{}
		if perf.DisplayName == "" && t.DisplayName != "" {
			perf.DisplayName = t.DisplayName
		}
	}
	perf.UniqueMarkets = len(markets)

	winSum := decimal.Zero
	lossSum := decimal.Zero
	for _, p := range positions {
		if !p.Resolved {
			continue
		}
		perf.ResolvedPositions++
		perf.TotalInvested = perf.TotalInvested.Add(p.Invested)
		perf.TotalProceeds = perf.TotalProceeds.Add(p.Proceeds)
		perf.TotalPayout = perf.TotalPayout.Add(p.Payout)

		if p.Won() {
			perf.Wins++
			winSum = winSum.Add(p.Profit)
		} else {
			perf.Losses++
			lossSum = lossSum.Add(p.Profit)
		}
	}

	perf.NetProfit = perf.TotalPayout.Add(perf.TotalProceeds).Sub(perf.TotalInvested)

	if perf.ResolvedPositions > 0 {
		perf.WinRate = float64(perf.Wins) / float64(perf.ResolvedPositions) * 100
	}
	if perf.TotalInvested.IsPositive() {
		perf.ROI = perf.NetProfit.Div(perf.TotalInvested).Mul(hundred).InexactFloat64()
	}
	if perf.Wins > 0 {
		perf.AvgProfitPerWin = winSum.Div(decimal.NewFromInt(int64(perf.Wins)))
	}
	if perf.Losses > 0 {
		perf.AvgLossPerLoss = lossSum.Div(decimal.NewFromInt(int64(perf.Losses)))
	}

	return perf
}
