package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/liamashdown/walletscan/internal/analysis"
	"github.com/liamashdown/walletscan/internal/arbitrage"
	"github.com/liamashdown/walletscan/internal/processor"
)

var (
	heavyRule = strings.Repeat("=", 80)
	lightRule = strings.Repeat("-", 80)
)

func printReport(w io.Writer, report analysis.Report, accepted bool) {
	perf := report.Performance

	fmt.Fprintf(w, "\n%s\nWALLET PERFORMANCE REPORT\n%s\n", heavyRule, heavyRule)
	fmt.Fprintf(w, "\nWallet: %s\n", perf.Wallet)
	if perf.DisplayName != "" {
		fmt.Fprintf(w, "Name:   %s\n", perf.DisplayName)
	}

	fmt.Fprintln(w, "\n--- Trading Activity ---")
	fmt.Fprintf(w, "Total Trades:         %d\n", perf.TotalTrades)
	fmt.Fprintf(w, "Unique Markets:       %d\n", perf.UniqueMarkets)
	fmt.Fprintf(w, "Resolved Positions:   %d\n", perf.ResolvedPositions)

	fmt.Fprintln(w, "\n--- Win/Loss Record ---")
	fmt.Fprintf(w, "Wins:                 %d\n", perf.Wins)
	fmt.Fprintf(w, "Losses:               %d\n", perf.Losses)
	fmt.Fprintf(w, "Win Rate:             %.1f%%\n", perf.WinRate)

	fmt.Fprintln(w, "\n--- Financial Performance ---")
	fmt.Fprintf(w, "Total Invested:       $%s\n", perf.TotalInvested.StringFixed(2))
	fmt.Fprintf(w, "Sell Proceeds:        $%s\n", perf.TotalProceeds.StringFixed(2))
	fmt.Fprintf(w, "Total Payout:         $%s\n", perf.TotalPayout.StringFixed(2))
	fmt.Fprintf(w, "Net Profit:           $%s\n", perf.NetProfit.StringFixed(2))
	fmt.Fprintf(w, "ROI:                  %.1f%%\n", perf.ROI)
	fmt.Fprintf(w, "Avg Profit per Win:   $%s\n", perf.AvgProfitPerWin.StringFixed(2))
	fmt.Fprintf(w, "Avg Loss per Loss:    $%s\n", perf.AvgLossPerLoss.StringFixed(2))

	switch {
	case perf.ResolvedPositions < analysis.MinPositionsForPatterns:
		fmt.Fprintf(w, "\n%s\nInsufficient data for pattern analysis: %d resolved positions (need %d).\n%s\n",
			lightRule, perf.ResolvedPositions, analysis.MinPositionsForPatterns, lightRule)
	case len(report.Flags) > 0:
		fmt.Fprintf(w, "\n%s\nSUSPICIOUS ACTIVITY DETECTED\n%s\n", heavyRule, heavyRule)
		for _, f := range report.Flags {
			fmt.Fprintf(w, "• %s\n", f.Description)
		}
		fmt.Fprintln(w, "\nThis wallet shows patterns consistent with potential insider knowledge.")
		fmt.Fprintln(w, heavyRule)
	default:
		fmt.Fprintf(w, "\n%s\nNo suspicious patterns detected.\n%s\n", lightRule, lightRule)
	}

	if accepted {
		fmt.Fprintln(w, "Passes the profitability thresholds.")
	}
}

func printSummary(w io.Writer, snap processor.Snapshot) {
	fmt.Fprintf(w, "\n%s\nSCAN SUMMARY\n%s\n", heavyRule, heavyRule)
	fmt.Fprintf(w, "\nScans completed:   %d\n", snap.ScansCompleted)
	fmt.Fprintf(w, "Wallets analyzed:  %d\n", snap.WalletsAnalyzed)
	fmt.Fprintf(w, "Profitable found:  %d\n", snap.ProfitableFound)

	if len(snap.Wallets) == 0 {
		fmt.Fprintln(w, "\nNo wallets passed the profitability thresholds.")
		return
	}

	fmt.Fprintf(w, "\n%s\nPROFITABLE WALLETS (BY ROI)\n%s\n", heavyRule, heavyRule)
	for i, r := range snap.Wallets {
		perf := r.Performance
		fmt.Fprintf(w, "\n%d. %s", i+1, perf.Wallet)
		if perf.DisplayName != "" {
			fmt.Fprintf(w, " (%s)", perf.DisplayName)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "   Win Rate: %.1f%% | ROI: %.1f%% | Resolved Positions: %d\n",
			perf.WinRate, perf.ROI, perf.ResolvedPositions)
		fmt.Fprintf(w, "   Total Invested: $%s | Net Profit: $%s\n",
			perf.TotalInvested.StringFixed(2), perf.NetProfit.StringFixed(2))
		if len(r.Flags) > 0 {
			fmt.Fprintln(w, "   Red Flags:")
			for _, f := range r.Flags {
				fmt.Fprintf(w, "     • %s\n", f.Description)
			}
		}
	}
	fmt.Fprintf(w, "\n%s\n", heavyRule)
}

func printOpportunities(w io.Writer, opps []arbitrage.Opportunity, threshold float64) {
	if len(opps) == 0 {
		fmt.Fprintf(w, "No arbitrage opportunities found (threshold: total < $%.2f)\n", threshold)
		return
	}

	fmt.Fprintf(w, "Found %d arbitrage opportunities (threshold: total < $%.2f)\n", len(opps), threshold)
	for i, o := range opps {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, o.Question)
		fmt.Fprintf(w, "   YES: $%s | NO: $%s | Total: $%s\n",
			o.YesPrice.StringFixed(4), o.NoPrice.StringFixed(4), o.TotalCost.StringFixed(4))
		fmt.Fprintf(w, "   Profit: $%s per $1 (%.2f%%)\n", o.ProfitPerDollar.StringFixed(4), o.ProfitPercent)
		fmt.Fprintf(w, "   Volume: $%.2f | Liquidity: $%.2f\n", o.Volume, o.Liquidity)
		fmt.Fprintln(w, lightRule)
	}
}
