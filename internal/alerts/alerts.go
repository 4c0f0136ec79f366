package alerts

import (
	"context"
	"time"

	"github.com/liamashdown/walletscan/internal/analysis"
)

// Severity represents alert severity
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityAlert Severity = "ALERT"
)

// SeverityFor grades a report: no flags is INFO, a single flag other than
// the extreme win rate is WARN, anything more is ALERT
func SeverityFor(report analysis.Report) Severity {
	switch {
	case len(report.Flags) == 0:
		return SeverityInfo
	case len(report.Flags) == 1 && report.Flags[0].Tag != analysis.TagWinRateExtreme:
		return SeverityWarn
	default:
		return SeverityAlert
	}
}

// WalletAlert announces one newly accepted wallet
type WalletAlert struct {
	Severity    Severity
	Report      analysis.Report
	WalletShort string // Shortened for display
	ProfileURL  string
	ScanID      string
	Timestamp   time.Time
	Environment string
}

// NewWalletAlert builds the alert for an accepted report
func NewWalletAlert(report analysis.Report, scanID, environment string) *WalletAlert {
	wallet := report.Performance.Wallet
	return &WalletAlert{
		Severity:    SeverityFor(report),
		Report:      report,
		WalletShort: shortenAddress(wallet),
		ProfileURL:  "https://polymarket.com/profile/" + wallet,
		ScanID:      scanID,
		Timestamp:   time.Now().UTC(),
		Environment: environment,
	}
}

// ScanSummary is sent once when discovery stops
type ScanSummary struct {
	ScansCompleted  int
	WalletsAnalyzed int
	ProfitableFound int
	Wallets         []analysis.Report // ROI descending
	Timestamp       time.Time
	Environment     string
}

// Sender defines the interface for alert senders
type Sender interface {
	SendWallet(ctx context.Context, alert *WalletAlert) error
	SendSummary(ctx context.Context, summary *ScanSummary) error
}

func shortenAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
