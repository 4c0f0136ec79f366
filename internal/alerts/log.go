package alerts

import (
	"context"
	"math"

	"github.com/liamashdown/walletscan/internal/analysis"
	"github.com/liamashdown/walletscan/internal/metrics"
	"github.com/sirupsen/logrus"
)

// LogSender sends alerts to the logger
type LogSender struct {
	log *logrus.Logger
}

// NewLogSender creates a new log sender
func NewLogSender(log *logrus.Logger) *LogSender {
	return &LogSender{log: log}
}

// SendWallet logs the accepted wallet with its red flags
func (s *LogSender) SendWallet(ctx context.Context, alert *WalletAlert) error {
	perf := alert.Report.Performance
	s.log.WithFields(logrus.Fields{
		"severity":       alert.Severity,
		"scan_id":        alert.ScanID,
		"wallet":         perf.Wallet,
		"name":           perf.DisplayName,
		"resolved":       perf.ResolvedPositions,
		"win_rate":       round1(perf.WinRate),
		"roi":            round1(perf.ROI),
		"total_invested": perf.TotalInvested.StringFixed(2),
		"net_profit":     perf.NetProfit.StringFixed(2),
		"red_flags":      analysis.Tags(alert.Report.Flags),
	}).Info("Profitable wallet found")

	for _, flag := range alert.Report.Flags {
		s.log.WithFields(logrus.Fields{
			"wallet": alert.WalletShort,
			"tag":    flag.Tag,
		}).Info(flag.Description)
	}

	metrics.RecordAlert("success", "log")
	return nil
}

// SendSummary logs run totals and the accumulated wallets in order
func (s *LogSender) SendSummary(ctx context.Context, summary *ScanSummary) error {
	s.log.WithFields(logrus.Fields{
		"scans_completed":  summary.ScansCompleted,
		"wallets_analyzed": summary.WalletsAnalyzed,
		"profitable_found": summary.ProfitableFound,
	}).Info("Scan summary")

	for i, r := range summary.Wallets {
		s.log.WithFields(logrus.Fields{
			"rank":       i + 1,
			"wallet":     r.Performance.Wallet,
			"roi":        round1(r.Performance.ROI),
			"win_rate":   round1(r.Performance.WinRate),
			"net_profit": r.Performance.NetProfit.StringFixed(2),
			"red_flags":  len(r.Flags),
		}).Info("Accumulated wallet")
	}

	metrics.RecordAlert("success", "log")
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
