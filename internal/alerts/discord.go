package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/liamashdown/walletscan/internal/metrics"
)

// DiscordSender sends alerts to Discord via webhook
type DiscordSender struct {
	webhookURL string
	httpClient *http.Client
}

// NewDiscordSender creates a new Discord sender
func NewDiscordSender(webhookURL string) *DiscordSender {
	return &DiscordSender{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SendWallet posts an embed describing the wallet
func (s *DiscordSender) SendWallet(ctx context.Context, alert *WalletAlert) error {
	return s.post(ctx, s.walletEmbed(alert))
}

// SendSummary posts an embed with run totals and the top wallets
func (s *DiscordSender) SendSummary(ctx context.Context, summary *ScanSummary) error {
	return s.post(ctx, s.summaryEmbed(summary))
}

func (s *DiscordSender) post(ctx context.Context, embed map[string]interface{}) error {
	err := s.send(ctx, embed)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordAlert(status, "discord")
	return err
}

func (s *DiscordSender) send(ctx context.Context, embed map[string]interface{}) error {
	body, err := json.Marshal(map[string]interface{}{
		"embeds": []interface{}{embed},
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (s *DiscordSender) walletEmbed(alert *WalletAlert) map[string]interface{} {
	var title string
	var color int
	switch alert.Severity {
	case SeverityAlert:
		title = "🚨 Anomalous wallet performance (ALERT)"
		color = 0xFF0000 // Red
	case SeverityWarn:
		title = "⚠️ Suspicious wallet performance (WARN)"
		color = 0xFFA500 // Orange
	default:
		title = "ℹ️ Profitable wallet found"
		color = 0x0099FF // Blue
	}

	perf := alert.Report.Performance
	name := alert.WalletShort
	if perf.DisplayName != "" {
		name = fmt.Sprintf("%s (%s)", perf.DisplayName, alert.WalletShort)
	}

	description := fmt.Sprintf("**%s** won **%d/%d** resolved positions (%.1f%%)\nROI **%.1f%%** on **$%s** invested",
		name, perf.Wins, perf.ResolvedPositions, perf.WinRate, perf.ROI, perf.TotalInvested.StringFixed(2))

	fields := []map[string]interface{}{
		{"name": "Wallet", "value": fmt.Sprintf("`%s`", alert.WalletShort), "inline": true},
		{"name": "Net Profit", "value": "$" + perf.NetProfit.StringFixed(2), "inline": true},
		{"name": "Payout", "value": "$" + perf.TotalPayout.StringFixed(2), "inline": true},
		{"name": "Trades", "value": fmt.Sprintf("%d in %d markets", perf.TotalTrades, perf.UniqueMarkets), "inline": true},
		{"name": "Avg Win", "value": "$" + perf.AvgProfitPerWin.StringFixed(2), "inline": true},
		{"name": "Avg Loss", "value": "$" + perf.AvgLossPerLoss.StringFixed(2), "inline": true},
	}

	if len(alert.Report.Flags) > 0 {
		var lines []string
		for _, f := range alert.Report.Flags {
			lines = append(lines, "• "+f.Description)
		}
		fields = append(fields, map[string]interface{}{
			"name":   "🚩 Red Flags",
			"value":  truncate(strings.Join(lines, "\n"), 1000),
			"inline": false,
		})
	}

	return map[string]interface{}{
		"title":       title,
		"url":         alert.ProfileURL,
		"description": description,
		"color":       color,
		"fields":      fields,
		"footer":      footer(alert.Environment, alert.Timestamp),
		"timestamp":   alert.Timestamp.Format(time.RFC3339),
	}
}

func (s *DiscordSender) summaryEmbed(summary *ScanSummary) map[string]interface{} {
	var lines []string
	for i, r := range summary.Wallets {
		if i == 10 {
			lines = append(lines, fmt.Sprintf("…and %d more", len(summary.Wallets)-10))
			break
		}
		perf := r.Performance
		lines = append(lines, fmt.Sprintf("%d. `%s` ROI %.1f%% • win %.1f%% • $%s",
			i+1, shortenAddress(perf.Wallet), perf.ROI, perf.WinRate, perf.NetProfit.StringFixed(2)))
	}
	if len(lines) == 0 {
		lines = append(lines, "No profitable wallets found")
	}

	return map[string]interface{}{
		"title": "📋 Wallet scan summary",
		"description": fmt.Sprintf("%d scans • %d wallets analyzed • %d profitable",
			summary.ScansCompleted, summary.WalletsAnalyzed, summary.ProfitableFound),
		"color": 0x00AA55,
		"fields": []map[string]interface{}{
			{"name": "Top wallets by ROI", "value": truncate(strings.Join(lines, "\n"), 1000), "inline": false},
		},
		"footer":    footer(summary.Environment, summary.Timestamp),
		"timestamp": summary.Timestamp.Format(time.RFC3339),
	}
}

func footer(environment string, ts time.Time) map[string]interface{} {
	return map[string]interface{}{
		"text": fmt.Sprintf("Wallet Scan • %s • %s", environment, ts.UTC().Format("2006-01-02 15:04:05 UTC")),
	}
}
