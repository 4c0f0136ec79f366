package alerts

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/liamashdown/walletscan/internal/metrics"
)

// SMTPSender sends alerts via email
type SMTPSender struct {
	host     string
	port     int
	user     string
	password string
	from     string
	to       []string
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates a new SMTP sender
func NewSMTPSender(host string, port int, user, password, from string, to []string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
		to:       to,
		sendMail: smtp.SendMail,
	}
}

// SendWallet emails the wallet report
func (s *SMTPSender) SendWallet(ctx context.Context, alert *WalletAlert) error {
	perf := alert.Report.Performance
	subject := fmt.Sprintf("[%s] Profitable wallet %s: ROI %.1f%%, win rate %.1f%%",
		alert.Severity, alert.WalletShort, perf.ROI, perf.WinRate)
	return s.deliver(subject, s.walletBody(alert))
}

// SendSummary emails the end-of-run summary
func (s *SMTPSender) SendSummary(ctx context.Context, summary *ScanSummary) error {
	subject := fmt.Sprintf("Wallet scan summary: %d profitable of %d analyzed",
		summary.ProfitableFound, summary.WalletsAnalyzed)
	return s.deliver(subject, s.summaryBody(summary))
}

func (s *SMTPSender) deliver(subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(s.to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.password, s.host)
	}
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	err := s.sendMail(addr, auth, s.from, s.to, []byte(msg.String()))
	if err != nil {
		metrics.RecordAlert("error", "smtp")
		return fmt.Errorf("send email: %w", err)
	}
	metrics.RecordAlert("success", "smtp")
	return nil
}

func (s *SMTPSender) walletBody(alert *WalletAlert) string {
	perf := alert.Report.Performance
	var b strings.Builder

	fmt.Fprintf(&b, "WALLETSCAN ALERT - %s\n", alert.Severity)
	b.WriteString("═══════════════════════════════════════\n\n")
	b.WriteString("WALLET\n")
	b.WriteString("─────────────────────────────────────\n")
	fmt.Fprintf(&b, "Address:        %s\n", perf.Wallet)
	if perf.DisplayName != "" {
		fmt.Fprintf(&b, "Name:           %s\n", perf.DisplayName)
	}
	fmt.Fprintf(&b, "Profile:        %s\n\n", alert.ProfileURL)

	b.WriteString("PERFORMANCE\n")
	b.WriteString("─────────────────────────────────────\n")
	fmt.Fprintf(&b, "Trades:         %d in %d markets\n", perf.TotalTrades, perf.UniqueMarkets)
	fmt.Fprintf(&b, "Resolved:       %d (%d wins, %d losses)\n", perf.ResolvedPositions, perf.Wins, perf.Losses)
	fmt.Fprintf(&b, "Win Rate:       %.1f%%\n", perf.WinRate)
	fmt.Fprintf(&b, "Invested:       $%s\n", perf.TotalInvested.StringFixed(2))
	fmt.Fprintf(&b, "Payout:         $%s\n", perf.TotalPayout.StringFixed(2))
	fmt.Fprintf(&b, "Net Profit:     $%s\n", perf.NetProfit.StringFixed(2))
	fmt.Fprintf(&b, "ROI:            %.1f%%\n", perf.ROI)
	fmt.Fprintf(&b, "Avg Win:        $%s\n", perf.AvgProfitPerWin.StringFixed(2))
	fmt.Fprintf(&b, "Avg Loss:       $%s\n\n", perf.AvgLossPerLoss.StringFixed(2))

	if len(alert.Report.Flags) > 0 {
		b.WriteString("RED FLAGS\n")
		b.WriteString("─────────────────────────────────────\n")
		for _, f := range alert.Report.Flags {
			fmt.Fprintf(&b, "• %s\n", f.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("═══════════════════════════════════════\n")
	fmt.Fprintf(&b, "Scan: %s\n", alert.ScanID)
	fmt.Fprintf(&b, "Environment: %s\n", alert.Environment)
	fmt.Fprintf(&b, "Generated: %s\n", alert.Timestamp.Format(time.RFC3339))
	b.WriteString("\nNote: This system detects anomalous performance;\n")
	b.WriteString("it does NOT prove insider trading.\n")

	return b.String()
}

func (s *SMTPSender) summaryBody(summary *ScanSummary) string {
	var b strings.Builder

	b.WriteString("WALLETSCAN SUMMARY\n")
	b.WriteString("═══════════════════════════════════════\n\n")
	fmt.Fprintf(&b, "Scans completed:   %d\n", summary.ScansCompleted)
	fmt.Fprintf(&b, "Wallets analyzed:  %d\n", summary.WalletsAnalyzed)
	fmt.Fprintf(&b, "Profitable found:  %d\n\n", summary.ProfitableFound)

	for i, r := range summary.Wallets {
		perf := r.Performance
		fmt.Fprintf(&b, "%d. %s\n", i+1, perf.Wallet)
		fmt.Fprintf(&b, "   Win Rate: %.1f%% | ROI: %.1f%% | Resolved Positions: %d\n",
			perf.WinRate, perf.ROI, perf.ResolvedPositions)
		fmt.Fprintf(&b, "   Total Invested: $%s | Net Profit: $%s\n",
			perf.TotalInvested.StringFixed(2), perf.NetProfit.StringFixed(2))
		for _, f := range r.Flags {
			fmt.Fprintf(&b, "     • %s\n", f.Description)
		}
	}

	fmt.Fprintf(&b, "\nEnvironment: %s\n", summary.Environment)
	fmt.Fprintf(&b, "Generated: %s\n", summary.Timestamp.Format(time.RFC3339))
	return b.String()
}
