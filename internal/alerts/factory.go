package alerts

import (
	"strings"

	"github.com/liamashdown/walletscan/internal/config"
	"github.com/sirupsen/logrus"
)

// FromConfig builds the sender for the comma-separated ALERT_MODE list.
// Unknown or unconfigured modes are skipped; with nothing left it falls back
// to logging.
func FromConfig(cfg *config.Config, log *logrus.Logger) Sender {
	var senders []Sender

	for _, mode := range strings.Split(cfg.AlertMode, ",") {
		switch strings.TrimSpace(mode) {
		case "log":
			senders = append(senders, NewLogSender(log))
		case "discord":
			if len(cfg.DiscordWebhookURLs) == 0 {
				log.Warn("Discord mode specified but DISCORD_WEBHOOK_URLS not set")
				continue
			}
			for _, url := range cfg.DiscordWebhookURLs {
				senders = append(senders, NewDiscordSender(url))
			}
		case "smtp":
			if cfg.SMTPHost == "" {
				log.Warn("SMTP mode specified but SMTP_HOST not set")
				continue
			}
			senders = append(senders, NewSMTPSender(
				cfg.SMTPHost,
				cfg.SMTPPort,
				cfg.SMTPUser,
				cfg.SMTPPassword,
				cfg.SMTPFrom,
				cfg.SMTPTo,
			))
		default:
			log.WithField("mode", mode).Warn("Unknown alert mode, skipping")
		}
	}

	switch len(senders) {
	case 0:
		log.Warn("No valid alert senders configured, using log")
		return NewLogSender(log)
	case 1:
		return senders[0]
	default:
		return NewMultiSender(senders...)
	}
}
