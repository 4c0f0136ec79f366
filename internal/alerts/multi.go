package alerts

import (
	"context"
	"errors"
	"fmt"
)

// MultiSender sends alerts to multiple destinations
type MultiSender struct {
	senders []Sender
}

// NewMultiSender creates a new multi-sender
func NewMultiSender(senders ...Sender) *MultiSender {
	return &MultiSender{
		senders: senders,
	}
}

// SendWallet fans the alert out to every sender
func (s *MultiSender) SendWallet(ctx context.Context, alert *WalletAlert) error {
	return s.each(func(sender Sender) error { return sender.SendWallet(ctx, alert) })
}

// SendSummary fans the summary out to every sender
func (s *MultiSender) SendSummary(ctx context.Context, summary *ScanSummary) error {
	return s.each(func(sender Sender) error { return sender.SendSummary(ctx, summary) })
}

// each calls fn on every sender, even after a failure, and joins the errors
func (s *MultiSender) each(fn func(Sender) error) error {
	var errs []error
	for i, sender := range s.senders {
		if err := fn(sender); err != nil {
			errs = append(errs, fmt.Errorf("sender %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multi-sender: %w", errors.Join(errs...))
	}
	return nil
}
