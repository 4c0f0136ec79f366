// Package model holds the market and trade types shared by the upstream
// clients, the market cache and the wallet analysis pipeline.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of a trade
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide normalizes an upstream side string. ok is false for anything
// other than BUY or SELL.
func ParseSide(s string) (Side, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return SideBuy, true
	case "SELL":
		return SideSell, true
	}
	return "", false
}

// Outcome is a binary market outcome token, or the resolution state of a
// market. Tokens are positional: YES is the market's first outcome (index 0)
// and NO the second, whatever the upstream labels read.
type Outcome string

const (
	OutcomeYes        Outcome = "YES"
	OutcomeNo         Outcome = "NO"
	OutcomeUnresolved Outcome = ""
)

// ParseOutcome maps an outcome label to a binary outcome token
func ParseOutcome(s string) (Outcome, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YES":
		return OutcomeYes, true
	case "NO":
		return OutcomeNo, true
	}
	return OutcomeUnresolved, false
}

// OutcomeFromIndex maps a binary outcome index (0 = YES, 1 = NO)
func OutcomeFromIndex(i int) (Outcome, bool) {
	switch i {
	case 0:
		return OutcomeYes, true
	case 1:
		return OutcomeNo, true
	}
	return OutcomeUnresolved, false
}

// Market is a resolved (or closed but undecided) binary market
type Market struct {
	ID         string // condition ID
	Question   string
	Resolution Outcome
	ResolvedAt time.Time
}

// Resolved reports whether the market has an official winning outcome
func (m Market) Resolved() bool {
	return m.Resolution == OutcomeYes || m.Resolution == OutcomeNo
}

// MarketPage is one page of resolved markets, most recent first
type MarketPage struct {
	Markets []Market
	// Done is set when the upstream has no further pages
	Done bool
}

// Trade is a single fill attributed to a wallet
type Trade struct {
	Wallet      string
	MarketID    string
	Side        Side
	Outcome     Outcome
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	Timestamp   time.Time
	Title       string
	DisplayName string
}

// Notional returns quantity x price
func (t Trade) Notional() decimal.Decimal {
	return t.Quantity.Mul(t.Price)
}

// NormalizeAddress lowercases and trims a wallet address
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
