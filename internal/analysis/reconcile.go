// Package analysis turns a wallet's trade history into closed positions,
// performance statistics and red flags.
package analysis

import (
	"sort"

	"github.com/liamashdown/walletscan/internal/model"
	"github.com/shopspring/decimal"
)

// MarketLookup resolves a market by condition ID
type MarketLookup interface {
	Lookup(id string) (model.Market, bool)
}

// Position is a wallet's aggregate holding in one outcome token of one market
type Position struct {
	Wallet      string
	MarketID    string
	Title       string
	Outcome     model.Outcome
	NetQuantity decimal.Decimal
	Invested    decimal.Decimal // sum of BUY quantity x price
	Proceeds    decimal.Decimal // sum of SELL quantity x price
	CostBasis   decimal.Decimal // Invested - Proceeds
	Payout      decimal.Decimal
	Profit      decimal.Decimal
	Resolved    bool
}

// Won reports whether a resolved position closed in profit. Break-even is a loss.
func (p Position) Won() bool {
	return p.Resolved && p.Profit.IsPositive()
}

type positionKey struct {
	market  string
	outcome model.Outcome
}

// Reconcile groups trades by market and outcome token and settles each group
// against the market's resolution. Positions in markets that are missing from
// the lookup or not yet resolved are returned with Resolved unset and no
// payout. Positions are ordered by market ID then outcome.
func Reconcile(trades []model.Trade, markets MarketLookup) []Position {
	byKey := make(map[positionKey]*Position)

	for _, t := range trades {
		key := positionKey{market: t.MarketID, outcome: t.Outcome}
		p, ok := byKey[key]
		if !ok {
			p = &Position{
				Wallet:   t.Wallet,
				MarketID: t.MarketID,
				Title:    t.Title,
				Outcome:  t.Outcome,
			}
			byKey[key] = p
		}

		switch t.Side {
		case model.SideBuy:
			p.NetQuantity = p.NetQuantity.Add(t.Quantity)
			p.Invested = p.Invested.Add(t.Notional())
		case model.SideSell:
			p.NetQuantity = p.NetQuantity.Sub(t.Quantity)
			p.Proceeds = p.Proceeds.Add(t.Notional())
		}
	}

	positions := make([]Position, 0, len(byKey))
	for _, p := range byKey {
		p.CostBasis = p.Invested.Sub(p.Proceeds)
		settle(p, markets)
		positions = append(positions, *p)
	}

	sort.Slice(positions, func(i, j int) bool {
		if positions[i].MarketID != positions[j].MarketID {
			return positions[i].MarketID < positions[j].MarketID
		}
		return positions[i].Outcome < positions[j].Outcome
	})
	return positions
}

// settle fills payout and profit for positions in resolved markets. A
// position sold down to zero or below still settles; its profit is the
// realized trading result.
func settle(p *Position, markets MarketLookup) {
	m, ok := markets.Lookup(p.MarketID)
	if !ok || !m.Resolved() {
		return
	}

	p.Resolved = true
	if m.Question != "" {
		p.Title = m.Question
	}

	p.Payout = decimal.Zero
	if p.Outcome == m.Resolution && p.NetQuantity.IsPositive() {
		// winning tokens redeem at $1
		p.Payout = p.NetQuantity
	}
	p.Profit = p.Payout.Sub(p.CostBasis)
}
