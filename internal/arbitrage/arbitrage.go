// Package arbitrage finds open binary markets whose YES and NO prices sum to
// less than a dollar.
package arbitrage

import (
	"context"
	"fmt"
	"sort"

	"github.com/liamashdown/walletscan/internal/polymarket/gammaapi"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var one = decimal.NewFromInt(1)

// MarketSource lists every active market
type MarketSource interface {
	ActiveMarkets(ctx context.Context) ([]gammaapi.Market, error)
}

// Opportunity is a market where buying both outcomes costs under $1
type Opportunity struct {
	Question        string          `json:"question"`
	Slug            string          `json:"slug,omitempty"`
	YesPrice        decimal.Decimal `json:"yes_price"`
	NoPrice         decimal.Decimal `json:"no_price"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	ProfitPerDollar decimal.Decimal `json:"profit_per_dollar"`
	ProfitPercent   float64         `json:"profit_percent"`
	Volume          float64         `json:"volume"`
	Liquidity       float64         `json:"liquidity"`
}

// Scanner flags markets priced below Threshold
type Scanner struct {
	Threshold decimal.Decimal
	log       *logrus.Logger
}

// NewScanner creates a scanner for the given threshold
func NewScanner(threshold float64, log *logrus.Logger) *Scanner {
	return &Scanner{Threshold: decimal.NewFromFloat(threshold), log: log}
}

// Run fetches active markets and scans them
func (s *Scanner) Run(ctx context.Context, source MarketSource) ([]Opportunity, error) {
	markets, err := source.ActiveMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch active markets: %w", err)
	}

	opportunities := s.Scan(markets)
	s.log.WithFields(logrus.Fields{
		"markets":       len(markets),
		"opportunities": len(opportunities),
		"threshold":     s.Threshold.String(),
	}).Info("Arbitrage scan complete")
	return opportunities, nil
}

// Scan returns opportunities ordered by profit percent, highest first
func (s *Scanner) Scan(markets []gammaapi.Market) []Opportunity {
	var opportunities []Opportunity
	for _, m := range markets {
		if opp, ok := s.check(m); ok {
			opportunities = append(opportunities, opp)
		}
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].ProfitPercent > opportunities[j].ProfitPercent
	})
	return opportunities
}

func (s *Scanner) check(m gammaapi.Market) (Opportunity, bool) {
	yes, no, ok := m.BinaryPrices()
	if !ok {
		return Opportunity{}, false
	}

	total := yes.Add(no)
	if !total.IsPositive() || !total.LessThan(s.Threshold) {
		return Opportunity{}, false
	}

	profit := one.Sub(total)
	return Opportunity{
		Question:        m.Question,
		Slug:            m.Slug,
		YesPrice:        yes,
		NoPrice:         no,
		TotalCost:       total,
		ProfitPerDollar: profit,
		ProfitPercent:   profit.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64(),
		Volume:          m.VolumeNum,
		Liquidity:       m.LiquidityNum,
	}, true
}
