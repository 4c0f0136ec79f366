package dataapi

import (
	"time"

	"github.com/liamashdown/walletscan/internal/model"
	"github.com/shopspring/decimal"
)

// Trade represents a trade from the Data API
type Trade struct {
	ProxyWallet     string          `json:"proxyWallet"`
	Side            string          `json:"side"` // BUY, SELL
	ConditionID     string          `json:"conditionId"`
	Size            decimal.Decimal `json:"size"`
	Price           decimal.Decimal `json:"price"`
	Timestamp       int64           `json:"timestamp"` // Unix timestamp in seconds
	Outcome         string          `json:"outcome"`   // Yes, No
	OutcomeIndex    *int            `json:"outcomeIndex"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	TransactionHash string          `json:"transactionHash"`
	Name            string          `json:"name"`
	Pseudonym       string          `json:"pseudonym"`
}

// ToModel converts an API trade into the domain trade. ok is false for
// records without a wallet, market, recognizable side or binary outcome.
func (t Trade) ToModel() (model.Trade, bool) {
	if t.ProxyWallet == "" || t.ConditionID == "" {
		return model.Trade{}, false
	}

	side, ok := model.ParseSide(t.Side)
	if !ok {
		return model.Trade{}, false
	}

	var outcome model.Outcome
	if t.OutcomeIndex != nil {
		outcome, ok = model.OutcomeFromIndex(*t.OutcomeIndex)
	} else {
		outcome, ok = model.ParseOutcome(t.Outcome)
	}
	if !ok {
		return model.Trade{}, false
	}

	name := t.Name
	if name == "" {
		name = t.Pseudonym
	}

	return model.Trade{
		Wallet:      model.NormalizeAddress(t.ProxyWallet),
		MarketID:    t.ConditionID,
		Side:        side,
		Outcome:     outcome,
		Quantity:    t.Size,
		Price:       t.Price,
		Timestamp:   time.Unix(t.Timestamp, 0).UTC(),
		Title:       t.Title,
		DisplayName: name,
	}, true
}

// TradeParams holds parameters for a single /trades page
type TradeParams struct {
	Limit     int
	Offset    int
	User      string
	TakerOnly bool
}
