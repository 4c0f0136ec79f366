package gammaapi

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/liamashdown/walletscan/internal/model"
	"github.com/shopspring/decimal"
)

// winnerPrice is the settled price above which an outcome is taken as the winner
var winnerPrice = decimal.RequireFromString("0.9")

// Market represents a Gamma API market
type Market struct {
	ID            string     `json:"id"`
	ConditionID   string     `json:"conditionId"`
	Slug          string     `json:"slug"`
	Question      string     `json:"question"`
	EndDate       string     `json:"endDate"`
	ClosedTime    string     `json:"closedTime"`
	VolumeNum     float64    `json:"volumeNum"`
	LiquidityNum  float64    `json:"liquidityNum"`
	Active        bool       `json:"active"`
	Closed        bool       `json:"closed"`
	Outcomes      StringList `json:"outcomes"`      // e.g. "[\"Yes\", \"No\"]"
	OutcomePrices StringList `json:"outcomePrices"` // e.g. "[\"0.02\", \"0.98\"]"
}

// StringList decodes Gamma's list fields, which arrive as a JSON-encoded
// string, a plain JSON array, or occasionally a comma-separated string
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &arr); err != nil {
			return err
		}
		*l = arr
		return nil
	}

	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	*l = parts
	return nil
}

// BinaryPrices returns the YES and NO prices of a two-outcome market
func (m Market) BinaryPrices() (yes, no decimal.Decimal, ok bool) {
	if len(m.OutcomePrices) != 2 {
		return decimal.Zero, decimal.Zero, false
	}
	yes, err := decimal.NewFromString(m.OutcomePrices[0])
	if err != nil {
		return decimal.Zero, decimal.Zero, false
	}
	no, err = decimal.NewFromString(m.OutcomePrices[1])
	if err != nil {
		return decimal.Zero, decimal.Zero, false
	}
	return yes, no, true
}

// Winner returns the resolved outcome of a closed binary market, or
// OutcomeUnresolved while neither side has settled near $1
func (m Market) Winner() model.Outcome {
	if !m.Closed {
		return model.OutcomeUnresolved
	}
	yes, no, ok := m.BinaryPrices()
	if !ok {
		return model.OutcomeUnresolved
	}

	// resolution is positional like the trades' outcomeIndex; labels are
	// display text and may be listed in either order
	switch {
	case yes.GreaterThan(winnerPrice):
		return model.OutcomeYes
	case no.GreaterThan(winnerPrice):
		return model.OutcomeNo
	}
	return model.OutcomeUnresolved
}

// ToModel converts an API market into the domain market
func (m Market) ToModel() model.Market {
	return model.Market{
		ID:         m.ConditionID,
		Question:   m.Question,
		Resolution: m.Winner(),
		ResolvedAt: parseTime(m.ClosedTime, m.EndDate),
	}
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07",
	"2006-01-02 15:04:05-07",
	"2006-01-02",
}

// parseTime returns the first candidate that parses in a known layout
func parseTime(candidates ...string) time.Time {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, c); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Time{}
}
