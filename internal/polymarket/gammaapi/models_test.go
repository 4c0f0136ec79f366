package gammaapi

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/liamashdown/walletscan/internal/model"
)

func TestStringListDecoding(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"encoded string", `"[\"0.98\", \"0.02\"]"`, []string{"0.98", "0.02"}},
		{"plain array", `["Yes","No"]`, []string{"Yes", "No"}},
		{"csv", `" 0.98 , 0.02 "`, []string{"0.98", "0.02"}},
		{"empty", `""`, nil},
		{"null", `null`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StringList
			if err := json.Unmarshal([]byte(tt.raw), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestWinner(t *testing.T) {
	tests := []struct {
		name     string
		closed   bool
		outcomes StringList
		prices   StringList
		want     model.Outcome
	}{
		{"yes wins", true, StringList{"Yes", "No"}, StringList{"1", "0"}, model.OutcomeYes},
		{"no wins", true, StringList{"Yes", "No"}, StringList{"0.0005", "0.9995"}, model.OutcomeNo},
		{"just above threshold", true, nil, StringList{"0.91", "0.09"}, model.OutcomeYes},
		{"at threshold is undecided", true, nil, StringList{"0.9", "0.1"}, model.OutcomeUnresolved},
		{"reversed labels use position", true, StringList{"No", "Yes"}, StringList{"0.99", "0.01"}, model.OutcomeYes},
		{"still open", false, StringList{"Yes", "No"}, StringList{"1", "0"}, model.OutcomeUnresolved},
		{"multi outcome", true, StringList{"A", "B", "C"}, StringList{"0.96", "0.03", "0.01"}, model.OutcomeUnresolved},
		{"unparseable price", true, nil, StringList{"invalid", "0.98"}, model.OutcomeUnresolved},
		{"split 50/50", true, nil, StringList{"0.5", "0.5"}, model.OutcomeUnresolved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Market{Closed: tt.closed, Outcomes: tt.outcomes, OutcomePrices: tt.prices}
			if got := m.Winner(); got != tt.want {
				t.Errorf("Winner() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToModelResolvedAt(t *testing.T) {
	m := Market{
		ConditionID:   "0xc1",
		Question:      "Will it rain?",
		Closed:        true,
		ClosedTime:    "2024-11-06 04:30:00+00",
		EndDate:       "2024-11-05T00:00:00Z",
		OutcomePrices: StringList{"1", "0"},
	}

	got := m.ToModel()
	want := time.Date(2024, 11, 6, 4, 30, 0, 0, time.UTC)
	if !got.ResolvedAt.Equal(want) {
		t.Errorf("ResolvedAt = %v, want %v", got.ResolvedAt, want)
	}
	if got.ID != "0xc1" || got.Resolution != model.OutcomeYes {
		t.Errorf("ToModel() = %+v", got)
	}

	m.ClosedTime = ""
	if got := m.ToModel().ResolvedAt; !got.Equal(time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("fallback ResolvedAt = %v", got)
	}
}
