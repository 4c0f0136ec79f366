package analysis

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/liamashdown/walletscan/internal/config"
	"github.com/liamashdown/walletscan/internal/model"
	"github.com/shopspring/decimal"
)

type mapLookup map[string]model.Market

func (m mapLookup) Lookup(id string) (model.Market, bool) {
	market, ok := m[id]
	return market, ok
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func trade(market string, side model.Side, outcome model.Outcome, qty, price string) model.Trade {
	return model.Trade{
		Wallet:   "0xwallet",
		MarketID: market,
		Side:     side,
		Outcome:  outcome,
		Quantity: dec(qty),
		Price:    dec(price),
	}
}

func TestSingleWinningBuy(t *testing.T) {
	markets := mapLookup{"M": {ID: "M", Resolution: model.OutcomeYes}}
	trades := []model.Trade{trade("M", model.SideBuy, model.OutcomeYes, "10", "0.30")}

	report := Analyze("0xwallet", trades, markets)
	perf := report.Performance

	if !perf.TotalInvested.Equal(dec("3")) {
		t.Errorf("TotalInvested = %s, want 3", perf.TotalInvested)
	}
	if !perf.TotalPayout.Equal(dec("10")) {
		t.Errorf("TotalPayout = %s, want 10", perf.TotalPayout)
	}
	if !perf.NetProfit.Equal(dec("7")) {
		t.Errorf("NetProfit = %s, want 7", perf.NetProfit)
	}
	if math.Abs(perf.ROI-233.333) > 0.01 {
		t.Errorf("ROI = %v, want ~233.3", perf.ROI)
	}
	if perf.Wins != 1 || perf.Losses != 0 {
		t.Errorf("wins/losses = %d/%d, want 1/0", perf.Wins, perf.Losses)
	}

	defaults := ThresholdsFromConfig(config.Defaults())
	if defaults.Accept(perf) {
		t.Error("accepted at the default 10 position gate")
	}

	lowered := defaults
	lowered.MinResolvedPositions = 1
	lowered.MinNetProfit = dec("5")
	if !lowered.Accept(perf) {
		t.Error("rejected with the position gate lowered to 1")
	}
}

func TestReconcile(t *testing.T) {
	markets := mapLookup{
		"yes":  {ID: "yes", Question: "Yes market?", Resolution: model.OutcomeYes},
		"no":   {ID: "no", Resolution: model.OutcomeNo},
		"open": {ID: "open", Resolution: model.OutcomeUnresolved},
	}

	tests := []struct {
		name         string
		trades       []model.Trade
		wantResolved bool
		wantNet      string
		wantCost     string
		wantPayout   string
		wantProfit   string
	}{
		{
			name: "partial sell then win",
			trades: []model.Trade{
				trade("yes", model.SideBuy, model.OutcomeYes, "100", "0.40"),
				trade("yes", model.SideSell, model.OutcomeYes, "40", "0.50"),
			},
			wantResolved: true,
			wantNet:      "60",
			wantCost:     "20",
			wantPayout:   "60",
			wantProfit:   "40",
		},
		{
			name: "losing token",
			trades: []model.Trade{
				trade("no", model.SideBuy, model.OutcomeYes, "50", "0.60"),
			},
			wantResolved: true,
			wantNet:      "50",
			wantCost:     "30",
			wantPayout:   "0",
			wantProfit:   "-30",
		},
		{
			name: "fully sold before resolution",
			trades: []model.Trade{
				trade("no", model.SideBuy, model.OutcomeYes, "10", "0.40"),
				trade("no", model.SideSell, model.OutcomeYes, "10", "0.60"),
			},
			wantResolved: true,
			wantNet:      "0",
			wantCost:     "-2",
			wantPayout:   "0",
			wantProfit:   "2",
		},
		{
			name: "net short on winning token",
			trades: []model.Trade{
				trade("yes", model.SideSell, model.OutcomeYes, "5", "0.50"),
			},
			wantResolved: true,
			wantNet:      "-5",
			wantCost:     "-2.5",
			wantPayout:   "0",
			wantProfit:   "2.5",
		},
		{
			name: "unresolved market",
			trades: []model.Trade{
				trade("open", model.SideBuy, model.OutcomeNo, "10", "0.50"),
			},
			wantResolved: false,
			wantNet:      "10",
			wantCost:     "5",
			wantPayout:   "0",
			wantProfit:   "0",
		},
		{
			name: "market outside cache window",
			trades: []model.Trade{
				trade("missing", model.SideBuy, model.OutcomeNo, "10", "0.50"),
			},
			wantResolved: false,
			wantNet:      "10",
			wantCost:     "5",
			wantPayout:   "0",
			wantProfit:   "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			positions := Reconcile(tt.trades, markets)
			if len(positions) != 1 {
				t.Fatalf("got %d positions, want 1", len(positions))
			}
			p := positions[0]

			if p.Resolved != tt.wantResolved {
				t.Errorf("Resolved = %v, want %v", p.Resolved, tt.wantResolved)
			}
			checks := []struct {
				field string
				got   decimal.Decimal
				want  string
			}{
				{"NetQuantity", p.NetQuantity, tt.wantNet},
				{"CostBasis", p.CostBasis, tt.wantCost},
				{"Payout", p.Payout, tt.wantPayout},
				{"Profit", p.Profit, tt.wantProfit},
			}
			for _, c := range checks {
				if !c.got.Equal(dec(c.want)) {
					t.Errorf("%s = %s, want %s", c.field, c.got, c.want)
				}
			}
		})
	}
}

func TestReconcileGroupsByOutcomeToken(t *testing.T) {
	markets := mapLookup{"m": {ID: "m", Question: "Q?", Resolution: model.OutcomeNo}}
	trades := []model.Trade{
		trade("m", model.SideBuy, model.OutcomeYes, "10", "0.20"),
		trade("m", model.SideBuy, model.OutcomeNo, "10", "0.70"),
		trade("m", model.SideBuy, model.OutcomeYes, "5", "0.10"),
	}

	positions := Reconcile(trades, markets)
	if len(positions) != 2 {
		t.Fatalf("got %d positions, want 2", len(positions))
	}
	// ordered by outcome: NO before YES
	if positions[0].Outcome != model.OutcomeNo || !positions[0].Profit.Equal(dec("3")) {
		t.Errorf("NO position = %+v", positions[0])
	}
	if positions[1].Outcome != model.OutcomeYes || !positions[1].Profit.Equal(dec("-2.5")) {
		t.Errorf("YES position = %+v", positions[1])
	}
	if positions[0].Title != "Q?" {
		t.Errorf("Title = %q, want market question", positions[0].Title)
	}
}

func TestSummarizeCountsOnlyResolved(t *testing.T) {
	markets := mapLookup{}
	var trades []model.Trade
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("m%d", i)
		switch i % 3 {
		case 0:
			markets[id] = model.Market{ID: id, Resolution: model.OutcomeYes}
		case 1:
			markets[id] = model.Market{ID: id, Resolution: model.OutcomeNo}
		}
		// i%3 == 2 stays out of the cache
		trades = append(trades, trade(id, model.SideBuy, model.OutcomeYes, "10", "0.50"))
	}
	trades[0].DisplayName = "Lucky"

	perf := Summarize("0xwallet", trades, Reconcile(trades, markets))

	if perf.ResolvedPositions != 8 {
		t.Fatalf("ResolvedPositions = %d, want 8", perf.ResolvedPositions)
	}
	if perf.Wins+perf.Losses != perf.ResolvedPositions {
		t.Errorf("wins %d + losses %d != resolved %d", perf.Wins, perf.Losses, perf.ResolvedPositions)
	}
	if perf.Wins != 4 || perf.WinRate != 50 {
		t.Errorf("Wins = %d, WinRate = %v", perf.Wins, perf.WinRate)
	}
	if perf.TotalTrades != 12 || perf.UniqueMarkets != 12 {
		t.Errorf("TotalTrades = %d, UniqueMarkets = %d", perf.TotalTrades, perf.UniqueMarkets)
	}
	if !perf.TotalInvested.Equal(dec("40")) {
		t.Errorf("TotalInvested = %s, want 40 (resolved only)", perf.TotalInvested)
	}
	if !perf.AvgProfitPerWin.Equal(dec("5")) || !perf.AvgLossPerLoss.Equal(dec("-5")) {
		t.Errorf("averages = %s / %s", perf.AvgProfitPerWin, perf.AvgLossPerLoss)
	}
	if perf.ROI != 0 {
		t.Errorf("ROI = %v, want 0 at break-even", perf.ROI)
	}
	if perf.DisplayName != "Lucky" {
		t.Errorf("DisplayName = %q", perf.DisplayName)
	}
}

func TestSummarizeZeroInvestedROI(t *testing.T) {
	markets := mapLookup{"m": {ID: "m", Resolution: model.OutcomeYes}}
	trades := []model.Trade{trade("m", model.SideSell, model.OutcomeNo, "100", "0.90")}

	perf := Summarize("0xwallet", trades, Reconcile(trades, markets))

	if !perf.NetProfit.Equal(dec("90")) {
		t.Fatalf("NetProfit = %s, want 90", perf.NetProfit)
	}
	if perf.ROI != 0 {
		t.Errorf("ROI = %v, want 0 with nothing invested", perf.ROI)
	}
	if ThresholdsFromConfig(config.Defaults()).Accept(perf) {
		t.Error("accepted a wallet with nothing invested")
	}
}

func TestTieIsLoss(t *testing.T) {
	markets := mapLookup{"m": {ID: "m", Resolution: model.OutcomeNo}}
	trades := []model.Trade{
		trade("m", model.SideBuy, model.OutcomeYes, "10", "0.50"),
		trade("m", model.SideSell, model.OutcomeYes, "10", "0.50"),
	}

	perf := Summarize("0xwallet", trades, Reconcile(trades, markets))
	if perf.Wins != 0 || perf.Losses != 1 {
		t.Errorf("wins/losses = %d/%d, want 0/1", perf.Wins, perf.Losses)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		perf WalletPerformance
		want []string
	}{
		{
			name: "45 resolved 37 wins",
			perf: WalletPerformance{ResolvedPositions: 45, Wins: 37, Losses: 8, WinRate: 37.0 / 45 * 100},
			want: []string{TagWinRateExtreme, TagConsistentWins},
		},
		{
			name: "suspicious band",
			perf: WalletPerformance{ResolvedPositions: 20, Wins: 14, Losses: 6, WinRate: 70},
			want: []string{TagWinRateHigh},
		},
		{
			name: "high win rate below sample floor",
			perf: WalletPerformance{ResolvedPositions: 9, Wins: 9, WinRate: 100},
			want: nil,
		},
		{
			name: "capital scale",
			perf: WalletPerformance{ResolvedPositions: 5, ROI: 80, TotalInvested: dec("1500")},
			want: []string{TagHighROICapital},
		},
		{
			name: "capital at floor",
			perf: WalletPerformance{ResolvedPositions: 5, ROI: 80, TotalInvested: dec("1000")},
			want: nil,
		},
		{
			name: "asymmetric payoff",
			perf: WalletPerformance{ResolvedPositions: 4, AvgProfitPerWin: dec("50"), AvgLossPerLoss: dec("-20")},
			want: []string{TagAsymmetricPayoff},
		},
		{
			name: "no losses means no asymmetry",
			perf: WalletPerformance{ResolvedPositions: 4, AvgProfitPerWin: dec("50")},
			want: nil,
		},
		{
			name: "exactly double is not asymmetric",
			perf: WalletPerformance{ResolvedPositions: 4, AvgProfitPerWin: dec("40"), AvgLossPerLoss: dec("-20")},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := Classify(tt.perf)
			got := Tags(flags)
			if len(got) == 0 {
				got = nil
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Classify() tags = %v, want %v", got, tt.want)
			}
			for _, f := range flags {
				if f.Description == "" {
					t.Errorf("flag %s has no description", f.Tag)
				}
			}
			if again := Classify(tt.perf); !reflect.DeepEqual(again, flags) {
				t.Errorf("Classify() not idempotent: %v then %v", flags, again)
			}
		})
	}
}

func TestClassifyMessagesCarryNumbers(t *testing.T) {
	perf := WalletPerformance{ResolvedPositions: 45, Wins: 37, WinRate: 37.0 / 45 * 100}
	flags := Classify(perf)
	if len(flags) == 0 {
		t.Fatal("no flags")
	}
	if want := "Extremely high win rate: 82.2% over 45 resolved positions (normal is ~50-60%)"; flags[0].Description != want {
		t.Errorf("Description = %q, want %q", flags[0].Description, want)
	}
}

func TestAcceptMonotonic(t *testing.T) {
	perf := WalletPerformance{
		ResolvedPositions: 12,
		TotalInvested:     dec("1000"),
		NetProfit:         dec("200"),
		ROI:               20,
	}

	rois := []float64{0, 5, 10, 19.9, 20, 30}
	profits := []string{"0", "50", "199.99", "200", "500"}

	for _, hiROI := range rois {
		for _, hiProfit := range profits {
			strict := Thresholds{MinResolvedPositions: 10, MinROIPercent: hiROI, MinNetProfit: dec(hiProfit)}
			if !strict.Accept(perf) {
				continue
			}
			for _, loROI := range rois {
				for _, loProfit := range profits {
					if loROI > hiROI || dec(loProfit).GreaterThan(dec(hiProfit)) {
						continue
					}
					loose := Thresholds{MinResolvedPositions: 10, MinROIPercent: loROI, MinNetProfit: dec(loProfit)}
					if !loose.Accept(perf) {
						t.Errorf("accepted at roi>%v profit>%s but rejected at roi>%v profit>%s",
							hiROI, hiProfit, loROI, loProfit)
					}
				}
			}
		}
	}
}

func TestSortByROI(t *testing.T) {
	reports := []Report{
		{Performance: WalletPerformance{Wallet: "0xb", ROI: 15}},
		{Performance: WalletPerformance{Wallet: "0xc", ROI: 40}},
		{Performance: WalletPerformance{Wallet: "0xa", ROI: 15}},
	}
	SortByROI(reports)

	var got []string
	for _, r := range reports {
		got = append(got, r.Performance.Wallet)
	}
	if want := []string{"0xc", "0xa", "0xb"}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}
