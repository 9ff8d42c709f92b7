package feed

import (
	"testing"
	"time"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/domain"
)

func symbols(ideas []domain.TradeIdea) []string {
	out := make([]string, len(ideas))
	for i, idea := range ideas {
		out[i] = idea.Symbol
	}
	return out
}

func sameSymbols(got []domain.TradeIdea, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i].Symbol != want[i] {
			return false
		}
	}
	return true
}

func TestPrioritySort(t *testing.T) {
	ideas := []domain.TradeIdea{
		// B: open, posted 3h ago, outside the very-fresh window.
		{Symbol: "B", Timestamp: testNow.Add(-3 * time.Hour)},
		// A: open, posted 1h ago, very fresh.
		{Symbol: "A", Timestamp: testNow.Add(-time.Hour)},
		// C: hit_target just 1h ago; closed loses to any open idea.
		{Symbol: "C", Timestamp: testNow.Add(-time.Hour), OutcomeStatus: "hit_target"},
		// D: open, posted 10 minutes ago, the newest fresh idea.
		{Symbol: "D", Timestamp: testNow.Add(-10 * time.Minute)},
	}

	got := Rank(ideas, SortPriority, testNow)
	want := []string{"D", "A", "B", "C"}
	if !sameSymbols(got, want) {
		t.Errorf("priority order = %v, want %v", symbols(got), want)
	}
}

func TestPriorityVeryFreshBeatsPlainOpen(t *testing.T) {
	ideas := []domain.TradeIdea{
		{Symbol: "OLD", Timestamp: testNow.Add(-90 * time.Minute)},
		{Symbol: "NEW", Timestamp: testNow.Add(-30 * time.Minute)},
	}

	// Both inside the 2h window: newest first by the timestamp tie-break.
	got := Rank(ideas, SortPriority, testNow)
	if !sameSymbols(got, []string{"NEW", "OLD"}) {
		t.Errorf("order = %v, want [NEW OLD]", symbols(got))
	}

	// Push OLD outside the window: NEW still first, now by rank.
	ideas[0].Timestamp = testNow.Add(-150 * time.Minute)
	got = Rank(ideas, SortPriority, testNow)
	if !sameSymbols(got, []string{"NEW", "OLD"}) {
		t.Errorf("order after aging = %v, want [NEW OLD]", symbols(got))
	}
}

func TestPriorityOpenBeatsClosedRegardlessOfAge(t *testing.T) {
	ideas := []domain.TradeIdea{
		{Symbol: "WON", Timestamp: testNow.Add(-10 * time.Minute), OutcomeStatus: "hit_target"},
		{Symbol: "OPEN", Timestamp: testNow.Add(-6 * time.Hour)},
	}
	got := Rank(ideas, SortPriority, testNow)
	if !sameSymbols(got, []string{"OPEN", "WON"}) {
		t.Errorf("order = %v, want [OPEN WON]", symbols(got))
	}
}

func TestTimestampSort(t *testing.T) {
	ideas := []domain.TradeIdea{
		{Symbol: "MID", Timestamp: testNow.Add(-2 * time.Hour)},
		{Symbol: "NEW", Timestamp: testNow.Add(-time.Hour)},
		{Symbol: "OLD", Timestamp: testNow.Add(-3 * time.Hour)},
	}
	got := Rank(ideas, SortTimestamp, testNow)
	if !sameSymbols(got, []string{"NEW", "MID", "OLD"}) {
		t.Errorf("timestamp order = %v, want [NEW MID OLD]", symbols(got))
	}
}

func TestExpirySortFallbackChain(t *testing.T) {
	ideas := []domain.TradeIdea{
		// Falls back to timestamp: effectively "expires" last.
		{Symbol: "NONE", Timestamp: testNow.AddDate(0, 0, 9)},
		// exitBy used when expiryDate missing.
		{Symbol: "EXIT", Timestamp: testNow, ExitBy: tptr(testNow.AddDate(0, 0, 2))},
		{Symbol: "EXP", Timestamp: testNow, ExpiryDate: tptr(testNow.AddDate(0, 0, 1))},
	}
	got := Rank(ideas, SortExpiry, testNow)
	if !sameSymbols(got, []string{"EXP", "EXIT", "NONE"}) {
		t.Errorf("expiry order = %v, want [EXP EXIT NONE]", symbols(got))
	}
}

func TestConfidenceSortUsesSignalCount(t *testing.T) {
	ideas := []domain.TradeIdea{
		// High score but fewer signals must NOT win: the sort key is the
		// signal count.
		{Symbol: "SCORE", ConfidenceScore: 0.99, QualitySignals: []string{"rsi"}},
		{Symbol: "SIGNALS", ConfidenceScore: 0.40,
			QualitySignals: []string{"rsi", "macd", "volume"}},
	}
	got := Rank(ideas, SortConfidence, testNow)
	if !sameSymbols(got, []string{"SIGNALS", "SCORE"}) {
		t.Errorf("confidence order = %v, want [SIGNALS SCORE]", symbols(got))
	}
}

func TestRiskRewardSort(t *testing.T) {
	ideas := []domain.TradeIdea{
		{Symbol: "LOW", RiskRewardRatio: 1.5},
		{Symbol: "NONE"}, // missing ratio sorts as 0
		{Symbol: "HIGH", RiskRewardRatio: 3.2},
	}
	got := Rank(ideas, SortRiskReward, testNow)
	if !sameSymbols(got, []string{"HIGH", "LOW", "NONE"}) {
		t.Errorf("rr order = %v, want [HIGH LOW NONE]", symbols(got))
	}
}

func TestPriceSorts(t *testing.T) {
	ideas := []domain.TradeIdea{
		{Symbol: "MID", EntryPrice: 50},
		{Symbol: "CHEAP", EntryPrice: 2},
		{Symbol: "RICH", EntryPrice: 400},
	}

	asc := Rank(ideas, SortPriceAsc, testNow)
	if !sameSymbols(asc, []string{"CHEAP", "MID", "RICH"}) {
		t.Errorf("price_asc order = %v", symbols(asc))
	}

	desc := Rank(ideas, SortPriceDesc, testNow)
	if !sameSymbols(desc, []string{"RICH", "MID", "CHEAP"}) {
		t.Errorf("price_desc order = %v", symbols(desc))
	}
}

func TestSortStability(t *testing.T) {
	// Equal keys keep input order.
	ideas := []domain.TradeIdea{
		{Symbol: "FIRST", RiskRewardRatio: 2},
		{Symbol: "SECOND", RiskRewardRatio: 2},
		{Symbol: "THIRD", RiskRewardRatio: 2},
	}
	got := Rank(ideas, SortRiskReward, testNow)
	if !sameSymbols(got, []string{"FIRST", "SECOND", "THIRD"}) {
		t.Errorf("equal-key order not preserved: %v", symbols(got))
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	ideas := []domain.TradeIdea{
		{Symbol: "B", EntryPrice: 2},
		{Symbol: "A", EntryPrice: 1},
	}
	Rank(ideas, SortPriceAsc, testNow)
	if ideas[0].Symbol != "B" {
		t.Error("Rank mutated its input slice")
	}
}

func TestUnknownSortKeyFallsBackToPriority(t *testing.T) {
	ideas := []domain.TradeIdea{
		{Symbol: "CLOSED", Timestamp: testNow, OutcomeStatus: "expired"},
		{Symbol: "OPEN", Timestamp: testNow.Add(-time.Hour)},
	}
	got := Rank(ideas, "bogus", testNow)
	if !sameSymbols(got, []string{"OPEN", "CLOSED"}) {
		t.Errorf("fallback order = %v, want [OPEN CLOSED]", symbols(got))
	}
}
