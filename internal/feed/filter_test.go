package feed

import (
	"testing"
	"time"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/domain"
)

func fptr(v float64) *float64 { return &v }

func tptr(t time.Time) *time.Time { return &t }

var testNow = time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)

func TestCompileSkipsWildcards(t *testing.T) {
	f := DefaultFilterState()
	f.GradeTier = FilterAll
	f.Status = FilterAll

	if ps := Compile(f, testNow); len(ps) != 0 {
		t.Errorf("all-wildcard state compiled %d predicates (%v), want 0", len(ps), ps.Names())
	}

	// Defaults carry the quality grade tier and published status view.
	ps := Compile(DefaultFilterState(), testNow)
	names := ps.Names()
	if len(names) != 2 || names[0] != DimGrade || names[1] != DimStatus {
		t.Errorf("default state predicates = %v, want [grade status]", names)
	}
}

func TestSearchPredicate(t *testing.T) {
	idea := domain.TradeIdea{Symbol: "AAPL", Catalyst: "Earnings breakout setup"}

	tests := []struct {
		search string
		want   bool
	}{
		{"aapl", true},
		{"AAPL", true},
		{"breakout", true},
		{"EARNINGS", true},
		{"tsla", false},
		{"", true},
		{"   ", true},
	}
	for _, tt := range tests {
		f := FilterState{Search: tt.search}
		if got := Compile(f, testNow).Match(idea); got != tt.want {
			t.Errorf("search %q match = %v, want %v", tt.search, got, tt.want)
		}
	}
}

func TestDirectionPredicate(t *testing.T) {
	long := domain.TradeIdea{Direction: domain.DirectionLong, HoldingPeriod: "swing"}
	shortDay := domain.TradeIdea{Direction: domain.DirectionShort, HoldingPeriod: "day"}

	tests := []struct {
		filter string
		idea   domain.TradeIdea
		want   bool
	}{
		{domain.DirectionLong, long, true},
		{domain.DirectionShort, long, false},
		{FilterAll, long, true},
		// day_trade matches by holding period, not direction.
		{DirectionDayTrade, shortDay, true},
		{DirectionDayTrade, long, false},
		{domain.DirectionShort, shortDay, true},
	}
	for _, tt := range tests {
		f := FilterState{Direction: tt.filter}
		if got := Compile(f, testNow).Match(tt.idea); got != tt.want {
			t.Errorf("direction %q on %s/%s = %v, want %v",
				tt.filter, tt.idea.Direction, tt.idea.HoldingPeriod, got, tt.want)
		}
	}
}

func TestGradeTierMembership(t *testing.T) {
	tests := []struct {
		tier string
		band string
		want bool
	}{
		// The quality tier spans A+ through C and nothing below.
		{GradeQuality, "A+", true},
		{GradeQuality, "A", true},
		{GradeQuality, "A-", true},
		{GradeQuality, "B+", true},
		{GradeQuality, "B-", true},
		{GradeQuality, "C+", true},
		{GradeQuality, "C", true},
		{GradeQuality, "C-", false},
		{GradeQuality, "D", false},
		{GradeQuality, "F", false},
		// An ungraded idea defaults to C, which quality admits.
		{GradeQuality, "", true},
		// Letter tiers admit their variants.
		{"A", "A+", true},
		{"A", "A", true},
		{"A", "A-", true},
		{"A", "B+", false},
		{"C", "C-", true},
		// D absorbs the F bands.
		{"D", "D", true},
		{"D", "D-", true},
		{"D", "F", true},
		{"D", "C", false},
	}
	for _, tt := range tests {
		f := FilterState{GradeTier: tt.tier}
		idea := domain.TradeIdea{ProbabilityBand: tt.band}
		if got := Compile(f, testNow).Match(idea); got != tt.want {
			t.Errorf("grade tier %q band %q = %v, want %v", tt.tier, tt.band, got, tt.want)
		}
	}
}

func TestPriceTierStrictThreshold(t *testing.T) {
	tests := []struct {
		tier  string
		price float64
		want  bool
	}{
		{PriceUnder10, 9.99, true},
		{PriceUnder10, 10.00, false},
		{PriceUnder5, 4.99, true},
		{PriceUnder5, 5.00, false},
		{PriceUnder25, 24.99, true},
		{PriceUnder100, 99.99, true},
		{PriceUnder100, 100.00, false},
		{PriceOver100, 100.00, true},
		{PriceOver100, 99.99, false},
	}
	for _, tt := range tests {
		f := FilterState{PriceTier: tt.tier}
		idea := domain.TradeIdea{CurrentPrice: fptr(tt.price)}
		if got := Compile(f, testNow).Match(idea); got != tt.want {
			t.Errorf("price tier %q at %.2f = %v, want %v", tt.tier, tt.price, got, tt.want)
		}
	}
}

func TestPriceTierUsesEffectivePrice(t *testing.T) {
	f := FilterState{PriceTier: PriceUnder10}

	// currentPrice takes precedence over entryPrice.
	stale := domain.TradeIdea{EntryPrice: 50, CurrentPrice: fptr(9.5)}
	if !Compile(f, testNow).Match(stale) {
		t.Error("idea with currentPrice 9.5 should pass under10 despite entry 50")
	}

	// Without currentPrice the entry price decides.
	entryOnly := domain.TradeIdea{EntryPrice: 12}
	if Compile(f, testNow).Match(entryOnly) {
		t.Error("idea with entry 12 and no currentPrice should fail under10")
	}

	// No price at all counts as 0, which every under tier admits.
	unpriced := domain.TradeIdea{}
	if !Compile(FilterState{PriceTier: PriceUnder5}, testNow).Match(unpriced) {
		t.Error("unpriced idea should pass under5")
	}
}

func TestDateWindows(t *testing.T) {
	mk := func(ts time.Time) domain.TradeIdea {
		return domain.TradeIdea{Timestamp: ts}
	}

	tests := []struct {
		name   string
		filter FilterState
		idea   domain.TradeIdea
		want   bool
	}{
		{"today admits this morning", FilterState{DateRange: DateToday}, mk(testNow.Add(-3 * time.Hour)), true},
		{"today admits midnight exactly", FilterState{DateRange: DateToday}, mk(startOfDay(testNow)), true},
		{"today rejects yesterday evening", FilterState{DateRange: DateToday}, mk(testNow.Add(-13 * time.Hour)), false},
		{"yesterday admits yesterday noon", FilterState{DateRange: DateYesterday}, mk(testNow.Add(-24 * time.Hour)), true},
		{"yesterday rejects today", FilterState{DateRange: DateYesterday}, mk(testNow.Add(-time.Hour)), false},
		{"yesterday rejects two days ago", FilterState{DateRange: DateYesterday}, mk(testNow.Add(-49 * time.Hour)), false},
		{"3d is a rolling window", FilterState{DateRange: DateLast3D}, mk(testNow.Add(-71 * time.Hour)), true},
		{"3d rejects beyond window", FilterState{DateRange: DateLast3D}, mk(testNow.Add(-73 * time.Hour)), false},
		{"30d admits three weeks ago", FilterState{DateRange: DateLast30D}, mk(testNow.Add(-21 * 24 * time.Hour)), true},
		{"custom admits the chosen day", FilterState{DateRange: DateCustom, CustomDate: "2025-06-10"}, mk(time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)), true},
		{"custom rejects the next day", FilterState{DateRange: DateCustom, CustomDate: "2025-06-10"}, mk(time.Date(2025, 6, 11, 1, 0, 0, 0, time.UTC)), false},
		// Custom with no date chosen degrades to match-everything.
		{"custom without date fails open", FilterState{DateRange: DateCustom}, mk(testNow.Add(-1000 * time.Hour)), true},
		{"garbage custom date fails open", FilterState{DateRange: DateCustom, CustomDate: "not-a-date"}, mk(testNow.Add(-1000 * time.Hour)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compile(tt.filter, testNow).Match(tt.idea); got != tt.want {
				t.Errorf("match = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpiryHorizons(t *testing.T) {
	in := func(days int) domain.TradeIdea {
		return domain.TradeIdea{ExpiryDate: tptr(testNow.AddDate(0, 0, days))}
	}

	tests := []struct {
		name    string
		horizon string
		idea    domain.TradeIdea
		want    bool
	}{
		{"tomorrow is short", HorizonShort, in(1), true},
		{"two days is short", HorizonShort, in(2), true},
		{"three days is not short", HorizonShort, in(3), false},
		{"three days is mid", HorizonMid, in(3), true},
		{"five days is mid", HorizonMid, in(5), true},
		{"six days is not mid", HorizonMid, in(6), false},
		{"five days is this week", HorizonWeek, in(5), true},
		{"eight days is beyond this week", HorizonWeek, in(8), false},
		{"already expired matches nothing", HorizonWeek, in(-1), false},
		// No deadline means no bucket, only the wildcard.
		{"no expiry excluded from buckets", HorizonShort, domain.TradeIdea{}, false},
		{"no expiry passes wildcard", FilterAll, domain.TradeIdea{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := FilterState{Horizon: tt.horizon}
			if got := Compile(f, testNow).Match(tt.idea); got != tt.want {
				t.Errorf("horizon %q = %v, want %v", tt.horizon, got, tt.want)
			}
		})
	}

	// exitBy stands in when expiryDate is absent.
	f := FilterState{Horizon: HorizonShort}
	exitOnly := domain.TradeIdea{ExitBy: tptr(testNow.AddDate(0, 0, 1))}
	if !Compile(f, testNow).Match(exitOnly) {
		t.Error("idea with only exitBy tomorrow should match the short horizon")
	}
}

func TestStatusFilter(t *testing.T) {
	published := domain.TradeIdea{Status: domain.StatusPublished}
	draft := domain.TradeIdea{Status: domain.StatusDraft}
	legacy := domain.TradeIdea{} // no status at all

	f := FilterState{Status: domain.StatusPublished}
	if !Compile(f, testNow).Match(published) {
		t.Error("published filter should admit published idea")
	}
	if Compile(f, testNow).Match(draft) {
		t.Error("published filter should reject draft idea")
	}
	if !Compile(f, testNow).Match(legacy) {
		t.Error("published filter should admit idea with absent status")
	}

	f = FilterState{Status: domain.StatusDraft}
	if !Compile(f, testNow).Match(draft) || Compile(f, testNow).Match(legacy) {
		t.Error("draft filter should admit drafts only")
	}
}

func TestTradeTypePredicate(t *testing.T) {
	day := domain.TradeIdea{HoldingPeriod: "day"}
	swing := domain.TradeIdea{HoldingPeriod: "position"}
	odd := domain.TradeIdea{HoldingPeriod: "scalp"}

	f := FilterState{TradeType: domain.TradeTypeDay}
	if !Compile(f, testNow).Match(day) || Compile(f, testNow).Match(swing) {
		t.Error("day_trade filter should admit day holding period only")
	}

	f = FilterState{TradeType: domain.TradeTypeSwing}
	if !Compile(f, testNow).Match(swing) || Compile(f, testNow).Match(day) {
		t.Error("swing_trade filter should admit swing-family periods only")
	}
	if Compile(f, testNow).Match(odd) {
		t.Error("unmapped holding period belongs to neither trade type")
	}
}

func TestCompositeIsConjunction(t *testing.T) {
	idea := domain.TradeIdea{
		Symbol:    "PLTR",
		AssetType: domain.AssetStock,
		Direction: domain.DirectionLong,
		Source:    domain.SourceAI,
		Timestamp: testNow.Add(-time.Hour),
	}

	f := FilterState{
		Search:    "pltr",
		AssetType: domain.AssetStock,
		Direction: domain.DirectionLong,
		Source:    domain.SourceAI,
		DateRange: DateToday,
	}
	if !Compile(f, testNow).Match(idea) {
		t.Fatal("idea satisfying every dimension should match")
	}

	// Flipping any single dimension must reject.
	f.Source = domain.SourceFlow
	if Compile(f, testNow).Match(idea) {
		t.Error("one failing dimension should reject the idea")
	}
}
