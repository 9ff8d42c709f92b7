package feed

import (
	"testing"
	"time"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/domain"
)

// countFixture builds a varied collection exercising every badge dimension.
func countFixture() []domain.TradeIdea {
	return []domain.TradeIdea{
		{ID: "1", Symbol: "AAPL", AssetType: domain.AssetStock, Direction: domain.DirectionLong,
			Source: domain.SourceAI, ProbabilityBand: "A", HoldingPeriod: "swing",
			CurrentPrice: fptr(182.5), Timestamp: testNow.Add(-time.Hour)},
		{ID: "2", Symbol: "TSLA", AssetType: domain.AssetStock, Direction: domain.DirectionShort,
			Source: domain.SourceQuant, ProbabilityBand: "B+", HoldingPeriod: "day",
			CurrentPrice: fptr(244.0), Timestamp: testNow.Add(-3 * time.Hour)},
		{ID: "3", Symbol: "SNDL", AssetType: domain.AssetPennyStock, Direction: domain.DirectionLong,
			Source: domain.SourceFlow, ProbabilityBand: "C", HoldingPeriod: "day",
			CurrentPrice: fptr(1.85), Timestamp: testNow.Add(-30 * time.Minute)},
		{ID: "4", Symbol: "BTC", AssetType: domain.AssetCrypto, Direction: domain.DirectionLong,
			Source: domain.SourceAI, ProbabilityBand: "A-", HoldingPeriod: "position",
			CurrentPrice: fptr(64250.0), Timestamp: testNow.Add(-26 * time.Hour)},
		{ID: "5", Symbol: "SPY", AssetType: domain.AssetOption, Direction: domain.DirectionShort,
			Source: domain.SourceChartAnalysis, ProbabilityBand: "D", HoldingPeriod: "day",
			CurrentPrice: fptr(4.2), Timestamp: testNow.Add(-2 * 24 * time.Hour),
			OutcomeStatus: "hit_stop"},
		{ID: "6", Symbol: "NVDA", AssetType: domain.AssetStock, Direction: domain.DirectionLong,
			Source: domain.SourceHybrid, ProbabilityBand: "B", HoldingPeriod: "swing",
			CurrentPrice: fptr(94.0), Timestamp: testNow.Add(-5 * 24 * time.Hour),
			OutcomeStatus: "hit_target"},
		{ID: "7", Symbol: "DOGE", AssetType: domain.AssetCrypto, Direction: domain.DirectionLong,
			Source: domain.SourceNews, ProbabilityBand: "F", HoldingPeriod: "week-ending",
			CurrentPrice: fptr(0.12), Timestamp: testNow.Add(-8 * 24 * time.Hour),
			OutcomeStatus: "expired"},
		{ID: "8", Symbol: "GME", AssetType: domain.AssetPennyStock, Direction: domain.DirectionShort,
			Source: domain.SourceManual, HoldingPeriod: "day",
			Timestamp: testNow.Add(-90 * time.Minute), Status: domain.StatusDraft},
	}
}

// forceDimension returns the filter state with one dimension's selection
// replaced, mirroring what clicking a badge does.
func forceDimension(f FilterState, dim, value string) FilterState {
	switch dim {
	case DimSearch:
		f.Search = value
	case DimDirection:
		f.Direction = value
	case DimSource:
		f.Source = value
	case DimAsset:
		f.AssetType = value
	case DimGrade:
		f.GradeTier = value
	case DimTradeType:
		f.TradeType = value
	case DimPrice:
		f.PriceTier = value
	case DimDate:
		f.DateRange = value
	case DimHorizon:
		f.Horizon = value
	case DimStatus:
		f.Status = value
	}
	return f
}

// Counts must equal a brute-force re-filter with the dimension forced to
// the counted value and every other selection retained.
func TestCountsMatchBruteForce(t *testing.T) {
	ideas := countFixture()

	states := []FilterState{
		DefaultFilterState(),
		{Direction: domain.DirectionLong, Source: FilterAll, AssetType: FilterAll,
			GradeTier: GradeQuality, Status: domain.StatusPublished},
		{Search: "a", AssetType: domain.AssetStock, PriceTier: PriceUnder100,
			Status: FilterAll, DateRange: DateLast7D},
	}

	for _, f := range states {
		for dim, values := range badgeValues {
			for _, v := range values {
				got := CountFor(ideas, f, testNow, dim, v)

				forced := Compile(forceDimension(f, dim, v), testNow)
				want := 0
				for _, idea := range ideas {
					if forced.Match(idea) {
						want++
					}
				}

				if got != want {
					t.Errorf("CountFor(%s=%s) = %d, brute force = %d (filter %+v)",
						dim, v, got, want, f)
				}
			}
		}
	}
}

func TestBadgeCountsAgreeWithCountFor(t *testing.T) {
	ideas := countFixture()
	f := DefaultFilterState()

	counts := BadgeCounts(ideas, f, testNow)
	for dim, values := range counts {
		for v, n := range values {
			if want := CountFor(ideas, f, testNow, dim, v); n != want {
				t.Errorf("BadgeCounts[%s][%s] = %d, CountFor = %d", dim, v, n, want)
			}
		}
	}
}

// Clicking a badge with count N must surface exactly N records.
func TestBadgeClickConsistency(t *testing.T) {
	ideas := countFixture()
	f := DefaultFilterState()

	counts := BadgeCounts(ideas, f, testNow)
	n := counts[DimAsset][domain.AssetCrypto]

	clicked := forceDimension(f, DimAsset, domain.AssetCrypto)
	preds := Compile(clicked, testNow)
	visible := 0
	for _, idea := range ideas {
		if preds.Match(idea) {
			visible++
		}
	}

	if visible != n {
		t.Errorf("crypto badge shows %d but clicking surfaces %d records", n, visible)
	}
}

func TestCountsIgnoreOwnDimension(t *testing.T) {
	ideas := countFixture()

	// With the asset filter locked to stock, the asset badge counts must
	// still count crypto ideas as if the asset dimension were relaxed.
	f := DefaultFilterState()
	f.AssetType = domain.AssetStock

	counts := BadgeCounts(ideas, f, testNow)
	if counts[DimAsset][domain.AssetCrypto] == 0 {
		t.Error("asset badge counts should relax the asset filter itself")
	}
}
