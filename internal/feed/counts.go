package feed

import (
	"time"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/domain"
)

// badgeValues enumerates the candidate values counted for each badge
// dimension, wildcard included.
var badgeValues = map[string][]string{
	DimSource: {
		FilterAll, domain.SourceAI, domain.SourceQuant, domain.SourceHybrid,
		domain.SourceChartAnalysis, domain.SourceFlow, domain.SourceNews,
		domain.SourceManual,
	},
	DimAsset: {
		FilterAll, domain.AssetStock, domain.AssetPennyStock,
		domain.AssetOption, domain.AssetCrypto, domain.AssetFuture,
	},
	DimGrade: {
		FilterAll, GradeQuality, "A", "B", "C", "D",
	},
	DimTradeType: {
		FilterAll, domain.TradeTypeDay, domain.TradeTypeSwing,
	},
	DimPrice: {
		FilterAll, PriceUnder5, PriceUnder10, PriceUnder25,
		PriceUnder100, PriceOver100,
	},
	DimDirection: {
		FilterAll, domain.DirectionLong, domain.DirectionShort,
		DirectionDayTrade,
	},
	DimStatus: {
		FilterAll, domain.StatusPublished, domain.StatusDraft,
	},
}

// CountFor returns how many ideas would match if the given dimension were
// forced to value while every other dimension kept its current selection.
// A badge showing this count therefore yields exactly this many records
// when clicked.
func CountFor(ideas []domain.TradeIdea, f FilterState, now time.Time, dim, value string) int {
	rest := Compile(f, now).Except(dim)
	forced, active := dimensionPredicate(dim, value, f, now)

	n := 0
	for _, idea := range ideas {
		if !rest.Match(idea) {
			continue
		}
		if active && !forced.Admit(idea) {
			continue
		}
		n++
	}
	return n
}

// BadgeCounts computes every badge count the dashboard renders: for each
// dimension, the count per candidate value with all other filters still in
// force. The compiled predicate minus the counted dimension is evaluated
// once per dimension; only the forced single-dimension predicate reruns per
// value.
func BadgeCounts(ideas []domain.TradeIdea, f FilterState, now time.Time) map[string]map[string]int {
	full := Compile(f, now)
	out := make(map[string]map[string]int, len(badgeValues))

	for dim, values := range badgeValues {
		rest := full.Except(dim)

		// Pre-apply the other dimensions once; the per-value pass then only
		// evaluates the forced predicate.
		matched := make([]domain.TradeIdea, 0, len(ideas))
		for _, idea := range ideas {
			if rest.Match(idea) {
				matched = append(matched, idea)
			}
		}

		counts := make(map[string]int, len(values))
		for _, v := range values {
			forced, active := dimensionPredicate(dim, v, f, now)
			if !active {
				counts[v] = len(matched)
				continue
			}
			n := 0
			for _, idea := range matched {
				if forced.Admit(idea) {
					n++
				}
			}
			counts[v] = n
		}
		out[dim] = counts
	}
	return out
}
