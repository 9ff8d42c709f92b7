package feed

import (
	"sort"
	"time"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/domain"
)

// veryFreshWindow is how recently an idea must have been posted to earn the
// top priority rank while still open.
const veryFreshWindow = 2 * time.Hour

// Priority ranks, lower sorts first.
const (
	rankVeryFresh = 0
	rankOpen      = 1
	rankRest      = 2
)

// priorityRank classifies an idea for the default priority sort.
func priorityRank(i domain.TradeIdea, now time.Time) int {
	if !i.IsOpen() {
		return rankRest
	}
	if now.Sub(i.Timestamp) <= veryFreshWindow {
		return rankVeryFresh
	}
	return rankOpen
}

// expirySortKey returns the instant used by the expiry sort: the effective
// deadline when present, else the posting time.
func expirySortKey(i domain.TradeIdea) time.Time {
	if exp, ok := i.Expiry(); ok {
		return exp
	}
	return i.Timestamp
}

// Rank returns a new slice sorted by the given sort key. The input is never
// mutated. Every sort is stable, so ideas with equal keys keep their input
// order; unknown keys fall back to the priority sort.
func Rank(ideas []domain.TradeIdea, key string, now time.Time) []domain.TradeIdea {
	out := make([]domain.TradeIdea, len(ideas))
	copy(out, ideas)

	switch key {
	case SortTimestamp:
		sort.SliceStable(out, func(a, b int) bool {
			return out[a].Timestamp.After(out[b].Timestamp)
		})
	case SortExpiry:
		sort.SliceStable(out, func(a, b int) bool {
			return expirySortKey(out[a]).Before(expirySortKey(out[b]))
		})
	case SortConfidence:
		// Signal count, not confidence score. The label is historical.
		sort.SliceStable(out, func(a, b int) bool {
			return len(out[a].QualitySignals) > len(out[b].QualitySignals)
		})
	case SortRiskReward:
		sort.SliceStable(out, func(a, b int) bool {
			return out[a].RiskRewardRatio > out[b].RiskRewardRatio
		})
	case SortPriceAsc:
		sort.SliceStable(out, func(a, b int) bool {
			return out[a].EntryPrice < out[b].EntryPrice
		})
	case SortPriceDesc:
		sort.SliceStable(out, func(a, b int) bool {
			return out[a].EntryPrice > out[b].EntryPrice
		})
	default: // SortPriority
		sort.SliceStable(out, func(a, b int) bool {
			ra, rb := priorityRank(out[a], now), priorityRank(out[b], now)
			if ra != rb {
				return ra < rb
			}
			return out[a].Timestamp.After(out[b].Timestamp)
		})
	}
	return out
}
