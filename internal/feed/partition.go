package feed

import (
	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/domain"
)

// Partition splits a ranked collection into its active and closed subsets by
// normalized outcome. Open ideas (empty outcome included) are active;
// hit_target, hit_stop and expired are closed. A literal "closed" outcome,
// or any other stray value, lands in neither subset and is dropped from the
// dual-section view.
func Partition(ideas []domain.TradeIdea) (active, closed []domain.TradeIdea) {
	for _, idea := range ideas {
		switch idea.Outcome() {
		case domain.OutcomeOpen:
			active = append(active, idea)
		case domain.OutcomeHitTarget, domain.OutcomeHitStop, domain.OutcomeExpired:
			closed = append(closed, idea)
		}
	}
	return active, closed
}

// DisplayList assembles the single-list view. It normally shows active
// ideas only; the display view with the today date range appends the closed
// subset after the active one so the user can audit same-day bot activity
// in one list.
func DisplayList(f FilterState, active, closed []domain.TradeIdea) []domain.TradeIdea {
	if f.View == ViewDisplay && f.DateRange == DateToday {
		out := make([]domain.TradeIdea, 0, len(active)+len(closed))
		out = append(out, active...)
		out = append(out, closed...)
		return out
	}
	out := make([]domain.TradeIdea, len(active))
	copy(out, active)
	return out
}
