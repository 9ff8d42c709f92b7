// Package feed implements the research-feed pipeline: predicate compilation
// over filter selections, all-but-one badge counting, multi-key ranking, the
// active/closed partition, and per-asset grouping with independent
// pagination. Build is a pure function of its inputs; Session wraps it with
// the page map and persisted preference handling the dashboard needs.
package feed

import (
	"time"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/domain"
)

// ViewModel is everything the trade-desk view renders for one recomputation:
// the partitioned idea lists, the asset groups with their page slices, and
// the badge counts. It is pure data; building one has no side effects.
type ViewModel struct {
	Filter      FilterState
	Active      []domain.TradeIdea
	Closed      []domain.TradeIdea
	Display     []domain.TradeIdea
	Groups      []Group
	Counts      map[string]map[string]int
	Matched     int
	ActiveTotal int
	ClosedTotal int
}

// Build runs the five pipeline stages over the idea collection. It never
// mutates its inputs and two calls with identical arguments produce
// value-identical view models. now anchors every time-relative filter and
// the very-fresh priority window; callers pass the wall clock.
func Build(ideas []domain.TradeIdea, f FilterState, pages PageState, now time.Time) ViewModel {
	preds := Compile(f, now)
	matched := make([]domain.TradeIdea, 0, len(ideas))
	for _, idea := range ideas {
		if preds.Match(idea) {
			matched = append(matched, idea)
		}
	}

	ranked := Rank(matched, f.Sort, now)
	active, closed := Partition(ranked)

	return ViewModel{
		Filter:      f,
		Active:      active,
		Closed:      closed,
		Display:     DisplayList(f, active, closed),
		Groups:      BuildGroups(active, ranked, f.AssetOrder, pages),
		Counts:      BadgeCounts(ideas, f, now),
		Matched:     len(ranked),
		ActiveTotal: len(active),
		ClosedTotal: len(closed),
	}
}
