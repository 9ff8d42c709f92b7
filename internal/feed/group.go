package feed

import (
	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/domain"
)

// PageSize is the fixed number of ideas per group page.
const PageSize = 20

// maxPlainPages is the largest page count rendered without ellipses.
const maxPlainPages = 7

// PageEllipsis marks a gap in a pagination window.
const PageEllipsis = -1

// PageState maps a group label to its current 1-based page number. Absent
// labels are on page 1. The map is the only mutable state the pipeline
// owns; Reset is its single invalidate-all operation.
type PageState map[string]int

// PageFor returns the stored page for a label, defaulting to 1.
func (p PageState) PageFor(label string) int {
	if n, ok := p[label]; ok && n > 0 {
		return n
	}
	return 1
}

// Set stores a page number for a label. Non-positive pages reset to 1.
func (p PageState) Set(label string, page int) {
	if page < 1 {
		page = 1
	}
	p[label] = page
}

// Reset clears every group back to page 1.
func (p PageState) Reset() {
	clear(p)
}

// Clone returns an independent copy of the page map.
func (p PageState) Clone() PageState {
	out := make(PageState, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// GroupStats summarizes how a group's ideas have performed. Win rate counts
// decided ideas only (hit_target wins, hit_stop loses; expired is neither);
// average risk/reward covers ideas with a positive ratio only.
type GroupStats struct {
	Ideas   int
	Decided int
	Wins    int
	Losses  int
	WinRate float64
	NetPnL  float64
	AvgRR   float64
}

// Group is one asset-class section of the feed: the current page slice of
// its active ideas plus pagination and performance metadata.
type Group struct {
	Label     string
	Total     int
	Page      int
	PageCount int
	Pages     []int
	Ideas     []domain.TradeIdea
	Stats     GroupStats
}

// BuildGroups groups the active subset by asset type and paginates each
// group independently. Group order follows the user's asset-order
// permutation; labels not named there follow in first-encounter order.
// Stats are computed from every filtered idea carrying the group's label,
// closed ones included, so win rate reflects finished trades rather than
// the open page contents. Unknown asset types form their own groups under
// their literal label.
func BuildGroups(active, filtered []domain.TradeIdea, order []string, pages PageState) []Group {
	members := make(map[string][]domain.TradeIdea)
	var encounter []string
	for _, idea := range active {
		label := idea.AssetType
		if _, seen := members[label]; !seen {
			encounter = append(encounter, label)
		}
		members[label] = append(members[label], idea)
	}

	labels := orderLabels(encounter, order)

	groups := make([]Group, 0, len(labels))
	for _, label := range labels {
		ideas := members[label]
		total := len(ideas)
		pageCount := (total + PageSize - 1) / PageSize
		if pageCount < 1 {
			pageCount = 1
		}
		page := pages.PageFor(label)
		if page > pageCount {
			page = pageCount
		}

		lo := (page - 1) * PageSize
		hi := lo + PageSize
		if hi > total {
			hi = total
		}
		slice := make([]domain.TradeIdea, hi-lo)
		copy(slice, ideas[lo:hi])

		groups = append(groups, Group{
			Label:     label,
			Total:     total,
			Page:      page,
			PageCount: pageCount,
			Pages:     pageWindow(page, pageCount),
			Ideas:     slice,
			Stats:     groupStats(label, filtered),
		})
	}
	return groups
}

// orderLabels arranges group labels by the user permutation first, then the
// remaining labels in their encounter order.
func orderLabels(encounter, order []string) []string {
	present := make(map[string]bool, len(encounter))
	for _, label := range encounter {
		present[label] = true
	}

	out := make([]string, 0, len(encounter))
	named := make(map[string]bool, len(order))
	for _, label := range order {
		if present[label] && !named[label] {
			out = append(out, label)
			named[label] = true
		}
	}
	for _, label := range encounter {
		if !named[label] {
			out = append(out, label)
		}
	}
	return out
}

// pageWindow produces the page numbers a paginator renders. Up to seven
// pages render in full; beyond that the window is first, last and
// current plus or minus one, with PageEllipsis marking each gap.
func pageWindow(page, pageCount int) []int {
	if pageCount <= maxPlainPages {
		out := make([]int, pageCount)
		for i := range out {
			out[i] = i + 1
		}
		return out
	}

	lo := page - 1
	if lo < 2 {
		lo = 2
	}
	hi := page + 1
	if hi > pageCount-1 {
		hi = pageCount - 1
	}

	out := []int{1}
	if lo > 2 {
		out = append(out, PageEllipsis)
	}
	for p := lo; p <= hi; p++ {
		out = append(out, p)
	}
	if hi < pageCount-1 {
		out = append(out, PageEllipsis)
	}
	return append(out, pageCount)
}

// groupStats aggregates outcomes for every filtered idea with the label.
func groupStats(label string, filtered []domain.TradeIdea) GroupStats {
	var s GroupStats
	var rrSum float64
	var rrCount int

	for _, idea := range filtered {
		if idea.AssetType != label {
			continue
		}
		s.Ideas++
		s.NetPnL += idea.RealizedPnL
		if idea.RiskRewardRatio > 0 {
			rrSum += idea.RiskRewardRatio
			rrCount++
		}
		switch idea.Outcome() {
		case domain.OutcomeHitTarget:
			s.Wins++
		case domain.OutcomeHitStop:
			s.Losses++
		}
	}

	s.Decided = s.Wins + s.Losses
	if s.Decided > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Decided)
	}
	if rrCount > 0 {
		s.AvgRR = rrSum / float64(rrCount)
	}
	return s
}
