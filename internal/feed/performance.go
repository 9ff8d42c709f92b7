package feed

import (
	"sort"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/domain"
)

// SourcePerformance aggregates outcomes for all ideas from one source, so the
// desk can audit how each bot or feed has actually performed.
type SourcePerformance struct {
	Source  string  `json:"source"`
	Ideas   int     `json:"ideas"`
	Open    int     `json:"open"`
	Decided int     `json:"decided"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Expired int     `json:"expired"`
	WinRate float64 `json:"winRate"`
	NetPnL  float64 `json:"netPnl"`
	AvgRR   float64 `json:"avgRr"`
}

// PerformanceBySource rolls the collection up per source. Results are
// ordered best first: win rate descending, then idea count, then source
// name for determinism.
func PerformanceBySource(ideas []domain.TradeIdea) []SourcePerformance {
	type acc struct {
		perf    SourcePerformance
		rrSum   float64
		rrCount int
	}
	bySource := make(map[string]*acc)

	for _, idea := range ideas {
		src := idea.Source
		if src == "" {
			src = domain.SourceManual
		}
		a := bySource[src]
		if a == nil {
			a = &acc{perf: SourcePerformance{Source: src}}
			bySource[src] = a
		}

		a.perf.Ideas++
		a.perf.NetPnL += idea.RealizedPnL
		if idea.RiskRewardRatio > 0 {
			a.rrSum += idea.RiskRewardRatio
			a.rrCount++
		}
		switch idea.Outcome() {
		case domain.OutcomeHitTarget:
			a.perf.Wins++
		case domain.OutcomeHitStop:
			a.perf.Losses++
		case domain.OutcomeExpired:
			a.perf.Expired++
		case domain.OutcomeOpen:
			a.perf.Open++
		}
	}

	out := make([]SourcePerformance, 0, len(bySource))
	for _, a := range bySource {
		a.perf.Decided = a.perf.Wins + a.perf.Losses
		if a.perf.Decided > 0 {
			a.perf.WinRate = float64(a.perf.Wins) / float64(a.perf.Decided)
		}
		if a.rrCount > 0 {
			a.perf.AvgRR = a.rrSum / float64(a.rrCount)
		}
		out = append(out, a.perf)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate > out[j].WinRate
		}
		if out[i].Ideas != out[j].Ideas {
			return out[i].Ideas > out[j].Ideas
		}
		return out[i].Source < out[j].Source
	})
	return out
}
