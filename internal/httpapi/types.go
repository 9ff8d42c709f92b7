// Package httpapi provides the HTTP REST API for the research feed, serving
// the filtered, ranked, and grouped idea collection in JSON format.
package httpapi

import (
	"time"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/domain"
	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/feed"
	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/news"
)

// IdeaJSON is the JSON representation of a trade idea, enriched with the
// derived fields the feed UI renders directly.
type IdeaJSON struct {
	ID              string     `json:"id"`
	Symbol          string     `json:"symbol"`
	AssetType       string     `json:"assetType"`
	Direction       string     `json:"direction"`
	Source          string     `json:"source"`
	Status          string     `json:"status"`
	Outcome         string     `json:"outcome"`
	TradeType       string     `json:"tradeType,omitempty"`
	ProbabilityBand string     `json:"probabilityBand"`
	HoldingPeriod   string     `json:"holdingPeriod,omitempty"`
	EntryPrice      float64    `json:"entryPrice"`
	CurrentPrice    *float64   `json:"currentPrice,omitempty"`
	TargetPrice     float64    `json:"targetPrice"`
	StopLoss        float64    `json:"stopLoss"`
	RiskReward      float64    `json:"riskRewardRatio"`
	RiskRewardLabel string     `json:"riskRewardLabel"`
	Confidence      float64    `json:"confidenceScore"`
	Signals         []string   `json:"qualitySignals,omitempty"`
	Catalyst        string     `json:"catalyst,omitempty"`
	Thesis          string     `json:"thesis,omitempty"`
	PostedAt        time.Time  `json:"timestamp"`
	Age             string     `json:"age"`
	ExpiryDate      *time.Time `json:"expiryDate,omitempty"`
	ExitBy          *time.Time `json:"exitBy,omitempty"`
	RealizedPnL     float64    `json:"realizedPnL"`
	PnLLabel        string     `json:"pnlLabel"`
}

// GroupStatsJSON is the JSON representation of per-group performance stats.
type GroupStatsJSON struct {
	Ideas        int     `json:"ideas"`
	Decided      int     `json:"decided"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      float64 `json:"winRate"`
	WinRateLabel string  `json:"winRateLabel"`
	NetPnL       float64 `json:"netPnL"`
	AvgRR        float64 `json:"avgRR"`
}

// GroupJSON holds one asset-type group with its page slice and pagination.
type GroupJSON struct {
	Label     string         `json:"label"`
	Total     int            `json:"total"`
	Page      int            `json:"page"`
	PageCount int            `json:"pageCount"`
	Pages     []int          `json:"pages"` // -1 marks an ellipsis slot
	Stats     GroupStatsJSON `json:"stats"`
	Ideas     []IdeaJSON     `json:"ideas"`
}

// FilterJSON echoes the filter state applied to a feed response.
type FilterJSON struct {
	Search     string   `json:"search,omitempty"`
	Direction  string   `json:"direction"`
	Source     string   `json:"source"`
	AssetType  string   `json:"assetType"`
	GradeTier  string   `json:"gradeTier"`
	TradeType  string   `json:"tradeType"`
	PriceTier  string   `json:"priceTier"`
	Status     string   `json:"status"`
	DateRange  string   `json:"dateRange"`
	CustomDate string   `json:"customDate,omitempty"`
	Horizon    string   `json:"horizon"`
	Sort       string   `json:"sort"`
	View       string   `json:"view"`
	AssetOrder []string `json:"assetOrder,omitempty"`
}

// FeedResponse is the top-level JSON response for feed endpoints.
type FeedResponse struct {
	Date     string                    `json:"date"`
	Version  int64                     `json:"version"`
	Filter   FilterJSON                `json:"filter"`
	Matched  int                       `json:"matched"`
	Active   int                       `json:"active"`
	Closed   int                       `json:"closed"`
	Counts   map[string]map[string]int `json:"counts"`
	Groups   []GroupJSON               `json:"groups"`
	Recently []IdeaJSON                `json:"recentlyClosed"`
}

// DatesResponse lists available archive dates.
type DatesResponse struct {
	Dates []string `json:"dates"`
}

// CatalystResponse holds catalyst headlines for a symbol.
type CatalystResponse struct {
	Symbol    string          `json:"symbol"`
	Headlines []news.Headline `json:"headlines"`
}

// PerformanceResponse holds per-source performance rows.
type PerformanceResponse struct {
	AsOf    time.Time                `json:"asOf"`
	Sources []feed.SourcePerformance `json:"sources"`
}

// PageRequest is the body for page navigation.
type PageRequest struct {
	Label string `json:"label"`
	Page  int    `json:"page"`
}

// convertIdea converts a domain idea to its JSON form.
func convertIdea(idea domain.TradeIdea, now time.Time) IdeaJSON {
	return IdeaJSON{
		ID:              idea.ID,
		Symbol:          idea.Symbol,
		AssetType:       idea.AssetType,
		Direction:       idea.Direction,
		Source:          idea.Source,
		Status:          idea.PublishStatus(),
		Outcome:         idea.Outcome(),
		TradeType:       idea.TradeType(),
		ProbabilityBand: idea.Band(),
		HoldingPeriod:   idea.HoldingPeriod,
		EntryPrice:      idea.EntryPrice,
		CurrentPrice:    idea.CurrentPrice,
		TargetPrice:     idea.TargetPrice,
		StopLoss:        idea.StopLoss,
		RiskReward:      idea.RiskRewardRatio,
		RiskRewardLabel: feed.FormatRR(idea.RiskRewardRatio),
		Confidence:      idea.ConfidenceScore,
		Signals:         idea.QualitySignals,
		Catalyst:        idea.Catalyst,
		Thesis:          idea.Thesis,
		PostedAt:        idea.Timestamp,
		Age:             feed.FormatAge(idea.Timestamp, now),
		ExpiryDate:      idea.ExpiryDate,
		ExitBy:          idea.ExitBy,
		RealizedPnL:     idea.RealizedPnL,
		PnLLabel:        feed.FormatPnL(idea.RealizedPnL),
	}
}

func convertIdeas(ideas []domain.TradeIdea, now time.Time) []IdeaJSON {
	out := make([]IdeaJSON, 0, len(ideas))
	for _, idea := range ideas {
		out = append(out, convertIdea(idea, now))
	}
	return out
}

func convertStats(s feed.GroupStats) GroupStatsJSON {
	return GroupStatsJSON{
		Ideas:        s.Ideas,
		Decided:      s.Decided,
		Wins:         s.Wins,
		Losses:       s.Losses,
		WinRate:      s.WinRate,
		WinRateLabel: feed.FormatWinRate(s),
		NetPnL:       s.NetPnL,
		AvgRR:        s.AvgRR,
	}
}

func convertFilter(f feed.FilterState) FilterJSON {
	return FilterJSON{
		Search:     f.Search,
		Direction:  f.Direction,
		Source:     f.Source,
		AssetType:  f.AssetType,
		GradeTier:  f.GradeTier,
		TradeType:  f.TradeType,
		PriceTier:  f.PriceTier,
		Status:     f.Status,
		DateRange:  f.DateRange,
		CustomDate: f.CustomDate,
		Horizon:    f.Horizon,
		Sort:       f.Sort,
		View:       f.View,
		AssetOrder: f.AssetOrder,
	}
}

// convertView converts a built view model to the feed response.
func convertView(vm feed.ViewModel, version int64, now time.Time) FeedResponse {
	groups := make([]GroupJSON, 0, len(vm.Groups))
	for _, g := range vm.Groups {
		groups = append(groups, GroupJSON{
			Label:     g.Label,
			Total:     g.Total,
			Page:      g.Page,
			PageCount: g.PageCount,
			Pages:     g.Pages,
			Stats:     convertStats(g.Stats),
			Ideas:     convertIdeas(g.Ideas, now),
		})
	}

	return FeedResponse{
		Date:     now.Format("2006-01-02"),
		Version:  version,
		Filter:   convertFilter(vm.Filter),
		Matched:  vm.Matched,
		Active:   vm.ActiveTotal,
		Closed:   vm.ClosedTotal,
		Counts:   vm.Counts,
		Groups:   groups,
		Recently: convertIdeas(vm.Closed, now),
	}
}
