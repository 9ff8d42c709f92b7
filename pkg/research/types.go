package research

import (
	"net/url"
	"strings"
	"time"
)

// Idea is one trade idea as served by the feed API.
type Idea struct {
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

// GroupStats summarizes outcomes for one asset-type group.
type GroupStats struct {
	Ideas        int     `json:"ideas"`
	Decided      int     `json:"decided"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	WinRate      float64 `json:"winRate"`
	WinRateLabel string  `json:"winRateLabel"`
	NetPnL       float64 `json:"netPnL"`
	AvgRR        float64 `json:"avgRR"`
}

// Group is one asset-type group with its current page slice.
type Group struct {
	Label     string     `json:"label"`
	Total     int        `json:"total"`
	Page      int        `json:"page"`
	PageCount int        `json:"pageCount"`
	Pages     []int      `json:"pages"`
	Stats     GroupStats `json:"stats"`
	Ideas     []Idea     `json:"ideas"`
}

// Filter echoes the server's current filter selections.
type Filter struct {
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

// Feed is the top-level response of the feed and history endpoints.
type Feed struct {
	Date     string                    `json:"date"`
	Version  int64                     `json:"version"`
	Filter   Filter                    `json:"filter"`
	Matched  int                       `json:"matched"`
	Active   int                       `json:"active"`
	Closed   int                       `json:"closed"`
	Counts   map[string]map[string]int `json:"counts"`
	Groups   []Group                   `json:"groups"`
	Recently []Idea                    `json:"recentlyClosed"`
}

// Preferences are the persisted filter selections.
type Preferences struct {
	TradeType  string   `json:"tradeType"`
	PriceTier  string   `json:"priceTier"`
	AssetType  string   `json:"assetType"`
	GradeTier  string   `json:"gradeTier"`
	AssetOrder []string `json:"assetOrder,omitempty"`
}

// Headline is one catalyst news item.
type Headline struct {
	Time    time.Time `json:"time"`
	Source  string    `json:"source"`
	Title   string    `json:"title"`
	Summary string    `json:"summary"`
}

// Catalyst holds headlines fetched for a symbol.
type Catalyst struct {
	Symbol    string     `json:"symbol"`
	Headlines []Headline `json:"headlines"`
}

// SourcePerformance is one per-source outcome row.
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

// Performance holds all per-source performance rows.
type Performance struct {
	AsOf    time.Time           `json:"asOf"`
	Sources []SourcePerformance `json:"sources"`
}

// Health is the health endpoint response.
type Health struct {
	Status  string `json:"status"`
	Version int64  `json:"version"`
	Ideas   int    `json:"ideas"`
}

// FeedParams name filter dimensions to change on a feed request. Empty
// fields are omitted from the query, which leaves the server's current
// selection for that dimension untouched. Send the wildcard "all" to clear
// one.
type FeedParams struct {
	Search     string
	Direction  string
	Source     string
	AssetType  string
	GradeTier  string
	TradeType  string
	PriceTier  string
	Status     string
	DateRange  string
	CustomDate string
	Horizon    string
	Sort       string
	View       string
	AssetOrder []string
}

func (p FeedParams) encode() url.Values {
	q := url.Values{}
	set := func(key, val string) {
		if val != "" {
			q.Set(key, val)
		}
	}
	set("search", p.Search)
	set("direction", p.Direction)
	set("source", p.Source)
	set("assetType", p.AssetType)
	set("gradeTier", p.GradeTier)
	set("tradeType", p.TradeType)
	set("priceTier", p.PriceTier)
	set("status", p.Status)
	set("dateRange", p.DateRange)
	set("customDate", p.CustomDate)
	set("horizon", p.Horizon)
	set("sort", p.Sort)
	set("view", p.View)
	if len(p.AssetOrder) > 0 {
		q.Set("assetOrder", strings.Join(p.AssetOrder, ","))
	}
	return q
}
