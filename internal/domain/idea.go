// Package domain defines the core research-feed types shared across the
// platform: the TradeIdea record, its enumerated field values, and the
// normalization helpers every downstream stage relies on.
package domain

import (
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Enumerated field values
// ---------------------------------------------------------------------------

// Asset types.
const (
	AssetStock      = "stock"
	AssetPennyStock = "penny_stock"
	AssetOption     = "option"
	AssetCrypto     = "crypto"
	AssetFuture     = "future"
)

// Directions.
const (
	DirectionLong  = "long"
	DirectionShort = "short"
)

// Idea sources.
const (
	SourceAI            = "ai"
	SourceQuant         = "quant"
	SourceHybrid        = "hybrid"
	SourceChartAnalysis = "chart_analysis"
	SourceFlow          = "flow"
	SourceNews          = "news"
	SourceManual        = "manual"
)

// Publication statuses. An absent status is treated as published.
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
)

// Canonical outcome states after normalization.
const (
	OutcomeOpen      = "open"
	OutcomeHitTarget = "hit_target"
	OutcomeHitStop   = "hit_stop"
	OutcomeExpired   = "expired"
	OutcomeClosed    = "closed"
)

// Holding-period derived trade types.
const (
	TradeTypeDay   = "day_trade"
	TradeTypeSwing = "swing_trade"
)

// ---------------------------------------------------------------------------
// TradeIdea
// ---------------------------------------------------------------------------

// TradeIdea is a single research idea as delivered by the upstream research
// API. Records are immutable once ingested; the feed pipeline never mutates
// them, it only derives new collections.
type TradeIdea struct {
	ID              string     `json:"id"`
	Symbol          string     `json:"symbol"`
	AssetType       string     `json:"assetType"`
	Direction       string     `json:"direction"`
	Source          string     `json:"source"`
	Status          string     `json:"status,omitempty"`
	OutcomeStatus   string     `json:"outcomeStatus,omitempty"`
	ProbabilityBand string     `json:"probabilityBand,omitempty"`
	HoldingPeriod   string     `json:"holdingPeriod,omitempty"`
	EntryPrice      float64    `json:"entryPrice"`
	CurrentPrice    *float64   `json:"currentPrice,omitempty"`
	TargetPrice     float64    `json:"targetPrice,omitempty"`
	StopLoss        float64    `json:"stopLoss,omitempty"`
	RiskRewardRatio float64    `json:"riskRewardRatio,omitempty"`
	ConfidenceScore float64    `json:"confidenceScore,omitempty"`
	TargetHitProb   float64    `json:"targetHitProbability,omitempty"`
	QualitySignals  []string   `json:"qualitySignals,omitempty"`
	Catalyst        string     `json:"catalyst,omitempty"`
	Thesis          string     `json:"thesis,omitempty"`
	Timestamp       time.Time  `json:"timestamp"`
	ExpiryDate      *time.Time `json:"expiryDate,omitempty"`
	ExitBy          *time.Time `json:"exitBy,omitempty"`
	RealizedPnL     float64    `json:"realizedPnL,omitempty"`
}

// Outcome returns the normalized outcome status: trimmed, lower-cased, with
// the empty string mapped to open.
func (i TradeIdea) Outcome() string {
	s := strings.ToLower(strings.TrimSpace(i.OutcomeStatus))
	if s == "" {
		return OutcomeOpen
	}
	return s
}

// IsOpen reports whether the idea's normalized outcome is open.
func (i TradeIdea) IsOpen() bool {
	return i.Outcome() == OutcomeOpen
}

// IsDecided reports whether the idea resolved with a definite result.
// Expired ideas are closed but not decided.
func (i TradeIdea) IsDecided() bool {
	o := i.Outcome()
	return o == OutcomeHitTarget || o == OutcomeHitStop
}

// TradeType classifies the idea by holding period: day maps to a day trade,
// swing, position and week-ending map to a swing trade. Unknown holding
// periods fall into neither bucket and return "".
func (i TradeIdea) TradeType() string {
	switch strings.ToLower(strings.TrimSpace(i.HoldingPeriod)) {
	case "day":
		return TradeTypeDay
	case "swing", "position", "week-ending":
		return TradeTypeSwing
	default:
		return ""
	}
}

// EffectivePrice returns the price used for tier bucketing: currentPrice when
// present, else entryPrice, else 0.
func (i TradeIdea) EffectivePrice() float64 {
	if i.CurrentPrice != nil {
		return *i.CurrentPrice
	}
	return i.EntryPrice
}

// Band returns the probability band used for grade filtering. A missing band
// defaults to "C" so ungraded ideas are not hidden by the quality tier.
func (i TradeIdea) Band() string {
	b := strings.ToUpper(strings.TrimSpace(i.ProbabilityBand))
	if b == "" {
		return "C"
	}
	return b
}

// Expiry returns the idea's effective deadline, preferring expiryDate over
// exitBy. The second return value is false when the idea has neither.
func (i TradeIdea) Expiry() (time.Time, bool) {
	if i.ExpiryDate != nil {
		return *i.ExpiryDate, true
	}
	if i.ExitBy != nil {
		return *i.ExitBy, true
	}
	return time.Time{}, false
}

// PublishStatus returns the idea's publication status, defaulting an absent
// value to published for backward compatibility with older records.
func (i TradeIdea) PublishStatus() string {
	if strings.TrimSpace(i.Status) == "" {
		return StatusPublished
	}
	return i.Status
}
