package feed

import (
	"strings"
	"time"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/domain"
)

// ---------------------------------------------------------------------------
// Filter selections
// ---------------------------------------------------------------------------

// FilterAll is the wildcard selection accepted by every dimension.
const FilterAll = "all"

// Sort keys.
const (
	SortPriority   = "priority"
	SortTimestamp  = "timestamp"
	SortExpiry     = "expiry"
	SortConfidence = "confidence"
	SortRiskReward = "rr"
	SortPriceAsc   = "price_asc"
	SortPriceDesc  = "price_desc"
)

// View modes.
const (
	ViewDisplay  = "display"
	ViewSections = "sections"
)

// Posted-date ranges.
const (
	DateToday     = "today"
	DateYesterday = "yesterday"
	DateLast3D    = "3d"
	DateLast7D    = "7d"
	DateLast30D   = "30d"
	DateCustom    = "custom"
)

// Price tiers. Thresholds are strict less-than comparisons on the effective
// price; the top tier admits everything at or above 100.
const (
	PriceUnder5   = "under5"
	PriceUnder10  = "under10"
	PriceUnder25  = "under25"
	PriceUnder100 = "under100"
	PriceOver100  = "over100"
)

// Expiry horizons, measured in calendar days until the idea's deadline.
const (
	HorizonShort = "1-2d"
	HorizonMid   = "3-5d"
	HorizonWeek  = "this_week"
)

// GradeQuality is the composite grade tier: every band from A+ down to C,
// excluding C- and the D and F bands.
const GradeQuality = "quality"

// DirectionDayTrade is the pseudo-direction that matches day-trade ideas by
// holding period instead of actual direction.
const DirectionDayTrade = "day_trade"

// FilterState is a flat snapshot of every independent filter, sort and view
// selection. It has no identity beyond its current values; the Session
// resets all pagination whenever any field changes.
type FilterState struct {
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

// DefaultFilterState returns the selections a fresh session starts from:
// everything wide open except the published-only status view and the
// quality grade tier.
func DefaultFilterState() FilterState {
	return FilterState{
		Direction: FilterAll,
		Source:    FilterAll,
		AssetType: FilterAll,
		GradeTier: GradeQuality,
		TradeType: FilterAll,
		PriceTier: FilterAll,
		Status:    domain.StatusPublished,
		DateRange: FilterAll,
		Horizon:   FilterAll,
		Sort:      SortPriority,
		View:      ViewDisplay,
	}
}

// Equal reports whether two filter states select exactly the same subsets.
func (f FilterState) Equal(other FilterState) bool {
	if f.Search != other.Search ||
		f.Direction != other.Direction ||
		f.Source != other.Source ||
		f.AssetType != other.AssetType ||
		f.GradeTier != other.GradeTier ||
		f.TradeType != other.TradeType ||
		f.PriceTier != other.PriceTier ||
		f.Status != other.Status ||
		f.DateRange != other.DateRange ||
		f.CustomDate != other.CustomDate ||
		f.Horizon != other.Horizon ||
		f.Sort != other.Sort ||
		f.View != other.View {
		return false
	}
	if len(f.AssetOrder) != len(other.AssetOrder) {
		return false
	}
	for i := range f.AssetOrder {
		if f.AssetOrder[i] != other.AssetOrder[i] {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Predicate compilation
// ---------------------------------------------------------------------------

// Filter dimension names. Each active dimension compiles to exactly one
// named predicate; the counting engine drops one by name to compute
// all-but-one counts.
const (
	DimSearch    = "search"
	DimDirection = "direction"
	DimSource    = "source"
	DimAsset     = "asset"
	DimGrade     = "grade"
	DimTradeType = "trade_type"
	DimPrice     = "price"
	DimDate      = "date"
	DimHorizon   = "horizon"
	DimStatus    = "status"
)

// compileOrder fixes the evaluation order of the compiled predicate list.
var compileOrder = []string{
	DimSearch, DimDirection, DimSource, DimAsset, DimGrade,
	DimTradeType, DimPrice, DimDate, DimHorizon, DimStatus,
}

// Predicate is a single named admission rule over a TradeIdea.
type Predicate struct {
	Name  string
	Admit func(domain.TradeIdea) bool
}

// PredicateList is an ordered conjunction of named predicates. An idea is
// admitted only when every predicate passes.
type PredicateList []Predicate

// Match reports whether the idea passes every predicate in the list.
func (ps PredicateList) Match(idea domain.TradeIdea) bool {
	for _, p := range ps {
		if !p.Admit(idea) {
			return false
		}
	}
	return true
}

// Except returns the list without the predicate of the given name. The
// receiver is not modified.
func (ps PredicateList) Except(name string) PredicateList {
	out := make(PredicateList, 0, len(ps))
	for _, p := range ps {
		if p.Name != name {
			out = append(out, p)
		}
	}
	return out
}

// Names returns the dimension names of the active predicates, in order.
func (ps PredicateList) Names() []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

// Compile turns a filter state into its ordered predicate list. Dimensions
// set to their wildcard compile to no predicate at all, so an empty list
// admits everything. now anchors the posted-date and horizon windows.
func Compile(f FilterState, now time.Time) PredicateList {
	var ps PredicateList
	for _, dim := range compileOrder {
		if p, ok := dimensionPredicate(dim, dimensionValue(f, dim), f, now); ok {
			ps = append(ps, p)
		}
	}
	return ps
}

// dimensionValue extracts the current selection for a dimension.
func dimensionValue(f FilterState, dim string) string {
	switch dim {
	case DimSearch:
		return f.Search
	case DimDirection:
		return f.Direction
	case DimSource:
		return f.Source
	case DimAsset:
		return f.AssetType
	case DimGrade:
		return f.GradeTier
	case DimTradeType:
		return f.TradeType
	case DimPrice:
		return f.PriceTier
	case DimDate:
		return f.DateRange
	case DimHorizon:
		return f.Horizon
	case DimStatus:
		return f.Status
	}
	return ""
}

// dimensionPredicate builds the predicate for one dimension at one value.
// ok is false when the value is the wildcard (or otherwise compiles to a
// no-op), meaning the dimension admits everything. Unrecognized values for
// the structured dimensions also degrade to match-everything rather than
// hiding the whole feed.
func dimensionPredicate(dim, value string, f FilterState, now time.Time) (Predicate, bool) {
	if value == "" || value == FilterAll {
		return Predicate{}, false
	}

	switch dim {
	case DimSearch:
		q := strings.ToLower(strings.TrimSpace(value))
		if q == "" {
			return Predicate{}, false
		}
		return Predicate{DimSearch, func(i domain.TradeIdea) bool {
			return strings.Contains(strings.ToLower(i.Symbol), q) ||
				strings.Contains(strings.ToLower(i.Catalyst), q)
		}}, true

	case DimDirection:
		if value == DirectionDayTrade {
			return Predicate{DimDirection, func(i domain.TradeIdea) bool {
				return i.TradeType() == domain.TradeTypeDay
			}}, true
		}
		return Predicate{DimDirection, func(i domain.TradeIdea) bool {
			return i.Direction == value
		}}, true

	case DimSource:
		return Predicate{DimSource, func(i domain.TradeIdea) bool {
			return i.Source == value
		}}, true

	case DimAsset:
		return Predicate{DimAsset, func(i domain.TradeIdea) bool {
			return i.AssetType == value
		}}, true

	case DimGrade:
		return Predicate{DimGrade, func(i domain.TradeIdea) bool {
			return gradeAdmits(value, i.Band())
		}}, true

	case DimTradeType:
		if value != domain.TradeTypeDay && value != domain.TradeTypeSwing {
			return Predicate{}, false
		}
		return Predicate{DimTradeType, func(i domain.TradeIdea) bool {
			return i.TradeType() == value
		}}, true

	case DimPrice:
		limit, over := priceTierBound(value)
		if limit == 0 && !over {
			return Predicate{}, false
		}
		return Predicate{DimPrice, func(i domain.TradeIdea) bool {
			p := i.EffectivePrice()
			if over {
				return p >= limit
			}
			return p < limit
		}}, true

	case DimDate:
		start, end, ok := resolveDateWindow(value, f.CustomDate, now)
		if !ok {
			return Predicate{}, false
		}
		return Predicate{DimDate, func(i domain.TradeIdea) bool {
			if i.Timestamp.Before(start) {
				return false
			}
			return end.IsZero() || !i.Timestamp.After(end)
		}}, true

	case DimHorizon:
		lo, hi, ok := horizonBounds(value)
		if !ok {
			return Predicate{}, false
		}
		return Predicate{DimHorizon, func(i domain.TradeIdea) bool {
			exp, has := i.Expiry()
			if !has {
				return false
			}
			d := calendarDaysUntil(now, exp)
			return d >= lo && d <= hi
		}}, true

	case DimStatus:
		if value != domain.StatusPublished && value != domain.StatusDraft {
			return Predicate{}, false
		}
		return Predicate{DimStatus, func(i domain.TradeIdea) bool {
			return i.PublishStatus() == value
		}}, true
	}

	return Predicate{}, false
}

// qualityBands is the membership set of the quality grade tier.
var qualityBands = map[string]bool{
	"A+": true, "A": true, "A-": true,
	"B+": true, "B": true, "B-": true,
	"C+": true, "C": true,
}

// gradeAdmits reports whether a probability band belongs to a grade tier.
// Letter tiers admit their +/base/- variants; D absorbs the F bands.
func gradeAdmits(tier, band string) bool {
	switch tier {
	case GradeQuality:
		return qualityBands[band]
	case "A", "a", "B", "b", "C", "c":
		return strings.HasPrefix(band, strings.ToUpper(tier))
	case "D", "d":
		return strings.HasPrefix(band, "D") || strings.HasPrefix(band, "F")
	default:
		// Unknown tier selections admit everything.
		return true
	}
}

// priceTierBound maps a price tier to its threshold. over is true for the
// open-ended top tier.
func priceTierBound(tier string) (limit float64, over bool) {
	switch tier {
	case PriceUnder5:
		return 5, false
	case PriceUnder10:
		return 10, false
	case PriceUnder25:
		return 25, false
	case PriceUnder100:
		return 100, false
	case PriceOver100:
		return 100, true
	default:
		return 0, false
	}
}

// resolveDateWindow computes the [start, end] posting window for a date
// range selection. A zero end means unbounded. ok is false when the
// selection cannot produce a window (unknown value, or a custom range
// without a parseable date) so the dimension degrades to match-everything.
func resolveDateWindow(value, customDate string, now time.Time) (start, end time.Time, ok bool) {
	dayStart := startOfDay(now)
	switch value {
	case DateToday:
		return dayStart, time.Time{}, true
	case DateYesterday:
		return dayStart.AddDate(0, 0, -1), dayStart.Add(-time.Millisecond), true
	case DateLast3D:
		return now.Add(-3 * 24 * time.Hour), time.Time{}, true
	case DateLast7D:
		return now.Add(-7 * 24 * time.Hour), time.Time{}, true
	case DateLast30D:
		return now.Add(-30 * 24 * time.Hour), time.Time{}, true
	case DateCustom:
		day, err := time.ParseInLocation("2006-01-02", customDate, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		return day, day.AddDate(0, 0, 1).Add(-time.Millisecond), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// horizonBounds maps an expiry horizon to its inclusive day range.
func horizonBounds(value string) (lo, hi int, ok bool) {
	switch value {
	case HorizonShort:
		return 0, 2, true
	case HorizonMid:
		return 3, 5, true
	case HorizonWeek:
		return 0, 7, true
	default:
		return 0, 0, false
	}
}

// startOfDay truncates a time to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// calendarDaysUntil counts whole calendar days from now's day to t's day,
// evaluated in now's location. Same-day deadlines yield 0; past deadlines
// are negative.
func calendarDaysUntil(now, t time.Time) int {
	from := startOfDay(now)
	to := startOfDay(t.In(now.Location()))
	return int(to.Sub(from) / (24 * time.Hour))
}
