package feed

import (
	"strings"
	"sync"
	"time"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/domain"
)

// Preference field names. The preference store namespaces these as its keys.
const (
	PrefTradeType  = "trade_type"
	PrefPriceTier  = "price_tier"
	PrefAssetType  = "asset_type"
	PrefGradeTier  = "grade_tier"
	PrefAssetOrder = "asset_order"
)

// UserPreferences are the five filter selections that survive across
// sessions. Everything else in FilterState is ephemeral.
type UserPreferences struct {
	TradeType  string   `json:"tradeType"`
	PriceTier  string   `json:"priceTier"`
	AssetType  string   `json:"assetType"`
	GradeTier  string   `json:"gradeTier"`
	AssetOrder []string `json:"assetOrder"`
}

// DefaultPreferences returns the out-of-the-box persisted defaults.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		TradeType: FilterAll,
		PriceTier: FilterAll,
		AssetType: FilterAll,
		GradeTier: GradeQuality,
	}
}

// Filter seeds a fresh filter state from the preferences. Empty preference
// fields keep the stock defaults.
func (p UserPreferences) Filter() FilterState {
	f := DefaultFilterState()
	if p.TradeType != "" {
		f.TradeType = p.TradeType
	}
	if p.PriceTier != "" {
		f.PriceTier = p.PriceTier
	}
	if p.AssetType != "" {
		f.AssetType = p.AssetType
	}
	if p.GradeTier != "" {
		f.GradeTier = p.GradeTier
	}
	if len(p.AssetOrder) > 0 {
		f.AssetOrder = append([]string(nil), p.AssetOrder...)
	}
	return f
}

// PrefsDiff holds changed preference fields as encoded values, keyed by the
// Pref* field names. The caller persists it; the pipeline never writes
// storage itself.
type PrefsDiff map[string]string

// EncodeAssetOrder flattens an asset order for storage.
func EncodeAssetOrder(order []string) string {
	return strings.Join(order, ",")
}

// DecodeAssetOrder parses a stored asset order.
func DecodeAssetOrder(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// diffPreferences extracts the preference fields of next that differ from
// prev, returning the updated snapshot and the diff to persist. A nil diff
// means nothing persisted changed.
func diffPreferences(prev UserPreferences, next FilterState) (UserPreferences, PrefsDiff) {
	updated := prev
	var diff PrefsDiff
	record := func(key, value string) {
		if diff == nil {
			diff = make(PrefsDiff)
		}
		diff[key] = value
	}

	if next.TradeType != prev.TradeType {
		updated.TradeType = next.TradeType
		record(PrefTradeType, next.TradeType)
	}
	if next.PriceTier != prev.PriceTier {
		updated.PriceTier = next.PriceTier
		record(PrefPriceTier, next.PriceTier)
	}
	if next.AssetType != prev.AssetType {
		updated.AssetType = next.AssetType
		record(PrefAssetType, next.AssetType)
	}
	if next.GradeTier != prev.GradeTier {
		updated.GradeTier = next.GradeTier
		record(PrefGradeTier, next.GradeTier)
	}
	if !sameOrder(next.AssetOrder, prev.AssetOrder) {
		updated.AssetOrder = append([]string(nil), next.AssetOrder...)
		record(PrefAssetOrder, EncodeAssetOrder(next.AssetOrder))
	}
	return updated, diff
}

func sameOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

// Session owns the mutable state around the pure pipeline: the current
// filter snapshot, the per-group page map, and the persisted preference
// snapshot. Handlers may call it concurrently.
type Session struct {
	mu     sync.Mutex
	filter FilterState
	pages  PageState
	prefs  UserPreferences
}

// NewSession seeds a session from persisted preferences.
func NewSession(p UserPreferences) *Session {
	return &Session{
		filter: p.Filter(),
		pages:  make(PageState),
		prefs:  p,
	}
}

// Filter returns the current filter snapshot.
func (s *Session) Filter() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Preferences returns the current persisted-preference snapshot.
func (s *Session) Preferences() UserPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// Apply installs a new filter state. Any change resets every group's page
// to 1, because group membership is no longer guaranteed stable. The
// returned diff carries preference fields the caller should persist; it is
// nil when the applied state equals the current one or touches no persisted
// field.
func (s *Session) Apply(f FilterState) PrefsDiff {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.filter.Equal(f) {
		return nil
	}
	s.filter = f
	s.pages.Reset()

	updated, diff := diffPreferences(s.prefs, f)
	s.prefs = updated
	return diff
}

// Pages returns a copy of the current page map.
func (s *Session) Pages() PageState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages.Clone()
}

// SetPage navigates one group to a page without disturbing the filter state
// or any other group's page.
func (s *Session) SetPage(label string, page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages.Set(label, page)
}

// View builds the view model for the current session state.
func (s *Session) View(ideas []domain.TradeIdea, now time.Time) ViewModel {
	s.mu.Lock()
	f := s.filter
	pages := s.pages.Clone()
	s.mu.Unlock()

	return Build(ideas, f, pages, now)
}
