package feed

import (
	"testing"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/domain"
)

func TestSessionSeedsFromPreferences(t *testing.T) {
	p := UserPreferences{
		TradeType:  domain.TradeTypeDay,
		PriceTier:  PriceUnder10,
		AssetType:  domain.AssetPennyStock,
		GradeTier:  "B",
		AssetOrder: []string{domain.AssetPennyStock, domain.AssetStock},
	}
	s := NewSession(p)

	f := s.Filter()
	if f.TradeType != domain.TradeTypeDay || f.PriceTier != PriceUnder10 ||
		f.AssetType != domain.AssetPennyStock || f.GradeTier != "B" {
		t.Errorf("seeded filter = %+v", f)
	}
	if len(f.AssetOrder) != 2 || f.AssetOrder[0] != domain.AssetPennyStock {
		t.Errorf("seeded asset order = %v", f.AssetOrder)
	}
	// Non-persisted fields keep their defaults.
	if f.Sort != SortPriority || f.Status != domain.StatusPublished {
		t.Errorf("non-persisted defaults = sort %q status %q", f.Sort, f.Status)
	}
}

// Changing any filter resets every group's page, even when the new value
// still matches the same members of an unaffected group.
func TestSessionFilterChangeResetsPages(t *testing.T) {
	s := NewSession(DefaultPreferences())
	s.SetPage(domain.AssetStock, 3)
	s.SetPage(domain.AssetCrypto, 2)

	active := stockActive(45)
	vm := s.View(active, testNow)
	if vm.Groups[0].Page != 3 {
		t.Fatalf("page before filter change = %d, want 3", vm.Groups[0].Page)
	}

	f := s.Filter()
	f.Search = "s" // matches every fixture symbol, membership unchanged
	if diff := s.Apply(f); diff != nil {
		t.Errorf("search change returned prefs diff %v, want nil", diff)
	}

	vm = s.View(active, testNow)
	if got := vm.Groups[0].Page; got != 1 {
		t.Errorf("page after filter change = %d, want 1", got)
	}
}

func TestSessionIdenticalFilterKeepsPages(t *testing.T) {
	s := NewSession(DefaultPreferences())
	s.SetPage(domain.AssetStock, 2)

	// Re-applying the identical state is a no-op, not a reset.
	s.Apply(s.Filter())

	vm := s.View(stockActive(45), testNow)
	if vm.Groups[0].Page != 2 {
		t.Errorf("page after identical apply = %d, want 2", vm.Groups[0].Page)
	}
}

func TestSessionPageNavigationKeepsFilter(t *testing.T) {
	s := NewSession(DefaultPreferences())
	f := s.Filter()
	f.Search = "nvda"
	s.Apply(f)

	s.SetPage(domain.AssetStock, 4)
	if got := s.Filter(); got.Search != "nvda" {
		t.Errorf("page navigation disturbed the filter: %+v", got)
	}
}

func TestSessionPrefsDiff(t *testing.T) {
	s := NewSession(DefaultPreferences())

	f := s.Filter()
	f.TradeType = domain.TradeTypeDay
	f.PriceTier = PriceUnder5
	f.Search = "ignored" // not persisted

	diff := s.Apply(f)
	if len(diff) != 2 {
		t.Fatalf("diff = %v, want exactly trade_type and price_tier", diff)
	}
	if diff[PrefTradeType] != domain.TradeTypeDay || diff[PrefPriceTier] != PriceUnder5 {
		t.Errorf("diff = %v", diff)
	}

	// The snapshot advanced: re-applying the same values diffs to nothing.
	f.Search = "changed again"
	if d := s.Apply(f); d != nil {
		t.Errorf("second apply returned %v, want nil", d)
	}

	p := s.Preferences()
	if p.TradeType != domain.TradeTypeDay || p.PriceTier != PriceUnder5 {
		t.Errorf("preferences snapshot = %+v", p)
	}
}

func TestSessionAssetOrderDiff(t *testing.T) {
	s := NewSession(DefaultPreferences())

	f := s.Filter()
	f.AssetOrder = []string{domain.AssetCrypto, domain.AssetStock}
	diff := s.Apply(f)

	want := EncodeAssetOrder(f.AssetOrder)
	if diff[PrefAssetOrder] != want {
		t.Errorf("asset order diff = %q, want %q", diff[PrefAssetOrder], want)
	}
	if got := DecodeAssetOrder(want); len(got) != 2 || got[0] != domain.AssetCrypto {
		t.Errorf("round-tripped order = %v", got)
	}
}

func TestDecodeAssetOrder(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"  ", 0},
		{"stock", 1},
		{"stock,crypto", 2},
		{"stock, crypto ,option", 3},
		{"stock,,crypto", 2},
	}
	for _, tt := range tests {
		if got := DecodeAssetOrder(tt.in); len(got) != tt.want {
			t.Errorf("DecodeAssetOrder(%q) = %v, want %d entries", tt.in, got, tt.want)
		}
	}
}
