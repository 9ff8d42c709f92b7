package live

import (
	"testing"
	"time"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/domain"
)

func idea(symbol string) domain.TradeIdea {
	return domain.TradeIdea{
		ID:         symbol + "-1",
		Symbol:     symbol,
		AssetType:  domain.AssetStock,
		EntryPrice: 100,
		Timestamp:  time.Now(),
	}
}

func TestReplaceBumpsVersion(t *testing.T) {
	m := NewModel()
	if got := m.Version(); got != 0 {
		t.Fatalf("new model version = %d, want 0", got)
	}

	v := m.Replace([]domain.TradeIdea{idea("AAPL"), idea("TSLA")})
	if v != 1 {
		t.Errorf("first Replace version = %d, want 1", v)
	}
	if got := m.Count(); got != 2 {
		t.Errorf("Count = %d, want 2", got)
	}

	v = m.Replace([]domain.TradeIdea{idea("NVDA")})
	if v != 2 {
		t.Errorf("second Replace version = %d, want 2", v)
	}
	if got := m.Count(); got != 1 {
		t.Errorf("Count after second Replace = %d, want 1", got)
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	m := NewModel()
	src := []domain.TradeIdea{idea("AAPL")}
	m.Replace(src)

	// Mutating the caller's slice must not affect the model.
	src[0].Symbol = "MUTATED"
	snap, v := m.Snapshot()
	if v != 1 {
		t.Fatalf("snapshot version = %d, want 1", v)
	}
	if snap[0].Symbol != "AAPL" {
		t.Errorf("model leaked caller mutation: symbol = %q", snap[0].Symbol)
	}

	// Mutating the snapshot must not affect the model either.
	snap[0].Symbol = "MUTATED"
	snap2, _ := m.Snapshot()
	if snap2[0].Symbol != "AAPL" {
		t.Errorf("model leaked snapshot mutation: symbol = %q", snap2[0].Symbol)
	}
}

func TestApplyQuotes(t *testing.T) {
	m := NewModel()
	m.Replace([]domain.TradeIdea{idea("AAPL"), idea("TSLA"), idea("BTC")})

	before, _ := m.Snapshot()

	updated := m.ApplyQuotes(map[string]float64{"AAPL": 191.5, "BTC": 64250, "MISSING": 1})
	if updated != 2 {
		t.Fatalf("ApplyQuotes updated = %d, want 2", updated)
	}
	if got := m.Version(); got != 2 {
		t.Errorf("version after quotes = %d, want 2", got)
	}

	snap, _ := m.Snapshot()
	bysym := make(map[string]domain.TradeIdea)
	for _, id := range snap {
		bysym[id.Symbol] = id
	}
	if p := bysym["AAPL"].CurrentPrice; p == nil || *p != 191.5 {
		t.Errorf("AAPL CurrentPrice = %v, want 191.5", p)
	}
	if p := bysym["TSLA"].CurrentPrice; p != nil {
		t.Errorf("TSLA CurrentPrice = %v, want nil (no quote)", *p)
	}

	// The earlier snapshot must still carry the old (nil) price.
	for _, id := range before {
		if id.CurrentPrice != nil {
			t.Errorf("pre-quote snapshot mutated: %s price = %v", id.Symbol, *id.CurrentPrice)
		}
	}
}

func TestApplyQuotesNoMatchNoBump(t *testing.T) {
	m := NewModel()
	m.Replace([]domain.TradeIdea{idea("AAPL")})

	if updated := m.ApplyQuotes(map[string]float64{"XYZ": 5}); updated != 0 {
		t.Fatalf("updated = %d, want 0", updated)
	}
	if got := m.Version(); got != 1 {
		t.Errorf("version = %d, want 1 (no bump on no-op)", got)
	}
	if updated := m.ApplyQuotes(nil); updated != 0 {
		t.Errorf("nil prices updated = %d, want 0", updated)
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	m := NewModel()
	id, ch := m.Subscribe(4)
	defer m.Unsubscribe(id)

	m.Replace([]domain.TradeIdea{idea("AAPL"), idea("TSLA")})

	select {
	case evt := <-ch:
		if evt.Version != 1 || evt.Count != 2 || evt.Reason != "feed" {
			t.Errorf("event = %+v, want version 1, count 2, reason feed", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received for Replace")
	}

	m.ApplyQuotes(map[string]float64{"AAPL": 200})
	select {
	case evt := <-ch:
		if evt.Reason != "quotes" {
			t.Errorf("event reason = %q, want quotes", evt.Reason)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received for ApplyQuotes")
	}
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	m := NewModel()
	id, ch := m.Subscribe(1)
	defer m.Unsubscribe(id)

	// Buffer holds one event; the second must be dropped, not block.
	done := make(chan struct{})
	go func() {
		m.Replace([]domain.TradeIdea{idea("AAPL")})
		m.Replace([]domain.TradeIdea{idea("TSLA")})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on slow subscriber")
	}

	evt := <-ch
	if evt.Version != 1 {
		t.Errorf("buffered event version = %d, want 1", evt.Version)
	}
	select {
	case evt := <-ch:
		t.Errorf("unexpected second event: %+v", evt)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	m := NewModel()
	id, ch := m.Subscribe(1)
	m.Unsubscribe(id)

	if _, ok := <-ch; ok {
		t.Error("channel still open after Unsubscribe")
	}
	// Double unsubscribe is a no-op.
	m.Unsubscribe(id)
}
