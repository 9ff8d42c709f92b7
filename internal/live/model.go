// Package live provides a shared in-memory model for the current trade-idea
// collection, replaced wholesale on each successful source poll, with pub/sub
// for pushing refresh notifications to websocket clients.
package live

import (
	"sync"
	"time"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/domain"
)

// RefreshEvent is emitted to subscribers whenever the model content changes.
type RefreshEvent struct {
	Version int64  `json:"version"` // monotonic, bumped on every change
	Count   int    `json:"count"`   // ideas in the collection after the change
	Reason  string `json:"reason"`  // "feed" for a collection swap, "quotes" for a price refresh
}

// Model holds the live trade-idea collection. The collection is immutable
// between swaps: Replace installs a fresh copy and bumps the version, so
// readers holding an earlier Snapshot are never affected by later updates.
type Model struct {
	mu      sync.RWMutex
	ideas   []domain.TradeIdea
	version int64
	updated time.Time

	subsMu    sync.Mutex
	nextSubID int
	subs      map[int]chan RefreshEvent
}

// NewModel creates an empty model at version 0.
func NewModel() *Model {
	return &Model{
		subs: make(map[int]chan RefreshEvent),
	}
}

// Replace swaps in a new idea collection. The slice is copied, so the caller
// may reuse its backing array. Subscribers are notified with reason "feed".
func (m *Model) Replace(ideas []domain.TradeIdea) int64 {
	next := make([]domain.TradeIdea, len(ideas))
	copy(next, ideas)

	m.mu.Lock()
	m.ideas = next
	m.version++
	m.updated = time.Now()
	version, count := m.version, len(m.ideas)
	m.mu.Unlock()

	m.broadcast(RefreshEvent{Version: version, Count: count, Reason: "feed"})
	return version
}

// ApplyQuotes updates CurrentPrice for ideas whose symbol appears in prices.
// Returns the number of ideas updated. Each update allocates a fresh pointer,
// so snapshots taken before the call keep their old prices. No event is sent
// when nothing matched.
func (m *Model) ApplyQuotes(prices map[string]float64) int {
	if len(prices) == 0 {
		return 0
	}

	m.mu.Lock()
	updated := 0
	for i := range m.ideas {
		price, ok := prices[m.ideas[i].Symbol]
		if !ok {
			continue
		}
		p := price
		m.ideas[i].CurrentPrice = &p
		updated++
	}
	if updated == 0 {
		m.mu.Unlock()
		return 0
	}
	m.version++
	m.updated = time.Now()
	version, count := m.version, len(m.ideas)
	m.mu.Unlock()

	m.broadcast(RefreshEvent{Version: version, Count: count, Reason: "quotes"})
	return updated
}

// Snapshot returns a copy of the current collection and its version.
func (m *Model) Snapshot() ([]domain.TradeIdea, int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ideas := make([]domain.TradeIdea, len(m.ideas))
	copy(ideas, m.ideas)
	return ideas, m.version
}

// Version returns the current model version without copying the collection.
func (m *Model) Version() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// Count returns the number of ideas in the collection.
func (m *Model) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ideas)
}

// UpdatedAt returns the time of the last change, zero if never updated.
func (m *Model) UpdatedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.updated
}

// broadcast sends evt to all subscribers (non-blocking send).
func (m *Model) broadcast(evt RefreshEvent) {
	m.subsMu.Lock()
	for _, ch := range m.subs {
		select {
		case ch <- evt:
		default:
			// Slow subscriber, drop event.
		}
	}
	m.subsMu.Unlock()
}

// Subscribe creates a new subscription channel for refresh events.
func (m *Model) Subscribe(bufSize int) (id int, ch <-chan RefreshEvent) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	id = m.nextSubID
	m.nextSubID++
	c := make(chan RefreshEvent, bufSize)
	m.subs[id] = c
	return id, c
}

// Unsubscribe removes a subscription and closes its channel.
func (m *Model) Unsubscribe(id int) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	if ch, ok := m.subs[id]; ok {
		close(ch)
		delete(m.subs, id)
	}
}
