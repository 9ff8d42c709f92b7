// Package prefs persists the user's research-feed preferences as a flat,
// namespaced key-value JSON file. Writes are debounced so rapid filter
// toggling settles into one disk write.
package prefs

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/feed"
)

// keyPrefix namespaces every persisted preference key.
const keyPrefix = "research.feed."

// flushDelay is how long the store waits after the last change before
// writing to disk.
const flushDelay = 2 * time.Second

// Store holds preference values in memory with debounced JSON persistence.
type Store struct {
	mu       sync.Mutex
	values   map[string]string
	filePath string
	log      *slog.Logger
	timer    *time.Timer
	dirty    bool
}

// NewStore creates a Store, loading persisted state from filePath. A
// missing file starts the store empty.
func NewStore(filePath string, log *slog.Logger) *Store {
	s := &Store{
		values:   make(map[string]string),
		filePath: filePath,
		log:      log,
	}
	s.load()
	return s
}

// Preferences decodes the stored values into a preference snapshot.
// Missing keys keep the stock defaults.
func (s *Store) Preferences() feed.UserPreferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := feed.DefaultPreferences()
	if v, ok := s.values[keyPrefix+feed.PrefTradeType]; ok {
		p.TradeType = v
	}
	if v, ok := s.values[keyPrefix+feed.PrefPriceTier]; ok {
		p.PriceTier = v
	}
	if v, ok := s.values[keyPrefix+feed.PrefAssetType]; ok {
		p.AssetType = v
	}
	if v, ok := s.values[keyPrefix+feed.PrefGradeTier]; ok {
		p.GradeTier = v
	}
	if v, ok := s.values[keyPrefix+feed.PrefAssetOrder]; ok {
		p.AssetOrder = feed.DecodeAssetOrder(v)
	}
	return p
}

// Apply stores a preference diff under its namespaced keys and schedules a
// debounced flush. An empty diff is a no-op.
func (s *Store) Apply(diff feed.PrefsDiff) {
	if len(diff) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for field, value := range diff {
		s.values[keyPrefix+field] = value
	}
	s.dirty = true

	if s.timer == nil {
		s.timer = time.AfterFunc(flushDelay, s.flushDebounced)
	} else {
		s.timer.Reset(flushDelay)
	}
}

// Flush writes pending changes to disk immediately.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

// Close stops the debounce timer and flushes pending changes.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return s.flushLocked()
}

// flushDebounced runs on the debounce timer.
func (s *Store) flushDebounced() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer = nil
	if err := s.flushLocked(); err != nil {
		s.log.Error("flushing preferences", "error", err)
	}
}

// flushLocked writes the in-memory state to disk. Must be called with mu
// held.
func (s *Store) flushLocked() error {
	if !s.dirty {
		return nil
	}
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.filePath, data, 0o644); err != nil {
		return err
	}
	s.dirty = false
	s.log.Debug("preferences flushed", "path", s.filePath, "keys", len(s.values))
	return nil
}

// load reads the JSON file into memory.
func (s *Store) load() {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return // No file yet, start empty.
	}
	var loaded map[string]string
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.log.Warn("loading preferences file", "error", err)
		return
	}
	s.values = loaded
	s.log.Info("loaded preferences", "keys", len(loaded))
}
