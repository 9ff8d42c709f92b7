package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/domain"
)

// Compile-time interface check.
var _ ArchiveStore = (*ParquetStore)(nil)

// ParquetStore implements ArchiveStore using one Parquet file per calendar day.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// ---------------------------------------------------------------------------
// Parquet record type (on-disk schema)
// ---------------------------------------------------------------------------

// IdeaRecord is the Parquet schema for archived trade ideas. Quality signals
// are JSON-encoded so the row stays flat.
type IdeaRecord struct {
	ID              string   `parquet:"id"`
	Symbol          string   `parquet:"symbol"`
	AssetType       string   `parquet:"asset_type"`
	Direction       string   `parquet:"direction"`
	Source          string   `parquet:"source"`
	Status          string   `parquet:"status"`
	OutcomeStatus   string   `parquet:"outcome_status"`
	ProbabilityBand string   `parquet:"probability_band"`
	HoldingPeriod   string   `parquet:"holding_period"`
	EntryPrice      float64  `parquet:"entry_price"`
	CurrentPrice    *float64 `parquet:"current_price,optional"`
	TargetPrice     float64  `parquet:"target_price"`
	StopLoss        float64  `parquet:"stop_loss"`
	RiskReward      float64  `parquet:"risk_reward"`
	Confidence      float64  `parquet:"confidence"`
	TargetHitProb   float64  `parquet:"target_hit_prob"`
	QualitySignals  string   `parquet:"quality_signals"` // JSON array
	Catalyst        string   `parquet:"catalyst"`
	Thesis          string   `parquet:"thesis"`
	PostedAt        int64    `parquet:"posted_at,timestamp(millisecond)"` // Unix ms
	ExpiryAt        *int64   `parquet:"expiry_at,optional"`               // Unix ms
	ExitBy          *int64   `parquet:"exit_by,optional"`                 // Unix ms
	RealizedPnL     float64  `parquet:"realized_pnl"`
}

// ---------------------------------------------------------------------------
// ArchiveStore implementation
// ---------------------------------------------------------------------------

// WriteArchive writes the given ideas to the archive file for day, merging
// with any previously archived records by ID (new records win). Layout:
//
//	<DataDir>/research/ideas/<YYYY-MM-DD>.parquet
func (s *ParquetStore) WriteArchive(_ context.Context, day time.Time, ideas []domain.TradeIdea) error {
	if len(ideas) == 0 {
		return nil
	}

	records := make([]IdeaRecord, 0, len(ideas))
	for _, idea := range ideas {
		records = append(records, ideaToRecord(idea))
	}

	path := s.archivePath(day.Format("2006-01-02"))
	existing, _ := readParquetFile[IdeaRecord](path)
	merged := mergeIdeaRecords(existing, records)

	if err := writeParquetFile(path, merged); err != nil {
		return fmt.Errorf("writing archive for %s: %w", day.Format("2006-01-02"), err)
	}
	return nil
}

// ReadArchive returns the archived ideas for a date (YYYY-MM-DD). A missing
// file reports os.ErrNotExist.
func (s *ParquetStore) ReadArchive(_ context.Context, date string) ([]domain.TradeIdea, error) {
	path := s.archivePath(date)
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	records, err := readParquetFile[IdeaRecord](path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	ideas := make([]domain.TradeIdea, 0, len(records))
	for _, r := range records {
		ideas = append(ideas, recordToIdea(r))
	}
	return ideas, nil
}

// ListArchiveDates returns all archived dates (YYYY-MM-DD), ascending.
func (s *ParquetStore) ListArchiveDates(_ context.Context) ([]string, error) {
	dir := filepath.Join(s.DataDir, "research", "ideas")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading archive dir: %w", err)
	}

	var dates []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".parquet") {
			continue
		}
		dates = append(dates, strings.TrimSuffix(e.Name(), ".parquet"))
	}
	sort.Strings(dates)
	return dates, nil
}

// archivePath returns the filesystem path for a day's archive file.
func (s *ParquetStore) archivePath(date string) string {
	return filepath.Join(s.DataDir, "research", "ideas", date+".parquet")
}

// ---------------------------------------------------------------------------
// Record conversion
// ---------------------------------------------------------------------------

func ideaToRecord(idea domain.TradeIdea) IdeaRecord {
	signals, _ := json.Marshal(idea.QualitySignals)
	return IdeaRecord{
		ID:              idea.ID,
		Symbol:          idea.Symbol,
		AssetType:       idea.AssetType,
		Direction:       idea.Direction,
		Source:          idea.Source,
		Status:          idea.Status,
		OutcomeStatus:   idea.OutcomeStatus,
		ProbabilityBand: idea.ProbabilityBand,
		HoldingPeriod:   idea.HoldingPeriod,
		EntryPrice:      idea.EntryPrice,
		CurrentPrice:    idea.CurrentPrice,
		TargetPrice:     idea.TargetPrice,
		StopLoss:        idea.StopLoss,
		RiskReward:      idea.RiskRewardRatio,
		Confidence:      idea.ConfidenceScore,
		TargetHitProb:   idea.TargetHitProb,
		QualitySignals:  string(signals),
		Catalyst:        idea.Catalyst,
		Thesis:          idea.Thesis,
		PostedAt:        idea.Timestamp.UnixMilli(),
		ExpiryAt:        unixMilliPtr(idea.ExpiryDate),
		ExitBy:          unixMilliPtr(idea.ExitBy),
		RealizedPnL:     idea.RealizedPnL,
	}
}

func recordToIdea(r IdeaRecord) domain.TradeIdea {
	idea := domain.TradeIdea{
		ID:              r.ID,
		Symbol:          r.Symbol,
		AssetType:       r.AssetType,
		Direction:       r.Direction,
		Source:          r.Source,
		Status:          r.Status,
		OutcomeStatus:   r.OutcomeStatus,
		ProbabilityBand: r.ProbabilityBand,
		HoldingPeriod:   r.HoldingPeriod,
		EntryPrice:      r.EntryPrice,
		CurrentPrice:    r.CurrentPrice,
		TargetPrice:     r.TargetPrice,
		StopLoss:        r.StopLoss,
		RiskRewardRatio: r.RiskReward,
		ConfidenceScore: r.Confidence,
		TargetHitProb:   r.TargetHitProb,
		Catalyst:        r.Catalyst,
		Thesis:          r.Thesis,
		Timestamp:       time.UnixMilli(r.PostedAt),
		RealizedPnL:     r.RealizedPnL,
	}
	if r.QualitySignals != "" {
		json.Unmarshal([]byte(r.QualitySignals), &idea.QualitySignals)
	}
	if r.ExpiryAt != nil {
		t := time.UnixMilli(*r.ExpiryAt)
		idea.ExpiryDate = &t
	}
	if r.ExitBy != nil {
		t := time.UnixMilli(*r.ExitBy)
		idea.ExitBy = &t
	}
	return idea
}

func unixMilliPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeIdeaRecords deduplicates archive records by ID, preferring new records
// over existing ones. Results are sorted by posting time, then ID.
func mergeIdeaRecords(existing, incoming []IdeaRecord) []IdeaRecord {
	seen := make(map[string]IdeaRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.ID] = r
	}
	for _, r := range incoming {
		seen[r.ID] = r
	}

	merged := make([]IdeaRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].PostedAt != merged[j].PostedAt {
			return merged[i].PostedAt < merged[j].PostedAt
		}
		return merged[i].ID < merged[j].ID
	})
	return merged
}
