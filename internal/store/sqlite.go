package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ IdeaStore = (*SQLiteStore)(nil)

// SQLiteStore implements IdeaStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, runs the
// schema migration, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating idea schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS ideas (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		asset_type TEXT NOT NULL,
		direction TEXT NOT NULL,
		source TEXT NOT NULL,
		status TEXT NOT NULL,
		outcome_status TEXT NOT NULL,
		probability_band TEXT NOT NULL,
		holding_period TEXT NOT NULL,
		entry_price REAL NOT NULL,
		current_price REAL,
		target_price REAL NOT NULL,
		stop_loss REAL NOT NULL,
		risk_reward REAL NOT NULL,
		confidence REAL NOT NULL,
		target_hit_prob REAL NOT NULL,
		quality_signals TEXT NOT NULL DEFAULT '[]',
		catalyst TEXT NOT NULL,
		thesis TEXT NOT NULL,
		posted_at INTEGER NOT NULL,
		expiry_at INTEGER,
		exit_by INTEGER,
		realized_pnl REAL NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_ideas_posted_at ON ideas(posted_at);
	`
	_, err := db.Exec(schema)
	return err
}

// ---------------------------------------------------------------------------
// IdeaStore implementation
// ---------------------------------------------------------------------------

const ideaColumns = `id, symbol, asset_type, direction, source, status,
	outcome_status, probability_band, holding_period, entry_price, current_price,
	target_price, stop_loss, risk_reward, confidence, target_hit_prob,
	quality_signals, catalyst, thesis, posted_at, expiry_at, exit_by, realized_pnl`

// UpsertIdeas inserts or updates a batch of ideas keyed by ID inside a single
// transaction. Poll results replace any previously stored state per idea.
func (s *SQLiteStore) UpsertIdeas(ctx context.Context, ideas []domain.TradeIdea) error {
	if len(ideas) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ideas (`+ideaColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			symbol = excluded.symbol,
			asset_type = excluded.asset_type,
			direction = excluded.direction,
			source = excluded.source,
			status = excluded.status,
			outcome_status = excluded.outcome_status,
			probability_band = excluded.probability_band,
			holding_period = excluded.holding_period,
			entry_price = excluded.entry_price,
			current_price = excluded.current_price,
			target_price = excluded.target_price,
			stop_loss = excluded.stop_loss,
			risk_reward = excluded.risk_reward,
			confidence = excluded.confidence,
			target_hit_prob = excluded.target_hit_prob,
			quality_signals = excluded.quality_signals,
			catalyst = excluded.catalyst,
			thesis = excluded.thesis,
			posted_at = excluded.posted_at,
			expiry_at = excluded.expiry_at,
			exit_by = excluded.exit_by,
			realized_pnl = excluded.realized_pnl`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, idea := range ideas {
		signals, err := json.Marshal(idea.QualitySignals)
		if err != nil {
			return fmt.Errorf("encoding signals for %s: %w", idea.ID, err)
		}
		var current sql.NullFloat64
		if idea.CurrentPrice != nil {
			current = sql.NullFloat64{Float64: *idea.CurrentPrice, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			idea.ID, idea.Symbol, idea.AssetType, idea.Direction, idea.Source,
			idea.Status, idea.OutcomeStatus, idea.ProbabilityBand, idea.HoldingPeriod,
			idea.EntryPrice, current, idea.TargetPrice, idea.StopLoss,
			idea.RiskRewardRatio, idea.ConfidenceScore, idea.TargetHitProb,
			string(signals), idea.Catalyst, idea.Thesis,
			idea.Timestamp.UnixMilli(), unixMilliOrNull(idea.ExpiryDate),
			unixMilliOrNull(idea.ExitBy), idea.RealizedPnL,
		); err != nil {
			return fmt.Errorf("upserting idea %s: %w", idea.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// ListIdeas returns all stored ideas, newest posting first.
func (s *SQLiteStore) ListIdeas(ctx context.Context) ([]domain.TradeIdea, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ideaColumns+`
		FROM ideas ORDER BY posted_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query ideas: %w", err)
	}
	defer rows.Close()
	return scanIdeas(rows)
}

// ListIdeasOn returns the ideas posted on the given calendar day, oldest first.
func (s *SQLiteStore) ListIdeasOn(ctx context.Context, day time.Time) ([]domain.TradeIdea, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ideaColumns+`
		FROM ideas WHERE posted_at >= ? AND posted_at < ? ORDER BY posted_at ASC`,
		start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query ideas for %s: %w", start.Format("2006-01-02"), err)
	}
	defer rows.Close()
	return scanIdeas(rows)
}

// DeleteBefore removes ideas posted before cutoff. Returns the count removed.
func (s *SQLiteStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM ideas WHERE posted_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("delete ideas: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("idea rows affected: %w", err)
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Row scanning
// ---------------------------------------------------------------------------

func scanIdeas(rows *sql.Rows) ([]domain.TradeIdea, error) {
	ideas := make([]domain.TradeIdea, 0)
	for rows.Next() {
		var (
			idea     domain.TradeIdea
			current  sql.NullFloat64
			signals  string
			postedAt int64
			expiryAt sql.NullInt64
			exitBy   sql.NullInt64
		)
		if err := rows.Scan(
			&idea.ID, &idea.Symbol, &idea.AssetType, &idea.Direction, &idea.Source,
			&idea.Status, &idea.OutcomeStatus, &idea.ProbabilityBand, &idea.HoldingPeriod,
			&idea.EntryPrice, &current, &idea.TargetPrice, &idea.StopLoss,
			&idea.RiskRewardRatio, &idea.ConfidenceScore, &idea.TargetHitProb,
			&signals, &idea.Catalyst, &idea.Thesis,
			&postedAt, &expiryAt, &exitBy, &idea.RealizedPnL,
		); err != nil {
			return nil, fmt.Errorf("scan idea: %w", err)
		}

		if current.Valid {
			p := current.Float64
			idea.CurrentPrice = &p
		}
		if signals != "" {
			if err := json.Unmarshal([]byte(signals), &idea.QualitySignals); err != nil {
				return nil, fmt.Errorf("decoding signals for %s: %w", idea.ID, err)
			}
		}
		idea.Timestamp = time.UnixMilli(postedAt)
		if expiryAt.Valid {
			t := time.UnixMilli(expiryAt.Int64)
			idea.ExpiryDate = &t
		}
		if exitBy.Valid {
			t := time.UnixMilli(exitBy.Int64)
			idea.ExitBy = &t
		}
		ideas = append(ideas, idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ideas: %w", err)
	}
	return ideas, nil
}

func unixMilliOrNull(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}
