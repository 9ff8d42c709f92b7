// Package store defines storage interfaces for persisting and retrieving
// trade ideas: a SQLite working cache that survives restarts and a Parquet
// archive of daily idea journals.
package store

import (
	"context"
	"time"

	"github.com/Maleek23/QuantEdgeResearch-sub001/internal/domain"
)

// IdeaStore persists the working set of trade ideas.
type IdeaStore interface {
	// UpsertIdeas inserts or updates a batch of ideas keyed by ID.
	UpsertIdeas(ctx context.Context, ideas []domain.TradeIdea) error

	// ListIdeas returns all stored ideas, newest posting first.
	ListIdeas(ctx context.Context) ([]domain.TradeIdea, error)

	// ListIdeasOn returns the ideas posted on the given calendar day.
	ListIdeasOn(ctx context.Context, day time.Time) ([]domain.TradeIdea, error)

	// DeleteBefore removes ideas posted before cutoff. Returns the count removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ArchiveStore persists immutable daily journals of trade ideas.
type ArchiveStore interface {
	// WriteArchive writes the ideas posted on the given day to the day's
	// archive file, merging with any previously archived records by ID.
	WriteArchive(ctx context.Context, day time.Time, ideas []domain.TradeIdea) error

	// ReadArchive returns the archived ideas for a date (YYYY-MM-DD).
	ReadArchive(ctx context.Context, date string) ([]domain.TradeIdea, error)

	// ListArchiveDates returns all archived dates (YYYY-MM-DD), ascending.
	ListArchiveDates(ctx context.Context) ([]string, error)
}
