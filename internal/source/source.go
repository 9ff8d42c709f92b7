// Package source feeds the live model: a poller that pulls the trade-idea
// collection from the research platform API and a refresher that keeps
// current prices warm via the Alpaca market-data API.
package source

import "context"

// Source is the interface for all background feed processes.
type Source interface {
	// Name returns the source identifier.
	Name() string
	// Run starts the process. It blocks until ctx is cancelled.
	Run(ctx context.Context) error
}
