package ports

import (
	"context"

	"github.com/jbctechsolutions/cmdrunner/internal/domain/history"
)

// HistoryRepositoryPort defines the interface for persisting and querying run records.
// Implementations might use SQLite or other storage backends.
type HistoryRepositoryPort interface {
	// SaveRun persists a run record to the history store.
	// Returns an error if the save operation fails.
	SaveRun(ctx context.Context, run *history.Run) error

	// GetRuns retrieves run records matching the filter.
	// Results are ordered by start time (most recent first).
	GetRuns(ctx context.Context, filter history.Filter) ([]history.Run, error)

	// Prune deletes the oldest records beyond keep entries.
	// A keep of 0 deletes everything.
	Prune(ctx context.Context, keep int) error

	// Close releases the underlying store.
	Close() error
}
