package out

import (
	"context"
	"time"

	"github.com/jpmarichal/ccmwf-go/core/domain"
)

// MissionaryRecordRepository is the relational-store outbound port.
type MissionaryRecordRepository interface {
	// ExistingIDs returns the subset of ids already present in the
	// store, used to filter duplicates before a batch insert.
	ExistingIDs(ctx context.Context, ids []int) (map[int]bool, error)

	// InsertBatch inserts records in a single transaction, returning
	// the count actually inserted. Callers must pre-filter duplicates
	// via ExistingIDs; InsertBatch does not silently skip.
	InsertBatch(ctx context.Context, records []domain.MissionaryRecord) (inserted int, err error)

	// ListForBranchAndGeneration loads rows for dataset pipelines,
	// filtered by branch membership and generation date.
	ListForBranchAndGeneration(ctx context.Context, branchIDs []string, gen domain.GenerationDate) ([]domain.MissionaryRecord, error)

	// ListActiveWithArrivalBetween loads active rows with an arrival
	// date in the given half-open-on-the-left window, for a branch.
	ListActiveWithArrivalBetween(ctx context.Context, branchID string, from, to time.Time) ([]domain.MissionaryRecord, error)

	// ListActive loads all active rows for a branch, used by the
	// upcoming-birthdays pipeline which filters on a derived
	// next-birthday rather than a stored column.
	ListActive(ctx context.Context, branchID string) ([]domain.MissionaryRecord, error)
}

// SyncStateRepository is the sync engine's exclusive-owner state store, backed by a
// schemaless document store with atomic replace-then-swap semantics.
type SyncStateRepository interface {
	Get(ctx context.Context, gen domain.GenerationDate) (domain.SyncState, bool, error)
	Save(ctx context.Context, state domain.SyncState) error
	Delete(ctx context.Context, gen domain.GenerationDate) error

	// TryLock acquires the per-generation mutual-exclusion lock a sync
	// run must hold; returns false if a sync is already in progress.
	TryLock(ctx context.Context, gen domain.GenerationDate) (bool, error)
	Unlock(ctx context.Context, gen domain.GenerationDate) error
}
