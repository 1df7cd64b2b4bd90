package domain

import "time"

// SyncState is the sync engine's exclusively-owned resumption record,
// keyed by generation_date. Persisted with atomic replace semantics
// (write-new-then-swap) and deleted on successful completion.
type SyncState struct {
	GenerationDate      GenerationDate
	LastProcessedFileID string
	ContinuationToken   ContinuationToken
	UpdatedAt           time.Time
}

// Reset clears progress, used when a sync runs with force=true and
// prior state must be discarded rather than resumed from.
func (s *SyncState) Reset() {
	s.LastProcessedFileID = ""
	s.ContinuationToken = NoContinuation()
}
