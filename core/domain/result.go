package domain

import (
	"encoding/json"
	"time"
)

// StoredFile is created by the object-store adapter and thereafter
// referenced by the sync engine to locate spreadsheets within a
// generation folder.
type StoredFile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	FolderID     string `json:"folder_id"`
	ViewLink     string `json:"view_link"`
	DownloadLink string `json:"download_link"`
}

// UploadError records a single failed upload attempt, keyed by the
// stage at which it failed.
type UploadError struct {
	Stage string `json:"stage"`
	Code  string `json:"code"`
}

// ProcessingResult is the per-message outcome the orchestrator
// produces for process_incoming. Invariant: Success implies
// ValidationErrors and UploadErrors are both empty and GenerationDate
// is non-empty.
type ProcessingResult struct {
	Success          bool           `json:"success"`
	MessageID        string         `json:"message_id"`
	Subject          string         `json:"subject"`
	GenerationDate   GenerationDate `json:"generation_date"`
	AttachmentsCount int            `json:"attachments_count"`
	ValidationErrors []string       `json:"validation_errors,omitempty"`
	ParsedTable      *ParsedTable   `json:"parsed_table,omitempty"`
	TableErrors      []TableError   `json:"table_errors,omitempty"`
	FolderID         string         `json:"folder_id,omitempty"`
	UploadedFiles    []StoredFile   `json:"uploaded_files,omitempty"`
	UploadErrors     []UploadError  `json:"upload_errors,omitempty"`
}

// Valid reports whether the result satisfies the success invariant. It
// exists mainly for tests asserting the invariant holds across the
// pipeline.
func (r ProcessingResult) Valid() bool {
	if !r.Success {
		return true
	}
	return len(r.ValidationErrors) == 0 && len(r.UploadErrors) == 0 && r.GenerationDate.IsValid()
}

// CycleReport aggregates ProcessingResult across one process_incoming
// call. DurationSeconds is computed once EndTime is known, mirroring
// how SyncReport carries its own duration rather than leaving callers
// to subtract timestamps themselves.
type CycleReport struct {
	CorrelationID   string              `json:"correlation_id"`
	Processed       int                 `json:"processed"`
	Errors          int                 `json:"errors"`
	Details         []ProcessingResult  `json:"details"`
	StartTime       time.Time           `json:"start_time"`
	EndTime         time.Time           `json:"end_time"`
	DurationSeconds float64             `json:"duration_seconds"`
}

// ContinuationToken is a tagged variant over "no progress yet" and
// "resume at this file", modeled explicitly rather than as a bare
// nullable string so exhaustiveness is visible at call sites.
type ContinuationToken struct {
	set    bool
	fileID string
}

// NoContinuation is the zero-value token: a sync that has not yet
// persisted partial progress.
func NoContinuation() ContinuationToken {
	return ContinuationToken{}
}

// ContinueAt builds a token resuming at the given file id.
func ContinueAt(fileID string) ContinuationToken {
	return ContinuationToken{set: true, fileID: fileID}
}

// FileID returns the resume file id and whether one is set.
func (c ContinuationToken) FileID() (string, bool) {
	return c.fileID, c.set
}

// MarshalJSON renders the token as null when unset, or the resume
// file id when set; callers never construct the two backing fields
// directly, so there is no reasonable field-by-field JSON shape for
// this type.
func (c ContinuationToken) MarshalJSON() ([]byte, error) {
	if !c.set {
		return []byte("null"), nil
	}
	return json.Marshal(c.fileID)
}

// SyncReport is the sync engine's output: totals plus a per-file breakdown.
type SyncReport struct {
	CorrelationID     string            `json:"correlation_id"`
	GenerationDate    GenerationDate    `json:"generation_date"`
	Inserted          int               `json:"inserted"`
	Skipped           int               `json:"skipped"`
	DurationSeconds   float64           `json:"duration_seconds"`
	ContinuationToken ContinuationToken `json:"continuation_token"`
	Files             []SyncFileOutcome `json:"files"`
}

// SyncFileOutcome records what happened to one spreadsheet file during
// a sync run.
type SyncFileOutcome struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
	Error    string `json:"error,omitempty"`
}
