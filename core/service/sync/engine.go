// Package sync lists spreadsheet blobs in a generation folder, streams
// rows through the row mapper, deduplicates, batch inserts, and
// persists a resume token.
package sync

import (
	"context"
	"sort"
	"time"

	"github.com/jpmarichal/ccmwf-go/core/domain"
	"github.com/jpmarichal/ccmwf-go/core/port/out"
	"github.com/jpmarichal/ccmwf-go/core/service/rowmapper"
	"github.com/jpmarichal/ccmwf-go/pkg/apperr"
	"github.com/jpmarichal/ccmwf-go/pkg/logger"
	"github.com/jpmarichal/ccmwf-go/pkg/metrics"
	"github.com/jpmarichal/ccmwf-go/pkg/snowflake"
)

const batchSize = 50

// Engine exclusively owns SyncState per generation_date: the
// TryLock/Unlock pair enforces the at-most-one-sync-per-generation
// concurrency rule.
type Engine struct {
	Store      out.ObjectStore
	Records    out.MissionaryRecordRepository
	States     out.SyncStateRepository
	Spreadsheet out.SpreadsheetReader
	Events     out.EventBus
	BranchID   string
}

// Run executes the sync algorithm end to end for one generation folder.
func (e *Engine) Run(ctx context.Context, gen domain.GenerationDate, folderID string, force bool) (domain.SyncReport, error) {
	locked, err := e.States.TryLock(ctx, gen)
	if err != nil {
		return domain.SyncReport{}, err
	}
	if !locked {
		return domain.SyncReport{}, apperr.SyncInProgress(string(gen))
	}
	defer e.States.Unlock(ctx, gen)

	start := time.Now()

	state, existed, err := e.States.Get(ctx, gen)
	if err != nil {
		return domain.SyncReport{}, err
	}
	if !existed {
		state = domain.SyncState{GenerationDate: gen}
	}
	if force {
		state.Reset()
	}

	entries, err := e.Store.ListFolderFiles(ctx, folderID)
	if err != nil {
		return domain.SyncReport{}, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	skipUntilSeen := state.LastProcessedFileID != ""
	report := domain.SyncReport{GenerationDate: gen, CorrelationID: snowflake.NextIDString()}

	for _, entry := range entries {
		if skipUntilSeen {
			if entry.ID == state.LastProcessedFileID {
				skipUntilSeen = false
			}
			continue
		}

		outcome, err := e.syncFile(ctx, entry)
		report.Files = append(report.Files, outcome)
		report.Inserted += outcome.Inserted
		report.Skipped += outcome.Skipped

		if err != nil {
			state.ContinuationToken = domain.ContinueAt(entry.ID)
			state.UpdatedAt = time.Now().UTC()
			if saveErr := e.States.Save(ctx, state); saveErr != nil {
				logger.WithError(saveErr).Error("failed to persist sync state after batch failure")
			}
			report.ContinuationToken = state.ContinuationToken
			report.DurationSeconds = time.Since(start).Seconds()
			return report, err
		}

		state.LastProcessedFileID = entry.ID
		state.UpdatedAt = time.Now().UTC()
		if err := e.States.Save(ctx, state); err != nil {
			return report, err
		}
	}

	if err := e.States.Delete(ctx, gen); err != nil {
		logger.WithError(err).Warn("failed to delete completed sync state")
	}
	e.Events.PublishDatasetInvalidated(ctx, out.DatasetInvalidated{
		GenerationDate: string(gen),
		BranchID:       e.BranchID,
	})

	report.DurationSeconds = time.Since(start).Seconds()
	report.ContinuationToken = domain.NoContinuation()
	return report, nil
}

func (e *Engine) syncFile(ctx context.Context, entry out.FolderEntry) (domain.SyncFileOutcome, error) {
	outcome := domain.SyncFileOutcome{FileID: entry.ID, FileName: entry.Name}

	blob, err := e.Store.DownloadFile(ctx, entry.ID)
	if err != nil {
		outcome.Error = "drive_download_failed"
		return outcome, apperr.Wrap(err, "drive_download_failed", "failed to download spreadsheet", 502)
	}

	rows, err := e.Spreadsheet.ReadRows(blob)
	if err != nil {
		outcome.Error = "excel_read_failed"
		return outcome, apperr.Wrap(err, "excel_read_failed", "failed to read spreadsheet", 500)
	}

	now := time.Now().UTC()
	var records []domain.MissionaryRecord
	for _, row := range rows {
		record, errs := rowmapper.MapRow(row, now)
		if len(errs) > 0 {
			continue
		}
		records = append(records, record)
	}

	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		ids := make([]int, len(batch))
		for i, r := range batch {
			ids[i] = r.ID
		}
		existing, err := e.Records.ExistingIDs(ctx, ids)
		if err != nil {
			outcome.Error = "db_insert_failed"
			return outcome, apperr.DBInsertFailed(err)
		}

		var fresh []domain.MissionaryRecord
		seen := make(map[int]bool, len(batch))
		for _, r := range batch {
			if existing[r.ID] || seen[r.ID] {
				outcome.Skipped++
				continue
			}
			seen[r.ID] = true
			fresh = append(fresh, r)
		}

		batchStart := time.Now()
		inserted, err := e.Records.InsertBatch(ctx, fresh)
		metrics.RecordLatency("sync.batch_insert", time.Since(batchStart))
		if err != nil {
			outcome.Error = "db_insert_failed"
			return outcome, apperr.DBInsertFailed(err)
		}
		outcome.Inserted += inserted
	}

	return outcome, nil
}
