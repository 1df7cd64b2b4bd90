package in

import (
	"context"

	"github.com/jpmarichal/ccmwf-go/core/domain"
)

// OrchestratorService is the inbound port: the three operations the
// HTTP surface triggers.
type OrchestratorService interface {
	// ProcessIncoming lists unprocessed mailbox messages and, for every
	// message found, validates and uploads its attachments, aggregating
	// per-message outcomes. Idempotent per message_id: a repeated call
	// after a message was marked processed is a no-op for that message.
	ProcessIncoming(ctx context.Context) (domain.CycleReport, error)

	// SyncGeneration runs the sync engine for one generation folder.
	// Idempotent per (generation_date, folder_id): a repeated call with
	// unchanged inputs and force=false resumes or no-ops rather than
	// re-inserting.
	SyncGeneration(ctx context.Context, gen domain.GenerationDate, folderID string, force bool) (domain.SyncReport, error)

	// SearchMessages is a debug read-through to the mailbox.
	SearchMessages(ctx context.Context, query string) ([]domain.IncomingMessage, error)
}
