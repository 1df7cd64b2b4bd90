package out

import (
	"context"

	"github.com/jpmarichal/ccmwf-go/core/domain"
)

// MailGateway is the mailbox outbound port: polymorphic over
// {search_unread_by_subject, fetch_message, download_attachment,
// mark_processed}. The OAuth-mediated and IMAP-mediated adapters both
// satisfy this single contract; selection is by configuration.
type MailGateway interface {
	// ListUnprocessed returns messages without the processed marker
	// whose subject contains subjectPrefix (the provider's subject
	// search); callers check the exact prefix themselves. Ordering is
	// mailbox-native; callers must not depend on it. The result is
	// finite per call.
	ListUnprocessed(ctx context.Context, subjectPrefix string) ([]domain.MessageRef, error)

	// Fetch retrieves the full message body and attachments. Returns
	// an error wrapping code "mail_fetch_failed" on transport failure.
	// Any retrying happens inside the adapter; the orchestrator records
	// the failure and moves on to the next message.
	Fetch(ctx context.Context, ref domain.MessageRef) (domain.IncomingMessage, error)

	// MarkProcessed applies the durable processed marker. Idempotent:
	// a second call on the same ref is a no-op.
	MarkProcessed(ctx context.Context, ref domain.MessageRef) error

	// Search is the debug read-through backing search_messages.
	Search(ctx context.Context, query string) ([]domain.IncomingMessage, error)
}
