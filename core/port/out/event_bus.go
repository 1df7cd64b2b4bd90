package out

import "context"

// DatasetInvalidated is the single event type the bus carries.
type DatasetInvalidated struct {
	GenerationDate string
	BranchID       string
}

// Subscriber handles one DatasetInvalidated delivery. An error does not
// stop delivery to subsequent subscribers; it is logged with code
// "subscriber_failed".
type Subscriber func(ctx context.Context, evt DatasetInvalidated) error

// EventBus is the dataset-invalidation outbound port: single-process,
// synchronous, registration-ordered delivery.
type EventBus interface {
	Subscribe(sub Subscriber)
	PublishDatasetInvalidated(ctx context.Context, evt DatasetInvalidated)
}
