// Package eventbus implements a single-process, synchronous
// publish-subscribe bus delivering to subscribers in registration
// order.
package eventbus

import (
	"context"
	"sync"

	"github.com/jpmarichal/ccmwf-go/core/port/out"
	"github.com/jpmarichal/ccmwf-go/pkg/logger"
)

// Bus is constructed at process init and torn down on shutdown; it is
// an explicitly passed dependency rather than an ambient singleton.
type Bus struct {
	mu          sync.Mutex
	subscribers []out.Subscriber
}

func New() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(sub out.Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, sub)
}

// PublishDatasetInvalidated delivers synchronously to every subscriber
// in registration order. A subscriber error is logged with code
// "subscriber_failed" and does not stop delivery to the rest.
func (b *Bus) PublishDatasetInvalidated(ctx context.Context, evt out.DatasetInvalidated) {
	b.mu.Lock()
	subs := make([]out.Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.Unlock()

	for _, sub := range subs {
		if err := sub(ctx, evt); err != nil {
			logger.WithField("code", "subscriber_failed").WithError(err).
				Error("event subscriber failed for dataset.invalidated")
		}
	}
}
