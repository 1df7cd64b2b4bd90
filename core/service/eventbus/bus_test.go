package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/jpmarichal/ccmwf-go/core/port/out"
)

func TestPublishDeliversInRegistrationOrder(t *testing.T) {
	bus := New()
	var order []int

	bus.Subscribe(func(ctx context.Context, evt out.DatasetInvalidated) error {
		order = append(order, 1)
		return nil
	})
	bus.Subscribe(func(ctx context.Context, evt out.DatasetInvalidated) error {
		order = append(order, 2)
		return nil
	})
	bus.Subscribe(func(ctx context.Context, evt out.DatasetInvalidated) error {
		order = append(order, 3)
		return nil
	})

	bus.PublishDatasetInvalidated(context.Background(), out.DatasetInvalidated{BranchID: "b1", GenerationDate: "20250703"})

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("delivery order = %v, want [1 2 3]", order)
	}
}

func TestPublishSubscriberErrorDoesNotHaltDelivery(t *testing.T) {
	bus := New()
	secondCalled := false

	bus.Subscribe(func(ctx context.Context, evt out.DatasetInvalidated) error {
		return errors.New("boom")
	})
	bus.Subscribe(func(ctx context.Context, evt out.DatasetInvalidated) error {
		secondCalled = true
		return nil
	})

	bus.PublishDatasetInvalidated(context.Background(), out.DatasetInvalidated{})

	if !secondCalled {
		t.Error("expected second subscriber to be invoked despite first subscriber's error")
	}
}

func TestPublishWithNoSubscribers(t *testing.T) {
	bus := New()
	// Must not panic.
	bus.PublishDatasetInvalidated(context.Background(), out.DatasetInvalidated{})
}
