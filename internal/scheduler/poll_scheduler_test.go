package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jpmarichal/ccmwf-go/core/domain"
)

type countingOrchestrator struct {
	calls int32
}

func (c *countingOrchestrator) ProcessIncoming(ctx context.Context) (domain.CycleReport, error) {
	atomic.AddInt32(&c.calls, 1)
	return domain.CycleReport{Processed: 1}, nil
}

func (c *countingOrchestrator) SyncGeneration(ctx context.Context, gen domain.GenerationDate, folderID string, force bool) (domain.SyncReport, error) {
	return domain.SyncReport{}, nil
}

func (c *countingOrchestrator) SearchMessages(ctx context.Context, query string) ([]domain.IncomingMessage, error) {
	return nil, nil
}

func TestPollSchedulerInvokesProcessIncomingOnEveryTick(t *testing.T) {
	svc := &countingOrchestrator{}
	s := NewPollScheduler(svc, 5*time.Millisecond)

	s.Start()
	time.Sleep(40 * time.Millisecond)
	s.Stop()

	if atomic.LoadInt32(&svc.calls) < 2 {
		t.Errorf("calls = %d, want at least 2 ticks to have fired", svc.calls)
	}
}

func TestPollSchedulerStopHaltsFurtherTicks(t *testing.T) {
	svc := &countingOrchestrator{}
	s := NewPollScheduler(svc, 5*time.Millisecond)

	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	countAtStop := atomic.LoadInt32(&svc.calls)
	time.Sleep(30 * time.Millisecond)
	countAfterWait := atomic.LoadInt32(&svc.calls)

	if countAfterWait != countAtStop {
		t.Errorf("calls kept increasing after Stop(): %d -> %d", countAtStop, countAfterWait)
	}
}

func TestPollSchedulerSurvivesProcessIncomingError(t *testing.T) {
	svc := &erroringOrchestrator{}
	s := NewPollScheduler(svc, 5*time.Millisecond)

	s.Start()
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	if atomic.LoadInt32(&svc.calls) < 1 {
		t.Error("expected at least one tick despite ProcessIncoming returning an error")
	}
}

type erroringOrchestrator struct {
	calls int32
}

func (e *erroringOrchestrator) ProcessIncoming(ctx context.Context) (domain.CycleReport, error) {
	atomic.AddInt32(&e.calls, 1)
	return domain.CycleReport{}, context.DeadlineExceeded
}

func (e *erroringOrchestrator) SyncGeneration(ctx context.Context, gen domain.GenerationDate, folderID string, force bool) (domain.SyncReport, error) {
	return domain.SyncReport{}, nil
}

func (e *erroringOrchestrator) SearchMessages(ctx context.Context, query string) ([]domain.IncomingMessage, error) {
	return nil, nil
}
