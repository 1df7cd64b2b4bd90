// Package scheduler runs the orchestrator's operations on a fixed
// interval in the background, supplementing the HTTP-triggered path
// with an always-on poll loop.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/jpmarichal/ccmwf-go/core/port/in"
	"github.com/jpmarichal/ccmwf-go/pkg/logger"
)

// PollScheduler periodically invokes ProcessIncoming. One run at a time:
// a slow cycle is left to finish rather than overlapped with the next
// tick.
type PollScheduler struct {
	svc      in.OrchestratorService
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPollScheduler(svc in.OrchestratorService, interval time.Duration) *PollScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &PollScheduler{svc: svc, interval: interval, ctx: ctx, cancel: cancel}
}

func (s *PollScheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.runCycle()
			}
		}
	}()
}

func (s *PollScheduler) runCycle() {
	report, err := s.svc.ProcessIncoming(s.ctx)
	if err != nil {
		logger.WithError(err).Error("scheduled process-incoming cycle failed")
		return
	}
	logger.WithField("processed", report.Processed).
		WithField("errors", report.Errors).
		Info("scheduled process-incoming cycle completed")
}

func (s *PollScheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}
