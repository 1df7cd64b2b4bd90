package bootstrap

import (
	"context"
	"time"

	"github.com/jpmarichal/ccmwf-go/config"
	"github.com/jpmarichal/ccmwf-go/internal/scheduler"
	"github.com/jpmarichal/ccmwf-go/pkg/logger"
)

// Worker runs the background poll scheduler outside the HTTP surface.
type Worker struct {
	deps      *Dependencies
	scheduler *scheduler.PollScheduler
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewWorker(cfg *config.Config) (*Worker, func(), error) {
	logger.Init(logger.Config{Level: logger.LevelInfo, Service: "ccmwf-worker"})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		return nil, nil, err
	}

	interval := time.Duration(cfg.SchedulerIntervalMin) * time.Minute
	poll := scheduler.NewPollScheduler(deps.Orchestrator, interval)

	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{deps: deps, scheduler: poll, ctx: ctx, cancel: cancel}, cleanup, nil
}

func (w *Worker) Start() {
	if !w.deps.Config.SchedulerEnabled {
		logger.Info("scheduler disabled, worker idling")
		<-w.ctx.Done()
		return
	}
	logger.Info("starting poll scheduler")
	w.scheduler.Start()
	<-w.ctx.Done()
}

func (w *Worker) Stop() {
	w.scheduler.Stop()
	w.cancel()
}
