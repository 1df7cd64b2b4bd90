package dataset

import (
	"context"
	"time"

	"github.com/go-pkgz/pool"

	"github.com/jpmarichal/ccmwf-go/core/domain"
	"github.com/jpmarichal/ccmwf-go/core/port/out"
	"github.com/jpmarichal/ccmwf-go/pkg/logger"
)

// job is one pipeline/scope pair the runner hands to a pool worker.
type job struct {
	pipeline Pipeline
	branchID string
	gen      domain.GenerationDate
}

// Runner rebuilds every dataset for one generation concurrently across
// dataset_id, writing each straight into the cache store so a
// subsequent GetOrLoad is a hit.
type Runner struct {
	cache out.Cache
	ttl   time.Duration
}

func NewRunner(cache out.Cache, ttl time.Duration) *Runner {
	return &Runner{cache: cache, ttl: ttl}
}

type poolWorker struct {
	runner *Runner
}

func (w *poolWorker) Do(ctx context.Context, j job) error {
	result, meta, err := Run(ctx, j.pipeline, j.branchID, j.gen)
	if err != nil {
		logger.WithError(err).WithField("dataset_id", j.pipeline.DatasetID()).Error("dataset pipeline failed")
		return err
	}
	payload, err := Serialize(result)
	if err != nil {
		return err
	}
	return w.runner.cache.Set(ctx, meta.CacheKey, payload, w.runner.ttl)
}

// RunAll executes every pipeline concurrently, bounded to one worker
// per pipeline since three dataset_ids is the entire fan-out width.
func (r *Runner) RunAll(ctx context.Context, branchID string, gen domain.GenerationDate, pipelines []Pipeline) error {
	worker := &poolWorker{runner: r}
	group := pool.New[job](len(pipelines), worker).WithContinueOnError()

	if err := group.Go(ctx); err != nil {
		return err
	}
	for _, p := range pipelines {
		group.Submit(job{pipeline: p, branchID: branchID, gen: gen})
	}
	return group.Close(ctx)
}
