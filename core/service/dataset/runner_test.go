package dataset

import (
	"context"
	"testing"
	"time"

	cacheadapter "github.com/jpmarichal/ccmwf-go/adapter/out/cache"
	"github.com/jpmarichal/ccmwf-go/core/domain"
)

func TestRunAllWritesEveryPipelineToCache(t *testing.T) {
	repo := &fakeRepo{
		branchGen: []domain.MissionaryRecord{{ID: 1, District: "Norte"}},
		active:    []domain.MissionaryRecord{{ID: 1, Name: "Ana"}},
	}
	store := cacheadapter.NewMemoryCache()
	runner := NewRunner(store, time.Minute)

	gen := domain.GenerationDate("20250703")
	pipelines := []Pipeline{
		&BranchSummaryPipeline{Repo: repo, AllowedBranches: []string{"b1"}, Generation: gen},
		&UpcomingArrivalsPipeline{Repo: repo, BranchID: "b1", Days: 30, Now: time.Now()},
		&UpcomingBirthdaysPipeline{Repo: repo, BranchID: "b1", Days: 30, Now: time.Now()},
	}

	if err := runner.RunAll(context.Background(), "b1", gen, pipelines); err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}

	for _, p := range pipelines {
		key := domain.CacheKey(p.DatasetID(), "b1", gen)
		if _, ok, _ := store.Get(context.Background(), key); !ok {
			t.Errorf("expected cache entry for %s", key)
		}
	}
}

func TestRunAllContinuesOnErrorFromOnePipeline(t *testing.T) {
	repo := &fakeRepo{branchGen: []domain.MissionaryRecord{{ID: 1, District: "Norte"}}}
	store := cacheadapter.NewMemoryCache()
	runner := NewRunner(store, time.Minute)

	gen := domain.GenerationDate("20250703")
	pipelines := []Pipeline{
		&BranchSummaryPipeline{Repo: repo, AllowedBranches: []string{"b1"}, Generation: gen},
		&failingPipeline{},
	}

	// The failing pipeline returns an error; the good one must still
	// land in the cache.
	_ = runner.RunAll(context.Background(), "b1", gen, pipelines)

	key := domain.CacheKey("branch_summary", "b1", gen)
	if _, ok, _ := store.Get(context.Background(), key); !ok {
		t.Error("expected branch_summary to be cached despite sibling failure")
	}
}

type failingPipeline struct{}

func (f *failingPipeline) DatasetID() string { return "failing" }
func (f *failingPipeline) Load(ctx context.Context) ([]domain.MissionaryRecord, error) {
	return nil, context.DeadlineExceeded
}
func (f *failingPipeline) Validate(rows []domain.MissionaryRecord) error { return nil }
func (f *failingPipeline) Transform(rows []domain.MissionaryRecord) (any, error) {
	return nil, nil
}
