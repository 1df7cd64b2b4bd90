package dataset

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jpmarichal/ccmwf-go/core/domain"
)

// fakeRepo is a minimal in-memory out.MissionaryRecordRepository stand-in
// used to drive pipeline tests without a database.
type fakeRepo struct {
	branchGen     []domain.MissionaryRecord
	activeArrival []domain.MissionaryRecord
	active        []domain.MissionaryRecord
}

func (f *fakeRepo) ExistingIDs(ctx context.Context, ids []int) (map[int]bool, error) {
	return nil, nil
}

func (f *fakeRepo) InsertBatch(ctx context.Context, records []domain.MissionaryRecord) (int, error) {
	return 0, nil
}

func (f *fakeRepo) ListForBranchAndGeneration(ctx context.Context, branchIDs []string, gen domain.GenerationDate) ([]domain.MissionaryRecord, error) {
	return f.branchGen, nil
}

func (f *fakeRepo) ListActiveWithArrivalBetween(ctx context.Context, branchID string, from, to time.Time) ([]domain.MissionaryRecord, error) {
	return f.activeArrival, nil
}

func (f *fakeRepo) ListActive(ctx context.Context, branchID string) ([]domain.MissionaryRecord, error) {
	return f.active, nil
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRunTemplateMethodProducesMetadata(t *testing.T) {
	repo := &fakeRepo{branchGen: []domain.MissionaryRecord{
		{ID: 1, District: "Norte"},
		{ID: 2, District: "Norte"},
	}}
	p := &BranchSummaryPipeline{Repo: repo, AllowedBranches: []string{"b1"}, Generation: "20250703"}

	result, meta, err := Run(context.Background(), p, "b1", "20250703")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if meta.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", meta.RowCount)
	}
	if meta.CacheKey != "branch_summary:b1:20250703" {
		t.Errorf("CacheKey = %q, want branch_summary:b1:20250703", meta.CacheKey)
	}
	summary, ok := result.(domain.BranchSummary)
	if !ok {
		t.Fatalf("result type = %T, want domain.BranchSummary", result)
	}
	if summary.TotalMissionaries != 2 {
		t.Errorf("TotalMissionaries = %d, want 2", summary.TotalMissionaries)
	}
}

func TestSerializeRoundTrips(t *testing.T) {
	in := domain.BranchSummary{BranchID: "b1", GenerationDate: "20250703", TotalMissionaries: 3}
	payload, err := Serialize(in)
	if err != nil {
		t.Fatalf("Serialize() error = %v", err)
	}
	var out domain.BranchSummary
	if err := json.Unmarshal(payload, &out); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if out.BranchID != in.BranchID || out.TotalMissionaries != in.TotalMissionaries {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

func TestBranchSummaryPipelineGroupsByDistrict(t *testing.T) {
	arrival1 := mustDate("2025-06-01")
	arrival2 := mustDate("2025-05-01")
	departure := mustDate("2025-07-01")

	repo := &fakeRepo{branchGen: []domain.MissionaryRecord{
		{ID: 1, District: "Norte", Arrival: &arrival1, Departure: &departure},
		{ID: 2, District: "Norte", Arrival: &arrival2},
		{ID: 3, District: "Sur"},
	}}
	p := &BranchSummaryPipeline{Repo: repo, AllowedBranches: []string{"b1"}, Generation: "20250703"}

	rows, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	result, err := p.Transform(rows)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	summary := result.(domain.BranchSummary)
	if summary.TotalMissionaries != 3 {
		t.Fatalf("TotalMissionaries = %d, want 3", summary.TotalMissionaries)
	}
	if len(summary.Districts) != 2 {
		t.Fatalf("expected 2 districts, got %d", len(summary.Districts))
	}

	var norte domain.DistrictKPI
	for _, d := range summary.Districts {
		if d.District == "Norte" {
			norte = d
		}
	}
	if norte.Count != 2 {
		t.Errorf("Norte count = %d, want 2", norte.Count)
	}
	if norte.FirstArrival == nil || !norte.FirstArrival.Equal(arrival2) {
		t.Errorf("expected earliest arrival %v, got %v", arrival2, norte.FirstArrival)
	}
}

func TestUpcomingArrivalsPipelineConsolidatesAndSorts(t *testing.T) {
	now := mustDate("2025-07-01")
	a1 := mustDate("2025-07-05")
	a2 := mustDate("2025-07-03")
	dep := mustDate("2025-08-01")

	repo := &fakeRepo{activeArrival: []domain.MissionaryRecord{
		{ID: 1, District: "Norte", Arrival: &a1},
		{ID: 2, District: "Norte", Arrival: &a1, Departure: &dep},
		{ID: 3, District: "Sur", Arrival: &a2},
		{ID: 4, Arrival: nil}, // no arrival: excluded
	}}
	p := &UpcomingArrivalsPipeline{Repo: repo, BranchID: "b1", Days: 30, Now: now}

	rows, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	result, err := p.Transform(rows)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	arrivals := result.([]domain.UpcomingArrival)
	if len(arrivals) != 2 {
		t.Fatalf("expected 2 consolidated groups, got %d", len(arrivals))
	}
	// Sorted by date then district: Sur (07-03) before Norte (07-05).
	if arrivals[0].District != "Sur" || arrivals[1].District != "Norte" {
		t.Errorf("unexpected order: %+v", arrivals)
	}
	if arrivals[1].Count != 2 {
		t.Errorf("expected Norte group consolidated to count 2, got %d", arrivals[1].Count)
	}
	if arrivals[1].MaxDeparture == nil || !arrivals[1].MaxDeparture.Equal(dep) {
		t.Errorf("expected max departure carried over, got %v", arrivals[1].MaxDeparture)
	}
}

func TestUpcomingBirthdaysPipelineFiltersWindowAndSorts(t *testing.T) {
	now := mustDate("2025-07-01")
	bdayA := mustDate("1990-07-10")
	bdayB := mustDate("1985-07-05")
	bdayOutside := mustDate("1990-09-01")

	repo := &fakeRepo{active: []domain.MissionaryRecord{
		{ID: 1, Name: "Zack", BirthDate: &bdayA},
		{ID: 2, Name: "Ana", BirthDate: &bdayB},
		{ID: 3, Name: "Outside", BirthDate: &bdayOutside},
	}}
	p := &UpcomingBirthdaysPipeline{Repo: repo, BranchID: "b1", Days: 14, Now: now}

	rows, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	result, err := p.Transform(rows)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	bdays := result.([]domain.UpcomingBirthday)
	if len(bdays) != 2 {
		t.Fatalf("expected 2 birthdays within window, got %d: %+v", len(bdays), bdays)
	}
	// Ana's (07-05) comes before Zack's (07-10).
	if bdays[0].Name != "Ana" || bdays[1].Name != "Zack" {
		t.Errorf("unexpected order: %+v", bdays)
	}
}
