package domain

import (
	"fmt"
	"time"
)

// CacheKey returns the canonical "<dataset_id>:<branch_id>:<generation_date>"
// form the cache layer keys entries by.
func CacheKey(datasetID, branchID string, gen GenerationDate) string {
	return fmt.Sprintf("%s:%s:%s", datasetID, branchID, gen)
}

// DatasetMetadata accompanies every dataset a pipeline produces.
type DatasetMetadata struct {
	GenerationDate GenerationDate
	BuiltAt        time.Time
	RowCount       int
	CacheKey       string
}

// DistrictKPI is one district's contribution to a BranchSummary.
type DistrictKPI struct {
	District        string
	Count           int
	FirstArrival    *time.Time
	LastDeparture   *time.Time
}

// BranchSummary is immutable once built via NewBranchSummary, which
// sets TotalMissionaries to sum(district_counts) so the aggregate
// constraint holds by construction.
type BranchSummary struct {
	BranchID          string
	GenerationDate    GenerationDate
	Districts         []DistrictKPI
	TotalMissionaries int
}

// ErrInvalidTotalMissionaries is returned by BranchSummary.Validate when
// TotalMissionaries does not match the sum of district counts.
var ErrInvalidTotalMissionaries = fmt.Errorf("invalid_total_missionaries")

// NewBranchSummary computes TotalMissionaries as the sum of the
// district counts, so the summary it builds always satisfies the
// aggregate constraint; its error result is always nil.
func NewBranchSummary(branchID string, gen GenerationDate, districts []DistrictKPI) (BranchSummary, error) {
	sum := 0
	for _, d := range districts {
		sum += d.Count
	}
	return BranchSummary{
		BranchID:          branchID,
		GenerationDate:    gen,
		Districts:         districts,
		TotalMissionaries: sum,
	}, nil
}

// Validate re-checks the aggregate constraint, e.g. after manual
// mutation in a test fixture.
func (b BranchSummary) Validate() error {
	sum := 0
	for _, d := range b.Districts {
		sum += d.Count
	}
	if sum != b.TotalMissionaries {
		return ErrInvalidTotalMissionaries
	}
	return nil
}

// UpcomingArrival is one (date, district) group after consolidating
// rows that share the pair by summing counts and taking the max
// departure.
type UpcomingArrival struct {
	ArrivalDate   time.Time
	District      string
	Count         int
	MaxDeparture  *time.Time
}

// UpcomingBirthday is one missionary with a next-birthday within the
// configured window, ordered stably within a day by treatment then
// name.
type UpcomingBirthday struct {
	MissionaryID int
	Name         string
	NextBirthday time.Time
	Treatment    string
	District     string
}

// DatasetCacheEntry is the value the cache layer stores per key, with
// absolute expiration. A write for a key supersedes any prior entry
// for that key atomically; callers must not read-modify-write.
type DatasetCacheEntry struct {
	Key       string
	Payload   []byte
	ExpiresAt time.Time
}

// Expired reports whether the entry's TTL has elapsed as of now.
func (e DatasetCacheEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}
