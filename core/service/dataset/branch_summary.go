package dataset

import (
	"context"

	"github.com/jpmarichal/ccmwf-go/core/domain"
	"github.com/jpmarichal/ccmwf-go/core/port/out"
)

// BranchSummaryPipeline groups rows by district and computes
// first-arrival/last-departure/totals, scoped to the branches the
// configured process instance is allowed to see.
type BranchSummaryPipeline struct {
	Repo            out.MissionaryRecordRepository
	AllowedBranches []string
	Generation      domain.GenerationDate
}

func (p *BranchSummaryPipeline) DatasetID() string { return "branch_summary" }

func (p *BranchSummaryPipeline) Load(ctx context.Context) ([]domain.MissionaryRecord, error) {
	return p.Repo.ListForBranchAndGeneration(ctx, p.AllowedBranches, p.Generation)
}

// Validate accepts every row set, an empty one included. The
// total_missionaries == sum(district_counts) check runs in Transform,
// via NewBranchSummary and BranchSummary.Validate.
func (p *BranchSummaryPipeline) Validate(rows []domain.MissionaryRecord) error {
	return nil
}

func (p *BranchSummaryPipeline) Transform(rows []domain.MissionaryRecord) (any, error) {
	byDistrict := make(map[string]*domain.DistrictKPI)
	var order []string

	for _, r := range rows {
		kpi, ok := byDistrict[r.District]
		if !ok {
			kpi = &domain.DistrictKPI{District: r.District}
			byDistrict[r.District] = kpi
			order = append(order, r.District)
		}
		kpi.Count++
		if r.Arrival != nil && (kpi.FirstArrival == nil || r.Arrival.Before(*kpi.FirstArrival)) {
			kpi.FirstArrival = r.Arrival
		}
		if r.Departure != nil && (kpi.LastDeparture == nil || r.Departure.After(*kpi.LastDeparture)) {
			kpi.LastDeparture = r.Departure
		}
	}

	districts := make([]domain.DistrictKPI, 0, len(order))
	for _, d := range order {
		districts = append(districts, *byDistrict[d])
	}

	branchID := ""
	if len(p.AllowedBranches) > 0 {
		branchID = p.AllowedBranches[0]
	}
	summary, err := domain.NewBranchSummary(branchID, p.Generation, districts)
	if err != nil {
		return nil, err
	}
	if err := summary.Validate(); err != nil {
		return nil, err
	}
	return summary, nil
}
