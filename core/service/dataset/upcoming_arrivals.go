package dataset

import (
	"context"
	"sort"
	"time"

	"github.com/jpmarichal/ccmwf-go/core/domain"
	"github.com/jpmarichal/ccmwf-go/core/port/out"
)

// UpcomingArrivalsPipeline loads rows arriving in (today, today+N days]
// for one branch, consolidating rows sharing (date, district) by
// summing counts and taking the max departure.
type UpcomingArrivalsPipeline struct {
	Repo     out.MissionaryRecordRepository
	BranchID string
	Days     int
	Now      time.Time
}

func (p *UpcomingArrivalsPipeline) DatasetID() string { return "upcoming_arrivals" }

func (p *UpcomingArrivalsPipeline) Load(ctx context.Context) ([]domain.MissionaryRecord, error) {
	from := p.Now
	to := p.Now.AddDate(0, 0, p.Days)
	return p.Repo.ListActiveWithArrivalBetween(ctx, p.BranchID, from, to)
}

func (p *UpcomingArrivalsPipeline) Validate(rows []domain.MissionaryRecord) error {
	return nil
}

type arrivalGroupKey struct {
	date     string
	district string
}

func (p *UpcomingArrivalsPipeline) Transform(rows []domain.MissionaryRecord) (any, error) {
	groups := make(map[arrivalGroupKey]*domain.UpcomingArrival)
	var order []arrivalGroupKey

	for _, r := range rows {
		if r.Arrival == nil {
			continue
		}
		key := arrivalGroupKey{date: r.Arrival.Format("2006-01-02"), district: r.District}
		g, ok := groups[key]
		if !ok {
			g = &domain.UpcomingArrival{ArrivalDate: *r.Arrival, District: r.District}
			groups[key] = g
			order = append(order, key)
		}
		g.Count++
		if r.Departure != nil && (g.MaxDeparture == nil || r.Departure.After(*g.MaxDeparture)) {
			g.MaxDeparture = r.Departure
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].date != order[j].date {
			return order[i].date < order[j].date
		}
		return order[i].district < order[j].district
	})

	results := make([]domain.UpcomingArrival, 0, len(order))
	for _, k := range order {
		results = append(results, *groups[k])
	}
	return results, nil
}
