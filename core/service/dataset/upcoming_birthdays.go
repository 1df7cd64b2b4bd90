package dataset

import (
	"context"
	"sort"
	"time"

	"github.com/jpmarichal/ccmwf-go/core/domain"
	"github.com/jpmarichal/ccmwf-go/core/port/out"
)

// UpcomingBirthdaysPipeline loads active rows whose derived next
// birthday falls in (today, today+N days], grouped by month then day,
// with a stable within-day order by treatment then name. Treatment is
// permanently absent on MissionaryRecord, so within-day ties fall back
// to name order alone.
type UpcomingBirthdaysPipeline struct {
	Repo     out.MissionaryRecordRepository
	BranchID string
	Days     int
	Now      time.Time
}

func (p *UpcomingBirthdaysPipeline) DatasetID() string { return "upcoming_birthdays" }

func (p *UpcomingBirthdaysPipeline) Load(ctx context.Context) ([]domain.MissionaryRecord, error) {
	return p.Repo.ListActive(ctx, p.BranchID)
}

func (p *UpcomingBirthdaysPipeline) Validate(rows []domain.MissionaryRecord) error {
	return nil
}

func (p *UpcomingBirthdaysPipeline) Transform(rows []domain.MissionaryRecord) (any, error) {
	windowEnd := p.Now.AddDate(0, 0, p.Days)

	var results []domain.UpcomingBirthday
	for _, r := range rows {
		next := r.NextBirthday(p.Now)
		if next == nil || !next.After(p.Now) || next.After(windowEnd) {
			continue
		}
		results = append(results, domain.UpcomingBirthday{
			MissionaryID: r.ID,
			Name:         r.Name,
			NextBirthday: *next,
			District:     r.District,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if !results[i].NextBirthday.Equal(results[j].NextBirthday) {
			return results[i].NextBirthday.Before(results[j].NextBirthday)
		}
		return results[i].Name < results[j].Name
	})

	return results, nil
}
