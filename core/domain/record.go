package domain

import "time"

// MissionaryRecord is the row-mapper's output: 34 fields sourced from
// spreadsheet columns 0-34 (column 8 is unused in the source sheet, so
// there is no Treatment field), plus three service-filled fields
// (Active, CreatedAt, UpdatedAt).
//
// Column indices below refer to the 0-indexed spreadsheet mapping the
// row mapper reads from; they are documented here only to keep the
// struct field order traceable back to that mapping.
type MissionaryRecord struct {
	ID                 int    // 0
	DistrictID         string // 1
	Type               string // 2
	Branch             string // 3
	District           string // 4
	Country            string // 5
	ListNumber         string // 6
	CompanionshipNumber string // 7
	// column 8 unused: Treatment stays absent.
	Name               string     // 9
	Companion          string     // 10
	AssignedMission    string     // 11
	Stake              string     // 12
	Lodging            string     // 13
	Photo              string     // 14
	Arrival            *time.Time // 15
	Departure          *time.Time // 16
	Generation         string     // 17
	Comments           string     // 18
	Endowed            bool       // 19
	BirthDate          *time.Time // 20
	PhotoTaken         bool       // 21
	Passport           bool       // 22
	PassportFolio      string     // 23
	FM                 string     // 24
	IPad               bool       // 25
	Closet             string     // 26
	SecondaryArrival   *time.Time // 27
	PDay               string     // 28
	Host               bool       // 29
	ThreeWeeks         bool       // 30
	Device             bool       // 31
	MissionEmail       string     // 32
	PersonalEmail      string     // 33
	InPersonDate       *time.Time // 34 (D/M/YYYY on the sheet)

	// Service-filled (indices 35-37 in the mapping); not read from the
	// sheet.
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NextBirthday returns the next occurrence of BirthDate's month/day on
// or after the given reference time, or nil if BirthDate is unset.
// UpcomingBirthdays filtering uses this to avoid matching birth year.
func (r MissionaryRecord) NextBirthday(ref time.Time) *time.Time {
	if r.BirthDate == nil {
		return nil
	}
	b := *r.BirthDate
	next := time.Date(ref.Year(), b.Month(), b.Day(), 0, 0, 0, 0, ref.Location())
	if next.Before(ref) {
		next = next.AddDate(1, 0, 0)
	}
	return &next
}
