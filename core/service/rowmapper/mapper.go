// Package rowmapper maps positional spreadsheet rows, header row
// already removed, to MissionaryRecord values.
package rowmapper

import (
	"strconv"
	"strings"
	"time"

	"github.com/jpmarichal/ccmwf-go/core/domain"
	"github.com/jpmarichal/ccmwf-go/core/service/normalize"
)

// Column indices per the spreadsheet mapping. Index 8 is unused
// (treatment stays absent).
const (
	colID = iota
	colDistrictID
	colType
	colBranch
	colDistrict
	colCountry
	colListNumber
	colCompanionshipNumber
	colUnused
	colName
	colCompanion
	colAssignedMission
	colStake
	colLodging
	colPhoto
	colArrival
	colDeparture
	colGeneration
	colComments
	colEndowed
	colBirthDate
	colPhotoTaken
	colPassport
	colPassportFolio
	colFM
	colIPad
	colCloset
	colSecondaryArrival
	colPDay
	colHost
	colThreeWeeks
	colDevice
	colMissionEmail
	colPersonalEmail
	colInPersonDate
)

// MapRow converts one positional row into a MissionaryRecord plus any
// row-level validation codes. now is the mapper's invocation instant,
// stamped onto CreatedAt/UpdatedAt.
func MapRow(cells []string, now time.Time) (domain.MissionaryRecord, []string) {
	get := func(idx int) string {
		if idx < 0 || idx >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[idx])
	}

	var errs []string
	if allEmpty(cells) {
		return domain.MissionaryRecord{}, []string{"row_empty"}
	}

	id, idErr := strconv.Atoi(get(colID))
	if idErr != nil || id <= 0 {
		errs = append(errs, "id_missing")
	}

	name := get(colName)
	if name == "" {
		errs = append(errs, "name_missing")
	}

	arrival, arrivalErr := optionalDate(get(colArrival))
	if arrivalErr {
		errs = append(errs, "date_invalid:arrival")
	}
	departure, departureErr := optionalDate(get(colDeparture))
	if departureErr {
		errs = append(errs, "date_invalid:departure")
	}
	birthDate, birthErr := optionalDate(get(colBirthDate))
	if birthErr {
		errs = append(errs, "date_invalid:birth_date")
	}
	secondaryArrival, secondaryErr := optionalDate(get(colSecondaryArrival))
	if secondaryErr {
		errs = append(errs, "date_invalid:secondary_arrival")
	}
	inPersonDate, inPersonErr := optionalDate(get(colInPersonDate))
	if inPersonErr {
		errs = append(errs, "date_invalid:in_person_date")
	}

	record := domain.MissionaryRecord{
		ID:                  id,
		DistrictID:          get(colDistrictID),
		Type:                get(colType),
		Branch:              get(colBranch),
		District:            get(colDistrict),
		Country:             get(colCountry),
		ListNumber:          get(colListNumber),
		CompanionshipNumber: get(colCompanionshipNumber),
		Name:                name,
		Companion:           get(colCompanion),
		AssignedMission:     get(colAssignedMission),
		Stake:               get(colStake),
		Lodging:             get(colLodging),
		Photo:               get(colPhoto),
		Arrival:             arrival,
		Departure:           departure,
		Generation:          get(colGeneration),
		Comments:            get(colComments),
		Endowed:             normalize.CoerceBool(get(colEndowed)),
		BirthDate:           birthDate,
		PhotoTaken:          normalize.CoerceBool(get(colPhotoTaken)),
		Passport:            normalize.CoerceBool(get(colPassport)),
		PassportFolio:       get(colPassportFolio),
		FM:                  get(colFM),
		IPad:                normalize.CoerceBool(get(colIPad)),
		Closet:              get(colCloset),
		SecondaryArrival:    secondaryArrival,
		PDay:                get(colPDay),
		Host:                normalize.CoerceBool(get(colHost)),
		ThreeWeeks:          normalize.CoerceBool(get(colThreeWeeks)),
		Device:              normalize.CoerceBool(get(colDevice)),
		MissionEmail:        get(colMissionEmail),
		PersonalEmail:       get(colPersonalEmail),
		InPersonDate:        inPersonDate,

		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return record, errs
}

func optionalDate(raw string) (*time.Time, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}
	t := normalize.CoerceDateTime(raw)
	if t == nil {
		return nil, true
	}
	return t, false
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

var _ = colUnused
