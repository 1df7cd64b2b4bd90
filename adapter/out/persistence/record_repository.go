// Package persistence provides database adapters implementing outbound
// ports against the relational missionary_records store.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jpmarichal/ccmwf-go/core/domain"
)

const recordColumns = `
	id, district_id, type, branch, district, country, list_number, companionship_number,
	name, companion, assigned_mission, stake, lodging, photo, arrival, departure,
	generation, comments, endowed, birth_date, photo_taken, passport, passport_folio,
	fm, ipad, closet, secondary_arrival, p_day, host, three_weeks, device,
	mission_email, personal_email, in_person_date, active, created_at, updated_at`

// recordRow is the db-tagged mirror of domain.MissionaryRecord; nullable
// spreadsheet-sourced timestamps use sql.NullTime since most rows never
// populate every date column.
type recordRow struct {
	ID                  int            `db:"id"`
	DistrictID          string         `db:"district_id"`
	Type                string         `db:"type"`
	Branch              string         `db:"branch"`
	District            string         `db:"district"`
	Country             string         `db:"country"`
	ListNumber          string         `db:"list_number"`
	CompanionshipNumber string         `db:"companionship_number"`
	Name                string         `db:"name"`
	Companion           string         `db:"companion"`
	AssignedMission     string         `db:"assigned_mission"`
	Stake               string         `db:"stake"`
	Lodging             string         `db:"lodging"`
	Photo               string         `db:"photo"`
	Arrival             sql.NullTime   `db:"arrival"`
	Departure           sql.NullTime   `db:"departure"`
	Generation          string         `db:"generation"`
	Comments            string         `db:"comments"`
	Endowed             bool           `db:"endowed"`
	BirthDate           sql.NullTime   `db:"birth_date"`
	PhotoTaken          bool           `db:"photo_taken"`
	Passport            bool           `db:"passport"`
	PassportFolio       string         `db:"passport_folio"`
	FM                  string         `db:"fm"`
	IPad                bool           `db:"ipad"`
	Closet              string         `db:"closet"`
	SecondaryArrival    sql.NullTime   `db:"secondary_arrival"`
	PDay                string         `db:"p_day"`
	Host                bool           `db:"host"`
	ThreeWeeks          bool           `db:"three_weeks"`
	Device              bool           `db:"device"`
	MissionEmail        string         `db:"mission_email"`
	PersonalEmail       string         `db:"personal_email"`
	InPersonDate        sql.NullTime   `db:"in_person_date"`
	Active              bool           `db:"active"`
	CreatedAt           time.Time      `db:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"`
}

func (row recordRow) toDomain() domain.MissionaryRecord {
	return domain.MissionaryRecord{
		ID:                  row.ID,
		DistrictID:          row.DistrictID,
		Type:                row.Type,
		Branch:              row.Branch,
		District:            row.District,
		Country:             row.Country,
		ListNumber:          row.ListNumber,
		CompanionshipNumber: row.CompanionshipNumber,
		Name:                row.Name,
		Companion:           row.Companion,
		AssignedMission:     row.AssignedMission,
		Stake:               row.Stake,
		Lodging:             row.Lodging,
		Photo:               row.Photo,
		Arrival:             nullTimePtr(row.Arrival),
		Departure:           nullTimePtr(row.Departure),
		Generation:          row.Generation,
		Comments:            row.Comments,
		Endowed:             row.Endowed,
		BirthDate:           nullTimePtr(row.BirthDate),
		PhotoTaken:          row.PhotoTaken,
		Passport:            row.Passport,
		PassportFolio:       row.PassportFolio,
		FM:                  row.FM,
		IPad:                row.IPad,
		Closet:              row.Closet,
		SecondaryArrival:    nullTimePtr(row.SecondaryArrival),
		PDay:                row.PDay,
		Host:                row.Host,
		ThreeWeeks:          row.ThreeWeeks,
		Device:              row.Device,
		MissionEmail:        row.MissionEmail,
		PersonalEmail:       row.PersonalEmail,
		InPersonDate:        nullTimePtr(row.InPersonDate),
		Active:              row.Active,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// RecordRepository implements out.MissionaryRecordRepository over
// PostgreSQL via sqlx, using a row-struct-plus-db-tag mapping idiom.
type RecordRepository struct {
	db *sqlx.DB
}

func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) ExistingIDs(ctx context.Context, ids []int) (map[int]bool, error) {
	existing := make(map[int]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	query := `SELECT id FROM missionary_records WHERE id = ANY($1)`
	rows, err := r.db.QueryxContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing[id] = true
	}
	return existing, rows.Err()
}

func (r *RecordRepository) InsertBatch(ctx context.Context, records []domain.MissionaryRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO missionary_records (%s)
		VALUES (:id, :district_id, :type, :branch, :district, :country, :list_number, :companionship_number,
			:name, :companion, :assigned_mission, :stake, :lodging, :photo, :arrival, :departure,
			:generation, :comments, :endowed, :birth_date, :photo_taken, :passport, :passport_folio,
			:fm, :ipad, :closet, :secondary_arrival, :p_day, :host, :three_weeks, :device,
			:mission_email, :personal_email, :in_person_date, :active, :created_at, :updated_at)`,
		strings.TrimSpace(recordColumns))

	inserted := 0
	for _, rec := range records {
		row := fromDomain(rec)
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return 0, err
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

func fromDomain(rec domain.MissionaryRecord) recordRow {
	now := time.Now().UTC()
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := rec.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}
	return recordRow{
		ID:                  rec.ID,
		DistrictID:          rec.DistrictID,
		Type:                rec.Type,
		Branch:              rec.Branch,
		District:            rec.District,
		Country:             rec.Country,
		ListNumber:          rec.ListNumber,
		CompanionshipNumber: rec.CompanionshipNumber,
		Name:                rec.Name,
		Companion:           rec.Companion,
		AssignedMission:     rec.AssignedMission,
		Stake:               rec.Stake,
		Lodging:             rec.Lodging,
		Photo:               rec.Photo,
		Arrival:             toNullTime(rec.Arrival),
		Departure:           toNullTime(rec.Departure),
		Generation:          rec.Generation,
		Comments:            rec.Comments,
		Endowed:             rec.Endowed,
		BirthDate:           toNullTime(rec.BirthDate),
		PhotoTaken:          rec.PhotoTaken,
		Passport:            rec.Passport,
		PassportFolio:       rec.PassportFolio,
		FM:                  rec.FM,
		IPad:                rec.IPad,
		Closet:              rec.Closet,
		SecondaryArrival:    toNullTime(rec.SecondaryArrival),
		PDay:                rec.PDay,
		Host:                rec.Host,
		ThreeWeeks:          rec.ThreeWeeks,
		Device:              rec.Device,
		MissionEmail:        rec.MissionEmail,
		PersonalEmail:       rec.PersonalEmail,
		InPersonDate:        toNullTime(rec.InPersonDate),
		Active:              true,
		CreatedAt:           createdAt,
		UpdatedAt:           updatedAt,
	}
}

func (r *RecordRepository) ListForBranchAndGeneration(ctx context.Context, branchIDs []string, gen domain.GenerationDate) ([]domain.MissionaryRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM missionary_records WHERE active AND branch = ANY($1) AND generation = $2`, strings.TrimSpace(recordColumns))
	var rows []recordRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(branchIDs), string(gen)); err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

func (r *RecordRepository) ListActiveWithArrivalBetween(ctx context.Context, branchID string, from, to time.Time) ([]domain.MissionaryRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM missionary_records WHERE active AND branch = $1 AND arrival > $2 AND arrival <= $3`, strings.TrimSpace(recordColumns))
	var rows []recordRow
	if err := r.db.SelectContext(ctx, &rows, query, branchID, from, to); err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

func (r *RecordRepository) ListActive(ctx context.Context, branchID string) ([]domain.MissionaryRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM missionary_records WHERE active AND branch = $1`, strings.TrimSpace(recordColumns))
	var rows []recordRow
	if err := r.db.SelectContext(ctx, &rows, query, branchID); err != nil {
		return nil, err
	}
	return toDomainSlice(rows), nil
}

func toDomainSlice(rows []recordRow) []domain.MissionaryRecord {
	records := make([]domain.MissionaryRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toDomain())
	}
	return records
}
