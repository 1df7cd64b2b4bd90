package rowmapper

import (
	"testing"
	"time"
)

func makeCells(overrides map[int]string) []string {
	cells := make([]string, 35)
	cells[colID] = "123"
	cells[colName] = "Juan Perez"
	cells[colDistrict] = "Norte"
	cells[colBranch] = "Rama 1"
	for i, v := range overrides {
		cells[i] = v
	}
	return cells
}

func TestMapRowValid(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	cells := makeCells(map[int]string{
		colArrival:   "2025-07-03",
		colEndowed:   "verdadero",
		colIPad:      "x",
	})

	rec, errs := MapRow(cells, now)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if rec.ID != 123 {
		t.Errorf("ID = %d, want 123", rec.ID)
	}
	if rec.Name != "Juan Perez" {
		t.Errorf("Name = %q, want Juan Perez", rec.Name)
	}
	if !rec.Endowed {
		t.Error("expected Endowed = true")
	}
	if !rec.IPad {
		t.Error("expected IPad = true")
	}
	if rec.Arrival == nil || rec.Arrival.Format("2006-01-02") != "2025-07-03" {
		t.Errorf("Arrival = %v, want 2025-07-03", rec.Arrival)
	}
	if !rec.Active {
		t.Error("expected Active = true")
	}
	if !rec.CreatedAt.Equal(now) || !rec.UpdatedAt.Equal(now) {
		t.Error("expected CreatedAt/UpdatedAt stamped with now")
	}
}

func TestMapRowEmptyRow(t *testing.T) {
	cells := make([]string, 35)
	_, errs := MapRow(cells, time.Now())
	if len(errs) != 1 || errs[0] != "row_empty" {
		t.Fatalf("expected row_empty, got %v", errs)
	}
}

func TestMapRowMissingID(t *testing.T) {
	cells := makeCells(map[int]string{colID: ""})
	_, errs := MapRow(cells, time.Now())
	if !containsCode(errs, "id_missing") {
		t.Errorf("expected id_missing, got %v", errs)
	}
}

func TestMapRowNonNumericID(t *testing.T) {
	cells := makeCells(map[int]string{colID: "abc"})
	_, errs := MapRow(cells, time.Now())
	if !containsCode(errs, "id_missing") {
		t.Errorf("expected id_missing for non-numeric ID, got %v", errs)
	}
}

func TestMapRowMissingName(t *testing.T) {
	cells := makeCells(map[int]string{colName: ""})
	_, errs := MapRow(cells, time.Now())
	if !containsCode(errs, "name_missing") {
		t.Errorf("expected name_missing, got %v", errs)
	}
}

func TestMapRowInvalidDates(t *testing.T) {
	cells := makeCells(map[int]string{
		colArrival:   "not-a-date",
		colDeparture: "32/13/2025",
	})
	_, errs := MapRow(cells, time.Now())
	if !containsCode(errs, "date_invalid:arrival") {
		t.Errorf("expected date_invalid:arrival, got %v", errs)
	}
	if !containsCode(errs, "date_invalid:departure") {
		t.Errorf("expected date_invalid:departure, got %v", errs)
	}
}

func TestMapRowOptionalDateAbsentIsNotAnError(t *testing.T) {
	cells := makeCells(map[int]string{colBirthDate: ""})
	rec, errs := MapRow(cells, time.Now())
	if containsCode(errs, "date_invalid:birth_date") {
		t.Errorf("empty optional date should not error, got %v", errs)
	}
	if rec.BirthDate != nil {
		t.Errorf("expected nil BirthDate, got %v", rec.BirthDate)
	}
}

func containsCode(errs []string, code string) bool {
	for _, e := range errs {
		if e == code {
			return true
		}
	}
	return false
}
