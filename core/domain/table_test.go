package domain

import "testing"

func TestGenerationDateIsValid(t *testing.T) {
	tests := []struct {
		value GenerationDate
		valid bool
	}{
		{"20260730", true},
		{"2026073", false},
		{"202607301", false},
		{"", false},
		{"abcdefgh", false},
	}
	for _, tt := range tests {
		if got := tt.value.IsValid(); got != tt.valid {
			t.Errorf("GenerationDate(%q).IsValid() = %v, want %v", tt.value, got, tt.valid)
		}
	}
}

func TestGenerationDateString(t *testing.T) {
	if got := GenerationDate("20260730").String(); got != "20260730" {
		t.Errorf("String() = %q, want 20260730", got)
	}
}

func TestNewRowPadsMissingCellsWithEmptyString(t *testing.T) {
	headers := []string{"id", "name", "district"}
	row := NewRow(headers, []string{"1", "Alice"})

	if row.Cells["id"] != "1" || row.Cells["name"] != "Alice" {
		t.Errorf("row.Cells = %+v, want id=1 name=Alice", row.Cells)
	}
	if v, ok := row.Cells["district"]; !ok || v != "" {
		t.Errorf("district cell = (%q, %v), want empty string present", v, ok)
	}
}

func TestNewRowEveryHeaderPresent(t *testing.T) {
	headers := []string{"a", "b"}
	row := NewRow(headers, []string{"1", "2", "3"})

	if len(row.Cells) != len(headers) {
		t.Errorf("len(Cells) = %d, want %d (keys(row) == headers invariant)", len(row.Cells), len(headers))
	}
}
