package htmlparse

import "testing"

func TestDeriveGenerationDatePlainBody(t *testing.T) {
	gen, ok := DeriveGenerationDate("Generación del 3 de julio de 2025", "", nil)
	if !ok {
		t.Fatal("expected a match")
	}
	if gen != "20250703" {
		t.Errorf("got %q, want 20250703", gen)
	}
}

func TestDeriveGenerationDateUnaccentedMonth(t *testing.T) {
	gen, ok := DeriveGenerationDate("Generacion del 15 de setiembre de 2024", "", nil)
	if !ok {
		t.Fatal("expected a match")
	}
	if gen != "20240915" {
		t.Errorf("got %q, want 20240915", gen)
	}
}

func TestDeriveGenerationDateFallsBackToHTML(t *testing.T) {
	gen, ok := DeriveGenerationDate("", "<p>Generación del 1 de enero de 2026</p>", nil)
	if !ok {
		t.Fatal("expected a match from HTML body")
	}
	if gen != "20260101" {
		t.Errorf("got %q, want 20260101", gen)
	}
}

func TestDeriveGenerationDateFallsBackToExtraTexts(t *testing.T) {
	gen, ok := DeriveGenerationDate("no date here", "<p>no date here either</p>",
		[]string{"random", "Generación del 25 de diciembre de 2025"})
	if !ok {
		t.Fatal("expected a match from extra texts")
	}
	if gen != "20251225" {
		t.Errorf("got %q, want 20251225", gen)
	}
}

func TestDeriveGenerationDatePrefersPlainOverHTML(t *testing.T) {
	gen, ok := DeriveGenerationDate(
		"Generación del 1 de enero de 2020",
		"<p>Generación del 2 de febrero de 2021</p>",
		nil,
	)
	if !ok {
		t.Fatal("expected a match")
	}
	if gen != "20200101" {
		t.Errorf("plain body should win, got %q", gen)
	}
}

func TestDeriveGenerationDateNoMatch(t *testing.T) {
	_, ok := DeriveGenerationDate("nothing relevant", "<p>nothing relevant</p>", []string{"also nothing"})
	if ok {
		t.Error("expected no match")
	}
}

func TestDeriveGenerationDateInvalidDay(t *testing.T) {
	_, ok := DeriveGenerationDate("Generación del 35 de julio de 2025", "", nil)
	if ok {
		t.Error("expected day out of range to be rejected")
	}
}

func TestDeriveGenerationDateUnknownMonth(t *testing.T) {
	_, ok := DeriveGenerationDate("Generación del 3 de nosuchmonth de 2025", "", nil)
	if ok {
		t.Error("expected unknown month to be rejected")
	}
}
