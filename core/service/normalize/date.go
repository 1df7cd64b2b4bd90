package normalize

import (
	"strconv"
	"strings"
	"time"
)

// CoerceDate accepts an ISO-8601 textual date, a D/M/YYYY textual date,
// or an empty value, and produces the ISO date "YYYY-MM-DD" or ok=false
// for absence. The D/M/YYYY form is always interpreted day-first,
// regardless of ambient locale: "3/7/2025" is the 3rd of July.
func CoerceDate(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", false
	}

	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t.Format("2006-01-02"), true
	}

	parts := strings.Split(v, "/")
	if len(parts) == 3 {
		day, errD := strconv.Atoi(parts[0])
		month, errM := strconv.Atoi(parts[1])
		year, errY := strconv.Atoi(parts[2])
		if errD == nil && errM == nil && errY == nil {
			t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			if int(t.Month()) == month && t.Day() == day && t.Year() == year {
				return t.Format("2006-01-02"), true
			}
		}
	}

	return "", false
}

// CoerceDateTime parses the same CoerceDate result into a *time.Time,
// for callers building domain records directly.
func CoerceDateTime(raw string) *time.Time {
	iso, ok := CoerceDate(raw)
	if !ok {
		return nil
	}
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return nil
	}
	return &t
}
