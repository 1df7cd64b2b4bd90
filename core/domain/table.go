package domain

import "regexp"

// GenerationDate is the 8-character YYYYMMDD form used as folder name
// and partition key for downstream state. Validate with IsValid before
// trusting a value sourced from parsing.
type GenerationDate string

var generationDatePattern = regexp.MustCompile(`^\d{8}$`)

// IsValid reports whether g has the shape of a generation date. It does
// not confirm the value is a real calendar date; callers that derive a
// GenerationDate from parsed digits should validate calendar-ness at
// construction time instead.
func (g GenerationDate) IsValid() bool {
	return generationDatePattern.MatchString(string(g))
}

func (g GenerationDate) String() string {
	return string(g)
}

// ParsedTable is the result of extracting the first table from a mixed
// text/HTML body. Invariant: for every row r, keys(r) == headers as
// sets; rows are produced only through NewRow, which enforces this.
type ParsedTable struct {
	Headers    []string
	Rows       []TableRow
	ExtraTexts []string
}

// TableRow is a single row zipped against ParsedTable.Headers. Cells is
// keyed by header name; every header is present, short rows are padded
// with empty strings by the parser before NewRow is called.
type TableRow struct {
	Cells map[string]string
}

// NewRow builds a TableRow from header-aligned values, enforcing the
// keys(row) == headers invariant that callers rely on.
func NewRow(headers []string, values []string) TableRow {
	cells := make(map[string]string, len(headers))
	for i, h := range headers {
		if i < len(values) {
			cells[h] = values[i]
		} else {
			cells[h] = ""
		}
	}
	return TableRow{Cells: cells}
}

// TableError is a single table-content error code emitted during
// parsing or mapping, e.g. "row_overflow:3" or "column_missing:district".
type TableError string
