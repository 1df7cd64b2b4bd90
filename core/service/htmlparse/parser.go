// Package htmlparse extracts the first HTML table from a mixed
// text/HTML message body and derives the generation date that
// downstream components key their state on.
package htmlparse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jpmarichal/ccmwf-go/core/domain"
)

// ErrHTMLMissing is the table-error code emitted when the body carries
// no table element at all.
const ErrHTMLMissing domain.TableError = "html_missing"

// ParseResult bundles the extracted table with the table-content errors
// accumulated while zipping rows to headers.
type ParseResult struct {
	Table  domain.ParsedTable
	Errors []domain.TableError
}

// Parse locates the first table, disambiguates its header row, zips
// subsequent rows against the headers, and accumulates any text found
// before the header row into ExtraTexts.
func Parse(html string) ParseResult {
	if strings.TrimSpace(html) == "" {
		return ParseResult{Errors: []domain.TableError{ErrHTMLMissing}}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ParseResult{Errors: []domain.TableError{ErrHTMLMissing}}
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return ParseResult{Errors: []domain.TableError{ErrHTMLMissing}}
	}

	var extraTexts []string
	doc.Find("body").Contents().EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Is("table") {
			return false
		}
		if s.Is("*") {
			if txt := strings.TrimSpace(s.Text()); txt != "" {
				extraTexts = append(extraTexts, txt)
			}
		} else if txt := strings.TrimSpace(s.Text()); txt != "" {
			extraTexts = append(extraTexts, txt)
		}
		return true
	})

	if caption := collapseWhitespace(table.Find("caption").First().Text()); caption != "" {
		extraTexts = append(extraTexts, caption)
	}

	rows := table.Find("tr")
	headerRowIdx, headers := findHeaderRow(rows)
	if headers == nil {
		return ParseResult{
			Table:  domain.ParsedTable{ExtraTexts: extraTexts},
			Errors: []domain.TableError{ErrHTMLMissing},
		}
	}

	var tableRows []domain.TableRow
	var errs []domain.TableError
	rows.Each(func(i int, row *goquery.Selection) {
		if i < headerRowIdx {
			if txt := collapseWhitespace(strings.Join(cellTexts(row), " ")); txt != "" {
				extraTexts = append(extraTexts, txt)
			}
			return
		}
		if i == headerRowIdx {
			return
		}
		cells := cellTexts(row)
		if len(cells) > len(headers) {
			errs = append(errs, domain.TableError(overflowCode(i)))
			cells = cells[:len(headers)]
		}
		tableRows = append(tableRows, domain.NewRow(headers, cells))
	})

	return ParseResult{
		Table: domain.ParsedTable{
			Headers:    headers,
			Rows:       tableRows,
			ExtraTexts: extraTexts,
		},
		Errors: errs,
	}
}

// findHeaderRow picks the th-only row if present, else the first row
// with at least two non-empty cells.
func findHeaderRow(rows *goquery.Selection) (int, []string) {
	var fallbackIdx = -1
	var fallback []string

	var found []string
	foundIdx := -1
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		ths := row.Find("th")
		if ths.Length() > 0 && row.Find("td").Length() == 0 {
			found = normalizeHeaders(cellTexts(row, "th"))
			foundIdx = i
			return false
		}
		if fallbackIdx == -1 {
			cells := cellTexts(row)
			nonEmpty := 0
			for _, c := range cells {
				if strings.TrimSpace(c) != "" {
					nonEmpty++
				}
			}
			if nonEmpty >= 2 {
				fallback = normalizeHeaders(cells)
				fallbackIdx = i
			}
		}
		return true
	})

	if found != nil {
		return foundIdx, found
	}
	return fallbackIdx, fallback
}

func cellTexts(row *goquery.Selection, tag ...string) []string {
	sel := "td,th"
	if len(tag) > 0 {
		sel = tag[0]
	}
	var out []string
	row.Find(sel).Each(func(_ int, cell *goquery.Selection) {
		out = append(out, strings.TrimSpace(cell.Text()))
	})
	return out
}

func normalizeHeaders(raw []string) []string {
	seen := make(map[string]int, len(raw))
	out := make([]string, 0, len(raw))
	for _, h := range raw {
		h = collapseWhitespace(strings.TrimSpace(h))
		seen[h]++
		if n := seen[h]; n > 1 {
			h = h + " (" + itoa(n) + ")"
		}
		out = append(out, h)
	}
	return out
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func itoa(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func overflowCode(rowIndex int) string {
	return "row_overflow:" + itoa(rowIndex)
}
