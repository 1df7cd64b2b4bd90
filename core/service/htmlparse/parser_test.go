package htmlparse

import "testing"

func TestParseMissingTable(t *testing.T) {
	result := Parse("<p>no table here</p>")
	if len(result.Errors) != 1 || result.Errors[0] != ErrHTMLMissing {
		t.Fatalf("expected ErrHTMLMissing, got %v", result.Errors)
	}
}

func TestParseEmptyBody(t *testing.T) {
	result := Parse("   ")
	if len(result.Errors) != 1 || result.Errors[0] != ErrHTMLMissing {
		t.Fatalf("expected ErrHTMLMissing for empty body, got %v", result.Errors)
	}
}

func TestParseThHeaderRow(t *testing.T) {
	html := `<html><body><p>preamble</p><table>
		<tr><th>Nombre</th><th>Distrito</th></tr>
		<tr><td>Juan</td><td>Norte</td></tr>
		<tr><td>Ana</td><td>Sur</td></tr>
	</table></body></html>`

	result := Parse(html)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Table.Headers) != 2 || result.Table.Headers[0] != "Nombre" || result.Table.Headers[1] != "Distrito" {
		t.Fatalf("unexpected headers: %v", result.Table.Headers)
	}
	if len(result.Table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Table.Rows))
	}
	if result.Table.Rows[0].Cells["Nombre"] != "Juan" {
		t.Errorf("row zip mismatch: %v", result.Table.Rows[0].Cells)
	}
	if len(result.Table.ExtraTexts) == 0 {
		t.Error("expected preamble text captured in ExtraTexts")
	}
}

func TestParseFallbackHeaderRowNoTh(t *testing.T) {
	html := `<table>
		<tr><td>Nombre</td><td>Distrito</td></tr>
		<tr><td>Juan</td><td>Norte</td></tr>
	</table>`

	result := Parse(html)
	if len(result.Table.Headers) != 2 {
		t.Fatalf("expected fallback header row detection, got %v", result.Table.Headers)
	}
	if len(result.Table.Rows) != 1 {
		t.Fatalf("expected 1 data row, got %d", len(result.Table.Rows))
	}
}

func TestParseDuplicateHeadersDisambiguated(t *testing.T) {
	html := `<table>
		<tr><th>Nombre</th><th>Nombre</th></tr>
		<tr><td>A</td><td>B</td></tr>
	</table>`

	result := Parse(html)
	if len(result.Table.Headers) != 2 {
		t.Fatalf("expected 2 headers, got %v", result.Table.Headers)
	}
	if result.Table.Headers[0] == result.Table.Headers[1] {
		t.Errorf("expected duplicate headers disambiguated, got %v", result.Table.Headers)
	}
}

func TestParseRowOverflowTruncatedAndFlagged(t *testing.T) {
	html := `<table>
		<tr><th>A</th><th>B</th></tr>
		<tr><td>1</td><td>2</td><td>3</td></tr>
	</table>`

	result := Parse(html)
	if len(result.Errors) != 1 {
		t.Fatalf("expected one row_overflow error, got %v", result.Errors)
	}
	if len(result.Table.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(result.Table.Rows))
	}
	if len(result.Table.Rows[0].Cells) != 2 {
		t.Errorf("expected row truncated to header width, got %v", result.Table.Rows[0].Cells)
	}
}

func TestParseShortRowPaddedWithEmpty(t *testing.T) {
	html := `<table>
		<tr><th>A</th><th>B</th><th>C</th></tr>
		<tr><td>1</td></tr>
	</table>`

	result := Parse(html)
	row := result.Table.Rows[0]
	if row.Cells["A"] != "1" || row.Cells["B"] != "" || row.Cells["C"] != "" {
		t.Errorf("expected short row padded with empty cells, got %v", row.Cells)
	}
}
