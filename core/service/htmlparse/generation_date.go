package htmlparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jpmarichal/ccmwf-go/core/domain"
)

var spanishMonths = map[string]string{
	"enero":      "01",
	"febrero":    "02",
	"marzo":      "03",
	"abril":      "04",
	"mayo":       "05",
	"junio":      "06",
	"julio":      "07",
	"agosto":     "08",
	"septiembre": "09",
	"setiembre":  "09",
	"octubre":    "10",
	"noviembre":  "11",
	"diciembre":  "12",
}

// generationDateExpr matches "Generación del DD de MES de YYYY" with a
// Spanish month name, tolerating the unaccented spelling too.
var generationDateExpr = regexp.MustCompile(`(?i)generaci[oó]n\s+del?\s+(\d{1,2})\s+de\s+([a-záéíóúñ]+)\s+de\s+(\d{4})`)

// DeriveGenerationDate searches, in order: the plain body, the
// HTML-stripped body, then each ExtraTexts entry. This ordering matches
// how the generation date actually appears across real inbound
// messages.
func DeriveGenerationDate(bodyPlain, bodyHTML string, extraTexts []string) (domain.GenerationDate, bool) {
	if gen, ok := matchGenerationDate(bodyPlain); ok {
		return gen, true
	}
	if gen, ok := matchGenerationDate(stripHTML(bodyHTML)); ok {
		return gen, true
	}
	for _, txt := range extraTexts {
		if gen, ok := matchGenerationDate(txt); ok {
			return gen, true
		}
	}
	return "", false
}

func matchGenerationDate(text string) (domain.GenerationDate, bool) {
	m := generationDateExpr.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	day, err := strconv.Atoi(m[1])
	if err != nil || day < 1 || day > 31 {
		return "", false
	}
	month, ok := spanishMonths[strings.ToLower(m[2])]
	if !ok {
		return "", false
	}
	year := m[3]
	return domain.GenerationDate(fmt.Sprintf("%s%s%02d", year, month, day)), true
}

func stripHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return doc.Text()
}
