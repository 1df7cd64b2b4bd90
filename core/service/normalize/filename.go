package normalize

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	unsafeChars   = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

const maxFilenameCodePoints = 100

// SanitizeFilename replaces the forbidden character set with "_",
// collapses whitespace runs to "_", and truncates to at most 100 code
// points while preserving the last extension. It is idempotent:
// SanitizeFilename(SanitizeFilename(x)) == SanitizeFilename(x).
func SanitizeFilename(name string) string {
	s := unsafeChars.ReplaceAllString(name, "_")
	s = whitespaceRun.ReplaceAllString(s, "_")
	return truncatePreservingExt(s, maxFilenameCodePoints)
}

func truncatePreservingExt(name string, maxCodePoints int) string {
	runes := []rune(name)
	if len(runes) <= maxCodePoints {
		return name
	}

	ext := filepath.Ext(name)
	extRunes := []rune(ext)
	if len(extRunes) >= maxCodePoints {
		// Degenerate case: the extension alone exceeds the budget.
		return string(runes[:maxCodePoints])
	}

	stemBudget := maxCodePoints - len(extRunes)
	stem := runes[:len(runes)-len(extRunes)]
	if len(stem) > stemBudget {
		stem = stem[:stemBudget]
	}
	return string(stem) + ext
}

// ResolveCollision produces a unique name by appending a
// millisecond-timestamp suffix before the extension when exists
// reports a collision, retrying with an incrementing counter on
// persistent collision.
func ResolveCollision(name string, exists func(string) bool) string {
	if !exists(name) {
		return name
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := fmt.Sprintf("%s_%d%s", stem, time.Now().UnixMilli(), ext)
	for counter := 1; exists(candidate); counter++ {
		candidate = fmt.Sprintf("%s_%d_%s%s", stem, time.Now().UnixMilli(), strconv.Itoa(counter), ext)
	}
	return candidate
}
