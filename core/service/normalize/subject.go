package normalize

import "strings"

// MatchesSubject is an exact case-sensitive prefix match; trailing
// content after the prefix is retained for downstream parsing by the
// caller, not returned here.
func MatchesSubject(subject, prefix string) bool {
	return strings.HasPrefix(subject, prefix)
}
