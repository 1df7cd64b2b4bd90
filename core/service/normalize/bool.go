package normalize

import "strings"

var truthyTokens = map[string]bool{
	"verdadero": true,
	"true":      true,
	"si":        true,
	"sí":        true,
	"1":         true,
	"x":         true,
}

// CoerceBool accepts textual tokens and never produces absence: any
// non-matching value, including empty, coerces to false.
func CoerceBool(raw string) bool {
	v := strings.ToLower(strings.TrimSpace(raw))
	return truthyTokens[v]
}
