// Package normalize cleans user-entered catalog text before it is stored.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Title trims, collapses internal whitespace and title-cases s.
// "  the  name of the WIND " -> "The Name Of The Wind".
func Title(s string) string {
	s = strings.Join(strings.Fields(norm.NFC.String(s)), " ")
	if s == "" {
		return ""
	}
	// cases.Caser is stateful, so one per call.
	return cases.Title(language.English).String(s)
}

// Name trims and collapses whitespace without changing case.
func Name(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}
