package aligner

import (
	"strings"
	"unicode/utf16"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Tokenize uppercases the transcript and splits it on whitespace. Runs of
// whitespace and leading or trailing blanks produce no empty tokens.
//
// Uppercasing uses full Unicode case mapping, so "straße" becomes "STRASSE".
func Tokenize(transcript string) []string {
	// A Caser keeps state between calls and must not be shared.
	upper := cases.Upper(language.Und)
	return strings.Fields(upper.String(transcript))
}

// utf16Len counts UTF-16 code units, the length a browser reports for s.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
