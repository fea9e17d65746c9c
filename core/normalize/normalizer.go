// Package normalize cleans text pulled out of community markup.
// Every extractor runs its values through here before storing them, so
// invisible marks and odd spaces never leak into records.
package normalize

import (
	"regexp"
	"strings"
)

var (
	// bidiMarks are left-to-right / right-to-left marks.
	bidiMarks = strings.NewReplacer("\u200e", "", "\u200f", "")

	// oddSpaces map non-standard spaces to a plain space and drop
	// zero-width characters.
	oddSpaces = strings.NewReplacer(
		"\u00a0", " ",
		"\u202f", " ",
		"\u2007", " ",
		"\u200b", "",
		"\u200c", "",
		"\u200d", "",
		"\ufeff", "",
	)

	// whitespaceRun covers Unicode whitespace, not just ASCII.
	whitespaceRun = regexp.MustCompile(`[\s\p{Zs}\x{85}\x{1c}-\x{1f}\x{2028}\x{2029}]+`)
	blankRun      = regexp.MustCompile(`[\t\p{Zs}]+`)
	extraBlank    = regexp.MustCompile(`\n\s*\n\s*\n+`)
)

// Whitespace strips bidi and zero-width marks, replaces non-breaking spaces
// and collapses every whitespace run into a single space.
func Whitespace(s string) string {
	if s == "" {
		return ""
	}
	s = oddSpaces.Replace(bidiMarks.Replace(s))
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Block tidies multi-line rendered text: odd spaces become plain spaces,
// zero-width characters disappear, space runs collapse, and there is never
// more than one blank line in a row.
func Block(s string) string {
	s = oddSpaces.Replace(bidiMarks.Replace(s))
	s = blankRun.ReplaceAllString(s, " ")
	s = extraBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
