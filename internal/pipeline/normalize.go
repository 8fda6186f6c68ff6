package pipeline

import (
	"regexp"
	"strings"
)

var (
	reColonSpacing = regexp.MustCompile(`\s*[:：]\s*`)
	reWhitespace   = regexp.MustCompile(`\s+`)
	reParenOpen    = regexp.MustCompile(`\(\s+`)
	reParenClose   = regexp.MustCompile(`\s+\)`)

	nbspReplacer = strings.NewReplacer("\u00a0", " ", "\u202f", " ")
)

// NormalizeLine rewrites one raw product spec line into canonical form:
// non-breaking spaces become plain spaces, colons get exactly one trailing
// space, whitespace runs collapse and padding inside parentheses is
// removed. Applying it twice gives the same result as applying it once.
func NormalizeLine(line string) string {
	s := nbspReplacer.Replace(line)
	s = reColonSpacing.ReplaceAllString(s, ": ")
	s = reWhitespace.ReplaceAllString(s, " ")
	s = reParenOpen.ReplaceAllString(s, "(")
	s = reParenClose.ReplaceAllString(s, ")")
	return strings.TrimSpace(s)
}

// NormalizeLines maps NormalizeLine over the block, dropping lines that
// normalize to nothing.
func NormalizeLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if n := NormalizeLine(line); n != "" {
			out = append(out, n)
		}
	}
	return out
}
