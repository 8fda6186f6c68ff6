package util

import (
	"regexp"
	"strings"
)

var reSpaces = regexp.MustCompile(`\s+`)

func CollapseSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// FoldField canonicalizes one fingerprint field: lower case with collapsed
// whitespace.
func FoldField(input string) string {
	return CollapseSpaces(strings.ToLower(input))
}

func StringPtr(v string) *string {
	return &v
}

// StringPtrOrNil trims the value and returns nil when nothing remains.
func StringPtrOrNil(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
