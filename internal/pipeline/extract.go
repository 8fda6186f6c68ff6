package pipeline

import (
	"regexp"
	"strings"
)

// Pair is one "Key: Value" fragment extracted from a single line.
type Pair struct {
	Key   string
	Canon string
	Value string
}

var (
	reKeyToken   = regexp.MustCompile(`(?:^| )([A-Za-z][A-Za-z0-9.\-]*(?: [A-Za-z][A-Za-z0-9.\-]*)?): `)
	reLeadingKey = regexp.MustCompile(`^([^:]{1,40}): (.+)$`)
	reNonAlnum   = regexp.MustCompile(`[^a-z0-9]+`)
)

// CanonicalKey folds a raw key for comparison: lower case, alphanumerics
// only. "M.2" and "PCI-E" become "m2" and "pcie".
func CanonicalKey(key string) string {
	return reNonAlnum.ReplaceAllString(strings.ToLower(key), "")
}

// ExtractPairs pulls every "Key: Value" fragment out of one normalized
// line. A key is one or two words before a colon; its value runs to the
// next key or the end of the line. When the scan finds nothing, a single
// leading "key: rest" pair is tried instead. Within a line the first
// occurrence of a canonical key wins, and pairs never span lines.
func ExtractPairs(line string) []Pair {
	matches := reKeyToken.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		if m := reLeadingKey.FindStringSubmatch(line); m != nil {
			key := strings.TrimSpace(m[1])
			if key == "" {
				return nil
			}
			return []Pair{{Key: key, Canon: CanonicalKey(key), Value: strings.TrimSpace(m[2])}}
		}
		return nil
	}

	out := make([]Pair, 0, len(matches))
	seen := map[string]struct{}{}
	for i, m := range matches {
		key := line[m[2]:m[3]]
		canon := CanonicalKey(key)
		if _, dup := seen[canon]; dup {
			continue
		}
		seen[canon] = struct{}{}

		valueEnd := len(line)
		if i+1 < len(matches) {
			valueEnd = matches[i+1][0]
		}
		out = append(out, Pair{Key: key, Canon: canon, Value: strings.TrimSpace(line[m[1]:valueEnd])})
	}
	return out
}
