package pipeline

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"hwharvest/internal"
	"hwharvest/internal/util"
)

const maxNameLen = 256

var (
	reColons    = regexp.MustCompile(`[:：]`)
	reSpellNVMe = regexp.MustCompile(`(?i)\b[nm]vme\b`)
	reSpellM2   = regexp.MustCompile(`(?i)\bm\.?2\b`)
	reSpellSSD  = regexp.MustCompile(`(?i)\bssd\b`)
	reSpellHDD  = regexp.MustCompile(`(?i)\bhdd\b`)
	reSpellDDR  = regexp.MustCompile(`(?i)\bddr ?([2345])\b`)
	reSpellCap  = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)(tb|gb|mb)\b`)
	reSpellPCIe = regexp.MustCompile(`(?i)\bpci-?e(?: ?([2-5](?:\.\d)?))?\b`)
)

// ComposeName builds the display name for a listing: the title candidate
// from its lines with colons stripped, prefixed with the visible title
// when the candidate does not already start with it, followed by the
// resolved attribute values.
// Hardware attributes win over PSU and case, which win over a resolution;
// a listing named by its resolution alone is classified as a monitor.
// Returns "" when neither the lines nor the visible title yield a base.
func ComposeName(visibleTitle string, lines []string, attrs internal.AttributeSet) (string, internal.ListingKind) {
	base := stripColons(titleCandidate(lines))
	title := strings.TrimSpace(visibleTitle)
	switch {
	case base == "":
		base = title
	case title != "" && !strings.HasPrefix(strings.ToLower(base), strings.ToLower(title)):
		base = title + " " + base
	}
	if base == "" {
		return "", internal.KindHardware
	}

	kind := internal.KindHardware
	var tokens []string
	switch {
	case attrs.Any(internal.AttrCPU, internal.AttrRAM, internal.AttrStorage, internal.AttrGPU):
		for _, key := range []internal.AttributeKey{internal.AttrCPU, internal.AttrRAM, internal.AttrStorage, internal.AttrGPU} {
			if attrs.Has(key) {
				tokens = append(tokens, attrs.Get(key))
			}
		}
	case attrs.Any(internal.AttrPSU, internal.AttrCase):
		for _, key := range []internal.AttributeKey{internal.AttrPSU, internal.AttrCase} {
			if attrs.Has(key) {
				tokens = append(tokens, attrs.Get(key))
			}
		}
	case attrs.Has(internal.AttrResolution):
		kind = internal.KindMonitor
		tokens = append(tokens, attrs.Get(internal.AttrResolution))
	}

	name := base
	for _, token := range tokens {
		token = canonicalSpelling(strings.TrimSpace(token))
		if token == "" || containsFold(name, token) {
			continue
		}
		name += " " + token
	}

	return truncateRunes(collapseRepeats(name), maxNameLen), kind
}

// titleCandidate picks the first line without a colon that is longer than
// three runes, falling back to the first line.
func titleCandidate(lines []string) string {
	for _, line := range lines {
		if !strings.Contains(line, ":") && utf8.RuneCountInString(line) > 3 {
			return line
		}
	}
	if len(lines) > 0 {
		return lines[0]
	}
	return ""
}

// stripColons drops colon characters from the base. The fallback candidate
// is a keyed line, so it still carries one.
func stripColons(s string) string {
	return util.CollapseSpaces(reColons.ReplaceAllString(s, ""))
}

func canonicalSpelling(token string) string {
	token = reSpellNVMe.ReplaceAllString(token, "NVMe")
	token = reSpellM2.ReplaceAllString(token, "M.2")
	token = reSpellSSD.ReplaceAllString(token, "SSD")
	token = reSpellHDD.ReplaceAllString(token, "HDD")
	token = reSpellDDR.ReplaceAllString(token, "DDR$1")
	token = reSpellCap.ReplaceAllStringFunc(token, strings.ToUpper)
	token = reSpellPCIe.ReplaceAllStringFunc(token, replacePCIe)
	return token
}

func replacePCIe(match string) string {
	sub := reSpellPCIe.FindStringSubmatch(match)
	if len(sub) > 1 && sub[1] != "" {
		return "PCIe " + strings.TrimSuffix(sub[1], ".0")
	}
	return "PCIe"
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// collapseRepeats removes immediately repeated word sequences of up to
// four words, so "Core i5 Core i5 10400F" becomes "Core i5 10400F".
func collapseRepeats(name string) string {
	words := strings.Fields(name)
	for {
		removed := false
		for i := 0; i < len(words) && !removed; i++ {
			for l := 1; l <= 4 && i+2*l <= len(words); l++ {
				if equalFoldSeq(words[i:i+l], words[i+l:i+2*l]) {
					words = append(words[:i+l], words[i+2*l:]...)
					removed = true
					break
				}
			}
		}
		if !removed {
			break
		}
	}
	return strings.Join(words, " ")
}

func equalFoldSeq(a, b []string) bool {
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max]))
}
