package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"hwharvest/internal"
)

var attributeKeys = map[internal.AttributeKey][]string{
	internal.AttrCPU:        {"cpu", "processor"},
	internal.AttrRAM:        {"ram", "memory"},
	internal.AttrStorage:    {"m2", "ssd", "storage", "hdd", "pcie"},
	internal.AttrGPU:        {"gpu", "graphics", "graphicscard", "videocard", "vga", "amd", "nvidia", "intel"},
	internal.AttrPSU:        {"psu", "power", "powersupply"},
	internal.AttrCase:       {"case", "chassis", "tower"},
	internal.AttrResolution: {"resolution", "screenresolution", "displayresolution"},
}

var attributeHeadings = map[internal.AttributeKey][]string{
	internal.AttrCPU: {"processor", "cpu"},
	internal.AttrRAM: {"memory", "ram"},
	internal.AttrGPU: {"graphics", "video", "gpu"},
}

var brandTokens = map[string]struct{}{
	"amd": {}, "nvidia": {}, "intel": {}, "ati": {},
}

var (
	reCPUModel  = regexp.MustCompile(`(?i)\b((?:amd )?ryzen threadripper(?: \w+)?|(?:amd )?ryzen [3579](?: pro)?(?: \d{3,4}[a-z0-9]*)?|(?:intel )?core i[3579](?:[ -]?\d{3,5}[a-z]{0,2})?|i[3579]-\d{4,5}[a-z]{0,2}|xeon(?: [a-z0-9-]+)?|athlon(?: [a-z0-9]+)?|pentium(?: [a-z0-9]+)?|celeron(?: [a-z0-9]+)?)\b`)
	reGHz       = regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)? ?ghz\b`)
	reGHzWindow = regexp.MustCompile(`(?i)((?:[\w.,()-]+ ){0,2}\d+(?:[.,]\d+)? ?ghz)\b`)
	reCoreCount = regexp.MustCompile(`(?i)\b(?:dual|quad|hexa|octa|\d{1,2})[- ]core\b`)

	reRAMCapFirst = regexp.MustCompile(`(?i)\b(\d{1,4}) ?(?:gb|gib) (ddr ?[2345][a-z]?)\b`)
	reRAMGenFirst = regexp.MustCompile(`(?i)\b(ddr ?[2345][a-z]?)(?:-\d{3,4})? (\d{1,4}) ?(?:gb|gib)\b`)
	reRAMToken    = regexp.MustCompile(`(?i)\b(?:ddr ?[2345][a-z]?|\d{1,4} ?(?:gb|gib|mb))\b`)

	reStorageM2       = regexp.MustCompile(`(?i)\bm\.?2\b`)
	reStorageSATA     = regexp.MustCompile(`(?i)\bsata\b`)
	reStoragePCIe     = regexp.MustCompile(`(?i)\bpci-?e\b`)
	reStoragePCIeVer  = regexp.MustCompile(`(?i)\bpci-?e ?(?:gen ?)?([2-5](?:\.\d)?)\b`)
	reStorageGenVer   = regexp.MustCompile(`(?i)\bgen ?([2-5])\b`)
	reStorageNVMe     = regexp.MustCompile(`(?i)\b[nm]vme\b`)
	reStorageKind     = regexp.MustCompile(`(?i)\b(ssd|hdd)\b`)
	reStorageCapacity = regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?) ?(tb|gb)\b`)

	reGPUModel = regexp.MustCompile(`(?i)\b((?:nvidia )?(?:geforce )?(?:rtx|gtx|gt) ?\d{3,4}(?: ?(?:ti|super|xt))?|(?:amd )?radeon(?: rx)? ?\d{3,4}[a-z]{0,2}(?: xt)?|(?:intel )?arc ?a\d{3}|quadro [a-z0-9]+|(?:radeon )?vega ?\d*|(?:intel )?(?:uhd|iris) ?(?:graphics ?)?\d*)\b`)

	reResolutionToken = regexp.MustCompile(`(?i)\b(\d{3,4} ?[x×] ?\d{3,4}(?: ?(?:@|at) ?\d{2,3} ?hz)?)\b`)
)

// document is the per-listing view the resolver strategies share: the
// normalized lines and the pairs extracted from each of them.
type document struct {
	lines []string
	pairs [][]Pair
}

func newDocument(lines []string) *document {
	d := &document{lines: lines, pairs: make([][]Pair, len(lines))}
	for i, line := range lines {
		d.pairs[i] = ExtractPairs(line)
	}
	return d
}

func (d *document) nextNonEmpty(after int) string {
	for i := after + 1; i < len(d.lines); i++ {
		if strings.TrimSpace(d.lines[i]) != "" {
			return d.lines[i]
		}
	}
	return ""
}

// A resolver inspects the document and returns a value for one attribute,
// or "" when its strategy does not apply.
type resolver func(doc *document) string

var resolverChains = map[internal.AttributeKey][]resolver{
	internal.AttrCPU: {
		keyedValue(internal.AttrCPU),
		headingValue(internal.AttrCPU, looksLikeCPU),
		freeform(matchCPU),
	},
	internal.AttrRAM: {
		keyedValue(internal.AttrRAM),
		headingValue(internal.AttrRAM, looksLikeRAM),
		freeform(matchRAM),
	},
	internal.AttrStorage: {
		storageKeyed,
		freeform(matchStorage),
	},
	internal.AttrGPU: {
		keyedValue(internal.AttrGPU),
		headingValue(internal.AttrGPU, looksLikeGPU),
		freeform(matchGPU),
	},
	internal.AttrPSU: {
		keyedValue(internal.AttrPSU),
	},
	internal.AttrCase: {
		keyedValue(internal.AttrCase),
	},
	internal.AttrResolution: {
		keyedValue(internal.AttrResolution),
		freeform(matchResolution),
	},
}

// Resolve fills an attribute set from normalized spec lines. Attributes are
// resolved in fixed order, each by the first of its strategies that yields
// a value; the pass stops as soon as every attribute is filled. The CPU
// positional fallback runs last and only when other attributes resolved
// while CPU did not.
func Resolve(lines []string) internal.AttributeSet {
	doc := newDocument(lines)
	attrs := internal.NewAttributeSet()

	for _, key := range internal.AttributeOrder {
		if attrs.Full() {
			break
		}
		for _, strategy := range resolverChains[key] {
			if value := strategy(doc); value != "" {
				attrs.Set(key, value)
				break
			}
		}
	}

	// A listing that resolved only a resolution is a display, not a build;
	// the fallback would otherwise claim its second line as a CPU.
	hardware := attrs.Any(internal.AttrRAM, internal.AttrStorage, internal.AttrGPU, internal.AttrPSU, internal.AttrCase)
	if hardware && !attrs.Has(internal.AttrCPU) {
		if value := cpuPositionalFallback(doc); value != "" {
			attrs.Set(internal.AttrCPU, value)
		}
	}

	return attrs
}

func keyedValue(key internal.AttributeKey) resolver {
	keys := attributeKeys[key]
	return func(doc *document) string {
		for i, linePairs := range doc.pairs {
			for _, pair := range linePairs {
				if pair.Value == "" || !containsKey(keys, pair.Canon) {
					continue
				}
				return followBrandAlias(pair.Value, doc, i)
			}
		}
		return ""
	}
}

// storageKeyed resolves keyed storage lines and rebuilds the value from
// recognized sub-tokens instead of echoing it. The key itself contributes:
// "M2: 1TB" yields "M.2 1TB".
func storageKeyed(doc *document) string {
	keys := attributeKeys[internal.AttrStorage]
	for _, linePairs := range doc.pairs {
		for _, pair := range linePairs {
			if pair.Value == "" || !containsKey(keys, pair.Canon) {
				continue
			}
			if canon := scanStorageTokens(pair.Key + " " + pair.Value).canonical(); canon != "" {
				return canon
			}
			return pair.Value
		}
	}
	return ""
}

func headingValue(key internal.AttributeKey, validate func(string) bool) resolver {
	words := attributeHeadings[key]
	return func(doc *document) string {
		for i, line := range doc.lines {
			rest, ok := headingRemainder(line, words)
			if !ok {
				continue
			}
			candidate := rest
			if candidate == "" {
				candidate = doc.nextNonEmpty(i)
			}
			candidate = followBrandAlias(candidate, doc, i)
			if candidate != "" && validate(candidate) {
				return candidate
			}
		}
		return ""
	}
}

// headingRemainder reports whether the line is led by one of the bare
// heading words, returning whatever follows the heading on the same line.
func headingRemainder(line string, words []string) (string, bool) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(line), ":")
	for _, word := range words {
		if strings.EqualFold(trimmed, word) {
			return "", true
		}
		prefix := word + " "
		if len(trimmed) > len(prefix) && strings.EqualFold(trimmed[:len(prefix)], prefix) {
			return strings.TrimSpace(trimmed[len(prefix):]), true
		}
	}
	return "", false
}

// followBrandAlias swaps a bare brand token (AMD, NVIDIA, Intel, ATI) for
// the next non-empty line, which carries the actual model.
func followBrandAlias(value string, doc *document, lineIdx int) string {
	if _, ok := brandTokens[strings.ToLower(strings.TrimSpace(value))]; !ok {
		return value
	}
	if next := doc.nextNonEmpty(lineIdx); next != "" {
		return next
	}
	return value
}

func freeform(match func(line string) string) resolver {
	return func(doc *document) string {
		for _, line := range doc.lines {
			if value := match(line); value != "" {
				return value
			}
		}
		return ""
	}
}

func matchCPU(line string) string {
	if m := reCPUModel.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := reGHzWindow.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func matchRAM(line string) string {
	if m := reRAMCapFirst.FindStringSubmatch(line); m != nil {
		return ramValue(m[1], m[2])
	}
	if m := reRAMGenFirst.FindStringSubmatch(line); m != nil {
		return ramValue(m[2], m[1])
	}
	return ""
}

func ramValue(capacity, generation string) string {
	generation = strings.ToUpper(strings.ReplaceAll(generation, " ", ""))
	return fmt.Sprintf("%sGB %s", capacity, generation)
}

// matchStorage fires only on text that carries an interface, bus or drive
// token; a bare capacity is not storage evidence.
func matchStorage(line string) string {
	tokens := scanStorageTokens(line)
	if tokens.iface == "" && !tokens.pcie && !tokens.nvme && tokens.kind == "" {
		return ""
	}
	return tokens.canonical()
}

func matchGPU(line string) string {
	if m := reGPUModel.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func matchResolution(line string) string {
	if m := reResolutionToken.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// cpuPositionalFallback picks the first non-keyed line that looks like a
// CPU, else the second non-keyed line, else the second extracted pair
// value across all lines.
func cpuPositionalFallback(doc *document) string {
	nonKeyed := make([]string, 0, len(doc.lines))
	for i, line := range doc.lines {
		if len(doc.pairs[i]) == 0 {
			nonKeyed = append(nonKeyed, line)
		}
	}
	for _, line := range nonKeyed {
		if looksLikeCPU(line) {
			return line
		}
	}
	if len(nonKeyed) >= 2 {
		return nonKeyed[1]
	}

	values := make([]string, 0, 4)
	for _, linePairs := range doc.pairs {
		for _, pair := range linePairs {
			if pair.Value != "" {
				values = append(values, pair.Value)
			}
		}
	}
	if len(values) >= 2 {
		return values[1]
	}
	return ""
}

func looksLikeCPU(text string) bool {
	return reCPUModel.MatchString(text) || reGHz.MatchString(text) || reCoreCount.MatchString(text)
}

func looksLikeRAM(text string) bool {
	return reRAMToken.MatchString(text)
}

func looksLikeGPU(text string) bool {
	return reGPUModel.MatchString(text)
}

type storageTokens struct {
	iface    string
	pcie     bool
	pcieVer  string
	nvme     bool
	capacity string
	kind     string
}

func scanStorageTokens(text string) storageTokens {
	t := storageTokens{}
	if reStorageM2.MatchString(text) {
		t.iface = "M.2"
	} else if reStorageSATA.MatchString(text) {
		t.iface = "SATA"
	}
	if reStoragePCIe.MatchString(text) {
		t.pcie = true
		if m := reStoragePCIeVer.FindStringSubmatch(text); m != nil {
			t.pcieVer = strings.TrimSuffix(m[1], ".0")
		}
	}
	if m := reStorageGenVer.FindStringSubmatch(text); m != nil {
		t.pcie = true
		if t.pcieVer == "" {
			t.pcieVer = m[1]
		}
	}
	if reStorageNVMe.MatchString(text) {
		t.nvme = true
	}
	if m := reStorageKind.FindStringSubmatch(text); m != nil {
		t.kind = strings.ToUpper(m[1])
	}
	if m := reStorageCapacity.FindStringSubmatch(text); m != nil {
		num := strings.TrimSuffix(strings.ReplaceAll(m[1], ",", "."), ".0")
		t.capacity = num + strings.ToUpper(m[2])
	}
	return t
}

// canonical renders the recognized sub-tokens in fixed order, for example
// "M.2 PCIe 4 2TB".
func (t storageTokens) canonical() string {
	parts := make([]string, 0, 5)
	if t.iface != "" {
		parts = append(parts, t.iface)
	}
	if t.pcie {
		if t.pcieVer != "" {
			parts = append(parts, "PCIe "+t.pcieVer)
		} else {
			parts = append(parts, "PCIe")
		}
	}
	if t.nvme {
		parts = append(parts, "NVMe")
	}
	if t.capacity != "" {
		parts = append(parts, t.capacity)
	}
	if t.kind != "" {
		parts = append(parts, t.kind)
	}
	return strings.Join(parts, " ")
}

func containsKey(keys []string, canon string) bool {
	if canon == "" {
		return false
	}
	for _, k := range keys {
		if k == canon {
			return true
		}
	}
	return false
}
