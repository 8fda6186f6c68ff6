package internal

type AttributeKey string

const (
	AttrCPU        AttributeKey = "cpu"
	AttrRAM        AttributeKey = "ram"
	AttrStorage    AttributeKey = "storage"
	AttrGPU        AttributeKey = "gpu"
	AttrPSU        AttributeKey = "psu"
	AttrCase       AttributeKey = "case"
	AttrResolution AttributeKey = "resolution"
)

// AttributeOrder is the fixed resolution and name-append order.
var AttributeOrder = []AttributeKey{
	AttrCPU, AttrRAM, AttrStorage, AttrGPU, AttrPSU, AttrCase, AttrResolution,
}

// AttributeSet holds resolved attribute values. A key is filled at most
// once; later Set calls for the same key are ignored.
type AttributeSet map[AttributeKey]string

func NewAttributeSet() AttributeSet {
	return AttributeSet{}
}

func (a AttributeSet) Set(key AttributeKey, value string) bool {
	if value == "" {
		return false
	}
	if _, ok := a[key]; ok {
		return false
	}
	a[key] = value
	return true
}

func (a AttributeSet) Get(key AttributeKey) string {
	return a[key]
}

func (a AttributeSet) Has(key AttributeKey) bool {
	_, ok := a[key]
	return ok
}

func (a AttributeSet) Any(keys ...AttributeKey) bool {
	for _, key := range keys {
		if a.Has(key) {
			return true
		}
	}
	return false
}

func (a AttributeSet) Full() bool {
	return len(a) == len(AttributeOrder)
}

type ListingKind string

const (
	KindHardware ListingKind = "hardware"
	KindMonitor  ListingKind = "monitor"
)

// RawListing is one product card as harvested from a category page or a
// local input file. Every field may be empty.
type RawListing struct {
	VisibleTitle string
	Brand        string
	Category     string
	PriceText    string
	ImageURL     string
	SpecLines    []string
	RawMarkup    *string
	SourceURL    string
}

// ProductRecord is a finished listing: resolved attributes, composed name
// and the identity code appended to it.
type ProductRecord struct {
	Code        string
	Name        string
	BaseName    string
	Kind        ListingKind
	Brand       *string
	Category    *string
	Price       *string
	Image       *string
	SpecLines   []string
	RawMarkup   *string
	Attrs       AttributeSet
	Fingerprint string
}

type RunSummary struct {
	ID          string
	StartedAt   string
	FinishedAt  string
	URLs        []string
	Pages       int
	PagesFailed int
	Listings    int
	Emitted     int
	Duplicates  int
	Skipped     int
}
