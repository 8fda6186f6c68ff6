package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"hwharvest/internal"
	"hwharvest/internal/storage"
	"hwharvest/internal/util"
)

// Fetcher supplies the raw listings of one store page.
type Fetcher interface {
	FetchListings(ctx context.Context, pageURL string) ([]internal.RawListing, error)
}

// Runner drives a harvest run: fetch every page, assemble records, drop
// duplicate codes, and persist the outcome when a database is attached.
type Runner struct {
	fetcher Fetcher
	db      *storage.DB
	logger  *slog.Logger
}

func NewRunner(fetcher Fetcher, db *storage.DB, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{fetcher: fetcher, db: db, logger: logger}
}

type RunResult struct {
	Records []*internal.ProductRecord
	Summary internal.RunSummary
}

func (r *Runner) Run(ctx context.Context, urls []string) (RunResult, error) {
	summary := internal.RunSummary{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC().Format(time.RFC3339),
		URLs:      urls,
	}
	if r.db != nil {
		if err := r.db.InsertRun(summary); err != nil {
			return RunResult{}, err
		}
	}

	book := NewCodeBook()
	emitted := make(map[string]struct{})
	records := make([]*internal.ProductRecord, 0)

	for _, pageURL := range urls {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}

		listings, err := r.fetcher.FetchListings(ctx, pageURL)
		if err != nil {
			summary.PagesFailed++
			r.logger.Warn("page fetch failed", "url", pageURL, "err", err)
			continue
		}
		summary.Pages++
		summary.Listings += len(listings)

		for _, listing := range listings {
			rec := Assemble(listing, book)
			if rec == nil {
				summary.Skipped++
				continue
			}
			if _, dup := emitted[rec.Code]; dup {
				summary.Duplicates++
				continue
			}
			emitted[rec.Code] = struct{}{}
			records = append(records, rec)
		}
	}

	summary.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	summary.Emitted = len(records)

	if r.db != nil {
		if err := r.db.InsertRunProducts(summary.ID, records); err != nil {
			return RunResult{}, err
		}
		if err := r.db.InsertRun(summary); err != nil {
			return RunResult{}, err
		}
	}

	r.logger.Info("run finished",
		"runId", summary.ID,
		"pages", summary.Pages,
		"pagesFailed", summary.PagesFailed,
		"listings", summary.Listings,
		"emitted", summary.Emitted,
		"duplicates", summary.Duplicates,
		"skipped", summary.Skipped,
	)

	return RunResult{Records: records, Summary: summary}, nil
}

// Assemble turns one raw listing into a product record. It returns nil
// when no name can be derived, which is the only reason a listing is
// dropped.
func Assemble(listing internal.RawListing, book *CodeBook) *internal.ProductRecord {
	lines := NormalizeLines(listing.SpecLines)
	attrs := Resolve(lines)

	baseName, kind := ComposeName(listing.VisibleTitle, lines, attrs)
	if baseName == "" {
		return nil
	}

	rec := &internal.ProductRecord{
		BaseName:  baseName,
		Kind:      kind,
		Brand:     util.StringPtrOrNil(listing.Brand),
		Category:  util.StringPtrOrNil(listing.Category),
		Price:     util.StringPtrOrNil(listing.PriceText),
		Image:     util.StringPtrOrNil(listing.ImageURL),
		SpecLines: lines,
		RawMarkup: listing.RawMarkup,
		Attrs:     attrs,
	}
	rec.Fingerprint = Fingerprint(IdentityFields(rec)...)
	rec.Code = book.Assign(rec.Fingerprint)
	rec.Name = fmt.Sprintf("%s - %s", baseName, rec.Code)
	return rec
}

// AssembleAll processes a standalone batch with its own code book,
// dropping later listings whose code was already emitted.
func AssembleAll(listings []internal.RawListing) ([]*internal.ProductRecord, internal.RunSummary) {
	book := NewCodeBook()
	emitted := make(map[string]struct{})
	records := make([]*internal.ProductRecord, 0, len(listings))
	summary := internal.RunSummary{Listings: len(listings)}

	for _, listing := range listings {
		rec := Assemble(listing, book)
		if rec == nil {
			summary.Skipped++
			continue
		}
		if _, dup := emitted[rec.Code]; dup {
			summary.Duplicates++
			continue
		}
		emitted[rec.Code] = struct{}{}
		records = append(records, rec)
	}

	summary.Emitted = len(records)
	return records, summary
}
