package site

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"hwharvest/internal"
	"hwharvest/internal/config"
	"hwharvest/internal/util"
)

// ParseListingsHTML extracts raw listings from store page markup using the
// configured selectors.
func ParseListingsHTML(cfg config.Config, r io.Reader, pageURL string) ([]internal.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return parseListings(cfg, doc, pageURL), nil
}

func parseListings(cfg config.Config, doc *goquery.Document, pageURL string) []internal.RawListing {
	category := breadcrumbCategory(cfg, doc)

	listings := make([]internal.RawListing, 0)
	doc.Find(cfg.CardSelector).Each(func(_ int, card *goquery.Selection) {
		listing := internal.RawListing{
			VisibleTitle: textOf(card, cfg.TitleSelector),
			Brand:        textOf(card, cfg.BrandSelector),
			Category:     category,
			PriceText:    textOf(card, cfg.PriceSelector),
			ImageURL:     imageURL(card, cfg.ImageSelector),
			SpecLines:    specLines(card, cfg.SpecSelector),
			SourceURL:    pageURL,
		}
		if markup := rawMarkup(card, cfg.SpecContainerSelector); markup != "" {
			listing.RawMarkup = &markup
		}
		listings = append(listings, listing)
	})
	return listings
}

func textOf(sel *goquery.Selection, selector string) string {
	return util.CollapseSpaces(sel.Find(selector).First().Text())
}

// imageURL also checks the lazy-loading attributes commonly used instead
// of src.
func imageURL(card *goquery.Selection, selector string) string {
	img := card.Find(selector).First()
	for _, attr := range []string{"src", "data-src", "data-lazy-src"} {
		if v, ok := img.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// specLines splits multi-line spec nodes so every line is its own entry.
func specLines(card *goquery.Selection, selector string) []string {
	lines := make([]string, 0)
	card.Find(selector).Each(func(_ int, node *goquery.Selection) {
		for _, part := range strings.Split(node.Text(), "\n") {
			if s := util.CollapseSpaces(part); s != "" {
				lines = append(lines, s)
			}
		}
	})
	return lines
}

func rawMarkup(card *goquery.Selection, selector string) string {
	node := card.Find(selector).First()
	if node.Length() == 0 {
		return ""
	}
	markup, err := goquery.OuterHtml(node)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(markup)
}

// breadcrumbCategory takes the last breadcrumb item as the category.
func breadcrumbCategory(cfg config.Config, doc *goquery.Document) string {
	items := doc.Find(cfg.BreadcrumbSelector)
	if items.Length() == 0 {
		return ""
	}
	return util.CollapseSpaces(items.Last().Text())
}
