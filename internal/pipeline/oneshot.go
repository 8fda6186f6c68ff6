package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"hwharvest/internal"
	"hwharvest/internal/config"
	"hwharvest/internal/site"
	"hwharvest/internal/util"
)

// ListingsFromInput reads listings from a local file instead of a live
// store page. Supported types: text, html, xlsx, pdf.
func ListingsFromInput(cfg config.Config, inputType, path string) ([]internal.RawListing, error) {
	switch strings.ToLower(strings.TrimSpace(inputType)) {
	case "text", "txt":
		return listingsFromText(path)
	case "html":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return site.ParseListingsHTML(cfg, f, "file://"+path)
	case "xlsx":
		return listingsFromXLSX(path)
	case "pdf":
		return listingsFromPDF(path)
	default:
		return nil, fmt.Errorf("unsupported input type: %s", inputType)
	}
}

// listingsFromText treats every blank-line separated block as one listing.
func listingsFromText(path string) ([]internal.RawListing, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	listings := make([]internal.RawListing, 0)
	var block []string
	flush := func() {
		if len(block) > 0 {
			listings = append(listings, internal.RawListing{SpecLines: block, SourceURL: "file://" + path})
			block = nil
		}
	}
	for _, line := range strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	flush()

	return listings, nil
}

var (
	nameHeaderHints  = []string{"name", "product", "title", "model", "description"}
	priceHeaderHints = []string{"price", "cost", "rrp"}
)

// listingsFromXLSX reads one listing per sheet row. The name and price
// columns are inferred from a header row when one exists within the
// first three rows, otherwise the first two columns are assumed.
func listingsFromXLSX(path string) ([]internal.RawListing, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}

	nameCol, priceCol, headerRow := inferListColumns(rows)
	listings := make([]internal.RawListing, 0)
	for i, cells := range rows {
		if i <= headerRow || allEmpty(cells) {
			continue
		}
		title := util.CollapseSpaces(pickCell(cells, nameCol))
		if title == "" {
			continue
		}

		listing := internal.RawListing{
			VisibleTitle: title,
			PriceText:    util.CollapseSpaces(pickCell(cells, priceCol)),
			SpecLines:    []string{title},
			SourceURL:    "file://" + path,
		}
		for j, cell := range cells {
			if j == nameCol || j == priceCol {
				continue
			}
			if s := util.CollapseSpaces(cell); s != "" {
				listing.SpecLines = append(listing.SpecLines, s)
			}
		}
		listings = append(listings, listing)
	}

	return listings, nil
}

func inferListColumns(rows [][]string) (int, int, int) {
	for i := 0; i < len(rows) && i < 3; i++ {
		nameCol, priceCol := -1, -1
		for j, cell := range rows[i] {
			h := strings.ToLower(strings.TrimSpace(cell))
			if nameCol == -1 && matchesAny(h, nameHeaderHints) {
				nameCol = j
			}
			if priceCol == -1 && matchesAny(h, priceHeaderHints) {
				priceCol = j
			}
		}
		if nameCol != -1 {
			if priceCol == -1 {
				priceCol = nameCol + 1
			}
			return nameCol, priceCol, i
		}
	}
	return 0, 1, -1
}

func matchesAny(cell string, hints []string) bool {
	for _, hint := range hints {
		if strings.Contains(cell, hint) {
			return true
		}
	}
	return false
}

func pickCell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

func allEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// listingsFromPDF treats every sufficiently long text line as one
// listing, which fits the flat price lists stores publish as PDF.
func listingsFromPDF(path string) ([]internal.RawListing, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, err
	}
	textReader, err := reader.GetPlainText()
	if err != nil {
		return nil, err
	}
	text, err := io.ReadAll(textReader)
	if err != nil {
		return nil, err
	}

	listings := make([]internal.RawListing, 0)
	for _, line := range strings.Split(string(text), "\n") {
		line = util.CollapseSpaces(line)
		if utf8.RuneCountInString(line) < 8 {
			continue
		}
		listings = append(listings, internal.RawListing{SpecLines: []string{line}, SourceURL: "file://" + path})
	}

	return listings, nil
}
