package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"hwharvest/internal/config"
)

func mkXLSXFile(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	path := filepath.Join(t.TempDir(), "input.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func TestListingsFromText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	content := "Gaming PC Starter\nCPU: Ryzen 5 5600\nRAM: 16GB\n\nMonitor X\n2560 x 1440 at 120Hz\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	listings, err := ListingsFromInput(config.Config{}, "text", path)
	if err != nil {
		t.Fatalf("input: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("got %d listings", len(listings))
	}
	if len(listings[0].SpecLines) != 3 || listings[0].SpecLines[0] != "Gaming PC Starter" {
		t.Fatalf("first block: got %v", listings[0].SpecLines)
	}
	if len(listings[1].SpecLines) != 2 {
		t.Fatalf("second block: got %v", listings[1].SpecLines)
	}
}

func TestListingsFromXLSXWithHeader(t *testing.T) {
	path := mkXLSXFile(t, [][]any{
		{"Product name", "Specs", "Price"},
		{"Gaming PC Starter", "CPU: Ryzen 5 5600", 549.99},
		{"", "", ""},
		{"Monitor X", "2560 x 1440 at 120Hz", 199},
	})

	listings, err := ListingsFromInput(config.Config{}, "xlsx", path)
	if err != nil {
		t.Fatalf("input: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("got %d listings", len(listings))
	}
	first := listings[0]
	if first.VisibleTitle != "Gaming PC Starter" {
		t.Errorf("title: got %q", first.VisibleTitle)
	}
	if first.PriceText != "549.99" {
		t.Errorf("price: got %q", first.PriceText)
	}
	if len(first.SpecLines) != 2 || first.SpecLines[0] != "Gaming PC Starter" || first.SpecLines[1] != "CPU: Ryzen 5 5600" {
		t.Errorf("spec lines: got %v", first.SpecLines)
	}
}

func TestListingsFromXLSXHeaderless(t *testing.T) {
	path := mkXLSXFile(t, [][]any{
		{"Gaming PC i5 10400F", 499},
		{"Office PC Essential", 299},
	})

	listings, err := ListingsFromInput(config.Config{}, "xlsx", path)
	if err != nil {
		t.Fatalf("input: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("got %d listings", len(listings))
	}
	if listings[0].VisibleTitle != "Gaming PC i5 10400F" || listings[0].PriceText != "499" {
		t.Fatalf("first row: got %+v", listings[0])
	}
}

func TestListingsFromHTMLFile(t *testing.T) {
	cfg := config.Config{
		CardSelector:          ".product-card",
		TitleSelector:         ".product-title",
		PriceSelector:         ".price",
		ImageSelector:         "img",
		SpecSelector:          ".product-specs li",
		SpecContainerSelector: ".product-specs",
		BrandSelector:         ".brand",
		BreadcrumbSelector:    ".breadcrumb li",
	}
	markup := `<html><body><div class="product-card"><h3 class="product-title">Gaming PC</h3>` +
		`<div class="price">$549</div><div class="product-specs"><ul><li>CPU: Ryzen 5 5600</li></ul></div></div></body></html>`
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(markup), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	listings, err := ListingsFromInput(cfg, "html", path)
	if err != nil {
		t.Fatalf("input: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("got %d listings", len(listings))
	}
	if listings[0].VisibleTitle != "Gaming PC" {
		t.Errorf("title: got %q", listings[0].VisibleTitle)
	}
	if !strings.HasPrefix(listings[0].SourceURL, "file://") {
		t.Errorf("source url: got %q", listings[0].SourceURL)
	}
}

func TestListingsFromInputUnsupported(t *testing.T) {
	_, err := ListingsFromInput(config.Config{}, "docx", "whatever.docx")
	if err == nil || !strings.Contains(err.Error(), "unsupported input type") {
		t.Fatalf("expected an unsupported type error, got %v", err)
	}
}
