package site

import (
	"strings"
	"testing"

	"hwharvest/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		UserAgent:             "hwharvest-test",
		HTTPTimeoutMs:         5000,
		RateLimitRPS:          50,
		CardSelector:          ".product-card",
		TitleSelector:         ".product-title",
		PriceSelector:         ".price",
		ImageSelector:         "img",
		SpecSelector:          ".product-specs li",
		SpecContainerSelector: ".product-specs",
		BrandSelector:         ".brand",
		BreadcrumbSelector:    ".breadcrumb li",
	}
}

const pageFixture = `<!DOCTYPE html>
<html>
<body>
<nav><ul class="breadcrumb"><li>Home</li><li>Computers</li><li>Desktops</li></ul></nav>
<div class="product-card">
  <h3 class="product-title">Gaming PC Starter</h3>
  <span class="brand">Acme</span>
  <div class="price">$549.99</div>
  <img src="/img/pc1.jpg" alt="">
  <div class="product-specs">
    <ul>
      <li>CPU: Ryzen 5 5600</li>
      <li>RAM: 16GB</li>
      <li>M2: 1TB</li>
    </ul>
  </div>
</div>
<div class="product-card">
  <h3 class="product-title">Monitor X</h3>
  <div class="price">199 EUR</div>
  <img data-src="/img/mon1.jpg" alt="">
  <div class="product-specs">
    <ul>
      <li>2560 x 1440 at 120Hz</li>
    </ul>
  </div>
</div>
</body>
</html>`

func TestParseListingsHTML(t *testing.T) {
	listings, err := ParseListingsHTML(testConfig(), strings.NewReader(pageFixture), "https://store.test/desktops")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("got %d listings", len(listings))
	}

	first := listings[0]
	if first.VisibleTitle != "Gaming PC Starter" {
		t.Errorf("title: got %q", first.VisibleTitle)
	}
	if first.Brand != "Acme" {
		t.Errorf("brand: got %q", first.Brand)
	}
	if first.Category != "Desktops" {
		t.Errorf("category: got %q", first.Category)
	}
	if first.PriceText != "$549.99" {
		t.Errorf("price: got %q", first.PriceText)
	}
	if first.ImageURL != "/img/pc1.jpg" {
		t.Errorf("image: got %q", first.ImageURL)
	}
	wantLines := []string{"CPU: Ryzen 5 5600", "RAM: 16GB", "M2: 1TB"}
	if len(first.SpecLines) != len(wantLines) {
		t.Fatalf("spec lines: got %v", first.SpecLines)
	}
	for i, line := range wantLines {
		if first.SpecLines[i] != line {
			t.Errorf("spec line %d: got %q, want %q", i, first.SpecLines[i], line)
		}
	}
	if first.RawMarkup == nil || !strings.Contains(*first.RawMarkup, "CPU: Ryzen 5 5600") {
		t.Errorf("raw markup: got %v", first.RawMarkup)
	}
	if !strings.HasPrefix(*first.RawMarkup, `<div class="product-specs">`) {
		t.Errorf("raw markup must keep the container element, got %q", *first.RawMarkup)
	}

	second := listings[1]
	if second.Brand != "" {
		t.Errorf("brand: got %q, want empty", second.Brand)
	}
	if second.ImageURL != "/img/mon1.jpg" {
		t.Errorf("lazy image: got %q", second.ImageURL)
	}
	if second.SourceURL != "https://store.test/desktops" {
		t.Errorf("source url: got %q", second.SourceURL)
	}
}

func TestParseListingsHTMLNoCards(t *testing.T) {
	listings, err := ParseListingsHTML(testConfig(), strings.NewReader("<html><body><p>empty</p></body></html>"), "https://store.test/none")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(listings) != 0 {
		t.Fatalf("got %d listings", len(listings))
	}
}
