package extract

import (
	"net/url"
	"testing"
)

var testSelectors = SelectorMap{
	ItemContainer: "div.product-card",
	Name:          ".product-name",
	Price:         ".product-price",
	Image:         "img.product-img",
	DetailLink:    "a.product-link",
}

const fixturePage = `
<html><body>
<div class="product-card">
	<a class="product-link" href="/urun/akustik-gitar-x100"><img class="product-img" src="/img/x100.jpg"></a>
	<span class="product-name">Akustik Gitar X100</span>
	<span class="product-price">2.499,00 TL</span>
</div>
<div class="product-card">
	<a class="product-link" href="https://cdn.example.com/urun/elektro-bas-b20"><img class="product-img" data-src="//cdn.example.com/img/b20.jpg"></a>
	<span class="product-name">Elektro Bas B20</span>
	<span class="product-price">7.850,00 TL</span>
</div>
<div class="product-card">
	<span class="product-name">Fiyatı Olmayan Ürün</span>
	<a class="product-link" href="/urun/gizemli"></a>
</div>
</body></html>`

func TestListings(t *testing.T) {
	base, _ := url.Parse("https://www.example.com/kategori/gitar?page=1")

	listings, err := Listings(fixturePage, testSelectors, base)
	if err != nil {
		t.Fatalf("Listings failed: %v", err)
	}

	// third card has no price, must be dropped without aborting the others
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(listings))
	}

	first := listings[0]
	if first.Name != "Akustik Gitar X100" {
		t.Errorf("unexpected name %q", first.Name)
	}
	if first.PriceText != "2.499,00 TL" {
		t.Errorf("unexpected price text %q", first.PriceText)
	}
	if first.ProductURL != "https://www.example.com/urun/akustik-gitar-x100" {
		t.Errorf("relative detail link not resolved: %q", first.ProductURL)
	}
	if first.Image != "https://www.example.com/img/x100.jpg" {
		t.Errorf("relative image not resolved: %q", first.Image)
	}

	second := listings[1]
	if second.ProductURL != "https://cdn.example.com/urun/elektro-bas-b20" {
		t.Errorf("absolute detail link mangled: %q", second.ProductURL)
	}
	if second.Image != "https://cdn.example.com/img/b20.jpg" {
		t.Errorf("data-src fallback not used: %q", second.Image)
	}
}

func TestListingsEmptyPage(t *testing.T) {
	listings, err := Listings("<html><body><p>Sonuç bulunamadı</p></body></html>", testSelectors, nil)
	if err != nil {
		t.Fatalf("Listings failed: %v", err)
	}
	if len(listings) != 0 {
		t.Errorf("expected no listings, got %d", len(listings))
	}
}
