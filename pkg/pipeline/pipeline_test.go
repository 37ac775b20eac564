package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"kompare/pkg/catalog"
	"kompare/pkg/extract"
	"kompare/pkg/models"
	"kompare/pkg/pricing"
	"kompare/pkg/sites"
)

type fakeNav struct {
	pages map[string]string
	fail  map[string]bool
	loads []string
}

func (f *fakeNav) Load(_ context.Context, pageURL, _ string) (string, error) {
	f.loads = append(f.loads, pageURL)
	if f.fail[pageURL] {
		return "", fmt.Errorf("%w: %s", models.ErrPageUnavailable, pageURL)
	}
	if html, ok := f.pages[pageURL]; ok {
		return html, nil
	}
	return `<html><body><div class="liste"></div></body></html>`, nil
}

func (f *fakeNav) Close() error { return nil }

func testSite() sites.Site {
	return sites.Site{
		Name:          "Acme Müzik",
		Website:       "https://acme.example",
		Location:      [2]float64{28.9, 41.0},
		BaseURL:       "https://acme.example",
		PageURLFormat: "https://acme.example/k/%s?page=%d",
		ReadySelector: "div.liste",
		Selectors: extract.SelectorMap{
			ItemContainer: "div.liste div.kart",
			Name:          ".ad",
			Price:         ".fiyat",
			Image:         "img",
			DetailLink:    "a",
		},
		Locale:   pricing.LocaleTR,
		Currency: pricing.ReferenceCurrency,
		Categories: []sites.Category{
			{Slug: "gitar", MaxPages: 99, Path: catalog.CategoryPath{Slug: "gitar"}},
		},
	}
}

type card struct {
	name, price, href string
}

func page(cards ...card) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="liste">`)
	for _, c := range cards {
		fmt.Fprintf(&b,
			`<div class="kart"><a href=%q><img src="/i.jpg"></a><span class="ad">%s</span><span class="fiyat">%s</span></div>`,
			c.href, c.name, c.price)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func newTestDriver(nav *fakeNav, store *catalog.Memory) *Driver {
	engine := catalog.NewEngine(store, pricing.NewRates(""), pricing.LocaleTR, pricing.ReferenceCurrency)
	return New(testSite(), nav, engine, 0)
}

func TestPaginationStopsOnEmptyPage(t *testing.T) {
	nav := &fakeNav{pages: map[string]string{}}
	for p := 1; p <= 3; p++ {
		nav.pages[fmt.Sprintf("https://acme.example/k/gitar?page=%d", p)] = page(
			card{fmt.Sprintf("Gitar %d", p), "1.000,00 TL", fmt.Sprintf("/u/g%d", p)},
		)
	}
	// page 4 falls through to the empty default

	store := catalog.NewMemory()
	driver := newTestDriver(nav, store)

	sum, err := driver.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, sum.Processed)

	require.Len(t, nav.loads, 4, "must halt on the empty page without trying page 5")
	require.Equal(t, "https://acme.example/k/gitar?page=4", nav.loads[len(nav.loads)-1])
}

func TestFailedPageIsSkipped(t *testing.T) {
	nav := &fakeNav{
		pages: map[string]string{
			"https://acme.example/k/gitar?page=1": page(card{"Gitar A", "900,00 TL", "/u/a"}),
			"https://acme.example/k/gitar?page=3": page(card{"Gitar B", "950,00 TL", "/u/b"}),
		},
		fail: map[string]bool{
			"https://acme.example/k/gitar?page=2": true,
		},
	}

	store := catalog.NewMemory()
	driver := newTestDriver(nav, store)

	sum, err := driver.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, sum.Processed, "listings around the failed page must survive")
	require.Equal(t, 1, sum.FailedPages)
}

func TestConsecutiveFailuresEndCategory(t *testing.T) {
	nav := &fakeNav{
		pages: map[string]string{
			"https://acme.example/k/gitar?page=1": page(card{"Gitar A", "900,00 TL", "/u/a"}),
		},
		fail: map[string]bool{
			"https://acme.example/k/gitar?page=2": true,
			"https://acme.example/k/gitar?page=3": true,
		},
	}

	store := catalog.NewMemory()
	driver := newTestDriver(nav, store)

	sum, err := driver.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, sum.FailedPages)
	require.Len(t, nav.loads, 3, "category must end after two consecutive failures")
}

func TestMaxPagesCap(t *testing.T) {
	nav := &fakeNav{pages: map[string]string{}}
	for p := 1; p <= 10; p++ {
		nav.pages[fmt.Sprintf("https://acme.example/k/gitar?page=%d", p)] = page(
			card{fmt.Sprintf("Gitar %d", p), "1.000,00 TL", fmt.Sprintf("/u/g%d", p)},
		)
	}

	store := catalog.NewMemory()
	driver := newTestDriver(nav, store)
	driver.Site.Categories[0].MaxPages = 5

	sum, err := driver.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, nav.loads, 5)
	require.Equal(t, 5, sum.Processed)
}

func TestEndToEndPass(t *testing.T) {
	pages := map[string]string{
		"https://acme.example/k/gitar?page=1": page(
			card{"Fender CD-60", "7.499,00 TL", "/u/fender-cd60"},
			card{"Yamaha F310", "5.250,00 TL", "/u/yamaha-f310"},
			card{"Cort AD810", "4.100,00 TL", "/u/cort-ad810"},
		),
		"https://acme.example/k/gitar?page=2": page(
			card{"Ibanez V50NJP", "6.350,00 TL", "/u/ibanez-v50"},
			card{"Takamine GD11M", "8.900,00 TL", "/u/takamine-gd11"},
			card{"Gizemli Gitar", "Fiyat Sorunuz", "/u/gizemli"},
		),
	}

	nav := &fakeNav{pages: pages}
	store := catalog.NewMemory()
	driver := newTestDriver(nav, store)

	sum, err := driver.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 5, sum.Processed)
	require.Equal(t, 5, sum.Created)
	require.Equal(t, 1, sum.Skipped, "the priceless listing is skipped, not stored")
	require.Equal(t, 5, store.ProductCount())
	require.Equal(t, 1, store.BusinessCount())

	p, err := store.FindProductByURL(context.Background(), "https://acme.example/u/fender-cd60")
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, 7499.00, p.Price)
	require.Equal(t, "Acme Müzik", p.BusinessName)
	require.Len(t, p.PriceHistory, 1)

	// Re-running the identical pass must be a no-op apart from touches.
	sum2, err := newTestDriver(nav, store).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, sum2.Created)
	require.Equal(t, 5, sum2.Unchanged)
	require.Equal(t, 5, store.ProductCount())

	p, err = store.FindProductByURL(context.Background(), "https://acme.example/u/fender-cd60")
	require.NoError(t, err)
	require.Len(t, p.PriceHistory, 1, "second identical pass must not grow the history")
}
