// Package sites holds the declarative per-seller scrape configuration. Each
// seller is one record: identity for the business registry, base URL, page URL
// pattern, selector map, price locale and category list. Adding a site means
// adding a record here, not writing a new scraper.
package sites

import (
	"fmt"

	"kompare/pkg/catalog"
	"kompare/pkg/extract"
	"kompare/pkg/models"
	"kompare/pkg/pricing"
)

// Category is one storefront category to page through.
type Category struct {
	// Slug is the site's own category path segment.
	Slug     string
	MaxPages int
	Path     catalog.CategoryPath
}

// Site is the full configuration for one seller's scraper.
type Site struct {
	// Business identity, fixed at first sight of the seller.
	Name     string
	Website  string
	Address  string
	Location [2]float64 // lon, lat

	BaseURL string
	// PageURLFormat builds a category page URL from (slug, page number).
	PageURLFormat string
	ReadySelector string
	Selectors     extract.SelectorMap

	Locale   pricing.Locale
	Currency string

	// Dynamic sites render listings client-side and need the headless browser;
	// the rest are fetched as plain HTML.
	Dynamic bool
	// SweepStale enables the post-pass staleness sweep for this seller.
	SweepStale bool

	Categories []Category
}

// PageURL builds the URL of one category page.
func (s Site) PageURL(c Category, page int) string {
	return fmt.Sprintf(s.PageURLFormat, c.Slug, page)
}

// Business returns the seller's registry record.
func (s Site) Business() models.Business {
	return models.Business{
		Name:     s.Name,
		Website:  s.Website,
		Address:  s.Address,
		Location: models.NewGeoPoint(s.Location[0], s.Location[1]),
	}
}

// All returns the configured sellers in run order.
func All() []Site {
	return []Site{
		{
			Name:          "Melodika Müzik",
			Website:       "https://www.melodikamuzik.com.tr",
			Address:       "Galip Dede Cd. 27, Beyoğlu, İstanbul",
			Location:      [2]float64{28.9744, 41.0265},
			BaseURL:       "https://www.melodikamuzik.com.tr",
			PageURLFormat: "https://www.melodikamuzik.com.tr/kategori/%s?page=%d",
			ReadySelector: "div.product-list",
			Selectors: extract.SelectorMap{
				ItemContainer: "div.product-list div.product-card",
				Name:          ".product-card__title",
				Price:         ".product-card__price",
				Image:         "img.product-card__image",
				DetailLink:    "a.product-card__link",
			},
			Locale:     pricing.LocaleTR,
			Currency:   pricing.ReferenceCurrency,
			Dynamic:    true,
			SweepStale: true,
			Categories: []Category{
				{Slug: "akustik-gitar", MaxPages: 20, Path: catalog.CategoryPath{
					Main: "Telli Çalgılar", Sub: "Gitar", Item: "Akustik Gitar", Slug: "akustik-gitar"}},
				{Slug: "elektro-gitar", MaxPages: 20, Path: catalog.CategoryPath{
					Main: "Telli Çalgılar", Sub: "Gitar", Item: "Elektro Gitar", Slug: "elektro-gitar"}},
				{Slug: "dijital-piyano", MaxPages: 15, Path: catalog.CategoryPath{
					Main: "Tuşlu Çalgılar", Sub: "Piyano", Item: "Dijital Piyano", Slug: "dijital-piyano"}},
			},
		},
		{
			Name:          "Armoni Enstrüman",
			Website:       "https://www.armonienstruman.com",
			Address:       "Kızılay Mh. 14/B, Çankaya, Ankara",
			Location:      [2]float64{32.8541, 39.9208},
			BaseURL:       "https://www.armonienstruman.com",
			PageURLFormat: "https://www.armonienstruman.com/c/%s/sayfa-%d",
			ReadySelector: "ul.urun-listesi",
			Selectors: extract.SelectorMap{
				ItemContainer: "ul.urun-listesi li.urun",
				Name:          "h3.urun-adi",
				Price:         "span.urun-fiyat",
				Image:         "img.urun-gorsel",
				DetailLink:    "a.urun-detay",
			},
			Locale:   pricing.LocaleTR,
			Currency: pricing.ReferenceCurrency,
			Categories: []Category{
				{Slug: "keman", MaxPages: 10, Path: catalog.CategoryPath{
					Main: "Yaylı Çalgılar", Sub: "Keman", Item: "Keman", Slug: "keman"}},
				{Slug: "bateri", MaxPages: 10, Path: catalog.CategoryPath{
					Main: "Vurmalı Çalgılar", Sub: "Bateri", Item: "Akustik Bateri", Slug: "bateri"}},
			},
		},
		{
			Name:          "SoundPort Import",
			Website:       "https://www.soundport-import.com",
			Location:      [2]float64{27.1428, 38.4237},
			BaseURL:       "https://www.soundport-import.com",
			PageURLFormat: "https://www.soundport-import.com/collections/%s?page=%d",
			ReadySelector: "div#product-grid",
			Selectors: extract.SelectorMap{
				ItemContainer: "div#product-grid div.grid-item",
				Name:          ".grid-item__title",
				Price:         ".grid-item__price",
				Image:         "img.grid-item__img",
				DetailLink:    "a.grid-item__link",
			},
			Locale:   pricing.LocaleUS,
			Currency: "USD",
			Dynamic:  true,
			Categories: []Category{
				{Slug: "synthesizers", MaxPages: 8, Path: catalog.CategoryPath{
					Main: "Tuşlu Çalgılar", Sub: "Synthesizer", Item: "Synthesizer", Slug: "synthesizer"}},
				{Slug: "studio-monitors", MaxPages: 8, Path: catalog.CategoryPath{
					Main: "Stüdyo", Sub: "Monitör", Item: "Stüdyo Monitörü", Slug: "studyo-monitoru"}},
			},
		},
	}
}

// Find returns the configured site with the given name.
func Find(name string) (Site, bool) {
	for _, s := range All() {
		if s.Name == name {
			return s, true
		}
	}
	return Site{}, false
}
