package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"

	"kompare/pkg/models"
)

// SelectorMap is the per-site extraction configuration. Each field is a CSS
// selector evaluated relative to ItemContainer (which is evaluated against the
// whole document).
type SelectorMap struct {
	ItemContainer string
	Name          string
	Price         string
	Image         string
	DetailLink    string
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func cleanText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// Listings extracts raw product records from rendered page HTML. Listings
// missing a required field (name, price text, detail link) are dropped; one
// bad card never aborts its siblings. A page whose container selector matches
// nothing yields an empty slice, which the pagination driver reads as "no
// more pages". Relative image and detail URLs are resolved against base.
func Listings(html string, sel SelectorMap, base *url.URL) ([]models.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var listings []models.RawListing
	doc.Find(sel.ItemContainer).Each(func(i int, s *goquery.Selection) {
		name := cleanText(s.Find(sel.Name).First().Text())
		priceText := cleanText(s.Find(sel.Price).First().Text())
		detailHref, _ := s.Find(sel.DetailLink).First().Attr("href")
		detailHref = strings.TrimSpace(detailHref)

		if name == "" || priceText == "" || detailHref == "" {
			log.WithFields(log.Fields{"index": i, "name": name}).
				Debug("skipping listing with missing required field")
			return
		}

		img := s.Find(sel.Image).First()
		imageSrc, ok := img.Attr("src")
		if !ok || strings.TrimSpace(imageSrc) == "" {
			// lazy-loaded images keep the real URL in data-src
			imageSrc, _ = img.Attr("data-src")
		}

		listings = append(listings, models.RawListing{
			Name:       name,
			PriceText:  priceText,
			Image:      absoluteURL(base, strings.TrimSpace(imageSrc)),
			ProductURL: absoluteURL(base, detailHref),
		})
	})

	return listings, nil
}

func absoluteURL(base *url.URL, href string) string {
	if href == "" || base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
