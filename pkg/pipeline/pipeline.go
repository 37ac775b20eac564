package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"kompare/pkg/browser"
	"kompare/pkg/catalog"
	"kompare/pkg/extract"
	"kompare/pkg/logger"
	"kompare/pkg/models"
	"kompare/pkg/sites"
)

// After this many consecutive failed pages the category is treated as
// unreachable rather than as having isolated holes.
const maxConsecutiveFailures = 2

// Summary is the outcome of one full pass over a site.
type Summary struct {
	Processed   int
	Created     int
	Updated     int
	Unchanged   int
	Skipped     int
	FailedPages int
	Deleted     int64
}

func (s Summary) String() string {
	return fmt.Sprintf("processed=%d created=%d updated=%d unchanged=%d skipped=%d failed_pages=%d deleted=%d",
		s.Processed, s.Created, s.Updated, s.Unchanged, s.Skipped, s.FailedPages, s.Deleted)
}

// Driver runs one site's pass: categories in configured order, pages in
// ascending order, one page in flight at a time. Per-page and per-record
// failures are logged and skipped; only a store-level failure aborts the run.
type Driver struct {
	Site   sites.Site
	Nav    browser.Navigator
	Engine *catalog.Engine

	// WriteDelay is the politeness pause between per-product writes.
	WriteDelay time.Duration

	log *log.Entry
}

func New(site sites.Site, nav browser.Navigator, engine *catalog.Engine, writeDelay time.Duration) *Driver {
	return &Driver{
		Site:       site,
		Nav:        nav,
		Engine:     engine,
		WriteDelay: writeDelay,
		log:        log.WithFields(log.Fields{"site": site.Name}),
	}
}

// Run executes a full pass and returns its summary. The returned error is
// non-nil only for systemic failures (seller registry unreachable, bad site
// config); everything page- or record-scoped is absorbed into the summary.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	passStart := d.Engine.Now()
	d.log.Info("pass starting")

	seller, err := d.Engine.Store.EnsureBusiness(ctx, d.Site.Business())
	if err != nil {
		return sum, fmt.Errorf("resolving seller %q: %w", d.Site.Name, err)
	}

	base, err := url.Parse(d.Site.BaseURL)
	if err != nil {
		return sum, fmt.Errorf("invalid base URL %q: %w", d.Site.BaseURL, err)
	}

	for _, cat := range d.Site.Categories {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		d.runCategory(ctx, seller, base, cat, &sum)
	}

	if d.Site.SweepStale {
		deleted, err := d.Engine.Reconcile(ctx, d.Site.Name, passStart)
		if err != nil {
			d.log.WithError(err).Error("staleness sweep failed")
		} else {
			sum.Deleted = deleted
		}
	}

	d.log.Infof("pass finished: %s", sum)
	return sum, nil
}

func (d *Driver) runCategory(ctx context.Context, seller models.Business, base *url.URL, cat sites.Category, sum *Summary) {
	clog := d.log.WithFields(log.Fields{"category": cat.Slug})
	clog.Info("category starting")

	consecutiveFailures := 0
	for page := 1; page <= cat.MaxPages; page++ {
		if ctx.Err() != nil {
			return
		}

		pageURL := d.Site.PageURL(cat, page)
		html, err := d.Nav.Load(ctx, pageURL, d.Site.ReadySelector)
		if err != nil {
			sum.FailedPages++
			consecutiveFailures++
			clog.WithError(err).WithFields(log.Fields{"page": page}).Warn("page skipped")
			if consecutiveFailures >= maxConsecutiveFailures {
				clog.Warn("too many consecutive failures, ending category")
				return
			}
			continue
		}
		consecutiveFailures = 0

		listings, err := extract.Listings(html, d.Site.Selectors, base)
		if err != nil {
			sum.FailedPages++
			clog.WithError(err).WithFields(log.Fields{"page": page}).Warn("extraction failed, page skipped")
			continue
		}

		if len(listings) == 0 {
			clog.WithFields(log.Fields{"page": page}).Info("empty page, category done")
			return
		}

		clog.WithFields(log.Fields{"page": page, "listings": len(listings)}).Info("page extracted")

		for _, raw := range listings {
			res, err := d.Engine.Upsert(ctx, raw, seller, cat.Path)
			if err != nil {
				sum.Skipped++
				clog.WithError(err).WithFields(log.Fields{"url": raw.ProductURL}).Warn("upsert failed")
				continue
			}

			logger.Dedup("[%s/%s] listing %s", d.Site.Name, cat.Slug, res)

			switch res {
			case catalog.ResultCreated:
				sum.Created++
				sum.Processed++
			case catalog.ResultUpdated:
				sum.Updated++
				sum.Processed++
			case catalog.ResultUnchanged:
				sum.Unchanged++
				sum.Processed++
			default:
				sum.Skipped++
			}

			if d.WriteDelay > 0 {
				time.Sleep(d.WriteDelay)
			}
		}
	}

	clog.Info("page cap reached, ending category")
}
