package catalog

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"kompare/pkg/models"
	"kompare/pkg/pricing"
)

// Mode selects whether a pass may create new products or only refresh ones
// already in the catalog.
type Mode int

const (
	ModeFull Mode = iota
	ModeUpdateOnly
)

// Result classifies the outcome of a single upsert.
type Result int

const (
	ResultSkipped Result = iota
	ResultCreated
	ResultUpdated
	ResultUnchanged
)

func (r Result) String() string {
	switch r {
	case ResultCreated:
		return "created"
	case ResultUpdated:
		return "updated"
	case ResultUnchanged:
		return "unchanged"
	default:
		return "skipped"
	}
}

// CategoryPath is the taxonomy a listing is filed under.
type CategoryPath struct {
	Main string
	Sub  string
	Item string
	Slug string
}

// Engine applies extracted listings to the catalog idempotently, keyed by
// productUrl. Re-running the same pass creates no duplicate products and no
// duplicate history entries.
type Engine struct {
	Store    Store
	Rates    *pricing.Rates
	Locale   pricing.Locale
	Currency string
	Mode     Mode

	// Now is a clock hook for tests; defaults to time.Now.
	Now func() time.Time
}

func NewEngine(store Store, rates *pricing.Rates, locale pricing.Locale, currency string) *Engine {
	return &Engine{
		Store:    store,
		Rates:    rates,
		Locale:   locale,
		Currency: currency,
		Mode:     ModeFull,
		Now:      time.Now,
	}
}

// Upsert normalizes one raw listing and merges it into the catalog. Listings
// whose price does not parse to a positive amount are skipped, never stored.
func (e *Engine) Upsert(ctx context.Context, raw models.RawListing, seller models.Business, cat CategoryPath) (Result, error) {
	price, ok := pricing.Parse(raw.PriceText, e.Locale)
	if !ok {
		log.WithFields(log.Fields{"name": raw.Name, "priceText": raw.PriceText}).
			Debug("dropping listing with unparseable price")
		return ResultSkipped, nil
	}

	price, err := e.Rates.Convert(ctx, price, e.Currency)
	if err != nil {
		return ResultSkipped, err
	}

	existing, err := e.Store.FindProductByURL(ctx, raw.ProductURL)
	if err != nil {
		return ResultSkipped, err
	}

	now := e.Now()

	if existing == nil {
		if e.Mode == ModeUpdateOnly {
			return ResultSkipped, nil
		}
		p := models.Product{
			Name:         raw.Name,
			Price:        price,
			Brand:        brandOf(raw.Name),
			Image:        raw.Image,
			ProductURL:   raw.ProductURL,
			BusinessName: seller.Name,
			BusinessID:   seller.ID,
			MainCategory: cat.Main,
			Subcategory:  cat.Sub,
			CategoryItem: cat.Item,
			CategorySlug: cat.Slug,
			CreatedAt:    now,
			UpdatedAt:    now,
			PriceHistory: []models.PricePoint{{Price: price, Date: now}},
		}
		if err := e.Store.InsertProduct(ctx, p); err != nil {
			return ResultSkipped, err
		}
		return ResultCreated, nil
	}

	if existing.Price != price {
		update := ProductUpdate{
			Price:         &price,
			Image:         raw.Image,
			UpdatedAt:     now,
			HistoryAppend: &models.PricePoint{Price: price, Date: now},
		}
		if err := e.Store.UpdateProduct(ctx, raw.ProductURL, update); err != nil {
			return ResultSkipped, err
		}
		return ResultUpdated, nil
	}

	// Same price: touch updatedAt so the staleness sweep sees the listing,
	// without growing the history.
	if err := e.Store.UpdateProduct(ctx, raw.ProductURL, ProductUpdate{UpdatedAt: now}); err != nil {
		return ResultSkipped, err
	}
	return ResultUnchanged, nil
}

// Reconcile removes the seller's listings not observed during the pass that
// started at passStartedAt. The predicate (createdAt == updatedAt, stale
// updatedAt) cannot tell "never seen again" from "seen once, price never
// changed" after a second untouched pass; kept as-is on purpose.
func (e *Engine) Reconcile(ctx context.Context, businessName string, passStartedAt time.Time) (int64, error) {
	return e.Store.DeleteStale(ctx, businessName, passStartedAt)
}

// brandOf derives a brand from the seller's raw title when the site exposes
// no explicit brand field.
func brandOf(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
