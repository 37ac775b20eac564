package pricing

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"
)

// ReferenceCurrency is the currency every stored price is normalized to.
const ReferenceCurrency = "TRY"

// FallbackUSDTRY is used when the rate endpoint is unreachable. A stale rate
// beats losing a whole crawl pass.
const FallbackUSDTRY = 41.2

type rateResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// Rates resolves foreign-currency quotes into the reference currency. The
// exchange rate is fetched once, lazily, on the first conversion.
type Rates struct {
	client  *resty.Client
	url     string
	usdRate float64
	fetched bool
}

func NewRates(rateURL string) *Rates {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2)
	return &Rates{client: client, url: rateURL}
}

// USDToTRY returns the current USD→TRY rate, falling back to FallbackUSDTRY on
// any fetch or parse failure. Rate failure is never fatal.
func (r *Rates) USDToTRY(ctx context.Context) float64 {
	if r.fetched {
		return r.usdRate
	}

	r.usdRate = FallbackUSDTRY
	r.fetched = true

	var body rateResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get(r.url)
	if err != nil {
		log.WithError(err).Warnf("rate fetch failed, using fallback %.2f", FallbackUSDTRY)
		return r.usdRate
	}
	if !resp.IsSuccess() {
		log.Warnf("rate endpoint returned %s, using fallback %.2f", resp.Status(), FallbackUSDTRY)
		return r.usdRate
	}

	rate, ok := body.Rates[ReferenceCurrency]
	if !ok || rate <= 0 {
		log.Warnf("rate response missing %s, using fallback %.2f", ReferenceCurrency, FallbackUSDTRY)
		return r.usdRate
	}

	r.usdRate = rate
	log.Infof("USD→%s rate %.4f", ReferenceCurrency, rate)
	return r.usdRate
}

// Convert normalizes an amount quoted in the given currency to the reference
// currency. Converted amounts are rounded to the nearest whole unit.
func (r *Rates) Convert(ctx context.Context, amount float64, currency string) (float64, error) {
	switch currency {
	case "", ReferenceCurrency:
		return amount, nil
	case "USD":
		return math.Round(amount * r.USDToTRY(ctx)), nil
	default:
		return 0, fmt.Errorf("unsupported source currency %q", currency)
	}
}
