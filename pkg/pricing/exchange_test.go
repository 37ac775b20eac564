package pricing

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRatesConvert(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"base":"USD","rates":{"TRY":40.0}}`)
	}))
	defer ts.Close()

	rates := NewRates(ts.URL)
	ctx := context.Background()

	got, err := rates.Convert(ctx, 19.99, "USD")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	// 19.99 * 40 = 799.6, rounded to the nearest whole unit
	if got != 800 {
		t.Errorf("Convert = %v, want 800", got)
	}

	// Reference-currency amounts pass through untouched.
	got, err = rates.Convert(ctx, 123.45, "TRY")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if got != 123.45 {
		t.Errorf("Convert = %v, want 123.45", got)
	}
}

func TestRatesFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer ts.Close()

	rates := NewRates(ts.URL)
	rate := rates.USDToTRY(context.Background())
	if rate != FallbackUSDTRY {
		t.Errorf("expected fallback rate %v, got %v", FallbackUSDTRY, rate)
	}
}

func TestRatesFetchedOnce(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"rates":{"TRY":40.0}}`)
	}))
	defer ts.Close()

	rates := NewRates(ts.URL)
	ctx := context.Background()
	rates.USDToTRY(ctx)
	rates.USDToTRY(ctx)

	if calls != 1 {
		t.Errorf("expected 1 rate fetch, got %d", calls)
	}
}

func TestRatesUnsupportedCurrency(t *testing.T) {
	rates := NewRates("http://127.0.0.1:0")
	if _, err := rates.Convert(context.Background(), 10, "GBP"); err == nil {
		t.Error("expected error for unsupported currency")
	}
}
