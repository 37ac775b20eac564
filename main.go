package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"kompare/pkg/browser"
	"kompare/pkg/catalog"
	"kompare/pkg/config"
	"kompare/pkg/logger"
	"kompare/pkg/pipeline"
	"kompare/pkg/pricing"
	"kompare/pkg/runlog"
	"kompare/pkg/sites"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel)

	ctx := context.Background()

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	store, err := catalog.NewMongo(connectCtx, cfg.MongoURI, cfg.MongoDB)
	cancel()
	if err != nil {
		log.Fatalf("cannot reach catalog store: %v", err)
	}
	defer store.Close(ctx)

	journal, err := runlog.Open(cfg.RunlogPath)
	if err != nil {
		log.WithError(err).Warn("run journal unavailable, continuing without it")
		journal = nil
	} else {
		defer journal.Close()
	}

	rates := pricing.NewRates(cfg.RateAPIURL)

	targets := selectSites(os.Args[1:])
	if len(targets) == 0 {
		log.Fatal("no matching sites to run")
	}

	failures := 0
	for _, site := range targets {
		if err := runSite(ctx, cfg, store, rates, journal, site); err != nil {
			failures++
			log.WithError(err).Errorf("run failed for %s", site.Name)
		}
	}

	if failures > 0 {
		os.Exit(1)
	}
}

func runSite(ctx context.Context, cfg config.Config, store catalog.Store, rates *pricing.Rates, journal *runlog.Journal, site sites.Site) error {
	nav, err := newNavigator(cfg, site)
	if err != nil {
		return fmt.Errorf("launching navigator: %w", err)
	}
	defer nav.Close()

	engine := catalog.NewEngine(store, rates, site.Locale, site.Currency)
	if cfg.UpdateOnly {
		engine.Mode = catalog.ModeUpdateOnly
	}

	driver := pipeline.New(site, nav, engine, cfg.WriteDelay)

	started := time.Now()
	sum, err := driver.Run(ctx)

	status := "completed"
	if err != nil {
		status = "failed"
	}
	if journal != nil {
		rec := runlog.Run{
			Site:       site.Name,
			StartedAt:  started,
			FinishedAt: time.Now(),
			Status:     status,
			Summary:    sum,
		}
		if rerr := journal.Record(rec); rerr != nil {
			log.WithError(rerr).Warn("failed to journal run")
		}
	}

	return err
}

func newNavigator(cfg config.Config, site sites.Site) (browser.Navigator, error) {
	if site.Dynamic {
		return browser.NewChrome(browser.Options{
			Timeout:    cfg.NavTimeout,
			MaxRetries: cfg.NavMaxRetries,
			Stealth:    cfg.Stealth,
		})
	}

	u, err := url.Parse(site.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", site.BaseURL, err)
	}
	return browser.NewStatic(cfg.NavMaxRetries, u.Host), nil
}

// selectSites maps command-line names onto configured sites; with no names,
// every configured site runs.
func selectSites(names []string) []sites.Site {
	if len(names) == 0 {
		return sites.All()
	}

	var out []sites.Site
	for _, name := range names {
		site, ok := sites.Find(name)
		if !ok {
			log.Warnf("unknown site %q, skipping", name)
			continue
		}
		out = append(out, site)
	}
	return out
}
