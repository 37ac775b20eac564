package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	cu "github.com/Davincible/chromedp-undetected"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"

	"kompare/pkg/models"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Navigator loads a storefront page and returns its rendered HTML. A failed
// load after retries is reported as an error wrapping models.ErrPageUnavailable;
// callers skip the page and move on.
type Navigator interface {
	Load(ctx context.Context, pageURL, readySelector string) (string, error)
	Close() error
}

// Options configure a Chrome navigator.
type Options struct {
	// Timeout bounds a single navigation attempt, wait-for-selector included.
	Timeout time.Duration
	// MaxRetries is the number of reloads attempted after the first failure.
	MaxRetries int
	// Stealth launches the browser through the undetected wrapper.
	Stealth   bool
	UserAgent string
}

func (o *Options) fill() {
	if o.Timeout <= 0 {
		o.Timeout = 45 * time.Second
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
}

// Chrome drives a single headless tab. The tab is shared serially across all
// loads of a run; the mutex keeps that invariant if a caller ever fans out.
type Chrome struct {
	mu      sync.Mutex
	ctx     context.Context
	cancels []context.CancelFunc
	opts    Options
}

func NewChrome(opts Options) (*Chrome, error) {
	opts.fill()

	var (
		ctx     context.Context
		cancels []context.CancelFunc
	)

	if opts.Stealth {
		cuCtx, cancel, err := cu.New(cu.NewConfig(cu.WithHeadless()))
		if err != nil {
			return nil, fmt.Errorf("launching undetected browser: %w", err)
		}
		ctx = cuCtx
		cancels = append(cancels, cancel)
	} else {
		allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.UserAgent(opts.UserAgent),
			chromedp.WindowSize(1920, 1080),
		)
		allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
		tabCtx, cancelTab := chromedp.NewContext(allocCtx)
		ctx = tabCtx
		cancels = append(cancels, cancelTab, cancelAlloc)
	}

	// Block heavy static assets; the pipeline only needs the DOM.
	err := chromedp.Run(ctx,
		network.Enable(),
		network.SetBlockedURLs([]string{
			"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.svg",
			"*.css", "*.woff", "*.woff2", "*.ttf",
		}),
	)
	if err != nil {
		for _, cancel := range cancels {
			cancel()
		}
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	return &Chrome{ctx: ctx, cancels: cancels, opts: opts}, nil
}

// Load navigates the tab to pageURL and waits for readySelector to render.
// On timeout or navigation error it reloads the page up to MaxRetries times
// before giving up.
func (c *Chrome) Load(ctx context.Context, pageURL, readySelector string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		action := chromedp.Navigate(pageURL)
		if attempt > 0 {
			log.WithFields(log.Fields{"url": pageURL, "attempt": attempt + 1}).
				Warn("reloading page")
			action = chromedp.Reload()
		}

		attemptCtx, cancel := context.WithTimeout(c.ctx, c.opts.Timeout)
		var html string
		err := chromedp.Run(attemptCtx,
			action,
			chromedp.WaitReady(readySelector, chromedp.ByQuery),
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		)
		cancel()

		if err == nil {
			return html, nil
		}
		lastErr = err
	}

	return "", fmt.Errorf("%w: %s after %d attempts: %v",
		models.ErrPageUnavailable, pageURL, c.opts.MaxRetries+1, lastErr)
}

func (c *Chrome) Close() error {
	for _, cancel := range c.cancels {
		cancel()
	}
	return nil
}
