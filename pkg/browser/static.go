package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"kompare/pkg/models"
)

// Static fetches server-rendered storefronts over plain HTTP. The ready
// selector is ignored: a static page is fully rendered on arrival.
type Static struct {
	mu         sync.Mutex
	collector  *colly.Collector
	maxRetries int
	retryWait  time.Duration
	lastHTML   string
}

func NewStatic(maxRetries int, domains ...string) *Static {
	c := colly.NewCollector(
		colly.AllowedDomains(domains...),
		colly.UserAgent(defaultUserAgent),
		colly.AllowURLRevisit(),
	)

	s := &Static{
		collector:  c,
		maxRetries: maxRetries,
		retryWait:  2 * time.Second,
	}
	c.OnResponse(func(r *colly.Response) {
		s.lastHTML = string(r.Body)
	})
	return s
}

func (s *Static) Load(ctx context.Context, pageURL, readySelector string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if attempt > 0 {
			time.Sleep(s.retryWait)
		}

		s.lastHTML = ""
		if err := s.collector.Visit(pageURL); err != nil {
			lastErr = err
			continue
		}
		if s.lastHTML == "" {
			lastErr = fmt.Errorf("empty response body")
			continue
		}
		return s.lastHTML, nil
	}

	return "", fmt.Errorf("%w: %s after %d attempts: %v",
		models.ErrPageUnavailable, pageURL, s.maxRetries+1, lastErr)
}

func (s *Static) Close() error {
	return nil
}
