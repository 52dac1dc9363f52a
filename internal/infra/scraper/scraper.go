package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/virouzrx/petfood-verifai/internal/domain/ingredients"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Scraper fetches a product page once, best effort, and extracts the product
// name and ingredient text via ordered selector fallbacks.
type Scraper struct {
	client *resty.Client
}

func New(timeout time.Duration, userAgent string) *Scraper {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.9").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	return &Scraper{client: client}
}

// Scrape issues a single GET, no retries. Transport errors and non-2xx
// statuses are reported as ErrFetchFailed; a reachable page that matches no
// selector is not an error.
func (s *Scraper) Scrape(ctx context.Context, url string) (*ingredients.Acquisition, error) {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ingredients.ErrFetchFailed, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("%w: status %d", ingredients.ErrFetchFailed, resp.StatusCode())
	}

	acq := Extract(resp.Body())
	acq.RawHTML = resp.Body()
	return acq, nil
}
