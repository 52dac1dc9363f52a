package ingredients

import (
	"context"
	"errors"
)

// UnknownProductName is the sentinel used when no name marker matched.
const UnknownProductName = "Unknown Product"

// ErrFetchFailed indicates the product page could not be reached at all
// (timeout, DNS, non-2xx). It is never used for parse ambiguity: a reachable
// page that matches no selector yields an Acquisition with the sentinel name
// and/or empty ingredient text instead.
var ErrFetchFailed = errors.New("product page fetch failed")

// Acquisition is the output of an ingredient source, either scraped or
// passed through from manual input. RawHTML carries the fetched page for
// snapshot archival and is never cached or persisted directly.
type Acquisition struct {
	ProductName     string `json:"product_name"`
	IngredientsText string `json:"ingredients_text"`
	RawHTML         []byte `json:"-"`
}

// Scraper port (interface untuk best-effort page scraping)
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Acquisition, error)
}
