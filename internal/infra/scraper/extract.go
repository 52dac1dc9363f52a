package scraper

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/virouzrx/petfood-verifai/internal/domain/ingredients"
)

// extractor returns normalized text for one marker, or "" when it matched
// nothing. Extractors are tried in order; the first non-empty result wins.
type extractor func(doc *goquery.Document) string

// nameExtractors: site-specific product title marker first, then the social
// preview meta tag, then the first heading, then the document title.
var nameExtractors = []extractor{
	selectorText(`h1[data-zta="ProductTitle"]`),
	metaContent(`meta[property="og:title"]`),
	selectorText("h1"),
	selectorText("title"),
}

// ingredientExtractors: same policy over known ingredient containers.
var ingredientExtractors = []extractor{
	selectorText(`div[data-zta="ProductIngredients"]`),
	selectorText("#ingredients"),
	selectorText(".ingredients-list"),
	selectorText(`[itemprop="ingredients"]`),
}

// Extract never fails: an unparseable or unrecognized page yields the
// sentinel name and empty ingredient text.
func Extract(body []byte) *ingredients.Acquisition {
	acq := &ingredients.Acquisition{ProductName: ingredients.UnknownProductName}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return acq
	}

	if name := firstMatch(doc, nameExtractors); name != "" {
		acq.ProductName = name
	}
	acq.IngredientsText = firstMatch(doc, ingredientExtractors)
	return acq
}

func firstMatch(doc *goquery.Document, chain []extractor) string {
	for _, extract := range chain {
		if v := extract(doc); v != "" {
			return v
		}
	}
	return ""
}

func selectorText(selector string) extractor {
	return func(doc *goquery.Document) string {
		return normalize(doc.Find(selector).First().Text())
	}
}

func metaContent(selector string) extractor {
	return func(doc *goquery.Document) string {
		content, _ := doc.Find(selector).Attr("content")
		return normalize(content)
	}
}

// normalize collapses runs of whitespace to single spaces and trims the ends.
// HTML entities are already decoded by the parser.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
