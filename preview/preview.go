package preview

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// LinkPreview holds the title and description extracted from a shared
// resource link
type LinkPreview struct {
	URL         string
	Title       string
	Description string
}

// Fetcher fetches shared resource pages and extracts preview metadata
type Fetcher struct {
	collector *colly.Collector
}

// NewFetcher creates a new Fetcher instance
func NewFetcher() *Fetcher {
	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)

	// Keep shared-link fetches polite: one at a time, short delay
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       1 * time.Second,
	})

	return &Fetcher{
		collector: c,
	}
}

// Fetch retrieves the page at url and extracts its title and meta
// description. A page without metadata yields an empty preview, not an
// error.
func (f *Fetcher) Fetch(url string) (*LinkPreview, error) {
	preview := &LinkPreview{URL: url}
	var fetchErr error

	// Clone per fetch so response callbacks and the visited-URL cache
	// don't accumulate across calls
	c := f.collector.Clone()
	c.OnError(func(r *colly.Response, err error) {
		log.Printf("Error fetching %s: %v\n", r.Request.URL, err)
	})
	c.OnResponse(func(r *colly.Response) {
		p, err := Parse(string(r.Body))
		if err != nil {
			fetchErr = err
			return
		}
		preview.Title = p.Title
		preview.Description = p.Description
	})

	if err := c.Visit(url); err != nil {
		return nil, fmt.Errorf("failed to visit URL: %w", err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}

	return preview, nil
}

// Parse extracts preview metadata from HTML content
func Parse(htmlContent string) (*LinkPreview, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	preview := &LinkPreview{}

	preview.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if ogTitle, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && ogTitle != "" {
		preview.Title = strings.TrimSpace(ogTitle)
	}

	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		preview.Description = strings.TrimSpace(desc)
	}
	if ogDesc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok && ogDesc != "" {
		preview.Description = strings.TrimSpace(ogDesc)
	}

	return preview, nil
}

// FlattenHTML reduces an HTML fragment to its plain text, for feeding
// HTML-bearing fields (resource descriptions) to the text filter. Input
// that is not HTML passes through unchanged apart from whitespace
// normalization.
func FlattenHTML(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return normalizeSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return normalizeSpace(fragment)
	}
	return normalizeSpace(doc.Text())
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
