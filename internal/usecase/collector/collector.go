// Package collector implements the Feed Collector stage: it polls each
// configured source's RSS/Atom feed and turns every item into a FeedEntry,
// canonicalising the URL and resolving a best-effort lead image.
package collector

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/observability/metrics"
	"newsdigest/internal/resilience/circuitbreaker"
	"newsdigest/internal/resilience/retry"
)

// Collector fetches one source's feed and yields FeedEntry values.
// It carries its own circuit breaker and retry profile, grounded in the
// feed-fetch endpoint's tuning: 5 attempts, 1s-30s backoff.
type Collector struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	userAgent      string
}

// New builds a Collector against the given HTTP client.
func New(client *http.Client) *Collector {
	return &Collector{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
		userAgent:      "NewsDigestBot/1.0 (+https://newsdigest.example/bot)",
	}
}

// Collect retrieves and parses src's feed, returning one FeedEntry per item.
func (c *Collector) Collect(ctx context.Context, src entity.Source) ([]entity.FeedEntry, error) {
	start := time.Now()
	var entries []entity.FeedEntry

	err := retry.WithBackoff(ctx, c.retryConfig, func() error {
		result, cbErr := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doFetch(ctx, src)
		})
		if cbErr != nil {
			if errors.Is(cbErr, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("source", src.Name),
					slog.String("state", c.circuitBreaker.State().String()))
			}
			return cbErr
		}
		entries = result.([]entity.FeedEntry)
		return nil
	})

	metrics.RecordFeedCrawl(src.Name, time.Since(start), len(entries))
	if err != nil {
		metrics.RecordFeedCrawlError(src.Name, "fetch_failed")
		return nil, err
	}
	return entries, nil
}

func (c *Collector) doFetch(ctx context.Context, src entity.Source) ([]entity.FeedEntry, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = c.userAgent
	fp.Client = c.client

	feed, err := fp.ParseURLWithContext(src.FeedURL, ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]entity.FeedEntry, 0, len(feed.Items))
	for _, it := range feed.Items {
		publishedAt := time.Now()
		if it.PublishedParsed != nil {
			publishedAt = *it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			publishedAt = *it.UpdatedParsed
		}

		summary := stripHTML(it.Description)
		body := stripHTML(it.Content)
		if body == "" {
			body = summary
		}

		entries = append(entries, entity.FeedEntry{
			SourceName:  src.Name,
			URL:         entity.CanonicalizeURL(it.Link),
			GUID:        it.GUID,
			Title:       strings.TrimSpace(it.Title),
			Summary:     summary,
			Body:        body,
			ImageURL:    c.leadImage(ctx, it),
			PublishedAt: publishedAt,
			FetchedAt:   time.Now(),
		})
	}
	return entries, nil
}

// stripHTML renders html down to plain text using a tolerant HTML parser,
// per the FeedEntry invariant that summary/body are HTML-stripped. Runs of
// whitespace, including those left where tags were removed, collapse to a
// single space.
func stripHTML(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// leadImage resolves a best-effort lead image for a feed item, preferring
// an explicit enclosure, then the feed-level image element, then the first
// <img> tag embedded in the item's content, and only as a last resort the
// article page's Open-Graph image tag.
func (c *Collector) leadImage(ctx context.Context, it *gofeed.Item) string {
	if img := leadImageFromFeed(it); img != "" {
		return img
	}
	return c.fetchOpenGraphImage(ctx, it.Link)
}

// leadImageFromFeed resolves a lead image using only data already present
// in the parsed feed item, with no network calls.
func leadImageFromFeed(it *gofeed.Item) string {
	for _, enc := range it.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	if it.Image != nil && it.Image.URL != "" {
		return it.Image.URL
	}
	if src := firstImgSrc(it.Content); src != "" {
		return src
	}
	return firstImgSrc(it.Description)
}

// firstImgSrc extracts the src attribute of the first <img> tag in html, if
// any. Used as a fallback lead image source when a feed carries no explicit
// enclosure or media element.
func firstImgSrc(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img").First().Attr("src")
	return src
}

// fetchOpenGraphImage is the last-resort lead image source: a HEAD request
// to confirm the article page is reachable, followed by a bounded partial
// GET to read just enough of the page to find its og:image meta tag.
// Network failures at either step simply leave the entry with no image.
func (c *Collector) fetchOpenGraphImage(ctx context.Context, pageURL string) string {
	if pageURL == "" {
		return ""
	}

	headReq, err := http.NewRequestWithContext(ctx, http.MethodHead, pageURL, nil)
	if err != nil {
		return ""
	}
	headReq.Header.Set("User-Agent", c.userAgent)
	headResp, err := c.client.Do(headReq)
	if err != nil {
		return ""
	}
	_ = headResp.Body.Close()
	if headResp.StatusCode != http.StatusOK {
		return ""
	}

	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	getReq.Header.Set("User-Agent", c.userAgent)
	getReq.Header.Set("Range", "bytes=0-65535")
	getResp, err := c.client.Do(getReq)
	if err != nil {
		return ""
	}
	defer func() { _ = getResp.Body.Close() }()
	if getResp.StatusCode != http.StatusOK && getResp.StatusCode != http.StatusPartialContent {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(getResp.Body)
	if err != nil {
		return ""
	}
	content, _ := doc.Find(`meta[property="og:image"]`).Attr("content")
	return content
}
