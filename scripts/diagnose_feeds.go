// Command diagnose_feeds polls every source in the configured feed list and
// reports which ones are broken, redirected, or empty. Operators run it
// before a deploy to catch dead feeds before the worker does.
package main

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"newsdigest/internal/config"
	"newsdigest/internal/domain/entity"
)

// FeedDiagnostic is the result of probing a single source's feed.
type FeedDiagnostic struct {
	Name          string `json:"name"`
	URL           string `json:"url"`
	Status        string `json:"status"` // "OK", "HTTP_ERROR", "PARSE_ERROR", "EMPTY", "TIMEOUT", "REDIRECT"
	HTTPCode      int    `json:"http_code"`
	ItemCount     int    `json:"item_count"`
	LatestDate    string `json:"latest_date"`
	ErrorMessage  string `json:"error_message,omitempty"`
	FeedType      string `json:"feed_type"` // "RSS", "ATOM", "UNKNOWN"
	RedirectURL   string `json:"redirect_url,omitempty"`
	ResponseTime  int64  `json:"response_time_ms"`
	ContentLength int64  `json:"content_length"`
}

type rssFeed struct {
	Channel struct {
		Items []struct {
			Title   string `xml:"title"`
			PubDate string `xml:"pubDate"`
			Link    string `xml:"link"`
		} `xml:"item"`
	} `xml:"channel"`
}

type atomFeed struct {
	Entries []struct {
		Title   string `xml:"title"`
		Updated string `xml:"updated"`
		Link    struct {
			Href string `xml:"href,attr"`
		} `xml:"link"`
	} `xml:"entry"`
}

func main() {
	feedsPath := os.Getenv("FEEDS_CONFIG_PATH")
	if feedsPath == "" {
		feedsPath = "configs/feeds.yaml"
	}

	sources, err := config.LoadFeeds(feedsPath)
	if err != nil {
		log.Fatalf("failed to load feed descriptors from %s: %v", feedsPath, err)
	}

	log.Printf("diagnosing %d feed sources from %s", len(sources), feedsPath)

	diagnostics := make([]FeedDiagnostic, 0, len(sources))
	for i, source := range sources {
		log.Printf("[%d/%d] diagnosing: %s", i+1, len(sources), source.Name)
		diag := diagnoseFeed(source, 30*time.Second)
		diagnostics = append(diagnostics, diag)

		// Rate limiting to be nice to servers.
		time.Sleep(500 * time.Millisecond)
	}

	generateReport(diagnostics)
	generateJSONReport(diagnostics)
	generateFeedFixes(diagnostics, sources)
}

func diagnoseFeed(source entity.Source, timeout time.Duration) FeedDiagnostic {
	diag := FeedDiagnostic{Name: source.Name, URL: source.FeedURL}

	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.FeedURL, nil)
	if err != nil {
		diag.Status = "REQUEST_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}

	req.Header.Set("User-Agent", "NewsDigestBot/1.0 (+https://newsdigest.example/bot)")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}

	resp, err := client.Do(req)
	diag.ResponseTime = time.Since(startTime).Milliseconds()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			diag.Status = "TIMEOUT"
			diag.ErrorMessage = fmt.Sprintf("request timeout after %v", timeout)
		} else {
			diag.Status = "HTTP_ERROR"
			diag.ErrorMessage = err.Error()
		}
		return diag
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("failed to close response body: %v", err)
		}
	}()

	diag.HTTPCode = resp.StatusCode
	diag.ContentLength = resp.ContentLength

	if resp.Request.URL.String() != source.FeedURL {
		diag.RedirectURL = resp.Request.URL.String()
		diag.Status = "REDIRECT"
	}

	if resp.StatusCode != http.StatusOK {
		diag.Status = "HTTP_ERROR"
		diag.ErrorMessage = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.Status)
		return diag
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		diag.Status = "READ_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}

	itemCount, latestDate, feedType, parseErr := parseFeed(body)
	diag.FeedType = feedType
	if parseErr != nil {
		diag.Status = "PARSE_ERROR"
		diag.ErrorMessage = parseErr.Error()
		return diag
	}

	diag.ItemCount = itemCount
	diag.LatestDate = latestDate

	if itemCount == 0 {
		diag.Status = "EMPTY"
		diag.ErrorMessage = "feed has no items"
		return diag
	}

	diag.Status = "OK"
	return diag
}

func parseFeed(body []byte) (itemCount int, latestDate, feedType string, err error) {
	var rss rssFeed
	if err := xml.Unmarshal(body, &rss); err == nil && len(rss.Channel.Items) > 0 {
		return len(rss.Channel.Items), rss.Channel.Items[0].PubDate, "RSS", nil
	}

	var atom atomFeed
	if err := xml.Unmarshal(body, &atom); err == nil && len(atom.Entries) > 0 {
		return len(atom.Entries), atom.Entries[0].Updated, "ATOM", nil
	}

	preview := string(body)
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	return 0, "", "UNKNOWN", fmt.Errorf("failed to parse as RSS or Atom, content preview: %s", preview)
}

func writef(f *os.File, format string, args ...interface{}) error {
	_, err := fmt.Fprintf(f, format, args...)
	return err
}

func generateReport(diagnostics []FeedDiagnostic) {
	f, err := os.Create("feed_diagnostic_report.txt")
	if err != nil {
		log.Printf("failed to create report file: %v", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("failed to close report file: %v", err)
		}
	}()

	statusCount := make(map[string]int)
	var okCount, errorCount int
	for _, d := range diagnostics {
		statusCount[d.Status]++
		if d.Status == "OK" || d.Status == "REDIRECT" {
			okCount++
		} else {
			errorCount++
		}
	}

	_ = writef(f, "===============================================\n")
	_ = writef(f, "Feed Diagnostic Report\n")
	_ = writef(f, "Generated: %s\n", time.Now().Format(time.RFC3339))
	_ = writef(f, "Total Sources: %d\n", len(diagnostics))
	_ = writef(f, "===============================================\n\n")
	_ = writef(f, "SUMMARY:\n")
	_ = writef(f, "  working: %d (%.1f%%)\n", okCount, float64(okCount)/float64(len(diagnostics))*100)
	_ = writef(f, "  broken: %d (%.1f%%)\n", errorCount, float64(errorCount)/float64(len(diagnostics))*100)
	_ = writef(f, "\nSTATUS BREAKDOWN:\n")
	for status, count := range statusCount {
		_ = writef(f, "  %s: %d\n", status, count)
	}

	_ = writef(f, "\nWORKING FEEDS (%d):\n", statusCount["OK"]+statusCount["REDIRECT"])
	_ = writef(f, "-------------------------------------------\n")
	for _, d := range diagnostics {
		if d.Status == "OK" || d.Status == "REDIRECT" {
			_ = writef(f, "Name: %s\n  URL: %s\n  Type: %s | Items: %d | Latest: %s\n  Response: %dms | HTTP: %d\n",
				d.Name, d.URL, d.FeedType, d.ItemCount, d.LatestDate, d.ResponseTime, d.HTTPCode)
			if d.RedirectURL != "" {
				_ = writef(f, "  redirected to: %s\n", d.RedirectURL)
			}
			_ = writef(f, "\n")
		}
	}

	_ = writef(f, "\nBROKEN FEEDS (%d):\n", errorCount)
	_ = writef(f, "-------------------------------------------\n")
	for _, d := range diagnostics {
		if d.Status != "OK" && d.Status != "REDIRECT" {
			_ = writef(f, "Name: %s\n  URL: %s\n  Status: %s | HTTP: %d\n  Error: %s\n  Response: %dms\n\n",
				d.Name, d.URL, d.Status, d.HTTPCode, d.ErrorMessage, d.ResponseTime)
		}
	}

	log.Println("text report generated: feed_diagnostic_report.txt")
}

func generateJSONReport(diagnostics []FeedDiagnostic) {
	f, err := os.Create("feed_diagnostic_report.json")
	if err != nil {
		log.Printf("failed to create JSON report: %v", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("failed to close JSON report file: %v", err)
		}
	}()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(diagnostics); err != nil {
		log.Printf("failed to write JSON report: %v", err)
		return
	}

	log.Println("JSON report generated: feed_diagnostic_report.json")
}

// generateFeedFixes writes a YAML snippet (not SQL — sources live in the
// feeds.yaml file, not a database table) suggesting redirect updates and
// disabling broken feeds, for an operator to fold into configs/feeds.yaml.
func generateFeedFixes(diagnostics []FeedDiagnostic, sources []entity.Source) {
	f, err := os.Create("feed_fixes.yaml")
	if err != nil {
		log.Printf("failed to create feed fixes file: %v", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("failed to close feed fixes file: %v", err)
		}
	}()

	tierByName := make(map[string]entity.CredibilityTier, len(sources))
	for _, s := range sources {
		tierByName[s.Name] = s.Tier
	}

	_ = writef(f, "# Suggested fixes for configs/feeds.yaml\n")
	_ = writef(f, "# Generated: %s\n\n", time.Now().Format(time.RFC3339))

	hasRedirects := false
	for _, d := range diagnostics {
		if d.RedirectURL != "" && d.RedirectURL != d.URL {
			if !hasRedirects {
				_ = writef(f, "# Redirected feeds: update feed_url to the redirect target\n")
				hasRedirects = true
			}
			_ = writef(f, "# %s: %s -> %s\n", d.Name, d.URL, d.RedirectURL)
		}
	}
	if hasRedirects {
		_ = writef(f, "\n")
	}

	hasBroken := false
	for _, d := range diagnostics {
		if d.Status != "OK" && d.Status != "REDIRECT" {
			if !hasBroken {
				_ = writef(f, "# Broken feeds: review and set active: false\n")
				hasBroken = true
			}
			_ = writef(f, "- name: %q\n  feed_url: %q\n  tier: %q\n  active: false  # %s: %s\n",
				d.Name, d.URL, string(tierByName[d.Name]), d.Status, d.ErrorMessage)
		}
	}

	log.Println("feed fixes generated: feed_fixes.yaml")
}
