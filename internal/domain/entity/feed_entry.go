// Package entity defines the core domain entities and validation logic for the
// news pipeline: the typed records that flow between pipeline stages, along
// with their invariants and domain-specific errors.
package entity

import (
	"net/url"
	"strings"
	"time"
)

// FeedEntry is what the Feed Collector emits for a single feed item.
// URL is the primary key after canonicalisation (CanonicalizeURL).
type FeedEntry struct {
	SourceName  string
	URL         string
	GUID        string
	Title       string
	Summary     string
	Body        string
	ImageURL    string
	PublishedAt time.Time
	FetchedAt   time.Time
}

// trackingParams lists query parameters stripped during URL canonicalisation.
// Tunable; this is not an exhaustive tracker list.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"fbclid":       true,
	"gclid":        true,
	"ref":          true,
	"ref_src":      true,
	"cmpid":        true,
	"mc_cid":       true,
	"mc_eid":       true,
}

// CanonicalizeURL lower-cases the scheme and host, strips a known set of
// tracking query parameters, and trims surrounding whitespace. It is the
// join key used by the processed-URL store and the clusterer's per-poll
// de-duplication.
func CanonicalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			if trackingParams[strings.ToLower(key)] {
				q.Del(key)
			}
		}
		u.RawQuery = q.Encode()
	}

	u.Fragment = ""
	return u.String()
}

// Category is the closed set of topic tags a scored entry and published
// event may carry.
type Category string

const (
	CategoryWorld         Category = "world"
	CategoryPolitics      Category = "politics"
	CategoryBusiness      Category = "business"
	CategoryMarkets       Category = "markets"
	CategoryTechnology    Category = "technology"
	CategoryScience       Category = "science"
	CategoryHealth        Category = "health"
	CategoryClimate       Category = "climate"
	CategorySports        Category = "sports"
	CategoryEntertainment Category = "entertainment"
	CategoryOther         Category = "other"
)

// ValidCategories is the closed enum used to validate scorer output.
var ValidCategories = map[Category]bool{
	CategoryWorld:         true,
	CategoryPolitics:      true,
	CategoryBusiness:      true,
	CategoryMarkets:       true,
	CategoryTechnology:    true,
	CategoryScience:       true,
	CategoryHealth:        true,
	CategoryClimate:       true,
	CategorySports:        true,
	CategoryEntertainment: true,
	CategoryOther:         true,
}

// ParseCategory normalises an LLM-provided category string against the
// closed set, defaulting to CategoryOther for anything unrecognised.
func ParseCategory(raw string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if ValidCategories[c] {
		return c
	}
	return CategoryOther
}

// ScoredEntry is a FeedEntry annotated by the Scorer with importance,
// category and emoji. Importance is 0-1000; entries below the publication
// threshold or lacking an image are dropped before clustering.
type ScoredEntry struct {
	FeedEntry
	Importance     int
	Category       Category
	Emoji          string
	ScoreReasoning string

	// SourceScore is set by the Scorer to Importance plus the source tier's
	// reputation score. It lives here rather than on a separate record
	// because a ScoredEntry is the unit that a cluster owns as a member.
	SourceScore int
}
