package entity

import "time"

// ProcessedUrlMark records that a FeedEntry's URL has been handed to the
// Scorer, regardless of outcome. Its existence is the pipeline's global
// idempotence boundary: an article is never scored twice across the
// system's lifetime.
type ProcessedUrlMark struct {
	URL       string
	FirstSeen time.Time
}
