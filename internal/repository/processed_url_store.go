// Package repository defines the store interfaces the pipeline depends on:
// the processed-URL idempotence index, the durable cluster store, and the
// published-event output store. Concrete adapters live under
// internal/infra/adapter/persistence.
package repository

import (
	"context"
	"time"
)

// ProcessedURLStore is the global idempotence index keyed by canonicalised
// URL. CheckAndMark must be atomic: a naive "check then insert" is a known
// race between concurrent pollers of different feeds that happen to carry
// the same URL (spec §5, Shared-resource policy).
type ProcessedURLStore interface {
	// CheckAndMark atomically marks url as processed if it is not already
	// marked, returning true if this call was the one that marked it
	// (false if it was already present).
	CheckAndMark(ctx context.Context, url string, firstSeen time.Time) (marked bool, err error)

	// ExistsBatch reports, for each url in urls, whether it is already
	// marked — used by the Feed Collector to filter a whole poll's worth
	// of entries in one round trip instead of one call per URL.
	ExistsBatch(ctx context.Context, urls []string) (map[string]bool, error)
}
