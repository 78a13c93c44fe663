// Package bodyfetcher implements the Body Fetcher stage: for each cluster
// member whose RSS summary is too short to synthesize from, it retrieves the
// full article text from the source page.
package bodyfetcher

import (
	"context"
	"log/slog"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/infra/fetcher"
	"newsdigest/internal/utils/text"
)

// ContentFetcher is the subset of fetcher.ReadabilityFetcher this stage
// depends on, so tests can substitute a stub.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// BodyFetcher populates ClusterMember.Body for members whose RSS-supplied
// summary falls short of the configured sufficiency threshold.
type BodyFetcher struct {
	fetcher   ContentFetcher
	threshold int
}

// New builds a BodyFetcher. threshold is the rune count at or above which the RSS
// summary is considered sufficient on its own, skipping the network fetch.
func New(cf ContentFetcher, threshold int) *BodyFetcher {
	return &BodyFetcher{fetcher: cf, threshold: threshold}
}

// NewFromConfig builds a BodyFetcher backed by a real ReadabilityFetcher
// configured per cfg.
func NewFromConfig(cfg fetcher.ContentFetchConfig) *BodyFetcher {
	return New(fetcher.NewReadabilityFetcher(cfg), cfg.Threshold)
}

// Fill populates Body for every member of cluster that needs it: those whose
// RSS summary is below the sufficiency threshold and that have not already
// had a permanently-failed fetch attempt recorded. It mutates cluster in
// place and returns the number of members it attempted to fetch.
func (bf *BodyFetcher) Fill(ctx context.Context, cluster *entity.EventCluster) int {
	attempted := 0
	for i := range cluster.Members {
		m := &cluster.Members[i]
		if m.Body != "" || m.BodyFetchFailed {
			continue
		}
		if text.CountRunes(m.Entry.Summary) >= bf.threshold {
			m.Body = m.Entry.Summary
			continue
		}

		attempted++
		body, err := bf.fetcher.FetchContent(ctx, m.Entry.URL)
		if err != nil {
			slog.Warn("body fetch failed, falling back to RSS summary",
				slog.String("url", m.Entry.URL),
				slog.String("error", err.Error()))
			m.BodyFetchFailed = true
			m.Body = m.Entry.Summary
			continue
		}
		m.Body = body
	}
	return attempted
}
