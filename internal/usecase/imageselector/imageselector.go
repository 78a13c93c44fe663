// Package imageselector implements the Image Selector stage: for a cluster's
// candidate images (one per member that carries an ImageURL), probe each
// image's dimensions and format, score it on source reputation, size,
// aspect ratio and per-member importance, and pick the best survivor.
package imageselector

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"newsdigest/internal/domain/entity"
)

// Dimensions is the result of probing a candidate image.
type Dimensions struct {
	Width  int
	Height int
	Format string // "jpeg", "png", "gif", "webp", "svg", "ico", "" (unknown)
}

// Prober fetches just enough of a candidate image to determine its
// dimensions and format, without downloading the full body. HTTPProber
// issues a single small range GET and reads the format from its
// Content-Type and the dimensions from the returned bytes.
type Prober interface {
	Probe(ctx context.Context, imageURL string) (Dimensions, error)
}

// blockedHosts is a small curated set of ad-network and tracker-pixel hosts
// that disqualify a candidate image regardless of score. Tunable.
var blockedHosts = map[string]bool{
	"doubleclick.net":       true,
	"googlesyndication.com": true,
	"adnxs.com":              true,
	"scorecardresearch.com":  true,
	"pixel.wp.com":           true,
}

const (
	reputationPremium = 30
	reputationMajor    = 15
	reputationStandard = 5

	widthExcellent = 1200
	widthGood      = 800
	widthDisqualify = 400

	aspectIdealTolerance = 0.10
	aspectIdealScore     = 20
	aspectAcceptableScore = 10

	importanceHighThreshold   = 900
	importanceModerateThreshold = 800
	importanceHighScore         = 20
	importanceModerateScore     = 10

	formatGoodScore = 5
)

// disqualifyingFormats are formats the renderer cannot use regardless of
// dimensions or reputation.
var disqualifyingFormats = map[string]bool{
	"gif": true,
	"svg": true,
	"ico": true,
}

// candidate pairs a cluster member's image URL with its probed dimensions
// and computed score, for selection and diagnostics.
type candidate struct {
	member   *entity.ClusterMember
	imageURL string
	dims     Dimensions
	score    int
}

// Selector chooses the best image URL for a cluster's PublishedEvent.
type Selector struct {
	prober Prober
}

// New builds a Selector backed by the given Prober.
func New(prober Prober) *Selector {
	return &Selector{prober: prober}
}

// TierOf resolves a member's per-source credibility tier. The cluster
// members only carry the source name; the caller supplies the current
// feed-descriptor tier lookup (internal/config/feeds.go) since tiers can
// change between cycles without a cluster re-scoring its members.
type TierOf func(sourceName string) entity.CredibilityTier

// Select scores every cluster member's candidate image and returns the URL
// and source name of the best survivor. ok is false if no candidate passes
// the filter rules, in which case the cluster must not be published this
// cycle (spec: "it may be published next cycle if a new source adds a
// better image").
func (s *Selector) Select(ctx context.Context, cluster *entity.EventCluster, tierOf TierOf) (imageURL, sourceName string, ok bool) {
	var best *candidate

	for i := range cluster.Members {
		m := &cluster.Members[i]
		imgURL := m.Entry.ImageURL
		if imgURL == "" {
			continue
		}

		if blockedHosts[hostOf(imgURL)] {
			slog.Debug("image candidate rejected: blocked host",
				slog.String("cluster_id", cluster.ID), slog.String("url", imgURL))
			continue
		}

		dims, err := s.prober.Probe(ctx, imgURL)
		if err != nil {
			slog.Debug("image candidate probe failed",
				slog.String("cluster_id", cluster.ID), slog.String("url", imgURL), slog.Any("error", err))
			continue
		}

		score, passed := scoreCandidate(dims, tierOf(m.Entry.SourceName), m.Entry.Importance)
		if !passed {
			slog.Debug("image candidate disqualified",
				slog.String("cluster_id", cluster.ID), slog.String("url", imgURL),
				slog.Int("width", dims.Width), slog.String("format", dims.Format))
			continue
		}

		c := &candidate{member: m, imageURL: imgURL, dims: dims, score: score}
		if best == nil || c.score > best.score {
			best = c
		}
	}

	if best == nil {
		return "", "", false
	}
	return best.imageURL, best.member.Entry.SourceName, true
}

// scoreCandidate applies the filter rules and, if the candidate survives,
// computes its score per spec.md §4.5.
func scoreCandidate(dims Dimensions, tier entity.CredibilityTier, importance int) (score int, ok bool) {
	if dims.Width < widthDisqualify {
		return 0, false
	}
	if disqualifyingFormats[dims.Format] {
		return 0, false
	}
	aspect, disqualify := aspectClass(dims)
	if disqualify {
		return 0, false
	}

	score += tier.ReputationScore()

	switch {
	case dims.Width >= widthExcellent:
		score += 30
	case dims.Width >= widthGood:
		score += 15
	}

	score += aspect

	switch {
	case importance >= importanceHighThreshold:
		score += importanceHighScore
	case importance >= importanceModerateThreshold:
		score += importanceModerateScore
	}

	if dims.Format == "jpeg" || dims.Format == "webp" {
		score += formatGoodScore
	}

	return score, true
}

// aspectClass scores the width:height ratio. 16:9 (±10%) scores highest;
// ratios between 4:3 and 21:9 score a flat bonus; banner/icon extremes
// disqualify the candidate outright.
func aspectClass(dims Dimensions) (score int, disqualify bool) {
	if dims.Height <= 0 {
		return 0, false
	}
	ratio := float64(dims.Width) / float64(dims.Height)

	const (
		ratio169  = 16.0 / 9.0
		ratio43   = 4.0 / 3.0
		ratio219  = 21.0 / 9.0
		bannerMin = 3.0  // wider than this is a banner/icon strip
		squareMin = 0.4  // narrower than this is a vertical banner/icon strip
	)

	if ratio > ratio219*1.1 || ratio < squareMin {
		return 0, true
	}
	if ratio >= ratio169*(1-aspectIdealTolerance) && ratio <= ratio169*(1+aspectIdealTolerance) {
		return aspectIdealScore, false
	}
	if ratio >= ratio43*0.9 && ratio <= ratio219 {
		return aspectAcceptableScore, false
	}
	if ratio < bannerMin {
		return 0, false
	}
	return 0, true
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
