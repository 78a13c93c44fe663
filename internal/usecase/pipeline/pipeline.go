// Package pipeline implements spec.md §9's cycle function: the single
// entry point both scheduling modes (cron batch and long-running
// supervisor) invoke. One call to Cycle runs every stage in order
// (Collector -> Scorer -> Clusterer -> Body Fetcher -> Image Selector ->
// Synthesizer -> Component Selector -> Component Generator -> Publisher)
// across the configured sources and returns a Summary for the cycle-end
// log line.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/repository"
	"newsdigest/internal/usecase/generator"
	"newsdigest/internal/usecase/imageselector"
	"newsdigest/internal/usecase/publisher"
	"newsdigest/internal/usecase/synthesizer"
)

// Collector polls one source's feed. Satisfied by collector.Collector.
type Collector interface {
	Collect(ctx context.Context, src entity.Source) ([]entity.FeedEntry, error)
}

// Scorer rates one feed entry. Satisfied by scorer.Scorer.
type Scorer interface {
	Score(ctx context.Context, entry entity.FeedEntry, sourceTier entity.CredibilityTier) (entity.ScoredEntry, error)
}

// Clusterer assigns scored entries to clusters. Satisfied by cluster.Service.
type Clusterer interface {
	Assign(ctx context.Context, scored entity.ScoredEntry) (*entity.EventCluster, error)
	CloseExpired(ctx context.Context) (int, error)
}

// BodyFetcher fills in missing member bodies. Satisfied by bodyfetcher.BodyFetcher.
type BodyFetcher interface {
	Fill(ctx context.Context, cluster *entity.EventCluster) int
}

// ImageSelector chooses the published image. Satisfied by imageselector.Selector.
type ImageSelector interface {
	Select(ctx context.Context, cluster *entity.EventCluster, tierOf imageselector.TierOf) (imageURL, sourceName string, ok bool)
}

// Synthesizer drafts the dual-language article. Satisfied by synthesizer.Synthesizer.
type Synthesizer interface {
	Synthesize(ctx context.Context, cluster *entity.EventCluster) (synthesizer.Article, error)
}

// ComponentSelector picks which components to generate. Satisfied by selector.Selector.
type ComponentSelector interface {
	Select(ctx context.Context, title string) ([]entity.ComponentKey, error)
}

// ComponentGenerator produces one component's content. Satisfied by generator.Generator.
type ComponentGenerator interface {
	Generate(ctx context.Context, kind entity.ComponentKey, title, body string) (generator.Result, error)
}

// Publisher persists the final PublishedEvent. Satisfied by publisher.Publisher.
type Publisher interface {
	Publish(ctx context.Context, cluster *entity.EventCluster, draft publisher.Draft) (publisher.Outcome, error)
}

// Config holds every cycle-shaped tunable named in spec.md §9's
// "configurable by a dictionary" note, replacing the ad-hoc-dictionary
// anti-pattern with a closed struct.
type Config struct {
	// RetentionWindow drops feed entries older than this before scoring.
	RetentionWindow time.Duration
	// ImportanceThreshold is the minimum ScoredEntry.Importance to keep.
	ImportanceThreshold int
	// CollectorConcurrency bounds simultaneous feed polls.
	CollectorConcurrency int
	// ScorerConcurrency bounds simultaneous scoring LLM calls.
	ScorerConcurrency int
	// ClusterConcurrency bounds simultaneous per-cluster pipelines
	// (body fetch through publish) within one cycle.
	ClusterConcurrency int
}

// DefaultConfig returns the tuning named in spec.md §5 ("typical limits:
// per-stage concurrency 8-32").
func DefaultConfig() Config {
	return Config{
		RetentionWindow:       48 * time.Hour,
		ImportanceThreshold:   700,
		CollectorConcurrency:  16,
		ScorerConcurrency:     16,
		ClusterConcurrency:    8,
	}
}

// Pipeline wires one instance of every stage together against shared
// stores and runs cycles against them.
type Pipeline struct {
	Config Config

	Sources []entity.Source

	Collector    Collector
	Scorer       Scorer
	Clusterer    Clusterer
	BodyFetcher  BodyFetcher
	ImageSel     ImageSelector
	Synthesizer  Synthesizer
	ComponentSel ComponentSelector
	Generator    ComponentGenerator
	Publisher    Publisher

	Processed repository.ProcessedURLStore

	now func() time.Time
}

// New builds a Pipeline. Every stage dependency must be supplied by the
// caller (cmd/worker/main.go); Pipeline itself performs no construction of
// LLM clients, stores, or HTTP endpoints.
func New(cfg Config, sources []entity.Source) *Pipeline {
	return &Pipeline{Config: cfg, Sources: sources, now: time.Now}
}

// Summary reports one cycle's outcome, for the cycle-end log line
// (spec.md §6: "clusters in, clusters published-new, clusters updated,
// clusters deferred").
type Summary struct {
	EntriesCollected  int
	EntriesScored     int
	EntriesDropped    int
	ClustersTouched   int
	ClustersPublished int
	ClustersUpdated   int
	ClustersUnchanged int
	ClustersDeferred  int
	ClustersClosed    int
	Duration          time.Duration
}

// tierOf resolves a source name to its configured credibility tier, for
// the Image Selector's per-member reputation score.
func (p *Pipeline) tierOf(sourceName string) entity.CredibilityTier {
	for _, src := range p.Sources {
		if src.Name == sourceName {
			return src.Tier
		}
	}
	return entity.TierStandard
}

// Cycle runs one full pass of the pipeline: collect, score, cluster, then
// drive every touched cluster through body-fetch, image-selection,
// synthesis, component selection/generation, and publish. Both scheduling
// modes (cron batch, long-running supervisor) call this same function, per
// spec.md §5 ("the cycle is the unit of atomicity from an observer's point
// of view"). A per-item failure never aborts the cycle; it is logged,
// counted, and the item is dropped or the cluster deferred.
func (p *Pipeline) Cycle(ctx context.Context) Summary {
	start := p.now()
	summary := Summary{}

	entries := p.collect(ctx)
	summary.EntriesCollected = len(entries)

	scored := p.score(ctx, entries, &summary)
	summary.EntriesScored = len(scored)

	touched := p.cluster(ctx, scored)
	summary.ClustersTouched = len(touched)

	if closedCount, err := p.Clusterer.CloseExpired(ctx); err != nil {
		slog.Warn("close expired clusters failed", slog.Any("error", err))
	} else {
		summary.ClustersClosed = closedCount
	}

	p.publishTouched(ctx, touched, &summary)

	summary.Duration = p.now().Sub(start)
	slog.Info("cycle complete",
		slog.Int("entries_collected", summary.EntriesCollected),
		slog.Int("entries_scored", summary.EntriesScored),
		slog.Int("entries_dropped", summary.EntriesDropped),
		slog.Int("clusters_touched", summary.ClustersTouched),
		slog.Int("clusters_published", summary.ClustersPublished),
		slog.Int("clusters_updated", summary.ClustersUpdated),
		slog.Int("clusters_deferred", summary.ClustersDeferred),
		slog.Int("clusters_closed", summary.ClustersClosed),
		slog.Duration("duration", summary.Duration))
	return summary
}

// collect polls every active source concurrently, bounded by
// CollectorConcurrency, and filters out already-processed and
// past-retention-window entries in one batch check.
func (p *Pipeline) collect(ctx context.Context) []entity.FeedEntry {
	var (
		mu  sync.Mutex
		all []entity.FeedEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Config.CollectorConcurrency)

	for _, src := range p.Sources {
		if !src.Active {
			continue
		}
		src := src
		g.Go(func() error {
			fetched, err := p.Collector.Collect(gctx, src)
			if err != nil {
				slog.Warn("feed collection failed", slog.String("source", src.Name), slog.Any("error", err))
				return nil // per-source failure never aborts the cycle
			}
			mu.Lock()
			all = append(all, fetched...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	cutoff := p.now().Add(-p.Config.RetentionWindow)
	fresh := make([]entity.FeedEntry, 0, len(all))
	urls := make([]string, 0, len(all))
	for _, e := range all {
		if e.PublishedAt.Before(cutoff) {
			continue
		}
		fresh = append(fresh, e)
		urls = append(urls, e.URL)
	}

	seen, err := p.Processed.ExistsBatch(ctx, urls)
	if err != nil {
		slog.Warn("processed-url batch check failed, proceeding without dedup", slog.Any("error", err))
		return fresh
	}

	unseen := make([]entity.FeedEntry, 0, len(fresh))
	for _, e := range fresh {
		if !seen[e.URL] {
			unseen = append(unseen, e)
		}
	}
	return unseen
}

// score scores every surviving entry concurrently, bounded by
// ScorerConcurrency. Entries with no image URL are dropped before ever
// calling the LLM (spec.md §4.2: "mandatory because the downstream
// renderer requires images and scoring costs money"). Entries scoring
// below ImportanceThreshold are dropped after scoring.
func (p *Pipeline) score(ctx context.Context, entries []entity.FeedEntry, summary *Summary) []entity.ScoredEntry {
	var (
		mu     sync.Mutex
		kept   []entity.ScoredEntry
		dropCt int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Config.ScorerConcurrency)

	for _, entry := range entries {
		entry := entry
		if entry.ImageURL == "" {
			dropCt++
			continue
		}
		g.Go(func() error {
			scored, err := p.Scorer.Score(gctx, entry, p.tierOf(entry.SourceName))
			if err != nil {
				slog.Warn("scoring failed", slog.String("url", entry.URL), slog.Any("error", err))
				mu.Lock()
				dropCt++
				mu.Unlock()
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			if scored.Importance < p.Config.ImportanceThreshold {
				dropCt++
				return nil
			}
			kept = append(kept, scored)
			return nil
		})
	}
	_ = g.Wait()

	summary.EntriesDropped += dropCt
	return kept
}

// cluster assigns every scored entry to a cluster sequentially: clustering
// mutates shared, order-sensitive state (the active-cluster candidate set
// a later entry in the same cycle may match against), so it is not run
// concurrently within a cycle, unlike every LLM-calling stage.
func (p *Pipeline) cluster(ctx context.Context, scored []entity.ScoredEntry) []*entity.EventCluster {
	seen := make(map[string]*entity.EventCluster)
	var order []*entity.EventCluster

	for _, s := range scored {
		c, err := p.Clusterer.Assign(ctx, s)
		if err != nil {
			slog.Warn("cluster assignment failed", slog.String("url", s.URL), slog.Any("error", err))
			continue
		}
		if _, ok := seen[c.ID]; !ok {
			seen[c.ID] = c
			order = append(order, c)
		}
	}
	return order
}

// publishTouched drives every touched cluster through the remaining
// stages, bounded by ClusterConcurrency. A cluster that cannot synthesize
// or cannot select a surviving image is deferred, not an error: it may be
// published next cycle once a source adds a better image or body (spec.md
// §4.5, §7 "cluster stays pending"). If ctx's deadline has already
// elapsed (the cycle's soft wall-clock budget, spec.md §5), no new
// cluster begins processing; in-flight ones already started are allowed
// to drain via their own per-call timeouts.
func (p *Pipeline) publishTouched(ctx context.Context, clusters []*entity.EventCluster, summary *Summary) {
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Config.ClusterConcurrency)

	for _, cluster := range clusters {
		if ctx.Err() != nil {
			mu.Lock()
			summary.ClustersDeferred++
			mu.Unlock()
			continue
		}
		cluster := cluster
		g.Go(func() error {
			outcome, deferred := p.publishOne(gctx, cluster)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case deferred:
				summary.ClustersDeferred++
			case outcome == publisher.OutcomeInserted:
				summary.ClustersPublished++
			case outcome == publisher.OutcomeUpdated:
				summary.ClustersUpdated++
			case outcome == publisher.OutcomeUnchanged:
				summary.ClustersUnchanged++
			}
			return nil
		})
	}
	_ = g.Wait()
}

// maxSynthesizeAttempts bounds how many times the Synthesizer is asked to
// draft a cluster's article before the cluster is deferred to the next
// cycle: one initial attempt plus two retries.
const maxSynthesizeAttempts = 3

// fallbackComponents picks a component set by category when the Component
// Selector fails or returns none, per the category-based default rules:
// geographic categories get a map, economic categories get a graph,
// technology gets the details panel alone, and everything else gets a
// timeline; every set includes a details panel.
func fallbackComponents(category entity.Category) []entity.ComponentKey {
	switch category {
	case entity.CategoryWorld, entity.CategoryClimate:
		return []entity.ComponentKey{entity.ComponentMap, entity.ComponentDetails}
	case entity.CategoryBusiness, entity.CategoryMarkets:
		return []entity.ComponentKey{entity.ComponentGraph, entity.ComponentDetails}
	case entity.CategoryTechnology:
		return []entity.ComponentKey{entity.ComponentDetails}
	default:
		return []entity.ComponentKey{entity.ComponentTimeline, entity.ComponentDetails}
	}
}

// publishOne runs stages 3-8 for a single cluster.
func (p *Pipeline) publishOne(ctx context.Context, cluster *entity.EventCluster) (outcome publisher.Outcome, deferred bool) {
	p.BodyFetcher.Fill(ctx, cluster)

	imageURL, imageSource, ok := p.ImageSel.Select(ctx, cluster, p.tierOf)
	if !ok {
		slog.Info("cluster deferred: no surviving image candidate", slog.String("cluster_id", cluster.ID))
		return "", true
	}

	var article synthesizer.Article
	var err error
	for attempt := 1; attempt <= maxSynthesizeAttempts; attempt++ {
		article, err = p.Synthesizer.Synthesize(ctx, cluster)
		if err == nil {
			break
		}
		slog.Warn("synthesis attempt failed",
			slog.String("cluster_id", cluster.ID), slog.Int("attempt", attempt), slog.Any("error", err))
	}
	if err != nil {
		slog.Warn("cluster deferred: synthesis failed after retries",
			slog.String("cluster_id", cluster.ID), slog.Int("attempts", maxSynthesizeAttempts), slog.Any("error", err))
		return "", true
	}

	category := cluster.HighestScoredMember().Entry.Category

	keys, err := p.ComponentSel.Select(ctx, article.TitleAdvanced)
	if err != nil {
		slog.Warn("component selection failed, falling back to category default",
			slog.String("cluster_id", cluster.ID), slog.Any("error", err))
		keys = fallbackComponents(category)
	} else if len(keys) < 1 {
		slog.Info("component selector returned no components, falling back to category default",
			slog.String("cluster_id", cluster.ID))
		keys = fallbackComponents(category)
	}

	draft := publisher.Draft{
		TitleAdvanced:   article.TitleAdvanced,
		TitleSimple:     article.TitleSimple,
		BulletsAdvanced: article.BulletsAdvanced,
		BulletsSimple:   article.BulletsSimple,
		BodyAdvanced:    article.BodyAdvanced,
		BodySimple:      article.BodySimple,
		Category:        category,
		Emoji:           cluster.HighestScoredMember().Entry.Emoji,
		ImageURL:        imageURL,
		ImageSourceName: imageSource,
	}

	var generated []entity.ComponentKey
	for _, key := range keys {
		result, err := p.Generator.Generate(ctx, key, article.TitleAdvanced, article.BodyAdvanced)
		if err != nil {
			slog.Warn("component generation failed, omitting component",
				slog.String("cluster_id", cluster.ID), slog.String("component", string(key)), slog.Any("error", err))
			continue
		}
		switch key {
		case entity.ComponentTimeline:
			draft.Timeline = result.Timeline
		case entity.ComponentDetails:
			draft.Details = result.Details
		case entity.ComponentGraph:
			draft.Graph = result.Graph
		case entity.ComponentMap:
			draft.Map = result.Map
		}
		generated = append(generated, key)
	}
	draft.ComponentsOrder = generated

	outcome, err = p.Publisher.Publish(ctx, cluster, draft)
	if err != nil {
		slog.Warn("publish failed, cluster remains pending", slog.String("cluster_id", cluster.ID), slog.Any("error", err))
		return "", true
	}
	return outcome, false
}
