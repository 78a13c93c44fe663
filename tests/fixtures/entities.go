package fixtures

import (
	"time"

	"newsdigest/internal/domain/entity"
)

// FeedEntryOption customizes a test FeedEntry.
type FeedEntryOption func(*entity.FeedEntry)

// NewTestFeedEntry builds a valid FeedEntry with sensible defaults. Use
// functional options to customize fields for a specific test case.
func NewTestFeedEntry(opts ...FeedEntryOption) entity.FeedEntry {
	now := time.Now()
	e := entity.FeedEntry{
		SourceName:  "Test Wire",
		URL:         "https://example.com/articles/1",
		GUID:        "guid-1",
		Title:       "A test headline",
		Summary:     "A short summary of the test headline.",
		Body:        GenerateMediumArticle(),
		ImageURL:    "https://example.com/images/1.jpg",
		PublishedAt: now,
		FetchedAt:   now,
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func WithFeedURL(url string) FeedEntryOption {
	return func(e *entity.FeedEntry) { e.URL = url }
}

func WithFeedSourceName(name string) FeedEntryOption {
	return func(e *entity.FeedEntry) { e.SourceName = name }
}

func WithFeedImageURL(url string) FeedEntryOption {
	return func(e *entity.FeedEntry) { e.ImageURL = url }
}

func WithFeedPublishedAt(t time.Time) FeedEntryOption {
	return func(e *entity.FeedEntry) { e.PublishedAt = t }
}

func WithFeedBody(body string) FeedEntryOption {
	return func(e *entity.FeedEntry) { e.Body = body }
}

// ScoredEntryOption customizes a test ScoredEntry.
type ScoredEntryOption func(*entity.ScoredEntry)

// NewTestScoredEntry wraps NewTestFeedEntry with scorer output defaults.
func NewTestScoredEntry(opts ...ScoredEntryOption) entity.ScoredEntry {
	s := entity.ScoredEntry{
		FeedEntry:      NewTestFeedEntry(),
		Importance:     900,
		Category:       entity.CategoryTechnology,
		Emoji:          "\U0001F4F0",
		ScoreReasoning: "widely covered, high-credibility sources",
		SourceScore:    80,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func WithScoredImportance(importance int) ScoredEntryOption {
	return func(s *entity.ScoredEntry) { s.Importance = importance }
}

func WithScoredCategory(category entity.Category) ScoredEntryOption {
	return func(s *entity.ScoredEntry) { s.Category = category }
}

func WithScoredFeedEntry(entry entity.FeedEntry) ScoredEntryOption {
	return func(s *entity.ScoredEntry) { s.FeedEntry = entry }
}

// ClusterOption customizes a test EventCluster.
type ClusterOption func(*entity.EventCluster)

// NewTestCluster builds a single-member EventCluster in the "new" state.
func NewTestCluster(opts ...ClusterOption) *entity.EventCluster {
	now := time.Now()
	c := &entity.EventCluster{
		ID:             "cluster-1",
		State:          entity.ClusterNew,
		CanonicalTitle: "A test headline",
		KeywordSet:     map[string]struct{}{"test": {}, "headline": {}},
		EntitySet:      map[string]struct{}{},
		FirstSeen:      now,
		LastSeen:       now,
		Members: []entity.ClusterMember{
			{Entry: NewTestScoredEntry()},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithClusterState(state entity.ClusterState) ClusterOption {
	return func(c *entity.EventCluster) { c.State = state }
}

func WithClusterMembers(members ...entity.ClusterMember) ClusterOption {
	return func(c *entity.EventCluster) { c.Members = members }
}

func WithClusterPublishedEventID(id string) ClusterOption {
	return func(c *entity.EventCluster) { c.PublishedEventID = id }
}

// NewTestClusterMember wraps NewTestScoredEntry with a fetched body.
func NewTestClusterMember(opts ...ScoredEntryOption) entity.ClusterMember {
	return entity.ClusterMember{Entry: NewTestScoredEntry(opts...)}
}

// PublishedEventOption customizes a test PublishedEvent.
type PublishedEventOption func(*entity.PublishedEvent)

// NewTestPublishedEvent builds a complete PublishedEvent with no visual
// components attached, the shape a bare synthesis-only cluster produces.
func NewTestPublishedEvent(opts ...PublishedEventOption) *entity.PublishedEvent {
	now := time.Now()
	e := &entity.PublishedEvent{
		EventID:         "event-1",
		ClusterID:       "cluster-1",
		TitleAdvanced:   "A Test Headline Unfolds",
		TitleSimple:     "Something happened",
		BulletsAdvanced: []string{"First key point.", "Second key point."},
		BulletsSimple:   []string{"It happened.", "Here's why it matters."},
		BodyAdvanced:    GenerateMediumArticle(),
		BodySimple:      GenerateShortArticle(),
		Category:        entity.CategoryTechnology,
		Emoji:           "\U0001F4F0",
		ImageURL:        "https://example.com/images/1.jpg",
		ImageSourceName: "Test Wire",
		NumberOfSources: 1,
		Version:         1,
		CreatedAt:       now,
		LastUpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithPublishedComponents(order []entity.ComponentKey) PublishedEventOption {
	return func(e *entity.PublishedEvent) { e.ComponentsOrder = order }
}

func WithPublishedVersion(version int) PublishedEventOption {
	return func(e *entity.PublishedEvent) { e.Version = version }
}

// SourceOption customizes a test Source.
type SourceOption func(*entity.Source)

// NewTestSource builds a valid, active Source.
func NewTestSource(opts ...SourceOption) entity.Source {
	s := entity.Source{
		Name:    "Test Wire",
		FeedURL: "https://example.com/feed.xml",
		Tier:    entity.TierStandard,
		Active:  true,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func WithSourceTier(tier entity.CredibilityTier) SourceOption {
	return func(s *entity.Source) { s.Tier = tier }
}

func WithSourceActive(active bool) SourceOption {
	return func(s *entity.Source) { s.Active = active }
}
