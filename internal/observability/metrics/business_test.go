package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordEntriesFetched(t *testing.T) {
	tests := []struct {
		name       string
		sourceName string
		count      int
	}{
		{name: "single entry", sourceName: "Test Source", count: 1},
		{name: "multiple entries", sourceName: "Another Source", count: 10},
		{name: "zero entries", sourceName: "Empty Source", count: 0},
		{name: "empty source name", sourceName: "", count: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordEntriesFetched(tt.sourceName, tt.count)
			})
		})
	}
}

func TestRecordScoring(t *testing.T) {
	tests := []struct {
		name    string
		success bool
	}{
		{name: "success", success: true},
		{name: "failure", success: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordScoring(tt.success)
			})
		})
	}
}

func TestRecordScoringDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
	}{
		{name: "fast response", duration: 100 * time.Millisecond},
		{name: "normal response", duration: 1 * time.Second},
		{name: "slow response", duration: 5 * time.Second},
		{name: "zero duration", duration: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordScoringDuration(tt.duration)
			})
		})
	}
}

func TestRecordClusterMatch(t *testing.T) {
	for _, rule := range []string{"strong", "reject_floor", "moderate", "entity", "new_cluster"} {
		t.Run(rule, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordClusterMatch(rule)
			})
		})
	}
}

func TestRecordFeedCrawl(t *testing.T) {
	tests := []struct {
		name       string
		sourceName string
		duration   time.Duration
		itemsFound int
	}{
		{name: "successful crawl", sourceName: "Source A", duration: 2 * time.Second, itemsFound: 10},
		{name: "empty crawl", sourceName: "Source B", duration: 500 * time.Millisecond, itemsFound: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordFeedCrawl(tt.sourceName, tt.duration, tt.itemsFound)
			})
		})
	}
}

func TestRecordFeedCrawlError(t *testing.T) {
	tests := []struct {
		name       string
		sourceName string
		errorType  string
	}{
		{name: "fetch failed", sourceName: "Source A", errorType: "fetch_failed"},
		{name: "parse error", sourceName: "Source B", errorType: "parse_error"},
		{name: "timeout", sourceName: "Source C", errorType: "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordFeedCrawlError(tt.sourceName, tt.errorType)
			})
		})
	}
}

func TestUpdateClustersActive(t *testing.T) {
	for _, count := range []int{0, 100, 10000} {
		assert.NotPanics(t, func() {
			UpdateClustersActive(count)
		})
	}
}

func TestUpdatePublishedEventsTotal(t *testing.T) {
	for _, count := range []int{0, 10, 100} {
		assert.NotPanics(t, func() {
			UpdatePublishedEventsTotal(count)
		})
	}
}

func TestRecordContentFetch(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordContentFetchSuccess(500*time.Millisecond, 2048)
		RecordContentFetchFailed(200 * time.Millisecond)
		RecordContentFetchSkipped()
	})
}

func TestRecordPublish(t *testing.T) {
	for _, outcome := range []string{"inserted", "updated", "skipped"} {
		assert.NotPanics(t, func() {
			RecordPublish(outcome)
		})
	}
}

func TestRecordOutboundCall(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordOutboundCall("scoring-llm", "success")
		RecordOutboundCall("feed-fetch", "failure")
	})
}

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		duration  time.Duration
	}{
		{name: "select query", operation: "select_clusters", duration: 10 * time.Millisecond},
		{name: "insert query", operation: "insert_published_event", duration: 5 * time.Millisecond},
		{name: "slow query", operation: "complex_join", duration: 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordDBQuery(tt.operation, tt.duration)
			})
		})
	}
}

func TestUpdateDBConnectionStats(t *testing.T) {
	tests := []struct {
		name   string
		active int
		idle   int
	}{
		{name: "no connections", active: 0, idle: 0},
		{name: "some active", active: 5, idle: 10},
		{name: "all active", active: 25, idle: 0},
		{name: "all idle", active: 0, idle: 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateDBConnectionStats(tt.active, tt.idle)
			})
		})
	}
}

func TestMetricsFunctions_AllCallable(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordEntriesFetched("Test Source", 10)
		RecordScoring(true)
		RecordScoringDuration(1 * time.Second)
		RecordClusterMatch("strong")
		RecordFeedCrawl("Test Source", 2*time.Second, 10)
		RecordFeedCrawlError("Test Source", "test_error")
		UpdateClustersActive(100)
		UpdatePublishedEventsTotal(10)
		RecordContentFetchSuccess(time.Second, 1024)
		RecordPublish("inserted")
		RecordOutboundCall("writing-llm", "success")
		RecordDBQuery("test_operation", 10*time.Millisecond)
		UpdateDBConnectionStats(5, 10)
	})
}
