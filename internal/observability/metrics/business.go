package metrics

import "time"

// RecordEntriesFetched records the number of feed entries fetched from a source.
func RecordEntriesFetched(sourceName string, count int) {
	EntriesFetchedTotal.WithLabelValues(sourceName).Add(float64(count))
}

// RecordScoring records the result of a scoring stage call.
// Status should be either "success" or "failure".
func RecordScoring(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	ScoringTotal.WithLabelValues(status).Inc()
}

// RecordScoringDuration records the time taken to score one feed entry.
func RecordScoringDuration(duration time.Duration) {
	ScoringDuration.Observe(duration.Seconds())
}

// RecordClusterMatch records which ordered matching rule fired for a
// clustering comparison: strong, reject_floor, moderate, entity, or
// new_cluster when no existing cluster matched.
func RecordClusterMatch(rule string) {
	ClusterMatchTotal.WithLabelValues(rule).Inc()
}

// RecordFeedCrawl records metrics for a feed crawl operation.
func RecordFeedCrawl(sourceName string, duration time.Duration, itemsFound int) {
	FeedCrawlDuration.WithLabelValues(sourceName).Observe(duration.Seconds())
	if itemsFound > 0 {
		RecordEntriesFetched(sourceName, itemsFound)
	}
}

// RecordFeedCrawlError records an error during feed crawling.
func RecordFeedCrawlError(sourceName string, errorType string) {
	FeedCrawlErrors.WithLabelValues(sourceName, errorType).Inc()
}

// UpdateClustersActive updates the gauge of open clusters.
func UpdateClustersActive(count int) {
	ClustersActiveTotal.Set(float64(count))
}

// UpdatePublishedEventsTotal updates the gauge of published events in the store.
func UpdatePublishedEventsTotal(count int) {
	PublishedEventsTotal.Set(float64(count))
}

// RecordContentFetchSuccess records a successful body fetch operation.
func RecordContentFetchSuccess(duration time.Duration, size int) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
	ContentFetchSize.Observe(float64(size))
}

// RecordContentFetchFailed records a failed body fetch operation.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchSkipped records a skipped body fetch, e.g. when the feed
// summary already exceeds the minimum-body-length threshold.
func RecordContentFetchSkipped() {
	ContentFetchAttemptsTotal.WithLabelValues("skipped").Inc()
}

// RecordPublish records a publisher decision: "inserted", "updated", or
// "skipped" (no material change detected).
func RecordPublish(outcome string) {
	PublishTotal.WithLabelValues(outcome).Inc()
}

// RecordOutboundCall records one call through the shared HTTP client handle.
func RecordOutboundCall(endpoint, outcome string) {
	OutboundCallTotal.WithLabelValues(endpoint, outcome).Inc()
}

// RecordDBQuery records the duration of a database query operation.
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
