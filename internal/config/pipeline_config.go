package config

import "newsdigest/internal/usecase/pipeline"

// LoadPipelineConfig starts from pipeline.DefaultConfig and overrides any
// tunable that has a corresponding environment variable set. Concurrency
// and threshold values are operational knobs, not correctness-critical, so
// this loader is fail-open: an unparsable override is ignored and the
// default is kept, unlike LoadProviderConfig's fail-closed credentials.
func LoadPipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.RetentionWindow = getEnvDuration("PIPELINE_RETENTION_WINDOW", cfg.RetentionWindow)
	cfg.ImportanceThreshold = getEnvInt("PIPELINE_IMPORTANCE_THRESHOLD", cfg.ImportanceThreshold)
	cfg.CollectorConcurrency = getEnvInt("PIPELINE_COLLECTOR_CONCURRENCY", cfg.CollectorConcurrency)
	cfg.ScorerConcurrency = getEnvInt("PIPELINE_SCORER_CONCURRENCY", cfg.ScorerConcurrency)
	cfg.ClusterConcurrency = getEnvInt("PIPELINE_CLUSTER_CONCURRENCY", cfg.ClusterConcurrency)
	return cfg
}
