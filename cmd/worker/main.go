package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	"newsdigest/internal/config"
	"newsdigest/internal/domain/entity"
	pgRepo "newsdigest/internal/infra/adapter/persistence/postgres"
	"newsdigest/internal/infra/db"
	"newsdigest/internal/infra/fetcher"
	"newsdigest/internal/infra/httpclient"
	"newsdigest/internal/infra/llmclient"
	"newsdigest/internal/infra/notifier"
	workerPkg "newsdigest/internal/infra/worker"
	"newsdigest/internal/resilience/circuitbreaker"
	"newsdigest/internal/resilience/retry"
	"newsdigest/internal/usecase/bodyfetcher"
	"newsdigest/internal/usecase/cluster"
	"newsdigest/internal/usecase/collector"
	"newsdigest/internal/usecase/generator"
	"newsdigest/internal/usecase/imageselector"
	"newsdigest/internal/usecase/notify"
	"newsdigest/internal/usecase/pipeline"
	"newsdigest/internal/usecase/publisher"
	"newsdigest/internal/usecase/scorer"
	"newsdigest/internal/usecase/selector"
	"newsdigest/internal/usecase/synthesizer"
)

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("cycle_timeout", workerConfig.CrawlTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	providerConfig, err := config.LoadProviderConfig()
	if err != nil {
		logger.Error("failed to load LLM provider configuration", slog.Any("error", err))
		os.Exit(1)
	}

	feedsPath := os.Getenv("FEEDS_CONFIG_PATH")
	if feedsPath == "" {
		feedsPath = "configs/feeds.yaml"
	}
	sources, err := config.LoadFeeds(feedsPath)
	if err != nil {
		logger.Error("failed to load feed descriptors", slog.Any("error", err), slog.String("path", feedsPath))
		os.Exit(1)
	}
	logger.Info("feed descriptors loaded", slog.Int("count", len(sources)))

	notifyService := setupNotifyService(logger, workerConfig)

	startMetricsServer(ctx, logger, notifyService)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	p := buildPipeline(database, sources, providerConfig, notifyService)

	startCronWorker(logger, p, workerConfig, workerMetrics, healthServer)
}

func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return logger
}

func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// setupNotifyService wires the enabled webhook channels into a single
// notify.Service, the same construction the teacher used for crawl-result
// notifications, now firing on publish instead.
func setupNotifyService(logger *slog.Logger, cfg *workerPkg.WorkerConfig) notify.Service {
	var channels []notify.Channel

	discordConfig := loadDiscordConfig(logger)
	if discordConfig.Enabled {
		channels = append(channels, notify.NewDiscordChannel(discordConfig))
		logger.Info("Discord channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Discord channel disabled")
	}

	slackConfig := loadSlackConfig(logger)
	if slackConfig.Enabled {
		channels = append(channels, notify.NewSlackChannel(slackConfig))
		logger.Info("Slack channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Slack channel disabled")
	}

	svc := notify.NewService(channels, cfg.NotifyMaxConcurrent)
	logger.Info("notification service initialized",
		slog.Int("channels", len(channels)), slog.Int("max_concurrent", cfg.NotifyMaxConcurrent))
	return svc
}

// buildPipeline constructs every pipeline stage against its stores and LLM
// providers and wires them into a single pipeline.Pipeline.
func buildPipeline(database *sql.DB, sources []entity.Source, providerConfig *config.ProviderConfig, notifyService notify.Service) *pipeline.Pipeline {
	clusterStore := pgRepo.NewClusterStore(database)
	eventStore := pgRepo.NewPublishedEventStore(database)
	processedStore := pgRepo.NewProcessedURLStore(database)

	client := httpclient.New()

	scoringProvider := buildProvider(providerConfig, "scoring-llm", providerConfig.AnthropicModel,
		circuitbreaker.ScoringLLMConfig(), retry.PipelineStageConfig())
	writingProvider := buildProvider(providerConfig, "writing-llm", providerConfig.AnthropicModel,
		circuitbreaker.WritingLLMConfig(), retry.PipelineStageConfig())
	selectionProvider := buildProvider(providerConfig, "selection-llm", providerConfig.AnthropicModel,
		circuitbreaker.SelectionLLMConfig(), retry.PipelineStageConfig())
	researchProvider := buildProvider(providerConfig, "research-llm", providerConfig.AnthropicModel,
		circuitbreaker.ResearchLLMConfig(), retry.PipelineStageConfig())

	contentFetchConfig, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		slog.Error("failed to load content fetch configuration, disabling", slog.Any("error", err))
		contentFetchConfig = fetcher.DefaultConfig()
		contentFetchConfig.Enabled = false
	}

	imageEndpoint := client.NewEndpoint("image-probe", retry.WebScraperConfig(), circuitbreaker.WebScraperConfig())

	cfg := config.LoadPipelineConfig()
	p := pipeline.New(cfg, sources)
	p.Collector = collector.New(&http.Client{Timeout: 30 * time.Second})
	p.Scorer = scorer.New(scoringProvider)
	p.Clusterer = cluster.New(clusterStore)
	p.BodyFetcher = bodyfetcher.NewFromConfig(contentFetchConfig)
	p.ImageSel = imageselector.New(imageselector.NewHTTPProber(imageEndpoint))
	p.Synthesizer = synthesizer.New(writingProvider)
	p.ComponentSel = selector.New(selectionProvider)
	p.Generator = generator.New(researchProvider)
	p.Publisher = publisher.New(eventStore, clusterStore, processedStore, notifyService)
	p.Processed = processedStore

	return p
}

// buildProvider wires a Claude primary with an OpenAI fallback for one
// pipeline role, per spec.md's graceful multi-provider degradation.
func buildProvider(cfg *config.ProviderConfig, name, model string, breakerCfg circuitbreaker.Config, retryCfg retry.Config) llmclient.Provider {
	primary := llmclient.NewClaude(cfg.AnthropicAPIKey, name, model, cfg.MaxTokens, breakerCfg, retryCfg)
	secondary := llmclient.NewOpenAI(cfg.OpenAIAPIKey, name+"-fallback", cfg.OpenAIModel, breakerCfg, retryCfg)
	return llmclient.NewFallback(primary, secondary)
}

func eventBaseURL() string {
	if v := os.Getenv("EVENT_BASE_URL"); v != "" {
		return v
	}
	return "https://newsdigest.example/events"
}

func loadDiscordConfig(logger *slog.Logger) notifier.DiscordConfig {
	enabled := os.Getenv("DISCORD_ENABLED") == "true"
	webhookURL := os.Getenv("DISCORD_WEBHOOK_URL")

	if !enabled {
		return notifier.DiscordConfig{Enabled: false}
	}
	if webhookURL == "" {
		logger.Warn("Discord webhook URL is empty, disabling notifications")
		return notifier.DiscordConfig{Enabled: false}
	}
	u, err := url.Parse(webhookURL)
	if err != nil {
		logger.Warn("invalid Discord webhook URL format, disabling notifications", slog.Any("error", err))
		return notifier.DiscordConfig{Enabled: false}
	}
	if u.Scheme != "https" || u.Host != "discord.com" || !strings.HasPrefix(u.Path, "/api/webhooks/") {
		logger.Warn("invalid Discord webhook URL, disabling notifications", slog.String("host", u.Host))
		return notifier.DiscordConfig{Enabled: false}
	}
	return notifier.DiscordConfig{Enabled: true, WebhookURL: webhookURL, Timeout: 30 * time.Second, EventBaseURL: eventBaseURL()}
}

func loadSlackConfig(logger *slog.Logger) notifier.SlackConfig {
	enabled := os.Getenv("SLACK_ENABLED") == "true"
	webhookURL := os.Getenv("SLACK_WEBHOOK_URL")

	if !enabled {
		return notifier.SlackConfig{Enabled: false}
	}
	if webhookURL == "" {
		logger.Warn("Slack webhook URL is empty, disabling notifications")
		return notifier.SlackConfig{Enabled: false}
	}
	u, err := url.Parse(webhookURL)
	if err != nil {
		logger.Warn("invalid Slack webhook URL format, disabling notifications", slog.Any("error", err))
		return notifier.SlackConfig{Enabled: false}
	}
	if u.Scheme != "https" || u.Host != "hooks.slack.com" || !strings.HasPrefix(u.Path, "/services/") {
		logger.Warn("invalid Slack webhook URL, disabling notifications", slog.String("host", u.Host))
		return notifier.SlackConfig{Enabled: false}
	}
	return notifier.SlackConfig{Enabled: true, WebhookURL: webhookURL, Timeout: 30 * time.Second, EventBaseURL: eventBaseURL()}
}

// startCronWorker starts the cron scheduler and runs one pipeline cycle per tick.
func startCronWorker(logger *slog.Logger, p *pipeline.Pipeline, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runCycle(logger, p, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker marked as ready")
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))
	select {}
}

// runCycle executes a single pipeline cycle bounded by the worker's
// configured timeout, recording Prometheus metrics for the run.
func runCycle(logger *slog.Logger, p *pipeline.Pipeline, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()
	metrics.RecordJobRun("started")
	logger.Info("cycle started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.CrawlTimeout)
	defer cancel()

	summary := p.Cycle(ctx)

	metrics.RecordJobRun("success")
	metrics.RecordJobDuration(time.Since(startTime).Seconds())
	metrics.RecordFeedsProcessed(summary.EntriesCollected)
	metrics.RecordLastSuccess()
}
