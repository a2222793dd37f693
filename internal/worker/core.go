package worker

import (
	"context"
	"time"

	"token-insight/internal/worker/api"
	"token-insight/internal/worker/config"
	"token-insight/internal/worker/consumer"
	"token-insight/internal/worker/job"
	"token-insight/internal/worker/model"
	"token-insight/internal/worker/monitor"
	"token-insight/internal/worker/repository"
	"token-insight/internal/worker/service"
	"token-insight/internal/worker/writer"
	"token-insight/internal/worker/writer/analytics"

	"go.uber.org/zap"
)

type Core struct {
	cfg       config.Config
	tl        *zap.Logger
	repo      repository.Repository
	scheduler *job.Scheduler
	consumers []consumer.KafkaConsumer
	writers   []*writer.AsyncBatchWriter[model.Snapshot]
	watchlist *job.Watchlist
	api       *api.Server
	metrics   *monitor.MetricsServer
}

func New(cfg config.Config, logger *zap.Logger) *Core {
	// 初始化作业调度器
	scheduler := job.NewScheduler(logger)

	// 初始化repo
	repo := repository.New(cfg, logger)
	tokens := NewTokenDAO(repo)

	// 刷新成功后的下游：Kafka 事件、ES 快照索引、web3_tokens 回写
	var writers []*writer.AsyncBatchWriter[model.Snapshot]
	if mq := repo.GetMQ(); mq != nil && cfg.Kafka.TopicAnalytics != "" {
		writers = append(writers, writer.NewAsyncBatchWriter(logger,
			analytics.NewKafkaAnalyticsWriter(mq, logger, cfg.Kafka.TopicAnalytics),
			100, time.Second, "analytics_kafka", 1))
	}
	if es := repo.GetES(); es != nil {
		writers = append(writers, writer.NewAsyncBatchWriter(logger,
			analytics.NewESAnalyticsWriter(es, logger, cfg.Elasticsearch.AnalyticsIndexName),
			200, 2*time.Second, "analytics_es", 1))
	}
	if db := repo.GetDB(); db != nil {
		writers = append(writers, writer.NewAsyncBatchWriter(logger,
			analytics.NewDbTokenRecordWriter(db, logger),
			200, 5*time.Second, "token_record_db", 1))
	}
	sinks := make([]service.Sink, 0, len(writers))
	for _, w := range writers {
		sinks = append(sinks, w)
	}

	refresher := NewRefresher(cfg, repo, tokens, logger, sinks...)

	var lister job.TagLister
	if tokens != nil {
		lister = tokens
	}
	watchlist := job.NewWatchlist(cfg.Analytics, lister)

	// 启动时预热已有记录缓存
	if tokens != nil {
		cacheLoad := job.NewCacheLoad(watchlist, tokens, logger)
		scheduler.RegisterOnceJob("cache_load", cacheLoad.Run)
	}

	// 定时刷新 watchlist
	interval := time.Duration(cfg.Analytics.RefreshInterval) * time.Second
	if interval > 0 {
		watchlistRefresh := job.NewWatchlistRefresh(watchlist, refresher, cfg.Analytics.RefreshWorkers, logger)
		scheduler.RegisterJob("watchlist_refresh", interval, watchlistRefresh.Run)
	}

	// 初始化消费者
	var consumers []consumer.KafkaConsumer
	if cfg.Kafka.Brokers != "" && cfg.Kafka.TopicRefresh != "" {
		consumers = append(consumers, consumer.NewRefreshConsumer(cfg, logger, refresher))
	}

	apiOpts := []api.Option{
		api.WithJobs(scheduler.Jobs),
		api.WithTimeout(2 * cfg.Analytics.ProviderTimeout()),
	}
	if es := repo.GetES(); es != nil {
		apiOpts = append(apiOpts, api.WithSearcher(es, cfg.Elasticsearch.AnalyticsIndexName))
	}

	return &Core{
		cfg:       cfg,
		repo:      repo,
		tl:        logger,
		scheduler: scheduler,
		consumers: consumers,
		writers:   writers,
		watchlist: watchlist,
		api:       api.NewServer(cfg.API, logger, refresher, apiOpts...),
		metrics:   monitor.NewMetricsServer(cfg.Monitor, logger),
	}
}

// OnConfigChange 热加载：目前只有 watchlist
func (c *Core) OnConfigChange(cfg config.Config) {
	c.watchlist.Update(cfg.Analytics)
	c.tl.Info("config reloaded", zap.Int("watchlist", len(cfg.Analytics.Watchlist)))
}

func (c *Core) Start(ctx context.Context) {
	c.tl.Info("Starting worker core...")
	// 启动监控服务
	c.metrics.Run()

	// writer 在 ctx 之外运行，Stop 时排空
	for _, w := range c.writers {
		w.Start(context.WithoutCancel(ctx))
	}

	// 启动消费者
	for _, cons := range c.consumers {
		go cons.Run(ctx)
	}

	// 启动调度器
	c.scheduler.Start(ctx)
	c.api.Run()
	c.tl.Info("Worker started successfully", zap.Strings("jobs", c.scheduler.Jobs()))

	// 等待外部关闭信号
	<-ctx.Done()
	c.tl.Info("Shutting down worker due to context cancellation...")
}

// Stop 优雅关闭 Core 的所有资源：先停入口，再排空写入，最后关连接
func (c *Core) Stop(ctx context.Context) {
	c.tl.Info("Stopping worker core...")

	if err := c.api.Stop(ctx); err != nil {
		c.tl.Warn("api server shutdown", zap.Error(err))
	}

	// 停止消费者
	for _, cons := range c.consumers {
		if err := cons.Stop(); err != nil {
			c.tl.Warn("consumer stop", zap.String("id", cons.ID()), zap.Error(err))
		}
	}

	// 停止调度器
	c.scheduler.Stop(ctx)

	for _, w := range c.writers {
		w.Close()
	}

	// 停止 Prometheus 监控服务
	_ = c.metrics.Stop(ctx)

	c.repo.Close()

	c.tl.Info("Worker core stopped.")
}
