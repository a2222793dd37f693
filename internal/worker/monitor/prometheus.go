package monitor

import "github.com/prometheus/client_golang/prometheus"

var (
	// ProviderRequests 外部数据源调用
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Total number of metrics provider calls by source and status.",
		},
		[]string{"source", "status"},
	)
	ProviderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Latency of metrics provider calls.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"source"},
	)

	// RefreshTotal 刷新结果：success / unavailable / degenerate / canceled
	RefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_refresh_total",
			Help: "Total number of analytics refreshes by outcome.",
		},
		[]string{"outcome"},
	)
	RefreshCoalesced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_refresh_coalesced_total",
			Help: "Refresh calls that joined an in-flight refresh for the same mint.",
		},
	)
	RefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analytics_refresh_duration_seconds",
			Help:    "End-to-end refresh latency (fetch, normalize, reconstruct).",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
	)
	SnapshotCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_snapshot_cache_total",
			Help: "Snapshot cache lookups by layer and result.",
		},
		[]string{"layer", "result"},
	)

	// RefreshMessagesReceived Kafka 刷新请求
	RefreshMessagesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_refresh_messages_received_total",
			Help: "Total number of refresh requests received from Kafka.",
		},
		[]string{"topic"},
	)

	// 调度作业
	JobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_job_runs_total",
			Help: "Scheduled job executions by job and status.",
		},
		[]string{"job", "status"},
	)
	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scheduler_job_duration_seconds",
			Help:    "Duration of scheduled job executions.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"job"},
	)

	// AsyncWriter 指标
	AsyncWriterMessagesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_messages_dropped_total",
			Help: "Total number of messages dropped due to full queue.",
		},
		[]string{"writer_id"},
	)
	AsyncWriterBatchSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "async_writer_batch_size",
			Help:    "Number of items in each batch submitted to the writer.",
			Buckets: []float64{1, 5, 10, 50, 100, 500},
		},
		[]string{"writer_id"},
	)
	AsyncWriterFlushDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "async_writer_flush_duration_seconds",
			Help:    "Time taken to flush a batch.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"writer_id"},
	)
	AsyncWriterFlushErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_flush_errors_total",
			Help: "Total number of failed batch flushes.",
		},
		[]string{"writer_id"},
	)
)

func init() {
	prometheus.MustRegister(
		ProviderRequests,
		ProviderDuration,

		RefreshTotal,
		RefreshCoalesced,
		RefreshDuration,
		SnapshotCacheHits,

		RefreshMessagesReceived,

		JobRuns,
		JobDuration,

		AsyncWriterMessagesDropped,
		AsyncWriterBatchSize,
		AsyncWriterFlushDuration,
		AsyncWriterFlushErrors,
	)
}
