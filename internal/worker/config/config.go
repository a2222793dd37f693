package config

import (
	"fmt"
	"strings"
	"time"

	"token-insight/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config 定义整个配置的结构
type Config struct {
	Log                LogConfig           `mapstructure:"log"`
	Kafka              KafkaConfig         `mapstructure:"kafka"`
	Redis              RedisConfig         `mapstructure:"redis"`
	Postgres           PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch      ElasticsearchConfig `mapstructure:"elasticsearch"`
	Worker             WorkerConfig        `mapstructure:"worker"`
	Monitor            MonitorConfig       `mapstructure:"monitor"`
	API                APIConfig           `mapstructure:"api"`
	Birdeye            BirdeyeConfig       `mapstructure:"birdeye"`
	DexScreener        DexScreenerConfig   `mapstructure:"dexscreener"`
	Moralis            MoralisConfig       `mapstructure:"moralis"`
	Analytics          AnalyticsConfig     `mapstructure:"analytics"`
	SolanaClientRawUrl string              `mapstructure:"solana_client_rawurl"`
}

// KafkaConfig Kafka 配置，brokers 为空则不启用刷新请求消费与事件发布
type KafkaConfig struct {
	Brokers        string `mapstructure:"brokers"`
	TopicRefresh   string `mapstructure:"topic_refresh"`
	TopicAnalytics string `mapstructure:"topic_analytics"`
	GroupID        string `mapstructure:"group_id"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PostgresConfig PostgreSQL 配置，web3_tokens 已有记录来源
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type ElasticsearchConfig struct {
	Addresses          []string `mapstructure:"addresses"`
	Username           string   `mapstructure:"username"`
	Password           string   `mapstructure:"password"`
	AnalyticsIndexName string   `mapstructure:"analytics_index_name"`
}

// LogConfig Log 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"`
}

type WorkerConfig struct {
	WorkerNum int `mapstructure:"worker_num"`
}

type MonitorConfig struct {
	Enable         bool   `mapstructure:"enable"`
	PrometheusAddr string `mapstructure:"prometheus_addr"`
}

type APIConfig struct {
	Addr string `mapstructure:"addr"`
}

type BirdeyeConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	RateLimit int    `mapstructure:"rate_limit"`
	Timeout   int    `mapstructure:"timeout"`
}

type DexScreenerConfig struct {
	Enable    bool   `mapstructure:"enable"`
	BaseURL   string `mapstructure:"base_url"`
	RateLimit int    `mapstructure:"rate_limit"`
	Timeout   int    `mapstructure:"timeout"`
}

type MoralisConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	GatewayURL string `mapstructure:"gateway_url"`
	APIKey     string `mapstructure:"api_key"`
	RateLimit  int    `mapstructure:"rate_limit"`
	Timeout    int    `mapstructure:"timeout"`
}

// AnalyticsConfig 归一化与序列重建参数
type AnalyticsConfig struct {
	ProviderTimeoutMs int      `mapstructure:"provider_timeout_ms"`
	SnapshotTTLSec    int      `mapstructure:"snapshot_ttl_sec"`
	TopHolderLimit    int      `mapstructure:"top_holder_limit"`
	SeriesPoints      int      `mapstructure:"series_points"`
	SeriesStepSec     int      `mapstructure:"series_step_sec"`
	PriceFloor        float64  `mapstructure:"price_floor"`
	Noise             float64  `mapstructure:"noise"`
	PinLastPoint      bool     `mapstructure:"pin_last_point"`
	Timezone          string   `mapstructure:"timezone"`
	Watchlist         []string `mapstructure:"watchlist"`
	WatchlistTag      string   `mapstructure:"watchlist_tag"` // watchlist 为空时按 tag 从 web3_tokens 取
	WatchlistLimit    int      `mapstructure:"watchlist_limit"`
	RefreshInterval   int      `mapstructure:"refresh_interval_sec"`
	RefreshWorkers    int      `mapstructure:"refresh_workers"`
}

// ProviderTimeout 外部数据源超时，默认 5 秒
func (c AnalyticsConfig) ProviderTimeout() time.Duration {
	if c.ProviderTimeoutMs <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.ProviderTimeoutMs) * time.Millisecond
}

// SnapshotTTL 快照缓存有效期，默认 60 秒
func (c AnalyticsConfig) SnapshotTTL() time.Duration {
	if c.SnapshotTTLSec <= 0 {
		return time.Minute
	}
	return time.Duration(c.SnapshotTTLSec) * time.Second
}

// Location 序列标签使用的时区，无法解析时回退 Local
func (c AnalyticsConfig) Location() *time.Location {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "logs")
	v.SetDefault("worker.worker_num", 4)
	v.SetDefault("api.addr", ":8080")
	v.SetDefault("birdeye.base_url", "https://public-api.birdeye.so")
	v.SetDefault("birdeye.rate_limit", 60)
	v.SetDefault("birdeye.timeout", 5)
	v.SetDefault("dexscreener.enable", true)
	v.SetDefault("dexscreener.base_url", "https://api.dexscreener.com")
	v.SetDefault("dexscreener.rate_limit", 300)
	v.SetDefault("dexscreener.timeout", 5)
	v.SetDefault("moralis.base_url", "https://deep-index.moralis.io")
	v.SetDefault("moralis.gateway_url", "https://solana-gateway.moralis.io")
	v.SetDefault("moralis.rate_limit", 300)
	v.SetDefault("moralis.timeout", 5)
	v.SetDefault("elasticsearch.analytics_index_name", "token_analytics")
	v.SetDefault("solana_client_rawurl", "https://api.mainnet-beta.solana.com")
	v.SetDefault("analytics.provider_timeout_ms", 5000)
	v.SetDefault("analytics.snapshot_ttl_sec", 60)
	v.SetDefault("analytics.top_holder_limit", 10)
	v.SetDefault("analytics.series_points", 24)
	v.SetDefault("analytics.series_step_sec", 3600)
	v.SetDefault("analytics.price_floor", 0.0001)
	v.SetDefault("analytics.noise", 0.01)
	v.SetDefault("analytics.refresh_interval_sec", 300)
	v.SetDefault("analytics.refresh_workers", 4)
	v.SetDefault("analytics.watchlist_limit", 50)
}

// Load 从指定目录读取 config.worker.yaml，环境变量 TOKEN_INSIGHT_* 可覆盖
func Load(paths ...string) (Config, error) {
	var config Config

	v := viper.GetViper()
	v.SetConfigName("config.worker")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./config/"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix("TOKEN_INSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}

	if err := mapstructure.Decode(v.AllSettings(), &config); err != nil {
		return config, fmt.Errorf("decode config: %w", err)
	}

	return config, nil
}

// InitConfig 读取配置，失败直接 panic
func InitConfig() Config {
	config, err := Load()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s", err))
	}
	return config
}

// WatchConfig 配置热加载，目前只刷新日志级别和 watchlist
func WatchConfig(config *Config, onChange func(Config)) {
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		newConfig, err := Load()
		if err != nil {
			return
		}
		*config = newConfig
		logger.SetLogLevel(config.Log.Level)
		if onChange != nil {
			onChange(newConfig)
		}
	})
}
