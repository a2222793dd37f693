package repository

import (
	"context"
	"strings"
	"time"

	"token-insight/internal/worker/config"
	"token-insight/internal/worker/writer/analytics"
	"token-insight/pkg/database"
	"token-insight/pkg/elasticsearch"
	"token-insight/pkg/solana_client"
	"token-insight/pkg/utils"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// New 初始化所有已配置的连接，全部可选：未配置或连接失败只记录日志，
// 对应功能降级（无缓存 / 无已有记录 / 不发布事件 / 无 RPC 持有者兜底）。
func New(cfg config.Config, logger *zap.Logger) Repository {
	r := &repositoryImpl{
		cfg:    cfg,
		logger: logger,
	}
	r.init()
	return r
}

type repositoryImpl struct {
	cfg          config.Config
	logger       *zap.Logger
	db           *gorm.DB
	rdb          *redis.Client
	mq           *kafka.Writer
	es           *elasticsearch.Client
	solanaClient *rpc.Client
}

func (r *repositoryImpl) init() {
	var err error

	if strings.TrimSpace(r.cfg.Postgres.DSN) != "" {
		r.db, err = database.InitPG(r.cfg.Postgres.DSN)
		if err != nil {
			r.logger.Warn("failed to connect to postgres, continue without token records", zap.Error(err))
			r.db = nil
		}
	} else {
		r.logger.Info("postgres dsn empty, skip token record lookup")
	}

	if r.cfg.Redis.Address != "" {
		r.rdb = redis.NewClient(&redis.Options{
			Addr:     r.cfg.Redis.Address,
			Password: r.cfg.Redis.Password,
			DB:       r.cfg.Redis.DB,
			PoolSize: 20,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := r.rdb.Ping(pingCtx).Err(); err != nil {
			r.logger.Warn("failed to connect to redis, continue", zap.Error(err))
		}
		cancel()
	}

	if brokers := utils.SplitList(r.cfg.Kafka.Brokers); len(brokers) > 0 {
		r.mq = &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{}, // 同一 mint 进同一分区
			BatchSize:    100,
			BatchBytes:   1024 * 1024, // 1MB
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
			Compression:  kafka.Snappy,
			MaxAttempts:  5,
			WriteTimeout: 2 * time.Second,
		}
	}

	if len(r.cfg.Elasticsearch.Addresses) > 0 {
		indexName := r.cfg.Elasticsearch.AnalyticsIndexName
		r.es, err = elasticsearch.NewClient(elasticsearch.Config{
			Addresses: r.cfg.Elasticsearch.Addresses,
			Username:  r.cfg.Elasticsearch.Username,
			Password:  r.cfg.Elasticsearch.Password,
			Indexs:    map[string]map[string]interface{}{indexName: analytics.IndexMapping},
		}, r.logger)
		if err != nil {
			r.logger.Warn("failed to create elasticsearch client, continue without snapshot index", zap.Error(err))
			r.es = nil
		}
	}

	// 多个节点逗号分隔，启动时随机选一个
	if url := utils.RandomChoice(utils.SplitList(r.cfg.SolanaClientRawUrl)); url != "" {
		r.solanaClient = solana_client.Init(url)
	}
}

func (r *repositoryImpl) GetRDB() *redis.Client {
	return r.rdb
}

func (r *repositoryImpl) GetDB() *gorm.DB {
	return r.db
}

func (r *repositoryImpl) GetMQ() MQClient {
	return r.mq
}

func (r *repositoryImpl) GetES() *elasticsearch.Client {
	return r.es
}

func (r *repositoryImpl) GetSolanaClient() *rpc.Client {
	return r.solanaClient
}

func (r *repositoryImpl) Close() error {
	if r.db != nil {
		if sqlDB, err := r.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if r.rdb != nil {
		r.rdb.Close()
	}
	if r.mq != nil {
		r.mq.Close()
	}
	if r.solanaClient != nil {
		r.solanaClient.Close()
	}
	return nil
}
