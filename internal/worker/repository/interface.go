package repository

import (
	"token-insight/pkg/elasticsearch"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"
)

type RedisClient = *redis.Client
type DBClient = *gorm.DB
type MQClient = *kafka.Writer

// Repository 外部连接统一管理，未配置的组件返回 nil
type Repository interface {
	GetRDB() RedisClient
	GetDB() DBClient
	GetMQ() MQClient
	GetES() *elasticsearch.Client
	GetSolanaClient() *rpc.Client
	Close() error
}
