package consumer

import (
	"context"
	"errors"
	"time"

	"token-insight/internal/worker/config"
	"token-insight/pkg/utils"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const readErrorBackoff = time.Second

// KafkaConsumer 接口
type KafkaConsumer interface {
	Run(ctx context.Context)
	Stop() error
	ID() string
}

// MessageHandler 解耦消息处理逻辑
type MessageHandler interface {
	HandleMessage(msg kafka.Message)
}

// Consumer 通用 Kafka 消费循环，带速率限制
type Consumer struct {
	logger      *zap.Logger
	kafkaReader *kafka.Reader
	limiter     *rate.Limiter
}

// NewConsumer 创建一个新的通用 Consumer 实例，ratePerSec <= 0 时不限速
func NewConsumer(conf config.KafkaConfig, logger *zap.Logger, topic string, ratePerSec int) *Consumer {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)
	}
	return &Consumer{
		logger:      logger,
		kafkaReader: newKafkaReader(conf, topic),
		limiter:     limiter,
	}
}

// Start 启动消费者主循环
func (c *Consumer) Start(ctx context.Context, handler MessageHandler) {
	go c.run(ctx, handler)
}

// 主消费逻辑
func (c *Consumer) run(ctx context.Context, handler MessageHandler) {
	for {
		select {
		case <-ctx.Done():
			c.logger.Warn("closing Kafka consumer...")
			_ = c.kafkaReader.Close()
			return
		default:
		}

		// 等待令牌可用
		if err := c.limiter.Wait(ctx); err != nil {
			continue
		}

		ctxWithTimeout, cancel := context.WithTimeout(ctx, 2*time.Second)
		msg, err := c.kafkaReader.ReadMessage(ctxWithTimeout)
		cancel()

		if err != nil {
			switch {
			case errors.Is(err, context.DeadlineExceeded):
				c.logger.Debug("⌛ Kafka running...")
			case errors.Is(err, context.Canceled):
			default:
				// broker 不可用时避免空转刷日志
				c.logger.Warn("❌ Kafka Read Error", zap.Error(err))
				sleep(ctx, readErrorBackoff)
			}
			continue
		}

		handler.HandleMessage(msg)
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// Stop 停止消费者
func (c *Consumer) Stop() error {
	return c.kafkaReader.Close()
}

// 创建 Kafka Reader
func newKafkaReader(conf config.KafkaConfig, topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:                utils.SplitList(conf.Brokers),
		Topic:                  topic,
		GroupID:                conf.GroupID,
		StartOffset:            kafka.LastOffset,
		CommitInterval:         5 * time.Second,
		QueueCapacity:          1000,
		MinBytes:               1,                      // 刷新请求很小，不等攒批
		MaxBytes:               1e6,                    // 1MB
		ReadBatchTimeout:       500 * time.Millisecond, // 读取超时
		PartitionWatchInterval: 5 * time.Second,        // 分区监控间隔
	})
}
