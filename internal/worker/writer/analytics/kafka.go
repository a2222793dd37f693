package analytics

import (
	"context"
	"time"

	"token-insight/internal/worker/model"
	"token-insight/internal/worker/writer"

	"github.com/bytedance/sonic"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const RETRY_COUNT = 3

// KafkaAnalyticsWriter 发布 AnalyticsEvent，key 为 mint 保证同一 token 有序
type KafkaAnalyticsWriter struct {
	mq    *kafka.Writer
	tl    *zap.Logger
	topic string
}

func NewKafkaAnalyticsWriter(mq *kafka.Writer, tl *zap.Logger, topic string) writer.BatchWriter[model.Snapshot] {
	return &KafkaAnalyticsWriter{mq: mq, tl: tl, topic: topic}
}

func (w *KafkaAnalyticsWriter) BWrite(ctx context.Context, snaps []model.Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(snaps))
	for _, s := range snaps {
		msg, err := w.marshalToMsg(s)
		if err != nil {
			w.tl.Warn("marshal analytics event failed", zap.String("mint", s.Analytics.Details.Mint), zap.Error(err))
			continue
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil
	}

	newCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var err error
	for attempt := 0; attempt < RETRY_COUNT; attempt++ {
		if err = w.mq.WriteMessages(newCtx, msgs...); err == nil {
			return nil
		}
	}
	w.tl.Warn("❌ MQ write failed, exceeded the maximum number of retries", zap.Error(err))
	return err
}

func (w *KafkaAnalyticsWriter) Close() error {
	return nil
}

func (w *KafkaAnalyticsWriter) marshalToMsg(s model.Snapshot) (kafka.Message, error) {
	data, err := sonic.Marshal(model.NewAnalyticsEvent(s))
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Topic: w.topic,
		Key:   []byte(s.Analytics.Details.Mint),
		Value: data,
	}, nil
}
