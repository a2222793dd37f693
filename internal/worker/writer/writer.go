package writer

import (
	"context"
)

// BatchWriter 批量写入下游（Kafka / ES / DB）
type BatchWriter[T any] interface {
	BWrite(ctx context.Context, batch []T) error
	Close() error
}
