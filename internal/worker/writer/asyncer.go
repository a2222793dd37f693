package writer

import (
	"context"
	"sync"
	"time"

	"token-insight/internal/worker/monitor"

	"go.uber.org/zap"
)

// AsyncBatchWriter 异步攒批写入，队列满时丢弃，不阻塞调用方
type AsyncBatchWriter[T any] struct {
	id            string
	workers       int
	tl            *zap.Logger
	writer        BatchWriter[T]
	inputChan     chan T
	wg            sync.WaitGroup
	batchSize     int
	flushInterval time.Duration
	closeOnce     sync.Once
}

func NewAsyncBatchWriter[T any](tl *zap.Logger, writer BatchWriter[T], batchSize int, flushInterval time.Duration, id string, workers int) *AsyncBatchWriter[T] {
	if batchSize <= 0 {
		batchSize = 1
	}
	if workers <= 0 {
		workers = 1
	}
	return &AsyncBatchWriter[T]{
		id:            id,
		workers:       workers,
		tl:            tl,
		writer:        writer,
		inputChan:     make(chan T, 10000),
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

func (b *AsyncBatchWriter[T]) Start(ctx context.Context) {
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.processItems(ctx)
	}
}

func (b *AsyncBatchWriter[T]) processItems(ctx context.Context) {
	defer b.wg.Done()
	ticker := time.NewTicker(b.flushInterval)
	defer ticker.Stop()

	batch := make([]T, 0, b.batchSize)
	for {
		select {
		case <-ctx.Done():
			// 退出前把手上的批次写完
			if len(batch) > 0 {
				b.writeAndRecord(context.WithoutCancel(ctx), batch)
			}
			return
		case item, ok := <-b.inputChan:
			if !ok {
				if len(batch) > 0 {
					b.writeAndRecord(ctx, batch)
				}
				return
			}
			batch = append(batch, item)
			if len(batch) >= b.batchSize {
				b.writeAndRecord(ctx, batch)
				batch = make([]T, 0, b.batchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				b.writeAndRecord(ctx, batch)
				batch = make([]T, 0, b.batchSize)
			}
		}
	}
}

// writeAndRecord 写入并记录指标
func (b *AsyncBatchWriter[T]) writeAndRecord(ctx context.Context, batch []T) {
	startTime := time.Now()
	monitor.AsyncWriterBatchSize.WithLabelValues(b.id).Observe(float64(len(batch)))

	if err := b.writer.BWrite(ctx, batch); err != nil {
		monitor.AsyncWriterFlushErrors.WithLabelValues(b.id).Inc()
		b.tl.Warn("batch write failed", zap.String("id", b.id), zap.Int("size", len(batch)), zap.Error(err))
	}

	monitor.AsyncWriterFlushDuration.WithLabelValues(b.id).Observe(time.Since(startTime).Seconds())
}

// Submit 非阻塞入队
func (b *AsyncBatchWriter[T]) Submit(item T) {
	select {
	case b.inputChan <- item:
	default:
		monitor.AsyncWriterMessagesDropped.WithLabelValues(b.id).Inc()
		b.tl.Warn("Batch input channel full, dropping item", zap.String("id", b.id))
	}
}

// Close 关闭队列，等待剩余数据写完。Close 之后不能再 Submit。
func (b *AsyncBatchWriter[T]) Close() {
	b.closeOnce.Do(func() {
		close(b.inputChan)
		b.wg.Wait()
		_ = b.writer.Close()
	})
}
