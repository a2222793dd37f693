package consumer

import (
	"context"
	"errors"
	"strconv"
	"time"

	"token-insight/internal/worker/config"
	"token-insight/internal/worker/model"
	"token-insight/internal/worker/monitor"
	"token-insight/internal/worker/service"
	"token-insight/pkg/utils"

	"github.com/bytedance/sonic"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Refresher 消费者依赖的刷新能力
type Refresher interface {
	Refresh(ctx context.Context, mint, symbolHint string, tf model.TimeFrame) (model.Snapshot, error)
}

type refreshTask struct {
	mint      string
	symbol    string
	timeFrame model.TimeFrame
}

// RefreshConsumer 消费刷新请求。同一 mint 总是进同一个 worker，
// 重复请求在 worker 内串行，与正在执行的刷新合并。
type RefreshConsumer struct {
	*Consumer
	id         string
	topic      string
	workerSize int
	buffers    []chan refreshTask
	refresher  Refresher
	timeout    time.Duration
}

func NewRefreshConsumer(conf config.Config, logger *zap.Logger, refresher Refresher) *RefreshConsumer {
	workerSize := conf.Worker.WorkerNum
	if workerSize <= 0 {
		workerSize = 1
	}
	buffers := make([]chan refreshTask, workerSize)
	for i := range buffers {
		buffers[i] = make(chan refreshTask, 500)
	}

	// 一次刷新包含已有记录查询和数据源调用，两倍数据源超时足够
	timeout := 2 * conf.Analytics.ProviderTimeout()

	return &RefreshConsumer{
		Consumer:   NewConsumer(conf.Kafka, logger, conf.Kafka.TopicRefresh, 200),
		id:         "refresh_consumer",
		topic:      conf.Kafka.TopicRefresh,
		workerSize: workerSize,
		buffers:    buffers,
		refresher:  refresher,
		timeout:    timeout,
	}
}

// Run 启动 worker 和消费循环
func (rc *RefreshConsumer) Run(ctx context.Context) {
	for i := 0; i < rc.workerSize; i++ {
		go rc.work(ctx, i)
	}
	rc.Consumer.Start(ctx, rc)
}

func (rc *RefreshConsumer) work(ctx context.Context, idx int) {
	workerID := strconv.Itoa(idx)
	for {
		select {
		case task, ok := <-rc.buffers[idx]:
			if !ok {
				return
			}
			rc.process(ctx, workerID, task)
		case <-ctx.Done():
			return
		}
	}
}

func (rc *RefreshConsumer) process(ctx context.Context, workerID string, task refreshTask) {
	taskCtx, cancel := context.WithTimeout(ctx, rc.timeout)
	defer cancel()

	_, err := rc.refresher.Refresh(taskCtx, task.mint, task.symbol, task.timeFrame)
	if err != nil {
		level := zap.WarnLevel
		if errors.Is(err, service.ErrDataUnavailable) || errors.Is(err, context.Canceled) {
			level = zap.InfoLevel
		}
		rc.logger.Log(level, "refresh failed",
			zap.String("consumerID", rc.id),
			zap.String("worker", workerID),
			zap.String("mint", task.mint),
			zap.Error(err))
		return
	}
	rc.logger.Debug("✅ refreshed", zap.String("worker", workerID), zap.String("mint", task.mint))
}

// HandleMessage 实现 MessageHandler 接口
func (rc *RefreshConsumer) HandleMessage(msg kafka.Message) {
	monitor.RefreshMessagesReceived.WithLabelValues(rc.topic).Inc()

	task, err := parseRefreshRequest(msg.Value)
	if err != nil {
		rc.logger.Warn("❌ invalid refresh request", zap.String("consumerID", rc.id), zap.Error(err), zap.String("raw", string(msg.Value)))
		return
	}
	rc.dispatch(task)
}

func parseRefreshRequest(raw []byte) (refreshTask, error) {
	var req model.RefreshRequest
	if err := sonic.Unmarshal(raw, &req); err != nil {
		return refreshTask{}, err
	}
	if req.Mint == "" {
		return refreshTask{}, service.ErrInvalidMint
	}
	tf, err := model.ParseTimeFrame(req.TimeFrame)
	if err != nil {
		return refreshTask{}, err
	}
	return refreshTask{mint: req.Mint, symbol: req.Symbol, timeFrame: tf}, nil
}

func (rc *RefreshConsumer) dispatch(task refreshTask) {
	idx := utils.GetHashBucket(task.mint, uint32(rc.workerSize))
	select {
	case rc.buffers[idx] <- task:
	default:
		rc.logger.Warn("❌ refresh buffer is full", zap.String("consumerID", rc.id), zap.Uint32("idx", idx), zap.String("mint", task.mint))
	}
}

func (rc *RefreshConsumer) ID() string {
	return rc.id
}

// Stop 先停 Kafka 读取；worker 随 ctx 退出
func (rc *RefreshConsumer) Stop() error {
	return rc.Consumer.Stop()
}
