package consumer

import (
	"context"
	"sync"
	"testing"
	"time"

	"token-insight/internal/worker/model"
	"token-insight/internal/worker/service"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const bonkMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"

type fakeRefresher struct {
	mu    sync.Mutex
	calls []refreshTask
}

func (f *fakeRefresher) Refresh(_ context.Context, mint, symbol string, tf model.TimeFrame) (model.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, refreshTask{mint: mint, symbol: symbol, timeFrame: tf})
	return model.Snapshot{TimeFrame: tf}, nil
}

func (f *fakeRefresher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestConsumer(refresher Refresher, workers int) *RefreshConsumer {
	buffers := make([]chan refreshTask, workers)
	for i := range buffers {
		buffers[i] = make(chan refreshTask, 10)
	}
	return &RefreshConsumer{
		Consumer:   &Consumer{logger: zap.NewNop()},
		id:         "test",
		topic:      "refresh",
		workerSize: workers,
		buffers:    buffers,
		refresher:  refresher,
		timeout:    time.Second,
	}
}

func TestParseRefreshRequest(t *testing.T) {
	task, err := parseRefreshRequest([]byte(`{"mint":"` + bonkMint + `","symbol":"bonk","time_frame":"7d"}`))
	require.NoError(t, err)
	assert.Equal(t, bonkMint, task.mint)
	assert.Equal(t, "bonk", task.symbol)
	assert.Equal(t, model.TimeFrame7D, task.timeFrame)

	task, err = parseRefreshRequest([]byte(`{"mint":"` + bonkMint + `"}`))
	require.NoError(t, err)
	assert.Equal(t, model.TimeFrame24H, task.timeFrame)

	_, err = parseRefreshRequest([]byte(`{"symbol":"bonk"}`))
	assert.ErrorIs(t, err, service.ErrInvalidMint)

	_, err = parseRefreshRequest([]byte(`{"mint":"x","time_frame":"2W"}`))
	assert.Error(t, err)

	_, err = parseRefreshRequest([]byte(`not json`))
	assert.Error(t, err)
}

func TestDispatchSameMintSameWorker(t *testing.T) {
	rc := newTestConsumer(&fakeRefresher{}, 4)

	for i := 0; i < 3; i++ {
		rc.HandleMessage(kafka.Message{Value: []byte(`{"mint":"` + bonkMint + `"}`)})
	}

	nonEmpty := 0
	for _, b := range rc.buffers {
		if len(b) > 0 {
			nonEmpty++
			assert.Len(t, b, 3)
		}
	}
	assert.Equal(t, 1, nonEmpty)
}

func TestWorkersProcessTasks(t *testing.T) {
	f := &fakeRefresher{}
	rc := newTestConsumer(f, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < rc.workerSize; i++ {
		go rc.work(ctx, i)
	}
	rc.HandleMessage(kafka.Message{Value: []byte(`{"mint":"` + bonkMint + `","time_frame":"1H"}`)})
	rc.HandleMessage(kafka.Message{Value: []byte(`{"bad":true}`)})

	require.Eventually(t, func() bool { return f.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, model.TimeFrame1H, f.calls[0].timeFrame)
}
