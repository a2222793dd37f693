package service

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"token-insight/internal/worker/config"
	"token-insight/internal/worker/model"
)

// RandSource 均匀分布 [0,1) 随机数，*rand.Rand 满足该接口
type RandSource interface {
	Float64() float64
}

// NoNoise 固定返回 0.5，扰动恒为 0，只剩趋势值
type NoNoise struct{}

func (NoNoise) Float64() float64 { return 0.5 }

// SeriesConfig 序列重建参数
type SeriesConfig struct {
	Points       int           // 点数，>= 2
	Step         time.Duration // 相邻两点间隔
	Floor        float64       // 价格下限，结果严格大于 Floor
	Noise        float64       // 乘性扰动幅度，0.01 即 ±1%
	PinLastPoint bool          // 最后一个点固定为 current
	Location     *time.Location
}

// DefaultSeriesConfig 24 个点，每小时一个
func DefaultSeriesConfig() SeriesConfig {
	return SeriesConfig{
		Points:   24,
		Step:     time.Hour,
		Floor:    0.0001,
		Noise:    0.01,
		Location: time.Local,
	}
}

// SeriesConfigFrom 从 analytics 配置构建，非法值回退默认
func SeriesConfigFrom(c config.AnalyticsConfig) SeriesConfig {
	sc := DefaultSeriesConfig()
	if c.SeriesPoints > 0 {
		sc.Points = c.SeriesPoints
	}
	if c.SeriesStepSec > 0 {
		sc.Step = time.Duration(c.SeriesStepSec) * time.Second
	}
	if c.PriceFloor > 0 {
		sc.Floor = c.PriceFloor
	}
	// noise: 0 关闭扰动；>= 1 时 T*(1+u) 可能为负
	if c.Noise >= 0 && c.Noise < 1 {
		sc.Noise = c.Noise
	}
	sc.PinLastPoint = c.PinLastPoint
	sc.Location = c.Location()
	return sc
}

// Reconstructor 根据当前价与 24h 涨跌幅合成一条以 current 结尾的价格序列。
// 合成数据并非真实成交，只保证有界且首尾与趋势一致。
type Reconstructor struct {
	cfg SeriesConfig
	now func() time.Time

	mu  sync.Mutex // rand 非并发安全
	rnd RandSource
}

// NewReconstructor rnd 为 nil 时使用随机种子
func NewReconstructor(cfg SeriesConfig, rnd RandSource) *Reconstructor {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Reconstructor{cfg: cfg, now: time.Now, rnd: rnd}
}

// WithClock 测试用，固定当前时间
func (r *Reconstructor) WithClock(now func() time.Time) *Reconstructor {
	r.now = now
	return r
}

// StartPrice 反推 24h 前价格 start = current / (1 + changePct/100)
func StartPrice(current, changePct float64) (float64, error) {
	if math.IsNaN(current) || math.IsInf(current, 0) || current <= 0 {
		return 0, fmt.Errorf("%w: current price %v must be positive", ErrDegenerateInput, current)
	}
	if math.IsNaN(changePct) || math.IsInf(changePct, 0) {
		return 0, fmt.Errorf("%w: change %v is not finite", ErrDegenerateInput, changePct)
	}
	// -100% 分母为 0，更低则 start 为负
	denom := 1 + changePct/100
	if denom <= 0 {
		return 0, fmt.Errorf("%w: change %v%% implies non-positive start price", ErrDegenerateInput, changePct)
	}
	start := current / denom
	if math.IsNaN(start) || math.IsInf(start, 0) || start <= 0 {
		return 0, fmt.Errorf("%w: start price %v is not finite", ErrDegenerateInput, start)
	}
	return start, nil
}

// Trend 第 i 个点（共 n 个）的线性插值，不含扰动
func Trend(start, current float64, i, n int) float64 {
	if n < 2 {
		return current
	}
	f := float64(i) / float64(n-1)
	// 两端精确等于 start / current
	return start*(1-f) + current*f
}

// Reconstruct 生成 Points 个点，最旧在前；最后一个点时间为 now
func (r *Reconstructor) Reconstruct(current, changePct float64) ([]model.PricePoint, error) {
	n := r.cfg.Points
	if n < 2 {
		return nil, fmt.Errorf("%w: point count %d must be at least 2", ErrDegenerateInput, n)
	}
	start, err := StartPrice(current, changePct)
	if err != nil {
		return nil, err
	}

	noise := r.draw(n)
	now := r.now()
	points := make([]model.PricePoint, n)
	for i := 0; i < n; i++ {
		trend := Trend(start, current, i, n)
		price := trend * (1 + noise[i])
		if i == n-1 && r.cfg.PinLastPoint {
			price = current
		}
		price = math.Max(price, math.Nextafter(r.cfg.Floor, math.Inf(1)))

		ts := now.Add(-time.Duration(n-1-i) * r.cfg.Step)
		points[i] = model.PricePoint{
			Timestamp: ts,
			Price:     price,
			Label:     ts.In(r.cfg.Location).Format("15:04"),
		}
	}
	return points, nil
}

// draw 一次性取出 n 个扰动，u ~ U(-noise, +noise)
func (r *Reconstructor) draw(n int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]float64, n)
	for i := range out {
		out[i] = (2*r.rnd.Float64() - 1) * r.cfg.Noise
	}
	return out
}
