package service

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"token-insight/internal/worker/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestReconstructor(cfg SeriesConfig, rnd RandSource) *Reconstructor {
	cfg.Location = time.UTC
	return NewReconstructor(cfg, rnd).WithClock(func() time.Time { return fixedNow })
}

func TestStartPrice(t *testing.T) {
	cases := []struct {
		current, change float64
	}{
		{1.25, 25},
		{1.25, 0},
		{0.00042, -37.5},
		{98000, 350},
		{3, -99.9},
	}
	for _, c := range cases {
		start, err := StartPrice(c.current, c.change)
		require.NoError(t, err)
		assert.Equal(t, c.current/(1+c.change/100), start)
	}

	start, err := StartPrice(1.25, 25)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, start, 1e-12)
}

func TestStartPriceDegenerate(t *testing.T) {
	cases := []struct {
		name            string
		current, change float64
	}{
		{"minus hundred", 1.25, -100},
		{"below minus hundred", 1.25, -150},
		{"zero price", 0, 10},
		{"negative price", -1, 10},
		{"nan price", math.NaN(), 10},
		{"inf price", math.Inf(1), 10},
		{"nan change", 1, math.NaN()},
		{"inf change", 1, math.Inf(-1)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := StartPrice(c.current, c.change)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDegenerateInput)
			assert.False(t, IsRetryable(err))
		})
	}
}

func TestReconstructTrendOnly(t *testing.T) {
	r := newTestReconstructor(DefaultSeriesConfig(), NoNoise{})

	points, err := r.Reconstruct(1.25, 25)
	require.NoError(t, err)
	require.Len(t, points, 24)

	assert.Equal(t, 1.0, points[0].Price)
	assert.Equal(t, 1.25, points[23].Price)
	step := (1.25 - 1.0) / 23
	for i := 1; i < len(points); i++ {
		assert.InDelta(t, step, points[i].Price-points[i-1].Price, 1e-12)
	}
}

func TestTrendEndpointsExact(t *testing.T) {
	rnd := rand.New(rand.NewPCG(11, 13))
	const n = 24
	r := newTestReconstructor(DefaultSeriesConfig(), NoNoise{})

	for k := 0; k < 20000; k++ {
		current := 0.001 + rnd.Float64()*1000
		change := -99 + rnd.Float64()*400
		start, err := StartPrice(current, change)
		require.NoError(t, err)

		if !assert.Equal(t, current, Trend(start, current, n-1, n), "current=%v change=%v", current, change) {
			return
		}
		if !assert.Equal(t, start, Trend(start, current, 0, n), "current=%v change=%v", current, change) {
			return
		}
	}

	// 30.03540631417545 @ +172.91% 在旧插值下末点偏差 1 ULP
	for _, tc := range []struct{ current, change float64 }{
		{30.03540631417545, 172.91248007688904},
		{1.25, 25},
		{0.0005, -42.5},
	} {
		points, err := r.Reconstruct(tc.current, tc.change)
		require.NoError(t, err)
		assert.Equal(t, tc.current, points[len(points)-1].Price)
	}
}

func TestReconstructTimestamps(t *testing.T) {
	r := newTestReconstructor(DefaultSeriesConfig(), rand.New(rand.NewPCG(1, 2)))

	points, err := r.Reconstruct(2, -10)
	require.NoError(t, err)
	require.Len(t, points, 24)

	assert.Equal(t, fixedNow, points[23].Timestamp)
	assert.Equal(t, fixedNow.Add(-23*time.Hour), points[0].Timestamp)
	assert.Equal(t, "12:00", points[23].Label)
	assert.Equal(t, "13:00", points[0].Label)
	for i := 1; i < len(points); i++ {
		assert.True(t, points[i].Timestamp.After(points[i-1].Timestamp))
	}
}

func TestReconstructNoiseIsBounded(t *testing.T) {
	cfg := DefaultSeriesConfig()
	r := newTestReconstructor(cfg, rand.New(rand.NewPCG(42, 7)))

	start, err := StartPrice(5, 12)
	require.NoError(t, err)

	for run := 0; run < 50; run++ {
		points, err := r.Reconstruct(5, 12)
		require.NoError(t, err)
		require.Len(t, points, cfg.Points)
		for i, p := range points {
			trend := Trend(start, 5, i, cfg.Points)
			assert.LessOrEqual(t, math.Abs(p.Price-trend), trend*cfg.Noise+1e-12)
		}
	}
}

func TestReconstructFloor(t *testing.T) {
	cfg := DefaultSeriesConfig()
	r := newTestReconstructor(cfg, rand.New(rand.NewPCG(3, 4)))

	points, err := r.Reconstruct(0.00001, 400)
	require.NoError(t, err)
	for _, p := range points {
		assert.Greater(t, p.Price, cfg.Floor)
	}

	// 趋势全部低于下限时仍严格大于 Floor
	points, err = newTestReconstructor(cfg, NoNoise{}).Reconstruct(cfg.Floor/10, 5)
	require.NoError(t, err)
	for _, p := range points {
		assert.Greater(t, p.Price, cfg.Floor)
	}
}

func TestReconstructPinLastPoint(t *testing.T) {
	cfg := DefaultSeriesConfig()
	cfg.PinLastPoint = true
	r := newTestReconstructor(cfg, rand.New(rand.NewPCG(5, 6)))

	points, err := r.Reconstruct(3.3, 10)
	require.NoError(t, err)
	assert.Equal(t, 3.3, points[len(points)-1].Price)
}

func TestReconstructRejectsDegenerateInput(t *testing.T) {
	r := newTestReconstructor(DefaultSeriesConfig(), NoNoise{})

	_, err := r.Reconstruct(1.25, -100)
	assert.ErrorIs(t, err, ErrDegenerateInput)

	_, err = r.Reconstruct(0, 5)
	assert.ErrorIs(t, err, ErrDegenerateInput)

	cfg := DefaultSeriesConfig()
	cfg.Points = 1
	_, err = newTestReconstructor(cfg, NoNoise{}).Reconstruct(1, 1)
	assert.ErrorIs(t, err, ErrDegenerateInput)
}

func TestSeriesConfigFrom(t *testing.T) {
	sc := SeriesConfigFrom(config.AnalyticsConfig{
		SeriesPoints:  48,
		SeriesStepSec: 1800,
		PriceFloor:    0.001,
		Noise:         0.02,
		PinLastPoint:  true,
		Timezone:      "UTC",
	})
	assert.Equal(t, 48, sc.Points)
	assert.Equal(t, 30*time.Minute, sc.Step)
	assert.Equal(t, 0.001, sc.Floor)
	assert.Equal(t, 0.02, sc.Noise)
	assert.True(t, sc.PinLastPoint)
	assert.Equal(t, time.UTC, sc.Location)

	sc = SeriesConfigFrom(config.AnalyticsConfig{})
	assert.Equal(t, 24, sc.Points)
	assert.Equal(t, time.Hour, sc.Step)
	assert.Equal(t, 0.0, sc.Noise)

	// 幅度越界回退默认
	for _, noise := range []float64{1, 2.5, -0.1} {
		sc = SeriesConfigFrom(config.AnalyticsConfig{Noise: noise})
		assert.Equal(t, DefaultSeriesConfig().Noise, sc.Noise, "noise=%v", noise)
	}
	sc = SeriesConfigFrom(config.AnalyticsConfig{Noise: 0.999})
	assert.Equal(t, 0.999, sc.Noise)
}
