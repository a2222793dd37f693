package model

import (
	"fmt"
	"strings"
	"time"
)

// PricePoint 合成价格序列中的一个点，每次刷新重新生成，不做持久化
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Label     string    `json:"label"` // HH:MM，调用方时区
}

// TimeFrame 展示层选择的时间范围
type TimeFrame string

const (
	TimeFrame1H  TimeFrame = "1H"
	TimeFrame24H TimeFrame = "24H"
	TimeFrame7D  TimeFrame = "7D"
	TimeFrame30D TimeFrame = "30D"
	TimeFrameAll TimeFrame = "ALL"
)

var timeFrames = []TimeFrame{TimeFrame1H, TimeFrame24H, TimeFrame7D, TimeFrame30D, TimeFrameAll}

// ParseTimeFrame 解析时间范围，空字符串默认 24H
func ParseTimeFrame(s string) (TimeFrame, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return TimeFrame24H, nil
	}
	for _, tf := range timeFrames {
		if string(tf) == s {
			return tf, nil
		}
	}
	return "", fmt.Errorf("unknown time frame %q", s)
}

func (tf TimeFrame) String() string {
	return string(tf)
}
