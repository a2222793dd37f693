package model

// RefreshRequest Kafka 刷新请求消息
type RefreshRequest struct {
	Mint      string `json:"mint"`
	Symbol    string `json:"symbol,omitempty"`     // 调用方提供的 symbol 提示
	TimeFrame string `json:"time_frame,omitempty"` // 仅透传
}

// AnalyticsEvent 刷新成功后对外发布的事件
type AnalyticsEvent struct {
	Mint          string         `json:"mint"`
	DisplaySymbol string         `json:"display_symbol"`
	Analytics     TokenAnalytics `json:"analytics"`
	Series        []PricePoint   `json:"series"`
	TimeFrame     TimeFrame      `json:"time_frame"`
	RefreshedAt   int64          `json:"refreshed_at"` // ms
}

// NewAnalyticsEvent 由快照构建发布事件
func NewAnalyticsEvent(s Snapshot) AnalyticsEvent {
	return AnalyticsEvent{
		Mint:          s.Analytics.Details.Mint,
		DisplaySymbol: s.Analytics.Details.DisplaySymbol(),
		Analytics:     s.Analytics,
		Series:        s.Series,
		TimeFrame:     s.TimeFrame,
		RefreshedAt:   s.RefreshedAt.UnixMilli(),
	}
}
