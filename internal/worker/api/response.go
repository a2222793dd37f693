package api

import "token-insight/internal/worker/model"

type analyticsResponse struct {
	Mint          string               `json:"mint"`
	DisplaySymbol string               `json:"display_symbol"`
	Analytics     model.TokenAnalytics `json:"analytics"`
	Availability  map[string]string    `json:"availability"`
	Series        []model.PricePoint   `json:"series"`
	TimeFrame     model.TimeFrame      `json:"time_frame"`
	RefreshedAt   int64                `json:"refreshed_at"` // ms
}

func newAnalyticsResponse(s model.Snapshot) analyticsResponse {
	return analyticsResponse{
		Mint:          s.Analytics.Details.Mint,
		DisplaySymbol: s.Analytics.Details.DisplaySymbol(),
		Analytics:     s.Analytics,
		Availability:  s.Analytics.TradeData.Availability(),
		Series:        s.Series,
		TimeFrame:     s.TimeFrame,
		RefreshedAt:   s.RefreshedAt.UnixMilli(),
	}
}

type latestResponse struct {
	Total int                      `json:"total"`
	Items []map[string]interface{} `json:"items"`
}

type healthResponse struct {
	Status string   `json:"status"`
	Jobs   []string `json:"jobs,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}
