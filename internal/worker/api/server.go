package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"token-insight/internal/worker/config"
	"token-insight/internal/worker/model"
	"token-insight/internal/worker/service"
	"token-insight/pkg/elasticsearch"
	"token-insight/pkg/logger"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

const tracerName = "token-insight/api"

// Refresher 快照读取与强制刷新
type Refresher interface {
	Get(ctx context.Context, mint, symbolHint string, tf model.TimeFrame) (model.Snapshot, error)
	Refresh(ctx context.Context, mint, symbolHint string, tf model.TimeFrame) (model.Snapshot, error)
}

// Searcher 最新快照索引查询，未配置 ES 时为 nil
type Searcher interface {
	Search(ctx context.Context, indexName string, query map[string]interface{}) (*elasticsearch.SearchResult, error)
}

// Server 对外 HTTP 接口
type Server struct {
	tl        *zap.Logger
	refresher Refresher
	searcher  Searcher
	index     string
	jobs      func() []string
	timeout   time.Duration
	server    *http.Server
}

// Option 可选依赖
type Option func(*Server)

// WithSearcher 启用 /api/v1/analytics/latest
func WithSearcher(searcher Searcher, index string) Option {
	return func(s *Server) {
		s.searcher = searcher
		s.index = index
	}
}

// WithJobs health 中列出已注册的作业
func WithJobs(jobs func() []string) Option {
	return func(s *Server) { s.jobs = jobs }
}

// WithTimeout 单个请求的处理上限
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

func NewServer(cfg config.APIConfig, tl *zap.Logger, refresher Refresher, opts ...Option) *Server {
	s := &Server{
		tl:        tl,
		refresher: refresher,
		timeout:   10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.Addr != "" {
		s.server = &http.Server{
			Addr:              cfg.Addr,
			Handler:           s.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return s
}

// Handler 路由
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /api/v1/tokens/{mint}/analytics", s.getAnalytics)
	mux.HandleFunc("POST /api/v1/tokens/{mint}/refresh", s.refresh)
	if s.searcher != nil {
		mux.HandleFunc("GET /api/v1/analytics/latest", s.latest)
	}
	return mux
}

// Run 启动 HTTP 服务
func (s *Server) Run() {
	if s.server == nil {
		return // disabled
	}
	go func() {
		s.tl.Info("api server listening", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.tl.Error("api server stopped", zap.Error(err))
		}
	}()
}

// Stop 优雅关闭
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.jobs != nil {
		resp.Jobs = s.jobs()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getAnalytics(w http.ResponseWriter, r *http.Request) {
	s.serveSnapshot(w, r, "get_analytics", s.refresher.Get)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	s.serveSnapshot(w, r, "refresh", s.refresher.Refresh)
}

type snapshotFunc func(ctx context.Context, mint, symbolHint string, tf model.TimeFrame) (model.Snapshot, error)

func (s *Server) serveSnapshot(w http.ResponseWriter, r *http.Request, spanName string, fn snapshotFunc) {
	ctx, span := logger.StartSpanWithRequest(r, tracerName, spanName)
	defer span.End()

	mint := r.PathValue("mint")
	tf, err := model.ParseTimeFrame(r.URL.Query().Get("timeframe"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	snap, err := fn(ctx, mint, r.URL.Query().Get("symbol"), tf)
	if err != nil {
		status, retryable := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.WithTrace(ctx, s.tl).Warn("analytics request failed", zap.String("mint", mint), zap.Error(err))
		}
		writeError(w, status, err.Error(), retryable)
		return
	}
	writeJSON(w, http.StatusOK, newAnalyticsResponse(snap))
}

func (s *Server) latest(w http.ResponseWriter, r *http.Request) {
	ctx, span := logger.StartSpanWithRequest(r, tracerName, "latest_snapshots")
	defer span.End()

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", false)
			return
		}
		limit = min(n, 100)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.searcher.Search(ctx, s.index, LatestQuery(limit, r.URL.Query().Get("risk_level")))
	if err != nil {
		logger.WithTrace(ctx, s.tl).Warn("search latest snapshots failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "snapshot index unavailable", true)
		return
	}

	items := make([]map[string]interface{}, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		items = append(items, hit.Source)
	}
	writeJSON(w, http.StatusOK, latestResponse{Total: result.Hits.Total.Value, Items: items})
}

// LatestQuery 按刷新时间倒序，可按风险等级过滤
func LatestQuery(limit int, riskLevel string) map[string]interface{} {
	query := map[string]interface{}{
		"size": limit,
		"sort": []interface{}{
			map[string]interface{}{"refreshed_at": map[string]interface{}{"order": "desc"}},
		},
	}
	if riskLevel != "" {
		query["query"] = map[string]interface{}{
			"term": map[string]interface{}{"risk_level": riskLevel},
		}
	} else {
		query["query"] = map[string]interface{}{"match_all": map[string]interface{}{}}
	}
	return query
}

// statusFor 错误到 HTTP 状态码，第二个返回值表示客户端可以重试
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, service.ErrInvalidMint):
		return http.StatusBadRequest, false
	case errors.Is(err, service.ErrDegenerateInput):
		return http.StatusUnprocessableEntity, false
	case service.IsRetryable(err):
		return http.StatusServiceUnavailable, true
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, true
	case errors.Is(err, context.Canceled):
		return 499, false
	default:
		return http.StatusInternalServerError, false
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := sonic.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string, retryable bool) {
	writeJSON(w, status, errorResponse{Error: msg, Retryable: retryable})
}
