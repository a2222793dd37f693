package main

import (
	"context"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"token-insight/internal/worker"
	"token-insight/internal/worker/config"
	"token-insight/pkg/logger"
)

func main() {
	// 初始化配置文件
	cfg := config.InitConfig()

	// 初始化 trace provider
	shutdownTrace := logger.InitTrace("token-insight", "worker")
	// 启动主 span
	ctx, span := logger.StartSpan(context.Background(), "main", "main")
	defer span.End()

	// 创建 root logger 并注入 trace 上下文
	rootLogger := logger.NewLogger("worker", cfg.Log.Dir)
	logger.SetLogLevel(cfg.Log.Level)
	tl := logger.WithTrace(ctx, rootLogger)
	defer tl.Sync()

	// 初始化worker
	core := worker.New(cfg, tl)

	// 启动配置热加载监听
	config.WatchConfig(&cfg, core.OnConfigChange)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 启动 worker
	go func() {
		tl.Info("Starting token-insight worker...")
		core.Start(ctx)
	}()

	// 监听操作系统信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	tl.Info("Received shutdown signal, starting graceful shutdown...")
	cancel()

	// 关闭资源
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	core.Stop(stopCtx)
	_ = shutdownTrace(stopCtx)

	tl.Info("Shutting down all cores...")
}
