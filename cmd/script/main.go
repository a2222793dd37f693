package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"token-insight/internal/worker"
	"token-insight/internal/worker/config"
	"token-insight/internal/worker/job"
	"token-insight/internal/worker/model"
	"token-insight/internal/worker/repository"
	"token-insight/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// 一次性任务

const (
	flagCfg       = "cfg"
	flagMint      = "mint"
	flagSymbol    = "symbol"
	flagTimeFrame = "timeframe"
)

func main() {
	app := cli.NewApp()
	app.Name = "token-insight-script"
	app.Usage = "one-shot token analytics tasks"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    flagCfg,
			Aliases: []string{"c"},
			Usage:   "Configuration `DIR` containing config.worker.yaml",
			Value:   "./config/",
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:   "refresh",
			Usage:  "Refresh one token and print the analytics event as JSON",
			Action: refresh,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: flagMint, Aliases: []string{"m"}, Usage: "token mint `ADDRESS`", Required: true},
				&cli.StringFlag{Name: flagSymbol, Usage: "symbol hint used when no source knows the token"},
				&cli.StringFlag{Name: flagTimeFrame, Usage: "time frame echoed into the snapshot", Value: "24H"},
			},
		},
		{
			Name:   "watchlist",
			Usage:  "Print the mints the scheduled refresh would cover",
			Action: watchlist,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		os.Exit(1)
	}
}

// setup 读取配置、初始化日志和连接，done 结束 span 并关闭连接
func setup(c *cli.Context, name string) (ctx context.Context, cfg config.Config, tl *zap.Logger, repo repository.Repository, done func(), err error) {
	cfg, err = config.Load(c.String(flagCfg))
	if err != nil {
		return nil, cfg, nil, nil, nil, err
	}

	// 初始化 trace provider
	logger.InitTrace("token-insight", name)
	ctx, span := logger.StartSpan(c.Context, "main", name)

	// 创建 root logger 并注入 trace 上下文
	rootLogger := logger.NewLogger(name, cfg.Log.Dir)
	logger.SetLogLevel(cfg.Log.Level)
	tl = logger.WithTrace(ctx, rootLogger)

	repo = repository.New(cfg, tl)
	done = func() {
		repo.Close()
		span.End()
	}
	return ctx, cfg, tl, repo, done, nil
}

func refresh(c *cli.Context) error {
	tf, err := model.ParseTimeFrame(c.String(flagTimeFrame))
	if err != nil {
		return err
	}

	startTime := time.Now()
	ctx, cfg, tl, repo, done, err := setup(c, "script")
	if err != nil {
		return err
	}
	defer done()

	refresher := worker.NewRefresher(cfg, repo, worker.NewTokenDAO(repo), tl)

	ctx, cancel := context.WithTimeout(ctx, 2*cfg.Analytics.ProviderTimeout())
	defer cancel()

	snap, err := refresher.Refresh(ctx, c.String(flagMint), c.String(flagSymbol), tf)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", c.String(flagMint), err)
	}

	out, err := sonic.ConfigStd.MarshalIndent(model.NewAnalyticsEvent(snap), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	tl.Info("Task completed successfully", zap.Duration("taken_time", time.Since(startTime)))
	return nil
}

func watchlist(c *cli.Context) error {
	ctx, cfg, _, repo, done, err := setup(c, "script")
	if err != nil {
		return err
	}
	defer done()

	var lister job.TagLister
	if tokens := worker.NewTokenDAO(repo); tokens != nil {
		lister = tokens
	}
	mints, err := job.NewWatchlist(cfg.Analytics, lister).Mints(ctx)
	if err != nil {
		return err
	}
	for _, m := range mints {
		fmt.Println(m)
	}
	return nil
}
