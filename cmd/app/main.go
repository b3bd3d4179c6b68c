package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github-repo-radar/internal/adapter/gemini"
	"github-repo-radar/internal/adapter/github"
	"github-repo-radar/internal/adapter/store"
	"github-repo-radar/internal/cache"
	"github-repo-radar/internal/config"
	"github-repo-radar/internal/notify"
	"github-repo-radar/internal/port"
	"github-repo-radar/internal/server"
	"github-repo-radar/internal/service"
	"github-repo-radar/internal/service/feed"
	"github-repo-radar/internal/service/saved"
	"github-repo-radar/internal/service/smartfilter"
)

func main() {
	// 1. 命令行参数（只用于覆盖环境变量）
	addr := flag.String("addr", "", "监听地址，覆盖 LISTEN_ADDR")
	flag.Parse()

	cfg := config.Load()
	if *addr != "" {
		cfg.ListenAddr = *addr
	}

	// 2. 初始化持久层
	// 收藏功能是 fail-soft 的：数据库不可用时退化为纯内存，进程照常启动
	var saveStore port.SaveStore
	if gormStore, err := store.NewGormStore(cfg.DatabaseDSN); err != nil {
		log.Printf("⚠️ 数据库初始化失败，收藏将只保存在内存中: %v", err)
	} else {
		saveStore = gormStore
	}

	// 3. 初始化 AI 依赖（可选：没有凭证时相关功能整体降级）
	ctx := context.Background()
	var insighter port.Insighter
	var classifier port.Classifier
	aiEnabled := false
	if cfg.AIEnabled() {
		analyst, err := gemini.NewAnalyst(ctx, cfg.GeminiKey)
		if err != nil {
			log.Printf("⚠️ AI 初始化失败，智能筛选和点评不可用: %v", err)
		} else {
			insighter = analyst
			classifier = analyst
			aiEnabled = true
		}
	}

	// 4. 组装仪表盘
	searcher := github.NewSearcher(cfg.GitHubToken)
	dash := service.NewDashboard(
		feed.NewFetcher(searcher, cfg.PageLimit),
		saved.NewList(saveStore),
		smartfilter.NewEngine(classifier, aiEnabled),
		cache.NewEnrichment(),
		insighter,
		searcher,
		notify.NewQueue(notify.DefaultTTL),
		aiEnabled,
	)
	defer dash.Close()

	// 首屏加载
	dash.Start()

	// 5. 可选的定时自动刷新
	if cfg.RefreshCron != "" {
		c := cron.New()
		if _, err := c.AddFunc(cfg.RefreshCron, func() {
			fmt.Println("⏰ 定时刷新信息流...")
			dash.Refresh()
		}); err != nil {
			log.Printf("⚠️ REFRESH_CRON=%q 不是合法的 cron 表达式: %v", cfg.RefreshCron, err)
		} else {
			c.Start()
			defer c.Stop()
			fmt.Printf("⏰ 定时刷新已启动: %s\n", cfg.RefreshCron)
		}
	}

	// 6. 启动 HTTP 服务，信号触发优雅关闭
	srvCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n👋 收到停止信号，正在退出...")
		cancel()
	}()

	fmt.Printf("🚀 仪表盘已启动: http://localhost%s\n", cfg.ListenAddr)
	if !aiEnabled {
		fmt.Println("ℹ️ 未配置 GEMINI_API_KEY，AI 功能不可用")
	}

	if err := server.New(dash).ListenAndServe(srvCtx, cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("❌ HTTP 服务异常退出: %v", err)
	}
}
