package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github-repo-radar/internal/adapter/gemini"
	"github-repo-radar/internal/adapter/github"
	"github-repo-radar/internal/domain"
	"github-repo-radar/internal/service/feed"
	"github-repo-radar/internal/service/view"
)

func main() {
	query := flag.String("q", "", "关键词过滤（可选）")
	flag.Parse()

	githubToken := os.Getenv("GITHUB_TOKEN")
	geminiKey := os.Getenv("GEMINI_API_KEY")

	fmt.Println("🔍 调试模式：抓取一页 trending 并合成视图")

	// 1. 抓取第一页
	searcher := github.NewSearcher(githubToken)
	fetcher := feed.NewFetcher(searcher, 1)
	defer fetcher.Close()

	done := make(chan struct{}, 1)
	fetcher.SetOnChange(func() {
		st := fetcher.Snapshot()
		if !st.InitialLoading {
			select {
			case done <- struct{}{}:
			default:
			}
		}
	})

	fmt.Println("📥 正在抓取 GitHub Trending 项目...")
	fetcher.Refresh()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		log.Fatal("❌ 抓取超时")
	}

	state := fetcher.Snapshot()
	if state.Error != "" {
		log.Fatalf("❌ 抓取失败: %s", state.Error)
	}
	fmt.Printf("✅ 成功获取 %d 个项目\n", len(state.Repos))

	// 2. 合成视图（关键词过滤走的就是页面上的那条链路）
	repos, reason := view.Compose(view.Input{
		ActiveTab: domain.TabTrending,
		Feed:      state.Repos,
		Query:     *query,
	})
	if *query != "" {
		fmt.Printf("🔍 关键词 [%s] 命中 %d 个项目\n", *query, len(repos))
	}
	if len(repos) == 0 {
		fmt.Printf("📭 列表为空 (原因: %s)\n", reason)
		return
	}

	for i, repo := range repos {
		if i >= 5 { // 只打印前 5 个
			break
		}
		fmt.Printf("  #%d %s ⭐%d [%s]\n     %s\n", i+1, repo.FullName(), repo.Stars, repo.Language, repo.Description)
	}

	// 3. 语言分布
	ctx := context.Background()
	first := repos[0]
	breakdown, err := searcher.ListLanguages(ctx, first.Owner.Login, first.Name)
	if err != nil {
		log.Printf("⚠️ 获取语言分布失败: %v", err)
	} else {
		fmt.Printf("📊 %s 的语言分布:\n", first.FullName())
		for _, share := range domain.TopLanguages(breakdown, 6) {
			fmt.Printf("    %-12s %5.1f%%\n", share.Name, share.Percent)
		}
	}

	// 4. AI 点评（配置了凭证才跑）
	if geminiKey == "" {
		fmt.Println("ℹ️ 未配置 GEMINI_API_KEY，跳过 AI 点评")
		return
	}
	analyst, err := gemini.NewAnalyst(ctx, geminiKey)
	if err != nil {
		log.Fatalf("❌ AI 初始化失败: %v", err)
	}
	fmt.Println("🧠 正在生成 AI 点评...")
	insight, err := analyst.Insight(ctx, first)
	if err != nil {
		log.Printf("⚠️ 点评失败: %v", err)
		return
	}
	fmt.Printf("💡 %s: %s\n", first.FullName(), insight)
}
