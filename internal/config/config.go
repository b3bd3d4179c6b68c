package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 全部运行时配置，启动时从环境变量读取一次
type Config struct {
	GitHubToken string // 为空则匿名访问，限制 60次/小时
	GeminiKey   string // 为空则 AI 功能整体降级（开关置灰、点评走兜底文案）
	DatabaseDSN string // 收藏集合的持久化存储
	ListenAddr  string // 例如 ":8080"
	PageLimit   int    // 信息流最大页数，受 Search API 结果窗口限制
	RefreshCron string // 自动刷新的 cron 表达式，空串表示不开启
}

const (
	// DefaultPageLimit 33 页 x 每页 30 条，不超过 Search API 1000 条的结果窗口
	DefaultPageLimit = 33

	defaultListenAddr = ":8080"
	defaultDSN        = "host=localhost user=postgres password=123456 dbname=repo_radar port=5432 sslmode=disable TimeZone=Asia/Shanghai"
)

// Load 读取 .env（如果有）和环境变量
// 除了数据库外都是可选项，缺失时取默认值或降级，不会让进程退出
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️ 读取 .env 文件失败: %v", err)
	}

	cfg := &Config{
		GitHubToken: os.Getenv("GITHUB_TOKEN"),
		GeminiKey:   os.Getenv("GEMINI_API_KEY"),
		DatabaseDSN: getenv("DATABASE_DSN", defaultDSN),
		ListenAddr:  getenv("LISTEN_ADDR", defaultListenAddr),
		PageLimit:   DefaultPageLimit,
		RefreshCron: os.Getenv("REFRESH_CRON"),
	}

	if s := os.Getenv("FEED_PAGE_LIMIT"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			cfg.PageLimit = v
		} else {
			log.Printf("⚠️ FEED_PAGE_LIMIT=%q 不是正整数，使用默认值 %d", s, DefaultPageLimit)
		}
	}

	return cfg
}

// AIEnabled AI 相关功能是否可用
func (c *Config) AIEnabled() bool {
	return c.GeminiKey != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
