package port

import (
	"context"

	"github-repo-radar/internal/domain"
)

// Searcher (搜索员): 负责分页拉取远端仓库搜索结果
// 背后是 GitHub Search API，也可以换成任何兼容的数据源
type Searcher interface {
	// page 从 1 开始，每页固定 30 条
	SearchPage(ctx context.Context, category domain.Category, timeRange domain.TimeRange, page int) ([]*domain.Repo, error)
}

// LanguageLister (语言统计员): 负责查询单个仓库的语言字节分布
type LanguageLister interface {
	ListLanguages(ctx context.Context, owner, name string) (map[string]int, error)
}

// Insighter (点评员): 调用 LLM 为单个仓库生成一句话技术点评
// 失败时调用方应降级为固定的兜底文案，绝不向用户报错
type Insighter interface {
	Insight(ctx context.Context, repo *domain.Repo) (string, error)
}

// Classifier (筛选员): 调用 LLM 在当前已加载的信息流里做语义筛选
// 返回强语义匹配的仓库 ID 子集（可以为空）
type Classifier interface {
	Classify(ctx context.Context, repos []*domain.Repo, intent string) ([]int64, error)
}

// SaveStore (收藏管理员): 负责收藏集合的持久化
// 契约是 fail-soft：读写失败只记日志，内存中的集合永远是本会话的真相
type SaveStore interface {
	// 启动时读一次；记录缺失或损坏时返回空集合
	Load() []*domain.SavedRepo

	// 每次变更整体覆写（非增量）
	Replace(all []*domain.SavedRepo)
}
