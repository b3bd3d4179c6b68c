package domain

import (
	"sort"
	"strings"
	"time"
)

// Category 信息流类别
type Category string

// TimeRange 时间范围
type TimeRange string

// Tab 页面当前激活的标签页
type Tab string

const (
	CategoryTrending Category = "trending" // 热门：按 Star 数排序
	CategoryLatest   Category = "latest"   // 最新：按推送时间排序

	RangeToday TimeRange = "today"
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"

	TabTrending Tab = "trending"
	TabLatest   Tab = "latest"
	TabSaved    Tab = "saved"
)

// Owner 仓库作者
type Owner struct {
	Login     string `json:"login" gorm:"column:owner_login"`
	AvatarURL string `json:"avatar_url" gorm:"column:owner_avatar_url"`
}

// Repo 代表一个远端仓库（一旦抓取即视为不可变，整页替换，从不原地修改）
type Repo struct {
	// 基础信息 (来自 GitHub)
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name"` // 例如 "hugo"
	Owner       Owner     `json:"owner" gorm:"embedded"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	Watchers    int       `json:"watchers"`
	OpenIssues  int       `json:"open_issues"`
	Language    string    `json:"language"`
	Topics      []string  `json:"topics" gorm:"serializer:json"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FullName 返回 "owner/name" 形式的完整仓库名
func (r *Repo) FullName() string {
	if r.Owner.Login == "" {
		return r.Name
	}
	return r.Owner.Login + "/" + r.Name
}

// Matches 判断关键词（不区分大小写）是否命中
// 匹配范围：名称 / 作者 / 描述 / 语言 / 任一 topic
func (r *Repo) Matches(query string) bool {
	q := strings.ToLower(query)
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(r.Name), q) ||
		strings.Contains(strings.ToLower(r.Owner.Login), q) ||
		strings.Contains(strings.ToLower(r.Description), q) ||
		strings.Contains(strings.ToLower(r.Language), q) {
		return true
	}
	for _, topic := range r.Topics {
		if strings.Contains(strings.ToLower(topic), q) {
			return true
		}
	}
	return false
}

// SavedRepo 用户收藏的仓库 = Repo + 收藏时间
// 整个收藏集合是持久化的最小单位：启动时读一次，每次变更整体覆写
type SavedRepo struct {
	Repo    `gorm:"embedded"`
	SavedAt int64 `json:"saved_at"` // 毫秒时间戳，收藏瞬间写入
}

// FeedState 一次 (category, range) 会话的信息流快照
type FeedState struct {
	Category       Category  `json:"category"`
	Range          TimeRange `json:"range"`
	Repos          []*Repo   `json:"repos"` // 已按 ID 去重
	Page           int       `json:"page"`  // 从 1 开始
	HasMore        bool      `json:"has_more"`
	InitialLoading bool      `json:"initial_loading"`
	LoadingMore    bool      `json:"loading_more"`
	Error          string    `json:"error,omitempty"`
	RefreshedAt    time.Time `json:"refreshed_at"`
}

// FilterResult AI 智能筛选的结果：命中的仓库 ID 集合
// 指针为 nil 表示“筛选未激活”（全部展示）；
// 非 nil 但为空集是另一种合法结果（AI 一条都没找到）
type FilterResult struct {
	ids map[int64]struct{}
}

// NewFilterResult 由 ID 列表构造结果集
func NewFilterResult(ids []int64) *FilterResult {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return &FilterResult{ids: set}
}

// Contains 判断 ID 是否在结果集内
func (f *FilterResult) Contains(id int64) bool {
	_, ok := f.ids[id]
	return ok
}

// Len 结果集大小
func (f *FilterResult) Len() int {
	return len(f.ids)
}

// EmptyReason 列表为空时对用户展示的原因
type EmptyReason string

const (
	EmptyNone      EmptyReason = ""              // 列表非空
	EmptyNoResults EmptyReason = "no_results"    // 普通的无结果
	EmptyAINoMatch EmptyReason = "ai_no_matches" // AI 筛选过但一条都没命中
	EmptyNoSaved   EmptyReason = "no_saved"      // 收藏夹是空的
)

// LanguageShare 语言占比（用于堆叠条形图和图例）
type LanguageShare struct {
	Name    string  `json:"name"`
	Bytes   int     `json:"bytes"`
	Percent float64 `json:"percent"`
}

// TopLanguages 按字节数降序取前 n 种语言并计算百分比
func TopLanguages(breakdown map[string]int, n int) []LanguageShare {
	total := 0
	shares := make([]LanguageShare, 0, len(breakdown))
	for name, bytes := range breakdown {
		if bytes <= 0 {
			continue
		}
		total += bytes
		shares = append(shares, LanguageShare{Name: name, Bytes: bytes})
	}
	if total == 0 {
		return nil
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Bytes != shares[j].Bytes {
			return shares[i].Bytes > shares[j].Bytes
		}
		return shares[i].Name < shares[j].Name
	})
	if len(shares) > n {
		shares = shares[:n]
	}
	for i := range shares {
		shares[i].Percent = float64(shares[i].Bytes) / float64(total) * 100
	}
	return shares
}
