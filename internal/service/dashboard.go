package service

import (
	"context"
	"log"
	"strings"
	"sync"

	"github-repo-radar/internal/cache"
	"github-repo-radar/internal/domain"
	"github-repo-radar/internal/notify"
	"github-repo-radar/internal/port"
	"github-repo-radar/internal/service/feed"
	"github-repo-radar/internal/service/saved"
	"github-repo-radar/internal/service/scroll"
	"github-repo-radar/internal/service/smartfilter"
	"github-repo-radar/internal/service/view"
)

// fallbackInsight AI 点评不可用时的兜底文案，绝不让这个功能报错给用户
const fallbackInsight = "一个值得关注的开源项目，点击查看详情。"

// Dashboard 仪表盘的协调层：把信息流、收藏、AI 筛选、提示队列
// 整合成 UI 消费的单一入口
type Dashboard struct {
	feed      *feed.Fetcher
	savedList *saved.List
	smart     *smartfilter.Engine
	enrich    *cache.Enrichment
	insighter port.Insighter // AI 未配置时为 nil
	langs     port.LanguageLister
	toasts    *notify.Queue
	aiEnabled bool

	mu        sync.Mutex
	activeTab domain.Tab
	query     string
	smartMode bool
	trigger   *scroll.Trigger
}

// RepoView 渲染层看到的仓库条目
type RepoView struct {
	*domain.Repo
	Saved bool `json:"saved"`
}

// Snapshot 一次渲染需要的全部状态
type Snapshot struct {
	Tab         domain.Tab         `json:"tab"`
	Feed        domain.FeedState   `json:"feed"`
	Query       string             `json:"query"`
	SmartMode   bool               `json:"smart_mode"`
	AIEnabled   bool               `json:"ai_enabled"` // false 时前端把智能开关置灰
	AIFiltering bool               `json:"ai_filtering"`
	AIFiltered  bool               `json:"ai_filtered"` // 结果生效中，展示 "AI Filtered" 角标
	Repos       []RepoView         `json:"repos"`
	EmptyReason domain.EmptyReason `json:"empty_reason"`
	SavedCount  int                `json:"saved_count"`
	Toasts      []notify.Toast     `json:"toasts"`
}

// NewDashboard 组装协调层
func NewDashboard(
	fetcher *feed.Fetcher,
	savedList *saved.List,
	smart *smartfilter.Engine,
	enrich *cache.Enrichment,
	insighter port.Insighter,
	langs port.LanguageLister,
	toasts *notify.Queue,
	aiEnabled bool,
) *Dashboard {
	d := &Dashboard{
		feed:      fetcher,
		savedList: savedList,
		smart:     smart,
		enrich:    enrich,
		insighter: insighter,
		langs:     langs,
		toasts:    toasts,
		aiEnabled: aiEnabled,
		activeTab: domain.TabTrending,
	}

	// AI 筛选失败只弹提示，既有筛选结果由引擎自己保住
	smart.SetCallbacks(nil, func(err error) {
		log.Printf("❌ AI 筛选失败: %v", err)
		d.toasts.Push(notify.LevelError, "AI 筛选失败，请稍后再试")
	})

	d.trigger = d.newTrigger()
	return d
}

// Start 首屏加载
func (d *Dashboard) Start() {
	d.feed.Refresh()
}

// Close 页面卸载：取消所有在途请求
func (d *Dashboard) Close() {
	d.mu.Lock()
	if d.trigger != nil {
		d.trigger.Teardown()
		d.trigger = nil
	}
	d.mu.Unlock()
	d.feed.Close()
}

// SetTab 切换标签页
// trending/latest 会切换信息流会话；切走再切回 saved 时哨兵观察随之拆装
func (d *Dashboard) SetTab(tab domain.Tab) {
	d.mu.Lock()
	if d.activeTab == tab {
		d.mu.Unlock()
		return
	}
	d.activeTab = tab

	if tab == domain.TabSaved {
		// 收藏页不渲染哨兵
		if d.trigger != nil {
			d.trigger.Teardown()
			d.trigger = nil
		}
		d.mu.Unlock()
		return
	}

	if d.trigger == nil {
		d.trigger = d.newTrigger()
	}
	d.mu.Unlock()

	if d.feed.SetSession(domain.Category(tab), d.feed.Snapshot().Range) {
		// 会话变了，AI 筛选结果随之作废
		d.smart.Clear()
	}
}

// SetRange 切换时间范围（收藏页没有这个选择器，调用是 no-op）
func (d *Dashboard) SetRange(timeRange domain.TimeRange) {
	d.mu.Lock()
	tab := d.activeTab
	d.mu.Unlock()
	if tab == domain.TabSaved {
		return
	}

	if d.feed.SetSession(domain.Category(tab), timeRange) {
		d.smart.Clear()
	}
}

// SetQuery 更新搜索框文本；清空输入同时会清掉 AI 筛选结果
func (d *Dashboard) SetQuery(query string) {
	d.mu.Lock()
	d.query = query
	d.mu.Unlock()

	if strings.TrimSpace(query) == "" {
		d.smart.Clear()
	}
}

// SetSmartMode 切换智能筛选开关；关闭时清掉筛选结果
// 未配置 AI 凭证时开关不可用，返回 false
func (d *Dashboard) SetSmartMode(on bool) bool {
	if on && !d.aiEnabled {
		d.toasts.Push(notify.LevelInfo, "未配置 AI 凭证，智能筛选不可用")
		return false
	}

	d.mu.Lock()
	d.smartMode = on
	d.mu.Unlock()

	if !on {
		d.smart.Clear()
	}
	return true
}

// RunSmartFilter 对当前已加载的信息流发起一次 AI 筛选
func (d *Dashboard) RunSmartFilter() {
	d.mu.Lock()
	query := d.query
	d.mu.Unlock()

	if err := d.smart.Run(query, d.feed.Snapshot().Repos); err != nil {
		d.toasts.Push(notify.LevelInfo, err.Error())
	}
}

// ClearFilters 清空关键词和 AI 筛选结果
func (d *Dashboard) ClearFilters() {
	d.mu.Lock()
	d.query = ""
	d.mu.Unlock()
	d.smart.Clear()
}

// Refresh 手动刷新信息流
func (d *Dashboard) Refresh() {
	d.feed.Refresh()
}

// LoadMore 直接请求下一页（守卫条件在 Fetcher 内部）
func (d *Dashboard) LoadMore() {
	d.feed.LoadMore()
}

// OnSentinelVisible 列表末尾的哨兵进入视口
func (d *Dashboard) OnSentinelVisible() {
	d.mu.Lock()
	trigger := d.trigger
	d.mu.Unlock()
	if trigger != nil {
		trigger.OnVisible()
	}
}

// ToggleSave 切换收藏状态，返回操作后是否已收藏
func (d *Dashboard) ToggleSave(repo *domain.Repo) bool {
	nowSaved := d.savedList.Toggle(repo)
	if nowSaved {
		d.toasts.Push(notify.LevelSuccess, "已收藏 "+repo.FullName())
	} else {
		d.toasts.Push(notify.LevelInfo, "已取消收藏 "+repo.FullName())
	}
	return nowSaved
}

// DismissToast 手动关闭一条提示
func (d *Dashboard) DismissToast(id int64) {
	d.toasts.Dismiss(id)
}

// FindRepo 在信息流和收藏集合里按 ID 查找
func (d *Dashboard) FindRepo(id int64) (*domain.Repo, bool) {
	for _, repo := range d.feed.Snapshot().Repos {
		if repo.ID == id {
			return repo, true
		}
	}
	for _, item := range d.savedList.All() {
		if item.ID == id {
			repo := item.Repo
			return &repo, true
		}
	}
	return nil, false
}

// Insight 取某仓库的 AI 点评（带进程级缓存，single-flight）
// 任何失败都降级为兜底文案，这个功能永远不向用户报错
func (d *Dashboard) Insight(ctx context.Context, repo *domain.Repo) string {
	if !d.aiEnabled || d.insighter == nil {
		return fallbackInsight
	}

	text, err := d.enrich.Insight(ctx, repo.ID, func(ctx context.Context) (string, error) {
		return d.insighter.Insight(ctx, repo)
	})
	if err != nil {
		log.Printf("⚠️ 获取 %s 的 AI 点评失败，使用兜底文案: %v", repo.FullName(), err)
		return fallbackInsight
	}
	return text
}

// Languages 取某仓库的语言分布（带进程级缓存，single-flight）
// 失败向上返回，由调用方渲染内联重试入口
func (d *Dashboard) Languages(ctx context.Context, owner, name string) ([]domain.LanguageShare, error) {
	breakdown, err := d.enrich.Languages(ctx, owner, name, func(ctx context.Context) (map[string]int, error) {
		return d.langs.ListLanguages(ctx, owner, name)
	})
	if err != nil {
		return nil, err
	}
	return domain.TopLanguages(breakdown, 6), nil
}

// Snapshot 合成一次渲染所需的全部状态
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	tab := d.activeTab
	query := d.query
	smartMode := d.smartMode
	d.mu.Unlock()

	feedState := d.feed.Snapshot()
	savedAll := d.savedList.All()
	filter := d.smart.Result()
	filtering := d.smart.Running()

	repos, reason := view.Compose(view.Input{
		ActiveTab:   tab,
		Feed:        feedState.Repos,
		Saved:       savedAll,
		Filter:      filter,
		Query:       query,
		SmartMode:   smartMode,
		AIFiltering: filtering,
	})

	views := make([]RepoView, 0, len(repos))
	for _, repo := range repos {
		views = append(views, RepoView{Repo: repo, Saved: d.savedList.IsSaved(repo.ID)})
	}

	return Snapshot{
		Tab:         tab,
		Feed:        feedState,
		Query:       query,
		SmartMode:   smartMode,
		AIEnabled:   d.aiEnabled,
		AIFiltering: filtering,
		AIFiltered:  filter != nil,
		Repos:       views,
		EmptyReason: reason,
		SavedCount:  len(savedAll),
		Toasts:      d.toasts.List(),
	}
}

// newTrigger 挂载一个读取当前状态做守卫的滚动触发器
func (d *Dashboard) newTrigger() *scroll.Trigger {
	return scroll.New(func() scroll.Guards {
		st := d.feed.Snapshot()
		d.mu.Lock()
		tab := d.activeTab
		d.mu.Unlock()
		return scroll.Guards{
			HasMore:     st.HasMore,
			Loading:     st.InitialLoading,
			LoadingMore: st.LoadingMore,
			ActiveTab:   tab,
		}
	}, d.feed.LoadMore)
}
