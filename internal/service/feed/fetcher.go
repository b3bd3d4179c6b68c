package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github-repo-radar/internal/common"
	"github-repo-radar/internal/domain"
	"github-repo-radar/internal/port"
)

// PageSize 每页条数，与上游 Search API 的 per_page 保持一致
const PageSize = 30

// 错误提示文案：限流和普通失败要让用户看到不同的话
const (
	msgRateLimited = "GitHub API 触发限流，请稍后再试"
	msgFetchFailed = "加载失败，请检查网络后重试"
)

// Fetcher 信息流抓取器：驱动一个 (category, range) 会话的分页拉取
//
// 状态机: Idle -> Loading(page=1) -> Loaded | Error
// 换类别 / 换时间范围 / 手动刷新都会回到 Loading(page=1)
//
// 并发契约：每次发起新请求都会给会话代号 +1 并取消在途请求；
// 旧请求无论何时完成，对不上代号就整体丢弃，绝不触碰新会话的状态
type Fetcher struct {
	searcher  port.Searcher
	pageLimit int
	nowFunc   func() time.Time

	mu          sync.Mutex
	category    domain.Category
	timeRange   domain.TimeRange
	repos       []*domain.Repo
	seen        map[int64]struct{}
	page        int
	hasMore     bool
	initLoading bool
	loadingMore bool
	errMsg      string
	refreshedAt time.Time

	gen      uint64 // 会话代号，过期检查的依据
	cancel   context.CancelFunc
	inFlight bool

	onChange func() // 状态变化后的回调（用于触发重新渲染）
}

// NewFetcher 创建抓取器，初始状态为 Idle (trending / week)
func NewFetcher(searcher port.Searcher, pageLimit int) *Fetcher {
	if pageLimit <= 0 {
		pageLimit = 1
	}
	return &Fetcher{
		searcher:  searcher,
		pageLimit: pageLimit,
		nowFunc:   time.Now,
		category:  domain.CategoryTrending,
		timeRange: domain.RangeWeek,
		seen:      make(map[int64]struct{}),
	}
}

// SetOnChange 注册状态变化回调
func (f *Fetcher) SetOnChange(fn func()) {
	f.mu.Lock()
	f.onChange = fn
	f.mu.Unlock()
}

// SetSession 切换 (category, range) 会话
// 有变化时重置到第 1 页并立即开始抓取；没变化则是 no-op
// 返回是否真的发生了切换（调用方据此清掉 AI 筛选结果）
func (f *Fetcher) SetSession(category domain.Category, timeRange domain.TimeRange) bool {
	f.mu.Lock()
	if f.category == category && f.timeRange == timeRange {
		f.mu.Unlock()
		return false
	}
	f.category = category
	f.timeRange = timeRange
	f.resetLocked()
	f.startLocked(1)
	f.mu.Unlock()

	f.notifyChanged()
	return true
}

// Refresh 手动刷新：回到第 1 页，在途请求作废
func (f *Fetcher) Refresh() {
	f.mu.Lock()
	f.resetLocked()
	f.startLocked(1)
	f.mu.Unlock()

	f.notifyChanged()
}

// LoadMore 拉取下一页
// 仅在 Loaded 状态、还有更多、且没有在途请求时生效，否则是 no-op
func (f *Fetcher) LoadMore() {
	f.mu.Lock()
	if f.inFlight || f.initLoading || f.loadingMore || !f.hasMore || f.errMsg != "" || f.page == 0 {
		f.mu.Unlock()
		return
	}
	f.loadingMore = true
	f.startLocked(f.page + 1)
	f.mu.Unlock()

	f.notifyChanged()
}

// Close 组件卸载时取消在途请求
func (f *Fetcher) Close() {
	f.mu.Lock()
	f.gen++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.inFlight = false
	f.mu.Unlock()
}

// Snapshot 返回当前状态的一份拷贝（repos 切片是浅拷贝，元素不可变）
func (f *Fetcher) Snapshot() domain.FeedState {
	f.mu.Lock()
	defer f.mu.Unlock()

	repos := make([]*domain.Repo, len(f.repos))
	copy(repos, f.repos)

	return domain.FeedState{
		Category:       f.category,
		Range:          f.timeRange,
		Repos:          repos,
		Page:           f.page,
		HasMore:        f.hasMore,
		InitialLoading: f.initLoading,
		LoadingMore:    f.loadingMore,
		Error:          f.errMsg,
		RefreshedAt:    f.refreshedAt,
	}
}

// resetLocked 清空当前会话，在新的 page-1 结果落地前列表保持为空
// 调用方必须持有 f.mu
func (f *Fetcher) resetLocked() {
	f.repos = nil
	f.seen = make(map[int64]struct{})
	f.page = 0
	f.hasMore = false
	f.errMsg = ""
	f.initLoading = true
	f.loadingMore = false
}

// startLocked 发起一次抓取，作废所有在途请求
// 调用方必须持有 f.mu
func (f *Fetcher) startLocked(page int) {
	f.gen++
	if f.cancel != nil {
		f.cancel()
	}

	// 超出结果窗口上限的页直接视为没有更多，不发请求
	if page > f.pageLimit {
		f.hasMore = false
		f.initLoading = false
		f.loadingMore = false
		f.inFlight = false
		f.cancel = nil
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.inFlight = true

	gen := f.gen
	category, timeRange := f.category, f.timeRange

	go func() {
		repos, err := f.searcher.SearchPage(ctx, category, timeRange, page)
		cancel()
		f.apply(gen, page, repos, err)
	}()
}

// apply 把一次抓取的结果落到状态上；过期或已取消的结果整体丢弃
func (f *Fetcher) apply(gen uint64, page int, repos []*domain.Repo, err error) {
	f.mu.Lock()

	// 过期请求：会话已经被切换或刷新接管，不碰任何状态
	if gen != f.gen {
		f.mu.Unlock()
		return
	}

	f.inFlight = false
	f.cancel = nil
	f.initLoading = false
	f.loadingMore = false

	if err != nil {
		if errors.Is(err, context.Canceled) {
			// 被取消不算错误，也不更新状态
			f.mu.Unlock()
			return
		}
		f.hasMore = false
		if errors.Is(err, common.ErrRateLimited) {
			f.errMsg = msgRateLimited
		} else {
			f.errMsg = msgFetchFailed
		}
		f.mu.Unlock()

		f.notifyChanged()
		return
	}

	if page == 1 {
		// 第 1 页整体替换
		f.repos = nil
		f.seen = make(map[int64]struct{})
	}
	for _, repo := range repos {
		if _, dup := f.seen[repo.ID]; dup {
			continue // 跨页去重：上游偶尔会重复返回
		}
		f.seen[repo.ID] = struct{}{}
		f.repos = append(f.repos, repo)
	}

	f.page = page
	f.hasMore = len(repos) == PageSize && page < f.pageLimit
	f.errMsg = ""
	f.refreshedAt = f.nowFunc()
	f.mu.Unlock()

	f.notifyChanged()
}

func (f *Fetcher) notifyChanged() {
	f.mu.Lock()
	fn := f.onChange
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}
