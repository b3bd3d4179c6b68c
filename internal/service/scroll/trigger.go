package scroll

import (
	"sync"

	"github-repo-radar/internal/domain"
)

// Guards 触发前要检查的状态，由宿主（Dashboard）提供
type Guards struct {
	HasMore     bool
	Loading     bool // 首屏加载中
	LoadingMore bool // 追加加载中
	ActiveTab   domain.Tab
}

// Trigger 无限滚动触发器
//
// 观察列表末尾哨兵元素的可见性：哨兵进入视口且守卫条件全部满足时，
// 向信息流请求下一页。守卫条件本身就防住了同一次触发的重复请求，
// 不需要额外的防抖计时器
//
// 哨兵卸载（或切到收藏页，根本不渲染哨兵）时必须 Teardown
type Trigger struct {
	mu       sync.Mutex
	attached bool
	guards   func() Guards
	loadMore func()
}

// New 创建触发器并立即挂载
func New(guards func() Guards, loadMore func()) *Trigger {
	return &Trigger{
		attached: true,
		guards:   guards,
		loadMore: loadMore,
	}
}

// OnVisible 哨兵进入视口时由宿主调用
func (t *Trigger) OnVisible() {
	t.mu.Lock()
	if !t.attached {
		t.mu.Unlock()
		return
	}
	guards := t.guards
	loadMore := t.loadMore
	t.mu.Unlock()

	g := guards()
	if g.ActiveTab == domain.TabSaved {
		return // 收藏页没有分页
	}
	if !g.HasMore || g.Loading || g.LoadingMore {
		return
	}
	loadMore()
}

// Teardown 解除观察；之后的可见性事件全部忽略
func (t *Trigger) Teardown() {
	t.mu.Lock()
	t.attached = false
	t.mu.Unlock()
}
