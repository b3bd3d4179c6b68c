package saved

import (
	"sync"
	"time"

	"github-repo-radar/internal/domain"
	"github-repo-radar/internal/port"
)

// List 用户的收藏列表
//
// 内存中的集合是本会话唯一的真相：先改内存，再异步整体覆写持久层；
// 持久化失败不影响当前会话的任何查询（IsSaved 永远看内存）
// 连续变更会被合并，只把最新快照写下去，避免无谓的重复写
type List struct {
	mu      sync.Mutex
	store   port.SaveStore
	items   []*domain.SavedRepo // 最近收藏的在最前
	nowFunc func() time.Time

	pending []*domain.SavedRepo // 待写入的最新快照
	writing bool
}

// NewList 创建收藏列表，启动时从持久层读一次
func NewList(store port.SaveStore) *List {
	l := &List{
		store:   store,
		nowFunc: time.Now,
	}
	if store != nil {
		l.items = store.Load()
	}
	return l
}

// Toggle 切换收藏状态，返回操作后是否处于已收藏
// 重新收藏是一次全新的收藏：savedAt 取当前时间，不恢复旧时间戳
func (l *List) Toggle(repo *domain.Repo) bool {
	l.mu.Lock()

	idx := -1
	for i, item := range l.items {
		if item.ID == repo.ID {
			idx = i
			break
		}
	}

	var nowSaved bool
	if idx >= 0 {
		l.items = append(l.items[:idx], l.items[idx+1:]...)
		nowSaved = false
	} else {
		entry := &domain.SavedRepo{
			Repo:    *repo,
			SavedAt: l.nowFunc().UnixMilli(),
		}
		l.items = append([]*domain.SavedRepo{entry}, l.items...)
		nowSaved = true
	}

	l.schedulePersistLocked()
	l.mu.Unlock()
	return nowSaved
}

// IsSaved 查询某仓库是否已收藏（只看内存，不碰持久层）
func (l *List) IsSaved(repoID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, item := range l.items {
		if item.ID == repoID {
			return true
		}
	}
	return false
}

// All 返回收藏集合的拷贝，最近收藏的在最前
func (l *List) All() []*domain.SavedRepo {
	l.mu.Lock()
	defer l.mu.Unlock()
	all := make([]*domain.SavedRepo, len(l.items))
	copy(all, l.items)
	return all
}

// Len 收藏数量
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// schedulePersistLocked 记下最新快照并确保有一个写协程在跑
// 调用方必须持有 l.mu
func (l *List) schedulePersistLocked() {
	if l.store == nil {
		return
	}
	snapshot := make([]*domain.SavedRepo, len(l.items))
	copy(snapshot, l.items)
	l.pending = snapshot

	if !l.writing {
		l.writing = true
		go l.flush()
	}
}

// flush 循环写出最新快照，中途产生的新快照会覆盖旧的（last-writer-wins）
func (l *List) flush() {
	for {
		l.mu.Lock()
		snapshot := l.pending
		l.pending = nil
		if snapshot == nil {
			l.writing = false
			l.mu.Unlock()
			return
		}
		l.mu.Unlock()

		l.store.Replace(snapshot)
	}
}
