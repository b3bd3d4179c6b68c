package saved

import (
	"sync"
	"testing"
	"time"

	"github-repo-radar/internal/domain"

	"github.com/stretchr/testify/assert"
)

// fakeStore 记录每次 Replace 的快照
type fakeStore struct {
	mu       sync.Mutex
	initial  []*domain.SavedRepo
	replaced [][]*domain.SavedRepo
}

func (s *fakeStore) Load() []*domain.SavedRepo {
	return s.initial
}

func (s *fakeStore) Replace(all []*domain.SavedRepo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaced = append(s.replaced, all)
}

func (s *fakeStore) lastReplaced() []*domain.SavedRepo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.replaced) == 0 {
		return nil
	}
	return s.replaced[len(s.replaced)-1]
}

func repo(id int64, name string) *domain.Repo {
	return &domain.Repo{ID: id, Name: name, Owner: domain.Owner{Login: "octo"}}
}

func TestList_LoadAtStartup(t *testing.T) {
	store := &fakeStore{initial: []*domain.SavedRepo{
		{Repo: *repo(1, "hugo"), SavedAt: 1000},
	}}

	l := NewList(store)

	assert.Equal(t, 1, l.Len())
	assert.True(t, l.IsSaved(1))
	assert.False(t, l.IsSaved(2))
}

func TestList_ToggleSaveAndUnsave(t *testing.T) {
	store := &fakeStore{}
	l := NewList(store)

	assert.True(t, l.Toggle(repo(1, "hugo")))
	assert.True(t, l.IsSaved(1))

	// 再点一次 = 取消收藏，集合回到原状
	assert.False(t, l.Toggle(repo(1, "hugo")))
	assert.False(t, l.IsSaved(1))
	assert.Equal(t, 0, l.Len())

	// 最终持久化的是空集合
	assert.Eventually(t, func() bool {
		last := l.store.(*fakeStore).lastReplaced()
		return last != nil && len(last) == 0
	}, time.Second, 2*time.Millisecond)
}

func TestList_MostRecentFirst(t *testing.T) {
	l := NewList(&fakeStore{})
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	step := 0
	l.nowFunc = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}

	l.Toggle(repo(1, "hugo"))
	l.Toggle(repo(2, "gin"))
	l.Toggle(repo(3, "cobra"))

	all := l.All()
	assert.Equal(t, []int64{3, 2, 1}, []int64{all[0].ID, all[1].ID, all[2].ID})
}

func TestList_ReAddIsFreshSave(t *testing.T) {
	l := NewList(&fakeStore{})
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	step := 0
	l.nowFunc = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Hour)
	}

	l.Toggle(repo(1, "hugo"))
	first := l.All()[0].SavedAt

	l.Toggle(repo(1, "hugo")) // 取消
	l.Toggle(repo(1, "hugo")) // 重新收藏

	again := l.All()[0].SavedAt
	// 重新收藏拿到新的时间戳，不是恢复旧的
	assert.Greater(t, again, first)
}

func TestList_PersistSnapshotMatchesMemory(t *testing.T) {
	store := &fakeStore{}
	l := NewList(store)

	l.Toggle(repo(1, "hugo"))
	l.Toggle(repo(2, "gin"))

	assert.Eventually(t, func() bool {
		last := store.lastReplaced()
		return len(last) == 2 && last[0].ID == 2 && last[1].ID == 1
	}, time.Second, 2*time.Millisecond)
}

func TestList_MemoryAuthoritativeWithoutStore(t *testing.T) {
	// 没有持久层（或持久层坏了）也不影响本会话
	l := NewList(nil)

	assert.True(t, l.Toggle(repo(1, "hugo")))
	assert.True(t, l.IsSaved(1))
}
