package notify

import (
	"sync"
	"time"
)

// Level 提示的级别
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// DefaultTTL 提示默认展示时长
const DefaultTTL = 4 * time.Second

// Toast 一条短暂的用户提示
type Toast struct {
	ID        int64     `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Queue 自动过期的提示队列，和数据状态完全解耦
type Queue struct {
	mu       sync.Mutex
	nextID   int64
	toasts   []Toast
	ttl      time.Duration
	onChange func()
}

// NewQueue 创建队列；ttl <= 0 时取默认值
func NewQueue(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{ttl: ttl}
}

// SetOnChange 注册变化回调
func (q *Queue) SetOnChange(fn func()) {
	q.mu.Lock()
	q.onChange = fn
	q.mu.Unlock()
}

// Push 追加一条提示，到期后自动消失
func (q *Queue) Push(level Level, message string) int64 {
	q.mu.Lock()
	q.nextID++
	id := q.nextID
	q.toasts = append(q.toasts, Toast{
		ID:        id,
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	})
	q.mu.Unlock()

	time.AfterFunc(q.ttl, func() { q.Dismiss(id) })

	q.notifyChanged()
	return id
}

// Dismiss 手动关闭一条提示；重复关闭是 no-op
func (q *Queue) Dismiss(id int64) {
	q.mu.Lock()
	removed := false
	for i, toast := range q.toasts {
		if toast.ID == id {
			q.toasts = append(q.toasts[:i], q.toasts[i+1:]...)
			removed = true
			break
		}
	}
	q.mu.Unlock()

	if removed {
		q.notifyChanged()
	}
}

// List 当前还在展示的提示（拷贝）
func (q *Queue) List() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Toast, len(q.toasts))
	copy(out, q.toasts)
	return out
}

func (q *Queue) notifyChanged() {
	q.mu.Lock()
	fn := q.onChange
	q.mu.Unlock()
	if fn != nil {
		fn()
	}
}
