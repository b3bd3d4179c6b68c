package smartfilter

import (
	"context"
	"strings"
	"sync"

	"github-repo-radar/internal/common"
	"github-repo-radar/internal/domain"
	"github-repo-radar/internal/port"
)

// MinQueryRunes 智能筛选的最短输入
const MinQueryRunes = 3

// 前置条件不满足时的用户提示
var (
	ErrQueryTooShort = common.NewError(common.ErrCodeInvalidInput, "再多打几个字，至少 3 个字符")
	ErrAIDisabled    = common.NewError(common.ErrCodeInvalidInput, "未配置 AI 凭证，智能筛选不可用")
)

// Engine AI 智能筛选引擎
//
// 对“当前已加载的信息流”做一次语义分类，把工作集收窄到返回的 ID 集合
// 同一时刻最多一个请求在途；新调用会接管（last-writer-wins）：
// 旧请求晚到的结果对不上调用序号就丢弃，绝不覆盖新状态
// 调用失败时既有的筛选结果保持原样
type Engine struct {
	classifier port.Classifier
	aiEnabled  bool

	mu      sync.Mutex
	seq     uint64
	running bool
	result  *domain.FilterResult // nil = 筛选未激活

	onChange func()      // 结果变化回调
	onError  func(error) // 失败回调（用于弹提示）
}

// NewEngine 创建引擎；aiEnabled 为 false 时所有调用都会被前置拒绝
func NewEngine(classifier port.Classifier, aiEnabled bool) *Engine {
	return &Engine{
		classifier: classifier,
		aiEnabled:  aiEnabled,
	}
}

// SetCallbacks 注册结果变化和失败的回调
func (e *Engine) SetCallbacks(onChange func(), onError func(error)) {
	e.mu.Lock()
	e.onChange = onChange
	e.onError = onError
	e.mu.Unlock()
}

// Run 发起一次智能筛选
// 前置条件不满足时同步返回错误，不发任何网络请求
func (e *Engine) Run(intent string, feed []*domain.Repo) error {
	if !e.aiEnabled {
		return ErrAIDisabled
	}
	if len([]rune(strings.TrimSpace(intent))) < MinQueryRunes {
		return ErrQueryTooShort
	}

	// 快照当前信息流，后续的追加/刷新不影响本次请求
	repos := make([]*domain.Repo, len(feed))
	copy(repos, feed)

	e.mu.Lock()
	e.seq++
	seq := e.seq
	e.running = true
	e.mu.Unlock()
	e.notifyChanged()

	go func() {
		ids, err := e.classifier.Classify(context.Background(), repos, strings.TrimSpace(intent))

		e.mu.Lock()
		if seq != e.seq {
			// 已经有更新的调用接管，本次结果作废
			e.mu.Unlock()
			return
		}
		e.running = false

		if err != nil {
			// 失败不清掉已有结果
			onError := e.onError
			e.mu.Unlock()

			if onError != nil {
				onError(common.WrapError(common.ErrCodeAIProcessing, "AI 筛选失败", err))
			}
			e.notifyChanged()
			return
		}

		e.result = domain.NewFilterResult(ids)
		e.mu.Unlock()

		e.notifyChanged()
	}()

	return nil
}

// Clear 关闭筛选：结果回到“未激活”，在途请求的结果作废
func (e *Engine) Clear() {
	e.mu.Lock()
	e.seq++
	e.running = false
	e.result = nil
	e.mu.Unlock()

	e.notifyChanged()
}

// Result 当前筛选结果；nil 表示未激活
func (e *Engine) Result() *domain.FilterResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

// Running 是否有请求在途
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) notifyChanged() {
	e.mu.Lock()
	fn := e.onChange
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
}
