package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnrichment_Insight_WriteOnce(t *testing.T) {
	c := NewEnrichment()
	calls := 0

	fetch := func(ctx context.Context) (string, error) {
		calls++
		return "一个高性能的 Web 框架", nil
	}

	first, err := c.Insight(context.Background(), 42, fetch)
	assert.NoError(t, err)
	assert.Equal(t, "一个高性能的 Web 框架", first)

	// 第二次直接命中缓存，不再发起调用
	second, err := c.Insight(context.Background(), 42, fetch)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestEnrichment_Insight_SingleFlight(t *testing.T) {
	// 两张卡片同时渲染同一个仓库，只允许发出一次网络调用
	c := NewEnrichment()
	var calls int32

	fetch := func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(50 * time.Millisecond) // 模拟网络延迟，制造并发窗口
		return "insight", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text, err := c.Insight(context.Background(), 7, fetch)
			assert.NoError(t, err)
			results[i] = text
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, "insight", r)
	}
}

func TestEnrichment_Insight_NoNegativeCaching(t *testing.T) {
	c := NewEnrichment()
	calls := 0

	failing := func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("AI 调用失败")
	}

	_, err := c.Insight(context.Background(), 1, failing)
	assert.Error(t, err)

	// 失败不落缓存，之后重试还能成功
	text, err := c.Insight(context.Background(), 1, func(ctx context.Context) (string, error) {
		return "重试成功", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "重试成功", text)
	assert.Equal(t, 1, calls)
}

func TestEnrichment_Languages(t *testing.T) {
	c := NewEnrichment()
	calls := 0

	fetch := func(ctx context.Context) (map[string]int, error) {
		calls++
		return map[string]int{"Go": 9000, "HTML": 500}, nil
	}

	langs, err := c.Languages(context.Background(), "gohugoio", "hugo", fetch)
	assert.NoError(t, err)
	assert.Equal(t, 9000, langs["Go"])

	// 同一个 owner/name 命中缓存
	_, err = c.Languages(context.Background(), "gohugoio", "hugo", fetch)
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)

	// 不同仓库互相独立
	_, err = c.Languages(context.Background(), "gin-gonic", "gin", fetch)
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}
