package cache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Enrichment 进程级的补充数据缓存，生命周期 = 应用运行期
// 两张独立的表：仓库 ID -> AI 点评文案，"owner/name" -> 语言字节分布
// 每个 key 本会话只写一次，没有过期；组件重挂载后直接复用
//
// 并发契约 (single-flight)：同一个 key 的并发请求合并为一次网络调用，
// 失败不做负缓存，下次挂载还能重试
type Enrichment struct {
	mu        sync.RWMutex
	insights  map[int64]string
	languages map[string]map[string]int
	group     singleflight.Group
}

// NewEnrichment 创建空缓存
func NewEnrichment() *Enrichment {
	return &Enrichment{
		insights:  make(map[int64]string),
		languages: make(map[string]map[string]int),
	}
}

// Insight 取出或抓取某仓库的 AI 点评
func (c *Enrichment) Insight(ctx context.Context, repoID int64, fetch func(context.Context) (string, error)) (string, error) {
	c.mu.RLock()
	if cached, ok := c.insights[repoID]; ok {
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	key := fmt.Sprintf("insight:%d", repoID)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// 进入 single-flight 后再查一次，避免和刚完成的请求重复抓取
		c.mu.RLock()
		if cached, ok := c.insights[repoID]; ok {
			c.mu.RUnlock()
			return cached, nil
		}
		c.mu.RUnlock()

		text, err := fetch(ctx)
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		c.insights[repoID] = text
		c.mu.Unlock()
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Languages 取出或抓取某仓库的语言字节分布
func (c *Enrichment) Languages(ctx context.Context, owner, name string, fetch func(context.Context) (map[string]int, error)) (map[string]int, error) {
	key := owner + "/" + name

	c.mu.RLock()
	if cached, ok := c.languages[key]; ok {
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("langs:"+key, func() (interface{}, error) {
		c.mu.RLock()
		if cached, ok := c.languages[key]; ok {
			c.mu.RUnlock()
			return cached, nil
		}
		c.mu.RUnlock()

		langs, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.languages[key] = langs
		c.mu.Unlock()
		return langs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]int), nil
}
