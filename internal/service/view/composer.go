package view

import (
	"strings"

	"github-repo-radar/internal/domain"
)

// Input 合成一次可见列表所需的全部输入
type Input struct {
	ActiveTab   domain.Tab
	Feed        []*domain.Repo       // 信息流当前已加载的序列
	Saved       []*domain.SavedRepo  // 收藏集合，最近收藏在前
	Filter      *domain.FilterResult // nil = AI 筛选未激活
	Query       string               // 搜索框里的原始文本
	SmartMode   bool                 // 智能筛选开关
	AIFiltering bool                 // AI 筛选请求是否在途
}

// Compose 把信息流、收藏集合、AI 筛选结果和关键词合成最终要渲染的列表
//
// 纯函数：不修改任何输入，输出顺序与来源序列一致
// 算法（顺序固定）:
//  1. 选来源：saved 标签页用收藏集合，其余用信息流
//  2. AI 筛选结果非 nil 时，只保留命中的 ID
//  3. 智能模式下（结果已出 / 请求在途）跳过关键词过滤，
//     防止过期的关键词和 AI 筛选互相打架
//  4. 关键词模式：名称 / 作者 / 描述 / 语言 / topic 子串匹配（不区分大小写）
func Compose(in Input) ([]*domain.Repo, domain.EmptyReason) {
	var source []*domain.Repo
	if in.ActiveTab == domain.TabSaved {
		source = make([]*domain.Repo, 0, len(in.Saved))
		for _, item := range in.Saved {
			repo := item.Repo
			source = append(source, &repo)
		}
	} else {
		source = in.Feed
	}

	result := source
	if in.Filter != nil {
		filtered := make([]*domain.Repo, 0, len(result))
		for _, repo := range result {
			if in.Filter.Contains(repo.ID) {
				filtered = append(filtered, repo)
			}
		}
		result = filtered
	}

	query := strings.TrimSpace(in.Query)
	skipKeyword := query == "" ||
		(in.SmartMode && in.Filter != nil) ||
		(in.SmartMode && in.Filter == nil && in.AIFiltering)

	if !skipKeyword {
		filtered := make([]*domain.Repo, 0, len(result))
		for _, repo := range result {
			if repo.Matches(query) {
				filtered = append(filtered, repo)
			}
		}
		result = filtered
	}

	return result, emptyReason(in, result)
}

// emptyReason 列表为空时给用户看的原因；AI 筛选空集要和普通无结果区分开
func emptyReason(in Input, result []*domain.Repo) domain.EmptyReason {
	if len(result) > 0 {
		return domain.EmptyNone
	}
	if in.Filter != nil {
		return domain.EmptyAINoMatch
	}
	if in.ActiveTab == domain.TabSaved && len(in.Saved) == 0 {
		return domain.EmptyNoSaved
	}
	return domain.EmptyNoResults
}
