package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github-repo-radar/internal/domain"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// maxInsightRunes 点评文案长度上限
const maxInsightRunes = 160

// Analyst 实现了 port.Insighter 和 port.Classifier 接口
type Analyst struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// candidate 发给 AI 做语义筛选的仓库摘要
type candidate struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Topics      []string `json:"topics"`
	Language    string   `json:"language"`
}

// NewAnalyst 初始化 Gemini 客户端
func NewAnalyst(ctx context.Context, apiKey string) (*Analyst, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel("gemini-2.5-flash-lite")
	// 强制要求返回 JSON，降低解析错误的概率
	model.ResponseMIMEType = "application/json"

	return &Analyst{
		client: client,
		model:  model,
	}, nil
}

// Insight 为单个仓库生成一句话技术点评
func (a *Analyst) Insight(ctx context.Context, repo *domain.Repo) (string, error) {
	prompt := fmt.Sprintf(`
你是一个资深的技术专家。请用一句简洁的中文技术点评介绍以下开源项目，
说清楚它解决什么问题、适合谁用。不超过 60 个字。

项目名称: %s
项目描述: %s

请严格按照 JSON 格式返回: {"insight": "你的点评"}
请直接返回 JSON，不要包含 Markdown 格式标记。
`, repo.FullName(), repo.Description)

	raw, err := a.generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	var res struct {
		Insight string `json:"insight"`
	}
	cleaned, err := extractJSON(raw, "{", "}")
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal([]byte(cleaned), &res); err != nil {
		return "", fmt.Errorf("JSON 解析失败: %s | 原文: %s", err, cleaned)
	}

	insight := strings.TrimSpace(res.Insight)
	if insight == "" {
		return "", fmt.Errorf("AI 返回的点评为空")
	}
	if runes := []rune(insight); len(runes) > maxInsightRunes {
		insight = string(runes[:maxInsightRunes])
	}
	return insight, nil
}

// Classify 在给定的仓库列表里做语义筛选，返回强匹配的 ID 子集
// 返回值一定是输入集合的子集：AI 幻觉出来的 ID 会被丢弃
func (a *Analyst) Classify(ctx context.Context, repos []*domain.Repo, intent string) ([]int64, error) {
	candidates := make([]candidate, 0, len(repos))
	known := make(map[int64]struct{}, len(repos))
	for _, repo := range repos {
		candidates = append(candidates, candidate{
			ID:          repo.ID,
			Name:        repo.FullName(),
			Description: repo.Description,
			Topics:      repo.Topics,
			Language:    repo.Language,
		})
		known[repo.ID] = struct{}{}
	}

	payload, err := json.Marshal(candidates)
	if err != nil {
		return nil, fmt.Errorf("序列化候选列表失败: %w", err)
	}

	prompt := fmt.Sprintf(`
你是一个精准的语义匹配引擎。下面是一批开源项目的 JSON 列表：

%s

用户的需求是: %s

请从列表中挑出与需求**强语义匹配**的项目，只返回它们的 id。
宁缺毋滥：没有匹配就返回空数组。

请严格按照 JSON 数组格式返回，例如 [101, 205]。
请直接返回 JSON，不要包含 Markdown 格式标记。
`, string(payload), intent)

	raw, err := a.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	ids, err := parseIDList(raw)
	if err != nil {
		return nil, err
	}

	// 防御性交集：只信任输入集合里确实存在的 ID
	matched := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; ok {
			matched = append(matched, id)
		}
	}
	return matched, nil
}

// generate 调用 AI 并取出首个文本片段
func (a *Analyst) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := a.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("AI 调用失败: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("AI 返回内容为空")
	}

	part := resp.Candidates[0].Content.Parts[0]
	text, ok := part.(genai.Text)
	if !ok {
		return "", fmt.Errorf("AI 返回格式错误")
	}
	return string(text), nil
}

// extractJSON 智能寻找 JSON 的起止位置
// 即使 AI 返回 "```json [ ... ] \n ```"，也能精准抠出中间的部分
func extractJSON(raw, open, close string) (string, error) {
	start := strings.Index(raw, open)
	end := strings.LastIndex(raw, close)
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("无法提取 JSON, AI 原文: %s", raw)
	}
	return raw[start : end+1], nil
}

// parseIDList 解析 AI 返回的 ID 数组
func parseIDList(raw string) ([]int64, error) {
	cleaned, err := extractJSON(raw, "[", "]")
	if err != nil {
		return nil, err
	}

	var ids []int64
	if err := json.Unmarshal([]byte(cleaned), &ids); err != nil {
		return nil, fmt.Errorf("JSON 解析失败: %s | 原文: %s", err, cleaned)
	}
	return ids, nil
}
