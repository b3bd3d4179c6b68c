package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github-repo-radar/internal/common"
	"github-repo-radar/internal/domain"

	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
)

// PageSize Search API 每页固定条数
const PageSize = 30

// Searcher 实现了 port.Searcher 和 port.LanguageLister 接口
type Searcher struct {
	client  *github.Client
	nowFunc func() time.Time
}

// NewSearcher 初始化 GitHub 客户端
// token: GitHub Personal Access Token (如果是空字符串，就是匿名访问，限制 60次/小时)
func NewSearcher(token string) *Searcher {
	var client *github.Client

	if token == "" {
		client = github.NewClient(nil)
	} else {
		ctx := context.Background()
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc := oauth2.NewClient(ctx, ts)
		client = github.NewClient(tc)
	}

	return &Searcher{
		client:  client,
		nowFunc: time.Now, // 便于测试注入当前时间
	}
}

// sinceDate 把时间范围翻译成日期下界
func (s *Searcher) sinceDate(timeRange domain.TimeRange) string {
	now := time.Now()
	if s != nil && s.nowFunc != nil {
		now = s.nowFunc()
	}

	switch timeRange {
	case domain.RangeToday:
		return now.AddDate(0, 0, -1).Format("2006-01-02")
	case domain.RangeMonth:
		return now.AddDate(0, -1, 0).Format("2006-01-02")
	default: // 默认一周
		return now.AddDate(0, 0, -7).Format("2006-01-02")
	}
}

// SearchPage 拉取一页搜索结果
// trending: 按创建日期过滤 + Star 降序；latest: 按推送日期过滤 + 更新时间降序
func (s *Searcher) SearchPage(ctx context.Context, category domain.Category, timeRange domain.TimeRange, page int) ([]*domain.Repo, error) {
	var query, sortField string
	switch category {
	case domain.CategoryLatest:
		query = fmt.Sprintf("pushed:>%s stars:>0", s.sinceDate(timeRange))
		sortField = "updated"
	default:
		query = fmt.Sprintf("created:>%s stars:>0", s.sinceDate(timeRange))
		sortField = "stars"
	}

	opts := &github.SearchOptions{
		Sort:  sortField,
		Order: "desc",
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: PageSize,
		},
	}

	var result *github.RepositoriesSearchResult
	err := common.Do(ctx, func() error {
		var apiErr error
		result, _, apiErr = s.client.Search.Repositories(ctx, query, opts)
		return classify(apiErr)
	},
		common.WithMaxRetries(2),
		common.WithInitialDelay(time.Second),
	)
	if err != nil {
		if errors.Is(err, common.ErrRateLimited) {
			return nil, common.WrapError(common.ErrCodeRateLimited, "GitHub API 触发限流", err)
		}
		return nil, common.WrapError(common.ErrCodeGitHubAPI, "GitHub API 调用失败", err)
	}

	var repos []*domain.Repo
	for _, item := range result.Repositories {
		repos = append(repos, convert(item))
	}
	return repos, nil
}

// ListLanguages 查询单个仓库的语言字节分布
func (s *Searcher) ListLanguages(ctx context.Context, owner, name string) (map[string]int, error) {
	var langs map[string]int
	err := common.Do(ctx, func() error {
		var apiErr error
		langs, _, apiErr = s.client.Repositories.ListLanguages(ctx, owner, name)
		return classify(apiErr)
	},
		common.WithMaxRetries(2),
		common.WithInitialDelay(500*time.Millisecond),
	)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeGitHubAPI, fmt.Sprintf("获取 %s/%s 语言分布失败", owner, name), err)
	}
	return langs, nil
}

// classify 把 403 识别为限流，其余错误原样返回
func classify(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return fmt.Errorf("%w: %v", common.ErrRateLimited, err)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %v", common.ErrRateLimited, err)
	}

	return err
}

// convert 将 GitHub 的数据结构转换为我们的 Domain 实体 (DTO 转换)
func convert(item *github.Repository) *domain.Repo {
	return &domain.Repo{
		ID:   item.GetID(),
		Name: item.GetName(),
		Owner: domain.Owner{
			Login:     item.GetOwner().GetLogin(),
			AvatarURL: item.GetOwner().GetAvatarURL(),
		},
		Description: item.GetDescription(),
		URL:         item.GetHTMLURL(),
		Stars:       item.GetStargazersCount(),
		Forks:       item.GetForksCount(),
		Watchers:    item.GetWatchersCount(),
		OpenIssues:  item.GetOpenIssuesCount(),
		Language:    item.GetLanguage(),
		Topics:      item.Topics,
		CreatedAt:   item.GetCreatedAt().Time,
		UpdatedAt:   item.GetUpdatedAt().Time,
	}
}
