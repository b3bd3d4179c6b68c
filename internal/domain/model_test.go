package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepo_FullName(t *testing.T) {
	repo := &Repo{Name: "hugo", Owner: Owner{Login: "gohugoio"}}
	assert.Equal(t, "gohugoio/hugo", repo.FullName())

	// 作者缺失时退化为裸名称
	assert.Equal(t, "hugo", (&Repo{Name: "hugo"}).FullName())
}

func TestRepo_Matches(t *testing.T) {
	repo := &Repo{
		Name:        "Awesome-Tool",
		Owner:       Owner{Login: "octocat"},
		Description: "A CLI for Kubernetes operators",
		Language:    "Go",
		Topics:      []string{"kubernetes", "devops"},
	}

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"空关键词命中一切", "", true},
		{"名称不区分大小写", "awesome", true},
		{"作者", "octo", true},
		{"描述", "kubernetes", true},
		{"语言", "go", true},
		{"topic", "devops", true},
		{"不命中", "rust", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repo.Matches(tt.query))
		})
	}
}

func TestFilterResult_NilVsEmpty(t *testing.T) {
	// nil 指针 = 筛选未激活；空集 = 筛选过但一条没中，两者语义不同
	var inactive *FilterResult
	assert.Nil(t, inactive)

	empty := NewFilterResult(nil)
	require.NotNil(t, empty)
	assert.Equal(t, 0, empty.Len())
	assert.False(t, empty.Contains(1))

	some := NewFilterResult([]int64{101, 205})
	assert.Equal(t, 2, some.Len())
	assert.True(t, some.Contains(101))
	assert.True(t, some.Contains(205))
	assert.False(t, some.Contains(150))
}

func TestTopLanguages(t *testing.T) {
	breakdown := map[string]int{
		"Go":         7000,
		"TypeScript": 2000,
		"Shell":      1000,
		"Makefile":   0, // 0 字节的条目不参与统计
	}

	shares := TopLanguages(breakdown, 2)
	require.Equal(t, 2, len(shares))
	assert.Equal(t, "Go", shares[0].Name)
	assert.InDelta(t, 70.0, shares[0].Percent, 0.001)
	assert.Equal(t, "TypeScript", shares[1].Name)
	assert.InDelta(t, 20.0, shares[1].Percent, 0.001)

	assert.Nil(t, TopLanguages(nil, 5))
	assert.Nil(t, TopLanguages(map[string]int{"Go": 0}, 5))
}

func TestTopLanguages_StableOrderOnTies(t *testing.T) {
	shares := TopLanguages(map[string]int{"B": 100, "A": 100, "C": 100}, 3)
	require.Equal(t, 3, len(shares))
	assert.Equal(t, "A", shares[0].Name)
	assert.Equal(t, "B", shares[1].Name)
	assert.Equal(t, "C", shares[2].Name)
}
