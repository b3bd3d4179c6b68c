package store

import (
	"regexp"
	"testing"
	"time"

	"github-repo-radar/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupMockDB 创建一个模拟的数据库连接
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open gorm db: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return gormDB, mock, cleanup
}

func TestGormStore_Load(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(sqlmock.Sqlmock)
		expectCount int
	}{
		{
			name: "成功读取收藏集合",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "name", "owner_login", "stars", "saved_at"}).
					AddRow(2, "gin", "gin-gonic", 70000, time.Now().UnixMilli()).
					AddRow(1, "hugo", "gohugoio", 60000, time.Now().Add(-time.Hour).UnixMilli())
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "saved_repos" ORDER BY saved_at DESC`)).
					WillReturnRows(rows)
			},
			expectCount: 2,
		},
		{
			name: "空记录返回空集合",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "name", "owner_login", "stars", "saved_at"})
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "saved_repos" ORDER BY saved_at DESC`)).
					WillReturnRows(rows)
			},
			expectCount: 0,
		},
		{
			name: "读取失败降级为空集合而不是报错",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "saved_repos"`)).
					WillReturnError(gorm.ErrInvalidDB)
			},
			expectCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gormDB, mock, cleanup := setupMockDB(t)
			defer cleanup()

			tt.setupMock(mock)

			s := &GormStore{db: gormDB}
			all := s.Load()

			assert.NotNil(t, all)
			assert.Equal(t, tt.expectCount, len(all))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_Replace(t *testing.T) {
	now := time.Now()
	saved := []*domain.SavedRepo{
		{
			Repo: domain.Repo{
				ID:          42,
				Name:        "gin",
				Owner:       domain.Owner{Login: "gin-gonic"},
				Description: "HTTP web framework",
				URL:         "https://github.com/gin-gonic/gin",
				Stars:       70000,
				Language:    "Go",
				CreatedAt:   now.AddDate(-5, 0, 0),
				UpdatedAt:   now,
			},
			SavedAt: now.UnixMilli(),
		},
	}

	tests := []struct {
		name      string
		all       []*domain.SavedRepo
		setupMock func(sqlmock.Sqlmock)
	}{
		{
			name: "成功覆写集合",
			all:  saved,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "saved_repos"`)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				// GORM 的 postgres Create 带 RETURNING 子句，走 Query 路径
				mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "saved_repos"`)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
				mock.ExpectCommit()
			},
		},
		{
			name: "清空集合只执行删除",
			all:  []*domain.SavedRepo{},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "saved_repos"`)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "写失败只记日志不向上抛",
			all:  saved,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "saved_repos"`)).
					WillReturnError(gorm.ErrInvalidDB)
				mock.ExpectRollback()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gormDB, mock, cleanup := setupMockDB(t)
			defer cleanup()

			tt.setupMock(mock)

			s := &GormStore{db: gormDB}
			// 任何失败都不应该 panic 或返回错误
			assert.NotPanics(t, func() { s.Replace(tt.all) })

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
