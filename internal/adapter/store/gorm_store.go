package store

import (
	"fmt"
	"log"

	"github-repo-radar/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// GormStore 实现了 port.SaveStore 接口
// 收藏集合整体是持久化的最小单位：Load 全量读，Replace 全量覆写
// 读写失败都只记日志（fail-soft），内存中的集合才是本会话的真相
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 初始化数据库连接并自动迁移表结构
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 自动迁移 (Auto Migrate)：自动创建 saved_repos 表，字段变了也会自动更新
	if err := db.AutoMigrate(&domain.SavedRepo{}); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return &GormStore{db: db}, nil
}

// Load 启动时读取整个收藏集合，最近收藏的排在最前
// 任何读取失败都返回空集合，绝不向调用方抛错
func (s *GormStore) Load() []*domain.SavedRepo {
	var all []*domain.SavedRepo
	err := s.db.Order("saved_at DESC").Find(&all).Error
	if err != nil {
		log.Printf("⚠️ [Store] 读取收藏集合失败，以空集合启动: %v", err)
		return []*domain.SavedRepo{}
	}
	return all
}

// Replace 全量覆写收藏集合（先清空再插入，同一个事务）
// 写失败只记日志，不打断用户当前会话
func (s *GormStore) Replace(all []*domain.SavedRepo) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.SavedRepo{}).Error; err != nil {
			return err
		}
		if len(all) == 0 {
			return nil
		}
		return tx.Create(all).Error
	})
	if err != nil {
		log.Printf("⚠️ [Store] 持久化收藏集合失败 (共 %d 条): %v", len(all), err)
	}
}
