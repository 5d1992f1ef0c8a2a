package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/planly/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository 用户仓储
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert 写入用户（幂等：同 ID 覆盖资料字段）
func (r *UserRepository) Upsert(ctx context.Context, user *schema.User) error {
	if user == nil {
		return fmt.Errorf("user 不能为空")
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return fmt.Errorf("写入用户失败: %w", err)
	}
	return nil
}

// ListIDs 列出全部用户 ID（凌晨补算任务遍历用）
func (r *UserRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&schema.User{}).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("查询用户列表失败: %w", err)
	}
	return ids, nil
}
