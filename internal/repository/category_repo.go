package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/planly/internal/schema"
	"gorm.io/gorm"
)

// CategoryRepository 分类仓储
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create 创建分类
func (r *CategoryRepository) Create(ctx context.Context, category *schema.Category) error {
	if category == nil {
		return fmt.Errorf("category 不能为空")
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("创建分类失败: %w", err)
	}
	return nil
}

// GetByID 按 ID 查询分类，未找到返回 (nil, nil)
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*schema.Category, error) {
	var category schema.Category
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询分类失败: %w", err)
	}
	return &category, nil
}

// ListByUser 列出用户全部分类
func (r *CategoryRepository) ListByUser(ctx context.Context, userID string) ([]schema.Category, error) {
	var categories []schema.Category
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("查询分类列表失败: %w", err)
	}
	return categories, nil
}
