package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yuqie6/planly/internal/schema"
)

// CategoryService 分类管理服务
type CategoryService struct {
	categories CategoryRepository
}

// NewCategoryService 创建分类管理服务
func NewCategoryService(categories CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// Create 创建分类
func (s *CategoryService) Create(ctx context.Context, category *schema.Category) (*schema.Category, error) {
	if category.Name == "" {
		return nil, fmt.Errorf("分类名称不能为空")
	}
	category.ID = uuid.NewString()
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("创建分类失败: %w", err)
	}
	return category, nil
}

// Get 按 ID 取分类，越权访问按不存在处理。
func (s *CategoryService) Get(ctx context.Context, userID, categoryID string) (*schema.Category, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil || category.UserID != userID {
		return nil, fmt.Errorf("分类不存在 category=%s: %w", categoryID, ErrNotFound)
	}
	return category, nil
}

// List 列出用户全部分类
func (s *CategoryService) List(ctx context.Context, userID string) ([]schema.Category, error) {
	return s.categories.ListByUser(ctx, userID)
}
