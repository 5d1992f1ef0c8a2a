package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/planly/internal/schema"
	"gorm.io/gorm"
)

// HabitRepository 习惯仓储
type HabitRepository struct {
	db *gorm.DB
}

// NewHabitRepository 创建习惯仓储
func NewHabitRepository(db *gorm.DB) *HabitRepository {
	return &HabitRepository{db: db}
}

// Create 创建习惯
func (r *HabitRepository) Create(ctx context.Context, habit *schema.Habit) error {
	if habit == nil {
		return fmt.Errorf("habit 不能为空")
	}
	if err := r.db.WithContext(ctx).Create(habit).Error; err != nil {
		return fmt.Errorf("创建习惯失败: %w", err)
	}
	return nil
}

// Update 整行更新习惯
func (r *HabitRepository) Update(ctx context.Context, habit *schema.Habit) error {
	if habit == nil || habit.ID == "" {
		return fmt.Errorf("habit 不能为空")
	}
	if err := r.db.WithContext(ctx).Save(habit).Error; err != nil {
		return fmt.Errorf("更新习惯失败: %w", err)
	}
	return nil
}

// Delete 删除习惯
func (r *HabitRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&schema.Habit{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("删除习惯失败: %w", err)
	}
	return nil
}

// GetByID 按 ID 查询习惯，未找到返回 (nil, nil)
func (r *HabitRepository) GetByID(ctx context.Context, id string) (*schema.Habit, error) {
	var habit schema.Habit
	err := r.db.WithContext(ctx).First(&habit, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询习惯失败: %w", err)
	}
	return &habit, nil
}

// ListByUser 列出用户全部习惯
func (r *HabitRepository) ListByUser(ctx context.Context, userID string) ([]schema.Habit, error) {
	var habits []schema.Habit
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("查询习惯列表失败: %w", err)
	}
	return habits, nil
}

// ListByUserAndDate 列出 start_date <= date 的用户习惯（是否当天到期由 service 层判定）
func (r *HabitRepository) ListByUserAndDate(ctx context.Context, userID, date string) ([]schema.Habit, error) {
	var habits []schema.Habit
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND start_date <= ?", userID, date).
		Order("created_at ASC").
		Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("按日期查询习惯失败: %w", err)
	}
	return habits, nil
}
