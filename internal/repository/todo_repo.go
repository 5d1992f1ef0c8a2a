package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/planly/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TodoRepository 打卡记录仓储
type TodoRepository struct {
	db *gorm.DB
}

// NewTodoRepository 创建打卡记录仓储
func NewTodoRepository(db *gorm.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// Get 按 (user, date, habit) 查询记录，未找到返回 (nil, nil)（缺行语义上等价于 pending）
func (r *TodoRepository) Get(ctx context.Context, userID, date, habitID string) (*schema.Todo, error) {
	var todo schema.Todo
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ? AND habit_id = ?", userID, date, habitID).
		First(&todo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询打卡记录失败: %w", err)
	}
	return &todo, nil
}

// Upsert 写入打卡记录；同一 (user, date, habit) 冲突时整行覆盖可变字段
func (r *TodoRepository) Upsert(ctx context.Context, todo *schema.Todo) error {
	if todo == nil {
		return fmt.Errorf("todo 不能为空")
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}, {Name: "habit_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "progress", "target", "notes", "completed_at", "updated_at",
		}),
	}).Create(todo).Error
	if err != nil {
		return fmt.Errorf("写入打卡记录失败: %w", err)
	}
	return nil
}

// UpdateNotes 只更新备注
func (r *TodoRepository) UpdateNotes(ctx context.Context, userID, date, habitID, notes string) error {
	err := r.db.WithContext(ctx).Model(&schema.Todo{}).
		Where("user_id = ? AND date = ? AND habit_id = ?", userID, date, habitID).
		Update("notes", notes).Error
	if err != nil {
		return fmt.Errorf("更新备注失败: %w", err)
	}
	return nil
}

// ListByDateRange 查询 [from, to]（含两端）内用户的全部打卡记录
func (r *TodoRepository) ListByDateRange(ctx context.Context, userID, from, to string) ([]schema.Todo, error) {
	var todos []schema.Todo
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date ASC").
		Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("按日期范围查询打卡记录失败: %w", err)
	}
	return todos, nil
}
