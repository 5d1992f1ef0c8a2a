package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yuqie6/planly/internal/pkg/dateutil"
	"github.com/yuqie6/planly/internal/schema"
)

// StatsHook 习惯生命周期需要触发的统计回调
type StatsHook interface {
	OnHabitCreated(ctx context.Context, userID, habitID, categoryID string) error
	OnHabitEdited(ctx context.Context, userID, habitID, oldCategoryID, newCategoryID string) error
}

// HabitService 习惯管理服务
type HabitService struct {
	habits     HabitRepository
	categories CategoryRepository
	stats      StatsHook
}

// NewHabitService 创建习惯管理服务
func NewHabitService(habits HabitRepository, categories CategoryRepository, stats StatsHook) *HabitService {
	return &HabitService{habits: habits, categories: categories, stats: stats}
}

func (s *HabitService) validate(habit *schema.Habit) error {
	if habit.Title == "" {
		return fmt.Errorf("习惯标题不能为空")
	}
	if !dateutil.IsValid(habit.StartDate) {
		return fmt.Errorf("开始日期格式非法: %s", habit.StartDate)
	}
	if habit.EndDate != "" && !dateutil.IsValid(habit.EndDate) {
		return fmt.Errorf("结束日期格式非法: %s", habit.EndDate)
	}
	if habit.EndDate != "" && habit.EndDate < habit.StartDate {
		return fmt.Errorf("结束日期早于开始日期")
	}
	return nil
}

// Create 创建习惯并初始化三个维度的统计行。
// 周期类型缺省按每天，周期值不做强校验，解析不出来的排期规则视同永不到期。
func (s *HabitService) Create(ctx context.Context, habit *schema.Habit) (*schema.Habit, error) {
	if habit.PeriodType == "" {
		habit.PeriodType = schema.PeriodEveryDay
	}
	if habit.Value == "" {
		habit.Value = "1"
	}
	if err := s.validate(habit); err != nil {
		return nil, err
	}
	if habit.CategoryID != "" {
		category, err := s.categories.GetByID(ctx, habit.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil || category.UserID != habit.UserID {
			return nil, fmt.Errorf("分类不存在 category=%s: %w", habit.CategoryID, ErrNotFound)
		}
	}
	habit.ID = uuid.NewString()
	habit.Active = true
	if err := s.habits.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("创建习惯失败: %w", err)
	}
	if err := s.stats.OnHabitCreated(ctx, habit.UserID, habit.ID, habit.CategoryID); err != nil {
		// 习惯已经落库，统计初始化失败只记日志，后续重算可以补救
		slog.Error("习惯统计初始化失败", "habit", habit.ID, "error", err)
	}
	return habit, nil
}

// scheduleChanged 判断这次编辑是否动了排期要素
func scheduleChanged(old, updated *schema.Habit) bool {
	return old.StartDate != updated.StartDate ||
		old.EndDate != updated.EndDate ||
		old.PeriodType != updated.PeriodType ||
		old.PeriodValue != updated.PeriodValue ||
		old.CategoryID != updated.CategoryID
}

// Update 更新习惯。排期要素（日期窗口、周期、分类）有变动时触发全量重算。
func (s *HabitService) Update(ctx context.Context, habit *schema.Habit) (*schema.Habit, error) {
	old, err := s.habits.GetByID(ctx, habit.ID)
	if err != nil {
		return nil, err
	}
	if old == nil || old.UserID != habit.UserID {
		return nil, fmt.Errorf("习惯不存在 habit=%s: %w", habit.ID, ErrNotFound)
	}
	if habit.PeriodType == "" {
		habit.PeriodType = schema.PeriodEveryDay
	}
	if err := s.validate(habit); err != nil {
		return nil, err
	}
	habit.CreatedAt = old.CreatedAt
	if err := s.habits.Update(ctx, habit); err != nil {
		return nil, fmt.Errorf("更新习惯失败: %w", err)
	}
	if scheduleChanged(old, habit) {
		if err := s.stats.OnHabitEdited(ctx, habit.UserID, habit.ID, old.CategoryID, habit.CategoryID); err != nil {
			slog.Error("习惯编辑后统计重算失败", "habit", habit.ID, "error", err)
		}
	}
	return habit, nil
}

// Get 按 ID 取习惯，越权访问按不存在处理。
func (s *HabitService) Get(ctx context.Context, userID, habitID string) (*schema.Habit, error) {
	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit == nil || habit.UserID != userID {
		return nil, fmt.Errorf("习惯不存在 habit=%s: %w", habitID, ErrNotFound)
	}
	return habit, nil
}

// List 列出用户全部习惯
func (s *HabitService) List(ctx context.Context, userID string) ([]schema.Habit, error) {
	return s.habits.ListByUser(ctx, userID)
}

// Delete 删除习惯
func (s *HabitService) Delete(ctx context.Context, userID, habitID string) error {
	if _, err := s.Get(ctx, userID, habitID); err != nil {
		return err
	}
	return s.habits.Delete(ctx, habitID)
}
