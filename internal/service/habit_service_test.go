package service

import (
	"context"
	"errors"
	"testing"

	"github.com/yuqie6/planly/internal/repository"
	"github.com/yuqie6/planly/internal/schema"
	"github.com/yuqie6/planly/internal/testutil"
)

type statsHookCall struct {
	op          string
	habitID     string
	oldCategory string
	newCategory string
}

type fakeStatsHook struct{ calls []statsHookCall }

func (f *fakeStatsHook) OnHabitCreated(ctx context.Context, userID, habitID, categoryID string) error {
	f.calls = append(f.calls, statsHookCall{op: "created", habitID: habitID, newCategory: categoryID})
	return nil
}

func (f *fakeStatsHook) OnHabitEdited(ctx context.Context, userID, habitID, oldCategoryID, newCategoryID string) error {
	f.calls = append(f.calls, statsHookCall{op: "edited", habitID: habitID, oldCategory: oldCategoryID, newCategory: newCategoryID})
	return nil
}

func newHabitService(t *testing.T) (*HabitService, *fakeStatsHook, *repository.CategoryRepository) {
	t.Helper()
	db := testutil.OpenTestDB(t)
	habits := repository.NewHabitRepository(db)
	categories := repository.NewCategoryRepository(db)
	hook := &fakeStatsHook{}
	return NewHabitService(habits, categories, hook), hook, categories
}

func TestHabitCreateBootstrapsStats(t *testing.T) {
	svc, hook, categories := newHabitService(t)
	ctx := context.Background()
	if err := categories.Create(ctx, &schema.Category{ID: "c1", UserID: "u1", Name: "健康"}); err != nil {
		t.Fatalf("创建分类失败: %v", err)
	}

	habit, err := svc.Create(ctx, &schema.Habit{UserID: "u1", CategoryID: "c1", Title: "晨跑", StartDate: "2025-03-01"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if habit.ID == "" {
		t.Fatalf("创建后应生成 ID")
	}
	if habit.PeriodType != schema.PeriodEveryDay {
		t.Fatalf("PeriodType = %s, want every_day 缺省", habit.PeriodType)
	}
	if len(hook.calls) != 1 || hook.calls[0].op != "created" || hook.calls[0].habitID != habit.ID {
		t.Fatalf("calls = %+v", hook.calls)
	}
}

func TestHabitCreateRejectsForeignCategory(t *testing.T) {
	svc, _, categories := newHabitService(t)
	ctx := context.Background()
	if err := categories.Create(ctx, &schema.Category{ID: "c1", UserID: "u2", Name: "别人的"}); err != nil {
		t.Fatalf("创建分类失败: %v", err)
	}

	_, err := svc.Create(ctx, &schema.Habit{UserID: "u1", CategoryID: "c1", Title: "晨跑", StartDate: "2025-03-01"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("挂到别人的分类应返回 ErrNotFound, got %v", err)
	}
}

func TestHabitUpdateTriggersRecalcOnlyForScheduleChanges(t *testing.T) {
	svc, hook, _ := newHabitService(t)
	ctx := context.Background()

	habit, err := svc.Create(ctx, &schema.Habit{UserID: "u1", Title: "阅读", StartDate: "2025-03-01"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	hook.calls = nil

	// 只改标题和颜色，不应触发重算
	habit.Title = "深度阅读"
	habit.Color = "#336699"
	if _, err := svc.Update(ctx, habit); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if len(hook.calls) != 0 {
		t.Fatalf("非排期字段变更不应触发重算: %+v", hook.calls)
	}

	// 改周期规则必须触发
	habit.PeriodType = schema.PeriodDaysOfWeek
	habit.PeriodValue = "MON,WED,FRI"
	if _, err := svc.Update(ctx, habit); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if len(hook.calls) != 1 || hook.calls[0].op != "edited" {
		t.Fatalf("calls = %+v", hook.calls)
	}
}

func TestHabitUpdateValidatesDates(t *testing.T) {
	svc, _, _ := newHabitService(t)
	ctx := context.Background()
	habit, err := svc.Create(ctx, &schema.Habit{UserID: "u1", Title: "冥想", StartDate: "2025-03-01"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	habit.EndDate = "2025-02-01"
	if _, err := svc.Update(ctx, habit); err == nil {
		t.Fatalf("结束日期早于开始日期应报错")
	}
}
