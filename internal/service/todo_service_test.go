package service

import (
	"context"
	"errors"
	"testing"

	"github.com/yuqie6/planly/internal/repository"
	"github.com/yuqie6/planly/internal/schema"
	"github.com/yuqie6/planly/internal/testutil"
)

func newTodoService(t *testing.T) (*TodoService, *repository.HabitRepository) {
	t.Helper()
	db := testutil.OpenTestDB(t)
	habits := repository.NewHabitRepository(db)
	todos := repository.NewTodoRepository(db)
	return NewTodoService(habits, todos), habits
}

func seedHabit(t *testing.T, habits *repository.HabitRepository, habit *schema.Habit) {
	t.Helper()
	if habit.PeriodType == "" {
		habit.PeriodType = schema.PeriodEveryDay
	}
	habit.Active = true
	if err := habits.Create(context.Background(), habit); err != nil {
		t.Fatalf("创建习惯失败: %v", err)
	}
}

func TestSetStatusProgressRules(t *testing.T) {
	svc, habits := newTodoService(t)
	ctx := context.Background()
	seedHabit(t, habits, &schema.Habit{ID: "h1", UserID: "u1", Title: "喝水", Value: "8", StartDate: "2025-03-01"})

	// done 进度拉满并带完成时间
	todo, previous, err := svc.SetStatus(ctx, SetStatusParams{UserID: "u1", HabitID: "h1", Date: "2025-03-05", Status: schema.StatusDone})
	if err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}
	if previous != schema.StatusPending {
		t.Fatalf("previous = %s, want pending", previous)
	}
	if todo.Progress != 8 || todo.CompletedAt == nil {
		t.Fatalf("done 记录 progress=%d completedAt=%v", todo.Progress, todo.CompletedAt)
	}

	// 离开 done 进度清零、完成时间抹掉
	todo, previous, err = svc.SetStatus(ctx, SetStatusParams{UserID: "u1", HabitID: "h1", Date: "2025-03-05", Status: schema.StatusPending, Progress: 3})
	if err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}
	if previous != schema.StatusDone {
		t.Fatalf("previous = %s, want done", previous)
	}
	if todo.Progress != 3 || todo.CompletedAt != nil {
		t.Fatalf("pending 记录 progress=%d completedAt=%v", todo.Progress, todo.CompletedAt)
	}

	// skipped 清零，超界进度截断到目标值
	todo, _, err = svc.SetStatus(ctx, SetStatusParams{UserID: "u1", HabitID: "h1", Date: "2025-03-05", Status: schema.StatusSkipped, Progress: 99})
	if err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}
	if todo.Progress != 0 {
		t.Fatalf("skipped progress = %d, want 0", todo.Progress)
	}
	todo, _, err = svc.SetStatus(ctx, SetStatusParams{UserID: "u1", HabitID: "h1", Date: "2025-03-05", Status: schema.StatusPending, Progress: 99})
	if err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}
	if todo.Progress != 8 {
		t.Fatalf("截断后 progress = %d, want 8", todo.Progress)
	}
}

func TestSetStatusRejectsForeignHabit(t *testing.T) {
	svc, habits := newTodoService(t)
	seedHabit(t, habits, &schema.Habit{ID: "h1", UserID: "u1", Title: "晨跑", StartDate: "2025-03-01"})

	_, _, err := svc.SetStatus(context.Background(), SetStatusParams{UserID: "u2", HabitID: "h1", Date: "2025-03-05", Status: schema.StatusDone})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("越权打卡应返回 ErrNotFound, got %v", err)
	}
}

func TestTodoListByDateOrdersAndFillsPending(t *testing.T) {
	svc, habits := newTodoService(t)
	ctx := context.Background()
	seedHabit(t, habits, &schema.Habit{ID: "h-night", UserID: "u1", Title: "复盘", Period: "Evening", StartDate: "2025-03-01"})
	seedHabit(t, habits, &schema.Habit{ID: "h-morning", UserID: "u1", Title: "晨跑", Period: "Morning", StartDate: "2025-03-01"})
	seedHabit(t, habits, &schema.Habit{ID: "h-done", UserID: "u1", Title: "喝水", Period: "Morning", StartDate: "2025-03-01"})
	// 明天才开始的习惯不应出现
	seedHabit(t, habits, &schema.Habit{ID: "h-future", UserID: "u1", Title: "冥想", StartDate: "2025-03-06"})

	if _, _, err := svc.SetStatus(ctx, SetStatusParams{UserID: "u1", HabitID: "h-done", Date: "2025-03-05", Status: schema.StatusDone}); err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}

	items, err := svc.TodoListByDate(ctx, "u1", "2025-03-05")
	if err != nil {
		t.Fatalf("TodoListByDate error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	// pending 在前且按时段排，done 垫底
	wantOrder := []string{"h-morning", "h-night", "h-done"}
	for i, want := range wantOrder {
		if items[i].HabitID != want {
			t.Fatalf("items[%d] = %s, want %s", i, items[i].HabitID, want)
		}
	}
	if items[0].Status != schema.StatusPending {
		t.Fatalf("没有记录的到期习惯应补成 pending, got %s", items[0].Status)
	}
}

func TestUpdateNotesCreatesPendingRecord(t *testing.T) {
	svc, habits := newTodoService(t)
	ctx := context.Background()
	seedHabit(t, habits, &schema.Habit{ID: "h1", UserID: "u1", Title: "阅读", StartDate: "2025-03-01"})

	if err := svc.UpdateNotes(ctx, "u1", "h1", "2025-03-05", "读到第三章"); err != nil {
		t.Fatalf("UpdateNotes error: %v", err)
	}
	items, err := svc.TodoListByDate(ctx, "u1", "2025-03-05")
	if err != nil {
		t.Fatalf("TodoListByDate error: %v", err)
	}
	if len(items) != 1 || items[0].Notes != "读到第三章" || items[0].Status != schema.StatusPending {
		t.Fatalf("items = %+v", items)
	}
}

func TestDailySummariesGroupsByCategory(t *testing.T) {
	svc, habits := newTodoService(t)
	ctx := context.Background()
	seedHabit(t, habits, &schema.Habit{ID: "h1", UserID: "u1", CategoryID: "c1", Title: "晨跑", StartDate: "2025-03-04"})
	seedHabit(t, habits, &schema.Habit{ID: "h2", UserID: "u1", CategoryID: "c2", Title: "阅读", StartDate: "2025-03-04"})

	if _, _, err := svc.SetStatus(ctx, SetStatusParams{UserID: "u1", HabitID: "h1", Date: "2025-03-05", Status: schema.StatusDone}); err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}
	if _, _, err := svc.SetStatus(ctx, SetStatusParams{UserID: "u1", HabitID: "h2", Date: "2025-03-05", Status: schema.StatusSkipped}); err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}

	summaries, err := svc.DailySummaries(ctx, "u1", "2025-03-03", "2025-03-05")
	if err != nil {
		t.Fatalf("DailySummaries error: %v", err)
	}
	// 03 号还没有到期习惯，不应出现
	if len(summaries) != 2 {
		t.Fatalf("len(summaries) = %d, want 2", len(summaries))
	}
	last := summaries[1]
	if last.Date != "2025-03-05" {
		t.Fatalf("Date = %s, want 2025-03-05", last.Date)
	}
	if last.Total.Done != 1 || last.Total.Skipped != 1 || last.Total.Pending != 0 {
		t.Fatalf("Total = %+v", last.Total)
	}
	if len(last.Categories) != 2 {
		t.Fatalf("Categories = %+v", last.Categories)
	}
}
