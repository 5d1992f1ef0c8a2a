package service

import (
	"context"
	"fmt"

	"github.com/yuqie6/planly/internal/repository"
	"github.com/yuqie6/planly/internal/schema"
)

// habitStatsUpdater HABIT 维度的统计更新器
type habitStatsUpdater struct {
	stats  StatsRepository
	todos  TodoRepository
	habits HabitRepository
}

// updateIncremental 今天的状态变更走增量路径，只动当前统计行。
func (u *habitStatsUpdater) updateIncremental(ctx context.Context, ch StatusChange) error {
	row, err := u.stats.Get(ctx, ch.UserID, schema.ScopeHabit, ch.HabitID)
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("习惯统计行缺失 habit=%s: %w", ch.HabitID, ErrNotFound)
	}
	habit, err := u.habits.GetByID(ctx, ch.HabitID)
	if err != nil {
		return err
	}
	if habit == nil {
		return fmt.Errorf("习惯不存在 habit=%s: %w", ch.HabitID, ErrNotFound)
	}
	prevDue, err := PreviousScheduledDate(habit, ch.Date)
	if err != nil {
		return err
	}

	current := row.CurrentStreak
	longest := row.LongestStreak
	lastDone := row.LastCompletedDate
	total := row.TotalCompletions

	switch {
	case ch.NewStatus == schema.StatusDone:
		total++
		if prevDue != "" && lastDone == prevDue {
			current++
		} else {
			current = 1
		}
		lastDone = ch.Date
	case ch.PreviousStatus == schema.StatusDone:
		total = max(0, total-1)
		if lastDone == ch.Date {
			if prevDue == "" {
				current = 0
				lastDone = ""
			} else {
				// 撤销的是连击末端，往回重放到上一个到期日
				todos, err := u.todos.ListByDateRange(ctx, ch.UserID, habit.StartDate, ch.Date)
				if err != nil {
					return err
				}
				scheduled, err := ScheduledDates(habit, ch.Date)
				if err != nil {
					return err
				}
				completed := CompletedHabitDates(todos, ch.HabitID)
				current, lastDone = ComputeStreakUpTo(scheduled, completed, prevDue)
			}
		}
	}
	if current > longest {
		longest = current
	}
	return u.stats.UpdateStreakFields(ctx, ch.UserID, schema.ScopeHabit, ch.HabitID, repository.StreakFields{
		CurrentStreak:     current,
		LongestStreak:     longest,
		LastCompletedDate: lastDone,
		TotalCompletions:  total,
	})
}

// recalculate 从建档日起全量重算，历史最长连击只增不减。
func (u *habitStatsUpdater) recalculate(ctx context.Context, userID, habitID, today string) error {
	habit, err := u.habits.GetByID(ctx, habitID)
	if err != nil {
		return err
	}
	if habit == nil {
		return fmt.Errorf("习惯不存在 habit=%s: %w", habitID, ErrNotFound)
	}
	end := today
	if habit.EndDate != "" && habit.EndDate > end {
		end = habit.EndDate
	}
	todos, err := u.todos.ListByDateRange(ctx, userID, habit.StartDate, end)
	if err != nil {
		return err
	}
	scheduled, err := ScheduledDates(habit, end)
	if err != nil {
		return err
	}
	completed := CompletedHabitDates(todos, habitID)
	result := ComputeFullStreak(scheduled, completed, today)

	longest := result.LongestStreak
	if row, err := u.stats.Get(ctx, userID, schema.ScopeHabit, habitID); err != nil {
		return err
	} else if row != nil && row.LongestStreak > longest {
		longest = row.LongestStreak
	}
	return u.stats.UpdateStreakFields(ctx, userID, schema.ScopeHabit, habitID, repository.StreakFields{
		CurrentStreak:     result.CurrentStreak,
		LongestStreak:     longest,
		LastCompletedDate: result.LastCompletedDate,
		TotalCompletions:  len(completed),
	})
}
