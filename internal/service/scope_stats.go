package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yuqie6/planly/internal/pkg/dateutil"
	"github.com/yuqie6/planly/internal/repository"
	"github.com/yuqie6/planly/internal/schema"
)

// scopeStatsUpdater CATEGORY / USER 两个聚合维度共用的统计更新器。
// 这两个维度的"完成一天"都要求当天全部到期习惯完成，只差一个分类过滤。
type scopeStatsUpdater struct {
	stats   StatsRepository
	habits  HabitRepository
	todos   TodoRepository
	dayList TodoListProvider
}

func (u *scopeStatsUpdater) dayComplete(ctx context.Context, userID, date string, scope schema.StatsScope, scopeID string) (bool, error) {
	items, err := u.dayList.TodoListByDate(ctx, userID, date)
	if err != nil {
		return false, err
	}
	matched := 0
	for _, item := range items {
		if scope == schema.ScopeCategory && item.CategoryID != scopeID {
			continue
		}
		matched++
		if item.Status != schema.StatusDone {
			return false, nil
		}
	}
	return matched > 0, nil
}

// updateIncremental 今天的状态变更走增量路径。
// 整天齐活才加连击；撤销打破"整天齐活"才回退；其余情况不动统计行。
func (u *scopeStatsUpdater) updateIncremental(ctx context.Context, ch StatusChange, scope schema.StatsScope, scopeID string) error {
	row, err := u.stats.Get(ctx, ch.UserID, scope, scopeID)
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("统计行缺失 scope=%s scope_id=%s: %w", scope, scopeID, ErrNotFound)
	}
	allComplete, err := u.dayComplete(ctx, ch.UserID, ch.Date, scope, scopeID)
	if err != nil {
		return err
	}
	yesterday, err := dateutil.AddDays(ch.Date, -1)
	if err != nil {
		return err
	}

	current := row.CurrentStreak
	longest := row.LongestStreak
	lastDone := row.LastCompletedDate
	total := row.TotalCompletions

	switch {
	case allComplete:
		total++
		if lastDone == yesterday {
			current++
		} else {
			current = 1
		}
		lastDone = ch.Date
	case lastDone == ch.Date:
		// 当天本已齐活，这次变更把它打破了
		total = max(0, total-1)
		yesterdayComplete, err := u.dayComplete(ctx, ch.UserID, yesterday, scope, scopeID)
		if err != nil {
			return err
		}
		if yesterdayComplete {
			current = max(0, current-1)
			lastDone = yesterday
		} else {
			current = 0
			lastDone = ""
		}
	default:
		slog.Debug("当天未齐活且未被打破，统计不变", "scope", scope, "scope_id", scopeID, "date", ch.Date)
		return nil
	}
	if current > longest {
		longest = current
	}
	return u.stats.UpdateStreakFields(ctx, ch.UserID, scope, scopeID, repository.StreakFields{
		CurrentStreak:     current,
		LongestStreak:     longest,
		LastCompletedDate: lastDone,
		TotalCompletions:  total,
	})
}

// recalculate 按维度内全部活跃习惯从最早建档日起全量重算。
// 维度内没有活跃习惯时跳过，保留既有统计。
func (u *scopeStatsUpdater) recalculate(ctx context.Context, userID string, scope schema.StatsScope, scopeID, today string) error {
	all, err := u.habits.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	var active []schema.Habit
	for _, h := range all {
		if !h.Active {
			continue
		}
		if scope == schema.ScopeCategory && h.CategoryID != scopeID {
			continue
		}
		active = append(active, h)
	}
	if len(active) == 0 {
		slog.Info("维度内没有活跃习惯，跳过重算", "scope", scope, "scope_id", scopeID, "user", userID)
		return nil
	}
	start := active[0].StartDate
	for _, h := range active[1:] {
		if h.StartDate < start {
			start = h.StartDate
		}
	}
	dates, err := dateutil.Range(start, today)
	if err != nil {
		return err
	}
	todos, err := u.todos.ListByDateRange(ctx, userID, start, today)
	if err != nil {
		return err
	}
	scheduled, completed := ScopeDaySets(dates, active, buildTodoIndex(todos))
	result := ComputeFullStreak(scheduled, completed, today)

	longest := result.LongestStreak
	if row, err := u.stats.Get(ctx, userID, scope, scopeID); err != nil {
		return err
	} else if row != nil && row.LongestStreak > longest {
		longest = row.LongestStreak
	}
	return u.stats.UpdateStreakFields(ctx, userID, scope, scopeID, repository.StreakFields{
		CurrentStreak:     result.CurrentStreak,
		LongestStreak:     longest,
		LastCompletedDate: result.LastCompletedDate,
		TotalCompletions:  len(completed),
	})
}
