package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/yuqie6/planly/internal/pkg/dateutil"
	"github.com/yuqie6/planly/internal/schema"
)

// DashboardQuery 看板查询参数。Month 形如 2025-03，缺省当月；
// CategoryID / HabitID 二选一做聚焦；SelectedDate 附带取某天的清单。
type DashboardQuery struct {
	UserID       string
	Month        string
	CategoryID   string
	HabitID      string
	SelectedDate string
}

// ScopeOverview 聚焦维度（分类或单个习惯）的统计摘要
type ScopeOverview struct {
	CurrentStreak         int
	LongestStreak         int
	TotalCompletions      int
	MonthTotalCompletions int
	MonthDailyAverage     float64
	MonthBestStreak       int
}

// Dashboard 看板聚合结果
type Dashboard struct {
	Month                  string
	CompletedDates         []string
	GlobalStreak           int
	GlobalLongestStreak    int
	GlobalTotalCompletions int
	LastCompletedDate      string
	MonthCompletionCount   int
	MonthCompletionRate    float64
	MonthTotalCompletions  int
	MonthDailyAverage      float64
	MonthBestStreak        int
	Category               *ScopeOverview
	Habit                  *ScopeOverview
	HabitsForSelectedDate  []TodoDayItem
}

// DashboardService 看板聚合服务，纯读路径，不动任何统计行。
type DashboardService struct {
	stats   StatsRepository
	habits  HabitRepository
	todos   TodoRepository
	dayList TodoListProvider
	loc     *time.Location
	now     func() time.Time
}

// NewDashboardService 创建看板聚合服务
func NewDashboardService(stats StatsRepository, habits HabitRepository, todos TodoRepository, dayList TodoListProvider, loc *time.Location) *DashboardService {
	return &DashboardService{stats: stats, habits: habits, todos: todos, dayList: dayList, loc: loc, now: time.Now}
}

// bestCalendarStreak 升序日期列表里最长的连续自然日跑段
func bestCalendarStreak(datesAsc []string) int {
	best, run := 0, 0
	prev := ""
	for _, date := range datesAsc {
		if prev != "" {
			if next, err := dateutil.AddDays(prev, 1); err == nil && next == date {
				run++
			} else {
				run = 1
			}
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev = date
	}
	return best
}

// GetDashboard 聚合某月的看板视图。
func (s *DashboardService) GetDashboard(ctx context.Context, q DashboardQuery) (*Dashboard, error) {
	month := q.Month
	if month == "" {
		month = s.now().In(s.loc).Format("2006-01")
	}
	first, last, daysInMonth, err := dateutil.MonthBounds(month)
	if err != nil {
		return nil, fmt.Errorf("月份格式非法: %w", err)
	}

	all, err := s.habits.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	var focused []schema.Habit
	inFocus := make(map[string]struct{})
	for _, h := range all {
		if !h.Active {
			continue
		}
		if q.HabitID != "" && h.ID != q.HabitID {
			continue
		}
		if q.CategoryID != "" && h.CategoryID != q.CategoryID {
			continue
		}
		focused = append(focused, h)
		inFocus[h.ID] = struct{}{}
	}

	todos, err := s.todos.ListByDateRange(ctx, q.UserID, first, last)
	if err != nil {
		return nil, err
	}
	monthDates, err := dateutil.Range(first, last)
	if err != nil {
		return nil, err
	}
	_, completedSet := ScopeDaySets(monthDates, focused, buildTodoIndex(todos))
	completedDates := make([]string, 0, len(completedSet))
	for date := range completedSet {
		completedDates = append(completedDates, date)
	}
	sort.Strings(completedDates)

	monthCompletions := 0
	for _, todo := range todos {
		if todo.Status != schema.StatusDone {
			continue
		}
		if _, ok := inFocus[todo.HabitID]; ok {
			monthCompletions++
		}
	}

	dashboard := &Dashboard{
		Month:                 month,
		CompletedDates:        completedDates,
		MonthCompletionCount:  len(completedDates),
		MonthCompletionRate:   float64(len(completedDates)) / float64(daysInMonth),
		MonthTotalCompletions: monthCompletions,
		MonthDailyAverage:     float64(monthCompletions) / float64(daysInMonth),
		MonthBestStreak:       bestCalendarStreak(completedDates),
	}

	if global, err := s.stats.Get(ctx, q.UserID, schema.ScopeUser, ""); err != nil {
		return nil, err
	} else if global != nil {
		dashboard.GlobalStreak = global.CurrentStreak
		dashboard.GlobalLongestStreak = global.LongestStreak
		dashboard.GlobalTotalCompletions = global.TotalCompletions
		dashboard.LastCompletedDate = global.LastCompletedDate
	}

	if q.CategoryID != "" {
		overview, err := s.scopeOverview(ctx, q.UserID, schema.ScopeCategory, q.CategoryID, dashboard, daysInMonth)
		if err != nil {
			return nil, err
		}
		dashboard.Category = overview
	}
	if q.HabitID != "" {
		overview, err := s.scopeOverview(ctx, q.UserID, schema.ScopeHabit, q.HabitID, dashboard, daysInMonth)
		if err != nil {
			return nil, err
		}
		dashboard.Habit = overview
	}

	if q.SelectedDate != "" {
		items, err := s.dayList.TodoListByDate(ctx, q.UserID, q.SelectedDate)
		if err != nil {
			return nil, err
		}
		filtered := items[:0:0]
		for _, item := range items {
			if q.HabitID != "" && item.HabitID != q.HabitID {
				continue
			}
			if q.CategoryID != "" && item.CategoryID != q.CategoryID {
				continue
			}
			filtered = append(filtered, item)
		}
		dashboard.HabitsForSelectedDate = filtered
	}
	return dashboard, nil
}

func (s *DashboardService) scopeOverview(ctx context.Context, userID string, scope schema.StatsScope, scopeID string, d *Dashboard, daysInMonth int) (*ScopeOverview, error) {
	overview := &ScopeOverview{
		MonthTotalCompletions: d.MonthTotalCompletions,
		MonthDailyAverage:     float64(d.MonthTotalCompletions) / float64(daysInMonth),
		MonthBestStreak:       d.MonthBestStreak,
	}
	row, err := s.stats.Get(ctx, userID, scope, scopeID)
	if err != nil {
		return nil, err
	}
	if row != nil {
		overview.CurrentStreak = row.CurrentStreak
		overview.LongestStreak = row.LongestStreak
		overview.TotalCompletions = row.TotalCompletions
	}
	return overview, nil
}
