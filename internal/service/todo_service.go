package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/yuqie6/planly/internal/pkg/dateutil"
	"github.com/yuqie6/planly/internal/schema"
)

// TodoDayItem 某一天清单里的一项：到期习惯叠加当天记录，没有记录按 pending 展示。
type TodoDayItem struct {
	HabitID     string
	CategoryID  string
	Title       string
	Emoji       string
	Color       string
	Unit        string
	Period      string
	Status      schema.TodoStatus
	Progress    int
	Target      int
	Notes       string
	CompletedAt *time.Time
}

// SetStatusParams 一次打卡写入的参数
type SetStatusParams struct {
	UserID   string
	HabitID  string
	Date     string
	Status   schema.TodoStatus
	Progress int
}

// TodoService 打卡记录服务
type TodoService struct {
	habits HabitRepository
	todos  TodoRepository
	now    func() time.Time
}

// NewTodoService 创建打卡记录服务
func NewTodoService(habits HabitRepository, todos TodoRepository) *TodoService {
	return &TodoService{habits: habits, todos: todos, now: time.Now}
}

func (s *TodoService) ownedHabit(ctx context.Context, userID, habitID string) (*schema.Habit, error) {
	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit == nil || habit.UserID != userID {
		return nil, fmt.Errorf("习惯不存在 habit=%s: %w", habitID, ErrNotFound)
	}
	return habit, nil
}

// SetStatus 写入某天的打卡状态，返回写入后的记录和变更前的状态。
// done 时进度拉满并打完成时间戳，skipped 清零，离开 done 也清零。
func (s *TodoService) SetStatus(ctx context.Context, p SetStatusParams) (*schema.Todo, schema.TodoStatus, error) {
	if !dateutil.IsValid(p.Date) {
		return nil, "", fmt.Errorf("日期格式非法: %s", p.Date)
	}
	habit, err := s.ownedHabit(ctx, p.UserID, p.HabitID)
	if err != nil {
		return nil, "", err
	}
	existing, err := s.todos.Get(ctx, p.UserID, p.Date, p.HabitID)
	if err != nil {
		return nil, "", err
	}
	previous := schema.StatusPending
	notes := ""
	if existing != nil {
		previous = existing.Status
		notes = existing.Notes
	}

	target := habit.TargetValue()
	var progress int
	var completedAt *time.Time
	switch p.Status {
	case schema.StatusDone:
		progress = target
		done := s.now()
		completedAt = &done
	case schema.StatusSkipped:
		progress = 0
	default:
		progress = min(max(0, p.Progress), target)
	}

	todo := &schema.Todo{
		UserID:      p.UserID,
		Date:        p.Date,
		HabitID:     p.HabitID,
		Status:      p.Status,
		Progress:    progress,
		Target:      target,
		Notes:       notes,
		CompletedAt: completedAt,
	}
	if err := s.todos.Upsert(ctx, todo); err != nil {
		return nil, "", fmt.Errorf("写入打卡记录失败: %w", err)
	}
	return todo, previous, nil
}

// UpdateNotes 更新某天的打卡备注，还没有记录时补一条 pending。
func (s *TodoService) UpdateNotes(ctx context.Context, userID, habitID, date, notes string) error {
	habit, err := s.ownedHabit(ctx, userID, habitID)
	if err != nil {
		return err
	}
	existing, err := s.todos.Get(ctx, userID, date, habitID)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.todos.UpdateNotes(ctx, userID, date, habitID, notes)
	}
	return s.todos.Upsert(ctx, &schema.Todo{
		UserID:  userID,
		Date:    date,
		HabitID: habitID,
		Status:  schema.StatusPending,
		Target:  habit.TargetValue(),
		Notes:   notes,
	})
}

// TodoListByDate 列出某天的完整清单：当天到期的活跃习惯叠加已有记录，
// 按 状态（pending < skipped < done）再按 时段 排序。
func (s *TodoService) TodoListByDate(ctx context.Context, userID, date string) ([]TodoDayItem, error) {
	habits, err := s.habits.ListByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	todos, err := s.todos.ListByDateRange(ctx, userID, date, date)
	if err != nil {
		return nil, err
	}
	recorded := make(map[string]*schema.Todo, len(todos))
	for i := range todos {
		recorded[todos[i].HabitID] = &todos[i]
	}

	items := make([]TodoDayItem, 0, len(habits))
	for i := range habits {
		h := &habits[i]
		if !h.Active || !IsDueOn(h, date) {
			continue
		}
		item := TodoDayItem{
			HabitID:    h.ID,
			CategoryID: h.CategoryID,
			Title:      h.Title,
			Emoji:      h.Emoji,
			Color:      h.Color,
			Unit:       h.Unit,
			Period:     h.Period,
			Status:     schema.StatusPending,
			Target:     h.TargetValue(),
		}
		if todo, ok := recorded[h.ID]; ok {
			item.Status = todo.Status
			item.Progress = todo.Progress
			item.Target = todo.Target
			item.Notes = todo.Notes
			item.CompletedAt = todo.CompletedAt
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		si, sj := schema.StatusOrder[items[i].Status], schema.StatusOrder[items[j].Status]
		if si != sj {
			return si < sj
		}
		return schema.PeriodOrder[items[i].Period] < schema.PeriodOrder[items[j].Period]
	})
	return items, nil
}

// StatusCounts 一天的状态分布
type StatusCounts struct {
	Done    int
	Skipped int
	Pending int
}

// CategoryCounts 按分类拆分的状态分布
type CategoryCounts struct {
	CategoryID string
	Counts     StatusCounts
}

// DailySummary 一天的打卡完成概况
type DailySummary struct {
	Date       string
	Total      StatusCounts
	Categories []CategoryCounts
}

// DailySummaries 汇总 [from, to] 每天的完成概况，没有到期习惯的日子不出现。
func (s *TodoService) DailySummaries(ctx context.Context, userID, from, to string) ([]DailySummary, error) {
	dates, err := dateutil.Range(from, to)
	if err != nil {
		return nil, err
	}
	var summaries []DailySummary
	for _, date := range dates {
		items, err := s.TodoListByDate(ctx, userID, date)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			continue
		}
		summary := DailySummary{Date: date}
		byCategory := make(map[string]*StatusCounts)
		var categoryOrder []string
		for _, item := range items {
			counts, ok := byCategory[item.CategoryID]
			if !ok {
				counts = &StatusCounts{}
				byCategory[item.CategoryID] = counts
				categoryOrder = append(categoryOrder, item.CategoryID)
			}
			switch item.Status {
			case schema.StatusDone:
				summary.Total.Done++
				counts.Done++
			case schema.StatusSkipped:
				summary.Total.Skipped++
				counts.Skipped++
			default:
				summary.Total.Pending++
				counts.Pending++
			}
		}
		sort.Strings(categoryOrder)
		for _, categoryID := range categoryOrder {
			summary.Categories = append(summary.Categories, CategoryCounts{
				CategoryID: categoryID,
				Counts:     *byCategory[categoryID],
			})
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
