package service

import "github.com/yuqie6/planly/internal/schema"

// CompletedHabitDates 从打卡记录里提取指定习惯状态为 done 的日期集合。
func CompletedHabitDates(todos []schema.Todo, habitID string) map[string]struct{} {
	completed := make(map[string]struct{})
	for _, todo := range todos {
		if todo.HabitID == habitID && todo.Status == schema.StatusDone {
			completed[todo.Date] = struct{}{}
		}
	}
	return completed
}

// buildTodoIndex 把打卡记录按 日期 -> 习惯 -> 状态 建索引，缺失条目视同 pending。
func buildTodoIndex(todos []schema.Todo) map[string]map[string]schema.TodoStatus {
	index := make(map[string]map[string]schema.TodoStatus)
	for _, todo := range todos {
		byHabit, ok := index[todo.Date]
		if !ok {
			byHabit = make(map[string]schema.TodoStatus)
			index[todo.Date] = byHabit
		}
		byHabit[todo.HabitID] = todo.Status
	}
	return index
}

// ScopeDaySets 对一组候选日历日，返回至少有一个习惯到期的日期（升序）
// 和"当天全部到期习惯都完成"的日期集合。没有打卡记录的到期习惯按未完成算。
func ScopeDaySets(dates []string, habits []schema.Habit, index map[string]map[string]schema.TodoStatus) ([]string, map[string]struct{}) {
	var scheduled []string
	completed := make(map[string]struct{})
	for _, date := range dates {
		var due []string
		for i := range habits {
			h := &habits[i]
			if h.StartDate > date {
				continue
			}
			if IsDueOn(h, date) {
				due = append(due, h.ID)
			}
		}
		if len(due) == 0 {
			continue
		}
		scheduled = append(scheduled, date)
		allDone := true
		for _, habitID := range due {
			if index[date][habitID] != schema.StatusDone {
				allDone = false
				break
			}
		}
		if allDone {
			completed[date] = struct{}{}
		}
	}
	return scheduled, completed
}
