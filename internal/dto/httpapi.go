package dto

// 注意：本包用于承载"对外契约"的 DTO（与前端/HTTP API 保持稳定）。
// 不要在这里放 GORM/持久化细节；内部持久化 schema 请见 internal/schema；业务逻辑收敛在 internal/service。

type HabitDTO struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	CategoryID      string `json:"category_id,omitempty"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Color           string `json:"color,omitempty"`
	Emoji           string `json:"emoji,omitempty"`
	Unit            string `json:"unit,omitempty"`
	Value           string `json:"value,omitempty"`
	PeriodType      string `json:"period_type"`
	PeriodValue     string `json:"period_value,omitempty"`
	Period          string `json:"period,omitempty"`
	ReminderEnabled bool   `json:"reminder_enabled"`
	ReminderTime    string `json:"reminder_time,omitempty"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date,omitempty"`
	Active          bool   `json:"active"`
}

type CategoryDTO struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Color  string `json:"color,omitempty"`
	Emoji  string `json:"emoji,omitempty"`
}

type TodoDayItemDTO struct {
	HabitID     string `json:"habit_id"`
	CategoryID  string `json:"category_id,omitempty"`
	Title       string `json:"title"`
	Emoji       string `json:"emoji,omitempty"`
	Color       string `json:"color,omitempty"`
	Unit        string `json:"unit,omitempty"`
	Period      string `json:"period,omitempty"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	Target      int    `json:"target"`
	Notes       string `json:"notes,omitempty"`
	CompletedAt string `json:"completed_at,omitempty"`
}

type TodoDTO struct {
	UserID      string `json:"user_id"`
	HabitID     string `json:"habit_id"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	Target      int    `json:"target"`
	Notes       string `json:"notes,omitempty"`
	CompletedAt string `json:"completed_at,omitempty"`
}

type StatsDTO struct {
	Scope             string `json:"scope"`
	ScopeID           string `json:"scope_id,omitempty"`
	CurrentStreak     int    `json:"current_streak"`
	LongestStreak     int    `json:"longest_streak"`
	LastCompletedDate string `json:"last_completed_date,omitempty"`
	TotalCompletions  int    `json:"total_completions"`
}

type ScopeOverviewDTO struct {
	CurrentStreak         int     `json:"current_streak"`
	LongestStreak         int     `json:"longest_streak"`
	TotalCompletions      int     `json:"total_completions"`
	MonthTotalCompletions int     `json:"month_total_completions"`
	MonthDailyAverage     float64 `json:"month_daily_average"`
	MonthBestStreak       int     `json:"month_best_streak"`
}

type DashboardDTO struct {
	Month                  string            `json:"month"`
	CompletedDates         []string          `json:"completed_dates"`
	GlobalStreak           int               `json:"global_streak"`
	GlobalLongestStreak    int               `json:"global_longest_streak"`
	GlobalTotalCompletions int               `json:"global_total_completions"`
	LastCompletedDate      string            `json:"last_completed_date,omitempty"`
	MonthCompletionCount   int               `json:"month_completion_count"`
	MonthCompletionRate    float64           `json:"month_completion_rate"`
	MonthTotalCompletions  int               `json:"month_total_completions"`
	MonthDailyAverage      float64           `json:"month_daily_average"`
	MonthBestStreak        int               `json:"month_best_streak"`
	Category               *ScopeOverviewDTO `json:"category,omitempty"`
	Habit                  *ScopeOverviewDTO `json:"habit,omitempty"`
	HabitsForSelectedDate  []TodoDayItemDTO  `json:"habits_for_selected_date,omitempty"`
}

type StatusCountsDTO struct {
	Done    int `json:"done"`
	Skipped int `json:"skipped"`
	Pending int `json:"pending"`
}

type CategoryCountsDTO struct {
	CategoryID string          `json:"category_id"`
	Counts     StatusCountsDTO `json:"counts"`
}

type DailySummaryDTO struct {
	Date       string              `json:"date"`
	Total      StatusCountsDTO     `json:"total"`
	Categories []CategoryCountsDTO `json:"categories,omitempty"`
}
