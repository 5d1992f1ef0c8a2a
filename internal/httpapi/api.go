package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/yuqie6/planly/internal/dto"
	"github.com/yuqie6/planly/internal/eventbus"
	"github.com/yuqie6/planly/internal/schema"
	"github.com/yuqie6/planly/internal/service"
)

// ========== DTO 映射 ==========

func toHabitDTO(h *schema.Habit) dto.HabitDTO {
	return dto.HabitDTO{
		ID:              h.ID,
		UserID:          h.UserID,
		CategoryID:      h.CategoryID,
		Title:           h.Title,
		Description:     h.Description,
		Color:           h.Color,
		Emoji:           h.Emoji,
		Unit:            h.Unit,
		Value:           h.Value,
		PeriodType:      string(h.PeriodType),
		PeriodValue:     h.PeriodValue,
		Period:          h.Period,
		ReminderEnabled: h.ReminderEnabled,
		ReminderTime:    h.ReminderTime,
		StartDate:       h.StartDate,
		EndDate:         h.EndDate,
		Active:          h.Active,
	}
}

func toCategoryDTO(c *schema.Category) dto.CategoryDTO {
	return dto.CategoryDTO{ID: c.ID, UserID: c.UserID, Name: c.Name, Color: c.Color, Emoji: c.Emoji}
}

func formatCompletedAt(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func toTodoDayItemDTO(item service.TodoDayItem) dto.TodoDayItemDTO {
	return dto.TodoDayItemDTO{
		HabitID:     item.HabitID,
		CategoryID:  item.CategoryID,
		Title:       item.Title,
		Emoji:       item.Emoji,
		Color:       item.Color,
		Unit:        item.Unit,
		Period:      item.Period,
		Status:      string(item.Status),
		Progress:    item.Progress,
		Target:      item.Target,
		Notes:       item.Notes,
		CompletedAt: formatCompletedAt(item.CompletedAt),
	}
}

func toTodoDTO(t *schema.Todo) dto.TodoDTO {
	return dto.TodoDTO{
		UserID:      t.UserID,
		HabitID:     t.HabitID,
		Date:        t.Date,
		Status:      string(t.Status),
		Progress:    t.Progress,
		Target:      t.Target,
		Notes:       t.Notes,
		CompletedAt: formatCompletedAt(t.CompletedAt),
	}
}

func toScopeOverviewDTO(o *service.ScopeOverview) *dto.ScopeOverviewDTO {
	if o == nil {
		return nil
	}
	return &dto.ScopeOverviewDTO{
		CurrentStreak:         o.CurrentStreak,
		LongestStreak:         o.LongestStreak,
		TotalCompletions:      o.TotalCompletions,
		MonthTotalCompletions: o.MonthTotalCompletions,
		MonthDailyAverage:     o.MonthDailyAverage,
		MonthBestStreak:       o.MonthBestStreak,
	}
}

func toDashboardDTO(d *service.Dashboard) dto.DashboardDTO {
	out := dto.DashboardDTO{
		Month:                  d.Month,
		CompletedDates:         d.CompletedDates,
		GlobalStreak:           d.GlobalStreak,
		GlobalLongestStreak:    d.GlobalLongestStreak,
		GlobalTotalCompletions: d.GlobalTotalCompletions,
		LastCompletedDate:      d.LastCompletedDate,
		MonthCompletionCount:   d.MonthCompletionCount,
		MonthCompletionRate:    d.MonthCompletionRate,
		MonthTotalCompletions:  d.MonthTotalCompletions,
		MonthDailyAverage:      d.MonthDailyAverage,
		MonthBestStreak:        d.MonthBestStreak,
		Category:               toScopeOverviewDTO(d.Category),
		Habit:                  toScopeOverviewDTO(d.Habit),
	}
	for _, item := range d.HabitsForSelectedDate {
		out.HabitsForSelectedDate = append(out.HabitsForSelectedDate, toTodoDayItemDTO(item))
	}
	return out
}

// ========== routes ==========

func (a *apiServer) registerJSONRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/users", a.wrapPOST(a.upsertUser))

	mux.HandleFunc("/api/habits", a.wrapGET(a.listHabits))
	mux.HandleFunc("/api/habits/create", a.wrapPOST(a.createHabit))
	mux.HandleFunc("/api/habits/detail", a.wrapGET(a.getHabit))
	mux.HandleFunc("/api/habits/update", a.wrapPOST(a.updateHabit))
	mux.HandleFunc("/api/habits/delete", a.wrapPOST(a.deleteHabit))

	mux.HandleFunc("/api/categories", a.wrapGET(a.listCategories))
	mux.HandleFunc("/api/categories/create", a.wrapPOST(a.createCategory))

	mux.HandleFunc("/api/todos/by-date", a.wrapGET(a.getTodosByDate))
	mux.HandleFunc("/api/todos/status", a.wrapPOST(a.setTodoStatus))
	mux.HandleFunc("/api/todos/notes", a.wrapPOST(a.updateTodoNotes))
	mux.HandleFunc("/api/todos/daily-summary", a.wrapGET(a.getDailySummaries))

	mux.HandleFunc("/api/stats/dashboard", a.wrapGET(a.getDashboard))
	mux.HandleFunc("/api/stats/streak", a.wrapGET(a.getStreak))
}

func (a *apiServer) wrapGET(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		fn(w, r)
	}
}

func (a *apiServer) wrapPOST(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		fn(w, r)
	}
}

// writeServiceError 统一业务错误到状态码的映射
func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func requireQuery(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		writeError(w, http.StatusBadRequest, key+" 不能为空")
		return "", false
	}
	return v, true
}

// ========== handlers ==========

func (a *apiServer) upsertUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ID == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "id 和 email 不能为空")
		return
	}
	user := &schema.User{ID: req.ID, Email: req.Email, Name: req.Name}
	if err := a.core.Repos.User.Upsert(r.Context(), user); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": user.ID})
}

func (a *apiServer) listHabits(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireQuery(w, r, "user_id")
	if !ok {
		return
	}
	habits, err := a.core.Services.Habits.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]dto.HabitDTO, 0, len(habits))
	for i := range habits {
		out = append(out, toHabitDTO(&habits[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

type habitRequest struct {
	ID              string `json:"id,omitempty"`
	UserID          string `json:"user_id"`
	CategoryID      string `json:"category_id,omitempty"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Color           string `json:"color,omitempty"`
	Emoji           string `json:"emoji,omitempty"`
	Unit            string `json:"unit,omitempty"`
	Value           string `json:"value,omitempty"`
	PeriodType      string `json:"period_type,omitempty"`
	PeriodValue     string `json:"period_value,omitempty"`
	Period          string `json:"period,omitempty"`
	ReminderEnabled bool   `json:"reminder_enabled,omitempty"`
	ReminderTime    string `json:"reminder_time,omitempty"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date,omitempty"`
	Active          *bool  `json:"active,omitempty"`
}

func (req *habitRequest) toSchema() *schema.Habit {
	habit := &schema.Habit{
		ID:              req.ID,
		UserID:          req.UserID,
		CategoryID:      req.CategoryID,
		Title:           req.Title,
		Description:     req.Description,
		Color:           req.Color,
		Emoji:           req.Emoji,
		Unit:            req.Unit,
		Value:           req.Value,
		PeriodType:      schema.PeriodType(req.PeriodType),
		PeriodValue:     req.PeriodValue,
		Period:          req.Period,
		ReminderEnabled: req.ReminderEnabled,
		ReminderTime:    req.ReminderTime,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Active:          true,
	}
	if req.Active != nil {
		habit.Active = *req.Active
	}
	return habit
}

func (a *apiServer) createHabit(w http.ResponseWriter, r *http.Request) {
	var req habitRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id 不能为空")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	habit, err := a.core.Services.Habits.Create(ctx, req.toSchema())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHabitDTO(habit))
}

func (a *apiServer) getHabit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireQuery(w, r, "user_id")
	if !ok {
		return
	}
	habitID, ok := requireQuery(w, r, "habit_id")
	if !ok {
		return
	}
	habit, err := a.core.Services.Habits.Get(r.Context(), userID, habitID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHabitDTO(habit))
}

func (a *apiServer) updateHabit(w http.ResponseWriter, r *http.Request) {
	var req habitRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ID == "" || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "id 和 user_id 不能为空")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	habit, err := a.core.Services.Habits.Update(ctx, req.toSchema())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHabitDTO(habit))
}

func (a *apiServer) deleteHabit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  string `json:"user_id"`
		HabitID string `json:"habit_id"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.core.Services.Habits.Delete(r.Context(), req.UserID, req.HabitID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (a *apiServer) listCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireQuery(w, r, "user_id")
	if !ok {
		return
	}
	categories, err := a.core.Services.Categories.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]dto.CategoryDTO, 0, len(categories))
	for i := range categories {
		out = append(out, toCategoryDTO(&categories[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *apiServer) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		Name   string `json:"name"`
		Color  string `json:"color,omitempty"`
		Emoji  string `json:"emoji,omitempty"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id 不能为空")
		return
	}
	category, err := a.core.Services.Categories.Create(r.Context(), &schema.Category{
		UserID: req.UserID, Name: req.Name, Color: req.Color, Emoji: req.Emoji,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryDTO(category))
}

func (a *apiServer) getTodosByDate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireQuery(w, r, "user_id")
	if !ok {
		return
	}
	date, ok := requireQuery(w, r, "date")
	if !ok {
		return
	}
	items, err := a.core.Services.Todos.TodoListByDate(r.Context(), userID, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]dto.TodoDayItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toTodoDayItemDTO(item))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *apiServer) setTodoStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"user_id"`
		HabitID  string `json:"habit_id"`
		Date     string `json:"date"`
		Status   string `json:"status"`
		Progress int    `json:"progress,omitempty"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	status := schema.TodoStatus(req.Status)
	switch status {
	case schema.StatusPending, schema.StatusSkipped, schema.StatusDone:
	default:
		writeError(w, http.StatusBadRequest, "status 非法: "+req.Status)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	habit, err := a.core.Services.Habits.Get(ctx, req.UserID, req.HabitID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	todo, previous, err := a.core.Services.Todos.SetStatus(ctx, service.SetStatusParams{
		UserID:   req.UserID,
		HabitID:  req.HabitID,
		Date:     req.Date,
		Status:   status,
		Progress: req.Progress,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	a.hub.Publish(eventbus.TodoStatusChanged(req.UserID, req.HabitID, req.Date, req.Status))

	if err := a.core.Services.Stats.OnStatusChange(ctx, service.StatusChange{
		UserID:         req.UserID,
		HabitID:        req.HabitID,
		CategoryID:     habit.CategoryID,
		Date:           req.Date,
		NewStatus:      status,
		PreviousStatus: previous,
	}); err != nil {
		// 打卡已落库，统计失败如实报出去，失败的维度等下次变更或重算补救
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"todo":            toTodoDTO(todo),
		"previous_status": string(previous),
	})
}

func (a *apiServer) updateTodoNotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  string `json:"user_id"`
		HabitID string `json:"habit_id"`
		Date    string `json:"date"`
		Notes   string `json:"notes"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.core.Services.Todos.UpdateNotes(r.Context(), req.UserID, req.HabitID, req.Date, req.Notes); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (a *apiServer) getDailySummaries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireQuery(w, r, "user_id")
	if !ok {
		return
	}
	from, ok := requireQuery(w, r, "from")
	if !ok {
		return
	}
	to, ok := requireQuery(w, r, "to")
	if !ok {
		return
	}
	summaries, err := a.core.Services.Todos.DailySummaries(r.Context(), userID, from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]dto.DailySummaryDTO, 0, len(summaries))
	for _, s := range summaries {
		item := dto.DailySummaryDTO{
			Date:  s.Date,
			Total: dto.StatusCountsDTO{Done: s.Total.Done, Skipped: s.Total.Skipped, Pending: s.Total.Pending},
		}
		for _, c := range s.Categories {
			item.Categories = append(item.Categories, dto.CategoryCountsDTO{
				CategoryID: c.CategoryID,
				Counts:     dto.StatusCountsDTO{Done: c.Counts.Done, Skipped: c.Counts.Skipped, Pending: c.Counts.Pending},
			})
		}
		out = append(out, item)
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *apiServer) getDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireQuery(w, r, "user_id")
	if !ok {
		return
	}
	q := r.URL.Query()
	dashboard, err := a.core.Services.Dashboard.GetDashboard(r.Context(), service.DashboardQuery{
		UserID:       userID,
		Month:        strings.TrimSpace(q.Get("month")),
		CategoryID:   strings.TrimSpace(q.Get("category_id")),
		HabitID:      strings.TrimSpace(q.Get("habit_id")),
		SelectedDate: strings.TrimSpace(q.Get("selected_date")),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardDTO(dashboard))
}

func (a *apiServer) getStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireQuery(w, r, "user_id")
	if !ok {
		return
	}
	scope := schema.StatsScope(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("scope"))))
	if scope == "" {
		scope = schema.ScopeUser
	}
	switch scope {
	case schema.ScopeHabit, schema.ScopeCategory, schema.ScopeUser:
	default:
		writeError(w, http.StatusBadRequest, "scope 非法: "+string(scope))
		return
	}
	scopeID := strings.TrimSpace(r.URL.Query().Get("scope_id"))
	row, err := a.core.Services.Stats.GetCurrentStreak(r.Context(), userID, scope, scopeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.StatsDTO{
		Scope:             string(row.Scope),
		ScopeID:           row.ScopeID,
		CurrentStreak:     row.CurrentStreak,
		LongestStreak:     row.LongestStreak,
		LastCompletedDate: row.LastCompletedDate,
		TotalCompletions:  row.TotalCompletions,
	})
}
