package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/yuqie6/planly/internal/eventbus"
	"github.com/yuqie6/planly/internal/pkg/dateutil"
	"github.com/yuqie6/planly/internal/schema"
)

// StatusChange 一次打卡状态变更的上下文
type StatusChange struct {
	UserID         string
	HabitID        string
	CategoryID     string
	Date           string
	NewStatus      schema.TodoStatus
	PreviousStatus schema.TodoStatus
}

// keyLocks 以统计行为粒度串行化读改写，同一行的并发更新排队执行。
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyLocks) acquire(key string) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()
	lock.Lock()
	return lock.Unlock
}

func statsKey(userID string, scope schema.StatsScope, scopeID string) string {
	return userID + "/" + string(scope) + "/" + scopeID
}

// StatsService 统计编排服务。一次打卡变更扇出到 HABIT / CATEGORY / USER
// 三个维度并发更新，三个维度全部结算后汇总失败，不回滚已成功的维度。
type StatsService struct {
	stats    StatsRepository
	habits   HabitRepository
	habitUpd *habitStatsUpdater
	scopeUpd *scopeStatsUpdater
	hub      *eventbus.Hub
	locks    *keyLocks
	loc      *time.Location
	now      func() time.Time
}

// NewStatsService 创建统计编排服务，loc 是统计口径时区。
func NewStatsService(stats StatsRepository, habits HabitRepository, todos TodoRepository, dayList TodoListProvider, hub *eventbus.Hub, loc *time.Location) *StatsService {
	return &StatsService{
		stats:    stats,
		habits:   habits,
		habitUpd: &habitStatsUpdater{stats: stats, todos: todos, habits: habits},
		scopeUpd: &scopeStatsUpdater{stats: stats, habits: habits, todos: todos, dayList: dayList},
		hub:      hub,
		locks:    newKeyLocks(),
		loc:      loc,
		now:      time.Now,
	}
}

func (s *StatsService) today() string {
	return dateutil.Today(s.loc, s.now)
}

type scopeTask struct {
	scope   schema.StatsScope
	scopeID string
	run     func(context.Context) error
}

// settleAll 并发执行各维度任务，等全部结算后聚合失败。
func (s *StatsService) settleAll(ctx context.Context, userID string, tasks []scopeTask) error {
	var wg sync.WaitGroup
	errs := make([]error, len(tasks))
	for i, task := range tasks {
		i, task := i, task
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := s.locks.acquire(statsKey(userID, task.scope, task.scopeID))
			defer release()
			if err := task.run(ctx); err != nil {
				errs[i] = &ScopeUpdateError{Scope: task.scope, Err: err}
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

// OnStatusChange 响应一次打卡状态变更。
// 变更发生在今天走增量，回填历史日期走全量重算；状态没变直接跳过。
func (s *StatsService) OnStatusChange(ctx context.Context, ch StatusChange) error {
	if ch.NewStatus == ch.PreviousStatus {
		slog.Debug("状态未变化，跳过统计更新", "habit", ch.HabitID, "date", ch.Date)
		return nil
	}
	today := s.today()
	var tasks []scopeTask
	if ch.Date == today {
		tasks = []scopeTask{
			{schema.ScopeHabit, ch.HabitID, func(ctx context.Context) error {
				return s.habitUpd.updateIncremental(ctx, ch)
			}},
			{schema.ScopeUser, "", func(ctx context.Context) error {
				return s.scopeUpd.updateIncremental(ctx, ch, schema.ScopeUser, "")
			}},
		}
		// 未分类的习惯没有 CATEGORY 维度，和重算路径保持一致
		if ch.CategoryID != "" {
			tasks = append(tasks, scopeTask{schema.ScopeCategory, ch.CategoryID, func(ctx context.Context) error {
				return s.scopeUpd.updateIncremental(ctx, ch, schema.ScopeCategory, ch.CategoryID)
			}})
		}
	} else {
		tasks = s.recalcTasks(ch.UserID, ch.HabitID, []string{ch.CategoryID}, today)
	}
	if err := s.settleAll(ctx, ch.UserID, tasks); err != nil {
		return err
	}
	s.hub.Publish(eventbus.StatsUpdated(ch.UserID, ch.Date))
	return nil
}

func (s *StatsService) recalcTasks(userID, habitID string, categoryIDs []string, today string) []scopeTask {
	tasks := []scopeTask{
		{schema.ScopeHabit, habitID, func(ctx context.Context) error {
			return s.habitUpd.recalculate(ctx, userID, habitID, today)
		}},
		{schema.ScopeUser, "", func(ctx context.Context) error {
			return s.scopeUpd.recalculate(ctx, userID, schema.ScopeUser, "", today)
		}},
	}
	seen := make(map[string]struct{})
	for _, categoryID := range categoryIDs {
		if categoryID == "" {
			continue
		}
		if _, ok := seen[categoryID]; ok {
			continue
		}
		seen[categoryID] = struct{}{}
		tasks = append(tasks, scopeTask{schema.ScopeCategory, categoryID, func(ctx context.Context) error {
			return s.scopeUpd.recalculate(ctx, userID, schema.ScopeCategory, categoryID, today)
		}})
	}
	return tasks
}

// OnHabitCreated 习惯创建后初始化三个维度的统计行。
// HABIT 行重置为全零（同名习惯重建不继承旧数据），聚合行只在缺失时补建。
// 习惯开始日期不晚于今天时立即全量重算一轮。
func (s *StatsService) OnHabitCreated(ctx context.Context, userID, habitID, categoryID string) error {
	if err := s.stats.Put(ctx, &schema.Stats{
		UserID:  userID,
		Scope:   schema.ScopeHabit,
		ScopeID: habitID,
	}); err != nil {
		return fmt.Errorf("初始化习惯统计行失败: %w", err)
	}
	rows := []*schema.Stats{
		{UserID: userID, Scope: schema.ScopeUser, ScopeID: ""},
	}
	if categoryID != "" {
		rows = append(rows, &schema.Stats{UserID: userID, Scope: schema.ScopeCategory, ScopeID: categoryID})
	}
	for _, row := range rows {
		if _, err := s.stats.PutIfAbsent(ctx, row); err != nil {
			return fmt.Errorf("初始化聚合统计行失败 scope=%s: %w", row.Scope, err)
		}
	}
	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return err
	}
	if habit == nil {
		return fmt.Errorf("习惯不存在 habit=%s: %w", habitID, ErrNotFound)
	}
	s.hub.Publish(eventbus.HabitChanged(eventbus.TypeHabitCreated, userID, habitID))
	today := s.today()
	if habit.StartDate > today {
		return nil
	}
	return s.settleAll(ctx, userID, s.recalcTasks(userID, habitID, []string{categoryID}, today))
}

// OnHabitEdited 习惯的排期要素（日期窗口、周期、所属分类）变更后全量重算。
// 换分类时新旧两个分类都要重算。
func (s *StatsService) OnHabitEdited(ctx context.Context, userID, habitID, oldCategoryID, newCategoryID string) error {
	// 换入的分类可能还没有统计行，先补建再重算
	for _, categoryID := range []string{oldCategoryID, newCategoryID} {
		if categoryID == "" {
			continue
		}
		if _, err := s.stats.PutIfAbsent(ctx, &schema.Stats{
			UserID:  userID,
			Scope:   schema.ScopeCategory,
			ScopeID: categoryID,
		}); err != nil {
			return fmt.Errorf("补建分类统计行失败 category=%s: %w", categoryID, err)
		}
	}
	today := s.today()
	tasks := s.recalcTasks(userID, habitID, []string{oldCategoryID, newCategoryID}, today)
	if err := s.settleAll(ctx, userID, tasks); err != nil {
		return err
	}
	s.hub.Publish(eventbus.HabitChanged(eventbus.TypeHabitUpdated, userID, habitID))
	return nil
}

// OnMissedDay 昨天有到期却一条记录都没留下的习惯，翻篇后触发全量重算，
// 让过期的宽限连击归零。
func (s *StatsService) OnMissedDay(ctx context.Context, userID, habitID, categoryID string) error {
	today := s.today()
	return s.settleAll(ctx, userID, s.recalcTasks(userID, habitID, []string{categoryID}, today))
}

// GetCurrentStreak 读取某维度的当前连击，统计行缺失时返回 ErrNotFound。
func (s *StatsService) GetCurrentStreak(ctx context.Context, userID string, scope schema.StatsScope, scopeID string) (*schema.Stats, error) {
	row, err := s.stats.Get(ctx, userID, scope, scopeID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("统计行缺失 scope=%s scope_id=%s: %w", scope, scopeID, ErrNotFound)
	}
	return row, nil
}
