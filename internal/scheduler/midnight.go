// Package scheduler 翻篇后的漏卡扫描定时任务。
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/yuqie6/planly/internal/pkg/dateutil"
	"github.com/yuqie6/planly/internal/schema"
	"github.com/yuqie6/planly/internal/service"
)

// UserLister 枚举全部用户
type UserLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

// TodoGetter 查单条打卡记录
type TodoGetter interface {
	Get(ctx context.Context, userID, date, habitID string) (*schema.Todo, error)
}

// MissedDayHandler 对漏卡习惯触发统计重算
type MissedDayHandler interface {
	OnMissedDay(ctx context.Context, userID, habitID, categoryID string) error
}

// MissedDayScanner 每天零点后扫一遍昨天：到期却一条记录都没留下的习惯，
// 触发全量重算，让过期的宽限连击落地归零。
type MissedDayScanner struct {
	users   UserLister
	dayList service.TodoListProvider
	todos   TodoGetter
	stats   MissedDayHandler
	loc     *time.Location
	now     func() time.Time

	scheduler gocron.Scheduler
}

// NewMissedDayScanner 创建漏卡扫描器，loc 是统计口径时区。
func NewMissedDayScanner(users UserLister, dayList service.TodoListProvider, todos TodoGetter, stats MissedDayHandler, loc *time.Location) *MissedDayScanner {
	return &MissedDayScanner{
		users:   users,
		dayList: dayList,
		todos:   todos,
		stats:   stats,
		loc:     loc,
		now:     time.Now,
	}
}

// Start 注册每天 00:05 的扫描任务并启动调度器。
func (s *MissedDayScanner) Start() error {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(s.loc))
	if err != nil {
		return fmt.Errorf("创建调度器失败: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 5, 0))),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if err := s.ScanAll(ctx); err != nil {
				slog.Error("漏卡扫描失败", "error", err)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("注册漏卡扫描任务失败: %w", err)
	}
	scheduler.Start()
	s.scheduler = scheduler
	slog.Info("漏卡扫描任务已启动", "timezone", s.loc.String())
	return nil
}

// Stop 停止调度器
func (s *MissedDayScanner) Stop() error {
	if s.scheduler == nil {
		return nil
	}
	return s.scheduler.Shutdown()
}

// ScanAll 扫描全部用户昨天的漏卡情况。
func (s *MissedDayScanner) ScanAll(ctx context.Context) error {
	userIDs, err := s.users.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("枚举用户失败: %w", err)
	}
	today := dateutil.Today(s.loc, s.now)
	yesterday, err := dateutil.AddDays(today, -1)
	if err != nil {
		return err
	}
	for _, userID := range userIDs {
		if err := s.scanUser(ctx, userID, yesterday); err != nil {
			slog.Error("用户漏卡扫描失败", "user", userID, "error", err)
		}
	}
	return nil
}

func (s *MissedDayScanner) scanUser(ctx context.Context, userID, yesterday string) error {
	items, err := s.dayList.TodoListByDate(ctx, userID, yesterday)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	allDone := true
	for _, item := range items {
		if item.Status != schema.StatusDone {
			allDone = false
			break
		}
	}
	if allDone {
		return nil
	}
	missed := 0
	for _, item := range items {
		// 有记录的（含 skipped）当天已经结算过，只处理完全没碰的
		todo, err := s.todos.Get(ctx, userID, yesterday, item.HabitID)
		if err != nil {
			return err
		}
		if todo != nil {
			continue
		}
		if err := s.stats.OnMissedDay(ctx, userID, item.HabitID, item.CategoryID); err != nil {
			slog.Error("漏卡重算失败", "user", userID, "habit", item.HabitID, "error", err)
			continue
		}
		missed++
	}
	if missed > 0 {
		slog.Info("漏卡扫描完成", "user", userID, "date", yesterday, "missed", missed)
	}
	return nil
}
