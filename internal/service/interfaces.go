package service

import (
	"context"

	"github.com/yuqie6/planly/internal/repository"
	"github.com/yuqie6/planly/internal/schema"
)

// HabitRepository 习惯仓储能力
type HabitRepository interface {
	Create(ctx context.Context, habit *schema.Habit) error
	Update(ctx context.Context, habit *schema.Habit) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*schema.Habit, error)
	ListByUser(ctx context.Context, userID string) ([]schema.Habit, error)
	ListByUserAndDate(ctx context.Context, userID, date string) ([]schema.Habit, error)
}

// TodoRepository 打卡记录仓储能力
type TodoRepository interface {
	Get(ctx context.Context, userID, date, habitID string) (*schema.Todo, error)
	Upsert(ctx context.Context, todo *schema.Todo) error
	UpdateNotes(ctx context.Context, userID, date, habitID, notes string) error
	ListByDateRange(ctx context.Context, userID, from, to string) ([]schema.Todo, error)
}

// StatsRepository 统计行仓储能力
type StatsRepository interface {
	Get(ctx context.Context, userID string, scope schema.StatsScope, scopeID string) (*schema.Stats, error)
	Put(ctx context.Context, row *schema.Stats) error
	PutIfAbsent(ctx context.Context, row *schema.Stats) (bool, error)
	UpdateStreakFields(ctx context.Context, userID string, scope schema.StatsScope, scopeID string, fields repository.StreakFields) error
}

// CategoryRepository 分类仓储能力
type CategoryRepository interface {
	Create(ctx context.Context, category *schema.Category) error
	GetByID(ctx context.Context, id string) (*schema.Category, error)
	ListByUser(ctx context.Context, userID string) ([]schema.Category, error)
}

// TodoListProvider 提供某用户某天的完整打卡清单（没有记录的到期习惯补成 pending）
type TodoListProvider interface {
	TodoListByDate(ctx context.Context, userID, date string) ([]TodoDayItem, error)
}
