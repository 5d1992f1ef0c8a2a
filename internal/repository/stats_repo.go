package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yuqie6/planly/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StreakFields 连续打卡统计的可更新字段集合
type StreakFields struct {
	CurrentStreak     int
	LongestStreak     int
	LastCompletedDate string // 空串表示清除
	TotalCompletions  int
}

// StatsRepository 统计仓储
type StatsRepository struct {
	db *gorm.DB
}

// NewStatsRepository 创建统计仓储
func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Get 按 (user, scope, scopeID) 查询统计行，未找到返回 (nil, nil)
func (r *StatsRepository) Get(ctx context.Context, userID string, scope schema.StatsScope, scopeID string) (*schema.Stats, error) {
	var stats schema.Stats
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND scope = ? AND scope_id = ?", userID, scope, scopeID).
		First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询统计行失败: %w", err)
	}
	return &stats, nil
}

// Put 写入统计行；同 key 冲突时重置为给定值（HABIT 维度建新习惯时使用）
func (r *StatsRepository) Put(ctx context.Context, stats *schema.Stats) error {
	if stats == nil {
		return fmt.Errorf("stats 不能为空")
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "scope"}, {Name: "scope_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"current_streak", "longest_streak", "last_completed_date", "total_completions", "updated_at",
		}),
	}).Create(stats).Error
	if err != nil {
		return fmt.Errorf("写入统计行失败: %w", err)
	}
	return nil
}

// PutIfAbsent 仅在统计行不存在时创建，返回是否创建
// CATEGORY/USER 维度用它保证后建的习惯不会清掉已累计的连续记录
func (r *StatsRepository) PutIfAbsent(ctx context.Context, stats *schema.Stats) (bool, error) {
	if stats == nil {
		return false, fmt.Errorf("stats 不能为空")
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "scope"}, {Name: "scope_id"}},
		DoNothing: true,
	}).Create(stats)
	if res.Error != nil {
		return false, fmt.Errorf("创建统计行失败: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// UpdateStreakFields 更新连续打卡字段（全字段覆盖写，longest 的单调性由 service 层保证）
func (r *StatsRepository) UpdateStreakFields(ctx context.Context, userID string, scope schema.StatsScope, scopeID string, fields StreakFields) error {
	res := r.db.WithContext(ctx).Model(&schema.Stats{}).
		Where("user_id = ? AND scope = ? AND scope_id = ?", userID, scope, scopeID).
		Updates(map[string]interface{}{
			"current_streak":      fields.CurrentStreak,
			"longest_streak":      fields.LongestStreak,
			"last_completed_date": fields.LastCompletedDate,
			"total_completions":   fields.TotalCompletions,
			"updated_at":          time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("更新统计字段失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("统计行不存在: user=%s scope=%s scope_id=%s", userID, scope, scopeID)
	}
	return nil
}
