package schema

import "time"

// StatsScope 统计聚合维度
type StatsScope string

const (
	ScopeHabit    StatsScope = "HABIT"
	ScopeCategory StatsScope = "CATEGORY"
	ScopeUser     StatsScope = "USER"
)

// Stats 连续打卡统计行 - 每 (user, scope, scope_id) 一行
// HABIT 维度 scope_id 为 habitId，CATEGORY 维度为 categoryId，USER 维度为空串
type Stats struct {
	ID                int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            string     `gorm:"size:64;uniqueIndex:uniq_stats_user_scope" json:"user_id"`
	Scope             StatsScope `gorm:"size:16;uniqueIndex:uniq_stats_user_scope" json:"scope"`
	ScopeID           string     `gorm:"size:36;uniqueIndex:uniq_stats_user_scope" json:"scope_id"`
	CurrentStreak     int        `gorm:"default:0" json:"current_streak"`
	LongestStreak     int        `gorm:"default:0" json:"longest_streak"` // 单调不减，只升不降
	LastCompletedDate string     `gorm:"size:10" json:"last_completed_date"`
	TotalCompletions  int        `gorm:"default:0" json:"total_completions"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Stats) TableName() string {
	return "stats"
}
