package schema

import (
	"strconv"
	"time"
)

// PeriodType 习惯的重复规则类型（封闭枚举，未知值按“永不到期”处理，见 service.IsDueOn）
type PeriodType string

const (
	PeriodEveryDay    PeriodType = "every_day"           // 每天
	PeriodDaysOfWeek  PeriodType = "specific_days_week"  // 每周指定星期，period_value 形如 "MON,WED,FRI"
	PeriodDaysOfMonth PeriodType = "specific_days_month" // 每月指定日期，period_value 形如 "1,15,30"
)

// Habit 习惯定义，每用户通常几十条
type Habit struct {
	ID              string     `gorm:"primaryKey;size:36" json:"id"`
	UserID          string     `gorm:"size:64;index:idx_habits_user" json:"user_id"`
	CategoryID      string     `gorm:"size:36;index" json:"category_id"`
	Title           string     `gorm:"size:255" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	Color           string     `gorm:"size:16" json:"color"`
	Emoji           string     `gorm:"size:16" json:"emoji"`
	Unit            string     `gorm:"size:16" json:"unit"`   // count, pg, km, ml
	Value           string     `gorm:"size:16" json:"value"`  // 目标量（字符串存储，解析见 TargetValue）
	PeriodType      PeriodType `gorm:"size:32" json:"period_type"`
	PeriodValue     string     `gorm:"size:128" json:"period_value"` // SPECIFIC_* 类型必填
	Period          string     `gorm:"size:16" json:"period"`        // Morning, Afternoon, Evening, Anytime
	ReminderEnabled bool       `json:"reminder_enabled"`
	ReminderTime    string     `gorm:"size:8" json:"reminder_time"`
	StartDate       string     `gorm:"size:10;index" json:"start_date"` // YYYY-MM-DD（含）
	EndDate         string     `gorm:"size:10" json:"end_date"`         // YYYY-MM-DD（含），空串表示无截止
	Active          bool       `gorm:"default:true" json:"active"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Habit) TableName() string {
	return "habits"
}

// TargetValue 解析目标量，解析失败回退为 1
func (h *Habit) TargetValue() int {
	v, err := strconv.Atoi(h.Value)
	if err != nil || v <= 0 {
		return 1
	}
	return v
}
