package schema

import "time"

// TodoStatus 打卡记录状态
type TodoStatus string

const (
	StatusPending TodoStatus = "pending"
	StatusSkipped TodoStatus = "skipped"
	StatusDone    TodoStatus = "done"
)

// StatusOrder 列表排序权重：pending 在前，done 在后
var StatusOrder = map[TodoStatus]int{
	StatusPending: 0,
	StatusSkipped: 1,
	StatusDone:    2,
}

// PeriodOrder 时段排序权重
var PeriodOrder = map[string]int{
	"Morning":   1,
	"Afternoon": 2,
	"Evening":   3,
	"Anytime":   4,
}

// Todo 打卡记录 - 每 (user, date, habit) 至多一行；缺行等价于 pending
// 数据量级：每用户万级/年
type Todo struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      string     `gorm:"size:64;uniqueIndex:uniq_todos_user_date_habit" json:"user_id"`
	Date        string     `gorm:"size:10;uniqueIndex:uniq_todos_user_date_habit" json:"date"` // YYYY-MM-DD
	HabitID     string     `gorm:"size:36;uniqueIndex:uniq_todos_user_date_habit" json:"habit_id"`
	Status      TodoStatus `gorm:"size:16;default:pending" json:"status"`
	Progress    int        `gorm:"default:0" json:"progress"` // done 时封顶到 target，skipped 时归零
	Target      int        `gorm:"default:0" json:"target"`
	Notes       string     `gorm:"type:text" json:"notes"`
	CompletedAt *time.Time `json:"completed_at,omitempty"` // 仅 done 时写入
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Todo) TableName() string {
	return "todos"
}
