package schema

import "time"

// Category 习惯分类
type Category struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:64;index:idx_categories_user" json:"user_id"`
	Name      string    `gorm:"size:128" json:"name"`
	Color     string    `gorm:"size:16" json:"color"`
	Emoji     string    `gorm:"size:16" json:"emoji"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}
