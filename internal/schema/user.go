package schema

import "time"

// User 用户账号（鉴权在外层网关处理，这里只保留统计引擎需要的字段）
type User struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex" json:"email"`
	Name      string    `gorm:"size:128" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
