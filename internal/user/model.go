package user

import (
	"time"

	"gorm.io/gorm"
)

// User 定义了用户在SQLite数据库中的持久化模型。
// 身份联合登录在核心之外完成，这里只保存匿名会话的所有者身份。
type User struct {
	// UUID 是用户的主键，由会话签发时生成（UUID v7）。
	UUID string `gorm:"primarykey;type:varchar(36)"`

	// Name 和 Img 是展示用的可选资料字段。
	Name string `gorm:"type:varchar(64)"`
	Img  string `gorm:"type:varchar(512)"`

	// 部分gorm.Model，由GORM自动管理
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
