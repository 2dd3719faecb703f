package record

import (
	"time"

	"github.com/maumlog/maumlog-backend/internal/emotion"
)

// Record 是一条已确认的情绪记录，是所有派生视图的事实来源。
// 只能通过草稿确认或直接创建产生；除了ID、所有者和创建时间之外的字段都可由所有者修改。
type Record struct {
	ID uint `gorm:"primarykey" json:"recordId"`

	UserID string `gorm:"index;type:varchar(36);not null" json:"userId"`

	Title          string             `gorm:"type:varchar(100)" json:"title"`
	EmotionType    emotion.Emotion    `gorm:"type:varchar(16);not null" json:"emotion_type"`
	ExpressionType emotion.Expression `gorm:"type:varchar(16)" json:"expression_type"`
	Content        string             `gorm:"type:text" json:"content"`

	// Img 是代表图片的引用（外部对象存储的URL/键）
	Img string `gorm:"type:varchar(512)" json:"img"`

	// RevealAt 是所有者允许回顾这条记录的时刻。
	// 即时记录等于创建时间；延迟记录等于创建时间+6或12个月。
	RevealAt time.Time `gorm:"not null" json:"reveal_at"`

	// Period 是延迟档位（6或12个月），即时记录为NULL
	Period *int `json:"period"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	Place      string             `gorm:"type:varchar(255)" json:"place"`
	Visibility emotion.Visibility `gorm:"type:varchar(16);not null" json:"visibility"`

	// EntryDate 是聚合键："感受发生的那一天"（配置时区下的日历日期）。
	// 在创建时从CreatedAt固定下来，之后的编辑不再改变它——聚合始终回到这一天。
	EntryDate string `gorm:"index:idx_record_user_date;type:varchar(10);not null" json:"-"`

	// CreatedAt 来自草稿的创建时间（不是确认操作的时间），一经写入不可变
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// RecordImage 是记录的附图，按SortOrder排序，第一张是代表图片。
// 图片本体由外部上传服务管理，这里只保存引用和顺序。
type RecordImage struct {
	ID        uint   `gorm:"primarykey"`
	RecordID  uint   `gorm:"index;not null"`
	URL       string `gorm:"type:varchar(512);not null"`
	SortOrder int    `gorm:"not null"`
}

// MaxImagesPerRecord 是单条记录的附图上限。
const MaxImagesPerRecord = 4
