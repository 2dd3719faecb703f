package draft

import (
	"time"

	"github.com/maumlog/maumlog-backend/internal/emotion"
)

// Status 是草稿的生命周期状态。
// open → confirmed 是终态迁移（确认后行随即删除，状态只用于阻挡并发的二次确认）；
// open → 取消则直接删除行。
type Status string

const (
	StatusOpen      Status = "open"
	StatusConfirmed Status = "confirmed"
)

// Draft 是一条可变的、未确认的记录草稿。
// 只有创建者本人可见可改；确认或取消后销毁。
// 必填字段（情绪类别、可见级别）允许暂缺，在确认时才强制校验。
type Draft struct {
	ID uint `gorm:"primarykey" json:"draftId"`

	UserID string `gorm:"index;type:varchar(36);not null" json:"-"`

	Title          string              `gorm:"type:varchar(100)" json:"title"`
	EmotionType    *emotion.Emotion    `gorm:"type:varchar(16)" json:"emotion_type"`
	ExpressionType *emotion.Expression `gorm:"type:varchar(16)" json:"expression_type"`
	Content        string              `gorm:"type:text" json:"content"`
	Place          string              `gorm:"type:varchar(255)" json:"place"`
	Visibility     *emotion.Visibility `gorm:"type:varchar(16)" json:"visibility"`

	// Period 是延迟揭示档位（6或12个月），nil表示即时记录
	Period *int `json:"period"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	Status Status `gorm:"type:varchar(16);not null;default:open" json:"status"`

	// CreatedAt 是"感受发生的时刻"——确认时它会原样成为记录的创建时间，
	// 即使确认被拖延了很久
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// DraftImage 是草稿上暂存的图片引用，确认时按顺序转移到记录。
type DraftImage struct {
	ID        uint   `gorm:"primarykey"`
	DraftID   uint   `gorm:"index;not null"`
	URL       string `gorm:"type:varchar(512);not null"`
	SortOrder int    `gorm:"not null"`
}

// MaxImagesPerDraft 是草稿暂存图片的上限，与记录一致。
const MaxImagesPerDraft = 4
