package status

import (
	"time"

	"github.com/maumlog/maumlog-backend/internal/emotion"
)

// TodayStatus 是"最新已知状态"快照：每个用户一行，
// 保存最近一次确认写入的情绪/表达/定位。
// 语义是last-write-wins：任何携带这些数据的确认写入都会无条件覆盖它。
// 情绪字段为NULL表示"当前没有情绪"，与"未知"（行不存在）是两种不同状态。
type TodayStatus struct {
	// UserID 是主键
	UserID string `gorm:"primarykey;type:varchar(36)" json:"-"`

	EmotionType    *emotion.Emotion    `gorm:"type:varchar(16)" json:"emotion_type"`
	ExpressionType *emotion.Expression `gorm:"type:varchar(16)" json:"expression_type"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	UpdatedAt time.Time `json:"updated_at"`
}

// --- Redis 键名常量 ---

const (
	// LatestKey 是一个 Redis Hash 的键，缓存每个用户的最新状态快照。
	// Field: 用户UUID；Value: TodayStatus 的JSON序列化。
	// 它只是today_statuses表的热镜像，地图/附近功能从这里读取。
	LatestKey = "status:latest"
)
