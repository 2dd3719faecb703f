package emotion

import "time"

// CalendarDay 是每日聚合视图：每个(用户, 日期)至多一行，
// 保存当天的代表情绪和它的表达极性。
// 不变量：当且仅当当天至少存在一条记录时，这一行才存在。
type CalendarDay struct {
	ID uint `gorm:"primarykey" json:"-"`

	UserID string `gorm:"uniqueIndex:idx_calendar_user_date;type:varchar(36);not null" json:"-"`

	// Date 是"YYYY-MM-DD"格式的本地日历日期
	Date string `gorm:"uniqueIndex:idx_calendar_user_date;type:varchar(10);not null" json:"date"`

	EmotionType    Emotion    `gorm:"type:varchar(16);not null" json:"emotion_type"`
	ExpressionType Expression `gorm:"type:varchar(16)" json:"expression_type"`

	UpdatedAt time.Time `json:"-"`
}

// MonthlyStat 是每月计数器：每个(用户, 年月, 情绪类别)一行。
// 不变量：计数等于该月中代表情绪为该类别的天数，
// 只通过±1增量维护，绝不整月重算。
type MonthlyStat struct {
	ID uint `gorm:"primarykey" json:"-"`

	UserID string `gorm:"uniqueIndex:idx_stat_user_month_emotion;type:varchar(36);not null" json:"-"`

	// YearMonth 是"YYYY-MM"格式的年月
	YearMonth string `gorm:"uniqueIndex:idx_stat_user_month_emotion;type:varchar(7);not null" json:"year_month"`

	EmotionType Emotion `gorm:"uniqueIndex:idx_stat_user_month_emotion;type:varchar(16);not null" json:"emotion_type"`

	// Count 非负；减量在SQL层面以0为下限
	Count int `gorm:"not null;default:0" json:"count"`

	UpdatedAt time.Time `json:"-"`
}
