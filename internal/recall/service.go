package recall

import (
	"errors"
	"time"

	"github.com/maumlog/maumlog-backend/internal/emotion"
	"github.com/maumlog/maumlog-backend/internal/platform/database"
	"github.com/maumlog/maumlog-backend/internal/record"
	"github.com/maumlog/maumlog-backend/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DueItem 是回顾列表的一行。
type DueItem struct {
	RecordID       uint               `json:"recordId"`
	Title          string             `json:"title"`
	EmotionType    emotion.Emotion    `json:"emotion_type"`
	ExpressionType emotion.Expression `json:"expression_type"`
	RevealAt       time.Time          `json:"reveal_at"`
	CreatedAt      time.Time          `json:"created_at"`
}

// ListPending 返回已揭示但尚未回顾的记录，按揭示时刻降序。
// 状态机：pending-reveal（now < reveal_at）之后进入 revealed-unacknowledged，
// 直到Acknowledgment出现为止都会留在这个列表里。
func ListPending(userID string, now time.Time) ([]DueItem, error) {
	var items []DueItem
	err := database.DB.Table("records").
		Select("records.id AS record_id, records.title, records.emotion_type, records.expression_type, records.reveal_at, records.created_at").
		Joins("LEFT JOIN acknowledgments ON acknowledgments.record_id = records.id AND acknowledgments.user_id = records.user_id").
		Where("records.user_id = ? AND records.reveal_at <= ? AND acknowledgments.id IS NULL", userID, now).
		Order("records.reveal_at DESC, records.id DESC").
		Find(&items).Error
	if err != nil {
		return nil, apperror.Transient("未回顾列表查询失败", err)
	}
	return items, nil
}

// Acknowledge 把一条已揭示的记录标记为已回顾。
// 揭示时刻未到 → TooEarly；重复确认是无害的no-op（幂等）。
func Acknowledge(userID string, recordID uint, now time.Time) error {
	var rec record.Record
	if err := database.DB.First(&rec, recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("感情记录不存在")
		}
		return apperror.Transient("记录查询失败", err)
	}
	if rec.UserID != userID {
		return apperror.Forbidden("没有权限回顾这条记录")
	}
	if now.Before(rec.RevealAt) {
		return apperror.TooEarly("还没有到回顾的时刻")
	}

	ack := Acknowledgment{UserID: userID, RecordID: recordID}
	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "record_id"}},
		DoNothing: true,
	}).Create(&ack).Error
	if err != nil {
		return apperror.Transient("回顾标记写入失败", err)
	}
	return nil
}

// ListAgo 返回恰好N个月前的"今天这一天"写下的记录（N ∈ {6, 12}）。
func ListAgo(userID string, months int, now time.Time, loc *time.Location) ([]DueItem, error) {
	if months != 6 && months != 12 {
		return nil, apperror.InvalidState("months必须是6或12")
	}

	targetDate := emotion.DateOf(now.AddDate(0, -months, 0), loc)

	var items []DueItem
	err := database.DB.Table("records").
		Select("id AS record_id, title, emotion_type, expression_type, reveal_at, created_at").
		Where("user_id = ? AND entry_date = ?", userID, targetDate).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, apperror.Transient("回顾记录查询失败", err)
	}
	return items, nil
}

// TodayBundle 是"今天的回顾提醒"读模型：6个月前和1年前的记录各一组。
type TodayBundle struct {
	SixMonths []DueItem `json:"sixMonths"`
	OneYear   []DueItem `json:"oneYear"`
}

// GetTodayBundle 返回今天应该回顾的两组记录。
func GetTodayBundle(userID string, now time.Time, loc *time.Location) (*TodayBundle, error) {
	six, err := ListAgo(userID, 6, now, loc)
	if err != nil {
		return nil, err
	}
	twelve, err := ListAgo(userID, 12, now, loc)
	if err != nil {
		return nil, err
	}
	return &TodayBundle{SixMonths: six, OneYear: twelve}, nil
}
