package emotion_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/maumlog/maumlog-backend/internal/emotion"
	"github.com/maumlog/maumlog-backend/internal/platform/database"
	"github.com/maumlog/maumlog-backend/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	database.DB = db
	database.RDB = nil
	require.NoError(t, db.AutoMigrate(
		&record.Record{}, &record.RecordImage{},
		&emotion.CalendarDay{}, &emotion.MonthlyStat{},
	))
}

func addRecord(t *testing.T, userID string, e emotion.Emotion, x emotion.Expression, createdAt time.Time) *record.Record {
	t.Helper()
	rec := &record.Record{
		UserID:         userID,
		EmotionType:    e,
		ExpressionType: x,
		RevealAt:       createdAt,
		Visibility:     emotion.VisibilityPrivate,
		EntryDate:      emotion.DateOf(createdAt, time.UTC),
		CreatedAt:      createdAt,
	}
	require.NoError(t, database.DB.Create(rec).Error)
	return rec
}

func recompute(t *testing.T, userID, date string) {
	t.Helper()
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		return emotion.RecomputeDailySummary(tx, userID, date)
	})
	require.NoError(t, err)
}

func calendarDay(t *testing.T, userID, date string) (*emotion.CalendarDay, bool) {
	t.Helper()
	var day emotion.CalendarDay
	err := database.DB.Where("user_id = ? AND date = ?", userID, date).First(&day).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false
	}
	require.NoError(t, err)
	return &day, true
}

func statCount(t *testing.T, userID, yearMonth string, e emotion.Emotion) int {
	t.Helper()
	var stat emotion.MonthlyStat
	err := database.DB.Where("user_id = ? AND year_month = ? AND emotion_type = ?", userID, yearMonth, e).
		First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0
	}
	require.NoError(t, err)
	return stat.Count
}

func TestRecomputeModeAndCounters(t *testing.T) {
	setupDB(t)
	userID := "user-1"
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	// joy, joy, sadness：多数派joy胜出
	addRecord(t, userID, emotion.EmotionJoy, emotion.ExpressionPositive, base)
	addRecord(t, userID, emotion.EmotionJoy, emotion.ExpressionNeutral, base.Add(1*time.Hour))
	s := addRecord(t, userID, emotion.EmotionSadness, emotion.ExpressionNegative, base.Add(2*time.Hour))
	recompute(t, userID, "2025-03-10")

	day, ok := calendarDay(t, userID, "2025-03-10")
	require.True(t, ok)
	assert.Equal(t, emotion.EmotionJoy, day.EmotionType)
	// 极性来自胜出类别中最新的那条记录
	assert.Equal(t, emotion.ExpressionNeutral, day.ExpressionType)
	assert.Equal(t, 1, statCount(t, userID, "2025-03", emotion.EmotionJoy))
	assert.Equal(t, 0, statCount(t, userID, "2025-03", emotion.EmotionSadness))

	// 把sadness改成anger：2 joy vs 1 anger，胜出者不变，计数器不动
	require.NoError(t, database.DB.Model(s).Update("emotion_type", emotion.EmotionAnger).Error)
	recompute(t, userID, "2025-03-10")
	day, _ = calendarDay(t, userID, "2025-03-10")
	assert.Equal(t, emotion.EmotionJoy, day.EmotionType)
	assert.Equal(t, 1, statCount(t, userID, "2025-03", emotion.EmotionJoy))

	// 删掉两条joy：anger成为唯一类别，计数器从joy移到anger
	require.NoError(t, database.DB.
		Where("user_id = ? AND emotion_type = ?", userID, emotion.EmotionJoy).
		Delete(&record.Record{}).Error)
	recompute(t, userID, "2025-03-10")
	day, _ = calendarDay(t, userID, "2025-03-10")
	assert.Equal(t, emotion.EmotionAnger, day.EmotionType)
	assert.Equal(t, 0, statCount(t, userID, "2025-03", emotion.EmotionJoy))
	assert.Equal(t, 1, statCount(t, userID, "2025-03", emotion.EmotionAnger))

	// 删掉最后一条：聚合行消失，计数器归零
	require.NoError(t, database.DB.Delete(&record.Record{}, s.ID).Error)
	recompute(t, userID, "2025-03-10")
	_, ok = calendarDay(t, userID, "2025-03-10")
	assert.False(t, ok)
	assert.Equal(t, 0, statCount(t, userID, "2025-03", emotion.EmotionAnger))
}

func TestRecomputeTieBreakByLatest(t *testing.T) {
	setupDB(t)
	userID := "user-1"
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	// 1 joy vs 1 sadness 平局，sadness那条更新，sadness胜出
	addRecord(t, userID, emotion.EmotionJoy, emotion.ExpressionPositive, base)
	addRecord(t, userID, emotion.EmotionSadness, emotion.ExpressionNegative, base.Add(1*time.Hour))
	recompute(t, userID, "2025-03-10")

	day, ok := calendarDay(t, userID, "2025-03-10")
	require.True(t, ok)
	assert.Equal(t, emotion.EmotionSadness, day.EmotionType)

	// 再加一条joy打破平局
	addRecord(t, userID, emotion.EmotionJoy, emotion.ExpressionNeutral, base.Add(30*time.Minute))
	recompute(t, userID, "2025-03-10")
	day, _ = calendarDay(t, userID, "2025-03-10")
	assert.Equal(t, emotion.EmotionJoy, day.EmotionType)
	assert.Equal(t, 1, statCount(t, userID, "2025-03", emotion.EmotionJoy))
	assert.Equal(t, 0, statCount(t, userID, "2025-03", emotion.EmotionSadness))
}

func TestRecomputeIsIdempotent(t *testing.T) {
	setupDB(t)
	userID := "user-1"
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	addRecord(t, userID, emotion.EmotionProud, emotion.ExpressionPositive, base)
	for i := 0; i < 5; i++ {
		recompute(t, userID, "2025-03-10")
	}

	assert.Equal(t, 1, statCount(t, userID, "2025-03", emotion.EmotionProud))

	var dayCount int64
	require.NoError(t, database.DB.Model(&emotion.CalendarDay{}).
		Where("user_id = ?", userID).Count(&dayCount).Error)
	assert.EqualValues(t, 1, dayCount)
}

func TestRecomputeIsolatesUsersAndDates(t *testing.T) {
	setupDB(t)
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	addRecord(t, "user-1", emotion.EmotionJoy, emotion.ExpressionPositive, base)
	addRecord(t, "user-2", emotion.EmotionUpset, emotion.ExpressionNegative, base)
	addRecord(t, "user-1", emotion.EmotionWorry, emotion.ExpressionNegative, base.AddDate(0, 0, 1))
	recompute(t, "user-1", "2025-03-10")
	recompute(t, "user-2", "2025-03-10")
	recompute(t, "user-1", "2025-03-11")

	day, ok := calendarDay(t, "user-1", "2025-03-10")
	require.True(t, ok)
	assert.Equal(t, emotion.EmotionJoy, day.EmotionType)

	day, ok = calendarDay(t, "user-2", "2025-03-10")
	require.True(t, ok)
	assert.Equal(t, emotion.EmotionUpset, day.EmotionType)

	assert.Equal(t, 1, statCount(t, "user-1", "2025-03", emotion.EmotionJoy))
	assert.Equal(t, 1, statCount(t, "user-1", "2025-03", emotion.EmotionWorry))
	assert.Equal(t, 1, statCount(t, "user-2", "2025-03", emotion.EmotionUpset))
}

func TestDateOfUsesLocation(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	// UTC的3月10日23点在首尔已经是3月11日
	ts := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-10", emotion.DateOf(ts, time.UTC))
	assert.Equal(t, "2025-03-11", emotion.DateOf(ts, seoul))
	assert.Equal(t, "2025-03", emotion.MonthOf("2025-03-11"))
}
