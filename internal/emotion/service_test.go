package emotion_test

import (
	"testing"
	"time"

	"github.com/maumlog/maumlog-backend/internal/emotion"
	"github.com/maumlog/maumlog-backend/internal/platform/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCalendarMonth(t *testing.T) {
	setupDB(t)
	userID := "user-1"

	addRecord(t, userID, emotion.EmotionJoy, emotion.ExpressionPositive,
		time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	addRecord(t, userID, emotion.EmotionSadness, emotion.ExpressionNegative,
		time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC))
	// 别的月份不出现
	addRecord(t, userID, emotion.EmotionAnger, emotion.ExpressionNegative,
		time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC))
	recompute(t, userID, "2025-03-10")
	recompute(t, userID, "2025-03-02")
	recompute(t, userID, "2025-04-01")

	days, err := emotion.GetCalendarMonth(userID, "2025-03")
	require.NoError(t, err)
	require.Len(t, days, 2)
	// 日期升序
	assert.Equal(t, "2025-03-02", days[0].Date)
	assert.Equal(t, "2025-03-10", days[1].Date)
}

func TestGetMonthlyStatsZeroFilled(t *testing.T) {
	setupDB(t)
	userID := "user-1"

	addRecord(t, userID, emotion.EmotionJoy, emotion.ExpressionPositive,
		time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	recompute(t, userID, "2025-03-10")

	view, err := emotion.GetMonthlyStats(userID, "2025-03")
	require.NoError(t, err)
	assert.Len(t, view.Counts, len(emotion.AllEmotions))
	assert.Equal(t, 1, view.Counts[emotion.EmotionJoy])
	assert.Equal(t, 0, view.Counts[emotion.EmotionUpset])
}

func TestGetStatsSummaryPercentages(t *testing.T) {
	setupDB(t)
	userID := "user-1"
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	addRecord(t, userID, emotion.EmotionJoy, emotion.ExpressionPositive, base)
	addRecord(t, userID, emotion.EmotionJoy, emotion.ExpressionPositive, base.Add(time.Hour))
	addRecord(t, userID, emotion.EmotionSadness, emotion.ExpressionNegative, base.AddDate(0, 0, 1))
	addRecord(t, userID, emotion.EmotionAnger, emotion.ExpressionNegative, base.AddDate(0, 0, 2))

	view, err := emotion.GetStatsSummary(userID, "2025-03")
	require.NoError(t, err)
	assert.Equal(t, 4, view.Total)
	assert.Equal(t, 2, view.Breakdown[emotion.EmotionJoy].Count)
	assert.Equal(t, 50.0, view.Breakdown[emotion.EmotionJoy].Percent)
	assert.Equal(t, 25.0, view.Breakdown[emotion.EmotionSadness].Percent)
	assert.Equal(t, 0.0, view.Breakdown[emotion.EmotionProud].Percent)
}

func TestGetReportBucketsInLocation(t *testing.T) {
	setupDB(t)
	userID := "user-1"
	seoul := time.FixedZone("KST", 9*60*60)

	// UTC周一23点 = 首尔周二8点
	addRecord(t, userID, emotion.EmotionJoy, emotion.ExpressionPositive,
		time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC))

	cells, err := emotion.GetReport(userID, seoul)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, int(time.Tuesday), cells[0].Weekday)
	assert.Equal(t, 8, cells[0].Hour)
	assert.Equal(t, 1, cells[0].Count)
}

func TestGetHotspotsGroupsByCoordinates(t *testing.T) {
	setupDB(t)
	userID := "user-1"
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	lat, lng := 37.5665, 126.978

	for i := 0; i < 2; i++ {
		rec := addRecord(t, userID, emotion.EmotionJoy, emotion.ExpressionPositive, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, database.DB.Model(rec).
			Updates(map[string]interface{}{"latitude": lat, "longitude": lng}).Error)
	}
	// 无定位的不参与
	addRecord(t, userID, emotion.EmotionSadness, emotion.ExpressionNegative, base.Add(3*time.Hour))

	spots, err := emotion.GetHotspots(userID)
	require.NoError(t, err)
	require.Len(t, spots, 1)
	assert.Equal(t, 2, spots[0].Count)
	assert.Equal(t, lat, spots[0].Latitude)
}
