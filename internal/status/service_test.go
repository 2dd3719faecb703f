package status

import (
	"fmt"
	"testing"
	"time"

	"github.com/maumlog/maumlog-backend/internal/emotion"
	"github.com/maumlog/maumlog-backend/internal/platform/database"
	"github.com/maumlog/maumlog-backend/pkg/apperror"
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
	require.NoError(t, db.AutoMigrate(&TodayStatus{}))
}

func emoPtr(e emotion.Emotion) *emotion.Emotion        { return &e }
func exprPtr(x emotion.Expression) *emotion.Expression { return &x }
func f64(v float64) *float64                           { return &v }

func TestPingLastWriteWins(t *testing.T) {
	setupDB(t)
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	_, err := Ping("user-1", emoPtr(emotion.EmotionJoy), exprPtr(emotion.ExpressionPositive),
		f64(37.5), f64(127.0), now)
	require.NoError(t, err)

	got, err := GetLatest("user-1")
	require.NoError(t, err)
	require.NotNil(t, got.EmotionType)
	assert.Equal(t, emotion.EmotionJoy, *got.EmotionType)

	// 第二次写入无条件覆盖
	_, err = Ping("user-1", emoPtr(emotion.EmotionWorry), exprPtr(emotion.ExpressionNegative),
		nil, nil, now.Add(time.Hour))
	require.NoError(t, err)

	got, err = GetLatest("user-1")
	require.NoError(t, err)
	assert.Equal(t, emotion.EmotionWorry, *got.EmotionType)
	assert.Nil(t, got.Latitude)

	// 每个用户只有一行
	var count int64
	database.DB.Model(&TodayStatus{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestPingClearsEmotion(t *testing.T) {
	setupDB(t)
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	_, err := Ping("user-1", emoPtr(emotion.EmotionJoy), exprPtr(emotion.ExpressionPositive), nil, nil, now)
	require.NoError(t, err)

	// 只带定位的心跳：情绪被显式清空为NULL（"没有情绪"不同于"未知"）
	_, err = Ping("user-1", nil, nil, f64(37.5), f64(127.0), now.Add(time.Hour))
	require.NoError(t, err)

	got, err := GetLatest("user-1")
	require.NoError(t, err)
	assert.Nil(t, got.EmotionType)
	require.NotNil(t, got.Latitude)
	assert.Equal(t, 37.5, *got.Latitude)
}

func TestPingValidation(t *testing.T) {
	setupDB(t)
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	bad := emotion.Emotion("bliss")
	_, err := Ping("user-1", &bad, nil, nil, nil, now)
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))

	// 经纬度必须成对出现且在范围内
	_, err = Ping("user-1", nil, nil, f64(37.5), nil, now)
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))
	_, err = Ping("user-1", nil, nil, f64(91.0), f64(0.0), now)
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))
	_, err = Ping("user-1", nil, nil, f64(0.0), f64(181.0), now)
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))
}

func TestGetLatestUnknownUser(t *testing.T) {
	setupDB(t)
	_, err := GetLatest("ghost")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}
