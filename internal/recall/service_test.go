package recall

import (
	"fmt"
	"testing"
	"time"

	"github.com/maumlog/maumlog-backend/internal/emotion"
	"github.com/maumlog/maumlog-backend/internal/platform/database"
	"github.com/maumlog/maumlog-backend/internal/platform/metadata"
	"github.com/maumlog/maumlog-backend/internal/record"
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
	require.NoError(t, db.AutoMigrate(
		&record.Record{}, &Acknowledgment{}, &metadata.Metadata{},
	))
}

func seedRecord(t *testing.T, userID string, createdAt, revealAt time.Time) *record.Record {
	t.Helper()
	rec := &record.Record{
		UserID:         userID,
		EmotionType:    emotion.EmotionJoy,
		ExpressionType: emotion.ExpressionNeutral,
		RevealAt:       revealAt,
		Visibility:     emotion.VisibilityPrivate,
		EntryDate:      emotion.DateOf(createdAt, time.UTC),
		CreatedAt:      createdAt,
	}
	require.NoError(t, database.DB.Create(rec).Error)
	return rec
}

func TestAcknowledgeRespectsRevealTime(t *testing.T) {
	setupDB(t)
	created := time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)
	reveal := created.AddDate(0, 6, 0)
	rec := seedRecord(t, "user-1", created, reveal)

	// 揭示时刻之前一律拒绝
	err := Acknowledge("user-1", rec.ID, reveal.Add(-time.Minute))
	assert.Equal(t, apperror.KindTooEarly, apperror.KindOf(err))

	// 到点后成功，重复确认是幂等的
	require.NoError(t, Acknowledge("user-1", rec.ID, reveal))
	require.NoError(t, Acknowledge("user-1", rec.ID, reveal.Add(time.Hour)))

	var count int64
	database.DB.Model(&Acknowledgment{}).
		Where("user_id = ? AND record_id = ?", "user-1", rec.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	// 他人不能替所有者回顾
	err = Acknowledge("user-2", rec.ID, reveal)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	err = Acknowledge("user-1", 99999, reveal)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestListPendingExcludesAcked(t *testing.T) {
	setupDB(t)
	created := time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)
	now := created.AddDate(0, 7, 0)

	first := seedRecord(t, "user-1", created, created.AddDate(0, 6, 0))
	second := seedRecord(t, "user-1", created.Add(time.Hour), created.Add(time.Hour).AddDate(0, 6, 0))
	// 还没到揭示时刻的不出现
	seedRecord(t, "user-1", created, created.AddDate(0, 12, 0))
	// 他人的不出现
	seedRecord(t, "user-2", created, created.AddDate(0, 6, 0))

	items, err := ListPending("user-1", now)
	require.NoError(t, err)
	require.Len(t, items, 2)
	// 揭示时刻降序
	assert.Equal(t, second.ID, items[0].RecordID)
	assert.Equal(t, first.ID, items[1].RecordID)

	// 回顾后从列表中消失
	require.NoError(t, Acknowledge("user-1", second.ID, now))
	items, err = ListPending("user-1", now)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, first.ID, items[0].RecordID)
}

func TestListAgoMatchesCalendarDate(t *testing.T) {
	setupDB(t)
	now := time.Date(2025, 7, 5, 12, 0, 0, 0, time.UTC)

	// 恰好6个月前那天的记录
	hit := seedRecord(t, "user-1", time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC), now)
	// 前一天的不算
	seedRecord(t, "user-1", time.Date(2025, 1, 4, 9, 0, 0, 0, time.UTC), now)

	items, err := ListAgo("user-1", 6, now, time.UTC)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, hit.ID, items[0].RecordID)

	_, err = ListAgo("user-1", 3, now, time.UTC)
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))

	bundle, err := GetTodayBundle("user-1", now, time.UTC)
	require.NoError(t, err)
	assert.Len(t, bundle.SixMonths, 1)
	assert.Empty(t, bundle.OneYear)
}

// captureNotifier 把提醒收进内存，代替Redis出站队列。
type captureNotifier struct {
	notes []*Notification
}

func (c *captureNotifier) Notify(n *Notification) error {
	c.notes = append(c.notes, n)
	return nil
}

func TestRunSweepGroupsAndDedupes(t *testing.T) {
	setupDB(t)
	capture := &captureNotifier{}
	SetNotifier(capture)
	defer SetNotifier(redisOutboxNotifier{})

	now := time.Date(2025, 7, 5, 9, 0, 0, 0, time.UTC)
	sixAgo := time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)
	yearAgo := time.Date(2024, 7, 5, 10, 0, 0, 0, time.UTC)

	// user-1: 6个月前两条，其中一条已回顾
	due := seedRecord(t, "user-1", sixAgo, sixAgo)
	acked := seedRecord(t, "user-1", sixAgo.Add(time.Hour), sixAgo.Add(time.Hour))
	require.NoError(t, Acknowledge("user-1", acked.ID, now))
	// user-2: 1年前一条
	seedRecord(t, "user-2", yearAgo, yearAgo)
	// 不在窗口内的
	seedRecord(t, "user-3", time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC), now)

	require.NoError(t, RunSweep(now, time.UTC))
	require.Len(t, capture.notes, 2)

	byUser := make(map[string]*Notification)
	for _, n := range capture.notes {
		byUser[n.UserID] = n
	}
	require.Contains(t, byUser, "user-1")
	require.Contains(t, byUser, "user-2")
	require.Len(t, byUser["user-1"].Items, 1)
	assert.Equal(t, due.ID, byUser["user-1"].Items[0].RecordID)
	assert.Equal(t, "2025-07-05", byUser["user-1"].SweepDate)

	// 同一天重复执行是no-op
	require.NoError(t, RunSweep(now.Add(2*time.Hour), time.UTC))
	assert.Len(t, capture.notes, 2)

	last, err := metadata.GetLastRecallSweepDate(database.DB)
	require.NoError(t, err)
	assert.Equal(t, "2025-07-05", last)

	// 第二天再次到期（仍未回顾的继续被提醒）
	require.NoError(t, RunSweep(now.AddDate(0, 0, 1), time.UTC))
	assert.Len(t, capture.notes, 2) // 7月6日没有恰好6个月/1年前的记录
}
