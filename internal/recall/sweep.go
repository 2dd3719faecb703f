package recall

import (
	"fmt"
	"time"

	"github.com/maumlog/maumlog-backend/internal/emotion"
	"github.com/maumlog/maumlog-backend/internal/platform/database"
	"github.com/maumlog/maumlog-backend/internal/platform/metadata"
)

// sweepRow 是扫描查询的一行，比DueItem多带owner。
type sweepRow struct {
	UserID string
	DueItem
}

// RunSweep 执行一次每日回顾扫描：找出恰好6个月前或1年前写下、
// 且所有者还没有回顾过的记录，按所有者分组投递提醒。
//
// 除了metadata里的去重标记和Redis出站队列，本函数不写任何数据。
// 同一个本地日期内重复调用是no-op，所以错过定点后的补跑是安全的。
func RunSweep(now time.Time, loc *time.Location) error {
	today := emotion.DateOf(now, loc)

	last, err := metadata.GetLastRecallSweepDate(database.DB)
	if err != nil {
		return fmt.Errorf("读取上次扫描日期失败: %w", err)
	}
	if last == today {
		return nil
	}

	d6 := emotion.DateOf(now.AddDate(0, -6, 0), loc)
	d12 := emotion.DateOf(now.AddDate(0, -12, 0), loc)

	var rows []sweepRow
	err = database.DB.Table("records").
		Select("records.user_id, records.id AS record_id, records.title, records.emotion_type, records.expression_type, records.reveal_at, records.created_at").
		Joins("LEFT JOIN acknowledgments ON acknowledgments.record_id = records.id AND acknowledgments.user_id = records.user_id").
		Where("records.entry_date IN ? AND acknowledgments.id IS NULL", []string{d6, d12}).
		Order("records.user_id ASC, records.created_at DESC, records.id DESC").
		Find(&rows).Error
	if err != nil {
		return fmt.Errorf("回顾扫描查询失败: %w", err)
	}

	// 按所有者分组。查询已按user_id排序，保持首次出现的顺序即可。
	order := make([]string, 0)
	batches := make(map[string][]DueItem)
	for _, row := range rows {
		if _, ok := batches[row.UserID]; !ok {
			order = append(order, row.UserID)
		}
		batches[row.UserID] = append(batches[row.UserID], row.DueItem)
	}

	// 单个用户投递失败只记录日志，不影响其他用户
	delivered := 0
	for _, userID := range order {
		n := &Notification{
			UserID:    userID,
			SweepDate: today,
			Items:     batches[userID],
			CreatedAt: now,
		}
		if err := notifier.Notify(n); err != nil {
			fmt.Printf("回顾提醒投递失败 (用户 %s): %v\n", userID, err)
			continue
		}
		delivered++
	}

	if err := metadata.SetLastRecallSweepDate(database.DB, today); err != nil {
		return fmt.Errorf("写入扫描日期失败: %w", err)
	}

	fmt.Printf("回顾扫描完成: 日期 %s, 用户 %d 个, 投递 %d 个。\n", today, len(order), delivered)
	return nil
}
