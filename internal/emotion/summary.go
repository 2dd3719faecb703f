package emotion

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DateOf 把一个时间点换算成给定时区下的"YYYY-MM-DD"日历日期。
// 记录的聚合日期在创建时被固定，之后的编辑不再改变它。
func DateOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// MonthOf 从"YYYY-MM-DD"日期中取出"YYYY-MM"年月。
func MonthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// modeRow 承载当日模式查询的结果行。
type modeRow struct {
	EmotionType Emotion
	Cnt         int
}

// RecomputeDailySummary 重新计算一个(用户, 日期)的代表情绪，并同步每日聚合与每月计数器。
// 它必须在引发它的记录变更所在的同一个事务(tx)中执行，
// 这样聚合、计数器和记录本体要么一起提交，要么一起回滚。
//
// 算法：
//  1. 读取现有的每日聚合 → oldCategory（可能不存在）
//  2. 对当天的全部记录按类别分组计数，取计数最高者；
//     平局时选包含最新created_at记录的类别（再以id断开）
//  3. 当天没有任何记录时：若oldCategory存在，计数器-1并删除聚合行
//  4. 否则把聚合行UPSERT为新的胜出类别，极性取自该类别中最新的那条记录
//  5. 计数器只在胜出类别发生变化时移动（-1旧 / +1新）
//
// 第5步保证了幂等性：没有写入穿插时重复执行不会产生任何计数增量。
func RecomputeDailySummary(tx *gorm.DB, userID string, date string) error {
	yearMonth := MonthOf(date)

	// 1. 现有的代表情绪（如果有）
	var existing CalendarDay
	hasExisting := true
	if err := tx.Where("user_id = ? AND date = ?", userID, date).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("读取每日聚合失败: %w", err)
		}
		hasExisting = false
	}

	// 2. 当天全部记录的模式计算。
	// 先按类别分组，再按 计数 > 最新created_at > 最大id 排序取第一名。
	// 这里直接查records表而不引入record包，保持包依赖的单向性。
	var winner modeRow
	rows := []modeRow{}
	err := tx.Table("records").
		Select("emotion_type, COUNT(*) AS cnt, MAX(created_at) AS last_at, MAX(id) AS last_id").
		Where("user_id = ? AND entry_date = ?", userID, date).
		Group("emotion_type").
		Order("cnt DESC, last_at DESC, last_id DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return fmt.Errorf("计算当日情绪模式失败: %w", err)
	}

	// 3. 当天已无任何记录：删除聚合行并回退计数器
	if len(rows) == 0 {
		if hasExisting {
			if err := decrementStat(tx, userID, yearMonth, existing.EmotionType); err != nil {
				return err
			}
			if err := tx.Where("user_id = ? AND date = ?", userID, date).
				Delete(&CalendarDay{}).Error; err != nil {
				return fmt.Errorf("删除每日聚合失败: %w", err)
			}
		}
		return nil
	}
	winner = rows[0]

	// 4. 胜出类别的极性：取该类别中最新的一条记录
	var latest struct {
		ExpressionType Expression
	}
	err = tx.Table("records").
		Select("expression_type").
		Where("user_id = ? AND entry_date = ? AND emotion_type = ?", userID, date, winner.EmotionType).
		Order("created_at DESC, id DESC").
		Limit(1).
		Scan(&latest).Error
	if err != nil {
		return fmt.Errorf("读取胜出类别的表达极性失败: %w", err)
	}

	// 5. UPSERT聚合行
	day := CalendarDay{
		UserID:         userID,
		Date:           date,
		EmotionType:    winner.EmotionType,
		ExpressionType: latest.ExpressionType,
	}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"emotion_type", "expression_type", "updated_at"}),
	}).Create(&day).Error
	if err != nil {
		return fmt.Errorf("更新每日聚合失败: %w", err)
	}

	// 6. 计数器增量：只在代表类别变化时移动
	if !hasExisting {
		return incrementStat(tx, userID, yearMonth, winner.EmotionType)
	}
	if existing.EmotionType != winner.EmotionType {
		if err := decrementStat(tx, userID, yearMonth, existing.EmotionType); err != nil {
			return err
		}
		return incrementStat(tx, userID, yearMonth, winner.EmotionType)
	}
	return nil
}

// incrementStat 对(用户, 年月, 类别)的计数器+1，行不存在时以1创建。
// 对应原型系统的 INSERT ... ON DUPLICATE KEY UPDATE count = count + 1。
func incrementStat(tx *gorm.DB, userID, yearMonth string, e Emotion) error {
	stat := MonthlyStat{
		UserID:      userID,
		YearMonth:   yearMonth,
		EmotionType: e,
		Count:       1,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "year_month"}, {Name: "emotion_type"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count": gorm.Expr("count + 1"),
		}),
	}).Create(&stat).Error
	if err != nil {
		return fmt.Errorf("递增每月计数器失败: %w", err)
	}
	return nil
}

// decrementStat 对计数器-1，下限为0。SQLite的标量MAX等价于MySQL的GREATEST。
func decrementStat(tx *gorm.DB, userID, yearMonth string, e Emotion) error {
	err := tx.Model(&MonthlyStat{}).
		Where("user_id = ? AND year_month = ? AND emotion_type = ?", userID, yearMonth, e).
		Update("count", gorm.Expr("MAX(count - 1, 0)")).Error
	if err != nil {
		return fmt.Errorf("递减每月计数器失败: %w", err)
	}
	return nil
}
