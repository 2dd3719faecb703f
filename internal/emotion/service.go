package emotion

import (
	"fmt"
	"math"
	"time"

	"github.com/maumlog/maumlog-backend/internal/platform/database"
	"github.com/maumlog/maumlog-backend/pkg/apperror"
)

// GetCalendarMonth 返回一个月内的全部每日聚合，按日期升序。
func GetCalendarMonth(userID string, yearMonth string) ([]CalendarDay, error) {
	start := yearMonth + "-01"
	end := yearMonth + "-31"

	var days []CalendarDay
	err := database.DB.
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, start, end).
		Order("date ASC").
		Find(&days).Error
	if err != nil {
		return nil, apperror.Transient("感情日历查询失败", err)
	}
	return days, nil
}

// MonthlyStatsView 是月统计的读模型，全部6个类别都会出现（缺失补0）。
type MonthlyStatsView struct {
	YearMonth string          `json:"year_month"`
	Counts    map[Emotion]int `json:"counts"`
}

// GetMonthlyStats 返回一个(用户, 年月)的每月计数器，类别缺失时计为0。
func GetMonthlyStats(userID string, yearMonth string) (*MonthlyStatsView, error) {
	var stats []MonthlyStat
	err := database.DB.
		Where("user_id = ? AND year_month = ?", userID, yearMonth).
		Find(&stats).Error
	if err != nil {
		return nil, apperror.Transient("感情月统计查询失败", err)
	}

	view := &MonthlyStatsView{
		YearMonth: yearMonth,
		Counts:    make(map[Emotion]int, len(AllEmotions)),
	}
	for _, e := range AllEmotions {
		view.Counts[e] = 0
	}
	for _, s := range stats {
		view.Counts[s.EmotionType] = s.Count
	}
	return view, nil
}

// SummaryEntry 是每个类别的记录数和占比。
type SummaryEntry struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// SummaryView 是"我的页面"月度摘要卡片的读模型。
// 注意它统计的是当月的记录条数，而不是每日聚合的天数。
type SummaryView struct {
	YearMonth string                   `json:"year_month"`
	Total     int                      `json:"total"`
	Breakdown map[Emotion]SummaryEntry `json:"breakdown"`
}

// GetStatsSummary 统计一个月内本人记录的类别分布（条数+百分比，四舍五入到一位小数）。
func GetStatsSummary(userID string, yearMonth string) (*SummaryView, error) {
	var rows []struct {
		EmotionType Emotion
		Cnt         int
	}
	err := database.DB.Table("records").
		Select("emotion_type, COUNT(*) AS cnt").
		Where("user_id = ? AND entry_date LIKE ?", userID, yearMonth+"-%").
		Group("emotion_type").
		Find(&rows).Error
	if err != nil {
		return nil, apperror.Transient("月度摘要查询失败", err)
	}

	view := &SummaryView{
		YearMonth: yearMonth,
		Breakdown: make(map[Emotion]SummaryEntry, len(AllEmotions)),
	}
	for _, e := range AllEmotions {
		view.Breakdown[e] = SummaryEntry{}
	}
	for _, r := range rows {
		view.Breakdown[r.EmotionType] = SummaryEntry{Count: r.Cnt}
		view.Total += r.Cnt
	}
	if view.Total > 0 {
		for e, entry := range view.Breakdown {
			pct := float64(entry.Count) / float64(view.Total) * 100
			entry.Percent = math.Round(pct*10) / 10
			view.Breakdown[e] = entry
		}
	}
	return view, nil
}

// HistoryItem 是感情历史列表的一行。
type HistoryItem struct {
	RecordID       uint       `json:"recordId"`
	EmotionType    Emotion    `json:"emotion_type"`
	ExpressionType Expression `json:"expression_type"`
	Title          string     `json:"title"`
	CreatedAt      time.Time  `json:"created_at"`
	Latitude       *float64   `json:"latitude"`
	Longitude      *float64   `json:"longitude"`
	Place          string     `json:"place"`
}

// GetHistory 返回用户的全部记录（最新优先）。
func GetHistory(userID string) ([]HistoryItem, error) {
	var items []HistoryItem
	err := database.DB.Table("records").
		Select("id AS record_id, emotion_type, expression_type, title, created_at, latitude, longitude, place").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, apperror.Transient("感情历史查询失败", err)
	}
	return items, nil
}

// ReportCell 是按(类别, 星期, 小时)分桶的计数。
// Weekday: 0=周日 ... 6=周六；Hour: 0-23，均按配置时区换算。
type ReportCell struct {
	EmotionType Emotion `json:"emotion_type"`
	Weekday     int     `json:"weekday"`
	Hour        int     `json:"hour"`
	Count       int     `json:"count"`
}

// GetReport 统计记录在星期/时段上的分布。
// 时间戳以UTC存储，星期和小时的换算在Go侧完成，避免依赖SQL方言的时区函数。
func GetReport(userID string, loc *time.Location) ([]ReportCell, error) {
	var rows []struct {
		EmotionType Emotion
		CreatedAt   time.Time
	}
	err := database.DB.Table("records").
		Select("emotion_type, created_at").
		Where("user_id = ?", userID).
		Find(&rows).Error
	if err != nil {
		return nil, apperror.Transient("感情报告查询失败", err)
	}

	type bucket struct {
		emotion Emotion
		weekday int
		hour    int
	}
	counts := make(map[bucket]int)
	for _, r := range rows {
		local := r.CreatedAt.In(loc)
		counts[bucket{r.EmotionType, int(local.Weekday()), local.Hour()}]++
	}

	cells := make([]ReportCell, 0, len(counts))
	for _, e := range AllEmotions {
		for wd := 0; wd < 7; wd++ {
			for h := 0; h < 24; h++ {
				if c, ok := counts[bucket{e, wd, h}]; ok {
					cells = append(cells, ReportCell{EmotionType: e, Weekday: wd, Hour: h, Count: c})
				}
			}
		}
	}
	return cells, nil
}

// Hotspot 是同一坐标上记录数的聚合。
type Hotspot struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Count     int     `json:"count"`
}

// GetHotspots 按坐标聚合本人的带定位记录。
func GetHotspots(userID string) ([]Hotspot, error) {
	var spots []Hotspot
	err := database.DB.Table("records").
		Select("latitude, longitude, COUNT(*) AS count").
		Where("user_id = ? AND latitude IS NOT NULL AND longitude IS NOT NULL", userID).
		Group("latitude, longitude").
		Order("count DESC").
		Find(&spots).Error
	if err != nil {
		return nil, apperror.Transient("感情热点查询失败", err)
	}
	return spots, nil
}

// yearMonthParam 校验year/month查询参数并拼成"YYYY-MM"。
func yearMonthParam(year, month string) (string, error) {
	if year == "" || month == "" {
		return "", apperror.InvalidState("year, month 查询参数是必需的")
	}
	if len(month) == 1 {
		month = "0" + month
	}
	if len(year) != 4 || len(month) != 2 {
		return "", apperror.InvalidState("year, month 格式不正确")
	}
	return fmt.Sprintf("%s-%s", year, month), nil
}
