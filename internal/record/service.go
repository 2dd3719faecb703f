package record

import (
	"errors"

	"github.com/maumlog/maumlog-backend/internal/emotion"
	"github.com/maumlog/maumlog-backend/internal/platform/database"
	"github.com/maumlog/maumlog-backend/internal/status"
	"github.com/maumlog/maumlog-backend/pkg/apperror"
	"gorm.io/gorm"
)

// UpdatePatch 是编辑操作的字段补丁，nil表示不修改。
// EntryDate和CreatedAt不在其中：日期属性是不可变的历史。
type UpdatePatch struct {
	Title          *string             `json:"title"`
	EmotionType    *emotion.Emotion    `json:"emotion_type"`
	ExpressionType *emotion.Expression `json:"expression_type"`
	Content        *string             `json:"content"`
	Period         *int                `json:"period"`
	Latitude       *float64            `json:"latitude"`
	Longitude      *float64            `json:"longitude"`
	Place          *string             `json:"place"`
	Visibility     *emotion.Visibility `json:"visibility"`
}

// validatePatch 做字段级校验，并把补丁展开成可直接写库的列映射。
func validatePatch(patch *UpdatePatch) (map[string]interface{}, error) {
	updates := make(map[string]interface{})

	if patch.Title != nil {
		if len([]rune(*patch.Title)) > 100 {
			return nil, apperror.InvalidState("title长度超限(<=100)")
		}
		updates["title"] = *patch.Title
	}
	if patch.EmotionType != nil {
		if !patch.EmotionType.Valid() {
			return nil, apperror.InvalidState("不支持的emotion_type")
		}
		updates["emotion_type"] = *patch.EmotionType
	}
	if patch.ExpressionType != nil {
		if !patch.ExpressionType.Valid() {
			return nil, apperror.InvalidState("不支持的expression_type")
		}
		updates["expression_type"] = *patch.ExpressionType
	}
	if patch.Content != nil {
		if len([]rune(*patch.Content)) > 1000 {
			return nil, apperror.InvalidState("content长度超限(<=1000)")
		}
		updates["content"] = *patch.Content
	}
	if patch.Place != nil {
		if len([]rune(*patch.Place)) > 255 {
			return nil, apperror.InvalidState("place长度超限(<=255)")
		}
		updates["place"] = *patch.Place
	}
	if patch.Visibility != nil {
		if !patch.Visibility.Valid() {
			return nil, apperror.InvalidState("不支持的visibility")
		}
		updates["visibility"] = *patch.Visibility
	}
	if patch.Latitude != nil || patch.Longitude != nil {
		if err := status.ValidateCoordinates(patch.Latitude, patch.Longitude); err != nil {
			return nil, err
		}
		updates["latitude"] = patch.Latitude
		updates["longitude"] = patch.Longitude
	}
	if patch.Period != nil {
		if *patch.Period != 6 && *patch.Period != 12 {
			return nil, apperror.InvalidState("period必须是6或12")
		}
		// reveal_at 在事务中基于不可变的CreatedAt重新计算
		updates["period"] = *patch.Period
	}

	if len(updates) == 0 {
		return nil, apperror.InvalidState("没有可修改的字段")
	}
	return updates, nil
}

// loadOwned 读取记录并校验所有权。
// 记录不存在 → NotFound；存在但不属于调用者 → Forbidden。
func loadOwned(tx *gorm.DB, recordID uint, userID string) (*Record, error) {
	var rec Record
	if err := tx.First(&rec, recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("感情记录不存在")
		}
		return nil, apperror.Transient("记录查询失败", err)
	}
	if rec.UserID != userID {
		return nil, apperror.Forbidden("没有权限操作这条记录")
	}
	return &rec, nil
}

// EditRecord 修改一条记录，然后对它的原始创建日期重新聚合。
// 字段修改和聚合重算在同一个事务中提交：编辑可能改变类别，从而改变当天的胜出者。
func EditRecord(userID string, recordID uint, patch *UpdatePatch) error {
	updates, err := validatePatch(patch)
	if err != nil {
		return err
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		rec, err := loadOwned(tx, recordID, userID)
		if err != nil {
			return err
		}

		// period变化时基于不可变的创建时间重推揭示时刻
		if patch.Period != nil {
			updates["reveal_at"] = rec.CreatedAt.AddDate(0, *patch.Period, 0)
		}

		if err := tx.Model(rec).Updates(updates).Error; err != nil {
			return apperror.Transient("记录更新失败", err)
		}

		// 对记录的原始日期重算每日聚合与每月计数器
		if err := emotion.RecomputeDailySummary(tx, userID, rec.EntryDate); err != nil {
			return apperror.Transient("聚合重算失败", err)
		}
		return nil
	})
	return err
}

// DeleteRecord 删除一条记录及其附图，然后对原始创建日期重新聚合。
func DeleteRecord(userID string, recordID uint) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		rec, err := loadOwned(tx, recordID, userID)
		if err != nil {
			return err
		}

		// 附图引用随记录删除；对象存储的清理由外部批处理完成
		if err := tx.Where("record_id = ?", recordID).Delete(&RecordImage{}).Error; err != nil {
			return apperror.Transient("删除记录附图失败", err)
		}
		if err := tx.Delete(&Record{}, recordID).Error; err != nil {
			return apperror.Transient("删除记录失败", err)
		}

		if err := emotion.RecomputeDailySummary(tx, userID, rec.EntryDate); err != nil {
			return apperror.Transient("聚合重算失败", err)
		}
		return nil
	})
}

// ListFilter 是列表查询的过滤条件。
type ListFilter struct {
	From       string // "YYYY-MM-DD"，按entry_date比较
	To         string
	Emotion    emotion.Emotion
	Visibility emotion.Visibility
	Query      string // title/content 模糊匹配
	Page       int
	PageSize   int
}

// ListResult 是分页列表的返回值。
type ListResult struct {
	Page     int      `json:"page"`
	PageSize int      `json:"pageSize"`
	Total    int64    `json:"total"`
	Items    []Record `json:"items"`
}

// ListRecords 返回用户自己的记录列表（过滤+分页，最新优先）。
func ListRecords(userID string, filter ListFilter) (*ListResult, error) {
	query := database.DB.Model(&Record{}).Where("user_id = ?", userID)

	if filter.From != "" {
		query = query.Where("entry_date >= ?", filter.From)
	}
	if filter.To != "" {
		query = query.Where("entry_date <= ?", filter.To)
	}
	if filter.Emotion != "" {
		if !filter.Emotion.Valid() {
			return nil, apperror.InvalidState("不支持的emotion_type")
		}
		query = query.Where("emotion_type = ?", filter.Emotion)
	}
	if filter.Visibility != "" {
		query = query.Where("visibility = ?", filter.Visibility)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where("(title LIKE ? OR content LIKE ?)", like, like)
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > 50 {
		pageSize = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperror.Transient("记录计数失败", err)
	}

	var items []Record
	err := query.Order("created_at DESC, id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&items).Error
	if err != nil {
		return nil, apperror.Transient("记录列表查询失败", err)
	}

	return &ListResult{Page: page, PageSize: pageSize, Total: total, Items: items}, nil
}

// GetRecord 返回一条记录的详情。
// 非所有者只能看到public记录；不可见时按NotFound处理，不暴露存在性。
func GetRecord(requesterID string, recordID uint) (*Record, bool, error) {
	var rec Record
	if err := database.DB.First(&rec, recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, apperror.NotFound("感情记录不存在")
		}
		return nil, false, apperror.Transient("记录查询失败", err)
	}

	isOwner := rec.UserID == requesterID
	if !isOwner && rec.Visibility != emotion.VisibilityPublic {
		return nil, false, apperror.NotFound("感情记录不存在")
	}
	return &rec, isOwner, nil
}

// GetRecordImages 返回记录的附图URL列表（按顺序）。
func GetRecordImages(requesterID string, recordID uint) ([]string, error) {
	if _, _, err := GetRecord(requesterID, recordID); err != nil {
		return nil, err
	}

	var images []RecordImage
	err := database.DB.Where("record_id = ?", recordID).
		Order("sort_order ASC, id ASC").
		Find(&images).Error
	if err != nil {
		return nil, apperror.Transient("附图查询失败", err)
	}

	urls := make([]string, 0, len(images))
	for _, img := range images {
		urls = append(urls, img.URL)
	}
	return urls, nil
}

// SetRepresentativeImage 把记录的代表图片换成它自己的某张附图。
func SetRepresentativeImage(userID string, recordID uint, url string) error {
	if url == "" {
		return apperror.InvalidState("url是必需的")
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		rec, err := loadOwned(tx, recordID, userID)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&RecordImage{}).
			Where("record_id = ? AND url = ?", recordID, url).
			Count(&count).Error; err != nil {
			return apperror.Transient("附图查询失败", err)
		}
		if count == 0 {
			return apperror.InvalidState("不是这条记录的附图")
		}

		if err := tx.Model(rec).Update("img", url).Error; err != nil {
			return apperror.Transient("代表图片更新失败", err)
		}
		return nil
	})
}

// TodayLatest 返回用户今天（配置时区）最新的一条记录；没有时返回NotFound。
func TodayLatest(userID string, today string) (*Record, error) {
	var rec Record
	err := database.DB.
		Where("user_id = ? AND entry_date = ?", userID, today).
		Order("created_at DESC, id DESC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("今天还没有记录")
		}
		return nil, apperror.Transient("今日记录查询失败", err)
	}
	return &rec, nil
}
