package draft

import (
	"errors"
	"time"

	"github.com/maumlog/maumlog-backend/internal/emotion"
	"github.com/maumlog/maumlog-backend/internal/platform/database"
	"github.com/maumlog/maumlog-backend/internal/record"
	"github.com/maumlog/maumlog-backend/internal/status"
	"github.com/maumlog/maumlog-backend/pkg/apperror"
	"gorm.io/gorm"
)

// Fields 是创建/修改草稿时可提交的字段，nil表示不设置/不修改。
type Fields struct {
	Title          *string             `json:"title"`
	EmotionType    *emotion.Emotion    `json:"emotion_type"`
	ExpressionType *emotion.Expression `json:"expression_type"`
	Content        *string             `json:"content"`
	Place          *string             `json:"place"`
	Visibility     *emotion.Visibility `json:"visibility"`
	Period         *int                `json:"period"`
	Latitude       *float64            `json:"latitude"`
	Longitude      *float64            `json:"longitude"`
}

// validateFields 做字段级校验。确认前的必填检查不在这里，
// 草稿阶段允许核心字段暂缺。
func validateFields(f *Fields) error {
	if f.EmotionType != nil && !f.EmotionType.Valid() {
		return apperror.InvalidState("不支持的emotion_type")
	}
	if f.ExpressionType != nil && !f.ExpressionType.Valid() {
		return apperror.InvalidState("不支持的expression_type")
	}
	if f.Visibility != nil && !f.Visibility.Valid() {
		return apperror.InvalidState("不支持的visibility")
	}
	if f.Title != nil && len([]rune(*f.Title)) > 100 {
		return apperror.InvalidState("title长度超限(<=100)")
	}
	if f.Content != nil && len([]rune(*f.Content)) > 1000 {
		return apperror.InvalidState("content长度超限(<=1000)")
	}
	if f.Place != nil && len([]rune(*f.Place)) > 255 {
		return apperror.InvalidState("place长度超限(<=255)")
	}
	if f.Period != nil && *f.Period != 6 && *f.Period != 12 {
		return apperror.InvalidState("period必须是6或12")
	}
	if f.Latitude != nil || f.Longitude != nil {
		if err := status.ValidateCoordinates(f.Latitude, f.Longitude); err != nil {
			return err
		}
	}
	return nil
}

// CreateDraft 创建一份新草稿。now 会被固定为"感受发生的时刻"。
func CreateDraft(userID string, fields *Fields, now time.Time) (*Draft, error) {
	if err := validateFields(fields); err != nil {
		return nil, err
	}

	d := &Draft{
		UserID:         userID,
		EmotionType:    fields.EmotionType,
		ExpressionType: fields.ExpressionType,
		Visibility:     fields.Visibility,
		Period:         fields.Period,
		Latitude:       fields.Latitude,
		Longitude:      fields.Longitude,
		Status:         StatusOpen,
		CreatedAt:      now.UTC(),
	}
	if fields.Title != nil {
		d.Title = *fields.Title
	}
	if fields.Content != nil {
		d.Content = *fields.Content
	}
	if fields.Place != nil {
		d.Place = *fields.Place
	}

	if err := database.DB.Create(d).Error; err != nil {
		return nil, apperror.Transient("草稿创建失败", err)
	}
	return d, nil
}

// loadOwned 读取属于调用者的草稿。
// 草稿是私有的：不存在和属于他人都返回NotFound，不暴露存在性。
func loadOwned(tx *gorm.DB, draftID uint, userID string) (*Draft, error) {
	var d Draft
	err := tx.Where("id = ? AND user_id = ?", draftID, userID).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("草稿不存在")
		}
		return nil, apperror.Transient("草稿查询失败", err)
	}
	return &d, nil
}

// UpdateDraft 修改一份未确认的草稿。已确认的草稿不可再变 → Conflict。
func UpdateDraft(userID string, draftID uint, fields *Fields) error {
	if err := validateFields(fields); err != nil {
		return err
	}

	return database.DB.Transaction(func(tx *gorm.DB) error {
		d, err := loadOwned(tx, draftID, userID)
		if err != nil {
			return err
		}
		if d.Status != StatusOpen {
			return apperror.Conflict("草稿已确认，不能修改")
		}

		updates := make(map[string]interface{})
		if fields.Title != nil {
			updates["title"] = *fields.Title
		}
		if fields.EmotionType != nil {
			updates["emotion_type"] = *fields.EmotionType
		}
		if fields.ExpressionType != nil {
			updates["expression_type"] = *fields.ExpressionType
		}
		if fields.Content != nil {
			updates["content"] = *fields.Content
		}
		if fields.Place != nil {
			updates["place"] = *fields.Place
		}
		if fields.Visibility != nil {
			updates["visibility"] = *fields.Visibility
		}
		if fields.Period != nil {
			updates["period"] = *fields.Period
		}
		if fields.Latitude != nil {
			updates["latitude"] = *fields.Latitude
			updates["longitude"] = *fields.Longitude
		}
		if len(updates) == 0 {
			return apperror.InvalidState("没有可修改的字段")
		}

		if err := tx.Model(d).Updates(updates).Error; err != nil {
			return apperror.Transient("草稿更新失败", err)
		}
		return nil
	})
}

// AttachImage 在草稿上暂存一张已上传图片的引用，返回它的位置（0起）。
// 上传本身由外部服务完成，这里只接收引用并维护顺序。
func AttachImage(userID string, draftID uint, url string) (int, error) {
	if url == "" {
		return 0, apperror.InvalidState("url是必需的")
	}

	var position int
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		d, err := loadOwned(tx, draftID, userID)
		if err != nil {
			return err
		}
		if d.Status != StatusOpen {
			return apperror.Conflict("草稿已确认，不能追加图片")
		}

		var count int64
		if err := tx.Model(&DraftImage{}).Where("draft_id = ?", draftID).Count(&count).Error; err != nil {
			return apperror.Transient("草稿图片计数失败", err)
		}
		if count >= MaxImagesPerDraft {
			return apperror.InvalidState("图片最多4张")
		}

		position = int(count)
		img := DraftImage{DraftID: draftID, URL: url, SortOrder: position}
		if err := tx.Create(&img).Error; err != nil {
			return apperror.Transient("草稿图片保存失败", err)
		}
		return nil
	})
	return position, err
}

// CancelDraft 取消并删除一份未确认的草稿及其暂存图片。
func CancelDraft(userID string, draftID uint) error {
	return database.DB.Transaction(func(tx *gorm.DB) error {
		d, err := loadOwned(tx, draftID, userID)
		if err != nil {
			return err
		}
		if d.Status != StatusOpen {
			return apperror.Conflict("草稿已确认，不能取消")
		}

		if err := tx.Where("draft_id = ?", draftID).Delete(&DraftImage{}).Error; err != nil {
			return apperror.Transient("草稿图片删除失败", err)
		}
		if err := tx.Delete(&Draft{}, draftID).Error; err != nil {
			return apperror.Transient("草稿删除失败", err)
		}
		return nil
	})
}

// ConfirmDraft 原子地把草稿转正为记录，并驱动聚合管线。
//
// 单个事务内依次完成：
//  1. 读取草稿（不存在/他人 → NotFound）
//  2. 状态CAS open→confirmed：并发的第二个确认者在这里拿到Conflict，
//     不会产生重复记录
//  3. 必填字段校验（情绪类别、可见级别）→ InvalidState
//  4. 揭示时刻 = 草稿创建时间（period档位存在时+6或12个月）
//  5. 以草稿的创建时间作为记录的创建时间物化记录——"感受发生的时刻"
//     不因确认被拖延而漂移
//  6. 暂存图片按顺序转移（第一张成为代表图片）
//  7. 对记录所在日期重算每日聚合与每月计数器
//  8. 覆盖最新状态快照
//  9. 删除草稿行
//
// 任一步失败都会整体回滚，调用方可安全重试。
func ConfirmDraft(userID string, draftID uint, loc *time.Location, now time.Time) (uint, error) {
	var recordID uint
	var snapshot *status.TodayStatus

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		d, err := loadOwned(tx, draftID, userID)
		if err != nil {
			return err
		}

		// 状态CAS是二次确认的唯一闸门
		res := tx.Model(&Draft{}).
			Where("id = ? AND user_id = ? AND status = ?", draftID, userID, StatusOpen).
			Update("status", StatusConfirmed)
		if res.Error != nil {
			return apperror.Transient("草稿状态更新失败", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.Conflict("草稿已被确认")
		}

		if d.EmotionType == nil {
			return apperror.InvalidState("emotion_type是必需的")
		}
		if d.Visibility == nil {
			return apperror.InvalidState("visibility是必需的")
		}

		expression := emotion.ExpressionNeutral
		if d.ExpressionType != nil {
			expression = *d.ExpressionType
		}

		created := d.CreatedAt.UTC()
		revealAt := created
		if d.Period != nil {
			revealAt = created.AddDate(0, *d.Period, 0)
		}

		rec := record.Record{
			UserID:         userID,
			Title:          d.Title,
			EmotionType:    *d.EmotionType,
			ExpressionType: expression,
			Content:        d.Content,
			RevealAt:       revealAt,
			Period:         d.Period,
			Latitude:       d.Latitude,
			Longitude:      d.Longitude,
			Place:          d.Place,
			Visibility:     *d.Visibility,
			EntryDate:      emotion.DateOf(created, loc),
			CreatedAt:      created,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return apperror.Transient("记录物化失败", err)
		}
		recordID = rec.ID

		// 图片转移：保序，第一张成为代表图片
		var images []DraftImage
		if err := tx.Where("draft_id = ?", draftID).
			Order("sort_order ASC, id ASC").Find(&images).Error; err != nil {
			return apperror.Transient("草稿图片读取失败", err)
		}
		for i, img := range images {
			recImg := record.RecordImage{RecordID: rec.ID, URL: img.URL, SortOrder: i}
			if err := tx.Create(&recImg).Error; err != nil {
				return apperror.Transient("记录图片转移失败", err)
			}
		}
		if len(images) > 0 {
			if err := tx.Model(&rec).Update("img", images[0].URL).Error; err != nil {
				return apperror.Transient("代表图片设置失败", err)
			}
		}
		if err := tx.Where("draft_id = ?", draftID).Delete(&DraftImage{}).Error; err != nil {
			return apperror.Transient("草稿图片清理失败", err)
		}

		// 聚合管线：每日聚合 + 每月计数器
		if err := emotion.RecomputeDailySummary(tx, userID, rec.EntryDate); err != nil {
			return apperror.Transient("聚合重算失败", err)
		}

		// 最新状态快照：last-write-wins
		emotionCopy := *d.EmotionType
		snapshot = &status.TodayStatus{
			UserID:         userID,
			EmotionType:    &emotionCopy,
			ExpressionType: &expression,
			Latitude:       d.Latitude,
			Longitude:      d.Longitude,
			UpdatedAt:      now,
		}
		if err := status.UpsertInTx(tx, snapshot); err != nil {
			return apperror.Transient("状态快照更新失败", err)
		}

		// 草稿行删除；confirmed状态只在本事务内短暂存在，
		// 用于拦截并发确认
		if err := tx.Delete(&Draft{}, draftID).Error; err != nil {
			return apperror.Transient("草稿清理失败", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	// 事务提交后才镜像到Redis
	status.MirrorToRedis(snapshot)
	return recordID, nil
}

// GetDraft 返回一份草稿及其暂存图片。
func GetDraft(userID string, draftID uint) (*Draft, []string, error) {
	var d *Draft
	var urls []string
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		loaded, err := loadOwned(tx, draftID, userID)
		if err != nil {
			return err
		}
		d = loaded

		var images []DraftImage
		if err := tx.Where("draft_id = ?", draftID).
			Order("sort_order ASC, id ASC").Find(&images).Error; err != nil {
			return apperror.Transient("草稿图片查询失败", err)
		}
		for _, img := range images {
			urls = append(urls, img.URL)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return d, urls, nil
}
