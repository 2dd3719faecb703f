package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/maumlog/maumlog-backend/internal/emotion"
	"github.com/maumlog/maumlog-backend/internal/platform/database"
	"github.com/maumlog/maumlog-backend/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertInTx 在一个已开启的事务中无条件覆盖用户的状态快照。
// 记录确认流程在提交聚合管线的同一个事务里调用它。
func UpsertInTx(tx *gorm.DB, snapshot *TodayStatus) error {
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"emotion_type", "expression_type", "latitude", "longitude", "updated_at",
		}),
	}).Create(snapshot).Error
	if err != nil {
		return fmt.Errorf("更新状态快照失败: %w", err)
	}
	return nil
}

// MirrorToRedis 把快照尽力写入Redis热镜像。
// 必须在事务提交之后调用；失败只记录日志，不影响主流程。
func MirrorToRedis(snapshot *TodayStatus) {
	if !database.IsRedisHealthy() {
		return
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := database.RDB.HSet(database.Ctx, LatestKey, snapshot.UserID, payload).Err(); err != nil {
		fmt.Printf("警告: 状态快照镜像到Redis失败: %v\n", err)
	}
}

// Ping 处理"状态心跳"：直接更新快照而不创建记录。
// 情绪/表达为nil时显式清空为NULL，表示"有定位但当前没有情绪"。
func Ping(userID string, emotionType *emotion.Emotion, expressionType *emotion.Expression,
	latitude, longitude *float64, now time.Time) (*TodayStatus, error) {

	if emotionType != nil && !emotionType.Valid() {
		return nil, apperror.InvalidState("不支持的emotion_type")
	}
	if expressionType != nil && !expressionType.Valid() {
		return nil, apperror.InvalidState("不支持的expression_type")
	}
	if err := ValidateCoordinates(latitude, longitude); err != nil {
		return nil, err
	}

	snapshot := &TodayStatus{
		UserID:         userID,
		EmotionType:    emotionType,
		ExpressionType: expressionType,
		Latitude:       latitude,
		Longitude:      longitude,
		UpdatedAt:      now,
	}
	if err := UpsertInTx(database.DB, snapshot); err != nil {
		return nil, apperror.Transient("状态快照写入失败", err)
	}
	MirrorToRedis(snapshot)
	return snapshot, nil
}

// GetLatest 返回用户的最新状态快照。
// 优先读Redis镜像，未命中或Redis不可用时回退到SQLite。
func GetLatest(userID string) (*TodayStatus, error) {
	if database.IsRedisHealthy() {
		payload, err := database.RDB.HGet(database.Ctx, LatestKey, userID).Result()
		if err == nil {
			var snapshot TodayStatus
			if jsonErr := json.Unmarshal([]byte(payload), &snapshot); jsonErr == nil {
				snapshot.UserID = userID
				return &snapshot, nil
			}
		}
	}

	var snapshot TodayStatus
	err := database.DB.Where("user_id = ?", userID).First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("还没有记录过状态")
		}
		return nil, apperror.Transient("状态快照查询失败", err)
	}
	return &snapshot, nil
}

// ValidateCoordinates 校验经纬度范围；两者必须同时提供或同时缺省。
// draft/record模块复用同一套坐标校验。
func ValidateCoordinates(latitude, longitude *float64) error {
	if (latitude == nil) != (longitude == nil) {
		return apperror.InvalidState("latitude和longitude必须同时提供")
	}
	if latitude == nil {
		return nil
	}
	if *latitude < -90 || *latitude > 90 {
		return apperror.InvalidState("latitude超出[-90,90]范围")
	}
	if *longitude < -180 || *longitude > 180 {
		return apperror.InvalidState("longitude超出[-180,180]范围")
	}
	return nil
}
