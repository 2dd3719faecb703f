package status

import (
	"encoding/json"
	"fmt"

	"github.com/maumlog/maumlog-backend/internal/platform/database"
)

// PrimeModule 负责初始化status模块的数据库表结构并预热Redis镜像。
func PrimeModule() error {
	if err := database.DB.AutoMigrate(&TodayStatus{}); err != nil {
		return fmt.Errorf("无法迁移today_statuses表: %w", err)
	}
	fmt.Println("状态快照表迁移成功。")

	return WarmupCache()
}

// WarmupCache 从SQLite重建Redis中的状态快照镜像。
// 启动时和Redis恢复后都会被调用。
func WarmupCache() error {
	if !database.IsRedisHealthy() {
		return nil
	}

	var snapshots []TodayStatus
	if err := database.DB.Find(&snapshots).Error; err != nil {
		return fmt.Errorf("无法从SQLite读取状态快照: %w", err)
	}

	pipe := database.RDB.Pipeline()
	pipe.Del(database.Ctx, LatestKey)
	for i := range snapshots {
		payload, err := json.Marshal(&snapshots[i])
		if err != nil {
			continue
		}
		pipe.HSet(database.Ctx, LatestKey, snapshots[i].UserID, payload)
	}
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("预热状态快照镜像失败: %w", err)
	}

	fmt.Printf("成功预热 %d 条状态快照到Redis。\n", len(snapshots))
	return nil
}
