package user

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/maumlog/maumlog-backend/internal/platform/database"
	"gorm.io/gorm"
)

// CreateProvisionalUser 生成一个尚未持久化的新用户UUID。
func CreateProvisionalUser() (string, error) {
	newUUID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("无法生成UUID v7: %w", err)
	}
	return newUUID.String(), nil
}

// IsValidUUID 检查字符串是否是格式正确的UUID。
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// ActivateUser 将一个UUID正式持久化到数据库，并尽力同步到Redis缓存。
// 重复激活是无害的no-op。
func ActivateUser(uuidStr string) error {
	// 先查缓存，避免重复写入
	if database.IsRedisHealthy() {
		exists, err := database.RDB.SIsMember(database.Ctx, KnownUsersKey, uuidStr).Result()
		if err == nil && exists {
			return nil
		}
	}

	newUser := User{UUID: uuidStr}
	if err := database.DB.Create(&newUser).Error; err != nil {
		// 记录已存在不是真正的错误
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("无法在SQLite中创建新用户: %w", err)
		}
	}

	// Redis只是镜像，写入失败不影响激活本身
	if database.IsRedisHealthy() {
		if err := database.RDB.SAdd(database.Ctx, KnownUsersKey, uuidStr).Err(); err != nil {
			fmt.Printf("警告: 无法将用户 %s 写入Redis缓存: %v\n", uuidStr, err)
		}
	}
	return nil
}

// WarmupCache 把SQLite中的全部用户UUID重新灌入Redis已知用户集合。
// 在Redis重启恢复后由健康检查触发。
func WarmupCache() error {
	if !database.IsRedisHealthy() {
		return nil
	}

	var uuids []string
	if err := database.DB.Model(&User{}).Pluck("uuid", &uuids).Error; err != nil {
		return fmt.Errorf("无法从SQLite读取用户列表: %w", err)
	}

	pipe := database.RDB.Pipeline()
	pipe.Del(database.Ctx, KnownUsersKey)
	for _, id := range uuids {
		pipe.SAdd(database.Ctx, KnownUsersKey, id)
	}
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("预热用户缓存到Redis失败: %w", err)
	}

	fmt.Printf("成功预热 %d 个用户到Redis。\n", len(uuids))
	return nil
}
