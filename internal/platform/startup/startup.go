package startup

import (
	"fmt"

	"github.com/maumlog/maumlog-backend/internal/draft"
	"github.com/maumlog/maumlog-backend/internal/emotion"
	"github.com/maumlog/maumlog-backend/internal/platform/metadata"
	"github.com/maumlog/maumlog-backend/internal/recall"
	"github.com/maumlog/maumlog-backend/internal/record"
	"github.com/maumlog/maumlog-backend/internal/status"
	"github.com/maumlog/maumlog-backend/internal/user"
)

// InitializeApplication 是应用首次启动时执行的总入口
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := metadata.MigrateDB(); err != nil {
		return err
	}
	if err := user.PrimeModule(); err != nil {
		return err
	}
	if err := record.PrimeModule(); err != nil {
		return err
	}
	if err := draft.PrimeModule(); err != nil {
		return err
	}
	if err := emotion.PrimeModule(); err != nil {
		return err
	}
	if err := status.PrimeModule(); err != nil {
		return err
	}
	if err := recall.PrimeModule(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}

// RebuildCache 在运行时热重建Redis缓存（已知用户集合和最新状态镜像）。
// SQLite是唯一事实来源，重建只是把镜像拉回一致。
func RebuildCache() error {
	fmt.Println("开始缓存热重建...")

	if err := user.WarmupCache(); err != nil {
		return err
	}
	if err := status.WarmupCache(); err != nil {
		return err
	}

	fmt.Println("缓存热重建完成。")
	return nil
}
