package status

import (
	"fmt"
	"time"

	"github.com/maumlog/maumlog-backend/internal/platform/database"
	"github.com/maumlog/maumlog-backend/pkg/lifecycle"
)

const reconcileInterval = 10 * time.Minute // 镜像校对频率

// StartReconciler 启动一个后台Goroutine，定期把Redis状态镜像与SQLite对齐。
// 镜像写入是best-effort的，宕机窗口内丢失的更新靠这里补齐。
func StartReconciler(handle *lifecycle.Handle) {
	defer handle.Close() // 确保在退出时通知管理器
	fmt.Println("状态镜像校对调度器已启动。")

	for {
		// 使用可中断的休眠，收到停机信号时立刻退出
		if err := handle.Sleep(reconcileInterval); err != nil {
			fmt.Println("状态镜像校对调度器: 休眠被中断，正在关闭...")
			return
		}

		if !database.IsRedisHealthy() {
			continue
		}

		if err := WarmupCache(); err != nil {
			fmt.Printf("状态镜像校对调度器错误: %v\n", err)
		}
	}
}
