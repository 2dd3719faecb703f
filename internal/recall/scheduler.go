package recall

import (
	"fmt"
	"time"

	"github.com/maumlog/maumlog-backend/internal/platform/config"
	"github.com/maumlog/maumlog-backend/pkg/clock"
	"github.com/maumlog/maumlog-backend/pkg/lifecycle"
)

var clk clock.Clock = clock.System{}

// SetClock 允许测试注入时钟。
func SetClock(c clock.Clock) {
	clk = c
}

// nextSweepTime 返回下一次定点扫描的时刻（本地sweepHour整点）。
func nextSweepTime(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// StartScheduler 启动每日回顾扫描的后台Goroutine。
// 启动时先补跑一次（RunSweep自身按日期去重，不会重复投递），
// 之后在每天的配置时刻执行。
func StartScheduler(handle *lifecycle.Handle) {
	defer handle.Close() // 确保在退出时通知管理器
	fmt.Println("回顾扫描调度器已启动。")

	loc := config.Cfg.Recall.Location()
	hour := config.Cfg.Recall.SweepHour

	if err := RunSweep(clk.Now(), loc); err != nil {
		fmt.Printf("回顾扫描调度器错误: %v\n", err)
	}

	for {
		next := nextSweepTime(clk.Now(), hour, loc)
		if err := handle.SleepUntil(next); err != nil {
			fmt.Println("回顾扫描调度器: 休眠被中断，正在关闭...")
			return
		}

		if err := RunSweep(clk.Now(), loc); err != nil {
			fmt.Printf("回顾扫描调度器错误: %v\n", err)
		}
	}
}
