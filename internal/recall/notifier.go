package recall

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/maumlog/maumlog-backend/internal/platform/database"
)

// Notification 是扫描器为一个用户生成的一次到期提醒。
type Notification struct {
	UserID    string    `json:"userId"`
	SweepDate string    `json:"sweepDate"`
	Items     []DueItem `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifier 负责把到期提醒投递出去。
// 投递失败不会中断扫描，也不影响记录本身的状态。
type Notifier interface {
	Notify(n *Notification) error
}

var notifier Notifier = redisOutboxNotifier{}

// SetNotifier 允许测试或其他投递后端替换默认实现。
func SetNotifier(n Notifier) {
	notifier = n
}

// redisOutboxNotifier 把提醒序列化后LPUSH进Redis出站队列，
// 由外部的推送服务消费。Redis不可用时直接丢弃本次提醒。
type redisOutboxNotifier struct{}

func (redisOutboxNotifier) Notify(n *Notification) error {
	if !database.IsRedisHealthy() {
		return fmt.Errorf("redis不可用，提醒未投递")
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("提醒序列化失败: %w", err)
	}
	return database.RDB.LPush(database.Ctx, OutboxKey, payload).Err()
}
