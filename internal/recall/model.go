package recall

import "time"

// Acknowledgment 是"所有者已经回顾过这条记录"的持久化标记。
// 只会为揭示时刻已到的记录创建；一经创建永不删除。
type Acknowledgment struct {
	ID uint `gorm:"primarykey"`

	UserID   string `gorm:"uniqueIndex:idx_ack_user_record;type:varchar(36);not null"`
	RecordID uint   `gorm:"uniqueIndex:idx_ack_user_record;not null"`

	CreatedAt time.Time
}

// --- Redis 键名常量 ---

const (
	// OutboxKey 是一个 Redis List 的键，作为回顾通知的出站队列。
	// 扫描器往里LPUSH每个用户的到期批次，投递由外部机制消费。
	OutboxKey = "recall:outbox"
)
