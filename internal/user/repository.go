package user

// --- Redis 键名常量 ---

const (
	// KnownUsersKey 是一个 Redis Set 的键，缓存所有已激活用户的UUID。
	// 它只是SQLite users表的热镜像，用于中间件的快速存在性检查。
	KnownUsersKey = "user:known"
)
