package database

import (
	"fmt"
	"log"
	"os"

	"github.com/maumlog/maumlog-backend/internal/platform/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是全局的GORM数据库实例，是所有记录和聚合数据的唯一事实来源
var DB *gorm.DB

// InitDB 初始化数据库连接
func InitDB(cfg config.SqliteConfig) {
	var err error

	// GORM日志配置
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 0,
			LogLevel:      logger.Silent, // 在生产环境中可以设为Silent
			Colorful:      true,
		},
	)

	// 连接到SQLite数据库
	// busy_timeout让并发写入在锁竞争时等待而不是直接报SQLITE_BUSY
	DB, err = gorm.Open(sqlite.Open(cfg.Path+"?_busy_timeout=5000"), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		fmt.Println("连接数据库失败", err)
		panic(err)
	}

	// 外键级联（record_images 等依赖）
	DB.Exec("PRAGMA foreign_keys = ON")

	fmt.Println("数据库连接成功！")
}

// IsRetryableError 判断一个SQLite错误是否属于可以安全重试的临时错误。
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return msg == "database is locked" || msg == "database table is locked"
}
