package recall

import (
	"fmt"

	"github.com/maumlog/maumlog-backend/internal/platform/database"
)

// PrimeModule 负责初始化recall模块的数据库表结构。
func PrimeModule() error {
	if err := database.DB.AutoMigrate(&Acknowledgment{}); err != nil {
		return fmt.Errorf("无法迁移recall表: %w", err)
	}
	fmt.Println("Recall数据库表迁移成功。")
	return nil
}
