package draft

import (
	"fmt"

	"github.com/maumlog/maumlog-backend/internal/platform/database"
)

// PrimeModule 负责初始化draft模块的数据库表结构。
func PrimeModule() error {
	if err := database.DB.AutoMigrate(&Draft{}, &DraftImage{}); err != nil {
		return fmt.Errorf("无法迁移draft表: %w", err)
	}
	fmt.Println("Draft数据库表迁移成功。")
	return nil
}
