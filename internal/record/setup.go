package record

import (
	"fmt"

	"github.com/maumlog/maumlog-backend/internal/platform/database"
)

// PrimeModule 负责初始化record模块的数据库表结构。
func PrimeModule() error {
	if err := database.DB.AutoMigrate(&Record{}, &RecordImage{}); err != nil {
		return fmt.Errorf("无法迁移record表: %w", err)
	}
	fmt.Println("Record数据库表迁移成功。")
	return nil
}
