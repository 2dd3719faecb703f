package emotion

import (
	"fmt"

	"github.com/maumlog/maumlog-backend/internal/platform/database"
)

// PrimeModule 负责初始化emotion模块的数据库表结构。
func PrimeModule() error {
	if err := database.DB.AutoMigrate(&CalendarDay{}, &MonthlyStat{}); err != nil {
		return fmt.Errorf("无法迁移emotion聚合表: %w", err)
	}
	fmt.Println("Emotion聚合表迁移成功。")
	return nil
}
