package metadata

import (
	"errors"
	"fmt"

	"github.com/maumlog/maumlog-backend/internal/platform/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MigrateDB creates the metadata table.
func MigrateDB() error {
	if err := database.DB.AutoMigrate(&Metadata{}); err != nil {
		return fmt.Errorf("无法迁移metadata表: %w", err)
	}
	return nil
}

// --- Generic Accessors ---

// GetValue retrieves a value for a given key from the metadata table.
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// If the key doesn't exist, return an empty string, which is a valid default.
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue creates or updates a value for a given key within a transaction.
func SetValue(db *gorm.DB, key, value string) error {
	// Use GORM's OnConflict clause for an efficient and atomic "upsert" operation.
	meta := Metadata{
		Key:   key,
		Value: value,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&meta).Error
}

// --- Specific Helpers ---

// GetLastRecallSweepDate returns the local date ("2006-01-02") of the last
// completed sweep, or "" if no sweep has ever completed.
func GetLastRecallSweepDate(db *gorm.DB) (string, error) {
	return GetValue(db, LastRecallSweepDateKey)
}

// SetLastRecallSweepDate records the local date of a completed sweep.
func SetLastRecallSweepDate(db *gorm.DB, date string) error {
	return SetValue(db, LastRecallSweepDateKey, date)
}
