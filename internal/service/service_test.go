package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Gaoz-1224/AgriChatBot/internal/model"
)

// newTestDB 内存 sqlite，迁移服务层用到的全部表
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Crop{},
		&model.FieldRecord{},
		&model.CropEvent{},
		&model.AnalysisHistory{},
		&model.Conversation{},
		&model.ChatLog{},
	))
	return db
}

// float64 字面量取指针
func f64(v float64) *float64 {
	return &v
}
