package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gaoz-1224/AgriChatBot/internal/model"
)

func TestDeleteFieldRecord(t *testing.T) {
	svc := &CropService{db: newTestDB(t)}

	record := &model.FieldRecord{CropID: 1, Date: "2026-08-20", Temperature: f64(25)}
	require.NoError(t, svc.CreateFieldRecord(record))

	require.NoError(t, svc.DeleteFieldRecord(record.ID))

	records, err := svc.ListFieldRecords(1, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListRecentFieldRecords(t *testing.T) {
	svc := &CropService{db: newTestDB(t)}

	// 两个作物的记录混在一起，按日期倒序取最近的
	require.NoError(t, svc.CreateFieldRecord(&model.FieldRecord{CropID: 1, Date: "2026-08-18"}))
	require.NoError(t, svc.CreateFieldRecord(&model.FieldRecord{CropID: 2, Date: "2026-08-20"}))
	require.NoError(t, svc.CreateFieldRecord(&model.FieldRecord{CropID: 1, Date: "2026-08-19"}))

	records, err := svc.ListRecentFieldRecords(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2026-08-20", records[0].Date)
	assert.Equal(t, "2026-08-19", records[1].Date)
}

func TestTotalCost(t *testing.T) {
	svc := &CropService{db: newTestDB(t)}

	require.NoError(t, svc.CreateCropEvent(&model.CropEvent{CropID: 1, Date: "2026-08-01", EventType: "施肥", Cost: 120.5}))
	require.NoError(t, svc.CreateCropEvent(&model.CropEvent{CropID: 1, Date: "2026-08-10", EventType: "打药", Cost: 80}))
	require.NoError(t, svc.CreateCropEvent(&model.CropEvent{CropID: 2, Date: "2026-08-10", EventType: "灌溉", Cost: 999}))

	total, err := svc.TotalCost(1)
	require.NoError(t, err)
	assert.InDelta(t, 200.5, total, 0.001)

	// 没有事件的作物成本为0
	total, err = svc.TotalCost(3)
	require.NoError(t, err)
	assert.Zero(t, total)
}
