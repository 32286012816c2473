package service

import (
	"gorm.io/gorm"

	"github.com/Gaoz-1224/AgriChatBot/internal/database"
	"github.com/Gaoz-1224/AgriChatBot/internal/model"
)

// CropService 作物档案服务，管理作物、田间记录和农事事件
type CropService struct {
	db *gorm.DB
}

// NewCropService 创建作物服务实例
func NewCropService() *CropService {
	return &CropService{
		db: database.GetDB(),
	}
}

// CreateCrop 创建作物档案
func (s *CropService) CreateCrop(crop *model.Crop) error {
	return s.db.Create(crop).Error
}

// GetCrop 获取作物档案
func (s *CropService) GetCrop(id uint) (*model.Crop, error) {
	var crop model.Crop
	if err := s.db.First(&crop, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &crop, nil
}

// ListCrops 列出用户的作物档案，status 为空时不过滤
func (s *CropService) ListCrops(username, status string) ([]model.Crop, error) {
	query := s.db.Where("username = ?", username)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var crops []model.Crop
	err := query.Order("created_at DESC").Find(&crops).Error
	return crops, err
}

// UpdateCrop 更新作物档案字段
func (s *CropService) UpdateCrop(id uint, updates map[string]interface{}) error {
	return s.db.Model(&model.Crop{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteCrop 删除作物档案及其记录和事件
func (s *CropService) DeleteCrop(id uint) error {
	if err := s.db.Where("crop_id = ?", id).Delete(&model.FieldRecord{}).Error; err != nil {
		return err
	}
	if err := s.db.Where("crop_id = ?", id).Delete(&model.CropEvent{}).Error; err != nil {
		return err
	}
	return s.db.Delete(&model.Crop{}, id).Error
}

// CreateFieldRecord 添加田间记录
func (s *CropService) CreateFieldRecord(record *model.FieldRecord) error {
	return s.db.Create(record).Error
}

// ListFieldRecords 列出作物的田间记录，按日期倒序
func (s *CropService) ListFieldRecords(cropID uint, limit int) ([]model.FieldRecord, error) {
	query := s.db.Where("crop_id = ?", cropID).Order("date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []model.FieldRecord
	err := query.Find(&records).Error
	return records, err
}

// ListRecentFieldRecords 列出全部作物的最近田间记录，按日期倒序
func (s *CropService) ListRecentFieldRecords(limit int) ([]model.FieldRecord, error) {
	query := s.db.Order("date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []model.FieldRecord
	err := query.Find(&records).Error
	return records, err
}

// DeleteFieldRecord 删除田间记录
func (s *CropService) DeleteFieldRecord(id uint) error {
	return s.db.Delete(&model.FieldRecord{}, id).Error
}

// CreateCropEvent 添加农事事件
func (s *CropService) CreateCropEvent(event *model.CropEvent) error {
	return s.db.Create(event).Error
}

// ListCropEvents 列出作物的农事事件，按日期倒序
func (s *CropService) ListCropEvents(cropID uint) ([]model.CropEvent, error) {
	var events []model.CropEvent
	err := s.db.Where("crop_id = ?", cropID).
		Order("date DESC").
		Find(&events).Error
	return events, err
}

// TotalCost 统计作物的农事总成本
func (s *CropService) TotalCost(cropID uint) (float64, error) {
	var total float64
	err := s.db.Model(&model.CropEvent{}).
		Where("crop_id = ?", cropID).
		Select("COALESCE(SUM(cost), 0)").
		Scan(&total).Error
	return total, err
}
