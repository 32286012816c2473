package model

import "time"

// CropEvent 关键农事事件模型（播种、施肥、打药、收获等）
type CropEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CropID      uint    `json:"crop_id" gorm:"index;not null"` // 所属作物ID
	Date        string  `json:"date" gorm:"size:20;not null;index"`
	EventType   string  `json:"event_type" gorm:"size:50;not null"`
	Description string  `json:"description" gorm:"type:text"`
	Cost        float64 `json:"cost"` // 元
}

// TableName 指定表名
func (CropEvent) TableName() string {
	return "crop_events"
}
