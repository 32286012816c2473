package model

import "time"

// FieldRecord 每日田间记录模型
type FieldRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CropID       uint     `json:"crop_id" gorm:"index;not null"` // 所属作物ID
	Date         string   `json:"date" gorm:"size:20;not null;index"`
	Temperature  *float64 `json:"temperature"` // 摄氏度
	Humidity     *float64 `json:"humidity"`    // 百分比
	Weather      string   `json:"weather" gorm:"size:50"`
	GrowthStatus string   `json:"growth_status" gorm:"size:100"`
	Notes        string   `json:"notes" gorm:"type:text"`
}

// TableName 指定表名
func (FieldRecord) TableName() string {
	return "field_records"
}
