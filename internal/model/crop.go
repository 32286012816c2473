package model

import "time"

// Crop 作物模型，一条记录对应一块田里的一个完整生长周期
type Crop struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"index"`

	Username     string     `json:"username" gorm:"index;size:100"` // 所属用户
	Name         string     `json:"name" gorm:"size:100;not null"`  // 田块/作物名称
	CropType     string     `json:"crop_type" gorm:"size:50;not null;index"`
	Variety      string     `json:"variety" gorm:"size:100"`
	Area         float64    `json:"area"` // 亩
	PlantingDate *time.Time `json:"planting_date"`
	HarvestDate  *time.Time `json:"harvest_date"`
	Status       string     `json:"status" gorm:"size:20;default:生长中"`
	Notes        string     `json:"notes" gorm:"type:text"`
}

// TableName 指定表名
func (Crop) TableName() string {
	return "crops"
}

// GrowthDays 计算生长天数
func (c *Crop) GrowthDays() int {
	if c.PlantingDate == nil {
		return 0
	}
	end := time.Now()
	if c.HarvestDate != nil {
		end = *c.HarvestDate
	}
	days := int(end.Sub(*c.PlantingDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
