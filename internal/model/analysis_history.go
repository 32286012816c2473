package model

import "time"

// AnalysisHistory AI 数据分析历史，记录每次对田间记录的分析结果
type AnalysisHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CropID       uint   `json:"crop_id" gorm:"index;not null"`              // 被分析的作物ID
	AnalysisType string `json:"analysis_type" gorm:"size:50;default:快速分析"` // 分析类型
	RecordCount  int    `json:"record_count"`                               // 参与分析的记录条数
	Model        string `json:"model" gorm:"size:100"`                      // 生成分析的模型名
	Content      string `json:"content" gorm:"type:text"`                   // 完整分析内容
}

// TableName 指定表名
func (AnalysisHistory) TableName() string {
	return "analysis_history"
}
