package model

import "time"

// KnowledgeDocument 知识库文档模型
type KnowledgeDocument struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DocID          string `json:"doc_id" gorm:"uniqueIndex;size:32"` // doc_N，N 单调递增、删除后不复用
	Content        string `json:"content" gorm:"type:text;not null"`
	Crop           string `json:"crop" gorm:"size:50;index;default:未分类"`  // 作物分类
	Topic          string `json:"topic" gorm:"size:50;index;default:未分类"` // 主题分类
	Source         string `json:"source" gorm:"size:100;default:用户添加"`    // 来源
	Embedding      string `json:"-" gorm:"type:text"`                     // JSON 格式的向量
	EmbeddingModel string `json:"embedding_model" gorm:"size:64"`         // Embedding 模型标识
}

// TableName 指定表名
func (KnowledgeDocument) TableName() string {
	return "knowledge_documents"
}

// KnowledgeSequence 文档ID序列，独立于文档表计数，保证删除后ID不回退复用
type KnowledgeSequence struct {
	ID     uint   `gorm:"primaryKey"`
	NextID uint64 `gorm:"not null;default:1"`
}

// TableName 指定表名
func (KnowledgeSequence) TableName() string {
	return "knowledge_sequence"
}
