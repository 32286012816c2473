package model

import "time"

// ChatLog 对话记录模型
type ChatLog struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`

	Username       string `json:"username" gorm:"index;size:100"`
	ChatType       int    `json:"chat_type" gorm:"index"` // 1=用户提问, 2=AI回答
	ParentID       uint   `json:"parent_id"`              // 父消息ID（AI回答指向对应的提问）
	ConversationID uint   `json:"conversation_id" gorm:"index"`
	Content        string `json:"content" gorm:"type:text"`
}

// TableName 指定表名
func (ChatLog) TableName() string {
	return "chat_logs"
}
