package model

import "time"

// Conversation 用户与农宝的一个对话会话。
// 会话本身只存元信息，具体的一问一答以 ChatLog 形式通过 conversation_id 挂在会话下。
type Conversation struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`

	Username      string    `json:"username" gorm:"index;size:100"` // 会话归属用户
	Title         string    `json:"title" gorm:"size:255"`          // 标题，默认取首个问题的前缀
	LastMessageAt time.Time `json:"last_message_at" gorm:"index"`   // 最后一条消息时间，会话列表按此排序
}

// TableName 指定表名
func (Conversation) TableName() string {
	return "conversations"
}
