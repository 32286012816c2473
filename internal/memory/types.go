package memory

import "time"

// Message 消息结构（兼容 LLM）
type Message struct {
	Role      string    `json:"role"` // user/assistant
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
