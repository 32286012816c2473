package chat

import (
	"strings"
	"sync"
)

// Turn 一轮对话：一条用户消息配一条AI回答，作为整体进出窗口
type Turn struct {
	UserMessage string `json:"user_message"`
	AIMessage   string `json:"ai_message"`
}

// Message 单条消息（结构化历史）
type Message struct {
	Role    string `json:"role"` // user / assistant
	Content string `json:"content"`
}

// Summary 对话摘要信息
type Summary struct {
	TotalMessages int `json:"total_messages"`
	UserMessages  int `json:"user_messages"`
	AIMessages    int `json:"ai_messages"`
	WindowSize    int `json:"window_size"`
}

// DefaultWindowSize 默认保留的对话轮数
const DefaultWindowSize = 10

// Window 对话窗口，只保留最近 N 轮
type Window struct {
	mu    sync.Mutex
	turns []Turn
	size  int
}

// NewWindow 创建对话窗口
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Window{
		size: size,
	}
}

// AddTurn 追加一轮完整对话，超出窗口时静默丢弃最旧的一轮
func (w *Window) AddTurn(userMessage, aiMessage string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.turns = append(w.turns, Turn{
		UserMessage: userMessage,
		AIMessage:   aiMessage,
	})

	if len(w.turns) > w.size {
		w.turns = w.turns[len(w.turns)-w.size:]
	}
}

// History 获取格式化的对话历史，从旧到新
func (w *Window) History() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var builder strings.Builder
	for i, turn := range w.turns {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("用户: " + turn.UserMessage)
		builder.WriteString("\n农宝: " + turn.AIMessage)
	}
	return builder.String()
}

// HistoryList 获取结构化的对话历史
func (w *Window) HistoryList() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()

	messages := make([]Message, 0, len(w.turns)*2)
	for _, turn := range w.turns {
		messages = append(messages, Message{Role: "user", Content: turn.UserMessage})
		messages = append(messages, Message{Role: "assistant", Content: turn.AIMessage})
	}
	return messages
}

// Clear 清空对话历史
func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.turns = nil
}

// GetSummary 获取对话摘要
func (w *Window) GetSummary() Summary {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Summary{
		TotalMessages: len(w.turns) * 2,
		UserMessages:  len(w.turns),
		AIMessages:    len(w.turns),
		WindowSize:    w.size,
	}
}
