package chat

import "sync"

// Manager 按会话管理对话窗口，不同用户的窗口互不干扰
type Manager struct {
	mu         sync.Mutex
	windows    map[string]*Window
	windowSize int
}

// NewManager 创建窗口管理器
func NewManager(windowSize int) *Manager {
	return &Manager{
		windows:    make(map[string]*Window),
		windowSize: windowSize,
	}
}

// Get 获取会话对应的窗口，不存在时创建
func (m *Manager) Get(sessionID string) *Window {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[sessionID]
	if !ok {
		w = NewWindow(m.windowSize)
		m.windows[sessionID] = w
	}
	return w
}

// Reset 清掉会话的窗口
func (m *Manager) Reset(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.windows, sessionID)
}

// Len 当前活跃会话数
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}
