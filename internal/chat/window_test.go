package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowAddTurnAndHistory(t *testing.T) {
	w := NewWindow(10)

	w.AddTurn("小麦什么时候播种？", "10月上旬播种最好🌾")
	w.AddTurn("需要施什么肥？", "底肥用复合肥")

	history := w.History()
	assert.Equal(t, "用户: 小麦什么时候播种？\n农宝: 10月上旬播种最好🌾\n用户: 需要施什么肥？\n农宝: 底肥用复合肥", history)
}

func TestWindowHistoryList(t *testing.T) {
	w := NewWindow(10)
	w.AddTurn("问1", "答1")
	w.AddTurn("问2", "答2")

	messages := w.HistoryList()
	require.Len(t, messages, 4)
	assert.Equal(t, Message{Role: "user", Content: "问1"}, messages[0])
	assert.Equal(t, Message{Role: "assistant", Content: "答1"}, messages[1])
	assert.Equal(t, Message{Role: "user", Content: "问2"}, messages[2])
	assert.Equal(t, Message{Role: "assistant", Content: "答2"}, messages[3])
}

func TestWindowOverflow(t *testing.T) {
	size := 10
	w := NewWindow(size)

	// 超出窗口3轮，最旧的3轮被静默丢弃
	for i := 1; i <= size+3; i++ {
		w.AddTurn(fmt.Sprintf("问%d", i), fmt.Sprintf("答%d", i))
	}

	messages := w.HistoryList()
	require.Len(t, messages, size*2)
	assert.Equal(t, "问4", messages[0].Content)
	assert.Equal(t, fmt.Sprintf("问%d", size+3), messages[len(messages)-2].Content)

	summary := w.GetSummary()
	assert.Equal(t, size*2, summary.TotalMessages)
	assert.Equal(t, size, summary.UserMessages)
	assert.Equal(t, size, summary.AIMessages)
	assert.Equal(t, size, summary.WindowSize)
}

func TestWindowClear(t *testing.T) {
	w := NewWindow(10)
	w.AddTurn("问", "答")

	w.Clear()

	assert.Empty(t, w.History())
	assert.Empty(t, w.HistoryList())
	assert.Equal(t, 0, w.GetSummary().TotalMessages)
}

func TestWindowDefaultSize(t *testing.T) {
	w := NewWindow(0)
	assert.Equal(t, DefaultWindowSize, w.GetSummary().WindowSize)
}

func TestManagerIsolatesSessions(t *testing.T) {
	m := NewManager(10)

	m.Get("alice").AddTurn("alice的问题", "回答")
	m.Get("bob").AddTurn("bob的问题", "回答")

	assert.Len(t, m.Get("alice").HistoryList(), 2)
	assert.Contains(t, m.Get("alice").History(), "alice的问题")
	assert.NotContains(t, m.Get("alice").History(), "bob的问题")
	assert.Equal(t, 2, m.Len())
}

func TestManagerGetReturnsSameWindow(t *testing.T) {
	m := NewManager(10)

	w1 := m.Get("alice")
	w2 := m.Get("alice")
	assert.Same(t, w1, w2)
}

func TestManagerReset(t *testing.T) {
	m := NewManager(10)

	m.Get("alice").AddTurn("问", "答")
	m.Reset("alice")

	assert.Empty(t, m.Get("alice").HistoryList())
}
