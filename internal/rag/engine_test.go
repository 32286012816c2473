package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gaoz-1224/AgriChatBot/internal/chat"
	"github.com/Gaoz-1224/AgriChatBot/internal/knowledge"
)

// fakeRetriever 返回预置的检索结果
type fakeRetriever struct {
	results []*knowledge.SearchResult
	err     error
	calls   int
}

func (f *fakeRetriever) Search(ctx context.Context, query string, n int) ([]*knowledge.SearchResult, error) {
	f.calls++
	return f.results, f.err
}

// fakeInvoker 返回预置的回答
type fakeInvoker struct {
	answer  string
	err     error
	calls   int
	prompts []string
}

func (f *fakeInvoker) Invoke(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func someDocs() []*knowledge.SearchResult {
	return []*knowledge.SearchResult{
		{
			ID:         "doc_1",
			Content:    "冬小麦10月上旬播种最佳",
			Similarity: 0.92,
			Metadata:   map[string]string{"crop": "小麦", "topic": "播种"},
		},
		{
			ID:         "doc_2",
			Content:    "播种前要晒种2-3天",
			Similarity: 0.81,
			Metadata:   map[string]string{"crop": "小麦", "topic": "播种"},
		},
	}
}

func TestAnswerSuccess(t *testing.T) {
	retriever := &fakeRetriever{results: someDocs()}
	invoker := &fakeInvoker{answer: "  10月上旬播种最好🌾  "}
	engine := NewEngine(retriever, invoker, 10, 5)

	result := engine.Answer(context.Background(), "小麦什么时候播种？", nil, false)

	require.Equal(t, KindSuccess, result.Kind)
	assert.Equal(t, "10月上旬播种最好🌾", result.Answer)
	assert.Nil(t, result.Sources)
	assert.Equal(t, 1, invoker.calls)
}

func TestAnswerCacheHitSkipsModel(t *testing.T) {
	retriever := &fakeRetriever{results: someDocs()}
	invoker := &fakeInvoker{answer: "第一次的回答"}
	engine := NewEngine(retriever, invoker, 10, 5)

	first := engine.Answer(context.Background(), "小麦什么时候播种？", nil, false)
	require.Equal(t, KindSuccess, first.Kind)

	second := engine.Answer(context.Background(), "小麦什么时候播种？", nil, false)

	// 命中缓存：回答逐字相同，不再检索和调用模型
	assert.Equal(t, KindCacheHit, second.Kind)
	assert.Equal(t, first.Answer, second.Answer)
	assert.Equal(t, 1, invoker.calls)
	assert.Equal(t, 1, retriever.calls)
}

func TestAnswerNoKnowledge(t *testing.T) {
	retriever := &fakeRetriever{results: nil}
	invoker := &fakeInvoker{answer: "不应该被调用"}
	engine := NewEngine(retriever, invoker, 10, 5)

	result := engine.Answer(context.Background(), "火星上能种土豆吗", nil, false)

	assert.Equal(t, KindNoKnowledge, result.Kind)
	assert.Equal(t, NoKnowledgeAnswer, result.Answer)
	assert.Equal(t, 0, invoker.calls)

	// 兜底回答不缓存：再次提问仍会走检索
	engine.Answer(context.Background(), "火星上能种土豆吗", nil, false)
	assert.Equal(t, 2, retriever.calls)
}

func TestAnswerAuthError(t *testing.T) {
	retriever := &fakeRetriever{results: someDocs()}
	invoker := &fakeInvoker{err: errors.New("InvalidApiKey: The API key is invalid")}
	engine := NewEngine(retriever, invoker, 10, 5)

	result := engine.Answer(context.Background(), "小麦什么时候播种？", nil, false)

	assert.Equal(t, KindAuthError, result.Kind)
	assert.Equal(t, InvalidKeyAnswer, result.Answer)
	assert.Contains(t, result.Answer, "dashscope.console.aliyun.com")

	// 错误回答不缓存
	engine.Answer(context.Background(), "小麦什么时候播种？", nil, false)
	assert.Equal(t, 2, invoker.calls)
}

func TestAnswer401Error(t *testing.T) {
	retriever := &fakeRetriever{results: someDocs()}
	invoker := &fakeInvoker{err: errors.New("error, status code: 401, message: Unauthorized")}
	engine := NewEngine(retriever, invoker, 10, 5)

	result := engine.Answer(context.Background(), "小麦什么时候播种？", nil, false)
	assert.Equal(t, KindAuthError, result.Kind)
}

func TestAnswerTransientError(t *testing.T) {
	retriever := &fakeRetriever{results: someDocs()}
	invoker := &fakeInvoker{err: errors.New("dial tcp 1.2.3.4:443: i/o timeout")}
	engine := NewEngine(retriever, invoker, 10, 5)

	result := engine.Answer(context.Background(), "小麦什么时候播种？", nil, false)

	assert.Equal(t, KindTransient, result.Kind)
	assert.Contains(t, result.Answer, "请稍后重试")
}

func TestAnswerModelError(t *testing.T) {
	retriever := &fakeRetriever{results: someDocs()}
	invoker := &fakeInvoker{err: errors.New("something unexpected")}
	engine := NewEngine(retriever, invoker, 10, 5)

	result := engine.Answer(context.Background(), "小麦什么时候播种？", nil, false)

	assert.Equal(t, KindModelError, result.Kind)
	assert.Contains(t, result.Answer, "something unexpected")
	assert.Contains(t, result.Answer, "😔")
}

func TestAnswerShowSources(t *testing.T) {
	retriever := &fakeRetriever{results: someDocs()}
	invoker := &fakeInvoker{answer: "回答"}
	engine := NewEngine(retriever, invoker, 10, 5)

	result := engine.Answer(context.Background(), "小麦什么时候播种？", nil, true)

	require.Equal(t, KindSuccess, result.Kind)
	require.Len(t, result.Sources, 2)
	assert.Equal(t, "doc_1", result.Sources[0].ID)
}

func TestBuildPromptWithHistory(t *testing.T) {
	history := []chat.Message{
		{Role: "user", Content: "问1"},
		{Role: "assistant", Content: "答1"},
		{Role: "user", Content: "问2"},
		{Role: "assistant", Content: "答2"},
		{Role: "user", Content: "问3"},
		{Role: "assistant", Content: "答3"},
	}

	prompt := buildPrompt("小麦什么时候播种？", history, someDocs())

	assert.Contains(t, prompt, "你是农宝🌾")
	assert.Contains(t, prompt, "【对话历史】")
	assert.Contains(t, prompt, "【文档1 - 小麦】")
	assert.Contains(t, prompt, "【文档2 - 小麦】")
	assert.Contains(t, prompt, "【用户问题】\n小麦什么时候播种？")
	assert.Contains(t, prompt, "150-300字左右")

	// 只取最近5条消息：问1被截掉
	assert.NotContains(t, prompt, "用户：问1")
	assert.Contains(t, prompt, "AI：答1")
	assert.Contains(t, prompt, "用户：问3")
}

func TestBuildPromptWithoutHistory(t *testing.T) {
	prompt := buildPrompt("小麦什么时候播种？", nil, someDocs())

	assert.NotContains(t, prompt, "【对话历史】")
	assert.Contains(t, prompt, "【相关知识】")
	// 知识块之间空行分隔
	assert.Equal(t, 1, strings.Count(prompt, "\n\n【用户问题】"))
}

func TestBuildPromptDefaultCropLabel(t *testing.T) {
	docs := []*knowledge.SearchResult{
		{ID: "doc_1", Content: "内容", Metadata: map[string]string{}},
	}

	prompt := buildPrompt("问题", nil, docs)
	assert.Contains(t, prompt, "【文档1 - 未分类】")
}

func TestEngineCacheStatsAndClear(t *testing.T) {
	retriever := &fakeRetriever{results: someDocs()}
	invoker := &fakeInvoker{answer: "回答"}
	engine := NewEngine(retriever, invoker, 10, 5)

	engine.Answer(context.Background(), "q", nil, false) // miss
	engine.Answer(context.Background(), "q", nil, false) // hit

	stats := engine.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)

	engine.ClearCache()
	assert.Equal(t, 0, engine.CacheStats().Size)
}
