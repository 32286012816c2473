package rag

import (
	"context"
	"fmt"
	"strings"

	"cnb.cool/zhiqiangwang/pkg/logx"

	"github.com/Gaoz-1224/AgriChatBot/internal/chat"
	"github.com/Gaoz-1224/AgriChatBot/internal/knowledge"
)

// ResultKind 回答的类别
type ResultKind string

const (
	KindSuccess     ResultKind = "success"         // 模型正常生成
	KindCacheHit    ResultKind = "cache_hit"       // 命中问答缓存
	KindNoKnowledge ResultKind = "no_knowledge"    // 知识库没有相关内容
	KindAuthError   ResultKind = "auth_error"      // API Key 无效或过期
	KindTransient   ResultKind = "transient_error" // 网络/超时类临时错误
	KindModelError  ResultKind = "model_error"     // 其他模型调用错误
)

// Result RAG 查询结果。错误也以可读回答的形式返回，Kind 区分来源
type Result struct {
	Kind    ResultKind                `json:"kind"`
	Answer  string                    `json:"answer"`
	Sources []*knowledge.SearchResult `json:"sources,omitempty"`
}

// Retriever 知识检索接口
type Retriever interface {
	Search(ctx context.Context, query string, n int) ([]*knowledge.SearchResult, error)
}

// Invoker 大模型调用接口
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// NoKnowledgeAnswer 知识库为空或没有相关内容时的固定回答
const NoKnowledgeAnswer = "抱歉，我的知识库中没有找到相关信息。你可以尝试换个方式提问，或者联系管理员添加相关知识。"

// InvalidKeyAnswer API Key 失效时的固定回答
const InvalidKeyAnswer = "❌ API Key无效或已过期！\n\n请管理员访问以下链接更新API Key：\nhttps://dashscope.console.aliyun.com/apiKey"

// Engine RAG 检索增强生成引擎
type Engine struct {
	retriever  Retriever
	invoker    Invoker
	cache      *AnswerCache
	maxResults int
}

// NewEngine 创建 RAG 引擎
func NewEngine(retriever Retriever, invoker Invoker, cacheSize, maxResults int) *Engine {
	if maxResults <= 0 {
		maxResults = 5
	}

	logx.Info("✅ RAG engine initialized (cache=%d, top_k=%d)", cacheSize, maxResults)
	return &Engine{
		retriever:  retriever,
		invoker:    invoker,
		cache:      NewAnswerCache(cacheSize),
		maxResults: maxResults,
	}
}

// Answer 执行一次 RAG 查询
func (e *Engine) Answer(ctx context.Context, question string, history []chat.Message, showSources bool) *Result {
	// 1. 查缓存
	cacheKey := Fingerprint(question)
	if answer, ok := e.cache.Get(cacheKey); ok {
		stats := e.cache.Stats()
		logx.Info("🚀 Cache hit (%d/%d = %.1f%%)", stats.Hits, stats.Total, stats.HitRate)
		return &Result{Kind: KindCacheHit, Answer: answer}
	}

	// 2. 检索相关文档
	docs, err := e.retriever.Search(ctx, question, e.maxResults)
	if err != nil {
		return e.classify(err)
	}
	if len(docs) == 0 {
		// 兜底回答不进缓存，知识库随时可能补充内容
		return &Result{Kind: KindNoKnowledge, Answer: NoKnowledgeAnswer}
	}

	// 3. 组装 prompt
	prompt := buildPrompt(question, history, docs)

	// 4. 调用 LLM
	answer, err := e.invoker.Invoke(ctx, prompt)
	if err != nil {
		return e.classify(err)
	}
	answer = strings.TrimSpace(answer)

	// 5. 只有模型正常生成的回答才进缓存
	e.cache.Put(cacheKey, answer)

	result := &Result{Kind: KindSuccess, Answer: answer}
	if showSources {
		result.Sources = docs
	}
	return result
}

// CacheStats 获取缓存统计
func (e *Engine) CacheStats() CacheStats {
	return e.cache.Stats()
}

// ClearCache 清空问答缓存
func (e *Engine) ClearCache() {
	e.cache.Clear()
	logx.Info("🧹 Answer cache cleared")
}

// classify 把底层错误翻译成用户可读的回答
func (e *Engine) classify(err error) *Result {
	msg := err.Error()

	if strings.Contains(msg, "InvalidApiKey") || strings.Contains(msg, "401") {
		logx.Error("LLM auth error: %v", err)
		return &Result{Kind: KindAuthError, Answer: InvalidKeyAnswer}
	}

	for _, keyword := range []string{
		"timeout",
		"connection refused",
		"dial tcp",
		"context deadline exceeded",
		"i/o timeout",
	} {
		if strings.Contains(msg, keyword) {
			logx.Warn("LLM transient error: %v", err)
			return &Result{
				Kind:   KindTransient,
				Answer: fmt.Sprintf("😔 抱歉，AI服务暂时连接不上：%s\n\n请稍后重试。", msg),
			}
		}
	}

	logx.Error("LLM error: %v", err)
	return &Result{
		Kind:   KindModelError,
		Answer: fmt.Sprintf("😔 抱歉，AI回答时出现错误：%s\n\n请稍后重试或联系管理员。", msg),
	}
}

// buildPrompt 构建带知识上下文的完整 prompt
func buildPrompt(question string, history []chat.Message, docs []*knowledge.SearchResult) string {
	// 知识上下文：【文档i - 作物】块
	blocks := make([]string, 0, len(docs))
	for i, doc := range docs {
		crop := doc.Metadata["crop"]
		if crop == "" {
			crop = knowledge.DefaultCategory
		}
		blocks = append(blocks, fmt.Sprintf("【文档%d - %s】\n%s", i+1, crop, doc.Content))
	}
	context := strings.Join(blocks, "\n\n")

	var builder strings.Builder
	builder.WriteString("你是农宝🌾，一位专业、友好的农业AI助手。\n\n")

	// 最近 5 条历史消息，没有历史时整段省略
	if len(history) > 0 {
		recent := history
		if len(recent) > 5 {
			recent = recent[len(recent)-5:]
		}
		lines := make([]string, 0, len(recent))
		for _, msg := range recent {
			role := "AI"
			if msg.Role == "user" {
				role = "用户"
			}
			lines = append(lines, fmt.Sprintf("%s：%s", role, msg.Content))
		}
		builder.WriteString("【对话历史】\n")
		builder.WriteString(strings.Join(lines, "\n"))
		builder.WriteString("\n\n")
	}

	builder.WriteString("【相关知识】\n")
	builder.WriteString(context)
	builder.WriteString("\n\n【用户问题】\n")
	builder.WriteString(question)
	builder.WriteString(`

【回答要求】
1. 基于上述知识库内容回答
2. 语言通俗易懂，避免过于专业的术语
3. 如果知识库信息不足，诚实说明并给出一般性建议
4. 适当使用emoji让回答更生动（如🌾💧🐛等）
5. 150-300字左右

请回答：`)

	return builder.String()
}
