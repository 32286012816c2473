package knowledge

import (
	"context"
	"errors"
)

// Document 知识库文档
type Document struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata"` // crop / topic / source
	CreatedAt string            `json:"created_at"`
}

// SearchResult 检索结果
type SearchResult struct {
	ID         string            `json:"id"`
	Content    string            `json:"content"`
	Similarity float64           `json:"similarity"` // 1 - 距离，降序排列
	Metadata   map[string]string `json:"metadata"`
}

// AddItem 批量添加的单个条目
type AddItem struct {
	Content string `json:"content" binding:"required"`
	Crop    string `json:"crop"`
	Topic   string `json:"topic"`
	Source  string `json:"source"`
}

// Stats 知识库统计信息
type Stats struct {
	Collection string           `json:"collection"`
	Total      int64            `json:"total"`
	Crops      map[string]int64 `json:"crops"`
	Topics     map[string]int64 `json:"topics"`
}

// Embedder 向量嵌入接口（简化接口，避免循环依赖）
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
	GetModel() string
}

// ErrEmptyContent 文档内容为空
var ErrEmptyContent = errors.New("document content is empty")

// DefaultCollection 默认知识库集合名
const DefaultCollection = "agriculture_knowledge"

// DefaultCategory 未指定元数据时的默认分类
const DefaultCategory = "未分类"

// DefaultSource 未指定来源时的默认值
const DefaultSource = "用户添加"
