package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"cnb.cool/zhiqiangwang/pkg/logx"

	"github.com/Gaoz-1224/AgriChatBot/internal/model"
)

// Search 向量检索，按相似度降序返回最多 n 条结果
func (s *Store) Search(ctx context.Context, query string, n int) ([]*SearchResult, error) {
	if n <= 0 {
		n = 5
	}

	// 空库直接返回空结果
	var total int64
	if err := s.db.Model(&model.KnowledgeDocument{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	if total == 0 {
		return []*SearchResult{}, nil
	}

	if s.embedder == nil {
		return nil, fmt.Errorf("embedder not configured")
	}

	// 1. 生成查询向量
	queryVector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	// 2. 加载所有有 embedding 的文档
	var docs []model.KnowledgeDocument
	if err := s.db.Where("embedding != ''").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	if len(docs) == 0 {
		logx.Warn("No documents with embeddings found")
		return []*SearchResult{}, nil
	}

	// 3. 计算相似度并排序
	type scoredDoc struct {
		doc   *model.KnowledgeDocument
		score float64
	}

	var scoredDocs []scoredDoc
	for i := range docs {
		var docVector []float64
		if err := json.Unmarshal([]byte(docs[i].Embedding), &docVector); err != nil {
			logx.Warn("Failed to parse embedding for doc %s: %v", docs[i].DocID, err)
			continue
		}

		// similarity = 1 - distance，余弦距离下即余弦相似度
		similarity := cosineSimilarity(queryVector, docVector)
		scoredDocs = append(scoredDocs, scoredDoc{
			doc:   &docs[i],
			score: similarity,
		})
	}

	// 4. 按相似度降序排序
	sort.Slice(scoredDocs, func(i, j int) bool {
		return scoredDocs[i].score > scoredDocs[j].score
	})

	// 5. 取前 n 个
	limit := n
	if len(scoredDocs) < limit {
		limit = len(scoredDocs)
	}

	results := make([]*SearchResult, 0, limit)
	for i := 0; i < limit; i++ {
		doc := scoredDocs[i].doc
		results = append(results, &SearchResult{
			ID:         doc.DocID,
			Content:    doc.Content,
			Similarity: scoredDocs[i].score,
			Metadata: map[string]string{
				"crop":   doc.Crop,
				"topic":  doc.Topic,
				"source": doc.Source,
			},
		})
	}

	logx.Info("Vector search found %d documents (query embedding dim=%d)", len(results), len(queryVector))
	return results, nil
}

// cosineSimilarity 计算两个向量的余弦相似度
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
