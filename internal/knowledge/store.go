package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"gorm.io/gorm"

	"github.com/Gaoz-1224/AgriChatBot/internal/model"
)

// Store 知识库，文档与向量都落在 sqlite 里
type Store struct {
	db         *gorm.DB
	embedder   Embedder
	collection string
}

// NewStore 创建知识库，collection 为空时使用默认集合名
func NewStore(db *gorm.DB, embedder Embedder, collection string) *Store {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Store{
		db:         db,
		embedder:   embedder,
		collection: collection,
	}
}

// Collection 知识库集合名
func (s *Store) Collection() string {
	return s.collection
}

// Add 添加单个文档，返回分配的文档ID
func (s *Store) Add(ctx context.Context, content, crop, topic, source string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}

	doc := s.buildDocument(content, crop, topic, source)

	// 生成 embedding
	if s.embedder != nil {
		vector, err := s.embedder.Embed(ctx, content)
		if err != nil {
			return "", fmt.Errorf("failed to embed document: %w", err)
		}
		embJSON, _ := json.Marshal(vector)
		doc.Embedding = string(embJSON)
		doc.EmbeddingModel = s.embedder.GetModel()
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		id, err := nextDocID(tx, 1)
		if err != nil {
			return err
		}
		doc.DocID = fmt.Sprintf("doc_%d", id)
		return tx.Create(doc).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to create document: %w", err)
	}

	logx.Info("✅ Added document to knowledge base: %s (crop=%s, topic=%s)", doc.DocID, doc.Crop, doc.Topic)
	return doc.DocID, nil
}

// AddBatch 批量添加文档，ID 连续分配，整体一个事务
func (s *Store) AddBatch(ctx context.Context, items []AddItem) ([]string, error) {
	if len(items) == 0 {
		return []string{}, nil
	}

	// 先校验每一条，避免写入一半
	contents := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Content) == "" {
			return nil, ErrEmptyContent
		}
		contents = append(contents, item.Content)
	}

	// 批量生成 embedding
	var vectors [][]float64
	if s.embedder != nil {
		var err error
		vectors, err = s.embedder.EmbedBatch(ctx, contents)
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch: %w", err)
		}
	}

	docs := make([]*model.KnowledgeDocument, 0, len(items))
	for i, item := range items {
		doc := s.buildDocument(item.Content, item.Crop, item.Topic, item.Source)
		if vectors != nil && i < len(vectors) {
			embJSON, _ := json.Marshal(vectors[i])
			doc.Embedding = string(embJSON)
			doc.EmbeddingModel = s.embedder.GetModel()
		}
		docs = append(docs, doc)
	}

	ids := make([]string, 0, len(items))
	err := s.db.Transaction(func(tx *gorm.DB) error {
		start, err := nextDocID(tx, uint64(len(docs)))
		if err != nil {
			return err
		}
		for i, doc := range docs {
			doc.DocID = fmt.Sprintf("doc_%d", start+uint64(i))
			ids = append(ids, doc.DocID)
		}
		return tx.Create(&docs).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create documents: %w", err)
	}

	logx.Info("✅ Batch added %d documents to knowledge base", len(docs))
	return ids, nil
}

// Get 根据ID获取文档，不存在时返回 nil 而非错误
func (s *Store) Get(id string) (*Document, error) {
	var doc model.KnowledgeDocument
	if err := s.db.Where("doc_id = ?", id).First(&doc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return toDocument(&doc), nil
}

// Delete 删除文档，对不存在的ID幂等
func (s *Store) Delete(id string) error {
	result := s.db.Where("doc_id = ?", id).Delete(&model.KnowledgeDocument{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete document: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		logx.Info("✅ Deleted document from knowledge base: %s", id)
	}
	return nil
}

// List 按插入顺序列出文档，最多 limit 条
func (s *Store) List(limit int) ([]*Document, error) {
	query := s.db.Model(&model.KnowledgeDocument{}).Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var docs []model.KnowledgeDocument
	if err := query.Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	documents := make([]*Document, 0, len(docs))
	for i := range docs {
		documents = append(documents, toDocument(&docs[i]))
	}
	return documents, nil
}

// Stats 获取知识库统计信息，扫描全部元数据
func (s *Store) Stats() (*Stats, error) {
	var docs []model.KnowledgeDocument
	if err := s.db.Select("crop", "topic").Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("failed to scan documents: %w", err)
	}

	stats := &Stats{
		Collection: s.collection,
		Total:      int64(len(docs)),
		Crops:      make(map[string]int64),
		Topics:     make(map[string]int64),
	}
	for i := range docs {
		stats.Crops[docs[i].Crop]++
		stats.Topics[docs[i].Topic]++
	}

	return stats, nil
}

// Clear 清空知识库（危险操作）。ID 序列保留，新文档不会复用旧ID
func (s *Store) Clear() error {
	result := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.KnowledgeDocument{})
	if result.Error != nil {
		return fmt.Errorf("failed to clear knowledge base: %w", result.Error)
	}

	logx.Warn("⚠️ Knowledge base cleared (%d documents removed)", result.RowsAffected)
	return nil
}

// buildDocument 填充默认元数据
func (s *Store) buildDocument(content, crop, topic, source string) *model.KnowledgeDocument {
	if crop == "" {
		crop = DefaultCategory
	}
	if topic == "" {
		topic = DefaultCategory
	}
	if source == "" {
		source = DefaultSource
	}

	return &model.KnowledgeDocument{
		Content: content,
		Crop:    crop,
		Topic:   topic,
		Source:  source,
	}
}

// nextDocID 从序列表中预留 n 个ID，返回起始值
func nextDocID(tx *gorm.DB, n uint64) (uint64, error) {
	var seq model.KnowledgeSequence
	if err := tx.First(&seq).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			return 0, err
		}
		seq = model.KnowledgeSequence{NextID: 1}
		if err := tx.Create(&seq).Error; err != nil {
			return 0, err
		}
	}

	start := seq.NextID
	if err := tx.Model(&seq).Update("next_id", start+n).Error; err != nil {
		return 0, err
	}
	return start, nil
}

// toDocument 转换为对外的 Document 结构
func toDocument(doc *model.KnowledgeDocument) *Document {
	return &Document{
		ID:      doc.DocID,
		Content: doc.Content,
		Metadata: map[string]string{
			"crop":   doc.Crop,
			"topic":  doc.Topic,
			"source": doc.Source,
		},
		CreatedAt: doc.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
