package knowledge

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Gaoz-1224/AgriChatBot/internal/model"
)

// fakeEmbedder 按预置的向量表返回，未命中时返回固定向量
type fakeEmbedder struct {
	vectors map[string][]float64
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float64{1, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	result := make([][]float64, 0, len(texts))
	for _, text := range texts {
		v, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

func (f *fakeEmbedder) GetModel() string {
	return "fake-embedding"
}

func newTestStore(t *testing.T, vectors map[string][]float64) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.KnowledgeDocument{}, &model.KnowledgeSequence{}))

	return NewStore(db, &fakeEmbedder{vectors: vectors}, "")
}

func TestStoreAdd(t *testing.T) {
	store := newTestStore(t, nil)

	id, err := store.Add(context.Background(), "冬小麦10月上旬播种", "小麦", "播种", "")
	require.NoError(t, err)
	assert.Equal(t, "doc_1", id)

	doc, err := store.Get(id)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "冬小麦10月上旬播种", doc.Content)
	assert.Equal(t, "小麦", doc.Metadata["crop"])
	assert.Equal(t, "播种", doc.Metadata["topic"])
	assert.Equal(t, DefaultSource, doc.Metadata["source"])
}

func TestStoreAddDefaultMetadata(t *testing.T) {
	store := newTestStore(t, nil)

	id, err := store.Add(context.Background(), "一条知识", "", "", "")
	require.NoError(t, err)

	doc, err := store.Get(id)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, DefaultCategory, doc.Metadata["crop"])
	assert.Equal(t, DefaultCategory, doc.Metadata["topic"])
	assert.Equal(t, DefaultSource, doc.Metadata["source"])
}

func TestStoreAddEmptyContent(t *testing.T) {
	store := newTestStore(t, nil)

	_, err := store.Add(context.Background(), "   ", "", "", "")
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestStoreAddBatchSequentialIDs(t *testing.T) {
	store := newTestStore(t, nil)

	_, err := store.Add(context.Background(), "第一条", "", "", "")
	require.NoError(t, err)

	ids, err := store.AddBatch(context.Background(), []AddItem{
		{Content: "第二条"},
		{Content: "第三条"},
		{Content: "第四条"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"doc_2", "doc_3", "doc_4"}, ids)
}

func TestStoreAddBatchRejectsEmptyItem(t *testing.T) {
	store := newTestStore(t, nil)

	_, err := store.AddBatch(context.Background(), []AddItem{
		{Content: "正常内容"},
		{Content: ""},
	})
	assert.ErrorIs(t, err, ErrEmptyContent)

	// 整批回绝，一条都没写进去
	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Total)
}

func TestStoreIDNotReusedAfterDelete(t *testing.T) {
	store := newTestStore(t, nil)

	id1, err := store.Add(context.Background(), "第一条", "", "", "")
	require.NoError(t, err)
	require.NoError(t, store.Delete(id1))

	id2, err := store.Add(context.Background(), "第二条", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "doc_2", id2)
}

func TestStoreGetMissing(t *testing.T) {
	store := newTestStore(t, nil)

	doc, err := store.Get("doc_999")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestStoreDeleteIdempotent(t *testing.T) {
	store := newTestStore(t, nil)

	// 删除不存在的ID不报错
	assert.NoError(t, store.Delete("doc_999"))

	id, err := store.Add(context.Background(), "一条知识", "", "", "")
	require.NoError(t, err)

	assert.NoError(t, store.Delete(id))
	assert.NoError(t, store.Delete(id))
}

func TestStoreList(t *testing.T) {
	store := newTestStore(t, nil)

	for _, content := range []string{"第一条", "第二条", "第三条"} {
		_, err := store.Add(context.Background(), content, "", "", "")
		require.NoError(t, err)
	}

	docs, err := store.List(2)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	// 按插入顺序返回
	assert.Equal(t, "doc_1", docs[0].ID)
	assert.Equal(t, "doc_2", docs[1].ID)
}

func TestStoreStats(t *testing.T) {
	store := newTestStore(t, nil)

	_, err := store.Add(context.Background(), "小麦知识1", "小麦", "播种", "")
	require.NoError(t, err)
	_, err = store.Add(context.Background(), "小麦知识2", "小麦", "施肥", "")
	require.NoError(t, err)
	_, err = store.Add(context.Background(), "水稻知识", "水稻", "播种", "")
	require.NoError(t, err)

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, DefaultCollection, stats.Collection)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.Crops["小麦"])
	assert.Equal(t, int64(1), stats.Crops["水稻"])
	assert.Equal(t, int64(2), stats.Topics["播种"])
	assert.Equal(t, int64(1), stats.Topics["施肥"])
}

func TestStoreCollectionName(t *testing.T) {
	store := newTestStore(t, nil)
	assert.Equal(t, DefaultCollection, store.Collection())

	named := NewStore(nil, nil, "greenhouse_knowledge")
	assert.Equal(t, "greenhouse_knowledge", named.Collection())
}

func TestStoreClear(t *testing.T) {
	store := newTestStore(t, nil)

	_, err := store.Add(context.Background(), "一条知识", "", "", "")
	require.NoError(t, err)

	require.NoError(t, store.Clear())

	stats, err := store.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Total)

	// 清空不重置ID序列
	id, err := store.Add(context.Background(), "新知识", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "doc_2", id)
}

func TestStoreSearchOrdering(t *testing.T) {
	vectors := map[string][]float64{
		"完全相关": {1, 0},
		"部分相关": {1, 1},
		"毫不相关": {0, 1},
		"查询":   {1, 0},
	}
	store := newTestStore(t, vectors)

	for _, content := range []string{"毫不相关", "完全相关", "部分相关"} {
		_, err := store.Add(context.Background(), content, "测试", "", "")
		require.NoError(t, err)
	}

	results, err := store.Search(context.Background(), "查询", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// 相似度降序
	assert.Equal(t, "完全相关", results[0].Content)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-9)
	assert.Equal(t, "部分相关", results[1].Content)
	assert.InDelta(t, 0.7071, results[1].Similarity, 1e-3)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
}

func TestStoreSearchEmptyStore(t *testing.T) {
	store := newTestStore(t, nil)

	results, err := store.Search(context.Background(), "任何问题", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStoreSearchDefaultTopN(t *testing.T) {
	store := newTestStore(t, nil)

	for i := 0; i < 8; i++ {
		_, err := store.Add(context.Background(), "知识内容", "", "", "")
		require.NoError(t, err)
	}

	results, err := store.Search(context.Background(), "查询", 0)
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 1e-9)

	// 维度不一致或零向量返回0
	assert.Equal(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{1, 0, 0}))
	assert.Equal(t, 0.0, cosineSimilarity([]float64{0, 0}, []float64{1, 0}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}
