package rag

import (
	"crypto/md5"
	"encoding/hex"
	"sync"
)

// DefaultCacheSize 默认问答缓存容量
const DefaultCacheSize = 100

// CacheStats 缓存统计信息
type CacheStats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Total   int64   `json:"total"`
	HitRate float64 `json:"hit_rate"` // 百分比
	Size    int     `json:"size"`
}

// AnswerCache 问答缓存，固定容量，满了之后按先进先出淘汰
type AnswerCache struct {
	mu       sync.Mutex
	entries  map[string]string
	order    []string // 淘汰队列，只记录插入顺序，命中不调整
	capacity int
	hits     int64
	misses   int64
}

// NewAnswerCache 创建问答缓存
func NewAnswerCache(capacity int) *AnswerCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &AnswerCache{
		entries:  make(map[string]string),
		order:    make([]string, 0, capacity),
		capacity: capacity,
	}
}

// Fingerprint 计算问题的缓存键，对原始字节取 md5，不做任何归一化
func Fingerprint(question string) string {
	sum := md5.Sum([]byte(question))
	return hex.EncodeToString(sum[:])
}

// Get 查缓存，同时累计命中/未命中计数
func (c *AnswerCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	answer, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return answer, ok
}

// Put 写入缓存，容量满时先淘汰最旧的一条
func (c *AnswerCache) Put(key, answer string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = answer
		return
	}

	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[key] = answer
	c.order = append(c.order, key)
}

// Stats 获取缓存统计
func (c *AnswerCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(c.hits) / float64(total) * 100
	}

	return CacheStats{
		Hits:    c.hits,
		Misses:  c.misses,
		Total:   total,
		HitRate: hitRate,
		Size:    len(c.entries),
	}
}

// Clear 清空缓存内容和计数
func (c *AnswerCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]string)
	c.order = c.order[:0]
	c.hits = 0
	c.misses = 0
}
