package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache Redis 缓存层，用于 embedding 结果和会话历史的加速
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache 创建 Redis 缓存
func NewRedisCache(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{
		client: client,
		ttl:    ttl,
	}, nil
}

// GetEmbedding 获取缓存的向量
func (r *RedisCache) GetEmbedding(key string) ([]float64, error) {
	ctx := context.Background()

	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil // 缓存未命中
	}
	if err != nil {
		return nil, err
	}

	var vector []float64
	if err := json.Unmarshal([]byte(data), &vector); err != nil {
		return nil, err
	}

	return vector, nil
}

// SetEmbedding 缓存向量
func (r *RedisCache) SetEmbedding(key string, vector []float64) error {
	ctx := context.Background()

	data, err := json.Marshal(vector)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, key, data, r.ttl).Err()
}

// GetConversationHistory 获取会话历史（Redis）
func (r *RedisCache) GetConversationHistory(conversationID uint) ([]Message, error) {
	key := fmt.Sprintf("conv:%d:history", conversationID)
	ctx := context.Background()

	result, err := r.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	var messages []Message
	for _, item := range result {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// AppendMessage 追加单条消息到会话历史
func (r *RedisCache) AppendMessage(conversationID uint, msg Message) error {
	key := fmt.Sprintf("conv:%d:history", conversationID)
	ctx := context.Background()

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	// 追加到列表
	if err := r.client.RPush(ctx, key, data).Err(); err != nil {
		return err
	}

	// 更新过期时间
	return r.client.Expire(ctx, key, r.ttl).Err()
}

// ClearConversationHistory 清空会话历史
func (r *RedisCache) ClearConversationHistory(conversationID uint) error {
	key := fmt.Sprintf("conv:%d:history", conversationID)
	return r.client.Del(context.Background(), key).Err()
}

// Close 关闭 Redis 连接
func (r *RedisCache) Close() error {
	return r.client.Close()
}
