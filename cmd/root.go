package cmd

import (
	"fmt"
	"os"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/spf13/cobra"

	"github.com/Gaoz-1224/AgriChatBot/internal/config"
	"github.com/Gaoz-1224/AgriChatBot/internal/database"
	"github.com/Gaoz-1224/AgriChatBot/internal/knowledge"
	"github.com/Gaoz-1224/AgriChatBot/internal/memory"
)

var cfgFile string

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "agrichatbot",
	Short: "农宝🌾 农业知识问答助手",
	Long:  `农宝是一个基于 RAG 的农业知识问答服务，提供知识库管理、向量检索和多轮对话能力。`,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径 (默认搜索 ./configs/config.yaml)")
}

// loadConfig 加载配置文件
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// buildStore 组装知识库：可选 Redis 缓存 + Embedding 服务 + 向量存储
func buildStore(cfg *config.Config) (*knowledge.Store, *memory.RedisCache, error) {
	var redisCache *memory.RedisCache
	if cfg.Redis.Enabled {
		var err error
		redisCache, err = memory.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			time.Duration(cfg.Redis.TTL)*time.Second)
		if err != nil {
			// Redis 只是加速层，连不上就降级
			logx.Warn("Redis unavailable, running without cache: %v", err)
			redisCache = nil
		}
	}

	embedder, err := memory.NewEmbeddingService(&memory.EmbeddingConfig{
		APIKey:  cfg.Embedding.APIKey,
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Embedding.Model,
	}, redisCache)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init embedding service: %w", err)
	}

	store := knowledge.NewStore(database.GetDB(), embedder, cfg.Knowledge.Collection)
	return store, redisCache, nil
}
