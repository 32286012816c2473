package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig 从YAML文件加载配置，支持环境变量覆盖
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 设置配置文件
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		// 默认配置文件搜索路径
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.agrichatbot")
		v.AddConfigPath("/etc/agrichatbot")
	}

	// 支持环境变量
	v.SetEnvPrefix("AGRI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 设置默认值
	setDefaults(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 如果是找不到配置文件，则使用默认配置
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// 解析配置
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 替换环境变量
	expandEnvVars(&config)

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// Server 默认配置
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)

	// Auth 默认配置
	v.SetDefault("auth.enabled", false)

	// LLM 默认配置（通义千问兼容模式）
	v.SetDefault("llm.model", "qwen-plus")
	v.SetDefault("llm.base_url", "https://dashscope.aliyuncs.com/compatible-mode/v1")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.top_p", 0.8)
	v.SetDefault("llm.max_tokens", 2000)

	// Embedding 默认配置
	v.SetDefault("embedding.model", "text-embedding-v3")
	v.SetDefault("embedding.base_url", "https://dashscope.aliyuncs.com/compatible-mode/v1")

	// 知识库默认配置
	v.SetDefault("knowledge.collection", "agriculture_knowledge")
	v.SetDefault("knowledge.max_results", 5)

	// 对话默认配置
	v.SetDefault("chat.max_history", 10)
	v.SetDefault("chat.cache_size", 100)

	// Redis 默认配置
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 3600)
}

// expandEnvVars 展开配置中的环境变量
func expandEnvVars(config *Config) {
	config.Auth.JWTSecret = os.ExpandEnv(config.Auth.JWTSecret)
	config.LLM.APIKey = os.ExpandEnv(config.LLM.APIKey)
	config.Embedding.APIKey = os.ExpandEnv(config.Embedding.APIKey)
	config.Redis.Password = os.ExpandEnv(config.Redis.Password)

	// Embedding 未单独配置 Key 时复用 LLM 的
	if config.Embedding.APIKey == "" {
		config.Embedding.APIKey = config.LLM.APIKey
	}
}
