package config

// Config 全局配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	JWTSecret string `mapstructure:"jwt_secret"` // JWT 签名密钥，支持环境变量
}

// LLMConfig 大语言模型配置
type LLMConfig struct {
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	TopP        float32 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// EmbeddingConfig 向量嵌入配置
type EmbeddingConfig struct {
	Model   string `mapstructure:"model"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// KnowledgeConfig 知识库配置
type KnowledgeConfig struct {
	Collection string `mapstructure:"collection"`  // 集合标识，对应持久化表
	MaxResults int    `mapstructure:"max_results"` // 检索返回条数
}

// ChatConfig 对话配置
type ChatConfig struct {
	MaxHistory int `mapstructure:"max_history"` // 对话窗口保留轮数
	CacheSize  int `mapstructure:"cache_size"`  // 问答缓存容量
}

// RedisConfig Redis 缓存配置（可选）
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTL      int    `mapstructure:"ttl"` // 秒
}
