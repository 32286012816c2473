package llm

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"
	openai "github.com/sashabaranov/go-openai"

	"github.com/Gaoz-1224/AgriChatBot/internal/config"
)

// ErrNoChoices 模型返回了空的 choices 列表
var ErrNoChoices = errors.New("no response choices")

// Client OpenAI 兼容的对话客户端，用于 DashScope / OpenAI 等服务
type Client struct {
	cfg    config.LLMConfig
	client *openai.Client
}

// NewClient 创建对话客户端
func NewClient(cfg config.LLMConfig) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)

	// 直接使用配置的 BaseURL,不自动添加 /v1
	// DashScope 兼容模式的路径是 /compatible-mode/v1
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
		logx.Debug("LLM client BaseURL: %s", cfg.BaseURL)
	}

	// 禁用 HTTP/2 - 设置空的 TLSNextProto map 会阻止 HTTP/2
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSNextProto:        make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
	}

	clientConfig.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   600 * time.Second,
	}

	logx.Info("LLM client initialized, model %s", cfg.Model)

	return &Client{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// Invoke 单轮调用,发送完整 prompt 并返回模型回答
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: c.cfg.Temperature,
		TopP:        c.cfg.TopP,
		MaxTokens:   c.cfg.MaxTokens,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}

// Model 当前使用的模型名
func (c *Client) Model() string {
	return c.cfg.Model
}
