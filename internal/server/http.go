package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Gaoz-1224/AgriChatBot/internal/chat"
	"github.com/Gaoz-1224/AgriChatBot/internal/config"
	"github.com/Gaoz-1224/AgriChatBot/internal/knowledge"
	"github.com/Gaoz-1224/AgriChatBot/internal/llm"
	"github.com/Gaoz-1224/AgriChatBot/internal/memory"
	"github.com/Gaoz-1224/AgriChatBot/internal/middleware"
	"github.com/Gaoz-1224/AgriChatBot/internal/rag"
)

// HTTPGinServer 基于 Gin 的 HTTP 服务器
type HTTPGinServer struct {
	config *config.Config
	engine *gin.Engine
	server *http.Server

	authHandler         *AuthHandler
	chatHandler         *ChatHandler
	knowledgeHandler    *KnowledgeHandler
	cropHandler         *CropHandler
	conversationHandler *ConversationHandler
	analysisHandler     *AnalysisHandler
}

// NewHTTPGinServer 创建基于 Gin 的 HTTP 服务器
func NewHTTPGinServer(cfg *config.Config, store *knowledge.Store, ragEngine *rag.Engine, chatManager *chat.Manager, redisCache *memory.RedisCache, llmClient *llm.Client) *HTTPGinServer {
	// 设置 Gin 模式
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// JWT 签名密钥
	middleware.SetSecret(cfg.Auth.JWTSecret)

	engine := gin.New()

	s := &HTTPGinServer{
		config:              cfg,
		engine:              engine,
		authHandler:         NewAuthHandler(),
		chatHandler:         NewChatHandler(ragEngine, chatManager, redisCache),
		knowledgeHandler:    NewKnowledgeHandler(store),
		cropHandler:         NewCropHandler(),
		conversationHandler: NewConversationHandler(),
		analysisHandler:     NewAnalysisHandler(ragEngine, llmClient),
	}

	// 注册中间件
	s.registerMiddlewares()

	// 注册路由
	s.registerRoutes()

	return s
}

// registerMiddlewares 注册中间件
func (s *HTTPGinServer) registerMiddlewares() {
	// 恢复中间件 - 从 panic 恢复
	s.engine.Use(gin.Recovery())

	// 请求ID中间件
	s.engine.Use(s.requestIDMiddleware())

	// 自定义日志中间件
	s.engine.Use(s.loggingMiddleware())

	// CORS 中间件
	s.engine.Use(s.corsMiddleware())
}

// requestIDMiddleware 给每个请求分配请求ID，透传客户端带来的 X-Request-Id
func (s *HTTPGinServer) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-Id", requestID)
		c.Next()
	}
}

// loggingMiddleware 自定义日志中间件
func (s *HTTPGinServer) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		logx.Info("HTTP %s %s, status %d, duration %s, request_id %s",
			method, path, status, duration, c.GetString("request_id"))
	}
}

// corsMiddleware CORS 中间件
func (s *HTTPGinServer) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// registerRoutes 注册路由
func (s *HTTPGinServer) registerRoutes() {
	// API v1 路由组
	v1 := s.engine.Group("/api/v1")
	{
		// 健康检查
		v1.GET("/health", s.handleHealth)

		// 认证
		v1.POST("/auth/login", s.authHandler.Login)
		v1.POST("/auth/logout", s.authHandler.Logout)

		// 业务接口，auth.enabled 时需要登录
		api := v1.Group("")
		if s.config.Auth.Enabled {
			api.Use(middleware.JWTAuth())
		}

		// 对话
		chatGroup := api.Group("/chat")
		{
			chatGroup.POST("/ask", s.chatHandler.Ask)
			chatGroup.GET("/history", s.chatHandler.History)
			chatGroup.GET("/logs", s.chatHandler.Logs)
			chatGroup.DELETE("/logs/:id", s.chatHandler.DeleteLog)
			chatGroup.GET("/summary", s.chatHandler.Summary)
			chatGroup.POST("/reset", s.chatHandler.Reset)
			chatGroup.GET("/cache/stats", s.chatHandler.CacheStats)
			chatGroup.POST("/cache/clear", s.chatHandler.ClearCache)
		}

		// 知识库
		kb := api.Group("/knowledge")
		{
			kb.POST("", s.knowledgeHandler.Add)
			kb.POST("/batch", s.knowledgeHandler.AddBatch)
			kb.GET("/search", s.knowledgeHandler.Search)
			kb.GET("/stats", s.knowledgeHandler.Stats)
			kb.GET("/list", s.knowledgeHandler.List)
			kb.GET("/:id", s.knowledgeHandler.Get)
			kb.DELETE("/:id", s.knowledgeHandler.Delete)
			kb.POST("/clear", s.knowledgeHandler.Clear)
		}

		// 会话管理
		conversations := api.Group("/conversations")
		{
			conversations.GET("", s.conversationHandler.List)
			conversations.GET("/:id/messages", s.conversationHandler.Messages)
			conversations.PUT("/:id/title", s.conversationHandler.UpdateTitle)
			conversations.DELETE("/:id", s.conversationHandler.Delete)
		}

		// 作物档案
		crops := api.Group("/crops")
		{
			crops.POST("", s.cropHandler.Create)
			crops.GET("", s.cropHandler.List)
			crops.GET("/:id", s.cropHandler.Get)
			crops.PUT("/:id", s.cropHandler.Update)
			crops.DELETE("/:id", s.cropHandler.Delete)

			crops.POST("/:id/records", s.cropHandler.AddRecord)
			crops.GET("/:id/records", s.cropHandler.ListRecords)
			crops.POST("/:id/events", s.cropHandler.AddEvent)
			crops.GET("/:id/events", s.cropHandler.ListEvents)
		}

		// 田间记录直接删除入口
		api.DELETE("/records/:id", s.cropHandler.DeleteRecord)

		// 智能分析
		analysis := api.Group("/analysis")
		{
			analysis.POST("/summary", s.analysisHandler.Summarize)
			analysis.POST("/ask", s.analysisHandler.AskAboutRecords)
			analysis.GET("/history", s.analysisHandler.History)
		}
	}
}

// Start 启动 HTTP 服务器
func (s *HTTPGinServer) Start() error {
	addr := fmt.Sprintf("0.0.0.0:%d", s.config.Server.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 630 * time.Second, // 留足大模型生成时间
	}

	logx.Info("🛜 Starting HTTP Server (Gin), Addr %s", addr)
	return s.server.ListenAndServe()
}

// Stop 停止 HTTP 服务器
func (s *HTTPGinServer) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Response 统一响应结构
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// success 返回成功响应
func success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    200,
		Message: "Success",
		Data:    data,
	})
}

// fail 返回错误响应
func fail(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// ==================== 健康检查 ====================

func (s *HTTPGinServer) handleHealth(c *gin.Context) {
	success(c, gin.H{
		"status": "healthy",
	})
}

// ==================== 辅助函数 ====================

// parseUint 解析无符号整数参数，非法输入按 0 处理
func parseUint(s string) uint {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}

// itoa uint 转字符串
func itoa(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}
