package server

import (
	"net/http"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/gin-gonic/gin"

	"github.com/Gaoz-1224/AgriChatBot/internal/chat"
	"github.com/Gaoz-1224/AgriChatBot/internal/memory"
	"github.com/Gaoz-1224/AgriChatBot/internal/model"
	"github.com/Gaoz-1224/AgriChatBot/internal/rag"
	"github.com/Gaoz-1224/AgriChatBot/internal/service"
)

// ChatHandler 对话处理器
type ChatHandler struct {
	engine      *rag.Engine
	manager     *chat.Manager
	chatLogSvc  *service.ChatLogService
	convSvc     *service.ConversationService
	redisCache  *memory.RedisCache // 可选，消息同时写入 Redis 加速最近历史读取
	persistLogs bool
}

// NewChatHandler 创建对话处理器
func NewChatHandler(engine *rag.Engine, manager *chat.Manager, redisCache *memory.RedisCache) *ChatHandler {
	return &ChatHandler{
		engine:      engine,
		manager:     manager,
		chatLogSvc:  service.NewChatLogService(),
		convSvc:     service.NewConversationService(),
		redisCache:  redisCache,
		persistLogs: true,
	}
}

// AskRequest 提问请求
type AskRequest struct {
	Question       string `json:"question" binding:"required"`
	ConversationID uint   `json:"conversation_id"`
	ShowSources    bool   `json:"show_sources"`
}

// AskResponse 提问响应
type AskResponse struct {
	Answer         string       `json:"answer"`
	Kind           string       `json:"kind"`
	ConversationID uint         `json:"conversation_id,omitempty"`
	Sources        any          `json:"sources,omitempty"`
	Summary        chat.Summary `json:"summary"`
}

// Ask 向农宝提问
func (h *ChatHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	username := currentUsername(c)
	window := h.manager.Get(h.sessionKey(username, req.ConversationID))

	// 1. 执行 RAG 查询
	result := h.engine.Answer(c.Request.Context(), req.Question, window.HistoryList(), req.ShowSources)

	// 2. 更新对话窗口，错误类回答不算一轮对话
	switch result.Kind {
	case rag.KindSuccess, rag.KindCacheHit, rag.KindNoKnowledge:
		window.AddTurn(req.Question, result.Answer)
	}

	// 3. 落库
	conversationID := req.ConversationID
	if h.persistLogs {
		conversationID = h.persist(username, req.Question, result.Answer, conversationID)
	}

	success(c, AskResponse{
		Answer:         result.Answer,
		Kind:           string(result.Kind),
		ConversationID: conversationID,
		Sources:        result.Sources,
		Summary:        window.GetSummary(),
	})
}

// History 获取当前窗口内的对话历史，窗口为空时尝试从 Redis 恢复最近消息
func (h *ChatHandler) History(c *gin.Context) {
	username := currentUsername(c)
	conversationID := parseUint(c.Query("conversation_id"))
	window := h.manager.Get(h.sessionKey(username, conversationID))

	messages := window.HistoryList()
	if len(messages) == 0 && h.redisCache != nil && conversationID > 0 {
		cached, err := h.redisCache.GetConversationHistory(conversationID)
		if err != nil {
			logx.Warn("Failed to read history from redis: %v", err)
		}
		for _, msg := range cached {
			messages = append(messages, chat.Message{Role: msg.Role, Content: msg.Content})
		}
	}

	success(c, gin.H{
		"history":  window.History(),
		"messages": messages,
	})
}

// Summary 获取对话摘要
func (h *ChatHandler) Summary(c *gin.Context) {
	username := currentUsername(c)
	conversationID := parseUint(c.Query("conversation_id"))
	window := h.manager.Get(h.sessionKey(username, conversationID))

	success(c, window.GetSummary())
}

// Reset 清空当前窗口的对话历史
func (h *ChatHandler) Reset(c *gin.Context) {
	username := currentUsername(c)
	conversationID := parseUint(c.Query("conversation_id"))
	h.manager.Reset(h.sessionKey(username, conversationID))

	if h.redisCache != nil && conversationID > 0 {
		if err := h.redisCache.ClearConversationHistory(conversationID); err != nil {
			logx.Warn("Failed to clear redis history: %v", err)
		}
	}

	logx.Info("Chat window reset for user %s", username)
	success(c, nil)
}

// Logs 分页查询持久化的对话记录
func (h *ChatHandler) Logs(c *gin.Context) {
	pageNum := int(parseUint(c.DefaultQuery("page_num", "1")))
	pageSize := int(parseUint(c.DefaultQuery("page_size", "20")))
	if pageNum <= 0 {
		pageNum = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	logs, total, err := h.chatLogSvc.ListChatLogs(
		currentUsername(c),
		parseUint(c.Query("conversation_id")),
		int(parseUint(c.Query("chat_type"))),
		pageSize,
		(pageNum-1)*pageSize,
	)
	if err != nil {
		fail(c, http.StatusInternalServerError, "获取对话记录失败: "+err.Error())
		return
	}

	totalPage := (int(total) + pageSize - 1) / pageSize
	success(c, model.ListResponse{
		Items: logs,
		PageInfo: &model.PageInfo{
			PageNum:   pageNum,
			PageSize:  pageSize,
			Total:     int(total),
			TotalPage: totalPage,
		},
	})
}

// DeleteLog 删除一条对话记录
func (h *ChatHandler) DeleteLog(c *gin.Context) {
	id := parseUint(c.Param("id"))

	log, err := h.chatLogSvc.GetChatLogByID(id)
	if err != nil {
		fail(c, http.StatusInternalServerError, "获取对话记录失败: "+err.Error())
		return
	}
	if log == nil {
		fail(c, http.StatusNotFound, "对话记录不存在")
		return
	}

	if err := h.chatLogSvc.DeleteChatLog(id); err != nil {
		fail(c, http.StatusInternalServerError, "删除对话记录失败: "+err.Error())
		return
	}
	success(c, nil)
}

// CacheStats 问答缓存统计
func (h *ChatHandler) CacheStats(c *gin.Context) {
	success(c, h.engine.CacheStats())
}

// ClearCache 清空问答缓存
func (h *ChatHandler) ClearCache(c *gin.Context) {
	h.engine.ClearCache()
	success(c, nil)
}

// sessionKey 每个用户每个会话一个独立窗口
func (h *ChatHandler) sessionKey(username string, conversationID uint) string {
	if conversationID == 0 {
		return username
	}
	return username + ":" + itoa(conversationID)
}

// persist 把一问一答写入数据库，返回会话ID
func (h *ChatHandler) persist(username, question, answer string, conversationID uint) uint {
	// 没有会话时建一个，标题取问题前缀
	if conversationID == 0 {
		title := question
		if len([]rune(title)) > 20 {
			title = string([]rune(title)[:20])
		}
		conv, err := h.convSvc.CreateConversation(username, title)
		if err != nil {
			logx.Warn("Failed to create conversation: %v", err)
			return 0
		}
		conversationID = conv.ID
	}

	userLog, err := h.chatLogSvc.CreateUserMessage(username, question, conversationID)
	if err != nil {
		logx.Warn("Failed to persist user message: %v", err)
		return conversationID
	}

	if _, err := h.chatLogSvc.CreateAIMessage(username, answer, userLog.ID, conversationID); err != nil {
		logx.Warn("Failed to persist AI message: %v", err)
	}

	if err := h.convSvc.UpdateLastMessageAt(conversationID); err != nil {
		logx.Warn("Failed to update conversation timestamp: %v", err)
	}

	// 同步写入 Redis，供最近历史的快速读取
	if h.redisCache != nil {
		now := time.Now()
		for _, msg := range []memory.Message{
			{Role: "user", Content: question, CreatedAt: now},
			{Role: "assistant", Content: answer, CreatedAt: now},
		} {
			if err := h.redisCache.AppendMessage(conversationID, msg); err != nil {
				logx.Warn("Failed to cache message in redis: %v", err)
				break
			}
		}
	}

	return conversationID
}
