package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gaoz-1224/AgriChatBot/internal/service"
)

// ConversationHandler 会话管理处理器
type ConversationHandler struct {
	convSvc    *service.ConversationService
	chatLogSvc *service.ChatLogService
}

// NewConversationHandler 创建会话管理处理器
func NewConversationHandler() *ConversationHandler {
	return &ConversationHandler{
		convSvc:    service.NewConversationService(),
		chatLogSvc: service.NewChatLogService(),
	}
}

// List 列出当前用户的会话
func (h *ConversationHandler) List(c *gin.Context) {
	conversations, err := h.convSvc.ListConversations(currentUsername(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, "获取会话列表失败: "+err.Error())
		return
	}

	success(c, gin.H{
		"total":         len(conversations),
		"conversations": conversations,
	})
}

// Messages 获取会话内的全部消息，按时间正序
func (h *ConversationHandler) Messages(c *gin.Context) {
	id := parseUint(c.Param("id"))

	conversation, err := h.convSvc.GetConversation(id)
	if err != nil {
		fail(c, http.StatusInternalServerError, "获取会话失败: "+err.Error())
		return
	}
	if conversation == nil {
		fail(c, http.StatusNotFound, "会话不存在")
		return
	}

	messages, err := h.chatLogSvc.ListConversationMessages(id)
	if err != nil {
		fail(c, http.StatusInternalServerError, "获取会话消息失败: "+err.Error())
		return
	}

	success(c, gin.H{
		"conversation": conversation,
		"messages":     messages,
	})
}

// UpdateTitleRequest 更新标题请求
type UpdateTitleRequest struct {
	Title string `json:"title" binding:"required"`
}

// UpdateTitle 更新会话标题
func (h *ConversationHandler) UpdateTitle(c *gin.Context) {
	var req UpdateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	if err := h.convSvc.UpdateTitle(parseUint(c.Param("id")), req.Title); err != nil {
		fail(c, http.StatusInternalServerError, "更新会话标题失败: "+err.Error())
		return
	}
	success(c, nil)
}

// Delete 删除会话及其消息
func (h *ConversationHandler) Delete(c *gin.Context) {
	if err := h.convSvc.DeleteConversation(parseUint(c.Param("id"))); err != nil {
		fail(c, http.StatusInternalServerError, "删除会话失败: "+err.Error())
		return
	}
	success(c, nil)
}
