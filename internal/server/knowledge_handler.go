package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Gaoz-1224/AgriChatBot/internal/knowledge"
)

// KnowledgeHandler 知识库处理器
type KnowledgeHandler struct {
	store *knowledge.Store
}

// NewKnowledgeHandler 创建知识库处理器
func NewKnowledgeHandler(store *knowledge.Store) *KnowledgeHandler {
	return &KnowledgeHandler{store: store}
}

// Add 添加单个文档
func (h *KnowledgeHandler) Add(c *gin.Context) {
	var req knowledge.AddItem
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	id, err := h.store.Add(c.Request.Context(), req.Content, req.Crop, req.Topic, req.Source)
	if err != nil {
		if errors.Is(err, knowledge.ErrEmptyContent) {
			fail(c, http.StatusBadRequest, "文档内容不能为空")
			return
		}
		fail(c, http.StatusInternalServerError, "添加文档失败: "+err.Error())
		return
	}

	success(c, gin.H{"id": id})
}

// AddBatchRequest 批量添加请求
type AddBatchRequest struct {
	Items []knowledge.AddItem `json:"items" binding:"required"`
}

// AddBatch 批量添加文档
func (h *KnowledgeHandler) AddBatch(c *gin.Context) {
	var req AddBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	ids, err := h.store.AddBatch(c.Request.Context(), req.Items)
	if err != nil {
		if errors.Is(err, knowledge.ErrEmptyContent) {
			fail(c, http.StatusBadRequest, "文档内容不能为空")
			return
		}
		fail(c, http.StatusInternalServerError, "批量添加失败: "+err.Error())
		return
	}

	success(c, gin.H{
		"total": len(ids),
		"ids":   ids,
	})
}

// Get 获取单个文档
func (h *KnowledgeHandler) Get(c *gin.Context) {
	doc, err := h.store.Get(c.Param("id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, "获取文档失败: "+err.Error())
		return
	}
	if doc == nil {
		fail(c, http.StatusNotFound, "文档不存在")
		return
	}

	success(c, doc)
}

// Delete 删除文档，ID 不存在也视为成功
func (h *KnowledgeHandler) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Param("id")); err != nil {
		fail(c, http.StatusInternalServerError, "删除文档失败: "+err.Error())
		return
	}
	success(c, nil)
}

// List 列出文档
func (h *KnowledgeHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	docs, err := h.store.List(limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, "获取文档列表失败: "+err.Error())
		return
	}

	success(c, gin.H{
		"total":     len(docs),
		"documents": docs,
	})
}

// Search 向量检索
func (h *KnowledgeHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		fail(c, http.StatusBadRequest, "q is required")
		return
	}
	n, _ := strconv.Atoi(c.DefaultQuery("n", "5"))

	results, err := h.store.Search(c.Request.Context(), query, n)
	if err != nil {
		fail(c, http.StatusInternalServerError, "检索失败: "+err.Error())
		return
	}

	success(c, gin.H{
		"total":   len(results),
		"results": results,
	})
}

// Stats 知识库统计
func (h *KnowledgeHandler) Stats(c *gin.Context) {
	stats, err := h.store.Stats()
	if err != nil {
		fail(c, http.StatusInternalServerError, "获取统计失败: "+err.Error())
		return
	}
	success(c, stats)
}

// Clear 清空知识库
func (h *KnowledgeHandler) Clear(c *gin.Context) {
	if err := h.store.Clear(); err != nil {
		fail(c, http.StatusInternalServerError, "清空知识库失败: "+err.Error())
		return
	}
	success(c, nil)
}
