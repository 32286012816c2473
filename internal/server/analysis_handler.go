package server

import (
	"net/http"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/gin-gonic/gin"

	"github.com/Gaoz-1224/AgriChatBot/internal/llm"
	"github.com/Gaoz-1224/AgriChatBot/internal/model"
	"github.com/Gaoz-1224/AgriChatBot/internal/rag"
	"github.com/Gaoz-1224/AgriChatBot/internal/service"
)

// AnalysisHandler 智能分析处理器，把田间记录交给大模型生成总结与建议
type AnalysisHandler struct {
	engine      *rag.Engine
	invoker     rag.Invoker
	modelName   string
	cropSvc     *service.CropService
	analysisSvc *service.AnalysisService
}

// NewAnalysisHandler 创建智能分析处理器
func NewAnalysisHandler(engine *rag.Engine, llmClient *llm.Client) *AnalysisHandler {
	return &AnalysisHandler{
		engine:      engine,
		invoker:     llmClient,
		modelName:   llmClient.Model(),
		cropSvc:     service.NewCropService(),
		analysisSvc: service.NewAnalysisService(),
	}
}

// SummaryRequest 数据分析请求
type SummaryRequest struct {
	CropID uint `json:"crop_id" binding:"required"`
	Days   int  `json:"days"` // 取最近几条记录，默认7
}

// Summarize AI 分析最近的田间记录并给出建议，结果写入分析历史
func (h *AnalysisHandler) Summarize(c *gin.Context) {
	var req SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}
	if req.Days <= 0 {
		req.Days = 7
	}

	crop, err := h.cropSvc.GetCrop(req.CropID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "获取作物档案失败: "+err.Error())
		return
	}
	if crop == nil {
		fail(c, http.StatusNotFound, "作物档案不存在")
		return
	}

	records, err := h.cropSvc.ListFieldRecords(req.CropID, req.Days)
	if err != nil {
		fail(c, http.StatusInternalServerError, "获取田间记录失败: "+err.Error())
		return
	}
	if len(records) == 0 {
		fail(c, http.StatusNotFound, "没有找到相关记录")
		return
	}

	prompt := service.BuildSummaryPrompt(crop.CropType, service.FormatRecords(records), req.Days)
	analysis, err := h.invoker.Invoke(c.Request.Context(), prompt)
	if err != nil {
		fail(c, http.StatusInternalServerError, "分析生成失败: "+err.Error())
		return
	}

	// 分析历史落库失败不影响返回结果
	history := &model.AnalysisHistory{
		CropID:       req.CropID,
		AnalysisType: "快速分析",
		RecordCount:  len(records),
		Model:        h.modelName,
		Content:      analysis,
	}
	if err := h.analysisSvc.SaveAnalysis(history); err != nil {
		logx.Warn("Failed to save analysis history: %v", err)
	}

	success(c, gin.H{
		"crop_id":       req.CropID,
		"days":          req.Days,
		"records_count": len(records),
		"analysis":      analysis,
	})
}

// AskRecordsRequest 基于记录数据的提问请求
type AskRecordsRequest struct {
	Question string `json:"question" binding:"required"`
	CropID   uint   `json:"crop_id"` // 0 表示不限作物
}

// AskAboutRecords 基于田间记录回答问题，没有记录时退回知识库问答
func (h *AnalysisHandler) AskAboutRecords(c *gin.Context) {
	var req AskRecordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "请求参数错误: "+err.Error())
		return
	}

	var records []model.FieldRecord
	var err error
	if req.CropID > 0 {
		records, err = h.cropSvc.ListFieldRecords(req.CropID, 10)
	} else {
		records, err = h.cropSvc.ListRecentFieldRecords(10)
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, "获取田间记录失败: "+err.Error())
		return
	}

	if len(records) == 0 {
		// 没有记录数据，退回知识库问答
		result := h.engine.Answer(c.Request.Context(), req.Question, nil, false)
		success(c, gin.H{
			"question":     req.Question,
			"answer":       result.Answer,
			"records_used": 0,
		})
		return
	}

	prompt := service.BuildRecordQuestionPrompt(service.FormatRecords(records), req.Question)
	answer, err := h.invoker.Invoke(c.Request.Context(), prompt)
	if err != nil {
		fail(c, http.StatusInternalServerError, "回答生成失败: "+err.Error())
		return
	}

	success(c, gin.H{
		"question":     req.Question,
		"answer":       answer,
		"records_used": len(records),
	})
}

// History 列出分析历史，crop_id 为 0 时不过滤
func (h *AnalysisHandler) History(c *gin.Context) {
	limit := int(parseUint(c.DefaultQuery("limit", "20")))

	analyses, err := h.analysisSvc.ListAnalyses(parseUint(c.Query("crop_id")), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, "获取分析历史失败: "+err.Error())
		return
	}

	success(c, gin.H{
		"total":    len(analyses),
		"analyses": analyses,
	})
}
