package service

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Gaoz-1224/AgriChatBot/internal/database"
	"github.com/Gaoz-1224/AgriChatBot/internal/model"
)

// AnalysisService 智能分析服务，保存和查询大模型对田间记录的分析
type AnalysisService struct {
	db *gorm.DB
}

// NewAnalysisService 创建智能分析服务实例
func NewAnalysisService() *AnalysisService {
	return &AnalysisService{
		db: database.GetDB(),
	}
}

// SaveAnalysis 保存分析结果
func (s *AnalysisService) SaveAnalysis(record *model.AnalysisHistory) error {
	return s.db.Create(record).Error
}

// ListAnalyses 列出作物的分析历史，按时间倒序
func (s *AnalysisService) ListAnalyses(cropID uint, limit int) ([]model.AnalysisHistory, error) {
	query := s.db.Order("created_at DESC")
	if cropID > 0 {
		query = query.Where("crop_id = ?", cropID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var analyses []model.AnalysisHistory
	err := query.Find(&analyses).Error
	return analyses, err
}

// FormatRecords 把田间记录拼成模型可读的文本，每条记录带序号
func FormatRecords(records []model.FieldRecord) string {
	var builder strings.Builder
	for i := range records {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(fmt.Sprintf("记录%d:\n", i+1))
		builder.WriteString(formatRecord(&records[i]))
	}
	return builder.String()
}

// formatRecord 单条记录的文本形式，缺失的字段不输出
func formatRecord(r *model.FieldRecord) string {
	lines := []string{fmt.Sprintf("【记录时间】%s", r.Date)}
	if r.Temperature != nil {
		lines = append(lines, fmt.Sprintf("【温度】%.1f°C", *r.Temperature))
	}
	if r.Humidity != nil {
		lines = append(lines, fmt.Sprintf("【湿度】%.1f%%", *r.Humidity))
	}
	if r.Weather != "" {
		lines = append(lines, fmt.Sprintf("【天气】%s", r.Weather))
	}
	if r.GrowthStatus != "" {
		lines = append(lines, fmt.Sprintf("【生长状态】%s", r.GrowthStatus))
	}
	if r.Notes != "" {
		lines = append(lines, fmt.Sprintf("【备注】%s", r.Notes))
	}
	return strings.Join(lines, "\n")
}

// BuildSummaryPrompt 构造田间记录分析的 Prompt
func BuildSummaryPrompt(cropName, recordsText string, days int) string {
	if cropName == "" {
		cropName = "作物"
	}
	return fmt.Sprintf(`你是农宝🌾，一位专业的农业数据分析师。

以下是用户最近%d天记录的%s数据：

%s

请分析这些数据并提供：
1. **数据总结**：温度、湿度的变化趋势
2. **潜在问题**：根据数据发现可能的问题（如温度异常、湿度不适等）
3. **专业建议**：针对性的管理建议（施肥、灌溉、病虫害预防等）
4. **风险提示**：需要注意的风险点

要求：
- 语言通俗易懂
- 结构清晰，分点说明
- 300-500字
- 适当使用emoji

请开始分析：`, days, cropName, recordsText)
}

// BuildRecordQuestionPrompt 构造基于记录数据回答问题的 Prompt
func BuildRecordQuestionPrompt(recordsText, question string) string {
	return fmt.Sprintf(`你是农宝🌾，用户想基于他的记录数据问你问题。

【用户的记录数据】
%s

【用户问题】
%s

【回答要求】
1. 优先基于记录数据回答
2. 如果记录数据不够，可以补充你的专业知识，但要说明
3. 语言通俗易懂，200-300字

请回答：`, recordsText, question)
}
