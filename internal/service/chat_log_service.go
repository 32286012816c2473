package service

import (
	"gorm.io/gorm"

	"github.com/Gaoz-1224/AgriChatBot/internal/database"
	"github.com/Gaoz-1224/AgriChatBot/internal/model"
)

// ChatLogService 对话日志服务
type ChatLogService struct {
	db *gorm.DB
}

// NewChatLogService 创建对话日志服务实例
func NewChatLogService() *ChatLogService {
	return &ChatLogService{
		db: database.GetDB(),
	}
}

// CreateUserMessage 创建用户消息日志
func (s *ChatLogService) CreateUserMessage(username, content string, conversationID uint) (*model.ChatLog, error) {
	log := &model.ChatLog{
		Username:       username,
		ChatType:       1, // 1=用户提问
		ConversationID: conversationID,
		Content:        content,
	}
	if err := s.db.Create(log).Error; err != nil {
		return nil, err
	}
	return log, nil
}

// CreateAIMessage 创建AI回复日志，parentID 指向对应的提问
func (s *ChatLogService) CreateAIMessage(username, content string, parentID, conversationID uint) (*model.ChatLog, error) {
	log := &model.ChatLog{
		Username:       username,
		ChatType:       2, // 2=AI回答
		ParentID:       parentID,
		ConversationID: conversationID,
		Content:        content,
	}
	if err := s.db.Create(log).Error; err != nil {
		return nil, err
	}
	return log, nil
}

// GetChatLogByID 根据ID获取对话日志
func (s *ChatLogService) GetChatLogByID(id uint) (*model.ChatLog, error) {
	var log model.ChatLog
	err := s.db.First(&log, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

// ListChatLogs 列出对话日志，支持按用户/会话/类型过滤
func (s *ChatLogService) ListChatLogs(username string, conversationID uint, chatType int, limit, offset int) ([]model.ChatLog, int64, error) {
	query := s.db.Model(&model.ChatLog{})

	if username != "" {
		query = query.Where("username = ?", username)
	}
	if conversationID > 0 {
		query = query.Where("conversation_id = ?", conversationID)
	}
	if chatType > 0 {
		query = query.Where("chat_type = ?", chatType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.ChatLog
	err := query.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error

	return logs, total, err
}

// ListConversationMessages 按时间正序取会话内全部消息
func (s *ChatLogService) ListConversationMessages(conversationID uint) ([]model.ChatLog, error) {
	var logs []model.ChatLog
	err := s.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}

// DeleteChatLog 删除对话日志
func (s *ChatLogService) DeleteChatLog(id uint) error {
	return s.db.Delete(&model.ChatLog{}, id).Error
}
