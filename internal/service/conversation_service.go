package service

import (
	"time"

	"gorm.io/gorm"

	"github.com/Gaoz-1224/AgriChatBot/internal/database"
	"github.com/Gaoz-1224/AgriChatBot/internal/model"
)

// ConversationService 会话服务
type ConversationService struct {
	db *gorm.DB
}

// NewConversationService 创建会话服务实例
func NewConversationService() *ConversationService {
	return &ConversationService{
		db: database.GetDB(),
	}
}

// CreateConversation 创建会话
func (s *ConversationService) CreateConversation(username, title string) (*model.Conversation, error) {
	if title == "" {
		title = "新会话"
	}
	conversation := &model.Conversation{
		Username:      username,
		Title:         title,
		LastMessageAt: time.Now(),
	}
	if err := s.db.Create(conversation).Error; err != nil {
		return nil, err
	}
	return conversation, nil
}

// GetConversation 获取会话
func (s *ConversationService) GetConversation(id uint) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := s.db.First(&conversation, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

// ListConversations 列出用户的会话，按最后消息时间倒序
func (s *ConversationService) ListConversations(username string) ([]model.Conversation, error) {
	var conversations []model.Conversation
	err := s.db.Where("username = ?", username).
		Order("last_message_at DESC").
		Find(&conversations).Error
	return conversations, err
}

// UpdateTitle 更新会话标题
func (s *ConversationService) UpdateTitle(id uint, title string) error {
	return s.db.Model(&model.Conversation{}).
		Where("id = ?", id).
		Update("title", title).Error
}

// UpdateLastMessageAt 更新会话最后消息时间
func (s *ConversationService) UpdateLastMessageAt(id uint) error {
	return s.db.Model(&model.Conversation{}).
		Where("id = ?", id).
		Update("last_message_at", time.Now()).Error
}

// DeleteConversation 删除会话及其全部消息
func (s *ConversationService) DeleteConversation(id uint) error {
	if err := s.db.Where("conversation_id = ?", id).Delete(&model.ChatLog{}).Error; err != nil {
		return err
	}
	return s.db.Delete(&model.Conversation{}, id).Error
}
