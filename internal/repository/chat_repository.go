package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"zipfit/internal/model"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Create(ctx context.Context, chat *model.Chat) error {
	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		return fmt.Errorf("create chat failed: %w", err)
	}
	return nil
}

func (r *ChatRepository) GetBySessionKey(ctx context.Context, sessionKey string) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.WithContext(ctx).Where("session_key = ?", sessionKey).First(&chat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chat failed: %w", err)
	}
	return &chat, nil
}

func (r *ChatRepository) ListByUserKey(ctx context.Context, userKey string) ([]model.Chat, error) {
	var chats []model.Chat
	if err := r.db.WithContext(ctx).Where("user_key = ?", userKey).Order("updated_at DESC").Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("list chats failed: %w", err)
	}
	return chats, nil
}

func (r *ChatRepository) UpdateTitle(ctx context.Context, id uint, title string) error {
	if err := r.db.WithContext(ctx).Model(&model.Chat{}).Where("id = ?", id).Update("title", title).Error; err != nil {
		return fmt.Errorf("update chat title failed: %w", err)
	}
	return nil
}
