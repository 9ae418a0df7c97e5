package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"zipfit/internal/model"
)

type ChatMessageRepository struct {
	db *gorm.DB
}

func NewChatMessageRepository(db *gorm.DB) *ChatMessageRepository {
	return &ChatMessageRepository{db: db}
}

// Create inserts the message. A redelivered message with an existing
// (chat_id, sequence) is ignored.
func (r *ChatMessageRepository) Create(ctx context.Context, message *model.ChatMessage) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(message).Error; err != nil {
		return fmt.Errorf("create chat message failed: %w", err)
	}
	return nil
}

func (r *ChatMessageRepository) ListByChatID(ctx context.Context, chatID uint, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	var messages []model.ChatMessage
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Order("sequence ASC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list chat messages failed: %w", err)
	}
	return messages, nil
}

func (r *ChatMessageRepository) MaxSequence(ctx context.Context, chatID uint) (int, error) {
	var seq int
	err := r.db.WithContext(ctx).Model(&model.ChatMessage{}).
		Where("chat_id = ?", chatID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&seq).Error
	if err != nil {
		return 0, fmt.Errorf("query max chat sequence failed: %w", err)
	}
	return seq, nil
}
