package model

import "time"

const (
	MessageTypeSystem = "system"
	MessageTypeUser   = "user"
	MessageTypeBot    = "bot"
)

// ChatMessage is one turn of a chat. Sequence starts at 1 and is unique per chat.
type ChatMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ChatID      uint      `gorm:"not null;uniqueIndex:idx_chat_messages_chat_seq,priority:1" json:"chat_id"`
	Sequence    int       `gorm:"not null;uniqueIndex:idx_chat_messages_chat_seq,priority:2" json:"sequence"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	Prompt      string    `gorm:"type:text" json:"prompt,omitempty"`
	MessageType string    `gorm:"size:10;not null" json:"message_type"`
	CreatedAt   time.Time `json:"created_at"`
}
