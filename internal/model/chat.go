package model

import "time"

const DefaultChatTitle = "새로운 채팅"

type Chat struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SessionKey string    `gorm:"size:36;not null;uniqueIndex" json:"session_key"`
	UserKey    string    `gorm:"size:64;index" json:"user_key"`
	Title      string    `gorm:"size:128;not null;default:새로운 채팅" json:"title"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
