package model

import "time"

// Operator roles. Editors maintain announcements and their attachments;
// admins can also drop the stored chunks of an announcement.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// User is an operator account that may ingest attachments.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email        string     `gorm:"size:128;not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Role         string     `gorm:"size:16;not null;default:editor" json:"role"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
