package model

import "time"

const (
	ServiceStatusOpen   = "OPEN"
	ServiceStatusClosed = "CLOSED"
)

// Announcement is one housing announcement. PublishedAt and DeadlineAt are
// ISO dates (YYYY-MM-DD) as published by the issuing corporation.
type Announcement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	URL           string    `gorm:"size:1000;not null;uniqueIndex" json:"url"`
	CorpCode      string    `gorm:"size:10" json:"corp_code"`
	Title         string    `gorm:"size:200;not null;index" json:"title"`
	Type          string    `gorm:"size:50;index" json:"type"`
	DetailType    string    `gorm:"size:20" json:"detail_type"`
	Region        string    `gorm:"size:50;index" json:"region"`
	PublishedAt   string    `gorm:"size:20;index" json:"published_at"`
	DeadlineAt    string    `gorm:"size:20" json:"deadline_at"`
	Status        string    `gorm:"size:20;index" json:"status"`
	ServiceStatus string    `gorm:"size:20;not null;default:OPEN" json:"service_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
