package model

import "time"

type AnnouncementFile struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AnnouncementID uint      `gorm:"not null;index" json:"announcement_id"`
	FileName       string    `gorm:"size:500;not null" json:"file_name"`
	FileType       string    `gorm:"size:10" json:"file_type"`
	FilePath       string    `gorm:"size:700;not null;uniqueIndex" json:"file_path"`
	FileExt        string    `gorm:"size:10" json:"file_ext"`
	FileSize       int64     `json:"file_size"`
	PageCount      int       `json:"page_count"`
	CreatedAt      time.Time `json:"created_at"`
}
