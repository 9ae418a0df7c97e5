package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"zipfit/internal/model"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Upsert stores the file, replacing metadata of an existing row with the same path.
func (r *FileRepository) Upsert(ctx context.Context, f *model.AnnouncementFile) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "file_path"}},
		DoUpdates: clause.AssignmentColumns([]string{"announcement_id", "file_name", "file_type", "file_ext", "file_size", "page_count"}),
	}).Create(f).Error
	if err != nil {
		return fmt.Errorf("upsert announcement file failed: %w", err)
	}
	var got model.AnnouncementFile
	if err := r.db.WithContext(ctx).Where("file_path = ?", f.FilePath).First(&got).Error; err != nil {
		return fmt.Errorf("reload announcement file failed: %w", err)
	}
	*f = got
	return nil
}

func (r *FileRepository) GetByID(ctx context.Context, id uint) (*model.AnnouncementFile, error) {
	var f model.AnnouncementFile
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get announcement file failed: %w", err)
	}
	return &f, nil
}

func (r *FileRepository) ListByAnnouncementID(ctx context.Context, announcementID uint) ([]model.AnnouncementFile, error) {
	var files []model.AnnouncementFile
	if err := r.db.WithContext(ctx).Where("announcement_id = ?", announcementID).Order("id ASC").Find(&files).Error; err != nil {
		return nil, fmt.Errorf("list announcement files failed: %w", err)
	}
	return files, nil
}
