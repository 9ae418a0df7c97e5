package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"zipfit/internal/model"
)

const chunkInsertBatch = 200

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// ReplaceForFile deletes every chunk of fileID and inserts chunks in one
// transaction. The inserted rows get their ids filled in.
func (r *ChunkRepository) ReplaceForFile(ctx context.Context, fileID uint, chunks []model.DocChunk) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", fileID).Delete(&model.DocChunk{}).Error; err != nil {
			return fmt.Errorf("delete chunks by file failed: %w", err)
		}
		if len(chunks) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&chunks, chunkInsertBatch).Error; err != nil {
			return fmt.Errorf("create chunks batch failed: %w", err)
		}
		return nil
	})
}

func (r *ChunkRepository) DeleteByAnnouncementID(ctx context.Context, announcementID uint) error {
	if err := r.db.WithContext(ctx).Where("announcement_id = ?", announcementID).Delete(&model.DocChunk{}).Error; err != nil {
		return fmt.Errorf("delete chunks by announcement failed: %w", err)
	}
	return nil
}

func (r *ChunkRepository) ListByIDs(ctx context.Context, ids []uint) ([]model.DocChunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var chunks []model.DocChunk
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list chunks by ids failed: %w", err)
	}
	return chunks, nil
}

// ListMissingEmbedding returns ids of chunks without an embedding. An
// announcementID of 0 covers every announcement.
func (r *ChunkRepository) ListMissingEmbedding(ctx context.Context, announcementID uint) ([]uint, error) {
	q := r.db.WithContext(ctx).Model(&model.DocChunk{}).Where("embedding IS NULL")
	if announcementID != 0 {
		q = q.Where("announcement_id = ?", announcementID)
	}
	var ids []uint
	if err := q.Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list chunks missing embedding failed: %w", err)
	}
	return ids, nil
}

func (r *ChunkRepository) UpdateEmbedding(ctx context.Context, id uint, embedding []float32) error {
	err := r.db.WithContext(ctx).Model(&model.DocChunk{}).
		Where("id = ?", id).
		Update("embedding", model.NewVector(embedding)).Error
	if err != nil {
		return fmt.Errorf("update chunk embedding failed: %w", err)
	}
	return nil
}
