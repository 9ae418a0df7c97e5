package model

import (
	"time"

	"zipfit/internal/document"
)

// DocChunkTable is the chunk table name; search SQL and schema extras use it.
const DocChunkTable = "doc_chunks"

// DocChunk is a persisted chunk. (FileID, ChunkIndex) is unique.
type DocChunk struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FileID         uint      `gorm:"not null;uniqueIndex:idx_doc_chunks_file_index,priority:1" json:"file_id"`
	AnnouncementID uint      `gorm:"not null;index" json:"announcement_id"`
	ChunkIndex     int       `gorm:"not null;uniqueIndex:idx_doc_chunks_file_index,priority:2" json:"chunk_index"`
	ChunkType      string    `gorm:"size:10;not null;index" json:"chunk_type"`
	ChunkText      string    `gorm:"type:text;not null" json:"chunk_text"`
	PageNum        int       `json:"page_num"`
	Embedding      Vector    `gorm:"dim:1536" json:"-"`
	Metadata       JSONMap   `json:"metadata"`
	CreatedAt      time.Time `json:"created_at"`
}

func (DocChunk) TableName() string {
	return DocChunkTable
}

// NewDocChunk maps a chunker output onto a row of the given file.
func NewDocChunk(fileID, announcementID uint, c document.Chunk) DocChunk {
	meta := JSONMap{}
	for k, v := range c.Metadata {
		meta[k] = v
	}
	if c.TableContext != nil {
		meta["table_context"] = *c.TableContext
	}
	return DocChunk{
		FileID:         fileID,
		AnnouncementID: announcementID,
		ChunkIndex:     c.Index,
		ChunkType:      string(c.Type),
		ChunkText:      c.Text,
		PageNum:        c.Page,
		Embedding:      NewVector(c.Embedding),
		Metadata:       meta,
	}
}
