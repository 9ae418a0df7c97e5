package app

import (
	"context"
	"time"

	"zipfit/internal/model"
	"zipfit/internal/repository"
	"zipfit/internal/retrieval"
)

// Embedder returns one vector per text, in order, or fails as a whole.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Publisher sends one JSON payload to a queue.
type Publisher interface {
	Publish(ctx context.Context, payload any) error
}

type AnnouncementStore interface {
	Upsert(ctx context.Context, a *model.Announcement) error
	GetByID(ctx context.Context, id uint) (*model.Announcement, error)
	List(ctx context.Context, f repository.AnnouncementFilter, offset, limit int) ([]model.Announcement, int64, error)
	Summary(ctx context.Context, now time.Time) (*repository.AnnouncementSummary, error)
}

type FileStore interface {
	Upsert(ctx context.Context, f *model.AnnouncementFile) error
	ListByAnnouncementID(ctx context.Context, announcementID uint) ([]model.AnnouncementFile, error)
}

type ChunkStore interface {
	ReplaceForFile(ctx context.Context, fileID uint, chunks []model.DocChunk) error
	DeleteByAnnouncementID(ctx context.Context, announcementID uint) error
	ListByIDs(ctx context.Context, ids []uint) ([]model.DocChunk, error)
	ListMissingEmbedding(ctx context.Context, announcementID uint) ([]uint, error)
	UpdateEmbedding(ctx context.Context, id uint, embedding []float32) error
}

type ChatStore interface {
	Create(ctx context.Context, chat *model.Chat) error
	GetBySessionKey(ctx context.Context, sessionKey string) (*model.Chat, error)
	ListByUserKey(ctx context.Context, userKey string) ([]model.Chat, error)
	UpdateTitle(ctx context.Context, id uint, title string) error
}

type ChatMessageStore interface {
	ListByChatID(ctx context.Context, chatID uint, limit int) ([]model.ChatMessage, error)
	MaxSequence(ctx context.Context, chatID uint) (int, error)
}

type HistoryCache interface {
	GetHistory(ctx context.Context, chatID uint) ([]model.ChatMessage, bool, error)
	SetHistory(ctx context.Context, chatID uint, messages []model.ChatMessage) error
	MarkDirty(ctx context.Context, chatID uint) error
	IsDirty(ctx context.Context, chatID uint) (bool, error)
	NextSequence(ctx context.Context, chatID uint, persisted func(context.Context) (int, error)) (int, error)
}

type QueryEmbeddingCache interface {
	Get(ctx context.Context, text string) ([]float32, bool, error)
	Set(ctx context.Context, text string, vector []float32) error
}

type Searcher interface {
	Search(ctx context.Context, q retrieval.Query) ([]retrieval.Result, error)
}
