package retrieval

import "context"

// Filter restricts a lookup to a set of announcements. An empty filter
// matches everything.
type Filter struct {
	AnnouncementIDs []uint
}

// Empty reports whether the filter imposes no restriction.
func (f Filter) Empty() bool {
	return len(f.AnnouncementIDs) == 0
}

// Result is a hydrated chunk joined with its announcement.
type Result struct {
	ChunkID            uint    `json:"chunk_id"`
	ChunkText          string  `json:"chunk_text"`
	ChunkType          string  `json:"chunk_type"`
	PageNum            int     `json:"page_num"`
	AnnouncementID     uint    `json:"announcement_id"`
	AnnouncementTitle  string  `json:"announcement_title"`
	AnnouncementRegion string  `json:"announcement_region"`
	AnnouncementType   string  `json:"announcement_type"`
	AnnouncementDetail string  `json:"announcement_detail_type"`
	Similarity         float64 `json:"similarity"`
	Score              float64 `json:"score"`
}

// Store is the persistence port used by the Retriever. Every lookup
// returns chunk or announcement ids ordered best first.
type Store interface {
	// MatchAnnouncementTitles returns announcements whose title contains any term.
	MatchAnnouncementTitles(ctx context.Context, terms []string, filter Filter) ([]uint, error)
	// FullTextSearch ranks chunks by full-text relevance to any of terms.
	FullTextSearch(ctx context.Context, terms []string, limit int, filter Filter) ([]uint, error)
	// VectorSearch ranks chunks by cosine distance to embedding.
	VectorSearch(ctx context.Context, embedding []float32, limit int, filter Filter) ([]uint, error)
	// TableChunksByKeyword returns table chunks of the announcements that contain any term.
	TableChunksByKeyword(ctx context.Context, announcementIDs []uint, terms []string, limit int) ([]uint, error)
	// TableChunksByVector ranks table chunks of the announcements by distance to embedding.
	TableChunksByVector(ctx context.Context, announcementIDs []uint, embedding []float32, limit int) ([]uint, error)
	// FetchResults hydrates ids in the order given.
	FetchResults(ctx context.Context, ids []uint, embedding []float32) ([]Result, error)
}
