package app

import (
	"context"
	"log"
	"strings"

	"zipfit/internal/retrieval"
)

const maxTopK = 50

type SearchService struct {
	retriever Searcher
	embedder  Embedder
	cache     QueryEmbeddingCache
}

func NewSearchService(retriever Searcher, embedder Embedder, cache QueryEmbeddingCache) *SearchService {
	return &SearchService{
		retriever: retriever,
		embedder:  embedder,
		cache:     cache,
	}
}

type SearchInput struct {
	Query           string
	TopK            int
	AnnouncementIDs []uint
}

func (s *SearchService) Search(ctx context.Context, in SearchInput) ([]retrieval.Result, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" || in.TopK < 0 || in.TopK > maxTopK {
		return nil, ErrInvalidInput
	}

	embedding, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.retriever.Search(ctx, retrieval.Query{
		Text:            query,
		Embedding:       embedding,
		Limit:           in.TopK,
		AnnouncementIDs: in.AnnouncementIDs,
	})
}

// embedQuery consults the cache first. Cache failures only cost a round trip
// to the embedding API.
func (s *SearchService) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if s.cache != nil {
		vector, hit, err := s.cache.Get(ctx, query)
		if err != nil {
			log.Printf("query embedding cache get failed: %v", err)
		} else if hit {
			return vector, nil
		}
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, query, vector); err != nil {
			log.Printf("query embedding cache set failed: %v", err)
		}
	}
	return vector, nil
}
