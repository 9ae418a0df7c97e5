package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"zipfit/internal/model"
	"zipfit/internal/retrieval"
)

// PostgresChunkSearch implements retrieval.Store with tsvector ranking and
// pgvector cosine distance.
type PostgresChunkSearch struct {
	db *gorm.DB
}

func NewPostgresChunkSearch(db *gorm.DB) *PostgresChunkSearch {
	return &PostgresChunkSearch{db: db}
}

// tsQuery ORs the terms for to_tsquery.
func tsQuery(terms []string) string {
	return strings.Join(terms, " | ")
}

func byDistance(embedding []float32) clause.OrderBy {
	return clause.OrderBy{Expression: clause.Expr{
		SQL:                "embedding <=> ?",
		Vars:               []any{pgvector.NewVector(embedding)},
		WithoutParentheses: true,
	}}
}

func (s *PostgresChunkSearch) MatchAnnouncementTitles(ctx context.Context, terms []string, filter retrieval.Filter) ([]uint, error) {
	ids, err := matchTitles(s.db.WithContext(ctx), terms, filter)
	if err != nil {
		return nil, fmt.Errorf("match announcement titles failed: %w", err)
	}
	return ids, nil
}

func (s *PostgresChunkSearch) FullTextSearch(ctx context.Context, terms []string, limit int, filter retrieval.Filter) ([]uint, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	query := tsQuery(terms)
	var ids []uint
	err := chunkScope(s.db.WithContext(ctx), filter).
		Where("fts_vector @@ to_tsquery('simple', ?)", query).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                "ts_rank(fts_vector, to_tsquery('simple', ?)) DESC, id ASC",
			Vars:               []any{query},
			WithoutParentheses: true,
		}}).
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("full text search failed: %w", err)
	}
	return ids, nil
}

func (s *PostgresChunkSearch) VectorSearch(ctx context.Context, embedding []float32, limit int, filter retrieval.Filter) ([]uint, error) {
	var ids []uint
	err := chunkScope(s.db.WithContext(ctx), filter).
		Where("embedding IS NOT NULL").
		Clauses(byDistance(embedding)).
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return ids, nil
}

func (s *PostgresChunkSearch) TableChunksByKeyword(ctx context.Context, announcementIDs []uint, terms []string, limit int) ([]uint, error) {
	ids, err := tableChunksByKeyword(s.db.WithContext(ctx), announcementIDs, terms, limit)
	if err != nil {
		return nil, fmt.Errorf("table keyword search failed: %w", err)
	}
	return ids, nil
}

func (s *PostgresChunkSearch) TableChunksByVector(ctx context.Context, announcementIDs []uint, embedding []float32, limit int) ([]uint, error) {
	if len(announcementIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := tableScope(s.db.WithContext(ctx), announcementIDs).
		Where("embedding IS NOT NULL").
		Clauses(byDistance(embedding)).
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("table vector search failed: %w", err)
	}
	return ids, nil
}

func (s *PostgresChunkSearch) FetchResults(ctx context.Context, ids []uint, embedding []float32) ([]retrieval.Result, error) {
	if len(ids) == 0 {
		return []retrieval.Result{}, nil
	}
	var rows []retrieval.Result
	err := s.db.WithContext(ctx).
		Table(model.DocChunkTable+" AS dc").
		Select(resultColumns+", COALESCE(1 - (dc.embedding <=> ?), 0) AS similarity", pgvector.NewVector(embedding)).
		Joins("JOIN announcements a ON a.id = dc.announcement_id").
		Where("dc.id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch search results failed: %w", err)
	}
	return inOrder(ids, rows), nil
}
