package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"zipfit/internal/model"
	"zipfit/internal/retrieval"
)

// MySQLChunkSearch implements retrieval.Store on MySQL. Full-text ranking
// uses the ngram FULLTEXT index; vector similarity is computed in process
// over the stored embedding literals.
type MySQLChunkSearch struct {
	db *gorm.DB
}

func NewMySQLChunkSearch(db *gorm.DB) *MySQLChunkSearch {
	return &MySQLChunkSearch{db: db}
}

var booleanModeEscaper = strings.NewReplacer(
	"+", "", "-", "", "~", "", `"`, "", "@", "", "<", "", ">", "", "(", "", ")", "", "*", "",
)

// booleanQuery joins terms for MATCH ... AGAINST in boolean mode, where
// space-separated words without operators are OR'd.
func booleanQuery(terms []string) string {
	words := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = booleanModeEscaper.Replace(t); t != "" {
			words = append(words, t)
		}
	}
	return strings.Join(words, " ")
}

type embeddingRow struct {
	ID        uint
	Embedding model.Vector
}

func (s *MySQLChunkSearch) MatchAnnouncementTitles(ctx context.Context, terms []string, filter retrieval.Filter) ([]uint, error) {
	ids, err := matchTitles(s.db.WithContext(ctx), terms, filter)
	if err != nil {
		return nil, fmt.Errorf("match announcement titles failed: %w", err)
	}
	return ids, nil
}

func (s *MySQLChunkSearch) FullTextSearch(ctx context.Context, terms []string, limit int, filter retrieval.Filter) ([]uint, error) {
	query := booleanQuery(terms)
	if query == "" {
		return nil, nil
	}
	const match = "MATCH(chunk_text) AGAINST (? IN BOOLEAN MODE)"
	var ids []uint
	err := chunkScope(s.db.WithContext(ctx), filter).
		Where(match, query).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                match + " DESC, id ASC",
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

func (s *MySQLChunkSearch) VectorSearch(ctx context.Context, embedding []float32, limit int, filter retrieval.Filter) ([]uint, error) {
	rows, err := s.embeddings(chunkScope(s.db.WithContext(ctx), filter))
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return rank(embedding, rows, limit), nil
}

func (s *MySQLChunkSearch) TableChunksByKeyword(ctx context.Context, announcementIDs []uint, terms []string, limit int) ([]uint, error) {
	ids, err := tableChunksByKeyword(s.db.WithContext(ctx), announcementIDs, terms, limit)
	if err != nil {
		return nil, fmt.Errorf("table keyword search failed: %w", err)
	}
	return ids, nil
}

func (s *MySQLChunkSearch) TableChunksByVector(ctx context.Context, announcementIDs []uint, embedding []float32, limit int) ([]uint, error) {
	if len(announcementIDs) == 0 {
		return nil, nil
	}
	rows, err := s.embeddings(tableScope(s.db.WithContext(ctx), announcementIDs))
	if err != nil {
		return nil, fmt.Errorf("table vector search failed: %w", err)
	}
	return rank(embedding, rows, limit), nil
}

func (s *MySQLChunkSearch) FetchResults(ctx context.Context, ids []uint, embedding []float32) ([]retrieval.Result, error) {
	if len(ids) == 0 {
		return []retrieval.Result{}, nil
	}
	type row struct {
		retrieval.Result
		Embedding model.Vector
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Table(model.DocChunkTable+" AS dc").
		Select(resultColumns+", dc.embedding").
		Joins("JOIN announcements a ON a.id = dc.announcement_id").
		Where("dc.id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch search results failed: %w", err)
	}

	results := make([]retrieval.Result, len(rows))
	for i, r := range rows {
		results[i] = r.Result
		results[i].Similarity = cosineSimilarity(embedding, r.Embedding.Slice())
	}
	return inOrder(ids, results), nil
}

func (s *MySQLChunkSearch) embeddings(scope *gorm.DB) ([]embeddingRow, error) {
	var rows []embeddingRow
	if err := scope.Select("id, embedding").Where("embedding IS NOT NULL").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func rank(query []float32, rows []embeddingRow, limit int) []uint {
	ids := make([]uint, len(rows))
	vectors := make([][]float32, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
		vectors[i] = r.Embedding.Slice()
	}
	return nearest(query, ids, vectors, limit)
}
