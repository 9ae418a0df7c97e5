package repository

import (
	"strings"

	"gorm.io/gorm"

	"zipfit/internal/document"
	"zipfit/internal/model"
	"zipfit/internal/retrieval"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// likeAny builds "(col LIKE ? OR col LIKE ? ...)" matching any term as a substring.
func likeAny(column string, terms []string) (string, []any) {
	parts := make([]string, len(terms))
	args := make([]any, len(terms))
	for i, t := range terms {
		parts[i] = column + " LIKE ?"
		args[i] = "%" + escapeLike(t) + "%"
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// chunkScope restricts doc_chunks to the filter's announcements.
func chunkScope(db *gorm.DB, filter retrieval.Filter) *gorm.DB {
	q := db.Model(&model.DocChunk{})
	if !filter.Empty() {
		q = q.Where("announcement_id IN ?", filter.AnnouncementIDs)
	}
	return q
}

func tableScope(db *gorm.DB, announcementIDs []uint) *gorm.DB {
	return db.Model(&model.DocChunk{}).
		Where("announcement_id IN ?", announcementIDs).
		Where("chunk_type = ?", string(document.ElementTable))
}

func matchTitles(db *gorm.DB, terms []string, filter retrieval.Filter) ([]uint, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	cond, args := likeAny("title", terms)
	q := db.Model(&model.Announcement{}).Where(cond, args...)
	if !filter.Empty() {
		q = q.Where("id IN ?", filter.AnnouncementIDs)
	}
	var ids []uint
	if err := q.Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func tableChunksByKeyword(db *gorm.DB, announcementIDs []uint, terms []string, limit int) ([]uint, error) {
	if len(announcementIDs) == 0 || len(terms) == 0 {
		return nil, nil
	}
	cond, args := likeAny("chunk_text", terms)
	var ids []uint
	if err := tableScope(db, announcementIDs).Where(cond, args...).Order("id ASC").Limit(limit).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// inOrder arranges results to follow ids, dropping ids with no row.
func inOrder(ids []uint, rows []retrieval.Result) []retrieval.Result {
	byID := make(map[uint]retrieval.Result, len(rows))
	for _, row := range rows {
		byID[row.ChunkID] = row
	}
	out := make([]retrieval.Result, 0, len(ids))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			out = append(out, row)
		}
	}
	return out
}

const resultColumns = `dc.id AS chunk_id, dc.chunk_text, dc.chunk_type, dc.page_num,
	a.id AS announcement_id, a.title AS announcement_title, a.region AS announcement_region,
	a.type AS announcement_type, a.detail_type AS announcement_detail`
