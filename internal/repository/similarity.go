package repository

import (
	"math"
	"sort"
)

// cosineSimilarity returns 0 when either vector is empty, zero or of a
// different length.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

type scoredID struct {
	id    uint
	score float64
}

// nearest orders ids by descending similarity to query and keeps limit of them.
func nearest(query []float32, ids []uint, vectors [][]float32, limit int) []uint {
	scored := make([]scoredID, len(ids))
	for i := range ids {
		scored[i] = scoredID{id: ids[i], score: cosineSimilarity(query, vectors[i])}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].id < scored[j].id
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	out := make([]uint, len(scored))
	for i, s := range scored {
		out[i] = s.id
	}
	return out
}
