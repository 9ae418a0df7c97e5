package retrieval

import "sort"

// Candidate is one chunk in the fused ranking. A rank of 0 means the chunk
// was absent from that list.
type Candidate struct {
	ChunkID      uint
	FullTextRank int
	VectorRank   int
	Score        float64
}

// Fuse merges two ranked id lists with Reciprocal Rank Fusion:
// score = 1/(k+ftsRank) + 1/(k+vecRank), where a chunk missing from a list
// takes missingRank for it. Candidates are sorted by score, then by best
// rank, then by chunk id.
func Fuse(fullText, vector []uint, k, missingRank int) []Candidate {
	ftsRanks := ranks(fullText)
	vecRanks := ranks(vector)

	candidates := make([]Candidate, 0, len(ftsRanks)+len(vecRanks))
	add := func(id uint) {
		fr, vr := ftsRanks[id], vecRanks[id]
		candidates = append(candidates, Candidate{
			ChunkID:      id,
			FullTextRank: fr,
			VectorRank:   vr,
			Score:        reciprocal(k, fr, missingRank) + reciprocal(k, vr, missingRank),
		})
	}
	for _, id := range dedupe(fullText) {
		add(id)
	}
	for _, id := range dedupe(vector) {
		if _, ok := ftsRanks[id]; !ok {
			add(id)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if ba, bb := a.bestRank(missingRank), b.bestRank(missingRank); ba != bb {
			return ba < bb
		}
		return a.ChunkID < b.ChunkID
	})
	return candidates
}

func (c Candidate) bestRank(missingRank int) int {
	best := missingRank
	if c.FullTextRank > 0 && c.FullTextRank < best {
		best = c.FullTextRank
	}
	if c.VectorRank > 0 && c.VectorRank < best {
		best = c.VectorRank
	}
	return best
}

func reciprocal(k, rank, missingRank int) float64 {
	if rank <= 0 {
		rank = missingRank
	}
	return 1.0 / float64(k+rank)
}

// ranks maps each id to its 1-based position, keeping the first occurrence.
func ranks(ids []uint) map[uint]int {
	out := make(map[uint]int, len(ids))
	for i, id := range ids {
		if _, ok := out[id]; !ok {
			out[id] = i + 1
		}
	}
	return out
}

// dedupe keeps the first occurrence of every id.
func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
