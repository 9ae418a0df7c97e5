package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

var (
	ErrTimeout          = errors.New("retrieval timed out")
	ErrRetrieval        = errors.New("retrieval failed")
	ErrInvalidEmbedding = errors.New("invalid query embedding")
)

// Config tunes the hybrid search.
type Config struct {
	K                 int
	MissingRank       int
	CandidateLimit    int
	TopK              int
	TableKeywordLimit int
	TableLimit        int
	Dimension         int
	Timeout           time.Duration
}

// DefaultConfig returns the standard fusion constants.
func DefaultConfig() Config {
	return Config{
		K:                 60,
		MissingRank:       1000,
		CandidateLimit:    100,
		TopK:              10,
		TableKeywordLimit: 15,
		TableLimit:        20,
		Dimension:         1536,
		Timeout:           10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.K <= 0 {
		c.K = d.K
	}
	if c.MissingRank <= 0 {
		c.MissingRank = d.MissingRank
	}
	if c.CandidateLimit <= 0 {
		c.CandidateLimit = d.CandidateLimit
	}
	if c.TopK <= 0 {
		c.TopK = d.TopK
	}
	if c.TableKeywordLimit <= 0 {
		c.TableKeywordLimit = d.TableKeywordLimit
	}
	if c.TableLimit <= 0 {
		c.TableLimit = d.TableLimit
	}
	if c.Dimension <= 0 {
		c.Dimension = d.Dimension
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	return c
}

// Query is one search request. Limit overrides Config.TopK when positive.
type Query struct {
	Text            string
	Embedding       []float32
	Limit           int
	AnnouncementIDs []uint
}

type Retriever struct {
	store  Store
	cfg    Config
	logger *log.Logger
}

// NewRetriever builds a Retriever. logger may be nil.
func NewRetriever(store Store, cfg Config, logger *log.Logger) *Retriever {
	return &Retriever{store: store, cfg: cfg.withDefaults(), logger: logger}
}

// Config returns the effective configuration.
func (r *Retriever) Config() Config {
	return r.cfg
}

// Search runs title matching, full-text search and vector search
// concurrently, fuses the two rankings with RRF, appends table chunks from
// title-matched announcements and hydrates the final ids in order.
func (r *Retriever) Search(ctx context.Context, q Query) ([]Result, error) {
	if len(q.Embedding) != r.cfg.Dimension {
		return nil, fmt.Errorf("%w: got %d dimensions, want %d", ErrInvalidEmbedding, len(q.Embedding), r.cfg.Dimension)
	}
	topK := r.cfg.TopK
	if q.Limit > 0 {
		topK = q.Limit
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	filter := Filter{AnnouncementIDs: q.AnnouncementIDs}
	terms := CleanTerms(q.Text)
	ftsTerms := FullTextTerms(q.Text)

	var (
		wg                       sync.WaitGroup
		matched, ftsIDs, vecIDs  []uint
		matchErr, ftsErr, vecErr error
	)
	if len(terms) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			matched, matchErr = r.store.MatchAnnouncementTitles(ctx, terms, filter)
		}()
	}
	if len(ftsTerms) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ftsIDs, ftsErr = r.store.FullTextSearch(ctx, ftsTerms, r.cfg.CandidateLimit, filter)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		vecIDs, vecErr = r.store.VectorSearch(ctx, q.Embedding, r.cfg.CandidateLimit, filter)
	}()
	wg.Wait()

	if err := r.check(ctx, "title match", matchErr); err != nil {
		return nil, err
	}
	if err := r.check(ctx, "full text search", ftsErr); err != nil {
		return nil, err
	}
	if err := r.check(ctx, "vector search", vecErr); err != nil {
		return nil, err
	}
	r.debugf("terms=%v matched=%d fts=%d vector=%d", terms, len(matched), len(ftsIDs), len(vecIDs))

	candidates := Fuse(ftsIDs, vecIDs, r.cfg.K, r.cfg.MissingRank)
	if len(candidates) == 0 {
		return []Result{}, nil
	}
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	ids := make([]uint, 0, len(candidates)+r.cfg.TableLimit)
	scores := make(map[uint]float64, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ChunkID)
		scores[c.ChunkID] = c.Score
	}

	if len(matched) > 0 {
		tableIDs, err := r.tableChunks(ctx, matched, terms, q.Embedding)
		if err != nil {
			return nil, err
		}
		ids = dedupe(append(ids, tableIDs...))
	}

	results, err := r.store.FetchResults(ctx, ids, q.Embedding)
	if err := r.check(ctx, "fetch results", err); err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Score = scores[results[i].ChunkID]
	}
	return results, nil
}

// tableChunks collects keyword-matched table chunks first, then fills the
// remaining slots by vector order.
func (r *Retriever) tableChunks(ctx context.Context, announcementIDs []uint, terms []string, embedding []float32) ([]uint, error) {
	kwIDs, err := r.store.TableChunksByKeyword(ctx, announcementIDs, terms, r.cfg.TableKeywordLimit)
	if err := r.check(ctx, "table keyword search", err); err != nil {
		return nil, err
	}
	vecIDs, err := r.store.TableChunksByVector(ctx, announcementIDs, embedding, r.cfg.TableLimit)
	if err := r.check(ctx, "table vector search", err); err != nil {
		return nil, err
	}

	ids := dedupe(append(kwIDs, vecIDs...))
	if len(ids) > r.cfg.TableLimit {
		ids = ids[:r.cfg.TableLimit]
	}
	return ids, nil
}

func (r *Retriever) check(ctx context.Context, step string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, step)
	}
	if err != nil {
		if r.logger != nil {
			r.logger.Printf("%s failed: %v", step, err)
		}
		return fmt.Errorf("%w: %s: %w", ErrRetrieval, step, err)
	}
	return nil
}

func (r *Retriever) debugf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}
