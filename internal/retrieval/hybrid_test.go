package retrieval

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu sync.Mutex

	titles      []uint
	fts         []uint
	vector      []uint
	tableKW     []uint
	tableVector []uint

	ftsErr error
	block  bool

	gotTerms    []string
	gotFTSTerms []string
	gotFilter   Filter
	gotKWLimit  int
	gotFetch    []uint
	tableCalls  int
}

func (f *fakeStore) wait(ctx context.Context) error {
	if !f.block {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeStore) MatchAnnouncementTitles(ctx context.Context, terms []string, filter Filter) ([]uint, error) {
	f.mu.Lock()
	f.gotTerms = terms
	f.gotFilter = filter
	f.mu.Unlock()
	return f.titles, nil
}

func (f *fakeStore) FullTextSearch(ctx context.Context, terms []string, limit int, filter Filter) ([]uint, error) {
	f.mu.Lock()
	f.gotFTSTerms = terms
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return f.fts, f.ftsErr
}

func (f *fakeStore) VectorSearch(ctx context.Context, embedding []float32, limit int, filter Filter) ([]uint, error) {
	return f.vector, nil
}

func (f *fakeStore) TableChunksByKeyword(ctx context.Context, announcementIDs []uint, terms []string, limit int) ([]uint, error) {
	f.mu.Lock()
	f.tableCalls++
	f.gotKWLimit = limit
	f.mu.Unlock()
	return f.tableKW, nil
}

func (f *fakeStore) TableChunksByVector(ctx context.Context, announcementIDs []uint, embedding []float32, limit int) ([]uint, error) {
	return f.tableVector, nil
}

func (f *fakeStore) FetchResults(ctx context.Context, ids []uint, embedding []float32) ([]Result, error) {
	f.gotFetch = ids
	results := make([]Result, len(ids))
	for i, id := range ids {
		results[i] = Result{ChunkID: id, Similarity: 0.5}
	}
	return results, nil
}

func testEmbedding() []float32 {
	return make([]float32, 1536)
}

func ids(results []Result) []uint {
	out := make([]uint, len(results))
	for i, r := range results {
		out[i] = r.ChunkID
	}
	return out
}

func TestSearchFusesAndTruncates(t *testing.T) {
	store := &fakeStore{
		fts:    []uint{1, 2, 3},
		vector: []uint{3, 1, 4},
	}
	r := NewRetriever(store, Config{TopK: 3}, nil)

	results, err := r.Search(context.Background(), Query{Text: "임대 조건", Embedding: testEmbedding()})
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 3, 2}, ids(results))
	assert.InDelta(t, 1.0/61+1.0/62, results[0].Score, 1e-12)
	assert.Equal(t, []string{"임대", "조건", "임대조건"}, store.gotFTSTerms)
	assert.Zero(t, store.tableCalls, "no title match means no table augmentation")
}

func TestSearchAppendsTableChunks(t *testing.T) {
	store := &fakeStore{
		titles:      []uint{42},
		fts:         []uint{1, 2},
		vector:      []uint{2, 1},
		tableKW:     []uint{10, 2, 11},
		tableVector: []uint{11, 12},
	}
	r := NewRetriever(store, DefaultConfig(), nil)

	results, err := r.Search(context.Background(), Query{
		Text:            "행복주택의 소득 기준",
		Embedding:       testEmbedding(),
		AnnouncementIDs: []uint{42, 43},
	})
	require.NoError(t, err)

	// primary order first, then keyword tables, then vector tables, deduplicated
	assert.Equal(t, []uint{1, 2, 10, 11, 12}, ids(results))
	assert.Equal(t, []string{"행복주택", "소득", "기준"}, store.gotTerms)
	assert.Equal(t, []uint{42, 43}, store.gotFilter.AnnouncementIDs)
	assert.Equal(t, 15, store.gotKWLimit)
	assert.Zero(t, results[2].Score, "augmented chunks carry no fusion score")
}

func TestSearchCapsTableChunks(t *testing.T) {
	store := &fakeStore{titles: []uint{1}, vector: []uint{1000}}
	for i := uint(1); i <= 15; i++ {
		store.tableKW = append(store.tableKW, i)
	}
	for i := uint(100); i < 120; i++ {
		store.tableVector = append(store.tableVector, i)
	}
	r := NewRetriever(store, DefaultConfig(), nil)

	results, err := r.Search(context.Background(), Query{Text: "공급 일정", Embedding: testEmbedding()})
	require.NoError(t, err)
	require.Len(t, results, 21)
	assert.Equal(t, uint(1000), results[0].ChunkID)
	assert.Equal(t, uint(1), results[1].ChunkID)
	assert.Equal(t, uint(104), results[20].ChunkID)
}

func TestSearchEmptyRankings(t *testing.T) {
	store := &fakeStore{titles: []uint{1}, tableKW: []uint{5}}
	r := NewRetriever(store, DefaultConfig(), nil)

	results, err := r.Search(context.Background(), Query{Text: "없는 내용", Embedding: testEmbedding()})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Nil(t, store.gotFetch)
}

func TestSearchStoreError(t *testing.T) {
	store := &fakeStore{fts: []uint{1}, vector: []uint{1}, ftsErr: errors.New("connection refused")}
	r := NewRetriever(store, DefaultConfig(), nil)

	results, err := r.Search(context.Background(), Query{Text: "소득", Embedding: testEmbedding()})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetrieval)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Nil(t, results)
}

func TestSearchTimeout(t *testing.T) {
	store := &fakeStore{block: true, vector: []uint{1}}
	r := NewRetriever(store, Config{Timeout: 20 * time.Millisecond}, nil)

	_, err := r.Search(context.Background(), Query{Text: "소득", Embedding: testEmbedding()})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestSearchRejectsBadEmbedding(t *testing.T) {
	r := NewRetriever(&fakeStore{}, DefaultConfig(), nil)

	_, err := r.Search(context.Background(), Query{Text: "소득", Embedding: make([]float32, 3)})
	assert.ErrorIs(t, err, ErrInvalidEmbedding)
}

func TestSearchWithoutTermsSkipsTitleMatch(t *testing.T) {
	store := &fakeStore{titles: []uint{1}, vector: []uint{7}, tableKW: []uint{8}}
	r := NewRetriever(store, DefaultConfig(), nil)

	results, err := r.Search(context.Background(), Query{Text: "a", Embedding: testEmbedding()})
	require.NoError(t, err)
	assert.Equal(t, []uint{7}, ids(results))
	assert.Zero(t, store.tableCalls)
}
