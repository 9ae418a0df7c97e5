package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zipfit/internal/model"
)

func seqIDs(from, n int) []uint {
	ids := make([]uint, n)
	for i := range ids {
		ids[i] = uint(from + i)
	}
	return ids
}

func TestEnqueueBatches(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewEmbeddingService(newFakeChunks(), &fakeEmbedder{dim: 4}, pub, 10)

	jobs, err := svc.Enqueue(t.Context(), seqIDs(1, 25))
	require.NoError(t, err)
	assert.Equal(t, 3, jobs)
	require.Len(t, pub.payloads, 3)

	var sizes []int
	for _, p := range pub.payloads {
		sizes = append(sizes, len(p.(EmbeddingJob).ChunkIDs))
	}
	assert.Equal(t, []int{10, 10, 5}, sizes)
	assert.Equal(t, uint(21), pub.payloads[2].(EmbeddingJob).ChunkIDs[0])
}

func TestEnqueuePublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errBoom}
	svc := NewEmbeddingService(newFakeChunks(), &fakeEmbedder{dim: 4}, pub, 10)

	_, err := svc.Enqueue(t.Context(), seqIDs(1, 3))
	assert.ErrorIs(t, err, ErrJobEnqueue)
}

func TestEnqueueInlineWithoutPublisher(t *testing.T) {
	chunks := newFakeChunks()
	chunks.rows[1] = model.DocChunk{ID: 1, ChunkText: "공급대상 안내"}
	chunks.rows[2] = model.DocChunk{ID: 2, ChunkText: "신청자격"}
	emb := &fakeEmbedder{dim: 4}
	svc := NewEmbeddingService(chunks, emb, nil, 1)

	jobs, err := svc.Enqueue(t.Context(), []uint{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, jobs)
	assert.Len(t, emb.calls, 2)
	assert.Len(t, chunks.embeddings, 2)
}

func TestProcess(t *testing.T) {
	chunks := newFakeChunks()
	chunks.rows[1] = model.DocChunk{ID: 1, ChunkText: " 첫 번째 "}
	chunks.rows[3] = model.DocChunk{ID: 3, ChunkText: "세 번째"}
	emb := &fakeEmbedder{dim: 4}
	svc := NewEmbeddingService(chunks, emb, nil, 10)

	require.NoError(t, svc.Process(t.Context(), EmbeddingJob{ChunkIDs: []uint{1, 2, 3}}))
	require.Len(t, emb.calls, 1)
	assert.Equal(t, []string{"첫 번째", "세 번째"}, emb.calls[0])
	assert.Contains(t, chunks.embeddings, uint(1))
	assert.Contains(t, chunks.embeddings, uint(3))
}

func TestProcessEmbedFailureStoresNothing(t *testing.T) {
	chunks := newFakeChunks()
	chunks.rows[1] = model.DocChunk{ID: 1, ChunkText: "a"}
	svc := NewEmbeddingService(chunks, &fakeEmbedder{err: errBoom}, nil, 10)

	err := svc.Process(t.Context(), EmbeddingJob{ChunkIDs: []uint{1}})
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, chunks.embeddings)
}

func TestProcessEmptyJob(t *testing.T) {
	emb := &fakeEmbedder{dim: 4}
	svc := NewEmbeddingService(newFakeChunks(), emb, nil, 10)

	require.NoError(t, svc.Process(t.Context(), EmbeddingJob{}))
	require.NoError(t, svc.Process(t.Context(), EmbeddingJob{ChunkIDs: []uint{9}}))
	assert.Empty(t, emb.calls)
}

func TestReembed(t *testing.T) {
	chunks := newFakeChunks()
	chunks.missing = seqIDs(1, 12)
	pub := &fakePublisher{}
	svc := NewEmbeddingService(chunks, &fakeEmbedder{dim: 4}, pub, 10)

	n, err := svc.Reembed(t.Context(), 5)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Len(t, pub.payloads, 2)
}
