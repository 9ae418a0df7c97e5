package app

import (
	"context"
	"fmt"
	"log"
	"strings"
)

const defaultEmbeddingBatch = 10

// EmbeddingJob asks for the embeddings of a batch of chunks.
type EmbeddingJob struct {
	ChunkIDs []uint `json:"chunk_ids"`
}

type EmbeddingService struct {
	chunks    ChunkStore
	embedder  Embedder
	publisher Publisher
	batchSize int
}

// NewEmbeddingService returns a service that queues jobs on publisher. A nil
// publisher embeds inline instead, which is what the CLI uses.
func NewEmbeddingService(chunks ChunkStore, embedder Embedder, publisher Publisher, batchSize int) *EmbeddingService {
	if batchSize <= 0 {
		batchSize = defaultEmbeddingBatch
	}
	return &EmbeddingService{
		chunks:    chunks,
		embedder:  embedder,
		publisher: publisher,
		batchSize: batchSize,
	}
}

// Enqueue splits ids into jobs of the batch size and returns how many jobs
// were queued or processed.
func (s *EmbeddingService) Enqueue(ctx context.Context, ids []uint) (int, error) {
	jobs := 0
	for start := 0; start < len(ids); start += s.batchSize {
		end := min(start+s.batchSize, len(ids))
		job := EmbeddingJob{ChunkIDs: append([]uint(nil), ids[start:end]...)}

		if s.publisher == nil {
			if err := s.Process(ctx, job); err != nil {
				return jobs, err
			}
		} else if err := s.publisher.Publish(ctx, job); err != nil {
			log.Printf("embedding job publish failed: %v", err)
			return jobs, fmt.Errorf("%w: %w", ErrJobEnqueue, err)
		}
		jobs++
	}
	return jobs, nil
}

// Process embeds the chunks of one job and stores the vectors. Chunks that
// no longer exist are skipped.
func (s *EmbeddingService) Process(ctx context.Context, job EmbeddingJob) error {
	if len(job.ChunkIDs) == 0 {
		return nil
	}
	chunks, err := s.chunks.ListByIDs(ctx, job.ChunkIDs)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = strings.TrimSpace(c.ChunkText)
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunk batch failed: %w", err)
	}

	for i, c := range chunks {
		if err := s.chunks.UpdateEmbedding(ctx, c.ID, vectors[i]); err != nil {
			return err
		}
	}
	return nil
}

// Reembed queues every chunk of the announcement that has no embedding yet.
// An announcementID of 0 covers all announcements. It returns the chunk count.
func (s *EmbeddingService) Reembed(ctx context.Context, announcementID uint) (int, error) {
	ids, err := s.chunks.ListMissingEmbedding(ctx, announcementID)
	if err != nil {
		return 0, err
	}
	if _, err := s.Enqueue(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}
