package ai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUpstream           = errors.New("llm upstream error")
	ErrEmptyInput         = errors.New("embedding input is empty")
	ErrEmbeddingCount     = errors.New("embedding count mismatch")
	ErrEmbeddingDimension = errors.New("embedding dimension mismatch")
)

// Embed returns the embedding vector for one text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in one request and returns one vector per text
// in input order. The batch fails as a whole: an empty text, a missing or
// extra vector, or a vector of the wrong dimension is an error and no
// partial result is returned.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	inputs := make([]string, len(texts))
	for i, t := range texts {
		if inputs[i] = strings.TrimSpace(t); inputs[i] == "" {
			return nil, fmt.Errorf("%w: item %d", ErrEmptyInput, i)
		}
	}

	reqBody := map[string]interface{}{
		"model": c.cfg.EmbeddingModel,
		"input": inputs,
	}
	var parsed struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := c.post(ctx, "/embeddings", reqBody, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("%w: sent %d, got %d", ErrEmbeddingCount, len(texts), len(parsed.Data))
	}

	sort.SliceStable(parsed.Data, func(i, j int) bool {
		return parsed.Data[i].Index < parsed.Data[j].Index
	})
	result := make([][]float32, len(parsed.Data))
	for i, d := range parsed.Data {
		if d.Index != i {
			return nil, fmt.Errorf("%w: missing index %d", ErrEmbeddingCount, i)
		}
		if len(d.Embedding) != c.cfg.EmbeddingDim {
			return nil, fmt.Errorf("%w: item %d has %d, want %d", ErrEmbeddingDimension, i, len(d.Embedding), c.cfg.EmbeddingDim)
		}
		result[i] = d.Embedding
	}
	return result, nil
}
