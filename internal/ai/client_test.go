package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vector(dim int, v float32) []float32 {
	out := make([]float32, dim)
	for i := range out {
		out[i] = v
	}
	return out
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:        srv.URL + "/",
		APIKey:         "sk-test",
		ChatModel:      "chat-model",
		EmbeddingModel: "embed-model",
		EmbeddingDim:   4,
		Timeout:        5 * time.Second,
	})
}

type embeddingItem struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

func writeEmbeddings(w http.ResponseWriter, items []embeddingItem) {
	_ = json.NewEncoder(w).Encode(map[string]any{"data": items})
}

func TestEmbedBatchOrdersByIndex(t *testing.T) {
	var got struct {
		Model string   `json:"model"`
		Input []string `json:"input"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeEmbeddings(w, []embeddingItem{
			{Index: 2, Embedding: vector(4, 3)},
			{Index: 0, Embedding: vector(4, 1)},
			{Index: 1, Embedding: vector(4, 2)},
		})
	})

	vectors, err := c.EmbedBatch(t.Context(), []string{"a", " b ", "c"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	for i, v := range vectors {
		assert.Equal(t, float32(i+1), v[0])
	}
	assert.Equal(t, "embed-model", got.Model)
	assert.Equal(t, []string{"a", "b", "c"}, got.Input)
}

func TestEmbedBatchRejectsEmptyText(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.EmbedBatch(t.Context(), []string{"a", "   "})
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.False(t, called)
}

func TestEmbedBatchFailures(t *testing.T) {
	tests := []struct {
		name  string
		items []embeddingItem
		want  error
	}{
		{
			name:  "fewer vectors",
			items: []embeddingItem{{Index: 0, Embedding: vector(4, 1)}},
			want:  ErrEmbeddingCount,
		},
		{
			name: "duplicate index",
			items: []embeddingItem{
				{Index: 0, Embedding: vector(4, 1)},
				{Index: 0, Embedding: vector(4, 1)},
			},
			want: ErrEmbeddingCount,
		},
		{
			name: "wrong dimension",
			items: []embeddingItem{
				{Index: 0, Embedding: vector(4, 1)},
				{Index: 1, Embedding: vector(3, 1)},
			},
			want: ErrEmbeddingDimension,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeEmbeddings(w, tt.items)
			})
			vectors, err := c.EmbedBatch(t.Context(), []string{"a", "b"})
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, vectors)
		})
	}
}

func TestEmbedUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	})

	_, err := c.Embed(t.Context(), "서울 행복주택")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "429")
}

func TestComplete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		var req struct {
			Model    string        `json:"model"`
			Messages []ChatMessage `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "chat-model", req.Model)
		assert.Len(t, req.Messages, 2)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"답변입니다"}}]}`))
	})

	answer, err := c.Complete(t.Context(), []ChatMessage{
		{Role: "system", Content: "s"},
		{Role: "user", Content: "q"},
	})
	require.NoError(t, err)
	assert.Equal(t, "답변입니다", answer)
}

func TestCompleteNoChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := c.Complete(t.Context(), nil)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestStreamComplete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"안녕", "하세요"} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", part)
		}
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	var chunks []string
	full, err := c.StreamComplete(t.Context(), nil, func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "안녕하세요", full)
	assert.Equal(t, "안녕|하세요", strings.Join(chunks, "|"))
}

func TestChatRequestTemperature(t *testing.T) {
	c := NewClient(Config{ChatModel: "m", Temperature: 0.2})
	req := c.chatRequest(nil, true)
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.2, *req.Temperature, 1e-9)
	assert.True(t, req.Stream)

	c = NewClient(Config{ChatModel: "m", Temperature: -1})
	assert.Nil(t, c.chatRequest(nil, false).Temperature)
}

func TestReadStreamStopsOnCallbackError(t *testing.T) {
	body := strings.NewReader("data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n\n" +
		"data: not-json\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n\n")

	stop := errors.New("client gone")
	var seen []string
	_, err := readStream(body, func(chunk string) error {
		seen = append(seen, chunk)
		if chunk == "b" {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []string{"a", "b"}, seen)
}
