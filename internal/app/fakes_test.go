package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"zipfit/internal/ai"
	"zipfit/internal/model"
	"zipfit/internal/repository"
	"zipfit/internal/retrieval"
)

var errBoom = errors.New("boom")

type fakePublisher struct {
	mu       sync.Mutex
	payloads []any
	err      error
}

func (p *fakePublisher) Publish(ctx context.Context, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

type fakeEmbedder struct {
	dim     int
	calls   [][]string
	err     error
	vectors map[string][]float32
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (e *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls = append(e.calls, texts)
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := e.vectors[t]; ok {
			out[i] = v
			continue
		}
		out[i] = make([]float32, e.dim)
		out[i][0] = float32(len(t))
	}
	return out, nil
}

type fakeAnnouncements struct {
	items   map[uint]*model.Announcement
	upserts []model.Announcement
	filter  repository.AnnouncementFilter
	offset  int
	limit   int
	total   int64
}

func (f *fakeAnnouncements) Upsert(ctx context.Context, a *model.Announcement) error {
	a.ID = uint(len(f.upserts) + 1)
	f.upserts = append(f.upserts, *a)
	return nil
}

func (f *fakeAnnouncements) GetByID(ctx context.Context, id uint) (*model.Announcement, error) {
	if a, ok := f.items[id]; ok {
		return a, nil
	}
	return nil, nil
}

func (f *fakeAnnouncements) List(ctx context.Context, filter repository.AnnouncementFilter, offset, limit int) ([]model.Announcement, int64, error) {
	f.filter, f.offset, f.limit = filter, offset, limit
	var out []model.Announcement
	for _, a := range f.items {
		out = append(out, *a)
	}
	return out, f.total, nil
}

func (f *fakeAnnouncements) Summary(ctx context.Context, now time.Time) (*repository.AnnouncementSummary, error) {
	return &repository.AnnouncementSummary{Total: int64(len(f.items))}, nil
}

type fakeFiles struct {
	saved []model.AnnouncementFile
}

func (f *fakeFiles) Upsert(ctx context.Context, file *model.AnnouncementFile) error {
	file.ID = 7
	f.saved = append(f.saved, *file)
	return nil
}

func (f *fakeFiles) ListByAnnouncementID(ctx context.Context, announcementID uint) ([]model.AnnouncementFile, error) {
	return f.saved, nil
}

type fakeChunks struct {
	nextID     uint
	rows       map[uint]model.DocChunk
	replaced   map[uint]int
	deleted    []uint
	embeddings map[uint][]float32
	missing    []uint
	updateErr  error
}

func newFakeChunks() *fakeChunks {
	return &fakeChunks{
		nextID:     100,
		rows:       map[uint]model.DocChunk{},
		replaced:   map[uint]int{},
		embeddings: map[uint][]float32{},
	}
}

func (f *fakeChunks) ReplaceForFile(ctx context.Context, fileID uint, chunks []model.DocChunk) error {
	for i := range chunks {
		f.nextID++
		chunks[i].ID = f.nextID
		f.rows[chunks[i].ID] = chunks[i]
	}
	f.replaced[fileID] = len(chunks)
	return nil
}

func (f *fakeChunks) DeleteByAnnouncementID(ctx context.Context, announcementID uint) error {
	f.deleted = append(f.deleted, announcementID)
	return nil
}

func (f *fakeChunks) ListByIDs(ctx context.Context, ids []uint) ([]model.DocChunk, error) {
	var out []model.DocChunk
	for _, id := range ids {
		if c, ok := f.rows[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChunks) ListMissingEmbedding(ctx context.Context, announcementID uint) ([]uint, error) {
	return f.missing, nil
}

func (f *fakeChunks) UpdateEmbedding(ctx context.Context, id uint, embedding []float32) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.embeddings[id] = embedding
	return nil
}

type fakeChats struct {
	chats  map[string]*model.Chat
	titles map[uint]string
}

func newFakeChats(chats ...*model.Chat) *fakeChats {
	f := &fakeChats{chats: map[string]*model.Chat{}, titles: map[uint]string{}}
	for _, c := range chats {
		f.chats[c.SessionKey] = c
	}
	return f
}

func (f *fakeChats) Create(ctx context.Context, chat *model.Chat) error {
	chat.ID = uint(len(f.chats) + 1)
	f.chats[chat.SessionKey] = chat
	return nil
}

func (f *fakeChats) GetBySessionKey(ctx context.Context, sessionKey string) (*model.Chat, error) {
	return f.chats[sessionKey], nil
}

func (f *fakeChats) ListByUserKey(ctx context.Context, userKey string) ([]model.Chat, error) {
	var out []model.Chat
	for _, c := range f.chats {
		if c.UserKey == userKey {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeChats) UpdateTitle(ctx context.Context, id uint, title string) error {
	f.titles[id] = title
	return nil
}

type fakeMessages struct {
	messages []model.ChatMessage
}

func (f *fakeMessages) ListByChatID(ctx context.Context, chatID uint, limit int) ([]model.ChatMessage, error) {
	return f.messages, nil
}

func (f *fakeMessages) MaxSequence(ctx context.Context, chatID uint) (int, error) {
	last := 0
	for _, m := range f.messages {
		last = max(last, m.Sequence)
	}
	return last, nil
}

type fakeSearch struct {
	results []retrieval.Result
	inputs  []SearchInput
	err     error
}

func (f *fakeSearch) Search(ctx context.Context, in SearchInput) ([]retrieval.Result, error) {
	f.inputs = append(f.inputs, in)
	return f.results, f.err
}

type fakeLLM struct {
	answer   string
	messages []ai.ChatMessage
	err      error
}

func (f *fakeLLM) Complete(ctx context.Context, messages []ai.ChatMessage) (string, error) {
	f.messages = messages
	return f.answer, f.err
}

func (f *fakeLLM) StreamComplete(ctx context.Context, messages []ai.ChatMessage, onChunk func(chunk string) error) (string, error) {
	f.messages = messages
	if f.err != nil {
		return "", f.err
	}
	for _, r := range f.answer {
		if err := onChunk(string(r)); err != nil {
			return "", err
		}
	}
	return f.answer, nil
}
