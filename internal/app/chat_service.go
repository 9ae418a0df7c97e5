package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"zipfit/internal/ai"
	"zipfit/internal/model"
	"zipfit/internal/retrieval"
)

const (
	titleMaxRunes  = 50
	emptyAnswer    = "응답을 생성하지 못했습니다."
	noContextBlock = "(관련 문서를 찾지 못했습니다.)"
	systemPrompt   = "당신은 공공주택 공고 안내 도우미입니다. 아래 참고 문서에 있는 내용만 근거로 한국어로 답하세요. " +
		"참고 문서에 근거가 없으면 모른다고 답하고, 공고명과 페이지를 함께 알려 주세요."
)

// Completer produces one chat completion.
type Completer interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
	StreamComplete(ctx context.Context, messages []ai.ChatMessage, onChunk func(chunk string) error) (string, error)
}

// ChunkSearcher runs hybrid retrieval for a question.
type ChunkSearcher interface {
	Search(ctx context.Context, in SearchInput) ([]retrieval.Result, error)
}

type ChatService struct {
	chats      ChatStore
	messages   ChatMessageStore
	publisher  Publisher
	history    HistoryCache
	search     ChunkSearcher
	llm        Completer
	maxContext int
	topK       int
}

func NewChatService(
	chats ChatStore,
	messages ChatMessageStore,
	publisher Publisher,
	history HistoryCache,
	search ChunkSearcher,
	llm Completer,
	maxContext, topK int,
) *ChatService {
	if maxContext <= 0 {
		maxContext = 10
	}
	return &ChatService{
		chats:      chats,
		messages:   messages,
		publisher:  publisher,
		history:    history,
		search:     search,
		llm:        llm,
		maxContext: maxContext,
		topK:       topK,
	}
}

type CreateChatInput struct {
	UserKey string
	Title   string
}

type AskInput struct {
	SessionKey     string
	Message        string
	AnnouncementID uint
}

// Sources is stored as the prompt of bot messages.
type Sources struct {
	ChunkIDs        []uint `json:"chunk_ids"`
	AnnouncementIDs []uint `json:"announcement_ids"`
}

type AskResult struct {
	SessionKey  string             `json:"session_key"`
	UserMessage model.ChatMessage  `json:"user_message"`
	BotMessage  model.ChatMessage  `json:"bot_message"`
	Sources     []retrieval.Result `json:"sources"`
}

func (s *ChatService) CreateChat(ctx context.Context, in CreateChatInput) (*model.Chat, error) {
	userKey := strings.TrimSpace(in.UserKey)
	if userKey == "" {
		userKey = "anonymous"
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = model.DefaultChatTitle
	}

	chat := &model.Chat{
		SessionKey: uuid.NewString(),
		UserKey:    userKey,
		Title:      truncateRunes(title, titleMaxRunes),
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (s *ChatService) ListChats(ctx context.Context, userKey string) ([]model.Chat, error) {
	userKey = strings.TrimSpace(userKey)
	if userKey == "" {
		return nil, ErrInvalidInput
	}
	return s.chats.ListByUserKey(ctx, userKey)
}

func (s *ChatService) GetHistory(ctx context.Context, sessionKey string, limit int) ([]model.ChatMessage, error) {
	chat, err := s.chat(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	return s.loadHistory(ctx, chat.ID, limit)
}

// Ask answers one question in a chat: retrieval, a single completion, then
// both turns go to the persistence queue.
func (s *ChatService) Ask(ctx context.Context, in AskInput) (*AskResult, error) {
	return s.ask(ctx, in, func(messages []ai.ChatMessage) (string, error) {
		return s.llm.Complete(ctx, messages)
	})
}

// StreamAsk is Ask with the answer delivered through onChunk as it arrives.
func (s *ChatService) StreamAsk(ctx context.Context, in AskInput, onChunk func(string) error) (*AskResult, error) {
	return s.ask(ctx, in, func(messages []ai.ChatMessage) (string, error) {
		return s.llm.StreamComplete(ctx, messages, onChunk)
	})
}

func (s *ChatService) ask(ctx context.Context, in AskInput, complete func([]ai.ChatMessage) (string, error)) (*AskResult, error) {
	question := strings.TrimSpace(in.Message)
	if question == "" {
		return nil, ErrMessageEmpty
	}
	chat, err := s.chat(ctx, in.SessionKey)
	if err != nil {
		return nil, err
	}
	if s.publisher == nil {
		return nil, ErrMessageEnqueue
	}

	history, err := s.loadHistory(ctx, chat.ID, s.maxContext)
	if err != nil {
		return nil, err
	}

	var allow []uint
	if in.AnnouncementID != 0 {
		allow = []uint{in.AnnouncementID}
	}
	results, err := s.search.Search(ctx, SearchInput{Query: question, TopK: s.topK, AnnouncementIDs: allow})
	if err != nil {
		return nil, err
	}

	userPrompt := buildUserPrompt(results, question)
	promptMessages := buildPromptMessages(history, userPrompt)

	userMessage, err := s.enqueue(ctx, chat.ID, 0, model.MessageTypeUser, question, userPrompt)
	if err != nil {
		return nil, err
	}

	answer, err := complete(promptMessages)
	if err != nil {
		return nil, err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = emptyAnswer
	}

	sources, err := json.Marshal(sourcesOf(results))
	if err != nil {
		return nil, fmt.Errorf("marshal chat sources failed: %w", err)
	}
	botMessage, err := s.enqueue(ctx, chat.ID, userMessage.Sequence, model.MessageTypeBot, answer, string(sources))
	if err != nil {
		return nil, err
	}

	if chat.Title == model.DefaultChatTitle {
		if err := s.chats.UpdateTitle(ctx, chat.ID, truncateRunes(question, titleMaxRunes)); err != nil {
			log.Printf("chat update title failed: %v", err)
		}
	}

	return &AskResult{
		SessionKey:  chat.SessionKey,
		UserMessage: *userMessage,
		BotMessage:  *botMessage,
		Sources:     results,
	}, nil
}

func (s *ChatService) chat(ctx context.Context, sessionKey string) (*model.Chat, error) {
	key := strings.TrimSpace(sessionKey)
	if _, err := uuid.Parse(key); err != nil {
		return nil, ErrInvalidInput
	}
	chat, err := s.chats.GetBySessionKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	return chat, nil
}

func (s *ChatService) loadHistory(ctx context.Context, chatID uint, limit int) ([]model.ChatMessage, error) {
	if s.history != nil {
		dirty, err := s.history.IsDirty(ctx, chatID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.history.GetHistory(ctx, chatID); cacheErr == nil && hit {
				return trimMessages(cached, limit), nil
			}
		}
	}

	messages, err := s.messages.ListByChatID(ctx, chatID, 0)
	if err != nil {
		return nil, err
	}
	if s.history != nil {
		if dirty, dirtyErr := s.history.IsDirty(ctx, chatID); dirtyErr == nil && !dirty {
			_ = s.history.SetHistory(ctx, chatID, messages)
		}
	}
	return trimMessages(messages, limit), nil
}

// enqueue publishes one message. after is the sequence this request already
// used, or 0 for its first message.
func (s *ChatService) enqueue(ctx context.Context, chatID uint, after int, kind, text, prompt string) (*model.ChatMessage, error) {
	seq, err := s.nextSequence(ctx, chatID, after)
	if err != nil {
		return nil, err
	}
	msg := &model.ChatMessage{
		ChatID:      chatID,
		Sequence:    seq,
		Message:     text,
		Prompt:      prompt,
		MessageType: kind,
		CreatedAt:   time.Now(),
	}
	if s.history != nil {
		_ = s.history.MarkDirty(ctx, chatID)
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		log.Printf("chat message publish failed: %v", err)
		return nil, ErrMessageEnqueue
	}
	return msg, nil
}

func (s *ChatService) nextSequence(ctx context.Context, chatID uint, after int) (int, error) {
	persisted := func(ctx context.Context) (int, error) {
		return s.messages.MaxSequence(ctx, chatID)
	}
	if s.history != nil {
		return s.history.NextSequence(ctx, chatID, persisted)
	}
	if after > 0 {
		return after + 1, nil
	}
	last, err := persisted(ctx)
	if err != nil {
		return 0, err
	}
	return last + 1, nil
}

func trimMessages(messages []model.ChatMessage, limit int) []model.ChatMessage {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func sourcesOf(results []retrieval.Result) Sources {
	src := Sources{ChunkIDs: []uint{}, AnnouncementIDs: []uint{}}
	seen := map[uint]bool{}
	for _, r := range results {
		src.ChunkIDs = append(src.ChunkIDs, r.ChunkID)
		if !seen[r.AnnouncementID] {
			seen[r.AnnouncementID] = true
			src.AnnouncementIDs = append(src.AnnouncementIDs, r.AnnouncementID)
		}
	}
	return src
}

func buildUserPrompt(results []retrieval.Result, question string) string {
	var b strings.Builder
	b.WriteString("참고 문서:\n")
	if len(results) == 0 {
		b.WriteString(noContextBlock)
		b.WriteString("\n")
	}
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %s (p.%d)\n%s\n\n", i+1, r.AnnouncementTitle, r.PageNum, strings.TrimSpace(r.ChunkText))
	}
	b.WriteString("\n질문: ")
	b.WriteString(question)
	return b.String()
}

func buildPromptMessages(history []model.ChatMessage, userPrompt string) []ai.ChatMessage {
	messages := make([]ai.ChatMessage, 0, len(history)+2)
	messages = append(messages, ai.ChatMessage{Role: "system", Content: systemPrompt})
	for _, item := range history {
		role := "user"
		switch item.MessageType {
		case model.MessageTypeBot:
			role = "assistant"
		case model.MessageTypeSystem:
			continue
		}
		messages = append(messages, ai.ChatMessage{Role: role, Content: item.Message})
	}
	return append(messages, ai.ChatMessage{Role: "user", Content: userPrompt})
}
