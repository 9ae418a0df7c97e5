package app

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zipfit/internal/model"
	"zipfit/internal/retrieval"
)

const testSessionKey = "3f1c2a9e-6b7d-4c1e-9a55-0d2b8e4f7a10"

type chatFixture struct {
	svc      *ChatService
	chats    *fakeChats
	messages *fakeMessages
	pub      *fakePublisher
	search   *fakeSearch
	llm      *fakeLLM
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	f := &chatFixture{
		chats:    newFakeChats(&model.Chat{ID: 1, SessionKey: testSessionKey, UserKey: "u1", Title: model.DefaultChatTitle}),
		messages: &fakeMessages{},
		pub:      &fakePublisher{},
		search: &fakeSearch{results: []retrieval.Result{
			{ChunkID: 11, ChunkText: "청년: 도시근로자 월평균소득 100% 이하", PageNum: 3, AnnouncementID: 2, AnnouncementTitle: "행복주택 모집공고"},
			{ChunkID: 12, ChunkText: "신혼부부: 120% 이하", PageNum: 4, AnnouncementID: 2, AnnouncementTitle: "행복주택 모집공고"},
		}},
		llm: &fakeLLM{answer: " 월평균소득 100% 이하입니다. "},
	}
	f.svc = NewChatService(f.chats, f.messages, f.pub, nil, f.search, f.llm, 4, 5)
	return f
}

func TestCreateChat(t *testing.T) {
	f := newChatFixture(t)

	chat, err := f.svc.CreateChat(t.Context(), CreateChatInput{})
	require.NoError(t, err)
	assert.Len(t, chat.SessionKey, 36)
	assert.Equal(t, "anonymous", chat.UserKey)
	assert.Equal(t, model.DefaultChatTitle, chat.Title)
}

func TestAsk(t *testing.T) {
	f := newChatFixture(t)
	f.messages.messages = []model.ChatMessage{
		{ChatID: 1, Sequence: 1, Message: "안녕하세요", MessageType: model.MessageTypeUser},
		{ChatID: 1, Sequence: 2, Message: "무엇을 도와드릴까요?", MessageType: model.MessageTypeBot},
	}

	res, err := f.svc.Ask(t.Context(), AskInput{SessionKey: testSessionKey, Message: "청년 소득 기준은?", AnnouncementID: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, res.UserMessage.Sequence)
	assert.Equal(t, 4, res.BotMessage.Sequence)
	assert.Equal(t, "월평균소득 100% 이하입니다.", res.BotMessage.Message)
	assert.Equal(t, model.MessageTypeBot, res.BotMessage.MessageType)
	assert.Len(t, res.Sources, 2)

	require.Len(t, f.search.inputs, 1)
	assert.Equal(t, []uint{2}, f.search.inputs[0].AnnouncementIDs)
	assert.Equal(t, 5, f.search.inputs[0].TopK)

	require.Len(t, f.llm.messages, 4)
	assert.Equal(t, "system", f.llm.messages[0].Role)
	assert.Equal(t, "assistant", f.llm.messages[2].Role)
	last := f.llm.messages[3].Content
	assert.Contains(t, last, "[1] 행복주택 모집공고 (p.3)")
	assert.True(t, strings.HasSuffix(last, "질문: 청년 소득 기준은?"))
	assert.Equal(t, last, res.UserMessage.Prompt)

	var src Sources
	require.NoError(t, json.Unmarshal([]byte(res.BotMessage.Prompt), &src))
	assert.Equal(t, []uint{11, 12}, src.ChunkIDs)
	assert.Equal(t, []uint{2}, src.AnnouncementIDs)

	require.Len(t, f.pub.payloads, 2)
	assert.Equal(t, "청년 소득 기준은?", f.chats.titles[1])
}

func TestAskWithoutSources(t *testing.T) {
	f := newChatFixture(t)
	f.search.results = nil
	f.llm.answer = ""

	res, err := f.svc.Ask(t.Context(), AskInput{SessionKey: testSessionKey, Message: "주차는?"})
	require.NoError(t, err)
	assert.Equal(t, emptyAnswer, res.BotMessage.Message)
	assert.Contains(t, res.UserMessage.Prompt, noContextBlock)
	assert.Nil(t, f.search.inputs[0].AnnouncementIDs)
}

func TestStreamAsk(t *testing.T) {
	f := newChatFixture(t)
	f.llm.answer = "네"

	var got []string
	res, err := f.svc.StreamAsk(t.Context(), AskInput{SessionKey: testSessionKey, Message: "가능한가요?"}, func(s string) error {
		got = append(got, s)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"네"}, got)
	assert.Equal(t, "네", res.BotMessage.Message)
}

func TestAskErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    AskInput
		setup func(f *chatFixture)
		want  error
	}{
		{"empty message", AskInput{SessionKey: testSessionKey, Message: " "}, nil, ErrMessageEmpty},
		{"malformed session", AskInput{SessionKey: "abc", Message: "q"}, nil, ErrInvalidInput},
		{"unknown session", AskInput{SessionKey: "8a1d2f4c-0000-4000-8000-000000000000", Message: "q"}, nil, ErrChatNotFound},
		{"search failure", AskInput{SessionKey: testSessionKey, Message: "q"}, func(f *chatFixture) { f.search.err = errBoom }, errBoom},
		{"llm failure", AskInput{SessionKey: testSessionKey, Message: "q"}, func(f *chatFixture) { f.llm.err = errBoom }, errBoom},
		{"publish failure", AskInput{SessionKey: testSessionKey, Message: "q"}, func(f *chatFixture) { f.pub.err = errBoom }, ErrMessageEnqueue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newChatFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			_, err := f.svc.Ask(t.Context(), tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGetHistoryTrims(t *testing.T) {
	f := newChatFixture(t)
	for i := 1; i <= 6; i++ {
		f.messages.messages = append(f.messages.messages, model.ChatMessage{ChatID: 1, Sequence: i})
	}

	got, err := f.svc.GetHistory(t.Context(), testSessionKey, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 5, got[0].Sequence)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "행복", truncateRunes("행복주택", 2))
	assert.Equal(t, "행복주택", truncateRunes("행복주택", 10))
}
