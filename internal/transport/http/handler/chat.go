package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"zipfit/internal/app"
	"zipfit/internal/model"
	"zipfit/internal/transport/http/response"
)

type ChatService interface {
	CreateChat(ctx context.Context, in app.CreateChatInput) (*model.Chat, error)
	ListChats(ctx context.Context, userKey string) ([]model.Chat, error)
	GetHistory(ctx context.Context, sessionKey string, limit int) ([]model.ChatMessage, error)
	Ask(ctx context.Context, in app.AskInput) (*app.AskResult, error)
	StreamAsk(ctx context.Context, in app.AskInput, onChunk func(string) error) (*app.AskResult, error)
}

type ChatHandler struct {
	chatService ChatService
}

type CreateChatRequest struct {
	UserKey string `json:"user_key" binding:"max=64"`
	Title   string `json:"title" binding:"max=128"`
}

type AskRequest struct {
	Message        string `json:"message" binding:"required,max=2000"`
	AnnouncementID uint   `json:"announcement_id"`
	Stream         bool   `json:"stream"`
}

func NewChatHandler(chatService ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	chat, err := h.chatService.CreateChat(c.Request.Context(), app.CreateChatInput{
		UserKey: req.UserKey,
		Title:   req.Title,
	})
	if err != nil {
		writeError(c, err, "create chat failed")
		return
	}
	response.OK(c, chat)
}

func (h *ChatHandler) ListChats(c *gin.Context) {
	chats, err := h.chatService.ListChats(c.Request.Context(), c.Query("user_key"))
	if err != nil {
		writeError(c, err, "list chats failed")
		return
	}
	response.OK(c, chats)
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil {
			limit = parsed
		}
	}

	history, err := h.chatService.GetHistory(c.Request.Context(), c.Param("session_key"), limit)
	if err != nil {
		writeError(c, err, "get history failed")
		return
	}
	response.OK(c, history)
}

// Ask answers in one JSON response, or as server-sent events when the
// request sets stream.
func (h *ChatHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}
	in := app.AskInput{
		SessionKey:     c.Param("session_key"),
		Message:        req.Message,
		AnnouncementID: req.AnnouncementID,
	}
	if req.Stream {
		h.stream(c, in)
		return
	}

	result, err := h.chatService.Ask(c.Request.Context(), in)
	if err != nil {
		writeError(c, err, "ask failed")
		return
	}
	response.OK(c, result)
}

func (h *ChatHandler) stream(c *gin.Context, in app.AskInput) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "stream not supported")
		return
	}

	result, err := h.chatService.StreamAsk(c.Request.Context(), in, func(chunk string) error {
		if _, writeErr := c.Writer.Write([]byte("data: " + sanitizeSSE(chunk) + "\n\n")); writeErr != nil {
			return writeErr
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		if _, writeErr := c.Writer.Write([]byte(fmt.Sprintf("event: error\ndata: %s\n\n", sanitizeSSE(err.Error())))); writeErr == nil {
			flusher.Flush()
		}
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if _, writeErr := c.Writer.Write([]byte("event: done\ndata: " + string(payload) + "\n\n")); writeErr == nil {
		flusher.Flush()
	}
}

func sanitizeSSE(input string) string {
	replaced := strings.ReplaceAll(input, "\r\n", "\\n")
	replaced = strings.ReplaceAll(replaced, "\n", "\\n")
	return replaced
}
