package ai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

type chatStreamEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (c *Client) chatRequest(messages []ChatMessage, stream bool) chatRequest {
	req := chatRequest{Model: c.cfg.ChatModel, Messages: messages, Stream: stream}
	if c.cfg.Temperature >= 0 {
		t := c.cfg.Temperature
		req.Temperature = &t
	}
	return req
}

// Complete returns the first choice of a non-streaming completion.
func (c *Client) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	var parsed chatResponse
	if err := c.post(ctx, "/chat/completions", c.chatRequest(messages, false), &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: empty llm choices", ErrUpstream)
	}
	return parsed.Choices[0].Message.Content, nil
}

// StreamComplete calls onChunk for every content delta and returns the
// concatenated answer. An onChunk error stops the stream.
func (c *Client) StreamComplete(ctx context.Context, messages []ChatMessage, onChunk func(chunk string) error) (string, error) {
	resp, err := c.send(ctx, "/chat/completions", c.chatRequest(messages, true))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: llm stream status %d: %s", ErrUpstream, resp.StatusCode, string(raw))
	}
	return readStream(resp.Body, onChunk)
}

func readStream(body io.Reader, onChunk func(chunk string) error) (string, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)

	var full strings.Builder
	for scanner.Scan() {
		payload, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), "data:")
		if !ok {
			continue
		}
		payload = strings.TrimSpace(payload)
		if payload == "[DONE]" {
			break
		}

		var event chatStreamEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil || len(event.Choices) == 0 {
			continue
		}
		text := event.Choices[0].Delta.Content
		if text == "" {
			continue
		}
		full.WriteString(text)
		if err := onChunk(text); err != nil {
			return "", err
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan llm stream failed: %w", err)
	}
	return full.String(), nil
}
