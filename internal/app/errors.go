package app

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrChatNotFound         = errors.New("chat not found")
	ErrMessageEmpty         = errors.New("message content is empty")
	ErrMessageEnqueue       = errors.New("message enqueue failed")
	ErrJobEnqueue           = errors.New("embedding job enqueue failed")
	ErrNoChunks             = errors.New("document produced no chunks")
	ErrFileTooLarge         = errors.New("file too large")
)
