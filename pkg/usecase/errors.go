package usecase

import "errors"

// Sentinel errors for use case layer
var (
	ErrLLMNotConfigured = errors.New("LLM client is not configured")
	ErrEmptyMessage     = errors.New("message content is empty")
	ErrMemoryNotStored  = errors.New("memory could not be stored")
	ErrInvalidScope     = errors.New("invalid scope")
)

// Context keys for error values
const (
	ConversationIDKey = "conversation_id"
	UserIDKey         = "user_id"
)
