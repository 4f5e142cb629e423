package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// UserID identifies the owner of memories, conversations and documents.
// It is the hard multi-tenant boundary: every retrieval is scoped by it.
type UserID string

// Validate checks if the UserID is valid
func (x UserID) Validate() error {
	if x == "" {
		return goerr.New("user ID cannot be empty")
	}
	if !idPattern.MatchString(string(x)) {
		return goerr.New("user ID must be alphanumeric with hyphens or underscores", goerr.V("id", x))
	}
	return nil
}

// String returns the string representation of UserID
func (x UserID) String() string {
	return string(x)
}

// CompanionID identifies an AI companion persona. Optional narrowing
// filter for memory retrieval, not an ownership key.
type CompanionID string

func (x CompanionID) String() string {
	return string(x)
}

// DocumentID identifies a writing document (story, chapter, note).
type DocumentID string

func (x DocumentID) String() string {
	return string(x)
}

// ConversationID identifies a chat conversation between a user and a companion.
type ConversationID string

// Validate checks if the ConversationID is valid
func (x ConversationID) Validate() error {
	if x == "" {
		return goerr.New("conversation ID cannot be empty")
	}
	return nil
}

func (x ConversationID) String() string {
	return string(x)
}
