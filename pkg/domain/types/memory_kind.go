package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// MemoryKind categorizes what a stored memory is about
type MemoryKind string

const (
	// MemoryKindPersonal is a fact about the user themselves
	MemoryKindPersonal MemoryKind = "personal"
	// MemoryKindRelationship captures the dynamic between user and companion
	MemoryKindRelationship MemoryKind = "relationship"
	// MemoryKindCreative is an idea or theme from the user's writing
	MemoryKindCreative MemoryKind = "creative"
	// MemoryKindFactual is a verifiable statement worth recalling
	MemoryKindFactual MemoryKind = "factual"
	// MemoryKindPreference records likes, dislikes and style choices
	MemoryKindPreference MemoryKind = "preference"
	// MemoryKindStoryElement is an indexed story-bible entry (character, place, plot point)
	MemoryKindStoryElement MemoryKind = "story_element"
)

// AllMemoryKinds returns all valid memory kinds
func AllMemoryKinds() []MemoryKind {
	return []MemoryKind{
		MemoryKindPersonal,
		MemoryKindRelationship,
		MemoryKindCreative,
		MemoryKindFactual,
		MemoryKindPreference,
		MemoryKindStoryElement,
	}
}

// IsValid checks if the MemoryKind is one of the known kinds
func (x MemoryKind) IsValid() bool {
	switch x {
	case MemoryKindPersonal, MemoryKindRelationship, MemoryKindCreative,
		MemoryKindFactual, MemoryKindPreference, MemoryKindStoryElement:
		return true
	}
	return false
}

// Validate checks if the MemoryKind is valid
func (x MemoryKind) Validate() error {
	if !x.IsValid() {
		return goerr.New("invalid memory kind", goerr.V("kind", x))
	}
	return nil
}

// String returns the string representation of MemoryKind
func (x MemoryKind) String() string {
	return string(x)
}
