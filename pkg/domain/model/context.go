package model

import (
	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
)

// Section is a tagged variant for composed prompt context. Each concrete
// section carries its own explicit fields so the composer can switch on
// the type exhaustively instead of inspecting free-form blobs.
type Section interface {
	sectionKind() string
}

// RelationshipSection summarizes the dynamic between user and companion
type RelationshipSection struct {
	Memories []*Memory
}

func (RelationshipSection) sectionKind() string { return "relationship" }

// MomentsSection lists the highest-importance remembered moments
type MomentsSection struct {
	Memories []*Memory
}

func (MomentsSection) sectionKind() string { return "moments" }

// PreferencesSection consolidates the user's recorded preferences
type PreferencesSection struct {
	Memories []*Memory
}

func (PreferencesSection) sectionKind() string { return "preferences" }

// MoodSection is the mood inferred from the most recent conversation turns
type MoodSection struct {
	Mood types.Mood
}

func (MoodSection) sectionKind() string { return "mood" }
