// Package composer assembles the augmented prompt for the LLM call from
// ranked memories and the recent conversation window.
package composer

import (
	"context"
	"sort"
	"strings"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
)

const (
	defaultMemoryLimit = 5
	momentLimit        = 3
	moodLookback       = 3
)

// MemorySource is the slice of the memory store the composer reads from
type MemorySource interface {
	RetrieveKinds(ctx context.Context, query string, scope model.Scope, kinds []types.MemoryKind, limit int) []*model.Memory
}

// WindowSource provides the recent conversation window
type WindowSource interface {
	Get(ctx context.Context, id types.ConversationID) *model.Window
}

// Composer builds augmented prompts. It never fails: a sub-result that
// is missing or empty is omitted from the output rather than reported.
type Composer struct {
	memories    MemorySource
	windows     WindowSource
	moodTable   map[string]types.Mood
	memoryLimit int
}

type Option func(*Composer)

// WithMoodTable replaces the built-in keyword-to-mood table
func WithMoodTable(table map[string]types.Mood) Option {
	return func(c *Composer) {
		if len(table) > 0 {
			c.moodTable = table
		}
	}
}

// WithMemoryLimit caps how many memories each section draws from
func WithMemoryLimit(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.memoryLimit = n
		}
	}
}

func New(memories MemorySource, windows WindowSource, opts ...Option) *Composer {
	c := &Composer{
		memories:    memories,
		windows:     windows,
		moodTable:   DefaultMoodTable(),
		memoryLimit: defaultMemoryLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sections gathers the context sections for the scope in their fixed
// order: relationship dynamics, important moments, preferences, mood.
// Empty sections are dropped; the mood section is always present.
func (c *Composer) Sections(ctx context.Context, scope model.Scope) []model.Section {
	query, recent := c.recentTurns(ctx, scope.ConversationID)

	var sections []model.Section

	if rel := c.fetch(ctx, query, scope, types.MemoryKindRelationship); len(rel) > 0 {
		sections = append(sections, model.RelationshipSection{Memories: rel})
	}
	if moments := c.topMoments(ctx, query, scope); len(moments) > 0 {
		sections = append(sections, model.MomentsSection{Memories: moments})
	}
	if prefs := c.fetch(ctx, query, scope, types.MemoryKindPreference); len(prefs) > 0 {
		sections = append(sections, model.PreferencesSection{Memories: prefs})
	}

	sections = append(sections, model.MoodSection{Mood: DetectMood(recent, c.moodTable)})
	return sections
}

// BuildPrompt renders the scope's context sections beneath the base
// prompt as a single string
func (c *Composer) BuildPrompt(ctx context.Context, basePrompt string, scope model.Scope) string {
	var b strings.Builder
	b.WriteString(basePrompt)

	for _, section := range c.Sections(ctx, scope) {
		switch s := section.(type) {
		case model.RelationshipSection:
			writeMemorySection(&b, "Relationship dynamics", s.Memories)
		case model.MomentsSection:
			writeMemorySection(&b, "Important moments", s.Memories)
		case model.PreferencesSection:
			writeMemorySection(&b, "Preferences", s.Memories)
		case model.MoodSection:
			b.WriteString("\n\nCurrent mood: ")
			b.WriteString(s.Mood.String())
		}
	}

	return b.String()
}

func (c *Composer) fetch(ctx context.Context, query string, scope model.Scope, kind types.MemoryKind) []*model.Memory {
	if c.memories == nil {
		return nil
	}
	return c.memories.RetrieveKinds(ctx, query, scope, []types.MemoryKind{kind}, c.memoryLimit)
}

// topMoments picks the highest-importance personal and creative memories
func (c *Composer) topMoments(ctx context.Context, query string, scope model.Scope) []*model.Memory {
	if c.memories == nil {
		return nil
	}

	kinds := []types.MemoryKind{
		types.MemoryKindPersonal,
		types.MemoryKindCreative,
		types.MemoryKindStoryElement,
	}
	candidates := c.memories.RetrieveKinds(ctx, query, scope, kinds, c.memoryLimit*2)

	moments := make([]*model.Memory, 0, len(candidates))
	for _, m := range candidates {
		if m.Importance > 7 {
			moments = append(moments, m)
		}
	}
	sort.SliceStable(moments, func(i, j int) bool {
		return moments[i].Importance > moments[j].Importance
	})
	if len(moments) > momentLimit {
		moments = moments[:momentLimit]
	}
	return moments
}

// recentTurns returns the retrieval query (the user's latest message)
// and the messages used for mood detection
func (c *Composer) recentTurns(ctx context.Context, id types.ConversationID) (string, []model.Message) {
	if c.windows == nil || id == "" {
		return "", nil
	}
	w := c.windows.Get(ctx, id)
	if w == nil {
		return "", nil
	}

	query := ""
	for i := len(w.Recent) - 1; i >= 0; i-- {
		if w.Recent[i].Role == types.RoleUser {
			query = w.Recent[i].Content
			break
		}
	}
	return query, w.LastN(moodLookback)
}

func writeMemorySection(b *strings.Builder, title string, memories []*model.Memory) {
	b.WriteString("\n\n## ")
	b.WriteString(title)
	for _, m := range memories {
		b.WriteString("\n- ")
		b.WriteString(m.Content)
	}
}
