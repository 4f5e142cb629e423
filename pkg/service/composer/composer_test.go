package composer_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
	"github.com/inkwell-labs/mnemosyne/pkg/service/composer"
)

type stubMemories struct {
	byKind map[types.MemoryKind][]*model.Memory
}

func (s *stubMemories) RetrieveKinds(_ context.Context, _ string, _ model.Scope, kinds []types.MemoryKind, limit int) []*model.Memory {
	var result []*model.Memory
	for _, kind := range kinds {
		result = append(result, s.byKind[kind]...)
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

type stubWindows struct {
	window *model.Window
}

func (s *stubWindows) Get(_ context.Context, _ types.ConversationID) *model.Window {
	return s.window
}

func mem(kind types.MemoryKind, content string, importance int) *model.Memory {
	return &model.Memory{Kind: kind, Content: content, Importance: importance}
}

func scope() model.Scope {
	return model.Scope{UserID: "alice", ConversationID: "conv-1"}
}

func TestBuildPromptSectionOrder(t *testing.T) {
	memories := &stubMemories{byKind: map[types.MemoryKind][]*model.Memory{
		types.MemoryKindRelationship: {mem(types.MemoryKindRelationship, "they banter constantly", 6)},
		types.MemoryKindPersonal:     {mem(types.MemoryKindPersonal, "finished a first novel", 9)},
		types.MemoryKindPreference:   {mem(types.MemoryKindPreference, "dislikes cliffhangers", 5)},
	}}
	windows := &stubWindows{window: &model.Window{
		ConversationID: "conv-1",
		Recent: []model.Message{
			{Role: types.RoleUser, Content: "I'm so happy with this chapter"},
		},
	}}

	c := composer.New(memories, windows)
	prompt := c.BuildPrompt(context.Background(), "You are a writing companion.", scope())

	gt.Bool(t, strings.HasPrefix(prompt, "You are a writing companion.")).True()

	relIdx := strings.Index(prompt, "Relationship dynamics")
	momIdx := strings.Index(prompt, "Important moments")
	prefIdx := strings.Index(prompt, "Preferences")
	moodIdx := strings.Index(prompt, "Current mood:")

	gt.Bool(t, relIdx > 0).True()
	gt.Bool(t, relIdx < momIdx).True()
	gt.Bool(t, momIdx < prefIdx).True()
	gt.Bool(t, prefIdx < moodIdx).True()

	gt.Bool(t, strings.Contains(prompt, "they banter constantly")).True()
	gt.Bool(t, strings.Contains(prompt, "finished a first novel")).True()
	gt.Bool(t, strings.Contains(prompt, "dislikes cliffhangers")).True()
	gt.Bool(t, strings.Contains(prompt, "Current mood: joyful")).True()
}

func TestBuildPromptOmitsEmptySections(t *testing.T) {
	c := composer.New(&stubMemories{}, &stubWindows{})
	prompt := c.BuildPrompt(context.Background(), "base", scope())

	gt.Bool(t, strings.Contains(prompt, "Relationship dynamics")).False()
	gt.Bool(t, strings.Contains(prompt, "Important moments")).False()
	gt.Bool(t, strings.Contains(prompt, "Preferences")).False()
	gt.Bool(t, strings.Contains(prompt, "Current mood: neutral")).True()
}

func TestBuildPromptWithNilSources(t *testing.T) {
	c := composer.New(nil, nil)
	prompt := c.BuildPrompt(context.Background(), "base", scope())
	gt.Value(t, prompt).Equal("base\n\nCurrent mood: neutral")
}

func TestMomentsFilteredAndCapped(t *testing.T) {
	memories := &stubMemories{byKind: map[types.MemoryKind][]*model.Memory{
		types.MemoryKindPersonal: {
			mem(types.MemoryKindPersonal, "minor detail", 4),
			mem(types.MemoryKindPersonal, "moment eight", 8),
			mem(types.MemoryKindPersonal, "moment ten", 10),
			mem(types.MemoryKindPersonal, "moment nine", 9),
			mem(types.MemoryKindPersonal, "another eight", 8),
		},
	}}

	c := composer.New(memories, &stubWindows{})
	sections := c.Sections(context.Background(), scope())

	var moments model.MomentsSection
	found := false
	for _, s := range sections {
		if m, ok := s.(model.MomentsSection); ok {
			moments = m
			found = true
		}
	}
	gt.Bool(t, found).True()
	gt.Array(t, moments.Memories).Length(3).Required()
	gt.Value(t, moments.Memories[0].Content).Equal("moment ten")
	gt.Value(t, moments.Memories[1].Content).Equal("moment nine")
	gt.Value(t, moments.Memories[2].Content).Equal("moment eight")
}

func TestDetectMood(t *testing.T) {
	table := composer.DefaultMoodTable()

	cases := []struct {
		name     string
		contents []string
		expect   types.Mood
	}{
		{"no signal defaults to neutral", []string{"let's continue the outline"}, types.MoodNeutral},
		{"single keyword", []string{"I'm so excited about this twist!"}, types.MoodJoyful},
		{"majority wins", []string{"sad and lonely", "happy though"}, types.MoodMelancholy},
		{"punctuation stripped", []string{"worried..."}, types.MoodAnxious},
		{"case insensitive", []string{"HAHA that was great"}, types.MoodPlayful},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var msgs []model.Message
			for _, content := range tc.contents {
				msgs = append(msgs, model.Message{Role: types.RoleUser, Content: content})
			}
			gt.Value(t, composer.DetectMood(msgs, table)).Equal(tc.expect)
		})
	}
}

func TestDetectMoodCustomTable(t *testing.T) {
	table := map[string]types.Mood{"stoked": types.Mood("energized")}
	msgs := []model.Message{{Content: "totally stoked"}}
	gt.Value(t, composer.DetectMood(msgs, table)).Equal(types.Mood("energized"))
}

func TestMoodUsesLastThreeMessagesOnly(t *testing.T) {
	windows := &stubWindows{window: &model.Window{
		Recent: []model.Message{
			{Role: types.RoleUser, Content: "I hate this draft"},
			{Role: types.RoleUser, Content: "working on it"},
			{Role: types.RoleUser, Content: "getting better"},
			{Role: types.RoleUser, Content: "all fine now"},
		},
	}}

	c := composer.New(&stubMemories{}, windows)
	prompt := c.BuildPrompt(context.Background(), "base", scope())
	gt.Bool(t, strings.Contains(prompt, "Current mood: neutral")).True()
}
