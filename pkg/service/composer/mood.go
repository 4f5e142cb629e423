package composer

import (
	"sort"
	"strings"
	"unicode"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
)

// moodPriority fixes the tie-break order when several moods score the
// same, so detection stays deterministic
var moodPriority = []types.Mood{
	types.MoodJoyful,
	types.MoodAffectionate,
	types.MoodPlayful,
	types.MoodMelancholy,
	types.MoodAnxious,
	types.MoodFrustrated,
}

// DefaultMoodTable maps content keywords to the mood they signal
func DefaultMoodTable() map[string]types.Mood {
	return map[string]types.Mood{
		"happy":     types.MoodJoyful,
		"excited":   types.MoodJoyful,
		"wonderful": types.MoodJoyful,
		"thrilled":  types.MoodJoyful,
		"delighted": types.MoodJoyful,

		"love":    types.MoodAffectionate,
		"adore":   types.MoodAffectionate,
		"cherish": types.MoodAffectionate,
		"sweet":   types.MoodAffectionate,

		"haha":    types.MoodPlayful,
		"lol":     types.MoodPlayful,
		"joking":  types.MoodPlayful,
		"teasing": types.MoodPlayful,
		"silly":   types.MoodPlayful,

		"sad":    types.MoodMelancholy,
		"lonely": types.MoodMelancholy,
		"miss":   types.MoodMelancholy,
		"crying": types.MoodMelancholy,
		"grief":  types.MoodMelancholy,

		"worried": types.MoodAnxious,
		"nervous": types.MoodAnxious,
		"afraid":  types.MoodAnxious,
		"scared":  types.MoodAnxious,
		"anxious": types.MoodAnxious,

		"angry":      types.MoodFrustrated,
		"annoyed":    types.MoodFrustrated,
		"frustrated": types.MoodFrustrated,
		"hate":       types.MoodFrustrated,
		"ugh":        types.MoodFrustrated,
	}
}

// DetectMood scores the given messages against the keyword table and
// returns the mood with the most keyword hits. No hits means neutral.
func DetectMood(msgs []model.Message, table map[string]types.Mood) types.Mood {
	if len(table) == 0 {
		return types.MoodNeutral
	}

	scores := map[types.Mood]int{}
	for _, msg := range msgs {
		for _, raw := range strings.Fields(strings.ToLower(msg.Content)) {
			word := strings.TrimFunc(raw, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsNumber(r)
			})
			if mood, ok := table[word]; ok {
				scores[mood]++
			}
		}
	}

	best := types.MoodNeutral
	bestScore := 0
	for _, mood := range moodPriority {
		if scores[mood] > bestScore {
			best = mood
			bestScore = scores[mood]
		}
		delete(scores, mood)
	}
	// moods from a custom table that are not in the priority list
	rest := make([]types.Mood, 0, len(scores))
	for mood := range scores {
		rest = append(rest, mood)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	for _, mood := range rest {
		if scores[mood] > bestScore {
			best = mood
			bestScore = scores[mood]
		}
	}
	return best
}
