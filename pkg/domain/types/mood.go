package types

// Mood is a coarse emotional state inferred from recent conversation turns
type Mood string

const (
	MoodNeutral      Mood = "neutral"
	MoodJoyful       Mood = "joyful"
	MoodMelancholy   Mood = "melancholy"
	MoodAnxious      Mood = "anxious"
	MoodAffectionate Mood = "affectionate"
	MoodPlayful      Mood = "playful"
	MoodFrustrated   Mood = "frustrated"
)

// String returns the string representation of Mood
func (x Mood) String() string {
	return string(x)
}
