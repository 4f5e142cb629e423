package window

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
)

const (
	maxTopics       = 10
	maxExcerpts     = 3
	maxExcerptChars = 100
	minTopicLen     = 6
)

// Summarize condenses messages truncated out of a window into a single
// paragraph: recurring topics drawn from what the user actually said,
// plus verbatim excerpts of the moments that were flagged as important
// or emotionally charged.
func Summarize(older []model.Message) string {
	if len(older) == 0 {
		return ""
	}

	topics := topicWords(older)
	excerpts := keyExcerpts(older)

	var b strings.Builder
	fmt.Fprintf(&b, "Earlier in this conversation (%d messages).", len(older))
	if len(topics) > 0 {
		fmt.Fprintf(&b, " Recurring topics: %s.", strings.Join(topics, ", "))
	}
	if len(excerpts) > 0 {
		quoted := make([]string, 0, len(excerpts))
		for _, e := range excerpts {
			quoted = append(quoted, `"`+e+`"`)
		}
		fmt.Fprintf(&b, " Notable moments: %s.", strings.Join(quoted, "; "))
	}
	return b.String()
}

// topicWords ranks content words from user-authored messages by how
// often they recur. Ties keep first-mention order so the result is
// stable across runs.
func topicWords(msgs []model.Message) []string {
	counts := map[string]int{}
	firstSeen := map[string]int{}
	order := 0

	for _, msg := range msgs {
		if msg.Role != types.RoleUser {
			continue
		}
		for _, raw := range strings.Fields(strings.ToLower(msg.Content)) {
			word := strings.TrimFunc(raw, func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsNumber(r)
			})
			if utf8.RuneCountInString(word) < minTopicLen {
				continue
			}
			if _, ok := counts[word]; !ok {
				firstSeen[word] = order
				order++
			}
			counts[word]++
		}
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return firstSeen[words[i]] < firstSeen[words[j]]
	})

	if len(words) > maxTopics {
		words = words[:maxTopics]
	}
	return words
}

// keyExcerpts collects verbatim snippets of messages that were flagged
// high-importance or carry a non-neutral emotion tag, oldest first
func keyExcerpts(msgs []model.Message) []string {
	var excerpts []string
	for _, msg := range msgs {
		if !msg.IsHighImportance() && !msg.HasEmotion() {
			continue
		}
		excerpts = append(excerpts, clip(msg.Content, maxExcerptChars))
		if len(excerpts) == maxExcerpts {
			break
		}
	}
	return excerpts
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
