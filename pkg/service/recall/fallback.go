package recall

import (
	"sort"
	"strings"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
)

// Fallback scorer constants. The baseline keeps pure importance/recency
// ranking working for empty or non-overlapping queries; each matching
// query token adds a fixed increment on top.
const (
	fallbackBaseline       = 0.5
	fallbackTokenIncrement = 0.25
	fallbackRecencyHorizon = 365.0 // days until recency decay bottoms out
	fallbackMinDecay       = 0.1
	fallbackMinTokenLen    = 3
)

// fallbackRank scores candidates with the keyword+importance+recency
// heuristic and returns the top entries above the configured floor,
// highest score first. This is what keeps retrieval working when the
// embedding provider is down and every vector on record is zero.
func (s *Service) fallbackRank(query string, candidates []*model.Memory, limit int) []*model.Memory {
	tokens := queryTokens(query)
	now := s.now()

	type scored struct {
		memory *model.Memory
		score  float64
	}

	results := make([]scored, 0, len(candidates))
	for _, m := range candidates {
		content := strings.ToLower(m.Content)

		score := fallbackBaseline
		for _, tok := range tokens {
			if strings.Contains(content, tok) {
				score += fallbackTokenIncrement
			}
		}

		score *= float64(m.Importance) / 10.0

		ageDays := now.Sub(m.CreatedAt).Hours() / 24.0
		decay := 1.0 - ageDays/fallbackRecencyHorizon
		if decay < fallbackMinDecay {
			decay = fallbackMinDecay
		}
		score *= decay

		if score < s.cfg.FallbackFloor {
			continue
		}
		results = append(results, scored{memory: m, score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	final := make([]*model.Memory, len(results))
	for i, r := range results {
		final[i] = r.memory
	}
	return final
}

// queryTokens lowercases the query and keeps words of at least
// fallbackMinTokenLen characters
func queryTokens(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()")
		if len([]rune(f)) >= fallbackMinTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
