// Package rank provides pure vector similarity scoring and candidate ranking
package rank

import (
	"math"
	"sort"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
)

// CosineSimilarity returns the normalized dot product of two vectors in
// [-1, 1]. Dimension mismatch and zero-magnitude vectors yield 0 rather
// than an error; a stale score is preferable to a failed request here.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}

// Scored pairs a memory with its similarity score
type Scored struct {
	Memory *model.Memory
	Score  float64
}

// Rank scores each candidate against the query vector, drops everything
// below minSimilarity, orders by descending score with ties broken by
// newer CreatedAt, and truncates to limit.
func Rank(query []float32, candidates []*model.Memory, minSimilarity float64, limit int) []Scored {
	scored := make([]Scored, 0, len(candidates))
	for _, m := range candidates {
		s := CosineSimilarity(query, m.Embedding)
		if s < minSimilarity {
			continue
		}
		scored = append(scored, Scored{Memory: m, Score: s})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score == scored[j].Score {
			return scored[i].Memory.CreatedAt.After(scored[j].Memory.CreatedAt)
		}
		return scored[i].Score > scored[j].Score
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	return scored
}
