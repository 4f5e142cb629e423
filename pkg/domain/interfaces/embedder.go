package interfaces

import "context"

// Embedder produces a fixed-dimension embedding vector for a text.
// Implementations must not fail for operational reasons: on provider
// trouble they return a zero vector, which downstream ranking treats
// as "no signal".
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
	Dimension() int
}
