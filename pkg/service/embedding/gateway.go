// Package embedding wraps the external embedding provider with input
// truncation and a zero-vector degradation policy.
package embedding

import (
	"context"
	"time"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/interfaces"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/metrics"
	"github.com/inkwell-labs/mnemosyne/pkg/utils/logging"
)

// Client is the subset of gollem.LLMClient the gateway needs
type Client interface {
	GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error)
}

// Gateway converts text to embedding vectors. Provider failures, timeouts
// and a missing provider all degrade to a zero vector of the configured
// dimension; callers treat an all-zero vector as "no signal" and cosine
// similarity against it is 0 by convention.
type Gateway struct {
	client    Client
	dimension int
	maxChars  int
	timeout   time.Duration
}

var _ interfaces.Embedder = &Gateway{}

// Option is a functional option for Gateway configuration
type Option func(*Gateway)

// WithDimension overrides the embedding dimension
func WithDimension(d int) Option {
	return func(g *Gateway) {
		g.dimension = d
	}
}

// WithMaxChars overrides the input truncation length
func WithMaxChars(n int) Option {
	return func(g *Gateway) {
		g.maxChars = n
	}
}

// WithTimeout overrides the per-call provider timeout
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = d
	}
}

// New creates a Gateway. client may be nil when no provider is
// configured; every Embed call then returns a zero vector.
func New(client Client, opts ...Option) *Gateway {
	g := &Gateway{
		client:    client,
		dimension: model.EmbeddingDimension,
		maxChars:  8000,
		timeout:   10 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Dimension returns the fixed vector dimension
func (g *Gateway) Dimension() int {
	return g.dimension
}

// Embed returns the embedding for text, or a zero vector on any failure
func (g *Gateway) Embed(ctx context.Context, text string) []float32 {
	zero := make([]float32, g.dimension)

	if g.client == nil {
		logging.From(ctx).Debug("embedding provider not configured, returning zero vector")
		return zero
	}
	if text == "" {
		return zero
	}

	if runes := []rune(text); len(runes) > g.maxChars {
		text = string(runes[:g.maxChars])
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	embeddings, err := g.client.GenerateEmbedding(ctx, g.dimension, []string{text})
	if err != nil {
		logging.From(ctx).Warn("embedding generation failed, degrading to zero vector",
			"error", err.Error())
		metrics.EmbeddingFallbacks.Inc()
		return zero
	}
	if len(embeddings) == 0 || len(embeddings[0]) != g.dimension {
		logging.From(ctx).Warn("embedding provider returned malformed response, degrading to zero vector",
			"vectors", len(embeddings))
		metrics.EmbeddingFallbacks.Inc()
		return zero
	}

	result := make([]float32, g.dimension)
	for i, v := range embeddings[0] {
		result[i] = float32(v)
	}

	return result
}
