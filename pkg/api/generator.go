package api

import (
	"context"
	"fmt"
)

// Generator produces the final answer from a question and the retrieved
// graph context. The production implementation calls an external language
// model; it is injected so the server never hard-codes a provider.
type Generator interface {
	Generate(ctx context.Context, question, contextText string) (string, error)
}

// NoopGenerator echoes the retrieved context. Useful for development and for
// deployments where the caller does its own generation.
type NoopGenerator struct{}

// Generate implements Generator.
func (NoopGenerator) Generate(_ context.Context, question, contextText string) (string, error) {
	return fmt.Sprintf("Based on the knowledge graph:\n\n%s", contextText), nil
}
