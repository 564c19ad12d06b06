package embedding

import "context"

// Provider defines an interface for computing embeddings from text.
// Implementations must return one vector per input text, in order, all with
// the same dimensionality for the lifetime of the provider.
type Provider interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}
