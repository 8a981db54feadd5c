// Package embedding provides the text-embedding collaborator boundary.
// The model itself is opaque: text in, fixed-length vector out. The same
// model must be used at export time and query time; the caller checks the
// dimension against the bundle before searching.
package embedding

import "context"

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelName() string
	Close() error
}
