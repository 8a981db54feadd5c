package models

// ModelDescriptor identifies the embedding model a bundle was built with.
// A query embedded with a different model or dimension must be rejected
// before any search runs.
type ModelDescriptor struct {
	Name string `json:"name"`
	Dim  int    `json:"dim"`
}

// Manifest is a bundle's self-description: curriculum scope, embedding
// model, chunk count, and provenance. Written once at export and never
// modified.
type Manifest struct {
	Class          int    `json:"class"`
	Subject        string `json:"subject"`
	Chapter        int    `json:"chapter"`
	Language       string `json:"language"`
	EmbeddingModel string `json:"embedding_model"`
	EmbeddingDim   int    `json:"embedding_dim"`
	ChunkCount     int    `json:"chunk_count"`
	ChunkStrategy  string `json:"chunk_strategy"`
	CreatedAt      string `json:"created_at"`
	Version        string `json:"version"`
	HashStrategy   string `json:"hash_strategy"`
}
