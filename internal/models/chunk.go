// Package models defines core data structures for chunks, bundles, queries, and answers.
package models

// ChunkMeta is the metadata carried with every chunk. It scopes the chunk
// to a curriculum position (class, subject, chapter, language, textbook)
// and records the content hash used for identity.
type ChunkMeta struct {
	ID       string `json:"id"`
	Class    int    `json:"class"`
	Subject  string `json:"subject"`
	Chapter  int    `json:"chapter"`
	Language string `json:"language"`
	Textbook string `json:"textbook"`
	Tokens   int    `json:"tokens"`
	Hash     string `json:"hash,omitempty"`
}

// Chunk is one indexable unit of curriculum text. Created once during
// ingestion and immutable thereafter; the embedding is attached at export
// time, just before the chunk is written into a bundle.
type Chunk struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Class     int       `json:"class"`
	Subject   string    `json:"subject"`
	Chapter   int       `json:"chapter"`
	Language  string    `json:"language"`
	Textbook  string    `json:"textbook"`
	Tokens    int       `json:"tokens"`
	Hash      string    `json:"hash"`
	Embedding []float32 `json:"-"`
}

// Meta returns the chunk's metadata in the form stored in chunk records.
func (c *Chunk) Meta() ChunkMeta {
	return ChunkMeta{
		ID:       c.ID,
		Class:    c.Class,
		Subject:  c.Subject,
		Chapter:  c.Chapter,
		Language: c.Language,
		Textbook: c.Textbook,
		Tokens:   c.Tokens,
		Hash:     c.Hash,
	}
}

// ChunkRecord is one line of a bundle's chunk record log. Line order in
// the log matches embedding row order in the bundle.
type ChunkRecord struct {
	Metadata ChunkMeta `json:"metadata"`
	Text     string    `json:"text"`
}
