// Package bundle reads and writes the immutable on-disk search bundles
// the runtime serves queries from. A bundle directory holds a flat vector
// index, the raw embedding matrix, ordered chunk records, the id list,
// the model descriptor, a manifest, and a version marker; row order is
// the single source of truth correlating them.
package bundle

import "fmt"

// Artifact file names within a bundle directory. All are required; a
// bundle missing any of them is invalid.
const (
	IndexFile      = "index.flat"
	EmbeddingsFile = "embeddings.bin"
	ChunksFile     = "chunks.jsonl"
	IDsFile        = "ids.json"
	ModelFile      = "model.json"
	ManifestFile   = "manifest.json"
	VersionFile    = "version.txt"
)

// requiredArtifacts lists every file a loadable bundle must contain.
var requiredArtifacts = []string{
	IndexFile,
	EmbeddingsFile,
	ChunksFile,
	IDsFile,
	ModelFile,
	ManifestFile,
	VersionFile,
}

// MissingArtifactError reports a required bundle file that is absent.
type MissingArtifactError struct {
	Name string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("bundle missing artifact: %s", e.Name)
}

// CorruptError reports a bundle whose artifacts are present but
// structurally inconsistent. A corrupt bundle must never serve a query.
type CorruptError struct {
	Reason string
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("bundle corrupt: %s", e.Reason)
}
