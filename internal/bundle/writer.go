package bundle

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/gurukul-labs/gurukul/internal/models"
	"github.com/gurukul-labs/gurukul/internal/vector"
)

// Write exports a closed set of validated, embedded chunks as a bundle at
// dir. All artifacts are staged into a temporary sibling directory and
// published by a single rename, so a crash mid-write never leaves a
// loadable partial bundle at dir. An existing bundle at dir is replaced.
//
// Embeddings are unit-normalized before writing; row order is the
// insertion order of chunks. Given the same chunks and model, two export
// runs produce byte-identical matrices and identical id ordering.
func Write(dir string, chunks []*models.Chunk, model models.ModelDescriptor, manifest models.Manifest) error {
	if len(chunks) == 0 {
		return fmt.Errorf("cannot write empty bundle")
	}
	if manifest.Version == "" {
		return fmt.Errorf("manifest version is required")
	}

	dim := len(chunks[0].Embedding)
	if dim == 0 {
		return fmt.Errorf("chunk %s has no embedding", chunks[0].ID)
	}
	if model.Dim != 0 && model.Dim != dim {
		return &vector.DimensionError{Got: dim, Want: model.Dim}
	}
	model.Dim = dim

	index, err := vector.NewFlatIndex(dim)
	if err != nil {
		return err
	}
	rows := make([][]float32, len(chunks))
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		if len(c.Embedding) != dim {
			return &vector.DimensionError{Got: len(c.Embedding), Want: dim}
		}
		rows[i] = vector.Normalize(c.Embedding)
		ids[i] = c.ID
	}
	if err := index.Add(rows); err != nil {
		return err
	}

	manifest.EmbeddingModel = model.Name
	manifest.EmbeddingDim = dim
	manifest.ChunkCount = len(chunks)
	if manifest.CreatedAt == "" {
		manifest.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if manifest.HashStrategy == "" {
		manifest.HashStrategy = "md5(chunk_text)"
	}

	parent := filepath.Dir(filepath.Clean(dir))
	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("create bundle parent dir: %w", err)
	}
	staging := filepath.Join(parent, ".staging-"+uuid.NewString())
	if err := os.MkdirAll(staging, 0755); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := writeArtifacts(staging, chunks, rows, ids, index, model, manifest); err != nil {
		return err
	}
	return publish(staging, dir)
}

func writeArtifacts(
	staging string,
	chunks []*models.Chunk,
	rows [][]float32,
	ids []string,
	index *vector.FlatIndex,
	model models.ModelDescriptor,
	manifest models.Manifest,
) error {
	if err := writeChunkRecords(filepath.Join(staging, ChunksFile), chunks); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(staging, IDsFile), ids); err != nil {
		return err
	}
	if err := writeEmbeddings(filepath.Join(staging, EmbeddingsFile), rows); err != nil {
		return err
	}
	if err := index.Save(filepath.Join(staging, IndexFile)); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(staging, ModelFile), model); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(staging, ManifestFile), manifest); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(staging, VersionFile), []byte(manifest.Version+"\n"), 0644); err != nil {
		return fmt.Errorf("write version marker: %w", err)
	}
	return nil
}

// publish swaps the staged bundle into place. A previous bundle is moved
// aside before the rename and removed after, so dir never holds a partial
// bundle.
func publish(staging, dir string) error {
	old := ""
	if _, err := os.Stat(dir); err == nil {
		old = filepath.Join(filepath.Dir(filepath.Clean(dir)), ".old-"+uuid.NewString())
		if err := os.Rename(dir, old); err != nil {
			return fmt.Errorf("move previous bundle aside: %w", err)
		}
	}
	if err := os.Rename(staging, dir); err != nil {
		if old != "" {
			_ = os.Rename(old, dir)
		}
		return fmt.Errorf("publish bundle: %w", err)
	}
	if old != "" {
		_ = os.RemoveAll(old)
	}
	return nil
}

func writeChunkRecords(path string, chunks []*models.Chunk) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chunk records: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, c := range chunks {
		record := models.ChunkRecord{Metadata: c.Meta(), Text: c.Text}
		line, err := json.Marshal(&record)
		if err != nil {
			return fmt.Errorf("marshal chunk record %s: %w", c.ID, err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("write chunk record: %w", err)
		}
	}
	return w.Flush()
}

func writeEmbeddings(path string, rows [][]float32) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create embedding matrix: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, row := range rows {
		if _, err := w.Write(vector.Float32SliceToBytes(row)); err != nil {
			return fmt.Errorf("write embedding row: %w", err)
		}
	}
	return w.Flush()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
