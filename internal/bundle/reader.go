package bundle

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gurukul-labs/gurukul/internal/models"
	"github.com/gurukul-labs/gurukul/internal/vector"
)

// Bundle is a loaded, verified bundle. Read-only for the lifetime of the
// process; concurrent queries against a loaded bundle need no locking.
// Replacing a bundle means opening the new version and swapping the
// handle, never mutating this one.
type Bundle struct {
	Dir      string
	IDs      []string
	Index    *vector.FlatIndex
	Records  []*models.ChunkRecord
	Model    models.ModelDescriptor
	Manifest models.Manifest
	Version  string

	byID map[string]int
}

// Open loads and verifies the bundle at dir. Every required artifact must
// be present (MissingArtifactError otherwise) and the id list, embedding
// matrix, and chunk records must agree on count and dimension
// (CorruptError otherwise). No query may be served from a bundle that
// fails these checks.
func Open(dir string) (*Bundle, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("bundle directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("bundle path %s is not a directory", dir)
	}
	for _, name := range requiredArtifacts {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return nil, &MissingArtifactError{Name: name}
		}
	}

	var model models.ModelDescriptor
	if err := readJSON(filepath.Join(dir, ModelFile), &model); err != nil {
		return nil, &CorruptError{Reason: fmt.Sprintf("model descriptor: %v", err)}
	}
	if model.Dim <= 0 {
		return nil, &CorruptError{Reason: "model descriptor has non-positive dimension"}
	}

	var manifest models.Manifest
	if err := readJSON(filepath.Join(dir, ManifestFile), &manifest); err != nil {
		return nil, &CorruptError{Reason: fmt.Sprintf("manifest: %v", err)}
	}

	var ids []string
	if err := readJSON(filepath.Join(dir, IDsFile), &ids); err != nil {
		return nil, &CorruptError{Reason: fmt.Sprintf("id list: %v", err)}
	}

	records, err := readChunkRecords(filepath.Join(dir, ChunksFile))
	if err != nil {
		return nil, &CorruptError{Reason: fmt.Sprintf("chunk records: %v", err)}
	}

	index, err := vector.LoadFlatIndex(filepath.Join(dir, IndexFile))
	if err != nil {
		return nil, &CorruptError{Reason: fmt.Sprintf("vector index: %v", err)}
	}

	versionBytes, err := os.ReadFile(filepath.Join(dir, VersionFile))
	if err != nil {
		return nil, &CorruptError{Reason: fmt.Sprintf("version marker: %v", err)}
	}
	version := strings.TrimSpace(string(versionBytes))
	if version == "" {
		return nil, &CorruptError{Reason: "version marker is empty"}
	}

	if index.Dim() != model.Dim {
		return nil, &CorruptError{Reason: fmt.Sprintf(
			"index dimension %d disagrees with model dimension %d", index.Dim(), model.Dim)}
	}
	if len(ids) != index.Len() {
		return nil, &CorruptError{Reason: fmt.Sprintf(
			"id list has %d entries, index has %d rows", len(ids), index.Len())}
	}
	if len(records) != len(ids) {
		return nil, &CorruptError{Reason: fmt.Sprintf(
			"chunk records has %d entries, id list has %d", len(records), len(ids))}
	}
	embInfo, err := os.Stat(filepath.Join(dir, EmbeddingsFile))
	if err != nil {
		return nil, &MissingArtifactError{Name: EmbeddingsFile}
	}
	wantBytes := int64(len(ids)) * int64(model.Dim) * 4
	if embInfo.Size() != wantBytes {
		return nil, &CorruptError{Reason: fmt.Sprintf(
			"embedding matrix is %d bytes, expected %d (%d rows x %d dims)",
			embInfo.Size(), wantBytes, len(ids), model.Dim)}
	}

	byID := make(map[string]int, len(ids))
	for i, id := range ids {
		byID[id] = i
	}

	return &Bundle{
		Dir:      dir,
		IDs:      ids,
		Index:    index,
		Records:  records,
		Model:    model,
		Manifest: manifest,
		Version:  version,
		byID:     byID,
	}, nil
}

// Dim returns the bundle's declared embedding dimension.
func (b *Bundle) Dim() int { return b.Model.Dim }

// ModelName returns the embedding model the bundle was built with.
func (b *Bundle) ModelName() string { return b.Model.Name }

// Count returns the number of chunks in the bundle.
func (b *Bundle) Count() int { return len(b.IDs) }

// RecordAt returns the chunk record at row i.
func (b *Bundle) RecordAt(i int) *models.ChunkRecord { return b.Records[i] }

// RowByID returns the row index for a chunk id.
func (b *Bundle) RowByID(id string) (int, bool) {
	i, ok := b.byID[id]
	return i, ok
}

// RecordByID returns the chunk record for a chunk id.
func (b *Bundle) RecordByID(id string) (*models.ChunkRecord, bool) {
	i, ok := b.byID[id]
	if !ok {
		return nil, false
	}
	return b.Records[i], true
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func readChunkRecords(path string) ([]*models.ChunkRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var records []*models.ChunkRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var record models.ChunkRecord
		if err := json.Unmarshal([]byte(text), &record); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, &record)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
