package bundle

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gurukul-labs/gurukul/internal/models"
	"github.com/gurukul-labs/gurukul/internal/vector"
)

func testChunks() []*models.Chunk {
	return []*models.Chunk{
		{
			ID: "10_science_6_aaaaaaaa", Text: "Photosynthesis happens in chloroplasts.",
			Class: 10, Subject: "science", Chapter: 6, Language: "en", Textbook: "ncert",
			Tokens: 5, Hash: "aaaaaaaa", Embedding: []float32{3, 4, 0},
		},
		{
			ID: "10_science_6_bbbbbbbb", Text: "Respiration releases energy from glucose.",
			Class: 10, Subject: "science", Chapter: 6, Language: "en", Textbook: "ncert",
			Tokens: 5, Hash: "bbbbbbbb", Embedding: []float32{0, 1, 0},
		},
	}
}

func testModel() models.ModelDescriptor {
	return models.ModelDescriptor{Name: "intfloat/e5-small-v2", Dim: 3}
}

func testManifest() models.Manifest {
	return models.Manifest{
		Class: 10, Subject: "science", Chapter: 6, Language: "en",
		ChunkStrategy: "sentence", Version: "2025.8.1",
	}
}

func TestWrite_roundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bundle")
	chunks := testChunks()
	if err := Write(dir, chunks, testModel(), testManifest()); err != nil {
		t.Fatal(err)
	}

	b, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if b.Count() != len(chunks) {
		t.Errorf("Count=%d, want %d", b.Count(), len(chunks))
	}
	if b.Dim() != 3 {
		t.Errorf("Dim=%d, want 3", b.Dim())
	}
	if b.Version != "2025.8.1" {
		t.Errorf("Version=%q", b.Version)
	}
	for i, c := range chunks {
		if b.IDs[i] != c.ID {
			t.Errorf("id order not preserved at %d: %q vs %q", i, b.IDs[i], c.ID)
		}
		if b.RecordAt(i).Text != c.Text {
			t.Errorf("record %d text mismatch", i)
		}
	}
	// Rows are unit-normalized at export.
	for i := 0; i < b.Count(); i++ {
		norm := vector.L2Norm(b.Index.Row(i))
		if norm < 0.999 || norm > 1.001 {
			t.Errorf("row %d norm = %f, want 1", i, norm)
		}
	}
	if b.Manifest.ChunkCount != len(chunks) {
		t.Errorf("manifest chunk_count = %d", b.Manifest.ChunkCount)
	}
	if b.Manifest.EmbeddingModel != "intfloat/e5-small-v2" || b.Manifest.EmbeddingDim != 3 {
		t.Errorf("manifest model fields = %q/%d", b.Manifest.EmbeddingModel, b.Manifest.EmbeddingDim)
	}
}

func TestWrite_idempotentMatrix(t *testing.T) {
	base := t.TempDir()
	d1 := filepath.Join(base, "b1")
	d2 := filepath.Join(base, "b2")
	if err := Write(d1, testChunks(), testModel(), testManifest()); err != nil {
		t.Fatal(err)
	}
	if err := Write(d2, testChunks(), testModel(), testManifest()); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{EmbeddingsFile, IDsFile, IndexFile, ChunksFile} {
		b1, err := os.ReadFile(filepath.Join(d1, name))
		if err != nil {
			t.Fatal(err)
		}
		b2, err := os.ReadFile(filepath.Join(d2, name))
		if err != nil {
			t.Fatal(err)
		}
		if string(b1) != string(b2) {
			t.Errorf("%s differs between two exports of the same chunk set", name)
		}
	}
}

func TestWrite_dimensionMismatch(t *testing.T) {
	chunks := testChunks()
	chunks[1].Embedding = []float32{1, 0} // shorter than row 0
	dir := filepath.Join(t.TempDir(), "bundle")
	err := Write(dir, chunks, models.ModelDescriptor{Name: "m"}, testManifest())
	var de *vector.DimensionError
	if !errors.As(err, &de) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
	// Nothing must be published.
	if _, statErr := os.Stat(dir); !os.IsNotExist(statErr) {
		t.Error("failed export must not leave a bundle directory")
	}
}

func TestWrite_emptySet(t *testing.T) {
	if err := Write(filepath.Join(t.TempDir(), "b"), nil, testModel(), testManifest()); err == nil {
		t.Error("empty chunk set must be rejected")
	}
}

func TestWrite_missingVersion(t *testing.T) {
	m := testManifest()
	m.Version = ""
	if err := Write(filepath.Join(t.TempDir(), "b"), testChunks(), testModel(), m); err == nil {
		t.Error("missing version must be rejected")
	}
}

func TestWrite_replacesExisting(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bundle")
	if err := Write(dir, testChunks(), testModel(), testManifest()); err != nil {
		t.Fatal(err)
	}
	next := testManifest()
	next.Version = "2025.8.2"
	if err := Write(dir, testChunks()[:1], testModel(), next); err != nil {
		t.Fatal(err)
	}
	b, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if b.Count() != 1 || b.Version != "2025.8.2" {
		t.Errorf("new version should fully replace old: count=%d version=%q", b.Count(), b.Version)
	}
	// No staging or backup directories left behind.
	entries, _ := os.ReadDir(filepath.Dir(dir))
	for _, e := range entries {
		if e.Name() != filepath.Base(dir) {
			t.Errorf("leftover entry after publish: %s", e.Name())
		}
	}
}
