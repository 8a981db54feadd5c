package bundle

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTestBundle(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "bundle")
	if err := Write(dir, testChunks(), testModel(), testManifest()); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestOpen_missingArtifact(t *testing.T) {
	for _, name := range []string{IndexFile, EmbeddingsFile, ChunksFile, IDsFile, ModelFile, ManifestFile, VersionFile} {
		t.Run(name, func(t *testing.T) {
			dir := writeTestBundle(t)
			if err := os.Remove(filepath.Join(dir, name)); err != nil {
				t.Fatal(err)
			}
			_, err := Open(dir)
			var missing *MissingArtifactError
			if !errors.As(err, &missing) {
				t.Fatalf("expected MissingArtifactError, got %v", err)
			}
			if missing.Name != name {
				t.Errorf("error names %q, want %q", missing.Name, name)
			}
		})
	}
}

func TestOpen_countMismatch(t *testing.T) {
	dir := writeTestBundle(t)
	// Drop one id from the id list: counts no longer agree.
	if err := os.WriteFile(filepath.Join(dir, IDsFile), []byte(`["10_science_6_aaaaaaaa"]`), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(dir)
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptError, got %v", err)
	}
}

func TestOpen_truncatedEmbeddings(t *testing.T) {
	dir := writeTestBundle(t)
	data, err := os.ReadFile(filepath.Join(dir, EmbeddingsFile))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, EmbeddingsFile), data[:len(data)-4], 0644); err != nil {
		t.Fatal(err)
	}
	_, err = Open(dir)
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptError, got %v", err)
	}
}

func TestOpen_emptyVersion(t *testing.T) {
	dir := writeTestBundle(t)
	if err := os.WriteFile(filepath.Join(dir, VersionFile), []byte("\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(dir)
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptError, got %v", err)
	}
}

func TestOpen_missingDirectory(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("missing directory must fail")
	}
}

func TestBundle_lookup(t *testing.T) {
	b, err := Open(writeTestBundle(t))
	if err != nil {
		t.Fatal(err)
	}
	record, ok := b.RecordByID("10_science_6_bbbbbbbb")
	if !ok {
		t.Fatal("known id should resolve")
	}
	if record.Metadata.ID != "10_science_6_bbbbbbbb" {
		t.Errorf("record metadata id = %q", record.Metadata.ID)
	}
	if row, ok := b.RowByID("10_science_6_bbbbbbbb"); !ok || row != 1 {
		t.Errorf("RowByID = %d,%v; want 1,true", row, ok)
	}
	if _, ok := b.RecordByID("unknown"); ok {
		t.Error("unknown id should not resolve")
	}
}
