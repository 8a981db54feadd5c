package ingest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gurukul-labs/gurukul/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "staging.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func chunk(id, text string) *models.Chunk {
	return &models.Chunk{
		ID: id, Text: text, Class: 10, Subject: "science", Chapter: 1,
		Language: "en", Textbook: "ncert", Tokens: 3, Hash: "h-" + id,
	}
}

func TestStore_PutBatchAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n, err := store.PutBatch(ctx, []*models.Chunk{chunk("c", "third"), chunk("a", "first"), chunk("b", "second")})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("inserted %d, want 3", n)
	}

	chunks, err := store.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// Insertion order, not id order.
	want := []string{"c", "a", "b"}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(want))
	}
	for i, id := range want {
		if chunks[i].ID != id {
			t.Errorf("position %d: got %q, want %q", i, chunks[i].ID, id)
		}
	}
	if chunks[0].Text != "third" || chunks[0].Subject != "science" {
		t.Errorf("fields not preserved: %+v", chunks[0])
	}
}

func TestStore_duplicateIDsCollapse(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.PutBatch(ctx, []*models.Chunk{chunk("dup", "text")}); err != nil {
		t.Fatal(err)
	}
	n, err := store.PutBatch(ctx, []*models.Chunk{chunk("dup", "text"), chunk("new", "other")})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("second batch inserted %d, want 1 (duplicate skipped)", n)
	}
	count, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestStore_Clear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := store.PutBatch(ctx, []*models.Chunk{chunk("x", "t")}); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	count, _ := store.Count(ctx)
	if count != 0 {
		t.Errorf("count after clear = %d, want 0", count)
	}
}
