package chunkid

import (
	"strings"
	"testing"
)

func TestChunkID_deterministic(t *testing.T) {
	id1 := ChunkID(10, "science", 3, "Photosynthesis converts light energy.")
	id2 := ChunkID(10, "science", 3, "Photosynthesis converts light energy.")
	if id1 != id2 {
		t.Errorf("same inputs should give same id: %q vs %q", id1, id2)
	}
	if id1 == "" {
		t.Error("id should not be empty")
	}
}

func TestChunkID_format(t *testing.T) {
	id := ChunkID(10, "science", 3, "some text")
	if !strings.HasPrefix(id, "10_science_3_") {
		t.Errorf("id should carry class/subject/chapter prefix: %q", id)
	}
	parts := strings.Split(id, "_")
	if got := parts[len(parts)-1]; len(got) != shortHashLen {
		t.Errorf("short hash length = %d, want %d (%q)", len(got), shortHashLen, id)
	}
}

func TestChunkID_differentText(t *testing.T) {
	id1 := ChunkID(10, "science", 3, "first chunk")
	id2 := ChunkID(10, "science", 3, "second chunk")
	if id1 == id2 {
		t.Errorf("different text should give different ids: %q", id1)
	}
}

func TestChunkID_differentScope(t *testing.T) {
	base := ChunkID(10, "science", 3, "same text")
	if got := ChunkID(9, "science", 3, "same text"); got == base {
		t.Errorf("different class should change id: %q", got)
	}
	if got := ChunkID(10, "maths", 3, "same text"); got == base {
		t.Errorf("different subject should change id: %q", got)
	}
	if got := ChunkID(10, "science", 4, "same text"); got == base {
		t.Errorf("different chapter should change id: %q", got)
	}
}

func TestChunkID_subjectNormalized(t *testing.T) {
	id := ChunkID(10, " social science ", 1, "text")
	if strings.Contains(id, " ") {
		t.Errorf("id should not contain spaces: %q", id)
	}
	if !strings.HasPrefix(id, "10_social_science_1_") {
		t.Errorf("subject spaces should become underscores: %q", id)
	}
}

func TestTextHash_deterministic(t *testing.T) {
	h1 := TextHash("abc")
	h2 := TextHash("abc")
	if h1 != h2 {
		t.Errorf("same text should hash identically: %q vs %q", h1, h2)
	}
	if len(h1) != 32 {
		t.Errorf("hash length = %d, want 32 hex chars", len(h1))
	}
	if TextHash("abc") == TextHash("abd") {
		t.Error("different text should hash differently")
	}
}
