package embedding

import (
	"context"
	"math"
	"testing"
)

func TestMockEmbedder_deterministic(t *testing.T) {
	e := NewMockEmbedder(8)
	ctx := context.Background()
	v1, err := e.Embed(ctx, "photosynthesis")
	if err != nil {
		t.Fatal(err)
	}
	v2, _ := e.Embed(ctx, "photosynthesis")
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatal("same text should embed identically")
		}
	}
	if len(v1) != 8 {
		t.Errorf("dimension = %d, want 8", len(v1))
	}
}

func TestMockEmbedder_unitLength(t *testing.T) {
	e := NewMockEmbedder(16)
	v, err := e.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, x := range v {
		sum += float64(x * x)
	}
	if math.Abs(math.Sqrt(sum)-1.0) > 1e-5 {
		t.Errorf("embedding norm = %f, want 1", math.Sqrt(sum))
	}
}

func TestMockEmbedder_batchOrder(t *testing.T) {
	e := NewMockEmbedder(4)
	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 2 {
		t.Fatalf("got %d vectors", len(vecs))
	}
	single, _ := e.Embed(context.Background(), "b")
	for i := range single {
		if vecs[1][i] != single[i] {
			t.Fatal("batch output not aligned with input order")
		}
	}
}
