package validate

import (
	"errors"
	"strings"
	"testing"
)

func validRaw() map[string]any {
	return map[string]any{
		"text":     "The mitochondria is the powerhouse of the cell.",
		"class":    10,
		"subject":  "science",
		"chapter":  6,
		"language": "en",
		"textbook": "ncert",
		"tokens":   9,
	}
}

func TestRecord_valid(t *testing.T) {
	chunk, err := Record(validRaw())
	if err != nil {
		t.Fatal(err)
	}
	if chunk.ID == "" {
		t.Error("validated chunk should be id-tagged")
	}
	if !strings.HasPrefix(chunk.ID, "10_science_6_") {
		t.Errorf("id should encode class/subject/chapter: %q", chunk.ID)
	}
	if chunk.Hash == "" {
		t.Error("validated chunk should carry the text hash")
	}
	if chunk.Class != 10 || chunk.Chapter != 6 || chunk.Tokens != 9 {
		t.Errorf("integer fields not preserved: %+v", chunk)
	}
}

func TestRecord_coercesNumericStrings(t *testing.T) {
	raw := validRaw()
	raw["class"] = "10"
	raw["chapter"] = " 6 "
	chunk, err := Record(raw)
	if err != nil {
		t.Fatal(err)
	}
	if chunk.Class != 10 || chunk.Chapter != 6 {
		t.Errorf("numeric strings should coerce: class=%d chapter=%d", chunk.Class, chunk.Chapter)
	}
}

func TestRecord_jsonDecodedNumbers(t *testing.T) {
	// encoding/json decodes numbers into float64 by default.
	raw := validRaw()
	raw["class"] = float64(10)
	raw["tokens"] = float64(9)
	if _, err := Record(raw); err != nil {
		t.Errorf("float64-decoded integers should validate: %v", err)
	}
}

func TestRecord_fieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
		field  string
	}{
		{"missing text", func(m map[string]any) { delete(m, "text") }, "text"},
		{"empty text", func(m map[string]any) { m["text"] = "   " }, "text"},
		{"zero class", func(m map[string]any) { m["class"] = 0 }, "class"},
		{"negative class", func(m map[string]any) { m["class"] = -3 }, "class"},
		{"non-numeric class", func(m map[string]any) { m["class"] = "ten" }, "class"},
		{"uppercase subject", func(m map[string]any) { m["subject"] = "Science" }, "subject"},
		{"missing subject", func(m map[string]any) { delete(m, "subject") }, "subject"},
		{"negative chapter", func(m map[string]any) { m["chapter"] = -1 }, "chapter"},
		{"fractional chapter", func(m map[string]any) { m["chapter"] = 1.5 }, "chapter"},
		{"missing language", func(m map[string]any) { delete(m, "language") }, "language"},
		{"empty textbook", func(m map[string]any) { m["textbook"] = "" }, "textbook"},
		{"negative tokens", func(m map[string]any) { m["tokens"] = -1 }, "tokens"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(raw)
			_, err := Record(raw)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldError, got %T: %v", err, err)
			}
			if fe.Field != tt.field {
				t.Errorf("error names field %q, want %q", fe.Field, tt.field)
			}
		})
	}
}

func TestBatch_allOrNothing(t *testing.T) {
	bad := validRaw()
	bad["class"] = "not-a-number"
	raws := []map[string]any{validRaw(), bad, validRaw()}

	chunks, err := Batch(raws)
	if err == nil {
		t.Fatal("batch with a malformed record must fail")
	}
	if chunks != nil {
		t.Errorf("failed batch must return no chunks, got %d", len(chunks))
	}
	var be *BatchError
	if !errors.As(err, &be) {
		t.Fatalf("expected BatchError, got %T", err)
	}
	if len(be.Errors) != 1 {
		t.Fatalf("expected 1 record error, got %d", len(be.Errors))
	}
	if be.Errors[0].Line != 2 {
		t.Errorf("error should name record 2, got %d", be.Errors[0].Line)
	}
}

func TestBatch_valid(t *testing.T) {
	raws := []map[string]any{validRaw(), validRaw()}
	chunks, err := Batch(raws)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	// Identical text and scope collapse to the same id.
	if chunks[0].ID != chunks[1].ID {
		t.Errorf("identical records should share an id: %q vs %q", chunks[0].ID, chunks[1].ID)
	}
}
