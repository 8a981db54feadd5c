// Package validate checks raw chunk records before they touch storage and
// tags them with their deterministic id. A batch either validates as a
// whole or fails as a whole; no record is silently skipped.
package validate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gurukul-labs/gurukul/internal/chunkid"
	"github.com/gurukul-labs/gurukul/internal/models"
)

// FieldError reports a single malformed or missing field in a raw record.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// LineError wraps a record error with its 1-based position in the batch.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// BatchError aggregates every record error in a failed batch.
type BatchError struct {
	Errors []*LineError
}

func (e *BatchError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, le := range e.Errors {
		msgs = append(msgs, le.Error())
	}
	return fmt.Sprintf("batch validation failed (%d records): %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Record validates a raw record and returns a validated, id-tagged chunk.
// Required fields: text (non-empty), class (positive integer), subject
// (non-empty lowercase token), chapter (non-negative integer, coercible
// from a numeric string), language (non-empty short code), textbook
// (non-empty), tokens (non-negative integer).
func Record(raw map[string]any) (*models.Chunk, error) {
	text, err := stringField(raw, "text")
	if err != nil {
		return nil, err
	}
	class, err := intField(raw, "class")
	if err != nil {
		return nil, err
	}
	if class <= 0 {
		return nil, &FieldError{Field: "class", Reason: "must be positive"}
	}
	subject, err := stringField(raw, "subject")
	if err != nil {
		return nil, err
	}
	if subject != strings.ToLower(subject) {
		return nil, &FieldError{Field: "subject", Reason: "must be lowercase"}
	}
	chapter, err := intField(raw, "chapter")
	if err != nil {
		return nil, err
	}
	if chapter < 0 {
		return nil, &FieldError{Field: "chapter", Reason: "must be non-negative"}
	}
	language, err := stringField(raw, "language")
	if err != nil {
		return nil, err
	}
	textbook, err := stringField(raw, "textbook")
	if err != nil {
		return nil, err
	}
	tokens, err := intField(raw, "tokens")
	if err != nil {
		return nil, err
	}
	if tokens < 0 {
		return nil, &FieldError{Field: "tokens", Reason: "must be non-negative"}
	}

	return &models.Chunk{
		ID:       chunkid.ChunkID(class, subject, chapter, text),
		Text:     text,
		Class:    class,
		Subject:  subject,
		Chapter:  chapter,
		Language: language,
		Textbook: textbook,
		Tokens:   tokens,
		Hash:     chunkid.TextHash(text),
	}, nil
}

// Batch validates a sequence of raw records. When any record fails, the
// whole batch fails with a BatchError naming every offending record, and
// no chunks are returned.
func Batch(raws []map[string]any) ([]*models.Chunk, error) {
	chunks := make([]*models.Chunk, 0, len(raws))
	var errs []*LineError
	for i, raw := range raws {
		chunk, err := Record(raw)
		if err != nil {
			errs = append(errs, &LineError{Line: i + 1, Err: err})
			continue
		}
		chunks = append(chunks, chunk)
	}
	if len(errs) > 0 {
		return nil, &BatchError{Errors: errs}
	}
	return chunks, nil
}

func stringField(raw map[string]any, field string) (string, error) {
	v, ok := raw[field]
	if !ok {
		return "", &FieldError{Field: field, Reason: "missing"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &FieldError{Field: field, Reason: "must be a string"}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &FieldError{Field: field, Reason: "must not be empty"}
	}
	return s, nil
}

// intField accepts native integers, JSON numbers, and numeric strings.
func intField(raw map[string]any, field string) (int, error) {
	v, ok := raw[field]
	if !ok {
		return 0, &FieldError{Field: field, Reason: "missing"}
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, &FieldError{Field: field, Reason: "must be an integer"}
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, &FieldError{Field: field, Reason: "must be an integer"}
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, &FieldError{Field: field, Reason: "not coercible to an integer"}
		}
		return i, nil
	default:
		return 0, &FieldError{Field: field, Reason: "must be an integer"}
	}
}
