package models

import "fmt"

// Query is a single retrieval request: a query embedding plus the required
// metadata scope. Chapter is optional; when nil the whole subject is in scope.
type Query struct {
	Embedding []float32 `json:"embedding"`
	Class     int       `json:"class"`
	Subject   string    `json:"subject"`
	Language  string    `json:"language"`
	Chapter   *int      `json:"chapter,omitempty"`
	K         int       `json:"k"`
}

// Validate checks the required filter fields and normalizes k.
// maxK caps the requested result count; a zero k gets defaultK.
func (q *Query) Validate(defaultK, maxK int) error {
	if len(q.Embedding) == 0 {
		return fmt.Errorf("query embedding is empty")
	}
	if q.Class <= 0 {
		return fmt.Errorf("class must be positive")
	}
	if q.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	if q.Language == "" {
		return fmt.Errorf("language is required")
	}
	if q.Chapter != nil && *q.Chapter < 0 {
		return fmt.Errorf("chapter must be non-negative")
	}
	if q.K <= 0 {
		q.K = defaultK
	}
	if maxK > 0 && q.K > maxK {
		q.K = maxK
	}
	return nil
}
