package models

// Retrieval result status values. A result is either fully populated
// ("ok") or the refusal sentinel ("refer_teacher"); never partial.
const (
	StatusOK           = "ok"
	StatusReferTeacher = "refer_teacher"
)

// RetrievedChunk is one ranked retrieval hit.
type RetrievedChunk struct {
	ID    string    `json:"id"`
	Rank  int       `json:"rank"`
	Score float64   `json:"score"`
	Text  string    `json:"text"`
	Meta  ChunkMeta `json:"meta"`
}

// RetrievalResult is the outcome of a search: a ranked chunk list when the
// confidence gate passes, or the refer_teacher sentinel when it does not.
type RetrievalResult struct {
	Status string            `json:"status"`
	Chunks []*RetrievedChunk `json:"chunks,omitempty"`
}

// ReferTeacher returns the insufficient-confidence sentinel result.
func ReferTeacher() *RetrievalResult {
	return &RetrievalResult{Status: StatusReferTeacher}
}

// OK reports whether the result carries retrieved chunks.
func (r *RetrievalResult) OK() bool {
	return r != nil && r.Status == StatusOK && len(r.Chunks) > 0
}

// Answer status values for a composed response.
const (
	AnswerStatusAnswered = "answered"
	AnswerStatusRefused  = "refused"
)

// Answer is the final response to a student question: either a cited
// answer or the fixed refusal text with no sources.
type Answer struct {
	Status  string   `json:"status"`
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}
