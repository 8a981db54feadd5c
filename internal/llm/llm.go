// Package llm provides the language-model collaborator boundary: prompt
// in, text out. No structural contract is assumed on the output; the
// answer composer validates citations after the fact.
package llm

import "context"

// Completer generates a completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Close() error
}
