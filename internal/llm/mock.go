package llm

import "context"

// MockCompleter is a scripted completer for tests. Fn receives the prompt
// and returns the response; when nil, Complete echoes an empty string.
type MockCompleter struct {
	Fn    func(prompt string) (string, error)
	Calls int
}

// Complete invokes the scripted function and counts the call.
func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.Calls++
	if m.Fn == nil {
		return "", nil
	}
	return m.Fn(prompt)
}

// Close is a no-op for MockCompleter.
func (m *MockCompleter) Close() error { return nil }
