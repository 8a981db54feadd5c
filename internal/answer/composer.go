// Package answer turns a gated retrieval result into a final response:
// either a cited answer from the language-model collaborator or the fixed
// refusal. The citation contract is enforced here — an answer that names
// no retrieved chunk id is discarded, whatever the model said.
package answer

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gurukul-labs/gurukul/internal/llm"
	"github.com/gurukul-labs/gurukul/internal/models"
)

// Refusal is the fixed response a student sees when the system cannot
// answer from the corpus. Per-query failures of any kind collapse to this
// text; a student never sees a raw error.
const Refusal = "I don't know, ask your teacher."

// refusalSentinel detects the model declining in its own words.
const refusalSentinel = "i don't know"

// Composer builds prompts, invokes the LLM collaborator, and validates
// citations on its output.
type Composer struct {
	completer llm.Completer
	timeout   time.Duration
	logger    *zap.Logger // optional
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets a logger for debug output (refusal reasons, citation counts).
func WithLogger(l *zap.Logger) Option {
	return func(c *Composer) { c.logger = l }
}

// NewComposer creates a composer. timeout bounds the LLM call; a timeout
// is treated as a refusal, not a crash.
func NewComposer(completer llm.Completer, timeout time.Duration, opts ...Option) *Composer {
	c := &Composer{completer: completer, timeout: timeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Answer composes the final response for a question and its retrieval
// result. A refer_teacher result short-circuits to the refusal without
// invoking the model. Collaborator failures, the model refusing in its
// own words, and missing citations all produce the refusal response; the
// returned error is always nil for these designed outcomes.
func (c *Composer) Answer(ctx context.Context, question string, res *models.RetrievalResult) (*models.Answer, error) {
	if !res.OK() {
		return refuse(), nil
	}

	prompt := BuildPrompt(question, res.Chunks)
	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	text, err := c.completer.Complete(callCtx, prompt)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("llm call failed, refusing", zap.Error(err))
		}
		return refuse(), nil
	}
	text = strings.TrimSpace(text)
	if text == "" || strings.Contains(strings.ToLower(text), refusalSentinel) {
		if c.logger != nil {
			c.logger.Debug("model declined to answer")
		}
		return refuse(), nil
	}

	ids := make([]string, len(res.Chunks))
	for i, chunk := range res.Chunks {
		ids[i] = chunk.ID
	}
	sources := ExtractCitations(text, ids)
	if len(sources) == 0 {
		if c.logger != nil {
			c.logger.Debug("model output cited no retrieved chunk, refusing")
		}
		return refuse(), nil
	}

	return &models.Answer{
		Status:  models.AnswerStatusAnswered,
		Answer:  text,
		Sources: sources,
	}, nil
}

func refuse() *models.Answer {
	return &models.Answer{
		Status:  models.AnswerStatusRefused,
		Answer:  Refusal,
		Sources: []string{},
	}
}
