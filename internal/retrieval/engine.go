// Package retrieval executes metadata-scoped nearest-neighbor search over
// a loaded bundle and applies the confidence gate. Search is exact: a flat
// inner-product scan over the pre-filtered candidate set. No approximate
// fallback may bypass the gate.
package retrieval

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/gurukul-labs/gurukul/internal/bundle"
	"github.com/gurukul-labs/gurukul/internal/config"
	"github.com/gurukul-labs/gurukul/internal/models"
	"github.com/gurukul-labs/gurukul/internal/vector"
)

// Engine runs filtered exact search with a confidence gate. It holds no
// bundle state; the bundle is an explicit handle passed per search, which
// keeps hot-swap and multi-bundle deployments trivial.
type Engine struct {
	threshold float64
	defaultK  int
	maxK      int
	logger    *zap.Logger // optional; when set, logs gate decisions
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a logger for debug output (candidate counts, gate decisions).
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine from retrieval configuration.
func NewEngine(cfg *config.RetrievalConfig, opts ...Option) *Engine {
	e := &Engine{
		threshold: cfg.Threshold,
		defaultK:  cfg.DefaultK,
		maxK:      cfg.MaxK,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns the top-k chunks for the query, or the refer_teacher
// sentinel when the candidate set is empty or the best similarity falls
// below the threshold. The gate is evaluated on the full ranked candidate
// list before truncation to k. A dimension mismatch between the query and
// the bundle is an error, never a silent wrong answer.
func (e *Engine) Search(ctx context.Context, b *bundle.Bundle, q *models.Query) (*models.RetrievalResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(e.defaultK, e.maxK); err != nil {
		return nil, err
	}
	if len(q.Embedding) != b.Dim() {
		return nil, &vector.DimensionError{Got: len(q.Embedding), Want: b.Dim()}
	}
	query := vector.Normalize(q.Embedding)

	candidates := filterCandidates(b, q)
	if len(candidates) == 0 {
		if e.logger != nil {
			e.logger.Debug("no candidates after metadata filter",
				zap.Int("class", q.Class), zap.String("subject", q.Subject), zap.String("language", q.Language))
		}
		return models.ReferTeacher(), nil
	}

	scores, err := b.Index.Scores(query, candidates)
	if err != nil {
		return nil, err
	}
	ranked := rank(b, candidates, scores)

	// Hard gate on the best candidate, before truncation to k.
	if !Pass(ranked[0].Score, e.threshold) {
		if e.logger != nil {
			e.logger.Debug("confidence gate refused query",
				zap.Float64("top_score", ranked[0].Score), zap.Float64("threshold", e.threshold))
		}
		return models.ReferTeacher(), nil
	}

	if len(ranked) > q.K {
		ranked = ranked[:q.K]
	}
	chunks := make([]*models.RetrievedChunk, len(ranked))
	for i, r := range ranked {
		record := b.RecordAt(r.Row)
		chunks[i] = &models.RetrievedChunk{
			ID:    r.ID,
			Rank:  i,
			Score: r.Score,
			Text:  record.Text,
			Meta:  record.Metadata,
		}
	}
	return &models.RetrievalResult{Status: models.StatusOK, Chunks: chunks}, nil
}

// Pass reports whether a top-ranked similarity clears the confidence gate.
func Pass(topScore, threshold float64) bool {
	return topScore >= threshold
}

// filterCandidates returns the row indices whose metadata equals the
// query's required filter values. This is a pre-filter: similarity never
// considers out-of-scope chunks.
func filterCandidates(b *bundle.Bundle, q *models.Query) []int {
	var rows []int
	for i := 0; i < b.Count(); i++ {
		meta := b.RecordAt(i).Metadata
		if meta.Class != q.Class || meta.Subject != q.Subject || meta.Language != q.Language {
			continue
		}
		if q.Chapter != nil && meta.Chapter != *q.Chapter {
			continue
		}
		rows = append(rows, i)
	}
	return rows
}

type scoredRow struct {
	Row   int
	ID    string
	Score float64
}

// rank orders candidates by descending similarity; ties break by
// ascending chunk id so ordering is reproducible across runs and scan
// parallelism.
func rank(b *bundle.Bundle, candidates []int, scores []float64) []scoredRow {
	ranked := make([]scoredRow, len(candidates))
	for i, row := range candidates {
		ranked[i] = scoredRow{Row: row, ID: b.IDs[row], Score: scores[i]}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ID < ranked[j].ID
	})
	return ranked
}
