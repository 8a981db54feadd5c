package server

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gurukul-labs/gurukul/internal/models"
)

// queryRequest is the wire form of a retrieval or answer request. Either
// question text (embedded server-side) or a precomputed embedding must be
// present.
type queryRequest struct {
	Question  string    `json:"question,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
	Class     int       `json:"class"`
	Subject   string    `json:"subject"`
	Language  string    `json:"language"`
	Chapter   *int      `json:"chapter,omitempty"`
	K         int       `json:"k,omitempty"`
}

// buildQuery resolves the request into a models.Query, embedding the
// question text when no embedding was supplied.
func (s *Server) buildQuery(r *http.Request, req *queryRequest) (*models.Query, error) {
	emb := req.Embedding
	if len(emb) == 0 {
		var err error
		emb, err = s.embedder.Embed(r.Context(), req.Question)
		if err != nil {
			return nil, err
		}
	}
	return &models.Query{
		Embedding: emb,
		Class:     req.Class,
		Subject:   req.Subject,
		Language:  req.Language,
		Chapter:   req.Chapter,
		K:         req.K,
	}, nil
}

// handleRetrieve runs the filtered search. Every per-query failure —
// embedding error, dimension mismatch, bad filter — is converted to the
// refer_teacher response; the student never sees a raw error.
func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	query, err := s.buildQuery(r, &req)
	if err != nil {
		s.logger.Warn("query embedding failed", zap.Error(err))
		s.respondJSON(w, http.StatusOK, models.ReferTeacher())
		return
	}
	result, err := s.engine.Search(r.Context(), s.Bundle(), query)
	if err != nil {
		s.logger.Warn("search failed", zap.Error(err))
		s.respondJSON(w, http.StatusOK, models.ReferTeacher())
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// handleAsk runs retrieval then answer composition. The composer already
// maps every failure to the fixed refusal, so only embedding and search
// errors need catching here.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		s.respondError(w, http.StatusBadRequest, "question is required")
		return
	}
	result := models.ReferTeacher()
	query, err := s.buildQuery(r, &req)
	if err != nil {
		s.logger.Warn("query embedding failed", zap.Error(err))
	} else {
		result, err = s.engine.Search(r.Context(), s.Bundle(), query)
		if err != nil {
			s.logger.Warn("search failed", zap.Error(err))
			result = models.ReferTeacher()
		}
	}
	ans, err := s.composer.Answer(r.Context(), req.Question, result)
	if err != nil {
		s.logger.Error("answer composition failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.respondJSON(w, http.StatusOK, ans)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.Reload(); err != nil {
		s.logger.Error("bundle reload failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	b := s.Bundle()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "reloaded",
		"version": b.Version,
		"chunks":  b.Count(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	b := s.Bundle()
	status := map[string]any{
		"bundle_dir":      b.Dir,
		"version":         b.Version,
		"chunks":          b.Count(),
		"embedding_model": b.ModelName(),
		"embedding_dim":   b.Dim(),
		"manifest":        b.Manifest,
	}
	if bytes, err := dirSizeBytes(b.Dir); err == nil {
		status["disk_usage_bytes"] = bytes
	}
	s.respondJSON(w, http.StatusOK, status)
}

// dirSizeBytes sums the sizes of the regular files under dir.
func dirSizeBytes(dir string) (int64, error) {
	var total int64
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, infoErr := d.Info()
			if infoErr != nil {
				return infoErr
			}
			total += info.Size()
		}
		return nil
	})
	return total, err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
