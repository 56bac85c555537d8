package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"DealVault/internal/analysis"
	"DealVault/internal/model"
	"DealVault/internal/valuation"
)

const maxBodyBytes = 1 << 20

type saveRequest struct {
	Name     string                 `json:"name"`
	Metadata map[string]string      `json:"metadata,omitempty"`
	FormData model.AnalysisFormData `json:"formData"`
	Results  *model.AnalysisResult  `json:"results,omitempty"`
	Target   *valuation.Target      `json:"target,omitempty"`
}

type saveResponse struct {
	Analysis   model.SavedAnalysis `json:"analysis"`
	Advisories []model.Advisory    `json:"advisories"`
}

type computeRequest struct {
	FormData model.AnalysisFormData `json:"formData"`
	Target   valuation.Target       `json:"target"`
}

type computeResponse struct {
	Results    model.AnalysisResult `json:"results"`
	Advisories []model.Advisory     `json:"advisories"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"service":  "dealvault",
		"analyses": len(s.store.List()),
	})
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	analyses := s.store.List()
	if analyses == nil {
		analyses = []model.SavedAnalysis{}
	}
	s.writeJSON(w, http.StatusOK, analyses)
}

// handleSaveAnalysis stores a new record. Results are taken as given, or
// computed from target when the request carries none.
func (s *Server) handleSaveAnalysis(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	var results model.AnalysisResult
	switch {
	case req.Results != nil:
		results = *req.Results
	case req.Target != nil:
		computed, err := valuation.Engine{Target: *req.Target}.Compute(req.FormData)
		if err != nil {
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		results = computed
	default:
		s.writeError(w, http.StatusBadRequest, "results or target is required")
		return
	}

	saved, err := s.store.Save(model.Candidate{
		Name:     req.Name,
		Metadata: req.Metadata,
		FormData: req.FormData,
		Results:  results,
	})
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, saveResponse{
		Analysis:   saved,
		Advisories: advisories(req.FormData),
	})
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	a, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleSelectAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Load(id); err != nil {
		s.storeError(w, err)
		return
	}
	// Respond with the requested record even if another select has already
	// replaced the selection.
	a, ok := s.store.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "analysis not found")
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleSelected(w http.ResponseWriter, r *http.Request) {
	a, ok := s.store.Selected()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "id")); err != nil {
		s.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	var req computeRequest
	if !s.decode(w, r, &req) {
		return
	}
	results, err := valuation.Engine{Target: req.Target}.Compute(req.FormData)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, computeResponse{
		Results:    results,
		Advisories: advisories(req.FormData),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	events, err := s.recorder.Recent(limit)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to read history")
		s.writeError(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	if events == nil {
		s.writeJSON(w, http.StatusOK, []any{})
		return
	}
	s.writeJSON(w, http.StatusOK, events)
}

func advisories(form model.AnalysisFormData) []model.Advisory {
	if a := model.Check(form); a != nil {
		return a
	}
	return []model.Advisory{}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, analysis.ErrNotInitialized) {
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.log.Error().Err(err).Msg("store operation failed")
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
