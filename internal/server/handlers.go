package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vvka-141/vset/pkg/vset"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Health(r.Context()); err != nil {
		s.logger.Error("Health check failed: %v", err)
		s.writeError(w, http.StatusServiceUnavailable, "store unreachable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetTerm(w http.ResponseWriter, r *http.Request) {
	accession := chi.URLParam(r, "accession")

	term, err := s.store.GetTerm(r.Context(), accession)
	if err != nil {
		if errors.Is(err, vset.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "term not found")
			return
		}
		s.logger.Error("Failed to read term %q: %v", accession, err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.writeJSON(w, http.StatusOK, term)
}

func (s *Server) handleListValueSets(w http.ResponseWriter, r *http.Request) {
	sets, err := s.store.ListValueSets(r.Context())
	if err != nil {
		s.logger.Error("Failed to list valuesets: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if sets == nil {
		sets = []vset.ValueSetSummary{}
	}
	s.writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleGetValueSet(w http.ResponseWriter, r *http.Request) {
	accession := chi.URLParam(r, "accession")

	includeDeprecated, err := parseBoolParam(r, "include_deprecated")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	set, err := s.store.GetValueSet(r.Context(), accession, includeDeprecated)
	if err != nil {
		if errors.Is(err, vset.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "valueset not found")
			return
		}
		s.logger.Error("Failed to read valueset %q: %v", accession, err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if set.Values == nil {
		set.Values = []vset.Term{}
	}
	s.writeJSON(w, http.StatusOK, set)
}

// parseBoolParam reads a boolean query parameter. Absent means false.
func parseBoolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	switch raw {
	case "", "false", "0":
		return false, nil
	case "true", "1":
		return true, nil
	default:
		return false, errors.New(name + " must be true or false")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
