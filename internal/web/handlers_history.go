package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// queryInt parses a non-negative integer query parameter with a default.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	page, err := s.service.ListBatches(r.Context(), queryInt(r, "limit", core.DefaultPageSize), queryInt(r, "offset", 0))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, page)
}

func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := s.service.GetBatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, batch)
}

// batchIssuesResponse is the payload of GET /api/imports/{id}/issues.
type batchIssuesResponse struct {
	BatchID string          `json:"batch_id"`
	Issues  []core.RowIssue `json:"issues"`
}

func (s *Server) handleBatchIssues(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Resolve the batch first so an unknown id is a 404, not an empty list.
	if _, err := s.service.GetBatch(r.Context(), id); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	issues, err := s.service.BatchIssues(r.Context(), id)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if issues == nil {
		issues = []core.RowIssue{}
	}
	writeJSON(w, batchIssuesResponse{BatchID: id, Issues: issues})
}

func (s *Server) handleHistoryPage(w http.ResponseWriter, r *http.Request) {
	page, err := s.service.ListBatches(r.Context(), queryInt(r, "limit", core.DefaultPageSize), queryInt(r, "offset", 0))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	s.renderPage(w, r, http.StatusOK, "Historial", templates.BatchList(page))
}

func (s *Server) handleBatchPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	batch, err := s.service.GetBatch(r.Context(), id)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	issues, err := s.service.BatchIssues(r.Context(), id)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	s.renderPage(w, r, http.StatusOK, "Lote", templates.BatchDetail(batch, issues))
}
