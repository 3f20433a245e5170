package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/caretower/component-tracker/internal/core"
)

// handleHealth reports liveness plus current connection stats.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "healthy",
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
		"activeWebsockets": s.hub.ClientCount(),
	})
}

// handleListComponents returns components matching the query filters.
//
// Query parameters: search, tower, status, complexity, year, month.
// The search parameter is split into text and date tokens server-side.
func (s *Server) handleListComponents(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	components, err := s.service.ListComponents(r.Context(), f)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, components)
}

func (s *Server) handleCreateComponent(w http.ResponseWriter, r *http.Request) {
	var in core.ComponentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := s.service.CreateComponent(r.Context(), in)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetComponent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	c, err := s.service.GetComponent(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateComponent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var upd core.ComponentUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	updated, err := s.service.UpdateComponent(r.Context(), id, upd)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteComponent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.service.DeleteComponent(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
}

// batchDeleteRequest is the body for POST /api/components/batch-delete.
type batchDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

// handleBatchDelete deletes every listed component that exists. Identifiers
// that do not exist are skipped, not errors.
func (s *Server) handleBatchDelete(w http.ResponseWriter, r *http.Request) {
	var req batchDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, r, http.StatusBadRequest, "ids is required")
		return
	}

	res, err := s.service.BatchDeleteComponents(r.Context(), req.IDs)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	a, err := s.service.Analytics(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// handleExport streams the filtered component set as a CSV download. The
// export leads with component_id so it can be re-uploaded without creating
// duplicates.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	fileName := fmt.Sprintf("components_%s.csv", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)

	if err := s.service.ExportCSV(r.Context(), f, w); err != nil {
		// Headers may already be sent; log and abandon the response.
		s.respondError(w, r, err)
	}
}

// idParam extracts and validates the {id} route parameter.
func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid component id %q", raw)
	}
	return id, nil
}

// filterFromQuery builds a component filter from URL query parameters.
func filterFromQuery(r *http.Request) (core.Filter, error) {
	q := r.URL.Query()
	f := core.Filter{
		Search:     q.Get("search"),
		Tower:      q.Get("tower"),
		Status:     q.Get("status"),
		Complexity: q.Get("complexity"),
	}

	var err error
	if f.Year, err = intQuery(q.Get("year"), "year"); err != nil {
		return core.Filter{}, err
	}
	if f.Month, err = intQuery(q.Get("month"), "month"); err != nil {
		return core.Filter{}, err
	}
	if f.Month < 0 || f.Month > 12 {
		return core.Filter{}, fmt.Errorf("month must be between 1 and 12")
	}
	return f, nil
}

func intQuery(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}
