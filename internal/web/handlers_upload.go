package web

import (
	"context"
	"io"
	"net/http"
)

// handleUpload ingests an uploaded component file (CSV, JSON, or Excel).
//
// The response body is always an ingestion summary. An unsupported file type
// or an unreadable file returns 400 with the summary describing the failure;
// a parsed file returns 200 even when individual rows were rejected, so the
// client can show row-level errors next to the counts.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeError(w, r, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "failed to read file")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Upload.Timeout)
	defer cancel()

	result := s.service.Ingest(ctx, header.Filename, data)

	// Zero rows with errors means the file could not be parsed at all;
	// a parsed file with rejected rows still returns 200 with row errors.
	status := http.StatusOK
	if result.TotalRows == 0 && len(result.Errors) > 0 {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, result)
}
