package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/updatelog/internal/engine"
	"github.com/roach88/updatelog/internal/export"
	"github.com/roach88/updatelog/internal/importer"
	"github.com/roach88/updatelog/internal/record"
)

// ExportRequest is the body of POST /api/export/{format}.
type ExportRequest struct {
	IDs []int64 `json:"meeting_ids"`
}

// ImportResponse summarizes POST /api/import.
type ImportResponse struct {
	Message  string            `json:"message"`
	BatchID  string            `json:"batch_id"`
	Imported int               `json:"imported"`
	Skipped  int               `json:"skipped"`
	Skips    []engine.RowError `json:"skips,omitempty"`
}

// importFile handles POST /api/import with a multipart "file" field. The
// reader is chosen by the uploaded file's extension.
func (s *Server) importFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Missing upload: "+err.Error())
		return
	}
	defer file.Close()

	rows, err := importer.Read(header.Filename, file, s.opts.Import)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Error importing file: "+err.Error())
		return
	}

	result, err := s.engine.Merge(r.Context(), rows, engine.MergeOptions{Source: header.Filename})
	if err != nil {
		s.respondEngineError(w, r, "import meetings", err)
		return
	}

	s.respondJSON(w, http.StatusOK, ImportResponse{
		Message:  fmt.Sprintf("Successfully imported %d meetings", result.Imported),
		BatchID:  result.BatchID,
		Imported: result.Imported,
		Skipped:  result.Skipped,
		Skips:    result.Skips,
	})
}

// exportFile handles POST /api/export/{format} for the selected ids.
func (s *Server) exportFile(w http.ResponseWriter, r *http.Request) {
	renderer, err := export.ForFormat(chi.URLParam(r, "format"), s.opts.ExportSheet)
	if errors.Is(err, export.ErrUnknownFormat) {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}

	var req ExportRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		s.respondError(w, http.StatusBadRequest, "No meetings to export")
		return
	}

	groups, err := s.engine.Groups(r.Context(), record.Filter{IDs: req.IDs})
	if err != nil {
		s.respondEngineError(w, r, "export meetings", err)
		return
	}
	if len(groups) == 0 {
		s.respondError(w, http.StatusNotFound, "No meetings found")
		return
	}

	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.Filename(renderer)))
	if err := renderer.Render(w, groups); err != nil {
		s.logger.Error("export failed", "request_id", requestID(r), "error", err)
	}
}
