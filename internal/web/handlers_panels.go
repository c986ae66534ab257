package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/timetable-admin/internal/core"
	"github.com/JonMunkholm/timetable-admin/internal/csvimport"
)

const (
	// multipartMemory is how much of an upload is held in memory before
	// spilling to a temp file.
	multipartMemory = 8 << 20

	// multipartOverhead allows for form boundaries and other fields on top
	// of the file itself.
	multipartOverhead = 64 << 10
)

// panelResponse is a panel as listed to the client.
type panelResponse struct {
	core.PanelInfo
	Synced bool `json:"synced"`
}

// handleListPanels returns the panels the caller's role may use.
func (s *Server) handleListPanels(w http.ResponseWriter, r *http.Request) {
	defs := core.ForRole(session(r).Role)
	out := make([]panelResponse, len(defs))
	for i, def := range defs {
		out[i] = panelResponse{PanelInfo: def.Info, Synced: s.service.Synced(def)}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := s.service.List(r.Context(), session(r).Role, chi.URLParam(r, "key"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// handleCreateRecord adds one record from a JSON object or form whose
// field names match the panel's template headers.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx := withRequestMetadata(r.Context(), r)
	rec, err := s.service.Create(ctx, session(r).Role, chi.URLParam(r, "key"), values)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	ctx := withRequestMetadata(r.Context(), r)
	err := s.service.Delete(ctx, session(r).Role, chi.URLParam(r, "key"), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTemplate downloads the header-only CSV for a panel.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	name, data, err := s.service.Template(session(r).Role, chi.URLParam(r, "key"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	_, _ = w.Write(data)
}

// readUpload pulls the "file" part out of a multipart request. The caller
// must run the returned cleanup.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (csvimport.Upload, func(), error) {
	noop := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return csvimport.Upload{}, noop, csvimport.ErrFileTooLarge
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return csvimport.Upload{}, noop, csvimport.ErrNoFile
		}
		return csvimport.Upload{}, noop, fmt.Errorf("%w: %v", core.ErrInvalidInput, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		_ = r.MultipartForm.RemoveAll()
		return csvimport.Upload{}, noop, csvimport.ErrNoFile
	}

	cleanup := func() {
		_ = file.Close()
		_ = r.MultipartForm.RemoveAll()
	}
	return csvimport.Upload{Name: header.Filename, Body: file}, cleanup, nil
}

// handleImport bulk-creates records from an uploaded CSV or XLSX file.
// A run that stops part way still reports what it did, with the error.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	up, cleanup, err := s.readUpload(w, r)
	defer cleanup()
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx := withRequestMetadata(r.Context(), r)
	res, err := s.service.Import(ctx, session(r).Role, chi.URLParam(r, "key"), up)
	if res == nil {
		respondError(w, r, err)
		return
	}

	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
	}
	writeJSON(w, status, toResponse(*res, err))
}

// handlePreview shows how an upload would be read without saving it.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	up, cleanup, err := s.readUpload(w, r)
	defer cleanup()
	if err != nil {
		respondError(w, r, err)
		return
	}

	prev, err := s.service.Preview(r.Context(), session(r).Role, chi.URLParam(r, "key"), up)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prev)
}

// handleImportHistory lists recent imports, newest first.
func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	history := s.service.Imports()
	out := make([]ImportResultResponse, len(history))
	for i, res := range history {
		out[i] = toResponse(res, nil)
	}
	writeJSON(w, http.StatusOK, out)
}
