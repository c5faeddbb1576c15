package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/JonMunkholm/catalog/internal/web/templates"
	"github.com/a-h/templ"
)

// multipartOverhead is room for form boundaries and fields on top of the
// file itself.
const multipartOverhead = 1 << 20

// readImportRequest pulls the "file" field and the optional
// update_existing and mapping_version fields from a multipart form.
func (s *Server) readImportRequest(w http.ResponseWriter, r *http.Request) (core.ImportRequest, error) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return core.ImportRequest{}, core.ErrFileTooLarge
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return core.ImportRequest{}, core.ErrNoFile
		}
		return core.ImportRequest{}, err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return core.ImportRequest{}, core.ErrNoFile
	}
	defer file.Close()

	data, err := core.LoadSource(file, maxSize)
	if err != nil {
		return core.ImportRequest{}, err
	}

	req := core.ImportRequest{
		FileName:       header.Filename,
		Data:           data,
		MappingVersion: r.FormValue("mapping_version"),
	}
	if v := r.FormValue("update_existing"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			req.UpdateExisting = &b
		}
	}
	return req, nil
}

// handleCreateImport runs a full import and returns its summary.
func (s *Server) handleCreateImport(w http.ResponseWriter, r *http.Request) {
	req, err := s.readImportRequest(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	logging.FromContext(r.Context()).Info("import received", "file", req.FileName, "bytes", len(req.Data))

	summary, err := s.service.Import(r.Context(), req)
	if err != nil {
		respondErrorWithSummary(w, r, err, statusFor(err), summary)
		return
	}

	writeJSONStatus(w, http.StatusCreated, summary)
}

// handlePreview validates a file without writing anything.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	req, err := s.readImportRequest(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	result, err := s.service.Preview(r.Context(), req)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, result)
}

// handleImportForm is the HTML form counterpart of handleCreateImport.
func (s *Server) handleImportForm(w http.ResponseWriter, r *http.Request) {
	req, err := s.readImportRequest(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	summary, err := s.service.Import(r.Context(), req)
	if err != nil {
		respondErrorWithSummary(w, r, err, statusFor(err), summary)
		return
	}

	s.renderPage(w, r, http.StatusOK, "Resultado", templates.ImportResult(summary))
}

// handlePreviewForm is the HTML form counterpart of handlePreview.
func (s *Server) handlePreviewForm(w http.ResponseWriter, r *http.Request) {
	req, err := s.readImportRequest(w, r)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	result, err := s.service.Preview(r.Context(), req)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	s.renderPage(w, r, http.StatusOK, "Vista previa", templates.PreviewResult(result))
}

// renderPage writes body inside the layout.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Layout(title, body).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "title", title, "error", err)
	}
}
