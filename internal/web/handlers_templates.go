package web

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/web/templates"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleImportPage renders the upload form.
func (s *Server) handleImportPage(w http.ResponseWriter, r *http.Request) {
	opts := s.service.Options()
	s.renderPage(w, r, http.StatusOK, "Importar", templates.ImportPage(templates.ImportPageData{
		MappingVersion:    opts.MappingVersion,
		MaxFileSizeMB:     opts.Read.MaxFileSize >> 20,
		AllowedExtensions: opts.Read.AllowedExtensions,
		UpdateExisting:    opts.UpdateExisting,
	}))
}

// handleCSVTemplate serves the header-only CSV template.
func (s *Server) handleCSVTemplate(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := core.WriteCSVTemplate(&buf); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	serveAttachment(w, "plantilla_productos.csv", "text/csv; charset=utf-8", buf.Bytes())
}

// handleXLSXTemplate serves the workbook template with its instructions sheet.
func (s *Server) handleXLSXTemplate(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := core.WriteXLSXTemplate(&buf); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	serveAttachment(w, "plantilla_productos.xlsx", xlsxContentType, buf.Bytes())
}

func serveAttachment(w http.ResponseWriter, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
