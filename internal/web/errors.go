package web

// errors.go provides unified error response handling for the web layer.
//
// Every failure is logged with its technical detail and request ID, then
// mapped through core.MapError to a Spanish message and support code. API
// routes get JSON; pages get the error rendered inside the layout.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/JonMunkholm/catalog/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Action  string              `json:"action,omitempty"`
	Code    string              `json:"code"`
	Summary *core.ImportSummary `json:"summary,omitempty"`
}

// statusFor picks the HTTP status for a pipeline error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrImportBusy), errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrUnsupportedFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrNoFile),
		errors.Is(err, core.ErrEmptyFile),
		errors.Is(err, core.ErrInvalidEncoding),
		errors.Is(err, core.ErrInvalidWorkbook):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrBatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrRulesUnavailable), errors.Is(err, core.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrHistoryUnavailable):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes a user-facing response with statusCode.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	respondErrorWithSummary(w, r, err, statusCode, nil)
}

// respondErrorWithSummary is respondError for failures that still produced
// an import summary, such as a reconciliation mismatch.
func respondErrorWithSummary(w http.ResponseWriter, r *http.Request, err error, statusCode int, summary *core.ImportSummary) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	if wantsJSON(r) {
		writeJSONStatus(w, statusCode, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
			Summary: summary,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	alert := templates.ErrorAlert(userMsg.Message, userMsg.Action, userMsg.Code)
	page := templates.Layout("Error", templates.ImportFailed(alert, summary))
	if renderErr := page.Render(r.Context(), w); renderErr != nil {
		logger.Error("render error page", "error", renderErr)
	}
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
