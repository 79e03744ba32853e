package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged server-side with the request id, then mapped by
// core.MapError to a user message and rendered as JSON for API clients or
// as an alert fragment for HTMX swaps.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/csvinsight/internal/core"
	"github.com/JonMunkholm/csvinsight/internal/export"
	"github.com/JonMunkholm/csvinsight/internal/history"
	"github.com/JonMunkholm/csvinsight/internal/logging"
	"github.com/JonMunkholm/csvinsight/internal/storage"
	"github.com/JonMunkholm/csvinsight/internal/web/templates"
	"github.com/go-chi/chi/v5/middleware"
)

var (
	errRateLimited = errors.New("rate limit exceeded")
	errBadBody     = errors.New("invalid request body")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrExists):
		return http.StatusConflict
	case errors.Is(err, storage.ErrFileTooLarge), errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrUnsupportedFile):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrNoHeader):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrTooManyLoads), errors.Is(err, history.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, storage.ErrInvalidPath),
		errors.Is(err, storage.ErrIsDirectory),
		errors.Is(err, core.ErrMissingParameter),
		errors.Is(err, core.ErrNoFile),
		errors.Is(err, core.ErrInvalidFilter),
		errors.Is(err, export.ErrUnsupportedFormat),
		errors.Is(err, errBadBody):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail responds with the status statusFor picks for err.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, err, statusFor(err))
}

// respondError logs the technical error and writes a user-friendly
// response in the format the client asked for.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	log := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	}
	if statusCode >= http.StatusInternalServerError {
		log.Error("request error", attrs...)
	} else {
		log.Warn("request error", attrs...)
	}

	if isHTMX(r) && !wantsJSON(r) {
		renderErrorPartial(w, r, userMsg, statusCode)
		return
	}
	respondErrorJSON(w, userMsg, statusCode)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client explicitly prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
