package web

// errors.go turns handler errors into responses.
//
// Every error is logged with its technical detail and request ID, then
// mapped through core.MapError. API clients get a JSON ErrorResponse; the
// /view page gets a small HTML page. The HTTP status follows the error code.

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/csvunion/internal/core"
	"github.com/JonMunkholm/csvunion/internal/logging"
	"github.com/JonMunkholm/csvunion/internal/web/templates"
)

// statusClientClosedRequest is the nginx convention for a request the client
// abandoned.
const statusClientClosedRequest = 499

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code string) int {
	switch {
	case code == "FETCH001", code == "FETCH002":
		return http.StatusBadGateway
	case strings.HasPrefix(code, "CSV"), strings.HasPrefix(code, "TYPE"), strings.HasPrefix(code, "SHAPE"):
		return http.StatusUnprocessableEntity
	case code == "MRG001", code == "REQ001":
		return http.StatusBadRequest
	case code == "REQ002":
		return http.StatusRequestEntityTooLarge
	case code == "REQ003":
		return statusClientClosedRequest
	case code == "REQ004":
		return http.StatusGatewayTimeout
	case code == "RATE001":
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg := core.MapError(err)
	status := statusFor(msg.Code)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", msg.Code,
		"error", err.Error(),
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request error", args...)
	}

	if status == http.StatusTooManyRequests {
		secs := int(math.Ceil(s.cfg.Merge.MaxWaitTime.Seconds()))
		w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
	}

	if wantsHTML(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		if err := templates.ErrorPage(msg).Render(r.Context(), w); err != nil {
			logger.Error("render error page", "error", err)
		}
		return
	}

	writeJSON(w, r, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// wantsHTML reports whether the error should be rendered as a page. Only
// the browser view does; API routes always answer JSON.
func wantsHTML(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html") || r.URL.Path == "/view"
}

// writeJSON encodes v with status. Encoding errors are only logged since the
// header is already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode", "error", err)
	}
}
