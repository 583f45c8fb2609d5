package api

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bracketview/pkg/errors"
)

type errorBody struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

// StatusFor maps an error code to an HTTP status. Upstream failures map to
// gateway statuses since the client's request itself was fine.
func StatusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidTheme, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeMalformedTopology:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeNetwork, errors.ErrCodeUnauthorized, errors.ErrCodeForbidden:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"code":"INTERNAL_ERROR","message":"encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := StatusFor(code)
	body := errorBody{Code: code, Message: errors.UserMessage(err), RequestID: RequestID(r.Context())}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "path", r.URL.Path, "code", code, "err", err, "request_id", body.RequestID)
		if code == errors.ErrCodeInternal {
			body.Message = "internal error"
		}
	}
	writeJSON(w, status, body)
}

func notFound(format string, args ...any) error {
	return errors.New(errors.ErrCodeNotFound, format, args...)
}
