package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/domiot-io/drivers/internal/devices"
	"github.com/domiot-io/drivers/internal/vint"
	"github.com/domiot-io/drivers/internal/watch"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeUnauthorized   = "unauthorised"
	ErrCodeForbidden      = "forbidden"
	ErrCodeConflict       = "conflict"
	ErrCodeInternal       = "internal_error"
	ErrCodeValidation     = "validation_error"
	ErrCodeMethodNotAllow = "method_not_allowed"
	ErrCodeTimeout        = "timeout"
	ErrCodeGone           = "gone"
	ErrCodeTooManyReaders = "too_many_readers"
	ErrCodeNotConnected   = "not_connected"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDeviceError maps device-layer errors to HTTP responses.
//
// The mapping mirrors the device file semantics: a non-blocking read
// with nothing pending and a drained session both yield an empty 204,
// a cancelled wait is a request timeout, and writes to a vintx6 hub
// without its producer are a 503.
func writeDeviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, devices.ErrUnknownKind),
		errors.Is(err, devices.ErrInvalidInstance):
		writeNotFound(w, err.Error())

	case errors.Is(err, watch.ErrWouldBlock),
		errors.Is(err, io.EOF):
		w.WriteHeader(http.StatusNoContent)

	case errors.Is(err, watch.ErrInterrupted):
		writeError(w, http.StatusRequestTimeout, ErrCodeTimeout, "read wait interrupted")

	case errors.Is(err, watch.ErrClosed):
		writeError(w, http.StatusGone, ErrCodeGone, "device closed")

	case errors.Is(err, watch.ErrTooManyReaders):
		writeError(w, http.StatusTooManyRequests, ErrCodeTooManyReaders, err.Error())

	case errors.Is(err, devices.ErrReadOnly),
		errors.Is(err, devices.ErrWriteOnly):
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, err.Error())

	case errors.Is(err, vint.ErrNotConnected):
		writeError(w, http.StatusServiceUnavailable, ErrCodeNotConnected, err.Error())

	default:
		writeInternalError(w, err.Error())
	}
}
