package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/justestif/go-music-platform/internal/auth"
	"github.com/justestif/go-music-platform/internal/catalog"
	"github.com/justestif/go-music-platform/internal/db"
	"github.com/justestif/go-music-platform/internal/logging"
	"github.com/justestif/go-music-platform/internal/metrics"
	"github.com/justestif/go-music-platform/internal/validation"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

var (
	errBadRequest       = errors.New("bad request")
	errVersionMismatch  = errors.New("unsupported API version")
	errUnauthenticated  = errors.New("authentication required")
	errForbidden        = errors.New("access denied")
	errRouteNotFound    = errors.New("resource not found")
	errMethodNotAllowed = errors.New("method not allowed")
)

// Envelope wraps every successful catalog response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorMessage is the body of every error response.
type ErrorMessage struct {
	StatusCode  int               `json:"statusCode"`
	Timestamp   time.Time         `json:"timestamp"`
	Message     string            `json:"message"`
	Description string            `json:"description"`
	Errors      map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("encoding response")
	}
}

func respond(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// classifyError maps an error onto an HTTP status and a metrics kind.
func classifyError(err error) (int, string) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, errBadRequest), errors.Is(err, auth.ErrPasswordTooLong):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, errVersionMismatch):
		return http.StatusBadRequest, "version"
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, db.ErrNotFound), errors.Is(err, errRouteNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, catalog.ErrConflict), errors.Is(err, db.ErrDuplicate), errors.Is(err, db.ErrConcurrentUpdate):
		return http.StatusBadRequest, "conflict"
	case errors.Is(err, auth.ErrAuthenticationFailed), errors.Is(err, auth.ErrTokenInvalid), errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, errForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, errMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method_not_allowed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// writeError renders err as an ErrorMessage. Internal errors are logged and
// replaced by a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := classifyError(err)
	metrics.RecordError(kind)

	body := ErrorMessage{
		StatusCode:  status,
		Timestamp:   time.Now().UTC(),
		Message:     err.Error(),
		Description: r.URL.Path,
	}

	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		body.Message = "validation failed"
		body.Errors = verr.FieldMap()
	case status == http.StatusInternalServerError:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		body.Message = "internal server error"
	case status == http.StatusUnauthorized:
		logging.Ctx(r.Context()).Debug().Err(err).Msg("rejected credentials")
		body.Message = "authentication failed"
	}

	writeJSON(w, status, body)
}

// decode reads a JSON body into dst and validates it.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: malformed JSON: %v", errBadRequest, err)
	}
	return validation.Struct(dst)
}

// pathID parses a positive int64 URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", errBadRequest, name, raw)
	}
	return id, nil
}

// pathIDs parses several URL parameters in order.
func pathIDs(r *http.Request, names ...string) ([]int64, error) {
	ids := make([]int64, len(names))
	for i, name := range names {
		id, err := pathID(r, name)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
