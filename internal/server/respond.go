package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/viewport"
)

// codeNotReady marks a query against a layout that is still running.
const codeNotReady errors.Code = "NOT_READY"

func errNotReady(id string) error {
	return errors.New(codeNotReady, "layout %s is still running", id)
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidConfig,
		errors.ErrCodeInvalidPath, errors.ErrCodeGraphIntegrity:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeNodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeStaleIndex, errors.ErrCodeCancelled, codeNotReady:
		return http.StatusConflict
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("write response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, errorBody{Error: errors.UserMessage(err), Code: string(errors.GetCode(err))})
}

// =============================================================================
// Query Parameters
// =============================================================================

// query reads typed query parameters, remembering the first parse error.
type query struct {
	r   *http.Request
	err error
}

func (q *query) float(name string, def float64) float64 {
	s := q.r.URL.Query().Get(name)
	if s == "" || q.err != nil {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		q.err = errors.Wrap(errors.ErrCodeInvalidInput, err, "query parameter %s", name)
		return def
	}
	if err := errors.ValidateFinite(name, v); err != nil {
		q.err = err
		return def
	}
	return v
}

func (q *query) bool(name string) bool {
	s := q.r.URL.Query().Get(name)
	if s == "" || q.err != nil {
		return false
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		q.err = errors.Wrap(errors.ErrCodeInvalidInput, err, "query parameter %s", name)
	}
	return v
}

// transform reads tx, ty and k, defaulting to the identity.
func (q *query) transform() viewport.Transform {
	t := viewport.Transform{X: q.float("tx", 0), Y: q.float("ty", 0), K: q.float("k", 1)}
	if q.err == nil && !t.Valid() {
		q.err = errors.New(errors.ErrCodeInvalidInput, "invalid transform: k must be positive, got %v", t.K)
	}
	return t
}

// required reads a float that must be present.
func (q *query) required(name string) float64 {
	if q.err == nil && q.r.URL.Query().Get(name) == "" {
		q.err = errors.New(errors.ErrCodeInvalidInput, "missing query parameter %s", name)
		return 0
	}
	return q.float(name, 0)
}
