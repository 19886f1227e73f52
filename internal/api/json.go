package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/crmai/internal/ai"
	"github.com/starford/crmai/internal/apperr"
)

const maxBodyBytes = 10 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// decodeJSON reads a JSON body into v, answering 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

var aiStatus = map[string]int{
	ai.ErrUnknownProvider.Error():   http.StatusBadRequest,
	ai.ErrMissingCredential.Error(): http.StatusBadRequest,
	ai.ErrInvalidRequest.Error():    http.StatusBadRequest,
	ai.ErrAuth.Error():              http.StatusUnauthorized,
	ai.ErrPermission.Error():        http.StatusForbidden,
	ai.ErrMalformedOutput.Error():   http.StatusUnprocessableEntity,
	ai.ErrRateLimit.Error():         http.StatusTooManyRequests,
	ai.ErrEmptyResponse.Error():     http.StatusBadGateway,
	ai.ErrProvider.Error():          http.StatusBadGateway,
}

// writeError maps err to a status code. Anything unclassified is logged
// under op and answered with 500.
func writeError(w http.ResponseWriter, op string, err error) {
	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errResponse{Error: verr.Error(), Field: verr.Field})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("conflict"))
	default:
		if kind := ai.KindOf(err); kind != "" {
			slog.Warn(op+" failed", slog.String("kind", kind), slog.String("error", err.Error()))
			writeJSON(w, aiStatus[kind], errResponse{Error: ai.UserMessage(err), Kind: kind})
			return
		}
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, errorBody("not found"))
}
