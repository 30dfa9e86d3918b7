package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/erazemk/packzen/internal/errors"
	"github.com/erazemk/packzen/internal/validation"
)

var validate = validation.New()

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string            `json:"error"`
	Code    domainerrors.Code `json:"code,omitempty"`
	Details any               `json:"details,omitempty"`
}

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, errorBody{Error: message})
}

// writeError maps domain errors to their status. Anything else is logged
// and reported as "failed to <action>".
func writeError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var de *domainerrors.Error
	if errors.As(err, &de) {
		jsonResponse(w, de.HTTPStatus(), errorBody{Error: de.Message, Code: de.Code, Details: de.Details})
		return
	}
	slog.Error("failed to "+action, "error", err, "method", r.Method, "path", r.URL.Path)
	jsonError(w, http.StatusInternalServerError, "failed to "+action)
}

// decodeJSON decodes a JSON request body into target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// decodeValid decodes and validates a request body, writing the error
// response itself. It reports whether the handler may continue.
func decodeValid(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := decodeJSON(r, target); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Validate(target); err != nil {
		writeError(w, r, err, "validate request")
		return false
	}
	return true
}
