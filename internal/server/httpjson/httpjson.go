// Package httpjson holds the JSON response helpers shared by the HTTP
// handlers, including the mapping from service sentinel errors to status
// codes.
package httpjson

import (
	"encoding/json"
	"errors"
	"net/http"

	identityservice "projecthub/backend/internal/identity/service"
	"projecthub/backend/internal/platform/rbac"
)

// Write writes v as JSON with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Error maps err to an HTTP status and writes a JSON error body. Unknown
// errors become 500 with a generic message so internals never leak.
func Error(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rbac.ErrInvalidInput):
		Write(w, http.StatusBadRequest, map[string]string{"error": "invalid input"})
	case errors.Is(err, rbac.ErrForbidden):
		Write(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, rbac.ErrNotFound):
		Write(w, http.StatusNotFound, map[string]string{"error": "resource not found"})
	case errors.Is(err, identityservice.ErrEmailAlreadyRegistered):
		Write(w, http.StatusConflict, map[string]string{"error": "email already registered"})
	case errors.Is(err, identityservice.ErrInvalidCredentials):
		Write(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	default:
		Write(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// Decode decodes the request body into v, rejecting unknown fields.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return rbac.ErrInvalidInput
	}
	return nil
}
