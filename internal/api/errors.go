package api

import (
	"fmt"
	"strings"
)

// AuthError means the backend rejected the supplied credentials.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// ValidationError carries field-level errors from registration, already
// mapped to the most specific known user-facing message.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string { return e.Message }

// HTTPError is any non-success backend response the caller did not map to a
// more specific error. The client wrapper does not single out 401/403.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend status %d: %s", e.StatusCode, e.Body)
}

// mapFieldErrors turns the backend's field error payload into the most
// specific known message, with a generic fallback.
func mapFieldErrors(fields map[string][]string) *ValidationError {
	msg := "registration failed, check the submitted fields"
	switch {
	case len(fields["username"]) > 0:
		msg = "username already taken"
	case len(fields["email"]) > 0:
		msg = "email already registered"
	case len(fields["password"]) > 0 || len(fields["password2"]) > 0:
		msg = "password does not meet the requirements"
		for _, m := range append(fields["password"], fields["password2"]...) {
			lower := strings.ToLower(m)
			if strings.Contains(lower, "match") || strings.Contains(lower, "conferem") {
				msg = "passwords do not match"
				break
			}
		}
	}
	return &ValidationError{Message: msg, Fields: fields}
}
