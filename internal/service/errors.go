package service

import "errors"

// Failure classes the transport layer maps onto HTTP statuses. Handlers
// match with errors.Is; anything outside this set surfaces as a bare 500.
var (
	// ErrValidation: the client sent a request it has to fix (400).
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized: credential or session absent/invalid (401). Unknown
	// user, wrong password and deactivated account all collapse here so the
	// response never reveals which check failed.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden: a credential was presented but is inadmissible (403).
	ErrForbidden = errors.New("forbidden")
	// ErrConflict: uniqueness or dependency violation (409).
	ErrConflict = errors.New("conflict")
	// ErrNotFound: the addressed record does not exist (404).
	ErrNotFound = errors.New("not found")
)
