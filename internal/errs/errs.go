// Package errs declares the error kinds shared by every service. Services
// wrap them with fmt.Errorf("%w: ...") and the HTTP layer maps each kind
// to a status code in exactly one place.
package errs

import "errors"

var (
	ErrValidation        = errors.New("invalid input")      // 400
	ErrUnauthorized      = errors.New("unauthorized")       // 401
	ErrForbidden         = errors.New("forbidden")          // 403
	ErrNotFound          = errors.New("not found")          // 404
	ErrConflict          = errors.New("conflict")           // 409
	ErrResourceExhausted = errors.New("resource exhausted") // 409
)
