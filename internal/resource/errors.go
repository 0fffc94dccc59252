package resource

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Alijeyrad/salon_storefront/internal/violation"
	"github.com/Alijeyrad/salon_storefront/pkg/transport"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("not authorized")
	ErrValidation   = errors.New("validation failed")
	ErrNetwork      = errors.New("request failed")
)

// ValidationError is a rejected write that carries field violations.
type ValidationError struct {
	Violations []violation.Violation
	cause      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d violation(s)", ErrValidation, len(e.Violations))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) Unwrap() error { return e.cause }

func (e *ValidationError) FieldViolations() []violation.Violation { return e.Violations }

// NetworkError is any failure without field detail: unreachable backend,
// server error, or a rejection without violations.
type NetworkError struct {
	cause error
}

func (e *NetworkError) Error() string { return ErrNetwork.Error() + ": " + e.cause.Error() }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

func (e *NetworkError) Unwrap() error { return e.cause }

func classify(err error) error {
	if err == nil {
		return nil
	}
	var f *transport.Failure
	if errors.As(err, &f) {
		switch f.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
		if vs := violation.Parse(f.Body); len(vs) > 0 {
			return &ValidationError{Violations: vs, cause: err}
		}
	}
	return &NetworkError{cause: err}
}
