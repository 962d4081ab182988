// Package apperr defines the error taxonomy shared by services and handlers.
// Synchronous callers always receive a {code, description} pair with an
// appropriate HTTP status; background jobs log and rely on queue retry.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for status mapping and logging
type Kind string

const (
	Validation     Kind = "validation"
	NotFound       Kind = "not_found"
	StateConflict  Kind = "state_conflict"
	Unauthorized   Kind = "unauthorized"
	ProcessingRace Kind = "processing_race"
	Internal       Kind = "internal"
)

// Error codes surfaced to merchants
const (
	CodeBadRequest     = "BAD_REQUEST_ERROR"
	CodeInvalidVPA     = "INVALID_VPA"
	CodeInvalidCard    = "INVALID_CARD"
	CodeExpiredCard    = "EXPIRED_CARD"
	CodeNotFound       = "NOT_FOUND_ERROR"
	CodeAuthentication = "AUTHENTICATION_ERROR"
	CodeServer         = "SERVER_ERROR"
)

// Error carries a public code/description alongside the internal cause
type Error struct {
	Kind        Kind
	Code        string
	Description string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Description, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Description)
}

func (e *Error) Unwrap() error { return e.Err }

// ValidationErr rejects bad input before any row is written
func ValidationErr(code, description string) *Error {
	return &Error{Kind: Validation, Code: code, Description: description}
}

// NotFoundErr signals an unknown entity for the given merchant
func NotFoundErr(description string) *Error {
	return &Error{Kind: NotFound, Code: CodeNotFound, Description: description}
}

// StateConflictErr signals an operation illegal in the entity's current state
func StateConflictErr(description string) *Error {
	return &Error{Kind: StateConflict, Code: CodeBadRequest, Description: description}
}

// UnauthorizedErr signals invalid merchant credentials
func UnauthorizedErr(description string) *Error {
	return &Error{Kind: Unauthorized, Code: CodeAuthentication, Description: description}
}

// RaceErr marks a job-time re-validation failure; the job must fail loudly
// rather than finalize an invalid transition.
func RaceErr(description string, err error) *Error {
	return &Error{Kind: ProcessingRace, Code: CodeServer, Description: description, Err: err}
}

// Wrap converts an unexpected store/queue failure into a generic server error
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Kind: Internal, Code: CodeServer, Description: "Internal server error", Err: err}
}

// As unwraps err into an *Error if possible
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// HTTPStatus maps an error to the status code returned to the caller
func HTTPStatus(err error) int {
	if ae, ok := As(err); ok {
		switch ae.Kind {
		case Validation, StateConflict:
			return http.StatusBadRequest
		case NotFound:
			return http.StatusNotFound
		case Unauthorized:
			return http.StatusUnauthorized
		}
	}
	return http.StatusInternalServerError
}
