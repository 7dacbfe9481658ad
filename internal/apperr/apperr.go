package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type Kind string

const (
	Auth       Kind = "auth"
	Validation Kind = "validation"
	Upload     Kind = "upload"
	API        Kind = "api"
	Network    Kind = "network"
)

// Error is the single user-facing error shape of the console. Every failing
// admin action is rendered from one of these; nothing retries automatically.
type Error struct {
	Kind       Kind
	PublicMsg  string
	StatusCode int      // backend status for API kind, 0 otherwise
	Violations []string // collected form rule violations for Validation kind
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.PublicMsg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.PublicMsg)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func AuthErr(publicMsg string) *Error {
	return &Error{Kind: Auth, PublicMsg: publicMsg}
}

func ValidationErr(violations []string) *Error {
	return &Error{Kind: Validation, PublicMsg: strings.Join(violations, ". "), Violations: violations}
}

func UploadErr(publicMsg string, err error) *Error {
	return &Error{Kind: Upload, PublicMsg: publicMsg, Err: err}
}

// APIErr maps a backend status code to the user-facing cause. detail is the
// server-provided message, already joined when the backend returned a list.
func APIErr(statusCode int, detail string) *Error {
	msg := detail
	switch statusCode {
	case http.StatusUnauthorized:
		msg = "Session expired. Please login again."
	case http.StatusForbidden:
		msg = "You don't have permission to do this. Admin access required."
	case http.StatusUnprocessableEntity:
		if detail == "" {
			msg = "The backend rejected the submitted fields."
		}
	default:
		if msg == "" {
			msg = fmt.Sprintf("Request failed with status %d", statusCode)
		}
	}
	return &Error{Kind: API, PublicMsg: msg, StatusCode: statusCode}
}

func NetworkErr(err error) *Error {
	return &Error{Kind: Network, PublicMsg: "Network error. Please check your connection.", Err: err}
}

func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}

func HTTPStatus(err error) int {
	if ae, ok := As(err); ok {
		switch ae.Kind {
		case Validation:
			return http.StatusBadRequest
		case Auth:
			return http.StatusUnauthorized
		case API:
			if ae.StatusCode != 0 {
				return ae.StatusCode
			}
		case Upload, Network:
			return http.StatusBadGateway
		}
	}
	return http.StatusInternalServerError
}

func PublicMessage(err error) string {
	if ae, ok := As(err); ok && ae.PublicMsg != "" {
		return ae.PublicMsg
	}
	return "Something went wrong. Please try again."
}
