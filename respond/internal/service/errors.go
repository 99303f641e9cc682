package service

import (
	"errors"
	"fmt"

	"github.com/axisir/axisir-stack/respond/internal/repository"
)

// Kind classifies a service failure. Handlers map it to an HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindBadRequest
	KindForbidden
	KindUnauthorized
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is the structured failure returned by every service operation.
// Message is safe to show to clients; Err is not.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func notFound(msg string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Err: err}
}

func badRequest(field, msg string) *Error {
	return &Error{Kind: KindBadRequest, Message: msg, Field: field}
}

func forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func unauthorized(msg string, err error) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg, Err: err}
}

func conflict(field, msg string, err error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Field: field, Err: err}
}

func internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// notFoundSentinels are the repository errors that mean a primary lookup found nothing.
var notFoundSentinels = []error{
	repository.ErrCompanyNotFound,
	repository.ErrAssetNotFound,
	repository.ErrAssetGroupNotFound,
	repository.ErrIncidentNotFound,
	repository.ErrIndicatorNotFound,
	repository.ErrLinkNotFound,
	repository.ErrTaskNotFound,
	repository.ErrReportNotFound,
	repository.ErrUserNotFound,
	repository.ErrRoleNotFound,
}

// fromRepo translates a repository error. op is the client-facing message
// used for internal failures, e.g. "An error occurred while creating incident.".
func fromRepo(err error, op string) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	for _, s := range notFoundSentinels {
		if errors.Is(err, s) {
			return notFound(capitalize(s.Error()), err)
		}
	}
	switch {
	case errors.Is(err, repository.ErrUsernameExists):
		return conflict("username", "Username already exists", err)
	case errors.Is(err, repository.ErrEmailExists):
		return conflict("email", "Email already exists", err)
	case errors.Is(err, repository.ErrCompanyExists):
		return conflict("cin", "A company with this registration code already exists", err)
	case errors.Is(err, repository.ErrReferenceNotFound):
		return &Error{Kind: KindBadRequest, Message: "Referenced entity does not exist", Err: err}
	}
	return internal(op, err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
