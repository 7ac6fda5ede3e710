// Package apperr defines the tagged error type returned by every service in
// workboard. Callers branch on Kind (or the stable Code) instead of matching
// message strings.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error.
type Kind int

const (
	// KindInternal is an unexpected failure (storage, encoding, ...).
	KindInternal Kind = iota
	// KindNotFound means the referenced entity does not exist.
	KindNotFound
	// KindUnauthorized means the entity exists but the caller lacks access.
	KindUnauthorized
	// KindBadRequest means the operation is invalid for valid entities.
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindBadRequest:
		return "bad_request"
	default:
		return "internal"
	}
}

// Code is a stable machine-readable error code sent to clients as errorCode.
type Code string

const (
	CodeAccessUnauthorized  Code = "ACCESS_UNAUTHORIZED"
	CodeResourceNotFound    Code = "RESOURCE_NOT_FOUND"
	CodeMemberNotFound      Code = "MEMBER_NOT_FOUND"
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeLastWorkspace       Code = "LAST_WORKSPACE"
	CodeCannotRemoveSelf    Code = "CANNOT_REMOVE_SELF"
	CodeCannotRemoveOwner   Code = "CANNOT_REMOVE_OWNER"
	CodeAssigneeNotMember   Code = "ASSIGNEE_NOT_MEMBER"
	CodeAlreadyMember       Code = "ALREADY_MEMBER"
	CodeInvalidRoleChange   Code = "INVALID_ROLE_CHANGE"
	CodeInvalidCredentials  Code = "AUTH_INVALID_CREDENTIALS"
	CodeTokenInvalid        Code = "AUTH_TOKEN_INVALID"
	CodeEmailAlreadyExists  Code = "EMAIL_ALREADY_EXISTS"
	CodeFeatureUnavailable  Code = "FEATURE_UNAVAILABLE"
	CodeRateLimited         Code = "RATE_LIMITED"
	CodeInternalServerError Code = "INTERNAL_SERVER_ERROR"
)

// Error is the tagged error variant used across the service layer.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound returns a NotFound error with the generic resource code.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeResourceNotFound, Message: message}
}

// NotFoundCode returns a NotFound error with a specific code.
func NotFoundCode(code Code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

// Unauthorized returns an Unauthorized error. An empty code defaults to
// ACCESS_UNAUTHORIZED.
func Unauthorized(code Code, message string) *Error {
	if code == "" {
		code = CodeAccessUnauthorized
	}
	return &Error{Kind: KindUnauthorized, Code: code, Message: message}
}

// BadRequest returns a BadRequest error. An empty code defaults to
// VALIDATION_ERROR.
func BadRequest(code Code, message string) *Error {
	if code == "" {
		code = CodeValidation
	}
	return &Error{Kind: KindBadRequest, Code: code, Message: message}
}

// Internal wraps an unexpected error.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternalServerError, Message: message, Err: err}
}

// Unavailable reports a feature that is not configured on this server.
func Unavailable(message string) *Error {
	return &Error{Kind: KindInternal, Code: CodeFeatureUnavailable, Message: message}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err. Untyped errors are internal.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// CodeOf reports the code of err. Untyped errors map to INTERNAL_SERVER_ERROR.
func CodeOf(err error) Code {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return CodeInternalServerError
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps err to a response status.
func HTTPStatus(err error) int {
	appErr, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		switch appErr.Code {
		case CodeInvalidCredentials, CodeTokenInvalid:
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	default:
		if appErr.Code == CodeFeatureUnavailable {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to show to clients. Internal errors never
// leak their cause.
func PublicMessage(err error) string {
	appErr, ok := As(err)
	if !ok || appErr.Kind == KindInternal && appErr.Code == CodeInternalServerError {
		return "internal server error"
	}
	return appErr.Message
}
