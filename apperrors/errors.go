package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies an application error so the transport layer can pick a
// response code without inspecting messages.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindConflict
	KindAuth
	KindUpstream
	KindInternal
)

// Error represents an application error
type Error struct {
	Kind    Kind   `json:"-"`
	Message string `json:"error"`
	Err     error  `json:"-"`
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

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

func Auth(format string, args ...any) *Error {
	return New(KindAuth, fmt.Sprintf(format, args...))
}

func Upstream(message string, err error) *Error {
	return Wrap(KindUpstream, message, err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// Common sentinel errors shared across services.
var (
	ErrTokenExpired = New(KindAuth, "token expired")
	ErrInvalidToken = New(KindAuth, "invalid token")
)

// Abort writes the error as a JSON response and aborts the gin chain.
// Non-application errors render as a generic 500.
func Abort(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Wrap(KindInternal, "internal server error", err)
	}
	c.AbortWithStatusJSON(appErr.Status(), gin.H{"error": appErr.Message})
}
