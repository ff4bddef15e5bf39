// Package apperr holds the error taxonomy shared by every service. Handlers
// never build HTTP statuses themselves; they return these errors and the
// central fiber ErrorHandler renders them.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindPermissionDenied  Kind = "permission_denied"
	KindInsufficientStock Kind = "insufficient_stock"
	KindOutOfRange        Kind = "out_of_range"
	KindInternal          Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string

	// Set only for KindInsufficientStock.
	Available float64
	Requested float64

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func PermissionDenied(format string, args ...any) *Error {
	return &Error{Kind: KindPermissionDenied, Message: fmt.Sprintf(format, args...)}
}

func OutOfRange(format string, args ...any) *Error {
	return &Error{Kind: KindOutOfRange, Message: fmt.Sprintf(format, args...)}
}

func InsufficientStock(msg string, available, requested float64) *Error {
	return &Error{
		Kind:      KindInsufficientStock,
		Message:   msg,
		Available: available,
		Requested: requested,
	}
}

// Internal wraps a persistence failure. The message is what callers see;
// err keeps the detail for the server log.
func Internal(err error, msg string) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf reports the kind of err, or KindInternal for anything that is not
// an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func Status(kind Kind) int {
	switch kind {
	case KindValidation, KindOutOfRange:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindPermissionDenied:
		return fiber.StatusForbidden
	case KindInsufficientStock:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
