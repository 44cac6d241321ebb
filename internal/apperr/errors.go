// Package apperr defines the error taxonomy shared by services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindInvalidSize Kind = "invalid_size"
	KindStock       Kind = "insufficient_stock"
	KindEmptyCart   Kind = "empty_cart"
	KindDuplicate   Kind = "duplicate"
	KindAuth        Kind = "unauthorized"
	KindForbidden   Kind = "forbidden"
	KindInternal    Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return newErr(KindValidation, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newErr(KindNotFound, format, args...)
}

func Duplicate(format string, args ...any) *Error {
	return newErr(KindDuplicate, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return newErr(KindAuth, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return newErr(KindForbidden, format, args...)
}

func EmptyCart() *Error {
	return newErr(KindEmptyCart, "cart is empty")
}

// InvalidSize reports a size that is not offered for the product.
func InvalidSize(size string, available []string) *Error {
	return &Error{
		Kind:    KindInvalidSize,
		Message: fmt.Sprintf("size %q is not available for this product", size),
		Details: map[string]any{"size": size, "available_sizes": available},
	}
}

// Stock reports that a product cannot cover the requested quantity.
func Stock(product string, available, requested int) *Error {
	return &Error{
		Kind:    KindStock,
		Message: fmt.Sprintf("insufficient stock for %s. Available: %d", product, available),
		Details: map[string]any{"product": product, "available": available, "requested": requested},
	}
}

// StockLimit reports the per-line cap being exceeded.
func StockLimit(max int) *Error {
	return &Error{
		Kind:    KindStock,
		Message: fmt.Sprintf("maximum quantity per item: %d units", max),
		Details: map[string]any{"max_per_item": max},
	}
}

// Internal wraps an unexpected failure.
func Internal(err error, format string, args ...any) *Error {
	e := newErr(KindInternal, format, args...)
	e.Err = err
	return e
}

// KindOf returns the kind of err, KindInternal for foreign errors.
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

// As returns the *Error in err's chain, wrapping foreign errors as internal ones.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err, "internal server error")
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindInvalidSize, KindStock, KindEmptyCart:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicate:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
