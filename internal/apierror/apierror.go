// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies the business-level failure class of an error.
// Clients branch on the kind string, never on the human-readable message.
type Kind string

const (
	KindEmptyCart          Kind = "EmptyCart"
	KindProductNotFound    Kind = "ProductNotFound"
	KindInvalidSaleUnit    Kind = "InvalidSaleUnit"
	KindNoPriceForSaleMode Kind = "NoPriceForSaleMode"
	KindInsufficientStock  Kind = "InsufficientStock"
	KindInvalidDiscount    Kind = "InvalidDiscount"
	KindStockChanged       Kind = "StockChangedDuringCheckout"
	KindCommitTimeout      Kind = "CommitTimeout"
	KindPersistence        Kind = "PersistenceFailure"
	KindNotFound           Kind = "NotFound"
	KindConflict           Kind = "Conflict"
	KindUnauthorized       Kind = "Unauthorized"
	KindRateLimited        Kind = "RateLimited"
	KindValidation         Kind = "ValidationFailure"
)

// HTTPStatus maps the kind to the status the API serves it with. Unknown
// kinds are treated as internal failures.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindEmptyCart, KindInvalidSaleUnit, KindNoPriceForSaleMode,
		KindInvalidDiscount, KindValidation:
		return http.StatusUnprocessableEntity
	case KindProductNotFound, KindNotFound:
		return http.StatusNotFound
	case KindInsufficientStock, KindStockChanged, KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindCommitTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Error is the canonical business error. It doubles as the JSON envelope for
// 4xx/5xx responses.
type Error struct {
	Kind    Kind           `json:"error_kind"`
	Detail  string         `json:"detail"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Detail) }

// New builds an Error with the given kind and message.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// WithDetails attaches a structured payload for client display
// (e.g. the available stock breakdown on InsufficientStock).
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// As extracts an *Error from an error chain; returns nil when the chain
// carries no apierror.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	e := As(err)
	return e != nil && e.Kind == kind
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Kind   Kind              `json:"error_kind"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Kind: KindValidation, Detail: "Error de validacion", Fields: fields}
}
