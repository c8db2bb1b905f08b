// Package apperr defines the error taxonomy shared by the OAuth, refresh,
// and dispatch components. Callers match on Kind, never on message text.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for callers and for the HTTP layer.
type Kind string

const (
	KindBadRequest         Kind = "bad_request"
	KindNotFound           Kind = "no_email_config"
	KindNoRefreshToken     Kind = "no_refresh_token"
	KindAuthExchangeFailed Kind = "auth_exchange_failed"
	KindRefreshFailed      Kind = "refresh_failed"
	KindSendRejected       Kind = "send_failed"
	KindStoreWriteFailed   Kind = "store_write_failed"
	KindGenerateFailed     Kind = "generate_failed"
	KindTransient          Kind = "transient"
)

// Error carries a kind, a human-readable detail and an optional cause.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an *Error.
func E(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// KindOf extracts the Kind from an error chain.
// Unclassified errors report KindTransient so callers treat them as retryable.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindTransient
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to the status the API layer should answer with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindBadRequest, KindNotFound, KindNoRefreshToken:
		return http.StatusBadRequest
	case KindAuthExchangeFailed, KindRefreshFailed:
		return http.StatusUnauthorized
	case KindSendRejected, KindGenerateFailed:
		return http.StatusBadGateway
	case KindStoreWriteFailed, KindTransient:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
