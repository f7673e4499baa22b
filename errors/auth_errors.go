package errors

import (
	"errors"
	"fmt"
)

// ErrFlowCancelled marks an interactive sign-in the user abandoned
// (closed the provider's window before finishing). It is an outcome,
// not a failure: the session store resolves the sign-in cleanly and
// leaves the session untouched.
var ErrFlowCancelled = errors.New("sign-in flow cancelled by user")

// ErrInvalidCredentials is returned by the local provider backend when
// the email/password pair does not match a known user.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrProviderNotFound is returned when a sign-in names a provider no
// backend is registered for.
var ErrProviderNotFound = errors.New("identity provider not found")

// AuthError is an adapter rejection of a sign-in or sign-out request
// for a reason other than user cancellation. It is the only error
// class allowed to surface into user-visible state.
type AuthError struct {
	Op       string // "sign_in" or "sign_out"
	Provider string
	Err      error
}

func (e *AuthError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("auth %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("auth %s via %s failed: %v", e.Op, e.Provider, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

func NewAuthError(op, provider string, err error) *AuthError {
	return &AuthError{Op: op, Provider: provider, Err: err}
}

// TrackingError wraps a failed activity write or read. It exists so
// log fields stay uniform; tracking errors are always caught at the
// recorder/feed boundary, logged, and discarded.
type TrackingError struct {
	Op  string // "insert" or "query"
	Err error
}

func (e *TrackingError) Error() string {
	return fmt.Sprintf("activity %s failed: %v", e.Op, e.Err)
}

func (e *TrackingError) Unwrap() error { return e.Err }
