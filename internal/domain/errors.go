package domain

import (
	"errors"
	"fmt"
)

// NotAuthorizedError indicates the caller failed a policy predicate. It is
// raised before anything is written to the store.
type NotAuthorizedError struct {
	Action string
}

func (e NotAuthorizedError) Error() string {
	return fmt.Sprintf("not authorized to %s", e.Action)
}

// InvalidStateError indicates a lifecycle transition from a disallowed state,
// e.g. approving an identity that is not pending.
type InvalidStateError struct {
	Reason string
}

func (e InvalidStateError) Error() string { return e.Reason }

// ValidationError indicates malformed user input. Recoverable: the caller
// re-presents the input and retries.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

var (
	// ErrPendingApproval is returned on login before the account is approved.
	ErrPendingApproval = errors.New("account is pending approval")

	// ErrInvalidCredentials is returned when credential verification fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
