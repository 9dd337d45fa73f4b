// Package lifecycle models the registration lifecycle of an identity:
// PENDING until a boss approves, then USER, plus the one-time forced
// password rotation after activation. Checks here run before any store
// write; a failed check leaves the store untouched.
package lifecycle

import (
	"github.com/shamskabra/AlraedSecurityTaskG/internal/domain"
	"github.com/shamskabra/AlraedSecurityTaskG/internal/policy"
)

// DefaultMinPasswordLength matches the original registration flow.
const DefaultMinPasswordLength = 6

// CheckApprove validates an approval request. The caller must hold the boss
// role and the target must still be pending. Approval always results in the
// USER role; the boss role is never granted automatically.
func CheckApprove(caller, target domain.User) error {
	if !policy.CanApproveUsers(caller) {
		return domain.NotAuthorizedError{Action: "approve registrations"}
	}
	if target.Role != domain.RolePending {
		return domain.InvalidStateError{Reason: "user is not pending approval"}
	}
	return nil
}

// CheckLogin gates session establishment on lifecycle state. Pending
// identities cannot log in.
func CheckLogin(u domain.User) error {
	if u.Role == domain.RolePending {
		return domain.ErrPendingApproval
	}
	return nil
}

// ValidateNewPassword checks a password rotation request. minLength <= 0
// falls back to the default. Failures are recoverable ValidationErrors.
func ValidateNewPassword(newPassword, confirm string, minLength int) error {
	if minLength <= 0 {
		minLength = DefaultMinPasswordLength
	}
	if len(newPassword) < minLength {
		return domain.ValidationError{Field: "password", Reason: "too short"}
	}
	if newPassword != confirm {
		return domain.ValidationError{Field: "password", Reason: "confirmation does not match"}
	}
	return nil
}
