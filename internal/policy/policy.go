// Package policy decides, for a given identity and task, what is visible and
// what is mutable. All functions are pure predicates over snapshots; missing
// or zero-value fields evaluate to false, never panic.
package policy

import (
	"github.com/shamskabra/AlraedSecurityTaskG/internal/domain"
)

// CanView reports whether the user may see the task. The boss sees
// everything; everyone else sees tasks they created or are assigned to.
func CanView(u domain.User, t domain.Task) bool {
	if u.ID == "" {
		return false
	}
	if u.Role == domain.RoleBoss {
		return true
	}
	return t.Assigned(u.ID) || (t.CreatorID != "" && t.CreatorID == u.ID)
}

// CanMutate reports whether the user may edit the task's fields or status.
// Anyone who can see a task can edit it; there is no read-only tier.
func CanMutate(u domain.User, t domain.Task) bool {
	return CanView(u, t)
}

// CanDelete is stricter than CanMutate: only the boss or the creator may
// delete. Assignees who did not create the task cannot.
func CanDelete(u domain.User, t domain.Task) bool {
	if u.ID == "" {
		return false
	}
	if u.Role == domain.RoleBoss {
		return true
	}
	return t.CreatorID != "" && t.CreatorID == u.ID
}

// CanApproveUsers reports whether the user may approve pending registrations.
func CanApproveUsers(u domain.User) bool {
	return u.Role == domain.RoleBoss
}
